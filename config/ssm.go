package config

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"
)

// LoadSSM copies the parameters stored under prefix into config, keyed by the last path
// segment. Keys already present in config are kept, so the environment wins over SSM.
func LoadSSM(ctx context.Context, cfg aws.Config, prefix string, config map[string]string) error {
	return loadParameters(ctx, ssm.NewFromConfig(cfg), prefix, config)
}

func loadParameters(ctx context.Context, client ssm.GetParametersByPathAPIClient, prefix string, config map[string]string) error {
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}

	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(prefix),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	})

	loaded := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("load parameters under %s: %w", prefix, err)
		}
		for _, param := range page.Parameters {
			key := path.Base(aws.ToString(param.Name))
			if _, ok := config[key]; ok {
				continue
			}
			config[key] = aws.ToString(param.Value)
			loaded++
		}
	}

	log.Info().Str("prefix", prefix).Int("loaded", loaded).Msg("loaded SSM parameters")
	return nil
}
