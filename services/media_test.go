package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/wholspace-backend/errs"
	"github.com/rpupo63/wholspace-backend/models"
	"github.com/rpupo63/wholspace-backend/services"
)

func TestUploadProjectImageSlots(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "owner")
	project := f.project(t, "owner", "Gallery")

	withThumb, err := f.svc.UploadProjectImage(ctx, "owner", project.ID, 0, image("image/png", 10))
	require.NoError(t, err)
	assert.Equal(t, blobBaseURL+"/"+models.ProjectImageKey("owner", project.ID, 0, "png"), withThumb.ThumbnailURL)
	assert.Empty(t, withThumb.Screenshots)

	withShot, err := f.svc.UploadProjectImage(ctx, "owner", project.ID, 2, image("image/png", 10))
	require.NoError(t, err)
	require.Len(t, withShot.Screenshots, 2)
	assert.Empty(t, withShot.Screenshots[0])
	assert.Equal(t, blobBaseURL+"/"+models.ProjectImageKey("owner", project.ID, 2, "png"), withShot.Screenshots[1])

	first, err := f.svc.UploadProjectImage(ctx, "owner", project.ID, 1, image("image/png", 10))
	require.NoError(t, err)
	require.Len(t, first.Screenshots, 2)
	assert.Equal(t, blobBaseURL+"/"+models.ProjectImageKey("owner", project.ID, 1, "png"), first.Screenshots[0])
	assert.Equal(t, withShot.Screenshots[1], first.Screenshots[1])
}

func TestUploadProjectImageRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		requester string
		slot      int
		upload    services.Upload
		check     func(error) bool
	}{
		{
			name:      "not an image",
			requester: "owner",
			upload:    image("application/pdf", 10),
			check:     func(err error) bool { return errors.Is(err, errs.ErrUnsupportedMedia) },
		},
		{
			name:      "too large",
			requester: "owner",
			upload:    services.Upload{Filename: "big.png", ContentType: "image/png", Size: services.MaxProjectImageSize + 1},
			check:     func(err error) bool { return errors.Is(err, errs.ErrMaxBodySizeExceed) },
		},
		{
			name:      "empty",
			requester: "owner",
			upload:    image("image/png", 0),
			check:     errs.IsBadRequest,
		},
		{
			name:      "slot out of range",
			requester: "owner",
			slot:      services.MaxScreenshots + 1,
			upload:    image("image/png", 10),
			check:     errs.IsBadRequest,
		},
		{
			name:      "not the owner",
			requester: "intruder",
			upload:    image("image/png", 10),
			check:     errs.IsUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			ctx := context.Background()
			f.user(t, "owner")
			f.user(t, "intruder")
			project := f.project(t, "owner", "Gallery")

			_, err := f.svc.UploadProjectImage(ctx, tt.requester, project.ID, tt.slot, tt.upload)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
			assert.Empty(t, f.blob.Keys())
		})
	}
}

func TestUploadExtensionFallsBackToContentType(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "owner")
	project := f.project(t, "owner", "Gallery")

	upload := image("image/svg+xml", 4)
	upload.Filename = ""
	updated, err := f.svc.UploadProjectImage(ctx, "owner", project.ID, 0, upload)
	require.NoError(t, err)
	assert.Equal(t, blobBaseURL+"/"+models.ProjectImageKey("owner", project.ID, 0, "svg"), updated.ThumbnailURL)
}
