package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/rpupo63/wholspace-backend/errs"
	"github.com/rpupo63/wholspace-backend/services"
)

const maxJSONBodySize = 1 << 20

// decodeJSON reads a JSON body of at most maxJSONBodySize bytes into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, payloadType string, dst any) error {
	bodyBytes, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBodySize))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errs.NewMaxBodySizeExceededError(maxJSONBodySize)
		}
		return errs.NewMalformedPayloadError(payloadType, err)
	}
	if err := json.Unmarshal(bodyBytes, dst); err != nil {
		return errs.NewMalformedPayloadError(payloadType, err)
	}
	return nil
}

// readUpload reads a raw image body. Bodies over maxSize are rejected.
func readUpload(w http.ResponseWriter, r *http.Request, maxSize int64) (services.Upload, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSize))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return services.Upload{}, errs.NewMaxBodySizeExceededError(maxSize)
		}
		return services.Upload{}, errs.NewMalformedPayloadError("image", err)
	}
	return services.Upload{
		Filename:    r.URL.Query().Get("filename"),
		ContentType: r.Header.Get("Content-Type"),
		Size:        int64(len(data)),
		Body:        bytes.NewReader(data),
	}, nil
}

// queryInt reads a non-negative integer query parameter, 0 when absent
func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, errs.NewBadRequestErrorWithField("invalid "+key, key, "Expected a non-negative integer")
	}
	return value, nil
}
