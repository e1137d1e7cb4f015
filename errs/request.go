package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Authentication & Request Errors
var (
	ErrMissingToken      = errors.New("missing access token")
	ErrInvalidToken      = errors.New("invalid access token")
	ErrExpiredToken      = errors.New("expired access token")
	ErrEmailNotVerified  = errors.New("email not verified")
	ErrMalformedPayload  = errors.New("malformed payload")
	ErrUnsupportedMedia  = errors.New("unsupported media type")
	ErrMaxBodySizeExceed = errors.New("max body size exceeded")
)

func NewMissingTokenError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        fmt.Errorf("%w: %w", ErrUnauthorized, ErrMissingToken),
		Details:    "Authorization header must carry a bearer token",
	}
}

func NewInvalidTokenError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        fmt.Errorf("%w: %w", ErrUnauthorized, ErrInvalidToken),
		Cause:      cause,
	}
}

func NewExpiredTokenError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        fmt.Errorf("%w: %w", ErrUnauthorized, ErrExpiredToken),
	}
}

func NewEmailNotVerifiedError(email string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        fmt.Errorf("%w: %w", ErrUnauthorized, ErrEmailNotVerified),
		Details:    fmt.Sprintf("Verify %s before signing in", email),
	}
}

func NewMalformedPayloadError(payloadType string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        fmt.Errorf("%w: %w", ErrBadRequest, ErrMalformedPayload),
		Details:    fmt.Sprintf("Malformed %s payload", payloadType),
		Cause:      cause,
		Field:      "payload",
	}
}

func NewUnsupportedMediaTypeError(contentType string, allowed string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnsupportedMediaType,
		err:        fmt.Errorf("%w: %w", ErrInvalidOperation, ErrUnsupportedMedia),
		Details:    fmt.Sprintf("Unsupported media type: %s. Allowed: %s", contentType, allowed),
		Field:      "content_type",
	}
}

func NewMaxBodySizeExceededError(maxSize int64) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusRequestEntityTooLarge,
		err:        fmt.Errorf("%w: %w", ErrInvalidOperation, ErrMaxBodySizeExceed),
		Details:    fmt.Sprintf("Body exceeds the maximum allowed size of %d bytes", maxSize),
		Field:      "body_size",
	}
}

func IsMissingTokenError(err error) bool {
	return errors.Is(err, ErrMissingToken)
}

func IsInvalidTokenError(err error) bool {
	return errors.Is(err, ErrInvalidToken)
}

func IsExpiredTokenError(err error) bool {
	return errors.Is(err, ErrExpiredToken)
}
