package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Media host errors
var (
	ErrMediaUpload       = errors.New("media upload failed")
	ErrMediaDelete       = errors.New("media delete failed")
	ErrMediaUnconfigured = errors.New("media store not configured")
	ErrUnsupportedMedia  = errors.New("unsupported media type")
)

// NewMediaUploadError is fatal for the request: uploads surface as 500.
func NewMediaUploadError(folder string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrMediaUpload,
		Details:    fmt.Sprintf("Could not upload image to %s", folder),
		Cause:      cause,
		Field:      "photo",
	}
}

func NewMediaDeleteError(id string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        ErrMediaDelete,
		Details:    fmt.Sprintf("Could not delete media object %s", id),
		Cause:      cause,
	}
}

func NewUnsupportedMediaError(contentType string, allowed []string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnsupportedMediaType,
		err:        ErrUnsupportedMedia,
		Details:    fmt.Sprintf("Unsupported media type: %s. Allowed types: %v", contentType, allowed),
		Field:      "photo",
	}
}

func IsMediaUploadError(err error) bool {
	return errors.Is(err, ErrMediaUpload)
}
