// Package media stores uploaded images on a remote host and removes them again.
//
// Store enforces the contract shared by every backend: empty uploads are no-ops,
// and deletes never fail the caller. A stale object left on the host is an
// acceptable outcome; a failed request because of one is not.
package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-cms/config"
	"github.com/rpupo63/portfolio-cms/errs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Blob is an uploaded file on its way to the media host.
type Blob struct {
	Reader      io.Reader
	Size        int64
	Filename    string
	ContentType string
}

// Backend is a concrete media host.
type Backend interface {
	// Put stores the blob under folder and returns its public URL.
	Put(ctx context.Context, folder string, blob Blob) (string, error)
	// Delete removes the object with the given identifier.
	Delete(ctx context.Context, id string) error
	// ObjectID recovers the identifier from a URL returned by Put.
	ObjectID(url string) (string, bool)
}

type Store struct {
	backend Backend
	logger  zerolog.Logger
}

func NewStore(backend Backend) *Store {
	return &Store{
		backend: backend,
		logger:  log.With().Str("component", "mediaStore").Logger(),
	}
}

// New picks the backend named by MEDIA_DRIVER.
func New(ctx context.Context, settings config.Settings) (*Store, error) {
	var (
		backend Backend
		err     error
	)
	switch settings.MediaDriver {
	case "cloudinary":
		backend, err = NewCloudinary(settings.MediaURL)
	case "s3":
		backend, err = NewS3(ctx, settings)
	case "gcs":
		backend, err = NewGCS(ctx, settings)
	case "memory":
		backend = NewMemory("")
	default:
		return nil, fmt.Errorf("unknown MEDIA_DRIVER %q: %w", settings.MediaDriver, errs.ErrMediaUnconfigured)
	}
	if err != nil {
		return nil, err
	}
	return NewStore(backend), nil
}

// Upload stores blob under folder. A zero length blob is skipped and yields "".
func (s *Store) Upload(ctx context.Context, blob Blob, folder string) (string, error) {
	if blob.Size <= 0 || blob.Reader == nil {
		return "", nil
	}

	url, err := s.backend.Put(ctx, folder, blob)
	if err != nil {
		return "", errs.NewMediaUploadError(folder, err)
	}

	s.logger.Debug().Str("folder", folder).Str("url", url).Int64("size", blob.Size).Msg("Uploaded media")
	return url, nil
}

// Destroy removes the object behind url. URLs without a recognisable identifier
// are skipped, and failures are only logged.
func (s *Store) Destroy(ctx context.Context, url string) {
	if url == "" {
		return
	}
	id, ok := s.backend.ObjectID(url)
	if !ok {
		s.logger.Debug().Str("url", url).Msg("No media identifier in url, skipping delete")
		return
	}

	if err := s.backend.Delete(ctx, id); err != nil {
		s.logger.Warn().Err(errs.NewMediaDeleteError(id, err)).Str("url", url).Msg("Failed to delete media object")
		return
	}
	s.logger.Debug().Str("id", id).Msg("Deleted media object")
}

// Close releases the backend's client when it holds one (GCS does).
func (s *Store) Close() error {
	if c, ok := s.backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// objectKey builds "<folder>/<uuid><ext>" for hosts that take a caller chosen key
func objectKey(folder, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return uuid.NewString() + ext
	}
	return folder + "/" + uuid.NewString() + ext
}

// keyFromURL strips baseURL from url and returns the remaining object key
func keyFromURL(baseURL, url string) (string, bool) {
	prefix := strings.TrimSuffix(baseURL, "/") + "/"
	if baseURL == "" || !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	if i := strings.IndexAny(key, "?#"); i >= 0 {
		key = key[:i]
	}
	if key == "" {
		return "", false
	}
	return key, true
}
