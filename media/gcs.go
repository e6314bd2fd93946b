package media

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"github.com/rpupo63/portfolio-cms/config"
	"github.com/rs/zerolog/log"
)

type GCS struct {
	client  *gcs.Client
	bucket  string
	baseURL string
}

func NewGCS(ctx context.Context, settings config.Settings) (*GCS, error) {
	if settings.MediaBucket == "" {
		return nil, errors.New("MEDIA_BUCKET is not set for the gcs driver")
	}
	c, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	baseURL := settings.MediaPublicBaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://storage.googleapis.com/%s", settings.MediaBucket)
	}
	return &GCS{client: c, bucket: settings.MediaBucket, baseURL: baseURL}, nil
}

func (g *GCS) Close() error { return g.client.Close() }

func (g *GCS) Put(ctx context.Context, folder string, blob Blob) (string, error) {
	key := objectKey(folder, blob.Filename)
	obj := g.client.Bucket(g.bucket).Object(key)

	w := obj.NewWriter(ctx)
	w.ContentType = blob.ContentType

	if _, err := io.Copy(w, blob.Reader); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	// buckets with uniform access reject object ACLs; they are public at bucket level
	if err := obj.ACL().Set(ctx, gcs.AllUsers, gcs.RoleReader); err != nil {
		log.Debug().Err(err).Str("object", key).Msg("Could not set public ACL on object")
	}

	return g.baseURL + "/" + key, nil
}

func (g *GCS) Delete(ctx context.Context, id string) error {
	return g.client.Bucket(g.bucket).Object(id).Delete(ctx)
}

func (g *GCS) ObjectID(url string) (string, bool) {
	return keyFromURL(g.baseURL, url)
}
