package config

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetters(t *testing.T) {
	c := map[string]string{
		"PORT":    "9000",
		"BAD_INT": "nine",
		"FLAG":    "true",
		"EMPTY":   "",
		"ORIGINS": "https://a.dev, ,https://b.dev",
	}

	assert.Equal(t, "9000", GetString(c, "PORT", "8080"))
	assert.Equal(t, "fallback", GetString(c, "EMPTY", "fallback"))
	assert.Equal(t, "fallback", GetString(nil, "PORT", "fallback"))
	assert.Equal(t, 9000, GetInt(c, "PORT", 1))
	assert.Equal(t, 7, GetInt(c, "BAD_INT", 7))
	assert.True(t, GetBool(c, "FLAG", false))
	assert.False(t, GetBool(c, "MISSING", false))
	assert.Equal(t, []string{"https://a.dev", "https://b.dev"}, GetList(c, "ORIGINS"))
}

func TestLoadDefaults(t *testing.T) {
	s := Load(map[string]string{"SESSION_IDLE_HOURS": "2"})

	assert.Equal(t, "8080", s.Port)
	assert.Equal(t, "cloudinary", s.MediaDriver)
	assert.Equal(t, "memory", s.CacheDriver)
	assert.Equal(t, 2*time.Hour, s.SessionIdle)
	assert.Equal(t, 24*time.Hour, s.SessionMaxAge)
	assert.Equal(t, 25, s.MaxOpenConns)
	assert.False(t, s.TrustedProxy)
	assert.Equal(t, 5*time.Minute, s.AlertInterval)
}

func TestLoadCloudinaryFallback(t *testing.T) {
	s := Load(map[string]string{"CLOUDINARY_URL": "cloudinary://k:s@demo"})
	assert.Equal(t, "cloudinary://k:s@demo", s.MediaURL)
}

type fakeLister struct {
	pages []*ssm.GetParametersByPathOutput
	calls int
}

func (f *fakeLister) GetParametersByPath(_ context.Context, _ *ssm.GetParametersByPathInput, _ ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error) {
	page := f.pages[f.calls]
	f.calls++
	return page, nil
}

func TestOverlayParameters(t *testing.T) {
	lister := &fakeLister{pages: []*ssm.GetParametersByPathOutput{
		{
			Parameters: []types.Parameter{
				{Name: aws.String("/portfolio/prod/SESSION_SECRET"), Value: aws.String("from-ssm")},
				{Name: aws.String("/portfolio/prod/PORT"), Value: aws.String("1234")},
			},
			NextToken: aws.String("next"),
		},
		{
			Parameters: []types.Parameter{
				{Name: aws.String("/portfolio/prod/REVALIDATE_SECRET"), Value: aws.String("rv")},
			},
		},
	}}
	c := map[string]string{"PORT": "8080"}

	require.NoError(t, overlayParameters(context.Background(), lister, "/portfolio/prod", c))

	assert.Equal(t, 2, lister.calls)
	assert.Equal(t, "from-ssm", c["SESSION_SECRET"])
	assert.Equal(t, "rv", c["REVALIDATE_SECRET"])
	assert.Equal(t, "8080", c["PORT"])
}
