package config

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"
)

// ParameterLister is the subset of the SSM client used to read parameters.
type ParameterLister interface {
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
}

// LoadSSM overlays parameters stored under SSM_PARAMETER_PATH onto the config map.
// The last path element of each parameter becomes the key, so
// /portfolio/prod/SESSION_SECRET sets SESSION_SECRET. Values already present in the
// environment win.
func LoadSSM(ctx context.Context, c map[string]string) error {
	prefix := GetString(c, "SSM_PARAMETER_PATH", "")
	if prefix == "" {
		return nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}

	return overlayParameters(ctx, ssm.NewFromConfig(awsCfg), prefix, c)
}

func overlayParameters(ctx context.Context, client ParameterLister, prefix string, c map[string]string) error {
	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(prefix),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	})

	loaded := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("read ssm parameters under %s: %w", prefix, err)
		}
		for _, p := range page.Parameters {
			key := strings.TrimSpace(path.Base(aws.ToString(p.Name)))
			if key == "" || key == "." || key == "/" {
				continue
			}
			if existing, ok := c[key]; ok && existing != "" {
				continue
			}
			c[key] = aws.ToString(p.Value)
			loaded++
		}
	}

	log.Info().Str("path", prefix).Int("count", loaded).Msg("Loaded parameters from SSM")
	return nil
}
