package gradevue

import (
	"context"

	"github.com/jcorme/gradevue/internal/config"
	"github.com/jcorme/gradevue/internal/logger"
)

// NewClientFromEnv creates a Client from config.yaml (or CONFIG_PATH), a .env
// file and the SVUE_*, HTTP_* and LOG_* environment variables.
func NewClientFromEnv(ctx context.Context) (*Client, error) {
	cfg, err := config.Load()

	if err != nil {
		return nil, err
	}

	return newClientFromConfig(ctx, cfg)
}

func newClientFromConfig(ctx context.Context, cfg *config.Config) (*Client, error) {
	return NewClient(ctx, cfg.Portal.DistrictURL, cfg.Portal.Username, cfg.Portal.Password,
		WithLogger(logger.New(cfg.Log)),
		WithEndpoint(cfg.Portal.Endpoint),
		WithTimeout(cfg.HTTP.Timeout),
		WithRetry(cfg.HTTP.RetryCount, cfg.HTTP.RetryWait),
		WithCredentialCheck(!cfg.Portal.SkipCredentialCheck),
	)
}
