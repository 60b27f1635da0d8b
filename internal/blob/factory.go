package blob

import (
	"context"
	"fmt"

	"github.com/GOLDENPLIX/pes-2013-updater/internal/config"
)

// Open builds the store selected by the mirror configuration. It returns
// (nil, nil) for the "none" driver.
func Open(ctx context.Context, cfg config.MirrorConfig) (Store, error) {
	switch Driver(cfg.Driver) {
	case "", DriverNone:
		return nil, nil
	case DriverFilesystem:
		return NewFilesystem(cfg.Path)
	case DriverMemory:
		return NewMemory(), nil
	case DriverS3:
		return NewS3(ctx, S3Config{
			Region:    cfg.Region,
			Bucket:    cfg.Bucket,
			Endpoint:  cfg.Endpoint,
			PathStyle: cfg.Endpoint != "",
		})
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Driver)
	}
}
