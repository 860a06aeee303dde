package inits

import (
	"context"
	"remote-connection-manager/app/server/archive"
	"remote-connection-manager/app/server/config"
)

// Archiver 未配置存储桶时返回 nil
func Archiver(ctx context.Context, cfg *config.Config) (archive.Archiver, error) {
	if cfg.Archive.Bucket == "" {
		return nil, nil
	}

	arc, err := archive.NewS3(ctx, archive.Options{
		Bucket:    cfg.Archive.Bucket,
		Region:    cfg.Archive.Region,
		Endpoint:  cfg.Archive.Endpoint,
		AccessKey: cfg.Archive.AccessKey,
		SecretKey: cfg.Archive.SecretKey,
		Prefix:    cfg.Archive.Prefix,
	})
	if err != nil {
		return nil, err
	}
	return arc, nil
}
