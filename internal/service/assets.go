package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"archecho/internal/model"
	"archecho/internal/storage"
)

// PlaceholderURL is substituted for any file whose object is missing or
// whose URL could not be minted.
const PlaceholderURL = "https://placehold.co/800x600.png"

// signedURLTTL bounds the validity of every minted URL. Callers must treat
// returned URLs as expired after this window.
const signedURLTTL = time.Hour

// AssetResolver turns durable storage paths into time-limited signed URLs.
// This is the only place signed URLs are minted.
type AssetResolver struct {
	store storage.Storage
	log   *zap.Logger
}

// NewAssetResolver constructs an AssetResolver.
func NewAssetResolver(store storage.Storage, log *zap.Logger) *AssetResolver {
	return &AssetResolver{store: store, log: log}
}

// Resolve populates the URL of every file concurrently and independently.
// One file's failure never affects another's: failed entries carry the
// placeholder URL instead. Output order matches input order. Never fails.
func (r *AssetResolver) Resolve(ctx context.Context, files []model.ProjectFile) []model.ProjectFile {
	if len(files) == 0 {
		return []model.ProjectFile{}
	}

	out := make([]model.ProjectFile, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			out[i] = r.resolveOne(gctx, f)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors
	return out
}

func (r *AssetResolver) resolveOne(ctx context.Context, f model.ProjectFile) model.ProjectFile {
	p := f.StoragePath
	if p == "" {
		f.URL = PlaceholderURL
		return f
	}
	// Legacy records store an absolute URL instead of a path; pass through.
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		f.URL = p
		return f
	}

	exists, err := r.store.Exists(ctx, p)
	if err != nil {
		r.log.Warn("asset existence check failed",
			zap.String("storage_path", p), zap.Error(err))
		f.URL = PlaceholderURL
		return f
	}
	if !exists {
		r.log.Warn("asset object missing", zap.String("storage_path", p))
		f.URL = PlaceholderURL
		return f
	}

	u, err := r.store.PresignGet(ctx, p, signedURLTTL)
	if err != nil {
		r.log.Warn("asset url signing failed",
			zap.String("storage_path", p), zap.Error(err))
		f.URL = PlaceholderURL
		return f
	}
	f.URL = u
	return f
}
