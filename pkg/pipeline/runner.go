package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/modelgraph/pkg/cache"
	"github.com/matzehuels/modelgraph/pkg/model"
	"github.com/matzehuels/modelgraph/pkg/observability"
)

const keyTypeArtifact = "artifact"

// Runner executes the pipeline with caching. The CLI and the HTTP server
// share it.
//
// A Runner holds no per-run state, so one Runner may serve concurrent
// calls with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs interpret → render.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{
		DocHash: cache.Hash(opts.Source),
		Format:  opts.Format,
	}

	// Stage 1: Interpret
	start := time.Now()
	cfg, res, err := Interpret(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Config = cfg
	result.Model = res
	result.Stats.InterpretTime = time.Since(start)
	result.Stats.LayerCount = len(res.Layers)
	result.Stats.EdgeCount = len(res.Edges)
	result.Stats.Fallbacks = countFallbacks(res)

	opts.Logger.Info("interpreted model",
		"layers", result.Stats.LayerCount,
		"edges", result.Stats.EdgeCount,
		"duration", result.Stats.InterpretTime)
	if result.Stats.Fallbacks > 0 {
		opts.Logger.Warn("some sources name no earlier layer; reused the last channel count",
			"count", result.Stats.Fallbacks)
	}

	// Stage 2: Render
	start = time.Now()
	artifact, hit, err := r.RenderWithCacheInfo(ctx, result.DocHash, res, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifact = artifact
	result.CacheHit = hit
	result.Stats.RenderTime = time.Since(start)

	opts.Logger.Info("rendered graph",
		"format", opts.Format,
		"bytes", len(artifact),
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// RenderWithCacheInfo renders res, consulting the cache first unless
// opts.Refresh is set, and reports whether the artifact came from cache.
// docHash identifies the source document.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, docHash string, res *model.Result, opts Options) ([]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	key := r.Keyer.ArtifactKey(docHash, r.artifactKeyOpts(opts))
	hooks := observability.Cache()

	if !opts.Refresh {
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			opts.Logger.Warn("cache read failed", "error", err)
		}
		if err == nil && hit {
			hooks.OnCacheHit(ctx, keyTypeArtifact)
			return data, true, nil
		}
		hooks.OnCacheMiss(ctx, keyTypeArtifact)
	}

	data, err := Render(ctx, res, opts.Format, opts.Palette)
	if err != nil {
		return nil, false, err
	}

	if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
		opts.Logger.Warn("cache write failed", "error", err)
	} else {
		hooks.OnCacheSet(ctx, keyTypeArtifact, len(data))
	}
	return data, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) artifactKeyOpts(opts Options) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		DocFormat: string(opts.DocFormat),
		Format:    opts.Format,
		Channels:  opts.InputChannels,
		Palette:   opts.Palette,
	}
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
