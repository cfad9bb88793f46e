package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aretw0/scribe"
	"github.com/aretw0/scribe/internal/config"
	"github.com/aretw0/scribe/pkg/adapters/llm"
	"github.com/aretw0/scribe/pkg/adapters/memory"
	"github.com/aretw0/scribe/pkg/adapters/process"
	"github.com/aretw0/scribe/pkg/adapters/redis"
	"github.com/aretw0/scribe/pkg/domain"
	"github.com/aretw0/scribe/pkg/flows"
	"github.com/aretw0/scribe/pkg/generate"
	"github.com/aretw0/scribe/pkg/persistence/middleware"
	"github.com/aretw0/scribe/pkg/ports"
	"github.com/aretw0/scribe/pkg/steps"
)

// App bundles the collaborators every command needs.
type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Catalog *flows.Catalog
	Tools   *process.Runner
	closers []func() error
}

// NewApp wires the configuration into a flow catalog. hooks are installed on
// every flow engine.
func NewApp(cfg config.Config, logger *slog.Logger, hooks ...domain.LifecycleHooks) (*App, error) {
	app := &App{Config: cfg, Logger: logger}

	// 1. Models
	llmCfg, err := cfg.LLMConfig()
	if err != nil {
		return nil, err
	}
	resolver := llm.NewResolver(llmCfg)

	// 2. Response cache
	cache, err := app.newCache()
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	// 3. External tools
	tools, err := loadTools(cfg.Tools.File, logger)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Tools = process.NewRunner(
		process.WithRegistry(tools),
		process.WithLogger(logger),
	)

	// 4. Steps and flows
	genOpts := []generate.Option{generate.WithLogger(logger)}
	if cache != nil {
		genOpts = append(genOpts, generate.WithCache(cache))
	}
	gen := generate.New(resolver, genOpts...)
	converter := steps.NewPDFConverter(app.Tools, gen, steps.WithConverterLogger(logger))
	lib := steps.New(
		steps.WithTools(app.Tools),
		steps.WithConverter(converter),
		steps.WithLogger(logger),
	)

	var engineOpts []scribe.Option
	if len(hooks) > 0 {
		engineOpts = append(engineOpts, scribe.WithLifecycleHooks(domain.ChainHooks(hooks...)))
	}

	app.Catalog, err = flows.NewCatalog(flows.Deps{
		Steps:     lib,
		Generator: gen,
		Logger:    logger,
		Options:   engineOpts,
	})
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("error initializing flows: %w", err)
	}
	return app, nil
}

// Engine returns the named flow or an error listing the known ones.
func (a *App) Engine(name string) (*scribe.Engine, error) {
	eng, ok := a.Catalog.Engine(name)
	if !ok {
		return nil, fmt.Errorf("unknown flow %q (available: %s)", name, strings.Join(a.Catalog.Names(), ", "))
	}
	return eng, nil
}

// Close releases the cache connection, if any.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) newCache() (ports.ResponseCache, error) {
	cache, err := a.newBackend()
	if err != nil || cache == nil {
		return nil, err
	}

	keyEnv := a.Config.Cache.EncryptionKeyEnv
	if keyEnv == "" {
		return cache, nil
	}
	var enc middleware.EncryptionConfig
	if enc.ActiveKey, err = readKey(keyEnv); err != nil {
		return nil, err
	}
	for _, env := range a.Config.Cache.FallbackKeyEnvs {
		k, err := readKey(env)
		if err != nil {
			return nil, err
		}
		enc.FallbackKeys = append(enc.FallbackKeys, k)
	}
	mw, err := middleware.NewEncryptionMiddleware(enc)
	if err != nil {
		return nil, err
	}
	return middleware.Chain(cache, mw), nil
}

func readKey(env string) ([]byte, error) {
	v := os.Getenv(env)
	if v == "" {
		return nil, fmt.Errorf("cache encryption key variable %s is not set", env)
	}
	k, err := middleware.ParseKey(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", env, err)
	}
	return k, nil
}

func (a *App) newBackend() (ports.ResponseCache, error) {
	ttl, err := a.Config.CacheTTL()
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(a.Config.Cache.Backend) {
	case config.CacheMemory:
		return memory.NewCache(memory.WithTTL(ttl)), nil
	case config.CacheRedis:
		rc := a.Config.Cache.Redis
		c := redis.New(rc.Addr, rc.Password, rc.DB, redis.WithTTL(ttl), redis.WithPrefix(rc.Prefix))

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := c.Ping(ctx); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("failed to connect to redis cache at %s: %w", rc.Addr, err)
		}
		a.closers = append(a.closers, c.Close)
		a.Logger.Debug("Response cache enabled", "backend", "redis", "addr", rc.Addr)
		return c, nil
	default:
		return nil, nil
	}
}

// loadTools merges the tools file over the built-in tool set.
func loadTools(path string, logger *slog.Logger) (map[string]process.ProcessConfig, error) {
	if path == "" {
		return process.DefaultTools(), nil
	}
	custom, err := process.LoadTools(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load tools config: %w", err)
	}
	if len(custom) > 0 {
		logger.Debug("Loaded tools config", "path", path, "tools", len(custom))
	}
	return process.Merge(process.DefaultTools(), custom), nil
}
