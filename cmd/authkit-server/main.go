// Command authkit-server exposes registration, login and a protected identity
// endpoint over HTTP, backed by the Redis credential store.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/alicebob/miniredis/v2"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/MrEthical07/authkit"
	"github.com/MrEthical07/authkit/config"
	"github.com/MrEthical07/authkit/credstore"
	"github.com/MrEthical07/authkit/internal/logging"
)

type startServerParams struct {
	fx.In

	Server *httpServer
	Logger *slog.Logger
}

func main() {
	env := flag.String("env", envOr("AUTHKIT_ENV", "local"), "configuration name; reads <env>.yaml")
	dir := flag.String("config-dir", envOr("AUTHKIT_CONFIG_DIR", "config"), "directory holding the configuration files")
	flag.Parse()

	fx.New(
		fx.Supply(configSource{env: *env, dir: *dir}),
		injectInfra(),
		injectAuth(),
		injectDelivery(),
		fx.Invoke(startServer),
	).Run()
}

type configSource struct {
	env string
	dir string
}

func injectInfra() fx.Option {
	return fx.Provide(
		newSettings,
		newLogger,
		newRedisClient,
	)
}

func injectAuth() fx.Option {
	return fx.Provide(
		newUserStore,
		newEngine,
	)
}

func injectDelivery() fx.Option {
	return fx.Provide(
		newAuthHandler,
		newHTTPServer,
	)
}

func newSettings(src configSource) (*config.Settings, error) {
	return config.Load(src.env, src.dir)
}

func newLogger(s *config.Settings) (*slog.Logger, error) {
	logger, err := logging.New(s.Env.Log.Level, s.Env.Log.Pretty)
	if err != nil {
		return nil, err
	}
	logger = logger.With(slog.String("service", s.Env.ServiceName))
	slog.SetDefault(logger)
	return logger, nil
}

// newRedisClient connects to the configured Redis, or starts an in-process
// miniredis when no address is set.
func newRedisClient(lc fx.Lifecycle, s *config.Settings, logger *slog.Logger) (redis.UniversalClient, error) {
	addr := s.Redis.Addr
	var embedded *miniredis.Miniredis
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, errors.Wrap(err, "start embedded redis")
		}
		embedded = mr
		addr = mr.Addr()
		logger.Warn("redis.addr is empty, using embedded redis; credentials are lost on exit", slog.String("addr", addr))
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    []string{addr},
		Password: s.Redis.Password,
		DB:       s.Redis.DB,
	})

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			err := client.Close()
			if embedded != nil {
				embedded.Close()
			}
			return errors.Wrap(err, "close redis client")
		},
	})
	return client, nil
}

func newUserStore(lc fx.Lifecycle, client redis.UniversalClient, s *config.Settings, logger *slog.Logger) authkit.UserStore {
	store := credstore.NewRedisStore(client, s.Redis.Prefix)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			rtt, err := store.Ping(ctx)
			if err != nil {
				return errors.Wrap(err, "ping credential store")
			}
			logger.Debug("credential store reachable", slog.Duration("rtt", rtt))
			return nil
		},
	})
	return store
}

func newEngine(lc fx.Lifecycle, s *config.Settings, store authkit.UserStore, logger *slog.Logger) (*authkit.Engine, error) {
	cfg, err := s.AuthConfig()
	if err != nil {
		return nil, err
	}
	keys, err := config.LoadKeyPair(s.Keys)
	if err != nil {
		return nil, err
	}

	builder := authkit.New().
		WithConfig(cfg).
		WithUserStore(store).
		WithKeyPair(keys).
		WithLogger(logger)
	if cfg.Audit.Enabled {
		builder = builder.WithAuditSink(authkit.NewJSONWriterSink(os.Stdout))
	}

	engine, err := builder.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build auth engine")
	}
	report := engine.SecurityReport()
	logger.Info("auth engine ready",
		slog.String("alg", report.SigningAlgorithm),
		slog.Duration("tokenTTL", report.TokenTTL),
		slog.Bool("fallbackForced", report.FallbackForced),
	)
	for _, f := range report.Findings {
		logger.Warn("security posture", slog.String("code", f.Code), slog.String("detail", f.Message))
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			engine.Close()
			return nil
		},
	})
	return engine, nil
}

func startServer(params startServerParams) {
	go func() {
		if err := params.Server.Serve(); err != nil {
			params.Logger.Error("Failed to start server", slog.Any("error", err))
			os.Exit(1)
		}
	}()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
