package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/joho/godotenv"
	"github.com/samber/do"
	"github.com/serroba/gistcdn/internal/container"
	"github.com/serroba/gistcdn/internal/messaging"
	"go.uber.org/zap"
)

// options configures the analytics worker. REDIS_ADDR and LOG_FORMAT are
// honoured as in the server.
type options struct {
	RedisAddr string `help:"Redis holding the event streams, default localhost:6379" name:"redis-addr" short:"r"`
	LogFormat string `default:"console" help:"Log output format: console or json"     name:"log-format"`
}

func main() {
	_ = godotenv.Load()

	cli := humacli.New(func(hooks humacli.Hooks, o *options) {
		opts := &container.Options{RedisAddr: o.RedisAddr, LogFormat: o.LogFormat}
		envErr := opts.ApplyEnvFallbacks(os.LookupEnv)

		if opts.RedisAddr == "" {
			opts.RedisAddr = "localhost:6379"
		}

		injector := do.New()
		do.ProvideValue(injector, opts)
		container.LoggerPackage(injector)
		container.RedisPackage(injector)
		container.ConsumerGroupPackage(injector)

		logger := do.MustInvoke[*zap.Logger](injector)

		hooks.OnStart(func() {
			if envErr != nil {
				logger.Fatal("invalid environment", zap.Error(envErr))
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			group := do.MustInvoke[*messaging.ConsumerGroup](injector)
			if err := group.Start(ctx); err != nil {
				logger.Fatal("failed to start consumer group", zap.Error(err))
			}

			logger.Info("consumer running", zap.String("redis", opts.RedisAddr))

			<-ctx.Done()

			logger.Info("shutting down")

			if err := injector.Shutdown(); err != nil {
				logger.Error("shutdown error", zap.Error(err))
			}

			_ = logger.Sync()
		})
	})

	cli.Run()
}
