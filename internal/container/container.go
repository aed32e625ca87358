// Package container wires the application with samber/do.
package container

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/google/go-github/v62/github"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/gistcdn/internal/analytics"
	analyticsstore "github.com/serroba/gistcdn/internal/analytics/store"
	"github.com/serroba/gistcdn/internal/cdn"
	"github.com/serroba/gistcdn/internal/githost"
	"github.com/serroba/gistcdn/internal/handlers"
	"github.com/serroba/gistcdn/internal/health"
	"github.com/serroba/gistcdn/internal/messaging"
	"github.com/serroba/gistcdn/internal/middleware"
	"github.com/serroba/gistcdn/internal/ratelimit"
	"github.com/serroba/gistcdn/internal/shortener"
	"github.com/serroba/gistcdn/internal/store"
	"go.uber.org/zap"
)

// ConsumerGroupName is the Redis stream consumer group of the analytics worker.
const ConsumerGroupName = "analytics"

// RedisConn owns the shared Redis client.
type RedisConn struct {
	*redis.Client
}

// Shutdown closes the client.
func (c *RedisConn) Shutdown() error {
	return c.Close()
}

// PostgresConn owns the PostgreSQL pool.
type PostgresConn struct {
	*pgxpool.Pool
}

// Shutdown closes the pool.
func (c *PostgresConn) Shutdown() error {
	c.Close()

	return nil
}

// RateLimitSweeper evicts idle clients from the in-memory rate limit store
// until shutdown.
type RateLimitSweeper struct {
	store  *store.RateLimitMemoryStore
	cancel context.CancelFunc
	done   chan struct{}
}

func newRateLimitSweeper(s *store.RateLimitMemoryStore) *RateLimitSweeper {
	ctx, cancel := context.WithCancel(context.Background())
	sweeper := &RateLimitSweeper{store: s, cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(sweeper.done)
		s.Run(ctx, time.Minute, ratelimit.DefaultPolicy().LongestWindow())
	}()

	return sweeper
}

// Shutdown stops the sweep loop.
func (s *RateLimitSweeper) Shutdown() error {
	s.cancel()
	<-s.done

	return nil
}

// LoggerPackage provides *zap.Logger, JSON in production or console otherwise.
func LoggerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.LogFormat == "json" {
			return zap.NewProduction()
		}

		return zap.NewDevelopment()
	})
}

// RedisPackage provides *RedisConn. It is only invoked when --redis-addr is set.
func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*RedisConn, error) {
		opts := do.MustInvoke[*Options](i)
		if opts.RedisAddr == "" {
			return nil, fmt.Errorf("%w: redis requested without --redis-addr", errInvalidOptions)
		}

		client := redis.NewClient(&redis.Options{Addr: opts.RedisAddr})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()

			return nil, fmt.Errorf("connect to redis at %s: %w", opts.RedisAddr, err)
		}

		return &RedisConn{Client: client}, nil
	})
}

// PostgresPackage provides *PostgresConn with the links schema in place.
func PostgresPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*PostgresConn, error) {
		opts := do.MustInvoke[*Options](i)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pool, err := pgxpool.New(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("create postgres pool: %w", err)
		}

		if err := store.NewPostgresStore(pool).EnsureSchema(ctx); err != nil {
			pool.Close()

			return nil, fmt.Errorf("ensure schema: %w", err)
		}

		return &PostgresConn{Pool: pool}, nil
	})
}

// GitHubPackage provides the GitHub client, the content store and the
// upload service.
func GitHubPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*github.Client, error) {
		opts := do.MustInvoke[*Options](i)

		return githost.NewClient(opts.GitHubToken, &http.Client{Timeout: 30 * time.Second}), nil
	})

	do.Provide(injector, func(i *do.Injector) (*githost.ContentStore, error) {
		opts := do.MustInvoke[*Options](i)
		client := do.MustInvoke[*github.Client](i)

		return githost.NewContentStore(client, &http.Client{Timeout: 60 * time.Second}, githost.ContentConfig{
			Owner:  opts.GitHubUser,
			Repo:   opts.CDNRepo,
			Branch: opts.CDNBranch,
		}), nil
	})

	do.Provide(injector, func(i *do.Injector) (*cdn.Service, error) {
		contents := do.MustInvoke[*githost.ContentStore](i)
		gen := do.MustInvoke[shortener.CodeGenerator](i)

		return cdn.NewService(contents, gen), nil
	})
}

// RepositoryPackage provides the code generator, the shortener.Repository
// selected by --link-store (optionally behind the Redis cache) and the
// shortener service.
func RepositoryPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (shortener.CodeGenerator, error) {
		opts := do.MustInvoke[*Options](i)

		return shortener.NewCodeGenerator(opts.CodeLength)
	})

	do.Provide(injector, func(i *do.Injector) (*store.DocumentStore, error) {
		opts := do.MustInvoke[*Options](i)
		client := do.MustInvoke[*github.Client](i)

		return store.NewDocumentStore(githost.NewGistDocument(client, opts.GistID, opts.GistFile)), nil
	})

	do.Provide(injector, func(i *do.Injector) (shortener.Repository, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		repo, err := linkStore(i, opts)
		if err != nil {
			return nil, err
		}

		if opts.CacheTTL > 0 {
			conn := do.MustInvoke[*RedisConn](i)
			repo = store.NewRedisCacheRepository(repo, conn.Client, opts.CacheDuration(), logger)
		}

		logger.Info("link store ready",
			zap.String("backend", opts.LinkStore),
			zap.Duration("cache_ttl", opts.CacheDuration()),
		)

		return repo, nil
	})

	do.Provide(injector, func(i *do.Injector) (*shortener.Service, error) {
		opts := do.MustInvoke[*Options](i)
		repo := do.MustInvoke[shortener.Repository](i)
		gen := do.MustInvoke[shortener.CodeGenerator](i)

		return shortener.NewService(repo, gen, opts.MaxAttempts), nil
	})
}

func linkStore(i *do.Injector, opts *Options) (shortener.Repository, error) {
	switch opts.LinkStore {
	case LinkStoreGist:
		return do.MustInvoke[*store.DocumentStore](i), nil
	case LinkStoreRedis:
		conn, err := do.Invoke[*RedisConn](i)
		if err != nil {
			return nil, err
		}

		return store.NewRedisStore(conn.Client), nil
	case LinkStorePostgres:
		conn, err := do.Invoke[*PostgresConn](i)
		if err != nil {
			return nil, err
		}

		return store.NewPostgresStore(conn.Pool), nil
	case LinkStoreMemory:
		return store.NewMemoryStore(), nil
	}

	return nil, fmt.Errorf("%w: unknown link store %q", errInvalidOptions, opts.LinkStore)
}

// RateLimitPackage provides the policy limiter and scope resolver. Counters
// are shared through Redis when --redis-addr is set and kept in process
// memory otherwise.
func RateLimitPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (ratelimit.Store, error) {
		opts := do.MustInvoke[*Options](i)
		if opts.RedisAddr != "" {
			return store.NewRateLimitRedisStore(do.MustInvoke[*RedisConn](i).Client), nil
		}

		return do.MustInvoke[*RateLimitSweeper](i).store, nil
	})

	do.Provide(injector, func(_ *do.Injector) (*RateLimitSweeper, error) {
		return newRateLimitSweeper(store.NewRateLimitMemoryStore()), nil
	})

	do.Provide(injector, func(i *do.Injector) (*ratelimit.PolicyLimiter, error) {
		return ratelimit.NewPolicyLimiter(do.MustInvoke[ratelimit.Store](i), ratelimit.DefaultPolicy()), nil
	})

	do.Provide(injector, func(_ *do.Injector) (ratelimit.ScopeResolver, error) {
		return ratelimit.NewOperationScopeResolver(), nil
	})
}

// PublisherGroupPackage provides the analytics publisher: Redis streams when
// --redis-addr is set, an in-process channel otherwise.
func PublisherGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		if opts.RedisAddr == "" {
			logger.Info("no redis configured, analytics events stay in process")

			return messaging.NewPublisherGroup(messaging.NewInProcessPublisher(logger)), nil
		}

		conn := do.MustInvoke[*RedisConn](i)

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: conn.Client},
			messaging.NewZapLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("create redis stream publisher: %w", err)
		}

		return messaging.NewPublisherGroup(publisher), nil
	})
}

func events(publisher message.Publisher) handlers.Events {
	return handlers.Events{
		LinkCreated:  messaging.NewPublishFunc[analytics.LinkCreatedEvent](publisher, analytics.TopicLinkCreated),
		LinkResolved: messaging.NewPublishFunc[analytics.LinkResolvedEvent](publisher, analytics.TopicLinkResolved),
		FileUploaded: messaging.NewPublishFunc[analytics.FileUploadedEvent](publisher, analytics.TopicFileUploaded),
	}
}

func healthCheckers(i *do.Injector, opts *Options) map[string]health.Checker {
	checkers := map[string]health.Checker{
		"github": do.MustInvoke[*githost.ContentStore](i),
	}

	switch opts.LinkStore {
	case LinkStoreGist:
		checkers["gist"] = do.MustInvoke[*store.DocumentStore](i)
	case LinkStorePostgres:
		checkers["postgres"] = do.MustInvoke[*PostgresConn](i)
	}

	if opts.RedisAddr != "" {
		checkers["redis"] = health.NewRedisChecker(do.MustInvoke[*RedisConn](i).Client)
	}

	return checkers
}

// HTTPPackage provides the router and the huma API with every route registered.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)

		huma.NewError = handlers.NewError

		config := huma.DefaultConfig("gistcdn", "1.0.0")
		config.Info.Description = "File uploads to a GitHub repository and short links stored in a gist."
		// Responses stay plain {url} and {error} objects.
		config.CreateHooks = nil

		api := humachi.New(router, config)

		limiter := do.MustInvoke[*ratelimit.PolicyLimiter](i)
		resolver := do.MustInvoke[ratelimit.ScopeResolver](i)

		api.UseMiddleware(middleware.AccessLog(logger))
		api.UseMiddleware(middleware.RequestMeta(api))
		api.UseMiddleware(middleware.PolicyRateLimiter(api, limiter, resolver, logger))

		publishers := do.MustInvoke[*messaging.PublisherGroup](i)

		handler := handlers.NewHandler(
			do.MustInvoke[*shortener.Service](i),
			do.MustInvoke[*cdn.Service](i),
			opts.AppDomain,
			opts.StrictLookup,
			events(publishers.Publisher()),
			logger,
		)

		health.RegisterRoutes(api, health.NewHandler(healthCheckers(i, opts), logger))
		handlers.RegisterRoutes(api, handler)

		return api, nil
	})
}

// ConsumerGroupPackage provides the analytics consumer group reading the
// Redis streams written by PublisherGroupPackage.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (analytics.Store, error) {
		return analyticsstore.NewNoop(do.MustInvoke[*zap.Logger](i)), nil
	})

	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		logger := do.MustInvoke[*zap.Logger](i)
		conn := do.MustInvoke[*RedisConn](i)

		subscriber, err := redisstream.NewSubscriber(
			redisstream.SubscriberConfig{
				Client:        conn.Client,
				ConsumerGroup: ConsumerGroupName,
			},
			messaging.NewZapLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("create redis stream subscriber: %w", err)
		}

		sink := do.MustInvoke[analytics.Store](i)
		group := messaging.NewConsumerGroup(subscriber, logger)

		group.Add(messaging.NewConsumer[analytics.LinkCreatedEvent](
			subscriber, analytics.TopicLinkCreated, sink.SaveLinkCreated, logger))
		group.Add(messaging.NewConsumer[analytics.LinkResolvedEvent](
			subscriber, analytics.TopicLinkResolved, sink.SaveLinkResolved, logger))
		group.Add(messaging.NewConsumer[analytics.FileUploadedEvent](
			subscriber, analytics.TopicFileUploaded, sink.SaveFileUploaded, logger))

		return group, nil
	})
}
