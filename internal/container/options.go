package container

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Link store backends selectable with --link-store.
const (
	LinkStoreGist     = "gist"
	LinkStoreRedis    = "redis"
	LinkStorePostgres = "postgres"
	LinkStoreMemory   = "memory"
)

const defaultPort = 3000

var errInvalidOptions = errors.New("invalid options")

// Options is the server configuration. humacli fills it from flags and
// SERVICE_* environment variables.
type Options struct {
	Port         int    `default:"3000"                          help:"Port to listen on"                                    short:"p"`
	GitHubToken  string `help:"GitHub access token"              name:"github-token"`
	GitHubUser   string `help:"Owner of the CDN repository"      name:"github-user"`
	CDNRepo      string `help:"Repository that stores uploads"   name:"cdn-repo"`
	CDNBranch    string `default:"main"                          help:"Branch that receives uploads"                         name:"cdn-branch"`
	GistID       string `help:"Gist holding the link document"   name:"gist-id"`
	GistFile     string `help:"File inside the gist, default is the first file" name:"gist-file"`
	AppDomain    string `help:"Public base URL of returned links" name:"app-domain"`
	CodeLength   int    `default:"4"                             help:"Length of generated codes"                            short:"c"`
	MaxAttempts  int    `default:"10"                            help:"Generated code attempts before giving up"             name:"max-attempts"`
	LinkStore    string `default:"gist"                          help:"Link store backend: gist, redis, postgres or memory"  name:"link-store"`
	RedisAddr    string `help:"Redis address for events, cache and the redis link store" name:"redis-addr" short:"r"`
	DatabaseURL  string `help:"PostgreSQL URL for the postgres link store" name:"database-url"`
	CacheTTL     int    `default:"0"                             help:"Seconds to cache links in Redis, 0 disables"          name:"cache-ttl"`
	StrictLookup bool   `default:"false"                         help:"Answer 502 when the link store cannot be read"        name:"strict-lookup"`
	LogFormat    string `default:"console"                       help:"Log output format: console or json"                   name:"log-format"`
}

// CacheDuration returns CacheTTL as a duration.
func (o *Options) CacheDuration() time.Duration {
	return time.Duration(o.CacheTTL) * time.Second
}

type envFallback struct {
	key   string
	unset func(o *Options) bool
	set   func(o *Options, v string) error
}

func stringFallback(key string, field func(o *Options) *string) envFallback {
	return envFallback{
		key:   key,
		unset: func(o *Options) bool { return *field(o) == "" },
		set: func(o *Options, v string) error {
			*field(o) = v

			return nil
		},
	}
}

var envFallbacks = []envFallback{
	{
		key:   "PORT",
		unset: func(o *Options) bool { return o.Port == 0 || o.Port == defaultPort },
		set: func(o *Options, v string) error {
			port, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%w: PORT: %w", errInvalidOptions, err)
			}

			o.Port = port

			return nil
		},
	},
	stringFallback("GITHUB_TOKEN", func(o *Options) *string { return &o.GitHubToken }),
	stringFallback("GITHUB_USER", func(o *Options) *string { return &o.GitHubUser }),
	stringFallback("CDN_REPO", func(o *Options) *string { return &o.CDNRepo }),
	stringFallback("GIST_ID", func(o *Options) *string { return &o.GistID }),
	stringFallback("APP_DOMAIN", func(o *Options) *string { return &o.AppDomain }),
	stringFallback("REDIS_ADDR", func(o *Options) *string { return &o.RedisAddr }),
	stringFallback("DATABASE_URL", func(o *Options) *string { return &o.DatabaseURL }),
	{
		key:   "LOG_FORMAT",
		unset: func(o *Options) bool { return o.LogFormat == "" || o.LogFormat == "console" },
		set: func(o *Options, v string) error {
			o.LogFormat = v

			return nil
		},
	},
}

// ApplyEnvFallbacks fills options still empty (or at their default) from the
// plain variable names such as GITHUB_TOKEN and APP_DOMAIN.
func (o *Options) ApplyEnvFallbacks(lookup func(string) (string, bool)) error {
	for _, fb := range envFallbacks {
		v, ok := lookup(fb.key)
		if !ok || v == "" || !fb.unset(o) {
			continue
		}

		if err := fb.set(o, v); err != nil {
			return err
		}
	}

	return nil
}

// Validate reports every missing or inconsistent option at once.
func (o *Options) Validate() error {
	var errs []error

	required := func(value, flag string) {
		if value == "" {
			errs = append(errs, fmt.Errorf("%w: --%s is required", errInvalidOptions, flag))
		}
	}

	required(o.GitHubToken, "github-token")
	required(o.GitHubUser, "github-user")
	required(o.CDNRepo, "cdn-repo")
	required(o.AppDomain, "app-domain")

	switch o.LinkStore {
	case LinkStoreGist:
		required(o.GistID, "gist-id")
	case LinkStoreRedis:
		required(o.RedisAddr, "redis-addr")
	case LinkStorePostgres:
		required(o.DatabaseURL, "database-url")
	case LinkStoreMemory:
	default:
		errs = append(errs, fmt.Errorf("%w: unknown --link-store %q", errInvalidOptions, o.LinkStore))
	}

	if o.CacheTTL > 0 {
		required(o.RedisAddr, "redis-addr")
	}

	if o.CodeLength < 1 {
		errs = append(errs, fmt.Errorf("%w: --code-length must be positive", errInvalidOptions))
	}

	if o.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("%w: --max-attempts must be positive", errInvalidOptions))
	}

	if o.LogFormat != "console" && o.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("%w: --log-format must be console or json", errInvalidOptions))
	}

	return errors.Join(errs...)
}
