package cmd

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/matheuskafuri/folio/internal/cache"
	"github.com/matheuskafuri/folio/internal/config"
	"github.com/matheuskafuri/folio/internal/loader"
	"github.com/matheuskafuri/folio/internal/logging"
	"github.com/matheuskafuri/folio/internal/resolve"
	"github.com/matheuskafuri/folio/internal/source"
	"github.com/matheuskafuri/folio/internal/transform"
)

const (
	domainProjects = "projects"
	domainBlog     = "blog"
)

// cacheKeys maps a domain to its cache key.
var cacheKeys = map[string]string{
	domainProjects: "projects",
	domainBlog:     "blogs",
}

// memoryLifeWindow bounds how long the in-memory backend keeps an entry,
// stale ones included.
const memoryLifeWindow = 24 * time.Hour

// root holds everything a command needs, built in dependency order.
type root struct {
	Config   *config.Config
	Logger   *zap.Logger
	Cache    *cache.Cache
	Resolver *resolve.Resolver
	Domains  []resolve.Domain
}

type rootOpts struct {
	// LogFile sends logs to a file instead of stderr.
	LogFile string
	// CacheOnly skips building the loaders.
	CacheOnly bool
}

func newRoot(opts rootOpts) (*root, error) {
	r := &root{}

	logger, err := logging.New(logging.Options{Verbose: flagVerbose, File: opts.LogFile})
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	r.Logger = logger

	if err := config.LoadEnv(flagConfig); err != nil {
		r.Logger.Warn("Reading .env failed", zap.Error(err))
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	r.Config = cfg

	backend, err := openBackend(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	r.Cache = cache.New(backend,
		cache.WithNamespace(cfg.Cache.Namespace),
		cache.WithLogger(r.Logger.Named("cache")))
	r.Resolver = resolve.New(r.Cache, r.Logger.Named("resolve"))

	if !opts.CacheOnly {
		r.Domains = buildDomains(cfg, r.Logger)
	}
	return r, nil
}

func openBackend(cfg *config.Config) (cache.Backend, error) {
	if cfg.Cache.Backend == "memory" {
		return cache.NewMemory(memoryLifeWindow, cfg.Cache.MemorySizeMB)
	}
	return cache.OpenSQLite(cfg.CacheFile())
}

// buildDomains wires the projects and blog loaders from cfg.
func buildDomains(cfg *config.Config, logger *zap.Logger) []resolve.Domain {
	preview := cfg.Fetch.PreviewURL

	gh := source.NewGitHubClient(cfg.GitHubToken(), cfg.BatchTimeout())
	projects := &loader.Projects{
		Lister: source.NewGitHubLister(gh, logger.Named("github")),
		Owner:  cfg.GitHub.Username,
		Items:  cfg.Projects.Items,
		Options: transform.Options{
			DefaultCategory: cfg.Projects.DefaultCategory,
			PreviewTemplate: preview,
		},
		Logger: logger.Named(domainProjects),
	}

	proxies := make([]source.Proxy, 0, len(cfg.Fetch.Proxies))
	for _, p := range cfg.Fetch.Proxies {
		proxies = append(proxies, source.Proxy{Name: p.Name, URL: p.URL, Field: p.Field})
	}
	pages := source.NewContentClient(proxies,
		source.WithProxyTimeout(cfg.ProxyTimeout()),
		source.WithMinPayload(cfg.Fetch.MinPayload),
		source.WithContentLogger(logger.Named("content")))

	feeds := make([]loader.Feed, 0, len(cfg.Blog.Feeds))
	for _, f := range cfg.Blog.Feeds {
		feeds = append(feeds, loader.Feed{URL: f.URL, Category: f.Category})
	}

	blog := &loader.Blog{
		Pages:   pages,
		Feeds:   source.NewFeedClient(&http.Client{Timeout: cfg.ItemTimeout()}, logger.Named("feed")),
		Posts:   cfg.Blog.Posts,
		Sources: feeds,
		Options: transform.Options{
			DefaultCategory: cfg.Blog.DefaultCategory,
			PreviewTemplate: preview,
		},
		ItemTimeout:  cfg.ItemTimeout(),
		BatchTimeout: cfg.BatchTimeout(),
		Limit:        cfg.Fetch.Concurrency,
		Logger:       logger.Named(domainBlog),
	}

	return []resolve.Domain{
		{
			Name:     domainProjects,
			CacheKey: cacheKeys[domainProjects],
			TTL:      cfg.ProjectsTTL(),
			Loader:   projects,
			Seed:     cfg.Seed.Projects,
		},
		{
			Name:     domainBlog,
			CacheKey: cacheKeys[domainBlog],
			TTL:      cfg.BlogTTL(),
			Loader:   blog,
			Seed:     cfg.Seed.Blog,
		},
	}
}

func (r *root) domain(name string) (resolve.Domain, error) {
	for _, d := range r.Domains {
		if d.Name == name {
			return d, nil
		}
	}
	return resolve.Domain{}, fmt.Errorf("unknown domain %q", name)
}

// Close releases the cache and flushes the logger.
func (r *root) Close() error {
	var err error
	if r.Cache != nil {
		err = r.Cache.Close()
	}
	if r.Logger != nil {
		_ = r.Logger.Sync()
	}
	return err
}
