package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/rand/v2"

	"github.com/joho/godotenv"

	"github.com/slipstream/mona/internal/cache"
	"github.com/slipstream/mona/internal/config"
	"github.com/slipstream/mona/internal/logger"
	"github.com/slipstream/mona/internal/metadata/tvdb"
	"github.com/slipstream/mona/internal/metrics"
	"github.com/slipstream/mona/internal/ranking"
	"github.com/slipstream/mona/internal/release"
	"github.com/slipstream/mona/internal/resolver"
	"github.com/slipstream/mona/internal/scrape"
)

type globalOptions struct {
	configPath string
	envFile    string
}

// app holds the wired services shared by every command.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	cache    *cache.Cache
	metrics  *metrics.Manager
	parser   *release.Parser
	torrents *scrape.TorrentPage
	resolver *resolver.Resolver
}

// loadConfig reads the dotenv file, if present, then the configuration.
func loadConfig(opts *globalOptions) (*config.Config, error) {
	if opts.envFile != "" {
		if err := godotenv.Load(opts.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}
	return config.Load(opts.configPath)
}

func newApp(cfg *config.Config, logOut io.Writer) (*app, error) {
	log := logger.NewWithOutput(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Path:       cfg.Logging.Path,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	}, logOut)

	metricsManager := metrics.NewManager()
	store := cache.New(cache.Config{MaxItems: cfg.Cache.MaxItems})

	catalog := tvdb.NewClient(cfg.TVDB, log.Logger)
	catalog.SetObserver(metricsManager)
	if !catalog.IsConfigured() {
		log.Warn().Msg("TVDB API key is not configured; only the web catalog will be used")
	}

	web, err := scrape.NewWebCatalog(cfg.WebCatalog, log.Logger)
	if err != nil {
		log.Close()
		return nil, err
	}
	web.SetObserver(metricsManager)

	torrents := scrape.NewTorrentPage(cfg.Torrent, log.Logger)
	torrents.SetObserver(metricsManager)

	res := resolver.New(catalog, web, torrents, resolver.Options{
		Cache:    store,
		CacheCfg: cfg.Cache,
		Artwork:  cfg.Artwork,
		Weights:  ranking.WeightsFromConfig(cfg.Ranking),
		Logger:   log.Logger,
		Observer: metricsManager,
		Rand:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	})

	return &app{
		cfg:      cfg,
		log:      log,
		cache:    store,
		metrics:  metricsManager,
		parser:   release.NewParser(store, cfg.Release.CacheTTL),
		torrents: torrents,
		resolver: res,
	}, nil
}

func (a *app) Close() error {
	return a.log.Close()
}
