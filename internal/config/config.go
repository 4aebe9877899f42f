package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	TVDB       TVDBConfig       `mapstructure:"tvdb"`
	WebCatalog WebCatalogConfig `mapstructure:"webcatalog"`
	Torrent    TorrentConfig    `mapstructure:"torrent"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Ranking    RankingConfig    `mapstructure:"ranking"`
	Artwork    ArtworkConfig    `mapstructure:"artwork"`
	Release    ReleaseConfig    `mapstructure:"release"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// TVDBConfig holds TVDB v4 API configuration.
type TVDBConfig struct {
	APIKey   string        `mapstructure:"api_key"`
	Pin      string        `mapstructure:"pin"`
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  int           `mapstructure:"timeout"` // seconds
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

// WebCatalogConfig holds the secondary HTML catalog configuration.
type WebCatalogConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"` // seconds
}

// TorrentConfig holds torrent description scraping configuration.
type TorrentConfig struct {
	AllowedPrefixes []string `mapstructure:"allowed_prefixes"`
	Timeout         int      `mapstructure:"timeout"` // seconds
}

// CacheConfig holds resolution cache configuration.
// A zero TTL means entries never expire.
type CacheConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	NegativeTTL   time.Duration `mapstructure:"negative_ttl"`
	Negative      bool          `mapstructure:"negative"`
	TorrentTTL    time.Duration `mapstructure:"torrent_ttl"`
	MaxItems      int           `mapstructure:"max_items"`
	PruneSchedule string        `mapstructure:"prune_schedule"`
}

// RankingConfig holds candidate scoring constants.
type RankingConfig struct {
	TitleWeight     float64  `mapstructure:"title_weight"`
	QualityWeight   float64  `mapstructure:"quality_weight"`
	ExactMatch      float64  `mapstructure:"exact_match"`
	SlugMatch       float64  `mapstructure:"slug_match"`
	Contains        float64  `mapstructure:"contains"`
	WordOverlapMax  float64  `mapstructure:"word_overlap_max"`
	HasImage        float64  `mapstructure:"has_image"`
	OriginLanguage  float64  `mapstructure:"origin_language"`
	Series          float64  `mapstructure:"series"`
	Marker          float64  `mapstructure:"marker"`
	OriginLanguages []string `mapstructure:"origin_languages"`
	MarkerTerms     []string `mapstructure:"marker_terms"`
}

// ArtworkConfig holds TVDB artwork type codes.
type ArtworkConfig struct {
	SeasonPosterType int `mapstructure:"season_poster_type"`
	SeriesFanartType int `mapstructure:"series_fanart_type"`
	MovieFanartType  int `mapstructure:"movie_fanart_type"`
}

// ReleaseConfig holds filename parser configuration.
type ReleaseConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 3000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		TVDB: TVDBConfig{
			Pin:      "hello world",
			BaseURL:  "https://api4.thetvdb.com/v4",
			Timeout:  15,
			TokenTTL: 24 * time.Hour,
		},
		WebCatalog: WebCatalogConfig{
			BaseURL: "https://subsplease.org",
			Timeout: 15,
		},
		Torrent: TorrentConfig{
			AllowedPrefixes: []string{"https://nyaa.si", "https://sukebei.nyaa.si/"},
			Timeout:         15,
		},
		Cache: CacheConfig{
			TTL:           72 * time.Hour,
			NegativeTTL:   72 * time.Hour,
			Negative:      true,
			TorrentTTL:    0,
			MaxItems:      5000,
			PruneSchedule: "*/10 * * * *",
		},
		Ranking: RankingConfig{
			TitleWeight:     0.6,
			QualityWeight:   0.4,
			ExactMatch:      100,
			SlugMatch:       100,
			Contains:        90,
			WordOverlapMax:  80,
			HasImage:        20,
			OriginLanguage:  30,
			Series:          10,
			Marker:          20,
			OriginLanguages: []string{"jpn", "kor", "zho"},
			MarkerTerms:     []string{"anime", "crunchyroll"},
		},
		Artwork: ArtworkConfig{
			SeasonPosterType: 7,
			SeriesFanartType: 3,
			MovieFanartType:  15,
		},
		Release: ReleaseConfig{
			CacheTTL: 5 * time.Minute,
		},
	}
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.mona")
	}

	v.SetEnvPrefix("MONA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The bare TVDB_API_KEY variable is what existing deployments set.
	if err := v.BindEnv("tvdb.api_key", "MONA_TVDB_API_KEY", "TVDB_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind tvdb api key: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults mirrors Default into viper so that env-only deployments
// still see every key.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.path", d.Logging.Path)
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)
	v.SetDefault("logging.compress", true)

	v.SetDefault("tvdb.api_key", EmbeddedTVDBKey)
	v.SetDefault("tvdb.pin", d.TVDB.Pin)
	v.SetDefault("tvdb.base_url", d.TVDB.BaseURL)
	v.SetDefault("tvdb.timeout", d.TVDB.Timeout)
	v.SetDefault("tvdb.token_ttl", d.TVDB.TokenTTL)

	v.SetDefault("webcatalog.base_url", d.WebCatalog.BaseURL)
	v.SetDefault("webcatalog.timeout", d.WebCatalog.Timeout)

	v.SetDefault("torrent.allowed_prefixes", d.Torrent.AllowedPrefixes)
	v.SetDefault("torrent.timeout", d.Torrent.Timeout)

	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.negative_ttl", d.Cache.NegativeTTL)
	v.SetDefault("cache.negative", d.Cache.Negative)
	v.SetDefault("cache.torrent_ttl", d.Cache.TorrentTTL)
	v.SetDefault("cache.max_items", d.Cache.MaxItems)
	v.SetDefault("cache.prune_schedule", d.Cache.PruneSchedule)

	v.SetDefault("ranking.title_weight", d.Ranking.TitleWeight)
	v.SetDefault("ranking.quality_weight", d.Ranking.QualityWeight)
	v.SetDefault("ranking.exact_match", d.Ranking.ExactMatch)
	v.SetDefault("ranking.slug_match", d.Ranking.SlugMatch)
	v.SetDefault("ranking.contains", d.Ranking.Contains)
	v.SetDefault("ranking.word_overlap_max", d.Ranking.WordOverlapMax)
	v.SetDefault("ranking.has_image", d.Ranking.HasImage)
	v.SetDefault("ranking.origin_language", d.Ranking.OriginLanguage)
	v.SetDefault("ranking.series", d.Ranking.Series)
	v.SetDefault("ranking.marker", d.Ranking.Marker)
	v.SetDefault("ranking.origin_languages", d.Ranking.OriginLanguages)
	v.SetDefault("ranking.marker_terms", d.Ranking.MarkerTerms)

	v.SetDefault("artwork.season_poster_type", d.Artwork.SeasonPosterType)
	v.SetDefault("artwork.series_fanart_type", d.Artwork.SeriesFanartType)
	v.SetDefault("artwork.movie_fanart_type", d.Artwork.MovieFanartType)

	v.SetDefault("release.cache_ttl", d.Release.CacheTTL)
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
