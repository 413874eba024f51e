package config

import (
	"strings"

	"music-api-go/logcolors"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

var conf = mustLoad()

type Config struct {
	Configuration struct {
		Port            string `envconfig:"PORT" default:"3000"`
		StaticIndexPath string `envconfig:"STATIC_INDEX_PATH" default:"index.html"`
		LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`

		// Upstream search API
		UpstreamBaseURL        string `envconfig:"UPSTREAM_BASE_URL" default:"https://www.hhlqilongzhu.cn/api/dg_kugouSQ.php"`
		UpstreamTimeoutSeconds int    `envconfig:"UPSTREAM_TIMEOUT_SECONDS" default:"10"`
		DefaultQuality         string `envconfig:"DEFAULT_QUALITY" default:"viper_atmos"`
		DefaultMaxResults      string `envconfig:"DEFAULT_MAX_RESULTS" default:"100"`
		DetailResultCount      string `envconfig:"DETAIL_RESULT_COUNT" default:"100"` // list size the upstream needs to resolve one index
		DefaultCoverPath       string `envconfig:"DEFAULT_COVER_PATH" default:"./img/4k.png"`

		// Favorites storage
		FavoritesDBPath     string `envconfig:"FAVORITES_DB_PATH" default:"./data/favorites.db"`
		FavoritesBackupPath string `envconfig:"FAVORITES_BACKUP_PATH" default:"./data/backups"`

		RateLimitPerSecond  int    `envconfig:"RATE_LIMIT_PER_SECOND" default:"5"`
		RateLimitBurstLimit int    `envconfig:"RATE_LIMIT_BURST_LIMIT" default:"10"`
		APIKey              string `envconfig:"API_KEY" default:""`
		APIKeyRequired      bool   `envconfig:"API_KEY_REQUIRED" default:"false"`
		CORSAllowedOrigins  string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	}

	FeatureFlags struct {
		FavoritesCompression bool `envconfig:"FF_FAVORITES_COMPRESSION" default:"false"`
	}
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas, dropping blanks.
func (c Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.Configuration.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// load loads the configuration from the environment.
func load() (Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Debugf("No .env file loaded: %v", err)
	}

	cfg := Config{}
	err = envconfig.Process("", &cfg)
	return cfg, err
}

func mustLoad() Config {
	c, err := load()
	if err != nil {
		log.WithError(err).Warnf("%s Unable to load configuration", logcolors.LogConfig)
	}

	return c
}

// Load re-reads .env and the environment instead of returning the values
// captured at startup.
func Load() (Config, error) {
	return load()
}

func Get() Config {
	return conf
}
