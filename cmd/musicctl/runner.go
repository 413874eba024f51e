package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"music-api-go/config"
	"music-api-go/favorites"
	"music-api-go/logcolors"
	"music-api-go/services/kugou"
	"music-api-go/storage"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

const memoryDBPath = ":memory:"

// Runner holds the dependencies shared by every command
type Runner struct {
	config  config.Config
	client  *kugou.Client
	backend storage.Backend
	store   *favorites.Store
	logger  *log.Logger
	output  io.Writer
}

// RunnerOpts configures a Runner. Nil fields fall back to config-driven defaults.
type RunnerOpts struct {
	Config  *config.Config
	Client  *kugou.Client
	Backend storage.Backend
	Logger  *log.Logger
	Output  io.Writer
}

func NewRunner(opts RunnerOpts) *Runner {
	var cfg config.Config
	if opts.Config != nil {
		cfg = *opts.Config
	} else {
		loaded, err := config.Load()
		if err != nil {
			log.Warnf("%s Falling back to startup configuration: %v", logcolors.LogConfig, err)
			loaded = config.Get()
		}
		cfg = loaded
	}
	if opts.Logger == nil {
		opts.Logger = log.New()
		opts.Logger.SetOutput(os.Stderr)
		if level, err := log.ParseLevel(cfg.Configuration.LogLevel); err == nil {
			opts.Logger.SetLevel(level)
		}
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Client == nil {
		opts.Client = kugou.NewClient(kugou.Options{
			BaseURL:           cfg.Configuration.UpstreamBaseURL,
			HTTPClient:        &http.Client{Timeout: time.Duration(cfg.Configuration.UpstreamTimeoutSeconds) * time.Second},
			DetailResultCount: cfg.Configuration.DetailResultCount,
			DefaultCoverPath:  cfg.Configuration.DefaultCoverPath,
		})
	}

	return &Runner{
		config:  cfg,
		client:  opts.Client,
		backend: opts.Backend,
		logger:  opts.Logger,
		output:  opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		searchCommand, detailCommand, favCommand,
	} {
		commands = append(commands, fn(r))
	}
	return commands
}

// favorites opens the favorites backend on first use
func (r *Runner) favorites() (*favorites.Store, error) {
	if r.store != nil {
		return r.store, nil
	}

	if r.backend == nil {
		path := r.config.Configuration.FavoritesDBPath
		if path == memoryDBPath {
			r.backend = storage.NewMemoryBackend()
		} else {
			b, err := storage.NewBoltBackend(path, r.config.Configuration.FavoritesBackupPath, r.config.FeatureFlags.FavoritesCompression)
			if err != nil {
				return nil, fmt.Errorf("failed to open favorites: %w", err)
			}
			r.backend = b
		}
	}

	r.store = favorites.NewStore(r.backend)
	return r.store, nil
}

// Close releases the favorites backend if one was opened
func (r *Runner) Close() error {
	if r.backend == nil {
		return nil
	}
	return r.backend.Close()
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(append(output, '\n')); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
