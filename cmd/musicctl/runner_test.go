package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"music-api-go/config"
	"music-api-go/services/kugou"
	"music-api-go/storage"

	log "github.com/sirupsen/logrus"
)

func newTestRunner(t *testing.T, upstream http.HandlerFunc) (*Runner, *bytes.Buffer) {
	t.Helper()

	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)

	cfg := config.Get()
	cfg.Configuration.FavoritesDBPath = memoryDBPath

	logger := log.New()
	logger.SetOutput(io.Discard)

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config:  &cfg,
		Client:  kugou.NewClient(kugou.Options{BaseURL: server.URL}),
		Backend: storage.NewMemoryBackend(),
		Logger:  logger,
		Output:  output,
	})
	t.Cleanup(func() { runner.Close() })
	return runner, output
}

func run(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	return newApp(r).Run(context.Background(), append([]string{"musicctl"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.client == nil {
				t.Error("expected default client to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.backend != nil {
				t.Error("expected backend to be opened lazily")
			}
		})

		t.Run("nil config reads the environment", func(t *testing.T) {
			t.Setenv("DEFAULT_QUALITY", "flac")
			t.Setenv("FAVORITES_DB_PATH", memoryDBPath)

			runner := NewRunner(RunnerOpts{})
			if runner.config.Configuration.DefaultQuality != "flac" {
				t.Errorf("expected DEFAULT_QUALITY from environment, got %q", runner.config.Configuration.DefaultQuality)
			}
			if runner.config.Configuration.FavoritesDBPath != memoryDBPath {
				t.Errorf("expected FAVORITES_DB_PATH from environment, got %q", runner.config.Configuration.FavoritesDBPath)
			}
		})

		t.Run("memory path opens memory backend", func(t *testing.T) {
			cfg := config.Get()
			cfg.Configuration.FavoritesDBPath = memoryDBPath
			runner := NewRunner(RunnerOpts{Config: &cfg})

			if _, err := runner.favorites(); err != nil {
				t.Fatalf("expected favorites to open, got %v", err)
			}
			if _, ok := runner.backend.(*storage.MemoryBackend); !ok {
				t.Errorf("expected memory backend, got %T", runner.backend)
			}
		})
	})

	t.Run("search", func(t *testing.T) {
		var gotQuery string
		runner, output := newTestRunner(t, func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query().Get("msg")
			w.Write([]byte(`{"data":[{"n":1,"title":"晴天","singer":"周杰伦","Duration":"4:29"}]}`))
		})

		if err := run(t, runner, "search", "周杰伦", "晴天"); err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if gotQuery != "周杰伦 晴天" {
			t.Errorf("expected joined query, got %q", gotQuery)
		}

		var songs []kugou.SongSummary
		if err := json.Unmarshal(output.Bytes(), &songs); err != nil {
			t.Fatalf("expected JSON output, got %q", output.String())
		}
		if len(songs) != 1 || songs[0].Title != "晴天" {
			t.Errorf("unexpected songs: %+v", songs)
		}
	})

	t.Run("search rejects bad quality", func(t *testing.T) {
		runner, _ := newTestRunner(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("upstream should not be called")
		})

		err := run(t, runner, "search", "--quality", "999", "晴天")
		if err == nil || !strings.Contains(err.Error(), "unsupported quality") {
			t.Errorf("expected quality error, got %v", err)
		}
	})

	t.Run("detail", func(t *testing.T) {
		runner, output := newTestRunner(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"title":"晴天","singer":"周杰伦","cover":"","music_url":"http://cdn.test/a.mp3","lyrics":"[00:01]"}`))
		})

		if err := run(t, runner, "detail", "--n", "1", "晴天"); err != nil {
			t.Fatalf("detail failed: %v", err)
		}

		var detail kugou.SongDetail
		json.Unmarshal(output.Bytes(), &detail)
		if detail.StreamURL != "http://cdn.test/a.mp3" || detail.CoverURL != kugou.DefaultCoverPath {
			t.Errorf("unexpected detail: %+v", detail)
		}
	})

	t.Run("detail invalid stream", func(t *testing.T) {
		runner, _ := newTestRunner(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"music_url":""}`))
		})

		if err := run(t, runner, "detail", "--n", "1", "晴天"); err == nil {
			t.Error("expected invalid stream error")
		}
	})

	t.Run("fav toggle, check and list", func(t *testing.T) {
		runner, output := newTestRunner(t, func(w http.ResponseWriter, r *http.Request) {})

		if err := run(t, runner, "fav", "toggle", "--n", "5", "--title", "稻香", "--singer", "周杰伦"); err != nil {
			t.Fatalf("toggle failed: %v", err)
		}
		if !strings.Contains(output.String(), `"favorited":true`) {
			t.Errorf("expected favorited=true, got %q", output.String())
		}

		output.Reset()
		if err := run(t, runner, "fav", "check", "--n", "5"); err != nil {
			t.Fatalf("check failed: %v", err)
		}
		if !strings.Contains(output.String(), `"favorited":true`) {
			t.Errorf("expected check to report favorited, got %q", output.String())
		}

		output.Reset()
		if err := run(t, runner, "fav", "list"); err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if !strings.Contains(output.String(), `"title":"稻香"`) {
			t.Errorf("expected list to contain entry, got %q", output.String())
		}
	})

	t.Run("fav toggle requires index", func(t *testing.T) {
		runner, _ := newTestRunner(t, func(w http.ResponseWriter, r *http.Request) {})

		if err := run(t, runner, "fav", "toggle", "--title", "x"); err == nil {
			t.Error("expected missing --n to fail")
		}
	})

	t.Run("writeJSON pretty", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := &Runner{output: output}

		if err := runner.writeJSON(map[string]int{"a": 1}, true); err != nil {
			t.Fatalf("writeJSON failed: %v", err)
		}
		if output.String() != "{\n  \"a\": 1\n}\n" {
			t.Errorf("unexpected output %q", output.String())
		}
	})
}
