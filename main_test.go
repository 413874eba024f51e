package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"music-api-go/favorites"
	"music-api-go/storage"
)

// setupTestEnvironment points the package globals at a fake upstream and an
// in-memory favorites store, returning the wrapped server handler
func setupTestEnvironment(t *testing.T, upstream http.HandlerFunc) http.Handler {
	t.Helper()

	upstreamServer := httptest.NewServer(upstream)
	t.Cleanup(upstreamServer.Close)

	original := conf
	conf.Configuration.UpstreamBaseURL = upstreamServer.URL
	conf.Configuration.RateLimitPerSecond = 1000
	conf.Configuration.RateLimitBurstLimit = 1000
	conf.Configuration.APIKey = "test-key"
	conf.Configuration.APIKeyRequired = true
	t.Cleanup(func() { conf = original })

	musicClient = newMusicClient(conf)
	favoritesStore = favorites.NewStore(storage.NewMemoryBackend())

	return buildHandler(conf)
}

func staticUpstream(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

func doRequest(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIndexHandler(t *testing.T) {
	h := setupTestEnvironment(t, staticUpstream(http.StatusOK, `{}`))

	indexPath := filepath.Join(t.TempDir(), "index.html")
	if err := os.WriteFile(indexPath, []byte("<html>music</html>"), 0644); err != nil {
		t.Fatalf("Failed to write index: %v", err)
	}
	conf.Configuration.StaticIndexPath = indexPath

	for _, path := range []string{"/", "/index.html"} {
		rec := doRequest(t, h, "GET", path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
		if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html") {
			t.Errorf("%s: expected text/html, got %q", path, rec.Header().Get("Content-Type"))
		}
		if rec.Body.String() != "<html>music</html>" {
			t.Errorf("%s: unexpected body %q", path, rec.Body.String())
		}
	}
}

func TestIndexHandler_MissingFile(t *testing.T) {
	h := setupTestEnvironment(t, staticUpstream(http.StatusOK, `{}`))
	conf.Configuration.StaticIndexPath = filepath.Join(t.TempDir(), "missing.html")

	rec := doRequest(t, h, "GET", "/", "")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", rec.Code)
	}
}

func TestUnknownPathNotFound(t *testing.T) {
	h := setupTestEnvironment(t, staticUpstream(http.StatusOK, `{}`))

	rec := doRequest(t, h, "GET", "/style.css", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	var gotQuery string
	h := setupTestEnvironment(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"data":[
			{"n":1,"title":"晴天","singer":"周杰伦","Duration":"4:29"},
			{"n":2,"title":"x","singer":"y","Duration":"0:00"}
		]}`))
	})

	rec := doRequest(t, h, "GET", "/api/search?msg=%E5%91%A8%E6%9D%B0%E4%BC%A6&num=10", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp SearchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Count != 1 || resp.Songs[0].Index != "1" || resp.Songs[0].Artist != "周杰伦" {
		t.Errorf("Unexpected search response: %+v", resp)
	}
	if resp.Quality != "viper_atmos" {
		t.Errorf("Expected default quality, got %q", resp.Quality)
	}
	if !strings.Contains(gotQuery, "num=10") {
		t.Errorf("Expected num=10 to be forwarded, got %q", gotQuery)
	}
}

func TestSearchEndpoint_Errors(t *testing.T) {
	tests := []struct {
		name     string
		upstream http.HandlerFunc
		target   string
		expected int
	}{
		{"missing msg", staticUpstream(http.StatusOK, `{}`), "/api/search", http.StatusBadRequest},
		{"bad quality", staticUpstream(http.StatusOK, `{}`), "/api/search?msg=a&quality=999", http.StatusBadRequest},
		{"upstream failure", staticUpstream(http.StatusServiceUnavailable, ``), "/api/search?msg=a", http.StatusBadGateway},
		{"unparseable body", staticUpstream(http.StatusOK, `<html>`), "/api/search?msg=a", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := setupTestEnvironment(t, tt.upstream)
			rec := doRequest(t, h, "GET", tt.target, "")
			if rec.Code != tt.expected {
				t.Errorf("Expected %d, got %d: %s", tt.expected, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestSearchEndpoint_UpstreamStatusReported(t *testing.T) {
	h := setupTestEnvironment(t, staticUpstream(http.StatusTeapot, ``))

	rec := doRequest(t, h, "GET", "/api/search?msg=a", "")
	var resp ErrorResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.UpstreamStatus != http.StatusTeapot {
		t.Errorf("Expected upstreamStatus 418, got %+v", resp)
	}
}

func TestDetailEndpoint(t *testing.T) {
	h := setupTestEnvironment(t, staticUpstream(http.StatusOK,
		`{"title":"晴天","singer":"周杰伦","cover":"","music_url":"//cdn.test/a.mp3"}`))

	rec := doRequest(t, h, "GET", "/api/detail?msg=a&n=1&quality=flac", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Quality") != "flac" {
		t.Errorf("Expected X-Quality flac, got %q", rec.Header().Get("X-Quality"))
	}

	var detail map[string]string
	json.Unmarshal(rec.Body.Bytes(), &detail)
	if detail["music_url"] != "https://cdn.test/a.mp3" {
		t.Errorf("Expected normalized stream URL, got %q", detail["music_url"])
	}
	if detail["cover"] != conf.Configuration.DefaultCoverPath {
		t.Errorf("Expected default cover, got %q", detail["cover"])
	}
	if v, ok := detail["lyrics"]; !ok || v != "" {
		t.Errorf("Expected empty lyrics field, got %q (present=%v)", v, ok)
	}
}

func TestDetailEndpoint_Errors(t *testing.T) {
	tests := []struct {
		name     string
		upstream http.HandlerFunc
		target   string
		expected int
	}{
		{"missing index", staticUpstream(http.StatusOK, `{}`), "/api/detail?msg=a", http.StatusBadRequest},
		{"invalid stream", staticUpstream(http.StatusOK, `{"music_url":"?from=longzhu_api"}`), "/api/detail?msg=a&n=1", http.StatusUnprocessableEntity},
		{"upstream failure", staticUpstream(http.StatusInternalServerError, ``), "/api/detail?msg=a&n=1", http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := setupTestEnvironment(t, tt.upstream)
			rec := doRequest(t, h, "GET", tt.target, "")
			if rec.Code != tt.expected {
				t.Errorf("Expected %d, got %d: %s", tt.expected, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestFavoritesEndpoints(t *testing.T) {
	h := setupTestEnvironment(t, staticUpstream(http.StatusOK, `{}`))

	body := `{"n":"1","title":"晴天","singer":"周杰伦"}`
	rec := doRequest(t, h, "POST", "/api/favorites/toggle", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var status FavoriteStatus
	json.Unmarshal(rec.Body.Bytes(), &status)
	if !status.Favorited || status.Index != "1" {
		t.Errorf("Expected favorited=true for n=1, got %+v", status)
	}

	rec = doRequest(t, h, "GET", "/api/favorites/1", "")
	json.Unmarshal(rec.Body.Bytes(), &status)
	if !status.Favorited {
		t.Error("Expected status endpoint to report favorited")
	}

	rec = doRequest(t, h, "GET", "/api/favorites", "")
	var list FavoritesResponse
	json.Unmarshal(rec.Body.Bytes(), &list)
	if list.Count != 1 || list.Favorites[0].Title != "晴天" || list.Favorites[0].StreamURL != "" {
		t.Errorf("Unexpected favorites list: %+v", list)
	}

	rec = doRequest(t, h, "POST", "/api/favorites/toggle", body)
	json.Unmarshal(rec.Body.Bytes(), &status)
	if status.Favorited {
		t.Error("Expected second toggle to unfavorite")
	}

	rec = doRequest(t, h, "GET", "/api/favorites/1", "")
	json.Unmarshal(rec.Body.Bytes(), &status)
	if status.Favorited {
		t.Error("Expected status endpoint to report not favorited")
	}
}

func TestToggleFavorite_BadRequests(t *testing.T) {
	h := setupTestEnvironment(t, staticUpstream(http.StatusOK, `{}`))

	for _, body := range []string{`not json`, `{"title":"no index"}`} {
		rec := doRequest(t, h, "POST", "/api/favorites/toggle", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Body %q: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestBackupRequiresAPIKey(t *testing.T) {
	h := setupTestEnvironment(t, staticUpstream(http.StatusOK, `{}`))

	rec := doRequest(t, h, "POST", "/api/favorites/backup", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without key, got %d", rec.Code)
	}

	req := httptest.NewRequest("POST", "/api/favorites/backup", nil)
	req.Header.Set("X-API-Key", "test-key")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	// the in-memory backend cannot snapshot itself
	if rec.Code != http.StatusNotImplemented {
		t.Errorf("Expected 501 for memory backend, got %d", rec.Code)
	}
}

func TestHealthAndStats(t *testing.T) {
	h := setupTestEnvironment(t, staticUpstream(http.StatusOK, `{}`))

	rec := doRequest(t, h, "GET", "/health", "")
	if rec.Code != http.StatusOK {
		t.Errorf("Expected healthy, got %d", rec.Code)
	}

	rec = doRequest(t, h, "GET", "/stats", "")
	var snapshot map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &snapshot); err != nil {
		t.Fatalf("Failed to decode stats: %v", err)
	}
	if _, ok := snapshot["requests"]; !ok {
		t.Errorf("Expected requests section in stats, got %v", snapshot)
	}
}

func TestHealth_StorageFailure(t *testing.T) {
	h := setupTestEnvironment(t, staticUpstream(http.StatusOK, `{}`))
	backend := storage.NewMemoryBackend()
	backend.Close()
	favoritesStore = favorites.NewStore(backend)

	rec := doRequest(t, h, "GET", "/health", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", rec.Code)
	}
}

func TestValueOrDefault(t *testing.T) {
	if valueOrDefault("", "x") != "x" || valueOrDefault("y", "x") != "y" {
		t.Error("valueOrDefault returned unexpected value")
	}
}
