package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"music-api-go/favorites"
	"music-api-go/logcolors"
	"music-api-go/services/kugou"
	"music-api-go/stats"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const maxToggleBodyBytes = 64 << 10

// indexHandler serves the single HTML page, re-reading it on every request
func indexHandler(w http.ResponseWriter, r *http.Request) {
	content, err := os.ReadFile(conf.Configuration.StaticIndexPath)
	if err != nil {
		log.Errorf("%s Failed to read %s: %v", logcolors.LogStatic, conf.Configuration.StaticIndexPath, err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(content)
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "page not found", http.StatusNotFound)
}

func searchHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	quality := valueOrDefault(q.Get("quality"), conf.Configuration.DefaultQuality)
	if !kugou.ValidQuality(quality) {
		Respond(w, r).Error(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("unsupported quality: %s", quality)})
		return
	}

	req := kugou.SearchRequest{
		Query:      q.Get("msg"),
		Index:      q.Get("n"),
		MaxResults: valueOrDefault(q.Get("num"), conf.Configuration.DefaultMaxResults),
		Quality:    quality,
	}

	songs, err := musicClient.Search(r.Context(), req)
	if err != nil {
		writeClientError(w, r, err)
		return
	}

	Respond(w, r).SetQuality(quality).JSON(SearchResponse{
		Query:   req.Query,
		Quality: quality,
		Count:   len(songs),
		Songs:   songs,
	})
}

func detailHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	quality := valueOrDefault(q.Get("quality"), conf.Configuration.DefaultQuality)
	if !kugou.ValidQuality(quality) {
		Respond(w, r).Error(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("unsupported quality: %s", quality)})
		return
	}

	detail, err := musicClient.GetDetail(r.Context(), kugou.DetailRequest{
		Query:   q.Get("msg"),
		Index:   q.Get("n"),
		Quality: quality,
	})
	if err != nil {
		writeClientError(w, r, err)
		return
	}

	Respond(w, r).SetQuality(quality).JSON(detail)
}

func listFavoritesHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := favoritesStore.List()
	if err != nil {
		log.Errorf("%s Failed to list favorites: %v", logcolors.LogFavorites, err)
		Respond(w, r).Error(http.StatusInternalServerError, ErrorResponse{Error: "failed to read favorites"})
		return
	}

	Respond(w, r).JSON(FavoritesResponse{Count: len(entries), Favorites: entries})
}

func toggleFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	var song favorites.Song
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxToggleBodyBytes)).Decode(&song); err != nil {
		Respond(w, r).Error(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	favorited, err := favoritesStore.Toggle(song)
	if err != nil {
		if errors.Is(err, favorites.ErrMissingIndex) {
			Respond(w, r).Error(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		log.Errorf("%s Failed to toggle favorite %s: %v", logcolors.LogFavorites, song.Index, err)
		Respond(w, r).Error(http.StatusInternalServerError, ErrorResponse{Error: "failed to update favorites"})
		return
	}

	stats.Get().RecordToggle(favorited)
	Respond(w, r).JSON(FavoriteStatus{Index: song.Index, Favorited: favorited})
}

func favoriteStatusHandler(w http.ResponseWriter, r *http.Request) {
	index := mux.Vars(r)["n"]

	favorited, err := favoritesStore.IsFavorite(index)
	if err != nil {
		log.Errorf("%s Failed to check favorite %s: %v", logcolors.LogFavorites, index, err)
		Respond(w, r).Error(http.StatusInternalServerError, ErrorResponse{Error: "failed to read favorites"})
		return
	}

	Respond(w, r).JSON(FavoriteStatus{Index: index, Favorited: favorited})
}

func backupFavoritesHandler(w http.ResponseWriter, r *http.Request) {
	path, err := favoritesStore.Backup()
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, favorites.ErrBackupUnsupported) {
			status = http.StatusNotImplemented
		}
		log.Errorf("%s Backup failed: %v", logcolors.LogBackup, err)
		Respond(w, r).Error(status, ErrorResponse{Error: err.Error()})
		return
	}

	Respond(w, r).JSON(map[string]string{"backup": path})
}

func listBackupsHandler(w http.ResponseWriter, r *http.Request) {
	backups, err := favoritesStore.ListBackups()
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, favorites.ErrBackupUnsupported) {
			status = http.StatusNotImplemented
		}
		Respond(w, r).Error(status, ErrorResponse{Error: err.Error()})
		return
	}

	Respond(w, r).JSON(map[string]interface{}{"count": len(backups), "backups": backups})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := favoritesStore.List(); err != nil {
		Respond(w, r).Error(http.StatusServiceUnavailable, map[string]string{
			"status":    "unhealthy",
			"favorites": err.Error(),
		})
		return
	}

	Respond(w, r).JSON(map[string]string{
		"status":    "ok",
		"favorites": "ok",
		"upstream":  conf.Configuration.UpstreamBaseURL,
	})
}

func statsHandler(w http.ResponseWriter, r *http.Request) {
	Respond(w, r).JSON(stats.Get().Snapshot())
}

// writeClientError maps upstream client errors to HTTP responses
func writeClientError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, kugou.ErrEmptyQuery), errors.Is(err, kugou.ErrMissingIndex):
		Respond(w, r).Error(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, kugou.ErrInvalidStream):
		stats.Get().RecordInvalidStream()
		Respond(w, r).Error(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	default:
		if ue, ok := kugou.IsUpstreamError(err); ok {
			stats.Get().RecordUpstreamError()
			Respond(w, r).Error(http.StatusBadGateway, ErrorResponse{Error: ue.Error(), UpstreamStatus: ue.StatusCode})
			return
		}
		log.Errorf("%s Upstream call failed: %v", logcolors.LogUpstream, err)
		Respond(w, r).Error(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}

func valueOrDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
