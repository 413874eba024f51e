package main

import (
	"net/http"

	"github.com/gorilla/mux"
)

// adminPaths require X-API-Key when API_KEY_REQUIRED is set
var adminPaths = []string{
	"/api/favorites/backup",
	"/api/favorites/backups",
}

// setupRoutes configures all HTTP routes
func setupRoutes(router *mux.Router) {
	// Static page
	router.HandleFunc("/", indexHandler).Methods("GET", "HEAD")
	router.HandleFunc("/index.html", indexHandler).Methods("GET", "HEAD")

	// Upstream search and detail
	router.HandleFunc("/api/search", searchHandler).Methods("GET")
	router.HandleFunc("/api/detail", detailHandler).Methods("GET")

	// Favorites; fixed paths are registered before the {n} pattern
	router.HandleFunc("/api/favorites", listFavoritesHandler).Methods("GET")
	router.HandleFunc("/api/favorites/toggle", toggleFavoriteHandler).Methods("POST")
	router.HandleFunc("/api/favorites/backup", backupFavoritesHandler).Methods("POST")
	router.HandleFunc("/api/favorites/backups", listBackupsHandler).Methods("GET")
	router.HandleFunc("/api/favorites/{n}", favoriteStatusHandler).Methods("GET")

	// Health and stats endpoints
	router.HandleFunc("/health", healthHandler).Methods("GET")
	router.HandleFunc("/stats", statsHandler).Methods("GET")

	router.NotFoundHandler = http.HandlerFunc(notFoundHandler)
}
