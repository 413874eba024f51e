package main

import (
	"music-api-go/favorites"
	"music-api-go/services/kugou"
)

// SearchResponse is the body of /api/search
type SearchResponse struct {
	Query   string              `json:"query"`
	Quality string              `json:"quality"`
	Count   int                 `json:"count"`
	Songs   []kugou.SongSummary `json:"songs"`
}

// FavoritesResponse is the body of GET /api/favorites
type FavoritesResponse struct {
	Count     int               `json:"count"`
	Favorites []favorites.Entry `json:"favorites"`
}

// FavoriteStatus reports whether one index is favorited
type FavoriteStatus struct {
	Index     string `json:"n"`
	Favorited bool   `json:"favorited"`
}

// ErrorResponse is returned for every failed API call
type ErrorResponse struct {
	Error          string `json:"error"`
	UpstreamStatus int    `json:"upstreamStatus,omitempty"`
}
