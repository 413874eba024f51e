package main

import (
	"encoding/json"
	"net/http"
)

// APIResponse centralizes header setting and JSON encoding for API handlers
type APIResponse struct {
	w       http.ResponseWriter
	r       *http.Request
	quality string
}

// Respond creates a response helper for the request
func Respond(w http.ResponseWriter, r *http.Request) *APIResponse {
	return &APIResponse{w: w, r: r}
}

// SetQuality sets the X-Quality header value
func (a *APIResponse) SetQuality(quality string) *APIResponse {
	a.quality = quality
	return a
}

func (a *APIResponse) writeHeaders() {
	a.w.Header().Set("Content-Type", "application/json")
	a.w.Header().Set("Cache-Control", "no-store")

	if a.quality != "" {
		a.w.Header().Set("X-Quality", a.quality)
	}
}

// JSON writes headers and encodes data as JSON (200 OK)
func (a *APIResponse) JSON(data interface{}) error {
	a.writeHeaders()
	return json.NewEncoder(a.w).Encode(data)
}

// Error writes headers, sets status code, and encodes an error body
func (a *APIResponse) Error(statusCode int, data interface{}) error {
	a.writeHeaders()
	a.w.WriteHeader(statusCode)
	return json.NewEncoder(a.w).Encode(data)
}
