package server

import (
	"encoding/json"
	"net/http"
)

// PredictRequest is the body of POST /predict.
// Text is a pointer so an absent field can be told apart from "".
type PredictRequest struct {
	Text *string `json:"text"`
}

// PredictResponse is returned by POST /predict.
type PredictResponse struct {
	Sentiment string `json:"sentiment"`
}

// StatusResponse is returned by /health and /ready.
type StatusResponse struct {
	Status string `json:"status"`
	Model  string `json:"model,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ModelInfo describes one registry variant.
type ModelInfo struct {
	Name        string   `json:"name"`
	Model       string   `json:"model"`
	Description string   `json:"description,omitempty"`
	Labels      []string `json:"labels"`
	Loaded      bool     `json:"loaded"`
}

// ModelsResponse is returned by GET /v1/models.
type ModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

// VersionResponse is returned by GET /v1/version.
type VersionResponse struct {
	Version string `json:"version"`
	Model   string `json:"model"`
}

// writeJSON writes v as a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
