package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperrors "github.com/sentimentlab/sentiment-service/internal/pkg/errors"
	"github.com/sentimentlab/sentiment-service/internal/pkg/security"
)

// maxBodyBytes bounds the /predict request body.
const maxBodyBytes = 1 << 20

// readiness is implemented by evaluators that can probe their pipeline.
type readiness interface {
	Ready(ctx context.Context) error
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	log := s.log.WithContext(r.Context()).WithModel(s.evaluator.Name())

	var req PredictRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			apperrors.WriteError(w, apperrors.InvalidRequestError("request body is required"))
			return
		}
		apperrors.WriteError(w, apperrors.InvalidRequestError("invalid JSON body"))
		return
	}
	if req.Text == nil {
		apperrors.WriteError(w, apperrors.InvalidRequestError("text is required"))
		return
	}
	text := *req.Text

	pred, err := s.evaluator.PredictSingle(r.Context(), text)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeUnavailable) {
			log.WithError(err).Warn("Model not ready")
		} else {
			log.WithError(err).Error("Prediction failed")
		}
		apperrors.WriteError(w, err)
		return
	}

	if s.metrics != nil {
		s.metrics.RecordPrediction(s.evaluator.Name(), pred.String())
	}
	log.Debug("Prediction",
		"text", security.SanitizeForLog(text),
		"sentiment", pred.String(),
	)

	writeJSON(w, http.StatusOK, PredictResponse{Sentiment: pred.String()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	probe, ok := s.evaluator.(readiness)
	if !ok {
		writeJSON(w, http.StatusOK, StatusResponse{Status: "ready", Model: s.evaluator.Name()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.ReadyTimeout)
	defer cancel()

	if err := probe.Ready(ctx); err != nil {
		s.log.WithContext(r.Context()).WithError(err).Warn("Readiness probe failed")
		writeJSON(w, http.StatusServiceUnavailable, StatusResponse{
			Status: "not_ready",
			Model:  s.evaluator.Name(),
			Error:  "inference pipeline unavailable",
		})
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{Status: "ready", Model: s.evaluator.Name()})
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	variants := s.registry.Variants()
	resp := ModelsResponse{Models: make([]ModelInfo, 0, len(variants))}
	for _, v := range variants {
		resp.Models = append(resp.Models, ModelInfo{
			Name:        v.Name,
			Model:       v.Model,
			Description: v.Description,
			Labels:      v.Labels,
			Loaded:      v.Name == s.evaluator.Name(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{Version: s.cfg.Version, Model: s.evaluator.Name()})
}
