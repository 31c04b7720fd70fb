package inference

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/sentimentlab/sentiment-service/internal/pkg/errors"
	"github.com/sentimentlab/sentiment-service/internal/pkg/logger"
)

// maxErrorBody bounds how much of a failed response is kept in the error.
const maxErrorBody = 1024

// readyProbe is the text sent when checking that a model is loaded.
const readyProbe = "ready"

// HTTPConfig configures an HTTPPipeline.
type HTTPConfig struct {
	BaseURL           string
	Token             string
	Timeout           time.Duration
	RequestsPerSecond float64 // 0 = unlimited
	WaitForModel      bool
}

// HTTPPipeline classifies text through a HuggingFace-compatible inference endpoint.
type HTTPPipeline struct {
	baseURL      string
	token        string
	waitForModel bool
	httpClient   *http.Client
	limiter      *rate.Limiter
	log          *logger.Logger
	obs          Observer
}

type classifyRequest struct {
	Inputs     string           `json:"inputs"`
	Parameters *classifyParams  `json:"parameters,omitempty"`
	Options    *classifyOptions `json:"options,omitempty"`
}

type classifyParams struct {
	Truncation bool `json:"truncation"`
	MaxLength  int  `json:"max_length,omitempty"`
}

type classifyOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type apiError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time,omitempty"`
}

// NewHTTPPipeline creates a pipeline for the given endpoint.
func NewHTTPPipeline(cfg HTTPConfig, log *logger.Logger, obs Observer) (*HTTPPipeline, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.ValidationError(fmt.Sprintf("invalid inference url: %q", cfg.BaseURL))
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	if log == nil {
		log = logger.Discard()
	}

	return &HTTPPipeline{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		token:        cfg.Token,
		waitForModel: cfg.WaitForModel,
		httpClient:   &http.Client{Timeout: timeout},
		limiter:      limiter,
		log:          log,
		obs:          obs,
	}, nil
}

// Classify sends text to {base}/{model} and returns the top-scoring label.
func (p *HTTPPipeline) Classify(ctx context.Context, model, text string, opts ClassifyOptions) (Prediction, error) {
	start := time.Now()
	pred, err := p.classify(ctx, model, text, opts)
	if p.obs != nil {
		p.obs.ObserveInference(model, time.Since(start), err)
	}
	return pred, err
}

func (p *HTTPPipeline) classify(ctx context.Context, model, text string, opts ClassifyOptions) (Prediction, error) {
	if model == "" {
		return Prediction{}, errors.ValidationError("model is required")
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return Prediction{}, errors.MLError("waiting for inference rate limit", err)
		}
	}

	reqBody := classifyRequest{
		Inputs: text,
		Parameters: &classifyParams{
			Truncation: opts.Truncation,
			MaxLength:  opts.MaxLength,
		},
	}
	if p.waitForModel {
		reqBody.Options = &classifyOptions{WaitForModel: true}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return Prediction{}, errors.InternalError("marshal inference request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.modelURL(model), bytes.NewReader(body))
	if err != nil {
		return Prediction{}, errors.InternalError("create inference request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return Prediction{}, errors.TimeoutError("inference request").WithDetail("model", model)
		}
		return Prediction{}, errors.MLError("send inference request", err).WithDetail("model", model)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Prediction{}, p.statusError(resp, model)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Prediction{}, errors.MLError("read inference response", err).WithDetail("model", model)
	}

	pred, err := parsePredictions(raw)
	if err != nil {
		return Prediction{}, errors.MLError("decode inference response", err).WithDetail("model", model)
	}

	p.log.Debug("Classified text", "model", model, "label", pred.Label, "score", pred.Score)
	return pred, nil
}

// Ready sends a short probe to model and reports whether it answered.
func (p *HTTPPipeline) Ready(ctx context.Context, model string) error {
	_, err := p.Classify(ctx, model, readyProbe, DefaultClassifyOptions())
	return err
}

// Close releases idle connections.
func (p *HTTPPipeline) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}

func (p *HTTPPipeline) modelURL(model string) string {
	return p.baseURL + "/" + strings.TrimLeft(model, "/")
}

func (p *HTTPPipeline) statusError(resp *http.Response, model string) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	msg := strings.TrimSpace(string(data))
	var apiErr apiError
	if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
		msg = apiErr.Error
	}

	if resp.StatusCode == http.StatusServiceUnavailable && apiErr.EstimatedTime > 0 {
		return errors.ServiceUnavailableError(model).
			WithDetail("estimated_time", fmt.Sprintf("%.1f", apiErr.EstimatedTime))
	}

	return errors.MLError(
		fmt.Sprintf("inference endpoint returned status %d", resp.StatusCode),
		stderrors.New(msg),
	).WithDetail("model", model)
}

// parsePredictions accepts either [[{label,score},...]] or [{label,score},...]
// and returns the highest-scoring entry.
func parsePredictions(raw []byte) (Prediction, error) {
	var nested [][]Prediction
	if err := json.Unmarshal(raw, &nested); err == nil {
		if len(nested) == 0 {
			return Prediction{}, fmt.Errorf("empty prediction list")
		}
		return top(nested[0])
	}

	var flat []Prediction
	if err := json.Unmarshal(raw, &flat); err != nil {
		return Prediction{}, fmt.Errorf("unexpected response shape: %w", err)
	}
	return top(flat)
}

func top(preds []Prediction) (Prediction, error) {
	if len(preds) == 0 {
		return Prediction{}, fmt.Errorf("empty prediction list")
	}

	best := preds[0]
	for _, p := range preds[1:] {
		if p.Score > best.Score {
			best = p
		}
	}

	if best.Label == "" {
		return Prediction{}, fmt.Errorf("prediction has no label")
	}
	return best, nil
}
