package flow

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"SevaFlow/entity"
	"SevaFlow/internal/lib/sl"
)

// Response bodies larger than this are cut before landing in session data.
const maxActionResponse = 8 << 10

// HTTPInvoker executes api_call steps. Endpoint, headers and body run
// through the interpolator first, so flows can post collected answers to
// external systems.
type HTTPInvoker struct {
	client *http.Client
	interp *Interpolator
	log    *slog.Logger
}

func NewHTTPInvoker(timeout time.Duration, interp *Interpolator, log *slog.Logger) *HTTPInvoker {
	return &HTTPInvoker{
		client: &http.Client{Timeout: timeout},
		interp: interp,
		log:    log.With(sl.Module("flow.actions")),
	}
}

func (h *HTTPInvoker) Invoke(ctx context.Context, cfg entity.APIConfig, data map[string]string) (string, error) {
	method := strings.ToUpper(cfg.Method)
	if method == "" {
		method = http.MethodGet
	}
	endpoint := h.interp.Apply(cfg.Endpoint, data)

	var body io.Reader
	if cfg.Body != "" {
		body = strings.NewReader(h.interp.Apply(cfg.Body, data))
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	if cfg.Body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range cfg.Headers {
		req.Header.Set(key, h.interp.Apply(value, data))
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("invoke %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxActionResponse))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		h.log.Warn("action returned error status",
			slog.String("endpoint", endpoint),
			slog.Int("status", resp.StatusCode),
		)
		return "", fmt.Errorf("action status %d", resp.StatusCode)
	}

	return string(raw), nil
}
