package handlers

import (
	"net/http"
	"time"

	"github.com/ignitoosolutions/ignito1/internal/domain"
	"github.com/ignitoosolutions/ignito1/internal/platform/httpx"
	"github.com/ignitoosolutions/ignito1/internal/repositories"
)

// HealthHandlers serves liveness and readiness probes.
type HealthHandlers struct {
	repo  repositories.HealthRepository
	start time.Time
	now   func() time.Time
}

// NewHealthHandlers builds probes. A nil repo makes /readyz report ok.
func NewHealthHandlers(repo repositories.HealthRepository) *HealthHandlers {
	return &HealthHandlers{repo: repo, start: time.Now(), now: time.Now}
}

// Healthz reports that the process is serving.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    domain.HealthStatusOK,
		"uptime":    now.Sub(h.start).Round(time.Second).String(),
		"timestamp": now.UTC().Format(time.RFC3339),
	})
}

// Readyz probes dependencies and answers 503 unless all are ok.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.repo == nil {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"status": domain.HealthStatusOK})
		return
	}
	report, err := h.repo.Collect(ctx)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("readiness_failed", err.Error(), http.StatusServiceUnavailable))
		return
	}

	checks := make(map[string]any, len(report.Checks))
	for name, check := range report.Checks {
		entry := map[string]any{
			"status":     check.Status,
			"latency_ms": check.Latency.Milliseconds(),
		}
		if check.Detail != "" {
			entry["detail"] = check.Detail
		}
		checks[name] = entry
	}
	status := http.StatusOK
	if report.Status != domain.HealthStatusOK {
		status = http.StatusServiceUnavailable
	}
	httpx.WriteJSON(w, status, map[string]any{
		"status":    report.Status,
		"checks":    checks,
		"timestamp": report.GeneratedAt.UTC().Format(time.RFC3339),
	})
}
