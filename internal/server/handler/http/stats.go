package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/MailerAdmin/internal/models"
)

// StatsService defines the dashboard metric operations required by
// StatsHandler.
type StatsService interface {
	Stats(ctx context.Context) (models.Stats, error)
	WeeklyEngagement(ctx context.Context) ([]models.EngagementPoint, error)
	Breakdown(ctx context.Context) (models.EngagementBreakdown, error)
	UserStats(ctx context.Context, userID string, period models.Period) (models.UserStats, error)
}

// StatsHandler handles the /stats endpoints.
type StatsHandler struct {
	Stats StatsService
	Log   *zap.Logger
}

// Summary returns the dashboard headline.
func (h *StatsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.Stats.Stats(r.Context())
	if err != nil {
		fail(w, h.Log, err, "")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// Weekly returns the engagement chart points.
func (h *StatsHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	points, err := h.Stats.WeeklyEngagement(r.Context())
	if err != nil {
		fail(w, h.Log, err, "")
		return
	}
	writeJSON(w, http.StatusOK, points)
}

// Breakdown returns engagement split by campaign and user.
func (h *StatsHandler) Breakdown(w http.ResponseWriter, r *http.Request) {
	b, err := h.Stats.Breakdown(r.Context())
	if err != nil {
		fail(w, h.Log, err, "")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// User returns one user's activity. The period defaults to a week.
func (h *StatsHandler) User(w http.ResponseWriter, r *http.Request) {
	period := models.Period(r.URL.Query().Get("period"))
	if period == "" {
		period = models.PeriodWeek
	}
	s, err := h.Stats.UserStats(r.Context(), chi.URLParam(r, "id"), period)
	if err != nil {
		fail(w, h.Log, err, userNotFound)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
