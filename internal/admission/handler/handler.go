package handler

import (
	"net/http"
	"time"

	"admission-service/internal/admission"
	"admission-service/internal/config"
	"admission-service/internal/daykey"
	"admission-service/internal/liveness"
	"admission-service/internal/logger"
	"admission-service/internal/metrics"
	"admission-service/internal/middleware"
	"admission-service/internal/store"
	"admission-service/internal/visitor"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	engine  *admission.Engine
	tracker *liveness.Tracker
	store   store.Store
	metrics *metrics.Metrics
	cfg     config.Config

	cookieOpts visitor.CookieOptions
}

func New(
	engine *admission.Engine,
	tracker *liveness.Tracker,
	s store.Store,
	m *metrics.Metrics,
	cfg config.Config,
) *Handler {
	return &Handler{
		engine:  engine,
		tracker: tracker,
		store:   s,
		metrics: m,
		cfg:     cfg,
		cookieOpts: visitor.CookieOptions{
			SameSite: http.SameSiteLaxMode,
		},
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")

	api.POST("/admission", h.Admission)
	api.GET("/stats", h.Stats)

	session := api.Group("/")
	session.Use(middleware.GinRequireSession())
	session.POST("/heartbeat", h.Heartbeat)
	session.POST("/leave", h.Leave)
}

// Admission decides whether this client may begin a session. The
// request body is empty; everything the decision needs rides in the
// marker cookies.
func (h *Handler) Admission(c *gin.Context) {
	// One captured instant for every day-key derivation in this request.
	now := time.Now()
	today := daykey.ForAdmission(now)

	id := visitor.Resolve(c.Request, today)

	decision := h.engine.Admit(c.Request.Context(), id, today)

	if decision.Allowed {
		visitor.SetAdmitted(c.Writer, today, decision.SessionToken, h.cookieOpts)

		c.JSON(http.StatusOK, gin.H{
			"allowed":          true,
			"total":            decision.Total,
			"concurrentUsers":  decision.Concurrent,
			"sessionToken":     decision.SessionToken,
			"heartbeatSeconds": int(h.cfg.HeartbeatInterval.Seconds()),
		})
		return
	}

	if decision.Reason == admission.ReasonServerError {
		c.JSON(http.StatusInternalServerError, gin.H{
			"allowed": false,
			"reason":  decision.Reason,
			"message": decision.Message,
		})
		return
	}

	// Policy rejections are expected outcomes, not errors: HTTP 200.
	body := gin.H{
		"allowed": false,
		"reason":  decision.Reason,
		"message": decision.Message,
	}
	switch decision.Reason {
	case admission.ReasonDailyLimit:
		body["total"] = decision.Total
	case admission.ReasonConcurrency:
		body["concurrentUsers"] = decision.Concurrent
	}

	c.JSON(http.StatusOK, body)
}

// Heartbeat refreshes the caller's liveness record. Acknowledgment only.
func (h *Handler) Heartbeat(c *gin.Context) {
	token, ok := middleware.SessionTokenFromContext(c.Request.Context())
	if !ok {
		c.Status(http.StatusUnauthorized)
		return
	}

	if err := h.tracker.Touch(c.Request.Context(), token); err != nil {
		logger.Warn("heartbeat touch failed", map[string]any{
			"error": err.Error(),
		})
		// The client retries on its next interval; nothing to report.
	}

	h.metrics.RecordHeartbeat()

	c.Status(http.StatusNoContent)
}

// Leave proactively vacates the caller's slot. Best-effort: a client
// that disconnects abruptly never calls this, and the staleness window
// reclaims the slot instead.
func (h *Handler) Leave(c *gin.Context) {
	token, ok := middleware.SessionTokenFromContext(c.Request.Context())
	if !ok {
		c.Status(http.StatusUnauthorized)
		return
	}

	if err := h.tracker.Release(c.Request.Context(), token); err != nil {
		logger.Warn("leave release failed", map[string]any{
			"error": err.Error(),
		})
	}

	visitor.ClearMarker(c.Writer, visitor.SessionCookie, h.cookieOpts)

	c.Status(http.StatusNoContent)
}

// Stats is the read-only daily view. Its day key is derived in the
// configured display timezone, a separate time base from admission
// accounting, kept separate on purpose.
func (h *Handler) Stats(c *gin.Context) {
	now := time.Now()

	day, err := daykey.InZone(now, h.cfg.StatsTimezone)
	if err != nil {
		logger.Error("stats timezone invalid", map[string]any{
			"timezone": h.cfg.StatsTimezone,
			"error":    err.Error(),
		})
		day = daykey.ForAdmission(now)
	}

	total := int64(0)
	if val, ok, err := h.store.Get(c.Request.Context(), daykey.CounterKey(day)); err == nil && ok {
		total = parseCount(val)
	}

	live, err := h.tracker.CountLive(c.Request.Context())
	if err != nil {
		live = 0
	}

	c.JSON(http.StatusOK, gin.H{
		"day":             day,
		"total":           total,
		"concurrentUsers": live,
	})
}
