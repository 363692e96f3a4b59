package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Alias1177/HeartGuard/internal/recommend"
	"github.com/Alias1177/HeartGuard/internal/registry"
	"github.com/Alias1177/HeartGuard/internal/session"
	"github.com/Alias1177/HeartGuard/internal/voting"
	"github.com/Alias1177/HeartGuard/models"
	"github.com/gin-gonic/gin"
)

// PredictResponse is the body of a successful POST /api/predict
type PredictResponse struct {
	Timestamp      string                `json:"timestamp"`
	RiskPercentage float64               `json:"risk_percentage"`
	RiskLevel      models.RiskLevel      `json:"risk_level"`
	Diagnosis      string                `json:"diagnosis"`
	Precautions    models.Precautions    `json:"precautions"`
	DietPlan       models.DietPlan       `json:"diet_plan"`
	Message        string                `json:"message"`
	Votes          models.ModelVote      `json:"votes"`
	Degradation    *registry.Degradation `json:"degradation,omitempty"`
}

// Predict runs the ensemble on one patient
func (h *Handler) Predict(c *gin.Context) {
	var input models.ClinicalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn().Err(err).Msg("Malformed prediction request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	res, err := h.deps.Assessor.Assess(c.Request.Context(), &input)
	switch {
	case errors.Is(err, models.ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	case errors.Is(err, registry.ErrNoModels), errors.Is(err, voting.ErrNoVotes):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Models not loaded. Please check models folder."})
		return
	case err != nil:
		h.logger.Error().Err(err).Msg("Error in prediction")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Prediction failed"})
		return
	}

	resp := PredictResponse{
		Timestamp:      res.Assessment.Timestamp.Format(time.RFC3339),
		RiskPercentage: voting.Round1(res.Assessment.RiskPercentage),
		RiskLevel:      res.Assessment.RiskLevel,
		Diagnosis:      res.Assessment.Diagnosis,
		Precautions:    res.Bundle.Precautions,
		DietPlan:       res.Bundle.DietPlan,
		Message:        res.Message,
		Votes:          res.Assessment.Votes,
	}
	if res.Degradation.Any() {
		deg := res.Degradation
		resp.Degradation = &deg
	}
	c.JSON(http.StatusOK, resp)
}

// GetContent returns the recommendations for ?risk_level=. Unknown levels
// get the MODERATE_RISK content.
func (h *Handler) GetContent(c *gin.Context) {
	level := c.Query("risk_level")
	if level == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Risk level required"})
		return
	}
	c.JSON(http.StatusOK, recommend.BundleFor(level))
}

// History lists stored assessments, newest first
func (h *Handler) History(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = n
	}

	records, err := h.deps.Assessor.History(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": records})
}

// ClearHistory deletes every stored assessment. Requires a session.
func (h *Handler) ClearHistory(c *gin.Context) {
	n, err := h.deps.Assessor.ClearHistory(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to clear history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear history"})
		return
	}
	if s := currentSession(c); s != nil {
		h.logger.Info().Str("user", s.User).Int64("count", n).Msg("History cleared")
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Cleared %d predictions", n),
		"count":   n,
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login opens a session for any username and password of acceptable length
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	// an unreadable body is treated like empty credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug().Err(err).Msg("Malformed login request")
	}

	user, err := session.ValidateCredentials(req.Username, req.Password)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Login rejected")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, err := h.deps.Sessions.Create(user)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to create session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed. Please try again."})
		return
	}

	h.setSessionCookie(c, s.ID, int(h.opts.SessionTTL.Seconds()))
	h.logger.Info().Str("user", user).Msg("User logged in")
	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "user": user})
}

// Logout ends the caller's session, if any
func (h *Handler) Logout(c *gin.Context) {
	if s := currentSession(c); s != nil {
		h.deps.Sessions.Delete(s.ID)
	}
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// AuthStatus reports whether the caller holds a live session
func (h *Handler) AuthStatus(c *gin.Context) {
	s := currentSession(c)
	if s == nil {
		c.JSON(http.StatusOK, gin.H{"logged_in": false, "user": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logged_in": true, "user": s.User})
}

func (h *Handler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, value, maxAge, "/", "", h.opts.CookieSecure, true)
}

// Health reports loaded models, degradation and database reachability.
// It answers 503 when no model is loaded or the database is down.
func (h *Handler) Health(c *gin.Context) {
	available := h.deps.Models.Available()
	report := h.deps.Models.Report()

	status := "ok"
	code := http.StatusOK
	if report.Degradation.Any() {
		status = "degraded"
	}
	if len(available) == 0 {
		status = "unavailable"
		code = http.StatusServiceUnavailable
	}

	body := gin.H{
		"status":      status,
		"models":      available,
		"degradation": report.Degradation,
	}
	if h.deps.Database != nil {
		if err := h.deps.Database.HealthCheck(c.Request.Context()); err != nil {
			h.logger.Error().Err(err).Msg("Database health check failed")
			body["database"] = "unreachable"
			body["status"] = "unavailable"
			code = http.StatusServiceUnavailable
		} else {
			body["database"] = "ok"
		}
	}
	c.JSON(code, body)
}

// Models returns what the registry found on disk
func (h *Handler) Models(c *gin.Context) {
	c.JSON(http.StatusOK, h.deps.Models.Report())
}
