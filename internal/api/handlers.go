package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/danielpatrickdp/persona-fusion/internal/advisor"
	"github.com/danielpatrickdp/persona-fusion/internal/environment"
	"github.com/danielpatrickdp/persona-fusion/internal/orchestrator"
	"github.com/danielpatrickdp/persona-fusion/internal/persona"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxTextSize = 10 << 10 // 10KB

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req orchestrator.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, fmt.Sprintf("invalid JSON body: %v", err))
		return
	}
	if req.Text != nil && len(*req.Text) > maxTextSize {
		badRequest(c, "text exceeds maximum size of 10KB")
		return
	}
	req.Trigger = "api"

	resp, err := s.analyzer.Analyze(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, orchestrator.ErrInvalidRequest) {
			badRequest(c, err.Error())
			return
		}
		s.logger.Error("analyze failed", zap.String("user", req.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleIntent(c *gin.Context) {
	if s.intents == nil {
		unavailable(c, "intent routing is not configured")
		return
	}
	var body struct {
		UserID string `json:"user_id"`
		Text   string `json:"text"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if strings.TrimSpace(body.UserID) == "" {
		badRequest(c, "user_id is required")
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		badRequest(c, "text is required")
		return
	}
	c.JSON(http.StatusOK, s.intents.RouteIntent(c.Request.Context(), body.UserID, body.Text))
}

func (s *Server) handleContext(c *gin.Context) {
	if s.envSource == nil {
		unavailable(c, "environmental context is not configured")
		return
	}
	loc, err := parseLocation(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, s.envSource.GetContext(c.Request.Context(), loc, time.Time{}))
}

func (s *Server) handleRecommendations(c *gin.Context) {
	if s.envSource == nil {
		unavailable(c, "environmental context is not configured")
		return
	}
	code := strings.ToUpper(strings.TrimSpace(c.Query("persona")))
	if code == "" {
		badRequest(c, "persona parameter required")
		return
	}
	if _, ok := persona.Lookup(code); !ok {
		badRequest(c, fmt.Sprintf("unknown persona %q", code))
		return
	}
	loc, err := parseLocation(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	envCtx := s.envSource.GetContext(c.Request.Context(), loc, time.Time{})
	rec := advisor.GenerateComprehensiveRecommendations(code, envCtx)
	if c.Query("format") == "text" {
		c.String(http.StatusOK, advisor.Render(rec))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"recommendations": rec,
		"degraded":        envCtx.Degraded,
		"country":         envCtx.Country,
	})
}

func (s *Server) handleArchetypes(c *gin.Context) {
	all := persona.Archetypes()
	c.JSON(http.StatusOK, gin.H{
		"archetypes": all,
		"count":      len(all),
	})
}

// #region helpers

func parseLocation(c *gin.Context) (environment.Location, error) {
	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if latStr == "" || lonStr == "" {
		return environment.Location{}, errors.New("lat and lon parameters required")
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return environment.Location{}, fmt.Errorf("invalid lat %q", latStr)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return environment.Location{}, fmt.Errorf("invalid lon %q", lonStr)
	}
	loc := environment.Location{Latitude: lat, Longitude: lon}
	if !loc.Valid() {
		return environment.Location{}, fmt.Errorf("location %s is off the globe", loc.Key())
	}
	return loc, nil
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func unavailable(c *gin.Context, msg string) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": msg})
}

// #endregion helpers
