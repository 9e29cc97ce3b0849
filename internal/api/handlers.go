package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/LocalNewsImpact/boilerplate-engine/internal/boilerplate"
	"github.com/LocalNewsImpact/boilerplate-engine/internal/database"
	"github.com/LocalNewsImpact/boilerplate-engine/internal/domain"
)

const defaultStatsLimit = 50

// Handler handles HTTP requests for the boilerplate engine API.
type Handler struct {
	cleaner     *boilerplate.Cleaner
	miner       *boilerplate.Miner
	patternRepo *database.PatternRepository
	sessionRepo *database.SessionRepository
	wireRepo    *database.WireRepository
	ready       func() error
	logger      Logger
}

// Logger defines the logging interface.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// NewHandler creates a new API handler. ready reports dependency health for
// the readiness probe.
func NewHandler(
	cleaner *boilerplate.Cleaner,
	miner *boilerplate.Miner,
	patternRepo *database.PatternRepository,
	sessionRepo *database.SessionRepository,
	wireRepo *database.WireRepository,
	ready func() error,
	logger Logger,
) *Handler {
	return &Handler{
		cleaner:     cleaner,
		miner:       miner,
		patternRepo: patternRepo,
		sessionRepo: sessionRepo,
		wireRepo:    wireRepo,
		ready:       ready,
		logger:      logger,
	}
}

// Clean handles POST /api/v1/clean.
func (h *Handler) Clean(c *gin.Context) {
	var req CleanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid clean request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cleaned, meta := h.cleaner.Clean(c.Request.Context(), req.Text, req.Domain, req.ArticleID)

	h.logger.Debug("Article cleaned",
		"article_id", req.ArticleID,
		"domain", req.Domain,
		"chars_removed", meta.CharsRemoved,
	)

	c.JSON(http.StatusOK, CleanResponse{
		Text:     cleaned,
		Metadata: meta,
	})
}

// Analyze handles POST /api/v1/analyze. Runs one synchronous mining pass over
// a domain; pass promote=true to write removable segments into the library.
func (h *Handler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid analyze request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.logger.Info("Analyzing domain",
		"domain", req.Domain,
		"sample_size", req.SampleSize,
		"promote", req.Promote,
	)

	analysis, err := h.miner.AnalyzeDomain(c.Request.Context(), req.Domain, boilerplate.MiningOptions{
		SampleSize:     req.SampleSize,
		MinOccurrences: req.MinOccurrences,
		Promote:        req.Promote,
	})
	if err != nil {
		h.logger.Error("Domain analysis failed", "domain", req.Domain, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// ListPatterns handles GET /api/v1/patterns?domain=x.
func (h *Handler) ListPatterns(c *gin.Context) {
	dom := c.Query("domain")
	if dom == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "domain query parameter is required"})
		return
	}

	patterns, err := h.patternRepo.Lookup(c.Request.Context(), dom)
	if err != nil {
		h.logger.Error("Failed to list patterns", "domain", dom, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, PatternsResponse{
		Domain:   dom,
		Patterns: patterns,
		Total:    len(patterns),
	})
}

// MLTrainingPatterns handles GET /api/v1/patterns/ml-training?domain=x.
// Domain is optional: without it the full eligible tier is returned.
func (h *Handler) MLTrainingPatterns(c *gin.Context) {
	dom := c.Query("domain")

	patterns, err := h.patternRepo.MLTrainingPatterns(c.Request.Context(), dom)
	if err != nil {
		h.logger.Error("Failed to list ml training patterns", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, PatternsResponse{
		Domain:   dom,
		Patterns: patterns,
		Total:    len(patterns),
	})
}

// ListWirePatterns handles GET /api/v1/wire-patterns.
func (h *Handler) ListWirePatterns(c *gin.Context) {
	patterns, err := h.wireRepo.ListActive(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list wire patterns", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, WirePatternsResponse{
		Patterns: patterns,
		Total:    len(patterns),
	})
}

// Stats handles GET /api/v1/stats?domain=x&limit=n. Domain is optional;
// without it every domain with recent sessions is aggregated.
func (h *Handler) Stats(c *gin.Context) {
	limit := defaultStatsLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	stats, err := h.sessionRepo.StatsByDomain(c.Request.Context(), c.Query("domain"), limit)
	if err != nil {
		h.logger.Error("Failed to aggregate stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if stats == nil {
		stats = []domain.DomainCleaningStats{}
	}

	c.JSON(http.StatusOK, StatsResponse{
		Domains: stats,
		Total:   len(stats),
	})
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// ReadyCheck handles GET /ready. Reports unavailable until the database and
// article store respond.
func (h *Handler) ReadyCheck(c *gin.Context) {
	if h.ready != nil {
		if err := h.ready(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
