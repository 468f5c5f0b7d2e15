// Package control exposes the running engine over HTTP.
package control

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"lenslation/packages/go/backend/observability"
	"lenslation/packages/go/backend/overlay"
	"lenslation/packages/go/backend/pipeline"
	"lenslation/packages/go/backend/translation"
)

// Engine is the subset of pipeline.Engine the API drives.
type Engine interface {
	Language(ctx context.Context) (translation.LanguagePair, error)
	SetLanguage(ctx context.Context, pair translation.LanguagePair) (bool, error)
	SwapLanguages(ctx context.Context) (translation.LanguagePair, error)
	Overlays(ctx context.Context) ([]overlay.Handle, error)
	ClearOverlays(ctx context.Context) error
	Stats(ctx context.Context) (pipeline.Stats, error)
}

var _ Engine = (*pipeline.Engine)(nil)

// Options configures the router.
type Options struct {
	CORSOrigins []string
	// CommandTimeout bounds how long a request waits for the engine loop.
	CommandTimeout time.Duration
}

type server struct {
	engine  Engine
	timeout time.Duration
	started time.Time
	logger  *zap.SugaredLogger
}

// NewRouter builds the gin engine serving the control API.
func NewRouter(engine Engine, opts Options, logger *zap.SugaredLogger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if opts.CommandTimeout <= 0 {
		opts.CommandTimeout = 2 * time.Second
	}
	observability.RegisterMetrics()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(logger))
	r.Use(observability.RequestMetricsMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(opts.CORSOrigins),
		AllowMethods: []string{"GET", "PUT", "POST", "DELETE"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &server{engine: engine, timeout: opts.CommandTimeout, started: time.Now(), logger: logger}

	r.GET("/healthz", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/language", s.getLanguage)
	r.PUT("/language", s.putLanguage)
	r.POST("/language/swap", s.swapLanguage)
	r.GET("/overlays", s.listOverlays)
	r.DELETE("/overlays", s.clearOverlays)
	r.GET("/stats", s.stats)
	return r
}

func (s *server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.started).String(),
	})
}

type languageRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

func (s *server) getLanguage(c *gin.Context) {
	ctx, cancel := s.commandContext(c)
	defer cancel()

	pair, err := s.engine.Language(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (s *server) putLanguage(c *gin.Context) {
	var req languageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	source, err := translation.LookupLanguage(req.Source)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	target, err := translation.LookupLanguage(req.Target)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := s.commandContext(c)
	defer cancel()

	pair := translation.LanguagePair{Source: source, Target: target}
	changed, err := s.engine.SetLanguage(ctx, pair)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pair": pair, "changed": changed})
}

func (s *server) swapLanguage(c *gin.Context) {
	ctx, cancel := s.commandContext(c)
	defer cancel()

	pair, err := s.engine.SwapLanguages(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (s *server) listOverlays(c *gin.Context) {
	ctx, cancel := s.commandContext(c)
	defer cancel()

	handles, err := s.engine.Overlays(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}
	if handles == nil {
		handles = []overlay.Handle{}
	}
	c.JSON(http.StatusOK, gin.H{"overlays": handles})
}

func (s *server) clearOverlays(c *gin.Context) {
	ctx, cancel := s.commandContext(c)
	defer cancel()

	if err := s.engine.ClearOverlays(ctx); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *server) stats(c *gin.Context) {
	ctx, cancel := s.commandContext(c)
	defer cancel()

	stats, err := s.engine.Stats(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *server) commandContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), s.timeout)
}

func (s *server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, pipeline.ErrStopped):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	s.logger.Errorw("control command failed", "path", c.FullPath(), "error", err)
	c.JSON(status, gin.H{"error": err.Error()})
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
