package filter

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikey/sms-risk-detector/internal/core"
	"github.com/mikey/sms-risk-detector/internal/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// PredictRequest is the body of a predict call
type PredictRequest struct {
	Message string `json:"message"`
}

// PredictResponse is the verdict returned by a predict call
type PredictResponse struct {
	Risk            core.RiskTier `json:"risk"`
	SpamProbability float64       `json:"spam_probability"`
	CleanedText     string        `json:"cleaned_text"`
	Source          string        `json:"source"`
	BundleID        string        `json:"bundle_id"`
	ProcessingID    string        `json:"processing_id"`
}

// ModelResponse describes the bundle currently serving predictions
type ModelResponse struct {
	BundleID      string    `json:"bundle_id"`
	TrainedAt     time.Time `json:"trained_at"`
	Documents     int       `json:"documents"`
	SpamDocuments int       `json:"spam_documents"`
	Features      int       `json:"features"`
}

// HTTPFilter exposes the risk service as a JSON API
type HTTPFilter struct {
	service       *core.RiskService
	textProcessor *utils.TextProcessor
	logger        *zap.Logger
	maxBodySize   int
	router        *gin.Engine
	server        *http.Server
}

// NewHTTPFilter creates the HTTP front end. Metrics are served from gatherer
// when it is not nil.
func NewHTTPFilter(
	service *core.RiskService,
	textProcessor *utils.TextProcessor,
	logger *zap.Logger,
	listenAddr string,
	maxBodySize int,
	gatherer prometheus.Gatherer,
) *HTTPFilter {
	router := gin.New()
	router.Use(recoveryMiddleware(logger), loggerMiddleware(logger))

	f := &HTTPFilter{
		service:       service,
		textProcessor: textProcessor,
		logger:        logger,
		maxBodySize:   maxBodySize,
		router:        router,
		server: &http.Server{
			Addr:         listenAddr,
			Handler:      router,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}

	router.GET("/healthz", f.health)
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	v1 := router.Group("/api/v1")
	v1.POST("/predict", f.predict)
	v1.GET("/model", f.model)
	v1.POST("/model/retrain", f.retrain)

	return f
}

// Handler returns the router
func (f *HTTPFilter) Handler() http.Handler {
	return f.router
}

// Start starts serving in the background
func (f *HTTPFilter) Start() error {
	f.logger.Info("HTTP filter starting", zap.String("address", f.server.Addr))

	go func() {
		if err := f.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			f.logger.Error("HTTP server error", zap.Error(err))
		}
	}()
	return nil
}

// Stop gracefully shuts the server down
func (f *HTTPFilter) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return f.server.Shutdown(ctx)
}

// ProcessEmail scores an email directly
func (f *HTTPFilter) ProcessEmail(ctx context.Context, email *core.Email) (*core.AnalysisResult, error) {
	return f.service.AnalyzeEmail(ctx, email)
}

func (f *HTTPFilter) health(c *gin.Context) {
	if !f.service.Bundle().Fitted() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not fitted"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (f *HTTPFilter) predict(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrBlankMessage.Error()})
		return
	}

	text := f.textProcessor.ProcessText(req.Message, f.maxBodySize)
	result, err := f.service.AnalyzeMessage(c.Request.Context(), text)
	if err != nil {
		if errors.Is(err, core.ErrNotFitted) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		f.logger.Error("Failed to analyze message", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
		return
	}

	c.JSON(http.StatusOK, PredictResponse{
		Risk:            result.Verdict.Tier,
		SpamProbability: result.Verdict.Probability,
		CleanedText:     result.Verdict.CleanedText,
		Source:          result.Source,
		BundleID:        result.BundleID,
		ProcessingID:    result.ProcessingID,
	})
}

func (f *HTTPFilter) model(c *gin.Context) {
	bundle := f.service.Bundle()
	if !bundle.Fitted() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": core.ErrNotFitted.Error()})
		return
	}
	c.JSON(http.StatusOK, modelResponse(bundle))
}

func (f *HTTPFilter) retrain(c *gin.Context) {
	bundle, err := f.service.Retrain(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, modelResponse(bundle))
}

func modelResponse(bundle *core.ModelBundle) ModelResponse {
	return ModelResponse{
		BundleID:      bundle.ID,
		TrainedAt:     bundle.TrainedAt,
		Documents:     bundle.Documents,
		SpamDocuments: bundle.SpamDocuments,
		Features:      bundle.Features(),
	}
}

func loggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			logger.Error("HTTP request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("HTTP request", fields...)
		default:
			logger.Debug("HTTP request", fields...)
		}
	}
}

func recoveryMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Panic recovered",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}
