// Package api provides the REST API server for midi2beep
package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/james-see/midi2beep/internal/config"
	"github.com/james-see/midi2beep/internal/logger"
	"github.com/james-see/midi2beep/pkg/converter"
	"github.com/james-see/midi2beep/pkg/converter/renderers"
)

const sentryFlushTimeout = 2 * time.Second

// @title MIDI2Beep API
// @version 1.0
// @description API for converting MIDI files into beep commands and buzzer sketches
// @host localhost:8080
// @BasePath /api/v1

// StartServer starts the API server on the specified port
func StartServer(port int) error {
	cfg := config.Load()
	if port > 0 {
		cfg.Port = strconv.Itoa(port)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewRouter(cfg).Run(":" + cfg.Port)
}

// NewRouter builds the gin engine with all routes and middleware
func NewRouter(cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(sentrygin.New(sentrygin.Options{
		Repanic: true,
		Timeout: sentryFlushTimeout,
	}))
	r.Use(requestTracking())
	r.Use(corsMiddleware())

	h := &handler{cfg: cfg}

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/formats", listFormats)
		v1.POST("/convert", h.convert)
		v1.POST("/timeline", h.timeline)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requestTracking tags every request with an ID and logs its outcome
func requestTracking() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.New().String()
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.Scope().SetTag("request_id", requestID)
		}

		start := time.Now()
		c.Next()

		fields := logger.WithContext(c)
		fields["status_code"] = c.Writer.Status()
		fields["duration_ms"] = time.Since(start).Milliseconds()

		if c.Writer.Status() >= http.StatusBadRequest {
			logger.Warn("Request failed", fields)
			return
		}
		logger.Info("Request completed", fields)
	}
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "midi2beep",
	})
}

// listFormats godoc
// @Summary List export formats
// @Description Returns the export formats and tie-break orderings
// @Tags info
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/formats [get]
func listFormats(c *gin.Context) {
	formats := make([]map[string]string, 0)
	for _, r := range renderers.All() {
		formats = append(formats, map[string]string{
			"id":          r.Name(),
			"description": r.Description(),
			"extension":   r.Extension(),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"formats": formats,
		"orderings": []string{
			converter.OrderChannelPriority.String(),
			converter.OrderChannelReverse.String(),
			converter.OrderLegacy.String(),
			converter.OrderLegacyReverse.String(),
		},
	})
}

type handler struct {
	cfg *config.Config
}

// conversionRequest holds the parsed upload and query parameters
type conversionRequest struct {
	data     []byte
	filename string
	opts     converter.Options
	speed    float64
	renderer converter.Renderer
}

// convert godoc
// @Summary Convert MIDI to a beep command or sketch
// @Description Upload a MIDI file and receive the rendered text
// @Tags convert
// @Accept multipart/form-data
// @Produce text/plain
// @Param file formData file true "MIDI file to convert"
// @Param export query string false "Export format (single, linux, windows, arduino, arduino-arrays)"
// @Param speed query number false "Speed multiplier (default: 1.0)"
// @Param channel query int false "Target MIDI channel (default: 0)"
// @Param merge query bool false "Merge all channels"
// @Param reverse query bool false "Reverse channel priority"
// @Param old_logic query bool false "Use tick-only legacy ordering"
// @Param ordering query string false "Explicit ordering policy"
// @Success 200 {string} string
// @Failure 400 {object} map[string]string
// @Failure 413 {object} map[string]string
// @Router /api/v1/convert [post]
func (h *handler) convert(c *gin.Context) {
	req, ok := h.parseRequest(c)
	if !ok {
		return
	}

	text, tl, err := converter.New(req.renderer).Convert(req.data, req.opts, req.speed)
	if err != nil {
		h.fail(c, err)
		return
	}

	outputName := converter.OutputPath(req.filename, req.renderer.Extension())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", outputName))
	c.Header("X-Timeline-Entries", strconv.Itoa(tl.Len()))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

// timeline godoc
// @Summary Extract the monophonic timeline
// @Description Upload a MIDI file and receive the timeline entries as JSON
// @Tags convert
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "MIDI file to convert"
// @Param channel query int false "Target MIDI channel (default: 0)"
// @Param merge query bool false "Merge all channels"
// @Param ordering query string false "Ordering policy"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /api/v1/timeline [post]
func (h *handler) timeline(c *gin.Context) {
	req, ok := h.parseRequest(c)
	if !ok {
		return
	}

	tl, err := converter.New(req.renderer).Extract(req.data, req.opts)
	if err != nil {
		h.fail(c, err)
		return
	}

	entries := tl.Entries
	if entries == nil {
		entries = []converter.Entry{}
	}
	c.JSON(http.StatusOK, gin.H{
		"ticks_per_beat": tl.TicksPerBeat,
		"entries":        entries,
		"pitched":        tl.Pitched(),
		"rests":          tl.Rests(),
		"duration":       tl.Duration(),
	})
}

func (h *handler) parseRequest(c *gin.Context) (*conversionRequest, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxUploadBytes)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": fmt.Sprintf("Upload exceeds %d bytes", tooLarge.Limit),
			})
			return nil, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return nil, false
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return nil, false
	}

	req := &conversionRequest{data: data, filename: header.Filename, opts: converter.DefaultOptions()}

	req.renderer, err = renderers.Lookup(c.DefaultQuery("export", h.cfg.DefaultExport))
	if err != nil {
		h.fail(c, err)
		return nil, false
	}

	req.speed = h.cfg.DefaultSpeed
	if s := c.Query("speed"); s != "" {
		if req.speed, err = strconv.ParseFloat(s, 64); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid speed"})
			return nil, false
		}
	}

	if s := c.Query("channel"); s != "" {
		ch, err := strconv.ParseUint(s, 10, 8)
		if err != nil || ch > 15 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Channel must be between 0 and 15"})
			return nil, false
		}
		req.opts.Channel = uint8(ch)
	}

	req.opts.Merge = queryBool(c, "merge")
	req.opts.Ordering = converter.PolicyFor(queryBool(c, "reverse"), queryBool(c, "old_logic"))
	if s := c.Query("ordering"); s != "" {
		if req.opts.Ordering, err = converter.ParseOrderingPolicy(s); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return nil, false
		}
	}

	fields := logger.WithContext(c)
	fields["file"] = req.filename
	fields["export"] = req.renderer.Name()
	fields["speed"] = req.speed
	fields["channel"] = req.opts.Channel
	fields["merge"] = req.opts.Merge
	fields["ordering"] = req.opts.Ordering.String()
	logger.Debug("Conversion requested", fields)

	return req, true
}

func queryBool(c *gin.Context, key string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(c.Query(key)))
	return err == nil && v
}

// fail maps conversion errors to a status code and reports server errors
func (h *handler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, converter.ErrDecode),
		errors.Is(err, converter.ErrInvalidTempo),
		errors.Is(err, converter.ErrInvalidSpeed),
		errors.Is(err, converter.ErrUnknownFormat):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		fields := logger.WithContext(c)
		fields["export"] = c.Query("export")
		logger.Error("Conversion failed", err, fields)
	}

	c.JSON(status, gin.H{
		"error":      err.Error(),
		"request_id": c.GetString("request_id"),
	})
}
