package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/David-Botos/bookstore-ingress/pkg/chart"
)

type tabLink struct {
	ID     string
	Label  string
	Active bool
}

var tabs = []tabLink{
	{ID: TabRevenue, Label: "Revenue"},
	{ID: TabUsers, Label: "Users"},
	{ID: TabAuthors, Label: "Authors"},
}

// Server serves the analytics dashboard over HTTP
type Server struct {
	state    *State
	logger   *zap.Logger
	router   *gin.Engine
	chartPNG []byte
}

// NewServer renders the chart once and registers every route
func NewServer(state *State, gatherer prometheus.Gatherer, logger *zap.Logger) (*Server, error) {
	if state == nil || state.Report == nil {
		return nil, errors.New("dashboard state requires a report")
	}

	daily, err := chart.RevenuePlot(state.Report.DailyRevenue, "Daily Revenue")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := daily.WriteTo(&buf); err != nil {
		return nil, err
	}

	s := &Server{
		state:    state,
		logger:   logger.Named("dashboard"),
		chartPNG: buf.Bytes(),
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())
	router.SetHTMLTemplate(template.Must(template.New("dashboard").Parse(pageTemplate)))

	router.GET("/", s.page)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "run_id": state.RunID})
	})

	api := router.Group("/api")
	api.GET("/revenue", s.revenue)
	api.GET("/users", s.users)
	api.GET("/authors", s.authors)

	router.GET("/charts/daily-revenue.png", func(c *gin.Context) {
		c.Data(http.StatusOK, "image/png", s.chartPNG)
	})

	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	s.router = router
	return s, nil
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Dashboard listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("dashboard server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("Shutting down dashboard")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) page(c *gin.Context) {
	tab := c.DefaultQuery("tab", TabRevenue)

	links := make([]tabLink, len(tabs))
	found := false
	for i, t := range tabs {
		t.Active = t.ID == tab
		found = found || t.Active
		links[i] = t
	}
	if !found {
		c.String(http.StatusNotFound, "unknown tab %q", tab)
		return
	}

	c.HTML(http.StatusOK, "dashboard", gin.H{
		"Tab":         tab,
		"Tabs":        links,
		"Report":      s.state.Report,
		"RunID":       s.state.RunID,
		"GeneratedAt": s.state.GeneratedAt.Format(time.RFC3339),
		"Hosted":      s.state.Hosted,
	})
}

func (s *Server) revenue(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"top_days":      s.state.Report.TopDays,
		"daily_revenue": s.state.Report.DailyRevenue,
	})
}

func (s *Server) users(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"unique_users":  s.state.Report.UniqueUsers,
		"top_customers": s.state.Report.TopCustomers,
	})
}

func (s *Server) authors(c *gin.Context) {
	body := gin.H{
		"unique_author_sets": s.state.Report.UniqueAuthorSets,
		"most_popular":       nil,
	}
	if mp := s.state.Report.MostPopular; mp != nil {
		body["most_popular"] = gin.H{
			"authors":  mp.Authors,
			"label":    mp.Authors.String(),
			"quantity": mp.Quantity,
		}
	}
	c.JSON(http.StatusOK, body)
}

// requestLogger logs each request with zap instead of gin's default writer
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
