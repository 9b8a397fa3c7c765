package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/phuslu/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"legislation-chat-bot/internal/domain"
	"legislation-chat-bot/internal/usecase/chat"
)

type Server struct {
	e    *echo.Echo
	chat *chat.Service
}

type messageRequest struct {
	Message string `json:"message"`
}

type messageResponse struct {
	Answer   string `json:"answer"`
	Function string `json:"function,omitempty"`
	Source   string `json:"source,omitempty"`
	Markdown string `json:"markdown"`
}

type sessionResponse struct {
	SessionID string `json:"session_id"`
}

func NewServer(chatSvc *chat.Service, gatherer prometheus.Gatherer) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Debug().Str("method", v.Method).Str("uri", v.URI).Int("status", v.Status).Dur("latency", v.Latency).Msg("http request")
			return nil
		},
	}))
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		if code >= http.StatusInternalServerError {
			req := c.Request()
			log.Error().Err(err).Int("status", code).Str("method", req.Method).Str("path", req.URL.Path).Msg("request failed")
		}
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]string{"error": msg})
		}
	}

	s := &Server{e: e, chat: chatSvc}

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := e.Group("/api")
	api.POST("/sessions", s.createSession)
	api.POST("/sessions/:id/messages", s.postMessage)
	api.GET("/sessions/:id/transcript", s.transcript)

	return s
}

func (s *Server) Handler() http.Handler {
	return s.e
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("http server listening")
		errCh <- s.e.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.e.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}

func (s *Server) createSession(c echo.Context) error {
	return c.JSON(http.StatusCreated, sessionResponse{SessionID: s.chat.NewSession()})
}

func (s *Server) postMessage(c echo.Context) error {
	id := c.Param("id")
	if !s.chat.HasSession(id) {
		return echo.NewHTTPError(http.StatusNotFound, chat.ErrUnknownSession.Error())
	}

	var req messageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	answer, err := s.chat.HandleMessage(c.Request().Context(), id, req.Message)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadGateway, "failed to reach the model").SetInternal(err)
	}

	return c.JSON(http.StatusOK, messageResponse{
		Answer:   answer.Text,
		Function: answer.Function,
		Source:   answer.Source,
		Markdown: answer.Markdown(),
	})
}

func (s *Server) transcript(c echo.Context) error {
	msgs, err := s.chat.Transcript(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return c.JSON(http.StatusOK, msgs)
}
