package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"infographic-gateway/internal/config"
	"infographic-gateway/internal/gateway"
	"infographic-gateway/internal/store"
)

type submitter interface {
	Submit(ctx context.Context, rawMessage, clientAddr string) (store.Submission, error)
}

// Server HTTP 服务封装
type Server struct {
	cfg     config.Config
	gate    submitter
	engine  *gin.Engine
	httpSrv *http.Server
}

func NewServer(cfg config.Config, gate submitter) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		cfg:    cfg,
		gate:   gate,
		engine: gin.New(),
	}

	server.engine.Use(gin.Recovery())
	server.engine.Use(globalThrottle(cfg.GlobalThrottleRPS, cfg.GlobalBurst))
	server.registerRoutes()

	return server
}

// Run 启动 HTTP 服务并阻塞到 ctx 取消，随后在限时内优雅停机。
func (s *Server) Run(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:    ":" + s.cfg.Port,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return s.httpSrv.Shutdown(shutdownCtx)
}

func (s *Server) registerRoutes() {
	s.engine.GET("/api/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC().Format(time.RFC3339)})
	})

	s.engine.POST("/api/submit-request", s.handleSubmitRequest)
}

func (s *Server) handleSubmitRequest(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "Message is required")
		return
	}

	_, err := s.gate.Submit(c.Request.Context(), req.Message, clientAddress(c))
	if err != nil {
		switch {
		case errors.Is(err, gateway.ErrInvalidInput):
			writeError(c, http.StatusBadRequest, "Message is required")
		case errors.Is(err, gateway.ErrTooLong):
			writeError(c, http.StatusBadRequest, "Message must be 500 characters or fewer")
		case errors.Is(err, gateway.ErrRateLimited):
			writeError(c, http.StatusTooManyRequests, "Too many requests. Please try again later.")
		case errors.Is(err, gateway.ErrDuplicateContent):
			writeError(c, http.StatusConflict, "This request was already submitted recently")
		default:
			// 存储层错误只记日志，对外统一口径。
			log.Printf("提交处理失败: %v", err)
			writeError(c, http.StatusInternalServerError, "Something went wrong. Please try again later.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Request submitted successfully",
	})
}

// clientAddress 从代理头推导客户端地址：X-Forwarded-For 首项，
// 其次 X-Real-IP，都没有时给固定占位值。
func clientAddress(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(c.GetHeader("X-Real-IP")); realIP != "" {
		return realIP
	}
	return "unknown"
}

func writeError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}
