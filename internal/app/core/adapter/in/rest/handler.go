package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JoeShih716/go-point-wallet/internal/app/core/domain"
	"github.com/JoeShih716/go-point-wallet/internal/app/core/usecase"
	"github.com/JoeShih716/go-point-wallet/internal/metrics"
)

// 錯誤代碼
const (
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeInvalidAmount     = "INVALID_AMOUNT"
	CodeInsufficientFunds = "INSUFFICIENT_FUNDS"
	CodePointOverflow     = "POINT_OVERFLOW"
	CodeInternal          = "INTERNAL"
)

// ErrorResponse 錯誤回應
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Handler struct {
	core *usecase.CoreUseCase
	log  *log.Helper
}

func NewHandler(core *usecase.CoreUseCase, logger log.Logger) *Handler {
	return &Handler{
		core: core,
		log:  log.NewHelper(log.With(logger, "module", "adapter/rest")),
	}
}

// NewRouter 建立 gin Engine 並註冊所有路由
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.RequestLoggingMiddleware(), MetricsMiddleware())
	h.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return router
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	point := r.Group("/point")
	{
		point.GET("/:id", h.Point)
		point.GET("/:id/histories", h.Histories)
		point.PATCH("/:id/charge", h.Charge)
		point.PATCH("/:id/use", h.Use)
	}
}

// Point 查詢使用者點數
func (h *Handler) Point(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	p, err := h.core.Search(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Histories 查詢使用者點數充值/使用紀錄
func (h *Handler) Histories(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	records, err := h.core.History(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// Charge 充值，body 為 JSON 數字 (例如 `1000`)
func (h *Handler) Charge(c *gin.Context) {
	h.mutate(c, h.core.Charge)
}

// Use 使用點數，body 為 JSON 數字
func (h *Handler) Use(c *gin.Context) {
	h.mutate(c, h.core.Use)
}

func (h *Handler) mutate(c *gin.Context, op func(ctx context.Context, userID, amount int64) (*domain.UserPoint, error)) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	var amount int64
	if err := c.ShouldBindJSON(&amount); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: CodeInvalidRequest, Message: "amount must be an integer"})
		return
	}
	p, err := op(c.Request.Context(), userID, amount)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// writeError 業務錯誤回 400，其餘回 500
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: CodeInvalidAmount, Message: err.Error()})
	case errors.Is(err, domain.ErrInsufficientFunds):
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: CodeInsufficientFunds, Message: err.Error()})
	case errors.Is(err, domain.ErrPointOverflow):
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: CodePointOverflow, Message: err.Error()})
	default:
		h.log.WithContext(c.Request.Context()).Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: CodeInternal, Message: "internal server error"})
	}
}

func parseUserID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: CodeInvalidRequest, Message: "id must be an integer"})
		return 0, false
	}
	return id, true
}

// RequestLoggingMiddleware 記錄每個 HTTP 請求
func (h *Handler) RequestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		h.log.WithContext(c.Request.Context()).Infow(
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}

// MetricsMiddleware 以路由樣板 (例如 /point/:id) 為 label 累計請求數與耗時
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequest(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start).Seconds(),
		)
	}
}
