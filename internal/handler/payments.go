// Package handler exposes the payment operations, registry introspection, and
// health over HTTP. The orchestrator owns all protocol semantics; handlers
// only bind, delegate, and map error kinds to status codes.
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"payment-rail-gateway/internal/payment/domain"
)

// Orchestrator is the operation surface the payment handler consumes.
type Orchestrator interface {
	Simulate(ctx context.Context, req *domain.Request) (*domain.SimulationResult, error)
	Execute(ctx context.Context, req *domain.Request) (*domain.ExecutionResult, error)
	Cancel(ctx context.Context, req *domain.Request) (*domain.CancellationResult, error)
	SimulateCancellation(ctx context.Context, req *domain.Request) (*domain.SimulationResult, error)
	Schedule(ctx context.Context, req *domain.Request, sched *domain.Schedule) (*domain.ScheduleResult, error)
}

// ProviderLister lists registered provider types for introspection.
type ProviderLister interface {
	ListRegisteredProviderTypes() []domain.ProviderType
}

// PaymentHandler handles the payment operation endpoints.
type PaymentHandler struct {
	orch      Orchestrator
	providers ProviderLister
}

// NewPaymentHandler creates a payment handler over the given orchestrator and
// registry view.
func NewPaymentHandler(orch Orchestrator, providers ProviderLister) *PaymentHandler {
	return &PaymentHandler{orch: orch, providers: providers}
}

// RegisterRoutes registers the payment routes on the router.
func (h *PaymentHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")

	api.POST("/payments/simulate", h.Simulate)
	api.POST("/payments/execute", h.Execute)
	api.POST("/payments/cancel", h.Cancel)
	api.POST("/payments/cancel/simulate", h.SimulateCancellation)
	api.POST("/payments/schedule", h.Schedule)

	api.GET("/providers", h.ListProviders)
}

func (h *PaymentHandler) Simulate(c *gin.Context) {
	var req domain.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.orch.Simulate(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(statusFor(&res.Outcome), res)
}

func (h *PaymentHandler) Execute(c *gin.Context) {
	var req domain.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.orch.Execute(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(statusFor(&res.Outcome), res)
}

func (h *PaymentHandler) Cancel(c *gin.Context) {
	var req domain.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.orch.Cancel(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(statusFor(&res.Outcome), res)
}

func (h *PaymentHandler) SimulateCancellation(c *gin.Context) {
	var req domain.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.orch.SimulateCancellation(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(statusFor(&res.Outcome), res)
}

func (h *PaymentHandler) Schedule(c *gin.Context) {
	var req struct {
		domain.Request
		Schedule domain.Schedule `json:"schedule"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.orch.Schedule(c.Request.Context(), &req.Request, &req.Schedule)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(statusFor(&res.Outcome), res)
}

func (h *PaymentHandler) ListProviders(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"providers": h.providers.ListRegisteredProviderTypes(),
	})
}

// statusFor maps a rejection's error kind to an HTTP status. Successful
// outcomes are 200; the body carries the full result either way.
func statusFor(out *domain.Outcome) int {
	if out.Success {
		return http.StatusOK
	}
	switch out.ErrorKind {
	case domain.ErrKindProviderUnavailable:
		return http.StatusServiceUnavailable
	case domain.ErrKindAuthRequired, domain.ErrKindAuthCodeMissing,
		domain.ErrKindAuthCodeInvalid, domain.ErrKindAuthExpired:
		return http.StatusForbidden
	case domain.ErrKindProviderError:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
