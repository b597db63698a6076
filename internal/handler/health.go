package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"payment-rail-gateway/internal/payment/domain"
)

// Pinger reports whether a backing store is reachable (e.g. *sql.DB).
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PolicyChecker reports whether the requirement-policy engine can compile and
// evaluate its active policy.
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler serves readiness for Kubernetes, load balancers, and CI.
type HealthHandler struct {
	db        Pinger
	policy    PolicyChecker
	providers ProviderLister
}

// NewHealthHandler creates a health handler. db may be nil when running
// without Postgres.
func NewHealthHandler(db Pinger, policy PolicyChecker, providers ProviderLister) *HealthHandler {
	return &HealthHandler{db: db, policy: policy, providers: providers}
}

// RegisterRoutes registers the health route on the router.
func (h *HealthHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/healthz", h.Check)
}

// Check reports component statuses. Overall status is degraded if any probe
// fails; the response is 503 in that case so balancers stop routing.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx := c.Request.Context()
	healthy := true
	components := gin.H{}

	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			healthy = false
			components["database"] = "unreachable"
		} else {
			components["database"] = "ok"
		}
	}
	if h.policy != nil {
		if err := h.policy.HealthCheck(ctx); err != nil {
			healthy = false
			components["policy"] = "failing"
		} else {
			components["policy"] = "ok"
		}
	}

	var providers []domain.ProviderType
	if h.providers != nil {
		providers = h.providers.ListRegisteredProviderTypes()
		if len(providers) == 0 {
			healthy = false
		}
	}

	status := http.StatusOK
	overall := "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}
	c.JSON(status, gin.H{
		"status":     overall,
		"components": components,
		"providers":  providers,
	})
}
