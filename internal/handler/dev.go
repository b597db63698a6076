package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"payment-rail-gateway/internal/devcode"
)

const devCodeNote = "DEV MODE ONLY"

// DevHandler serves the dev-only plain SCA code endpoint. Only registered when
// dev code mode is enabled and the environment is not production.
type DevHandler struct {
	store devcode.Store
}

// NewDevHandler returns a dev handler that reads codes from the given store.
func NewDevHandler(store devcode.Store) *DevHandler {
	return &DevHandler{store: store}
}

// RegisterRoutes registers the dev route on the router.
func (h *DevHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/dev/sca/code", h.GetCode)
}

// GetCode returns the plain code for the given challenge_id from the dev
// store. 404 if missing or expired.
func (h *DevHandler) GetCode(c *gin.Context) {
	challengeID := c.Query("challenge_id")
	if challengeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "challenge_id is required"})
		return
	}
	code, ok := h.store.Get(c.Request.Context(), challengeID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "code not found or expired"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code": code,
		"note": devCodeNote,
	})
}
