package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"payment-rail-gateway/internal/payment/domain"
)

type stubPinger struct{ err error }

func (s *stubPinger) PingContext(ctx context.Context) error { return s.err }

type stubPolicy struct{ err error }

func (s *stubPolicy) HealthCheck(ctx context.Context) error { return s.err }

func healthRequest(h *HealthHandler) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h.RegisterRoutes(router)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	return w
}

func TestHealth_AllOK(t *testing.T) {
	h := NewHealthHandler(&stubPinger{}, &stubPolicy{}, &stubLister{
		types: []domain.ProviderType{domain.ProviderDomestic},
	})
	if w := healthRequest(h); w.Code != http.StatusOK {
		t.Errorf("status = %d (body %s)", w.Code, w.Body)
	}
}

func TestHealth_NilDBIsNotProbed(t *testing.T) {
	h := NewHealthHandler(nil, &stubPolicy{}, &stubLister{
		types: []domain.ProviderType{domain.ProviderDomestic},
	})
	if w := healthRequest(h); w.Code != http.StatusOK {
		t.Errorf("status = %d (body %s)", w.Code, w.Body)
	}
}

func TestHealth_DegradedOnDBFailure(t *testing.T) {
	h := NewHealthHandler(&stubPinger{err: errors.New("refused")}, &stubPolicy{}, &stubLister{
		types: []domain.ProviderType{domain.ProviderDomestic},
	})
	if w := healthRequest(h); w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestHealth_DegradedOnPolicyFailure(t *testing.T) {
	h := NewHealthHandler(&stubPinger{}, &stubPolicy{err: errors.New("rego compile")}, &stubLister{
		types: []domain.ProviderType{domain.ProviderDomestic},
	})
	if w := healthRequest(h); w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestHealth_DegradedWithoutProviders(t *testing.T) {
	h := NewHealthHandler(&stubPinger{}, &stubPolicy{}, &stubLister{})
	if w := healthRequest(h); w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}
