package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(jwtManager *JWTManager) *gin.Engine {
	r := gin.New()
	r.Use(Middleware(jwtManager))
	r.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"operator_id": GetOperatorID(c),
			"is_admin":    IsAdmin(c),
		})
	})
	return r
}

func TestMiddlewareRejectsMissingHeader(t *testing.T) {
	jwtManager := NewJWTManager("secret", time.Minute, time.Hour)
	router := newTestRouter(jwtManager)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestMiddlewareRejectsMalformedHeader(t *testing.T) {
	jwtManager := NewJWTManager("secret", time.Minute, time.Hour)
	router := newTestRouter(jwtManager)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "NotBearer token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestMiddlewareAcceptsValidToken(t *testing.T) {
	jwtManager := NewJWTManager("secret", time.Minute, time.Hour)
	router := newTestRouter(jwtManager)

	token, err := jwtManager.GenerateAccessToken(OperatorClaims{
		OperatorID: "operator",
		Email:      "operator@example.com",
		Role:       "admin",
	})
	if err != nil {
		t.Fatalf("GenerateAccessToken returned error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}
}

func TestMiddlewareRejectsTokenSignedWithDifferentSecret(t *testing.T) {
	wrongManager := NewJWTManager("wrong-secret", time.Minute, time.Hour)
	token, err := wrongManager.GenerateAccessToken(OperatorClaims{OperatorID: "operator"})
	if err != nil {
		t.Fatalf("GenerateAccessToken returned error: %v", err)
	}

	router := newTestRouter(NewJWTManager("secret", time.Minute, time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}
