package transport

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bozoruz/internal/middleware"
	"bozoruz/internal/repository"
	"bozoruz/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testAPI wires the handlers the way the server does, on in-memory stores
type testAPI struct {
	router   chi.Router
	cart     *service.Cart
	auth     *service.Auth
	tokens   *service.TokenIssuer
	products repository.ProductRepository
	sessions repository.SessionRepository
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	seed, err := repository.DefaultCatalogSeed()
	require.NoError(t, err)

	logger := zap.NewNop()
	products := repository.NewProductRepository(seed.Products)
	reviews := repository.NewReviewRepository(seed.Reviews)
	sessions := repository.NewMemorySessionRepository()

	cart := service.NewCart()
	auth := service.NewAuth(sessions, service.WithLatency(0), service.WithAuthLogger(logger))
	tokens := service.NewTokenIssuer("test-secret", time.Hour)
	checkout := service.NewCheckoutService(cart, auth, repository.NewOrderRepository(), logger)

	authMiddleware := middleware.AuthMiddleware(tokens, auth, logger)

	router := chi.NewRouter()
	router.Use(middleware.ErrorHandlingMiddleware(logger))
	NewCatalogHandler(products, reviews, logger).RegisterRoutes(router)
	NewCartHandler(cart, products, checkout, logger).RegisterRoutes(router, authMiddleware)
	NewAuthHandler(auth, tokens, checkout, logger).RegisterRoutes(router, authMiddleware, nil)
	NewAdminHandler(products, logger).RegisterRoutes(router, authMiddleware)
	NewEventsHandler(cart, auth, nil, logger).RegisterRoutes(router)

	return &testAPI{
		router:   router,
		cart:     cart,
		auth:     auth,
		tokens:   tokens,
		products: products,
		sessions: sessions,
	}
}

func (a *testAPI) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// login signs email in through the API and returns the access token
func (a *testAPI) login(t *testing.T, email string) string {
	t.Helper()

	w := a.do(t, http.MethodPost, "/api/auth/login", LoginRequest{Email: email, Password: "x"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.AccessToken
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
