package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bozoruz/internal/domain"
	"bozoruz/internal/service"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fixedSession reports a constant session owner
type fixedSession struct {
	user *domain.User
}

func (f fixedSession) CurrentUser() (*domain.User, bool) {
	return f.user, f.user != nil
}

var (
	adminUser    = domain.User{ID: "1", Name: "Admin Adminov", IsAdmin: true}
	customerUser = domain.User{ID: "2", Name: "Foydalanuvchi"}
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func issue(t *testing.T, issuer *service.TokenIssuer, u domain.User) string {
	t.Helper()
	token, _, err := issuer.Issue(u)
	require.NoError(t, err)
	return token
}

func TestAuthMiddlewareRejectsMalformedHeader(t *testing.T) {
	issuer := service.NewTokenIssuer("test-secret", time.Hour)
	handler := AuthMiddleware(issuer, fixedSession{&customerUser}, zap.NewNop())(okHandler())

	for _, header := range []string{"Token abc", "Bearer", "Bearer ", "abc"} {
		req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
	}
}

func TestAuthMiddlewareRejectsTokenAfterLogout(t *testing.T) {
	issuer := service.NewTokenIssuer("test-secret", time.Hour)
	token := issue(t, issuer, customerUser)
	handler := AuthMiddleware(issuer, fixedSession{}, zap.NewNop())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "session ended")
}

func TestAuthMiddlewareRejectsOtherUsersToken(t *testing.T) {
	issuer := service.NewTokenIssuer("test-secret", time.Hour)
	token := issue(t, issuer, adminUser)
	handler := AuthMiddleware(issuer, fixedSession{&customerUser}, zap.NewNop())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareStoresClaimsInContext(t *testing.T) {
	issuer := service.NewTokenIssuer("test-secret", time.Hour)
	token := issue(t, issuer, adminUser)

	var gotID string
	var gotAdmin bool
	handler := AuthMiddleware(issuer, fixedSession{&adminUser}, zap.NewNop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotID, _ = GetUserID(r.Context())
			gotAdmin = IsAdmin(r.Context())
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/products", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "1", gotID)
	assert.True(t, gotAdmin)
}

// Feature: storefront, Property 17: Protected endpoints reject missing tokens
func TestProperty_ProtectedEndpointsRejectMissingTokens(t *testing.T) {
	properties := gopter.NewProperties(nil)
	issuer := service.NewTokenIssuer("test-secret", time.Hour)

	properties.Property("requests without authorization header are rejected", prop.ForAll(
		func(pathSuffix string, method string) bool {
			handler := AuthMiddleware(issuer, fixedSession{&customerUser}, zap.NewNop())(okHandler())

			req := httptest.NewRequest(method, "/api/"+pathSuffix, nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			return w.Code == http.StatusUnauthorized
		},
		gen.AlphaString(),
		gen.OneConstOf(http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: storefront, Property 18: Expired tokens are rejected
func TestProperty_ExpiredTokensAreRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("tokens past their expiry answer 401 token expired", prop.ForAll(
		func(userID string, admin bool) bool {
			user := domain.User{ID: userID, IsAdmin: admin}
			issuer := service.NewTokenIssuer("test-secret", time.Nanosecond)
			token, _, err := issuer.Issue(user)
			if err != nil {
				return false
			}
			time.Sleep(time.Millisecond)

			handler := AuthMiddleware(issuer, fixedSession{&user}, zap.NewNop())(okHandler())
			req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			return w.Code == http.StatusUnauthorized
		},
		gen.Identifier(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: storefront, Property 19: Admin routes reject non-admin tokens
func TestProperty_AdminRoutesRequireAdminFlag(t *testing.T) {
	properties := gopter.NewProperties(nil)
	issuer := service.NewTokenIssuer("test-secret", time.Hour)

	properties.Property("RequireAdmin answers 403 unless the session user is admin", prop.ForAll(
		func(userID string, admin bool) bool {
			user := domain.User{ID: userID, IsAdmin: admin}
			token, _, err := issuer.Issue(user)
			if err != nil {
				return false
			}

			chain := AuthMiddleware(issuer, fixedSession{&user}, zap.NewNop())(
				RequireAdmin(zap.NewNop())(okHandler()),
			)
			req := httptest.NewRequest(http.MethodDelete, "/api/admin/products/1", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			chain.ServeHTTP(w, req)

			if admin {
				return w.Code == http.StatusOK
			}
			return w.Code == http.StatusForbidden
		},
		gen.Identifier(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
