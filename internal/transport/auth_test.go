package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type testResolver struct {
	tokenToTenant map[string]string
	err           error
}

func (r *testResolver) ResolveTenant(_ context.Context, token string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	tenant, ok := r.tokenToTenant[token]
	if !ok {
		return "", ErrUnauthorized
	}
	return tenant, nil
}

func tenantEcho(t *testing.T, want string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := TenantFromContext(r.Context())
		if !ok || tenantID != want {
			t.Errorf("tenant = %q, want %q", tenantID, want)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware(t *testing.T) {
	resolver := &testResolver{tokenToTenant: map[string]string{"token": "tenant1"}}
	handler := AuthMiddleware(resolver)(tenantEcho(t, "tenant1"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddleware_Invalid(t *testing.T) {
	cases := map[string]struct {
		resolver *testResolver
		header   string
	}{
		"resolver error": {resolver: &testResolver{err: errors.New("invalid")}, header: "Bearer token"},
		"unknown token":  {resolver: &testResolver{}, header: "Bearer other"},
		"missing header": {resolver: &testResolver{}, header: ""},
		"empty tenant":   {resolver: &testResolver{tokenToTenant: map[string]string{"token": ""}}, header: "Bearer token"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			handler := AuthMiddleware(tc.resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)
			require.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestStaticTenant(t *testing.T) {
	handler := StaticTenant("default")(tenantEcho(t, "default"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
