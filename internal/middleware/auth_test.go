package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gearshare/rental-service/internal/identity"
	"github.com/gearshare/rental-service/internal/models"
)

const testSecret = "test-secret"

func signedToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":   "user-1",
		"roles": []string{"renter"},
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func runAuth(t *testing.T, prepare func(req *http.Request)) (models.Principal, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	prepare(req)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got models.Principal
	handler := Auth(identity.NewResolver(testSecret))(func(c echo.Context) error {
		p, ok := Principal(c)
		require.True(t, ok)
		got = p
		return c.NoContent(http.StatusOK)
	})
	return got, handler(c)
}

func TestAuth_CookieToken(t *testing.T) {
	token := signedToken(t)
	p, err := runAuth(t, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
	})

	require.NoError(t, err)
	assert.Equal(t, "user-1", p.UserID)
	assert.True(t, p.HasRole(models.RoleRenter))
}

func TestAuth_BearerToken(t *testing.T) {
	token := signedToken(t)
	p, err := runAuth(t, func(req *http.Request) {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	})

	require.NoError(t, err)
	assert.Equal(t, "user-1", p.UserID)
}

func TestAuth_CookieWinsOverHeader(t *testing.T) {
	cookieToken := signedToken(t)
	p, err := runAuth(t, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: "token", Value: cookieToken})
		req.Header.Set(echo.HeaderAuthorization, "Bearer garbage")
	})

	require.NoError(t, err)
	assert.Equal(t, "user-1", p.UserID)
}

func TestAuth_MissingOrInvalid(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(req *http.Request)
	}{
		{"no credential", func(req *http.Request) {}},
		{"garbage bearer", func(req *http.Request) {
			req.Header.Set(echo.HeaderAuthorization, "Bearer not-a-jwt")
		}},
		{"wrong scheme", func(req *http.Request) {
			req.Header.Set(echo.HeaderAuthorization, "Basic dXNlcjpwYXNz")
		}},
		{"empty cookie", func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: "token", Value: ""})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runAuth(t, tt.prepare)
			he, ok := err.(*echo.HTTPError)
			require.True(t, ok)
			assert.Equal(t, http.StatusUnauthorized, he.Code)
		})
	}
}
