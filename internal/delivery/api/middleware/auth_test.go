package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	deliverycontext "beacon/internal/delivery/context"
	"beacon/internal/domain/entity"
	"beacon/internal/domain/service"
	mockService "beacon/internal/mocks/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthContext(header string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/realtime/stats", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()

	return e.NewContext(req, rec), rec
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	userID := uuid.New()

	t.Run("valid token", func(t *testing.T) {
		tokenSvc := mockService.NewMockTokenService(t)
		tokenSvc.EXPECT().ValidateAccessToken("good").Return(&service.Claims{
			UserID: userID,
			Roles:  []string{"user"},
			Type:   service.TokenTypeAccess,
		}, nil)

		c, rec := newAuthContext("Bearer good")
		called := false
		err := NewAuthMiddleware(tokenSvc).Authenticate(func(c echo.Context) error {
			called = true
			id, ok := GetUserID(c)
			assert.True(t, ok)
			assert.Equal(t, userID, id)
			assert.Equal(t, []string{"user"}, deliverycontext.GetRoles(c))

			return c.NoContent(http.StatusNoContent)
		})(c)

		require.NoError(t, err)
		assert.True(t, called)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{name: "missing header", header: "", code: "MISSING_TOKEN"},
		{name: "not a bearer token", header: "Basic Zm9vOmJhcg==", code: "INVALID_TOKEN_FORMAT"},
		{name: "empty bearer token", header: "Bearer ", code: "INVALID_TOKEN_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokenSvc := mockService.NewMockTokenService(t)
			c, rec := newAuthContext(tt.header)

			err := NewAuthMiddleware(tokenSvc).Authenticate(func(echo.Context) error {
				t.Fatal("next must not run")

				return nil
			})(c)

			require.NoError(t, err)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.code)
		})
	}

	t.Run("rejected token", func(t *testing.T) {
		tokenSvc := mockService.NewMockTokenService(t)
		tokenSvc.EXPECT().ValidateAccessToken("expired").Return(nil, assert.AnError)

		c, rec := newAuthContext("Bearer expired")
		err := NewAuthMiddleware(tokenSvc).Authenticate(func(echo.Context) error {
			t.Fatal("next must not run")

			return nil
		})(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "INVALID_TOKEN")
	})
}

func TestAuthMiddleware_RequireRole(t *testing.T) {
	m := NewAuthMiddleware(mockService.NewMockTokenService(t))
	next := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }

	c, rec := newAuthContext("")
	deliverycontext.SetUser(c, uuid.New(), []string{"user", "service"})
	require.NoError(t, m.RequireRole(entity.RoleService)(next)(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	c, rec = newAuthContext("")
	deliverycontext.SetUser(c, uuid.New(), []string{"user", "admin"})
	require.NoError(t, m.RequireRole(entity.RoleService)(next)(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	c, rec = newAuthContext("")
	require.NoError(t, m.RequireRole(entity.RoleService)(next)(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
