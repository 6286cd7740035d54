package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"app/internal/domain/model"
	"app/internal/middleware"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func runRoleGuard(t *testing.T, role interface{}, allowed ...model.Role) int {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != nil {
		c.Set(middleware.CtxUserRoleKey, role)
	}

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	err := middleware.RoleGuard(allowed...)(next)(c)
	assert.NoError(t, err)
	return rec.Code
}

func TestRoleGuard(t *testing.T) {
	assert.Equal(t, http.StatusOK, runRoleGuard(t, "admin", model.RoleAdmin, model.RoleRestaurantOwner))
	assert.Equal(t, http.StatusOK, runRoleGuard(t, "restaurant_owner", model.RoleAdmin, model.RoleRestaurantOwner))
	assert.Equal(t, http.StatusForbidden, runRoleGuard(t, "customer", model.RoleAdmin, model.RoleRestaurantOwner))
	assert.Equal(t, http.StatusUnauthorized, runRoleGuard(t, nil, model.RoleAdmin))
	assert.Equal(t, http.StatusUnauthorized, runRoleGuard(t, "", model.RoleAdmin))
}
