package handler

import (
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type RestaurantHandler struct {
	uc *usecase.RestaurantUsecase
}

func NewRestaurantHandler(uc *usecase.RestaurantUsecase) *RestaurantHandler {
	return &RestaurantHandler{uc: uc}
}

func (h *RestaurantHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	e.GET("/restaurants", h.list)
	e.GET("/restaurants/:id", h.detail)
	e.GET("/restaurants/slug/:slug", h.detailBySlug)

	g := e.Group("/restaurants")
	g.Use(middleware.AuthJWT(cfg))
	//作成はroleで先に弾く（所有チェックはusecase側）
	g.POST("", h.create, middleware.RoleGuard(model.RoleAdmin, model.RoleRestaurantOwner))
	g.GET("/mine", h.listMine)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

type restaurantRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Address     *string `json:"address"`
	City        *string `json:"city"`
	State       *string `json:"state"`
	ZipCode     *string `json:"zip_code"`
	Phone       *string `json:"phone"`
	Image       *string `json:"image"`
	IsActive    *bool   `json:"is_active"`
}

func (h *RestaurantHandler) create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Success: false, Message: "unauthorized"})
	}
	role, _ := getUserRoleFromContext(c)

	var req restaurantRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.Name == nil {
		return badRequest(c, "name required")
	}

	out, err := h.uc.Create(c.Request().Context(), userID, role, usecase.CreateRestaurantInput{
		Name:        *req.Name,
		Description: req.Description,
		Address:     req.Address,
		City:        req.City,
		State:       req.State,
		ZipCode:     req.ZipCode,
		Phone:       req.Phone,
		Image:       req.Image,
	})
	if err != nil {
		return writeError(c, err)
	}

	return writeSuccess(c, http.StatusCreated, "restaurant created successfully", out)
}

func (h *RestaurantHandler) list(c echo.Context) error {
	out, err := h.uc.ListActive(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return writeSuccess(c, http.StatusOK, "restaurants retrieved", out)
}

func (h *RestaurantHandler) listMine(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Success: false, Message: "unauthorized"})
	}

	out, err := h.uc.ListMine(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return writeSuccess(c, http.StatusOK, "restaurants retrieved", out)
}

func (h *RestaurantHandler) detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return badRequest(c, "invalid id")
	}

	out, err := h.uc.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return writeSuccess(c, http.StatusOK, "restaurant retrieved", out)
}

func (h *RestaurantHandler) detailBySlug(c echo.Context) error {
	out, err := h.uc.GetBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return writeError(c, err)
	}
	return writeSuccess(c, http.StatusOK, "restaurant retrieved", out)
}

func (h *RestaurantHandler) update(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Success: false, Message: "unauthorized"})
	}
	role, _ := getUserRoleFromContext(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return badRequest(c, "invalid id")
	}

	var req restaurantRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.Update(c.Request().Context(), userID, role, id, usecase.UpdateRestaurantInput{
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		City:        req.City,
		State:       req.State,
		ZipCode:     req.ZipCode,
		Phone:       req.Phone,
		Image:       req.Image,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return writeError(c, err)
	}
	return writeSuccess(c, http.StatusOK, "restaurant updated successfully", out)
}

func (h *RestaurantHandler) delete(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Success: false, Message: "unauthorized"})
	}
	role, _ := getUserRoleFromContext(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return badRequest(c, "invalid id")
	}

	if err := h.uc.Delete(c.Request().Context(), userID, role, id); err != nil {
		return writeError(c, err)
	}
	return writeSuccess(c, http.StatusOK, "restaurant deleted successfully", nil)
}
