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

type MenuHandler struct {
	uc *usecase.MenuUsecase
}

func NewMenuHandler(uc *usecase.MenuUsecase) *MenuHandler {
	return &MenuHandler{uc: uc}
}

func (h *MenuHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	//メニュー閲覧は公開
	e.GET("/restaurants/:restaurantId/menu", h.menuByRestaurant)
	e.GET("/menu/:id", h.detail)

	g := e.Group("/menu")
	g.Use(middleware.AuthJWT(cfg))
	//変更系はroleで先に弾く（所有チェックはusecase側）
	g.Use(middleware.RoleGuard(model.RoleAdmin, model.RoleRestaurantOwner))
	g.POST("", h.create)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

type menuItemRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	PriceCents   *int64  `json:"price_cents"`
	Category     *string `json:"category"`
	Image        *string `json:"image"`
	RestaurantID *int64  `json:"restaurant_id"`
	IsActive     *bool   `json:"is_active"`
	IsAvailable  *bool   `json:"is_available"`
}

func (h *MenuHandler) create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Success: false, Message: "unauthorized"})
	}
	role, _ := getUserRoleFromContext(c)

	var req menuItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.Name == nil || req.PriceCents == nil || req.Category == nil || req.RestaurantID == nil {
		return badRequest(c, "name, price_cents, category and restaurant_id are required")
	}

	out, err := h.uc.CreateMenuItem(c.Request().Context(), userID, role, usecase.CreateMenuItemInput{
		Name:         *req.Name,
		Description:  req.Description,
		PriceCents:   *req.PriceCents,
		Category:     model.MenuCategory(*req.Category),
		Image:        req.Image,
		RestaurantID: *req.RestaurantID,
		IsActive:     req.IsActive,
		IsAvailable:  req.IsAvailable,
	})
	if err != nil {
		return writeError(c, err)
	}

	return writeSuccess(c, http.StatusCreated, "menu item created successfully", out)
}

func (h *MenuHandler) detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return badRequest(c, "invalid id")
	}

	out, err := h.uc.GetMenuItemByID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return writeSuccess(c, http.StatusOK, "menu item retrieved", out)
}

func (h *MenuHandler) menuByRestaurant(c echo.Context) error {
	restaurantID, err := strconv.ParseInt(c.Param("restaurantId"), 10, 64)
	if err != nil {
		return badRequest(c, "invalid restaurant id")
	}

	out, err := h.uc.GetMenuByRestaurantID(c.Request().Context(), restaurantID)
	if err != nil {
		return writeError(c, err)
	}
	return writeSuccess(c, http.StatusOK, "menu retrieved successfully", out)
}

func (h *MenuHandler) update(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Success: false, Message: "unauthorized"})
	}
	role, _ := getUserRoleFromContext(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return badRequest(c, "invalid id")
	}

	var req menuItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	var category *model.MenuCategory
	if req.Category != nil {
		mc := model.MenuCategory(*req.Category)
		category = &mc
	}

	out, err := h.uc.UpdateMenuItem(c.Request().Context(), userID, role, id, usecase.UpdateMenuItemInput{
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Category:    category,
		Image:       req.Image,
		IsActive:    req.IsActive,
		IsAvailable: req.IsAvailable,
	})
	if err != nil {
		return writeError(c, err)
	}
	return writeSuccess(c, http.StatusOK, "menu item updated successfully", out)
}

func (h *MenuHandler) delete(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Success: false, Message: "unauthorized"})
	}
	role, _ := getUserRoleFromContext(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return badRequest(c, "invalid id")
	}

	if err := h.uc.DeleteMenuItem(c.Request().Context(), userID, role, id); err != nil {
		return writeError(c, err)
	}
	return writeSuccess(c, http.StatusOK, "menu item deleted successfully", nil)
}
