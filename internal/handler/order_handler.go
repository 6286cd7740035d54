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

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/orders")
	g.Use(middleware.AuthJWT(cfg))

	g.POST("", h.create)
	g.GET("/:id", h.detail)
	g.GET("/customer/:customerId", h.listByCustomer)
	g.GET("/restaurant/:restaurantId", h.listByRestaurant)
	g.PATCH("/:id/status", h.updateStatus)
}

type orderCreateRequest struct {
	RestaurantID    int64                    `json:"restaurant_id"`
	Items           []usecase.OrderItemInput `json:"items"`
	CustomerNote    *string                  `json:"customer_note"`
	DeliveryAddress *string                  `json:"delivery_address"`
}

func (h *OrderHandler) create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Success: false, Message: "unauthorized"})
	}

	var req orderCreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.CreateOrder(c.Request().Context(), userID, usecase.CreateOrderInput{
		RestaurantID:    req.RestaurantID,
		Items:           req.Items,
		CustomerNote:    req.CustomerNote,
		DeliveryAddress: req.DeliveryAddress,
	})
	if err != nil {
		return writeError(c, err)
	}

	return writeSuccess(c, http.StatusCreated, "order created successfully", out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Success: false, Message: "unauthorized"})
	}
	role, _ := getUserRoleFromContext(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return badRequest(c, "invalid id")
	}

	out, err := h.uc.GetOrderByID(c.Request().Context(), id, userID, role)
	if err != nil {
		return writeError(c, err)
	}
	return writeSuccess(c, http.StatusOK, "order retrieved", out)
}

func (h *OrderHandler) listByCustomer(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Success: false, Message: "unauthorized"})
	}
	role, _ := getUserRoleFromContext(c)

	customerID, err := strconv.ParseInt(c.Param("customerId"), 10, 64)
	if err != nil {
		return badRequest(c, "invalid customer id")
	}

	out, err := h.uc.ListByCustomerID(c.Request().Context(), customerID, userID, role)
	if err != nil {
		return writeError(c, err)
	}
	return writeSuccess(c, http.StatusOK, "orders retrieved", out)
}

func (h *OrderHandler) listByRestaurant(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Success: false, Message: "unauthorized"})
	}
	role, _ := getUserRoleFromContext(c)

	restaurantID, err := strconv.ParseInt(c.Param("restaurantId"), 10, 64)
	if err != nil {
		return badRequest(c, "invalid restaurant id")
	}

	out, err := h.uc.ListByRestaurantID(c.Request().Context(), restaurantID, userID, role)
	if err != nil {
		return writeError(c, err)
	}
	return writeSuccess(c, http.StatusOK, "orders retrieved", out)
}

type orderStatusRequest struct {
	Status string `json:"status"`
}

func (h *OrderHandler) updateStatus(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Success: false, Message: "unauthorized"})
	}
	role, _ := getUserRoleFromContext(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return badRequest(c, "invalid id")
	}

	var req orderStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	//ステータスの値チェックは境界で行う
	status := model.OrderStatus(req.Status)
	if !model.ValidOrderStatus(status) {
		return badRequest(c, "invalid status")
	}

	out, err := h.uc.UpdateOrderStatus(c.Request().Context(), id, status, userID, role)
	if err != nil {
		return writeError(c, err)
	}
	return writeSuccess(c, http.StatusOK, "order status updated successfully", out)
}
