package server

import (
	"net/http"

	"app/internal/config"
	"app/internal/handler"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

type Handlers struct {
	Auth       *handler.AuthHandler
	Restaurant *handler.RestaurantHandler
	Menu       *handler.MenuHandler
	Order      *handler.OrderHandler
	WS         *handler.WSHandler
}

// New はルーティングを組んだechoを返す。
func New(cfg config.Config, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]bool{"alive": true})
	})

	h.Auth.RegisterRoutes(e, cfg)
	h.Restaurant.RegisterRoutes(e, cfg)
	h.Menu.RegisterRoutes(e, cfg)
	h.Order.RegisterRoutes(e, cfg)
	h.WS.RegisterRoutes(e)

	return e
}
