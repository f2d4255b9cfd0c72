package server

import (
	"app/internal/agegate"
	"app/internal/config"
	"app/internal/handler"
	"app/internal/middleware"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// ハンドラ一式
type Handlers struct {
	AgeGate  *handler.AgeGateHandler
	Auth     *handler.AuthHandler
	Product  *handler.ProductHandler
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
}

// ルートを組み立てて起動する
func Start(addr string, cfg config.Config, log *logrus.Logger, latch *agegate.Latch, h Handlers) error {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestLog(log))
	e.Use(middleware.Session())

	h.AgeGate.RegisterRoutes(e)
	h.Auth.RegisterRoutes(e)
	h.Product.RegisterRoutes(e, latch)
	h.Cart.RegisterRoutes(e, latch)
	h.Checkout.RegisterRoutes(e, cfg, latch)

	return e.Start(addr)
}
