package handler

import (
	"net/http"

	"app/internal/agegate"
	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /checkoutのHTTP
type CheckoutHandler struct {
	uc *usecase.CheckoutUsecase
}

// DI
func NewCheckoutHandler(uc *usecase.CheckoutUsecase) *CheckoutHandler {
	return &CheckoutHandler{uc: uc}
}

// /checkout を登録。年齢確認＋ログイン必須
func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, latch *agegate.Latch) {
	g := e.Group("/checkout")
	g.Use(middleware.AgeGate(latch))
	g.Use(middleware.AuthJWT(cfg))

	g.POST("", h.checkout)
}

func (h *CheckoutHandler) checkout(c echo.Context) error {
	sid, ok := middleware.GetSessionID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing session"})
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
	}

	out, err := h.uc.Checkout(c.Request().Context(), sid, userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
