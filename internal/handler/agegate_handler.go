package handler

import (
	"net/http"

	"app/internal/agegate"
	"app/internal/config"
	"app/internal/middleware"

	"github.com/labstack/echo/v4"
)

// /ageのHTTP（年齢確認モーダルの裏側）
type AgeGateHandler struct {
	latch *agegate.Latch
	cfg   config.Config
}

// DI
func NewAgeGateHandler(latch *agegate.Latch, cfg config.Config) *AgeGateHandler {
	return &AgeGateHandler{latch: latch, cfg: cfg}
}

type AgeStatusResponse struct {
	Verified bool `json:"verified"`
}

type AgeDenyResponse struct {
	//「いいえ」のときにクライアントが遷移する先
	ExitURL string `json:"exit_url"`
}

func (h *AgeGateHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/age")

	g.GET("", h.status)
	g.POST("/verify", h.verify)
	g.POST("/deny", h.deny)
}

func (h *AgeGateHandler) status(c echo.Context) error {
	sid, ok := middleware.GetSessionID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing session"})
	}

	verified, err := h.latch.IsVerified(c.Request().Context(), sid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "session store error"})
	}

	return c.JSON(http.StatusOK, AgeStatusResponse{Verified: verified})
}

func (h *AgeGateHandler) verify(c echo.Context) error {
	sid, ok := middleware.GetSessionID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing session"})
	}

	if err := h.latch.Verify(c.Request().Context(), sid); err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "session store error"})
	}

	return c.JSON(http.StatusOK, AgeStatusResponse{Verified: true})
}

// 「いいえ」。状態は一切変更せず、退出先だけ返す
func (h *AgeGateHandler) deny(c echo.Context) error {
	return c.JSON(http.StatusOK, AgeDenyResponse{ExitURL: h.cfg.ExitURL})
}
