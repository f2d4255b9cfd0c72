package middleware

import (
	"net/http"

	"app/internal/agegate"

	"github.com/labstack/echo/v4"
)

// 年齢確認ガード。未確認のセッションは店頭に入れない。
func AgeGate(latch *agegate.Latch) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid, ok := GetSessionID(c)
			if !ok {
				return c.JSON(http.StatusForbidden, errorJSON("age verification required"))
			}

			verified, err := latch.IsVerified(c.Request().Context(), sid)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, errorJSON("session store error"))
			}
			if !verified {
				return c.JSON(http.StatusForbidden, errorJSON("age verification required"))
			}

			return next(c)
		}
	}
}
