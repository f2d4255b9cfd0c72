package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	CtxSessionIDKey = "session_id" // string

	sessionCookieName = "sid"
)

// セッションIDのCookieを用意するミドルウェア。
// MaxAge無しのCookieなのでブラウザを閉じると消える＝セッションスコープ。
// サーバ側の状態（カート・年齢確認）はこのIDでRedisに紐付く。
func Session() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var sid string

			if cookie, err := c.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
				sid = cookie.Value
			} else {
				sid = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     sessionCookieName,
					Value:    sid,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			c.Set(CtxSessionIDKey, sid)
			return next(c)
		}
	}
}

// contextからセッションIDを取り出す
func GetSessionID(c echo.Context) (string, bool) {
	sid, ok := c.Get(CtxSessionIDKey).(string)
	if !ok || sid == "" {
		return "", false
	}
	return sid, true
}
