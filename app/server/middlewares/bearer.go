package middlewares

import (
	"net/http"
	"remote-connection-manager/app/server/jwt"
	"remote-connection-manager/app/server/types"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	ContextKeyTokenUser  = "token_user"
	contextKeyTokenError = "token_error"
)

// Bearer 从 Authorization: Bearer 中提取并校验 token ：
// 缺少 token 返回 401 ，签名或有效期校验失败返回 403
func Bearer(j *jwt.JWT) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  ContextKeyTokenUser,
		TokenLookup: "header:Authorization:Bearer ",
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			user, err := j.ParseUser(auth)
			if err != nil {
				// 记录下来，用于区分“没有 token ”与“ token 无效”
				c.Set(contextKeyTokenError, err)
				return nil, err
			}
			return user, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if _, invalid := c.Get(contextKeyTokenError).(error); invalid {
				return c.JSON(http.StatusForbidden, &types.ErrorMessage{Message: "invalid or expired token"})
			}
			return c.JSON(http.StatusUnauthorized, &types.ErrorMessage{Message: http.StatusText(http.StatusUnauthorized)})
		},
	})
}

// TokenUser 返回 Bearer 校验通过的 token 信息
func TokenUser(c echo.Context) *jwt.User {
	user, _ := c.Get(ContextKeyTokenUser).(*jwt.User)
	return user
}
