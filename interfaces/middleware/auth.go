package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"postpilot/domain/dto"
	"postpilot/domain/model"
)

// Auth verifies the bearer JWT and stores the caller id in the gin context
// under "user_id". Authentication policy itself lives with the identity
// provider; this only checks the token it issued.
func Auth(secretKey string) gin.HandlerFunc {
	var res dto.Res
	res.ResponseCode = "401"
	res.ResponseMessage = "Unauthorized"

	return func(ctx *gin.Context) {
		authorization := ctx.Request.Header.Get("Authorization")
		if authorization == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}
		auth := strings.Split(authorization, "Bearer ")
		if len(auth) != 2 {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}

		var userClaims model.UserClaims
		token, err := jwt.ParseWithClaims(
			auth[1],
			&userClaims,
			func(token *jwt.Token) (interface{}, error) {
				return []byte(secretKey), nil
			},
		)
		if err != nil || !token.Valid {
			res := res
			var ve *jwt.ValidationError
			if errors.As(err, &ve) {
				if ve.Errors&jwt.ValidationErrorMalformed != 0 {
					res.ResponseMessage = "That's not even a token"
				} else if ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0 {
					res.ResponseMessage = "Timing is everything"
				} else {
					res.ResponseMessage = fmt.Sprintf("Couldn't handle this token:%v", err)
				}
			}
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}

		ctx.Set("user_id", userClaims.Issuer)
		ctx.Next()
	}
}

// CronAuth guards the scheduler-only trigger endpoints with a shared token.
func CronAuth(cronToken string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if cronToken == "" || ctx.Request.Header.Get("X-Cron-Token") != cronToken {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		ctx.Next()
	}
}
