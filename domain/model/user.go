package model

import "github.com/golang-jwt/jwt"

// UserClaims are the JWT claims carried by an authenticated caller.
type UserClaims struct {
	UserName string `json:"user_name"`
	jwt.StandardClaims
}
