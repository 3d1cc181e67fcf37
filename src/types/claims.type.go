package types

import "github.com/golang-jwt/jwt/v5"

type Claims struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
	UID   string `json:"uid"`
	jwt.RegisteredClaims
}
