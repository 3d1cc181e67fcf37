package utils

import (
	"errors"
	"strconv"
	"ticketbari/src/config"
	"ticketbari/src/models"
	"ticketbari/src/types"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func GenerateJWT(user *models.User) (string, error) {
	now := time.Now()
	claims := &types.Claims{
		Email: user.Email,
		Role:  user.Role,
		UID:   user.UID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(config.TokenTTL())),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(config.JWTSecret())
}

// ParseJWT validates signature and expiry and returns the user id in the subject.
func ParseJWT(tokenString string) (uint, *types.Claims, error) {
	claims := &types.Claims{}
	tkn, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return config.JWTSecret(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return 0, nil, err
	}
	if !tkn.Valid {
		return 0, nil, errors.New("invalid token")
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, nil, err
	}
	return uint(id), claims, nil
}
