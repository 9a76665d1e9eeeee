package util

import (
	"errors"
	"lake-backend/config"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

const tokenTTL = 24 * time.Hour

func GenerateToken(userID int) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"jti":     uuid.NewString(),
		"exp":     time.Now().Add(tokenTTL).Unix(),
	})

	return token.SignedString([]byte(config.AppConfig.JWTSecret))
}

func parseToken(tokenString string) (jwt.MapClaims, error) {
	if tokenString == "" {
		return nil, errors.New("令牌为空")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("不支持的签名算法")
		}
		return []byte(config.AppConfig.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("无效的令牌")
	}
	return claims, nil
}

func ValidateToken(tokenString string) (int, error) {
	claims, err := parseToken(tokenString)
	if err != nil {
		return 0, err
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, errors.New("无效的用户ID")
	}
	return int(userID), nil
}

func RefreshToken(tokenString string) (string, error) {
	userID, err := ValidateToken(tokenString)
	if err != nil {
		return "", err
	}
	return GenerateToken(userID)
}
