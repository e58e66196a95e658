package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenClaims はセッショントークンのJWTクレーム。
// 標準クレームに加えてユーザーIDのみを運ぶ。
type tokenClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenManager はステートレスなセッショントークンの発行と検証を提供する。
// トークンは永続化されず、有効性は署名と有効期限のみで判定される。
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager はTokenManagerを生成する。
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Issue は指定ユーザーIDに紐づくHS256署名のトークンを発行する。
func (m *TokenManager) Issue(userID string) (string, error) {
	now := time.Now().UTC()
	claims := tokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify はトークンの署名と有効期限を検証し、ユーザーIDを返す。
// 署名アルゴリズムはHS256のみ許可する。
func (m *TokenManager) Verify(tokenString string) (string, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid || claims.UserID == "" {
		return "", jwt.ErrTokenInvalidClaims
	}

	return claims.UserID, nil
}
