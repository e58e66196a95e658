// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userIDContextKey はリクエストコンテキストにユーザーIDを格納するためのキー。
var userIDContextKey = contextKey("user_id")

// TokenVerifier はアクセストークンの検証に必要なインターフェース。
// auth.Serviceの部分集合として定義する。
type TokenVerifier interface {
	VerifyToken(token string) (string, error)
}

// AuthFailureRecorder は認証失敗のメトリクス記録に必要なインターフェース。
type AuthFailureRecorder interface {
	RecordAuthFailure()
}

// NewAuthMiddleware はAuthorizationヘッダーのBearerトークンを検証するミドルウェアを返す。
// 認証済みユーザーIDをリクエストコンテキストに注入する。
// ヘッダー欠落・形式不正・検証失敗のいずれも401 Unauthorizedを返す。
func NewAuthMiddleware(verifier TokenVerifier, recorder AuthFailureRecorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				recorder.RecordAuthFailure()
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			userID, err := verifier.VerifyToken(token)
			if err != nil {
				recorder.RecordAuthFailure()
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			ctx := ContextWithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken はAuthorizationヘッダーからBearerトークンを取り出す。
// スキーム名の大文字小文字は区別しない。
func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// ContextWithUserID はコンテキストにユーザーIDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}
