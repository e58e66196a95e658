// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError はサービス層からハンドラー層へ伝搬するエラーを表す。
// CodeはHTTPステータスへのマッピングに使用し、
// Messageはレガシー形式 {"error":true,"message":...} のボディにそのまま載せる。
type APIError struct {
	Code    string
	Message string
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeAuth         = "AUTH_ERROR"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeNotFound     = "NOT_FOUND"
)

// NewValidationError は入力不備エラーを生成する。
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:    ErrCodeValidation,
		Message: message,
	}
}

// NewConflictError は重複メールアドレスエラーを生成する。
func NewConflictError() *APIError {
	return &APIError{
		Code:    ErrCodeConflict,
		Message: "User already exists",
	}
}

// NewUserNotFoundError はユーザー未検出エラーを生成する。
// ログイン時の未登録メールアドレスに対して返す。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeNotFound,
		Message: "User not found",
	}
}

// NewInvalidCredentialsError はパスワード不一致エラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:    ErrCodeAuth,
		Message: "Invalid Credentials",
	}
}

// NewInvalidTokenError は署名不正または期限切れトークンのエラーを生成する。
func NewInvalidTokenError() *APIError {
	return &APIError{
		Code:    ErrCodeUnauthorized,
		Message: "Invalid or expired token",
	}
}

// NewStoryNotFoundError は旅行記未検出エラーを生成する。
func NewStoryNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeNotFound,
		Message: "Travel story not found",
	}
}

// NewImageNotFoundError は画像ファイル未検出エラーを生成する。
// delete-image / delete-story はこのエラーを200ボディ内のフラグとして報告する。
func NewImageNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeNotFound,
		Message: "Image not found",
	}
}
