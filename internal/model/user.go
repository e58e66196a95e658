// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// PasswordHashはbcryptハッシュであり、APIレスポンスには決して含めない。
type User struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser はAPIレスポンス用のユーザー公開情報を表す。
// パスワードハッシュを除いた射影のみを公開する。
type PublicUser struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// Public はユーザーの公開射影を返す。
func (u *User) Public() PublicUser {
	return PublicUser{
		FullName: u.FullName,
		Email:    u.Email,
	}
}
