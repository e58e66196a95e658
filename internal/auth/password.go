package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher はbcryptによるパスワードハッシュ化と照合を提供する。
// 平文パスワードは保存されず、ソルト付きの一方向ハッシュのみを永続化する。
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher はPasswordHasherを生成する。
// costがbcryptの有効範囲外の場合はデフォルトコスト（10）を使用する。
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash は平文パスワードのbcryptハッシュを返す。
func (h *PasswordHasher) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify は平文パスワードと保存済みハッシュを照合する。
// 一致する場合のみtrueを返す。
func (h *PasswordHasher) Verify(plain, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plain)) == nil
}
