// Package auth はアカウント登録・ログイン・セッショントークン管理のドメインロジックを提供する。
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/tabilog/internal/model"
	"github.com/hitoshi/tabilog/internal/repository"
)

// Service は認証サービス層。
// ユーザー登録、ログイン検証、トークン発行・検証を提供する。
type Service struct {
	users  repository.UserRepository
	hasher *PasswordHasher
	tokens *TokenManager
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(users repository.UserRepository, hasher *PasswordHasher, tokens *TokenManager) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

// Register は新規アカウントを作成し、セッショントークンを発行する。
// メールアドレスは小文字に正規化して保存する。
// 同一メールアドレスのユーザーが既に存在する場合はConflictErrorを返す。
func (s *Service) Register(ctx context.Context, fullName, email, password string) (*model.User, string, error) {
	if fullName == "" || email == "" || password == "" {
		return nil, "", model.NewValidationError("All fields are required")
	}

	normalizedEmail := strings.ToLower(email)

	existing, err := s.users.FindByEmail(ctx, normalizedEmail)
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up existing user: %w", err)
	}
	if existing != nil {
		return nil, "", model.NewConflictError()
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, "", err
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.NewString(),
		FullName:     fullName,
		Email:        normalizedEmail,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Login は認証情報を検証し、セッショントークンを発行する。
// メールアドレスの検索は登録時と異なり正規化せず、与えられた文字列の完全一致で行う。
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	if email == "" || password == "" {
		return nil, "", model.NewValidationError("Email and Password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, "", model.NewUserNotFoundError()
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, "", model.NewInvalidCredentialsError()
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// VerifyToken はベアラートークンを検証し、所有ユーザーIDを返す。
// 署名不正または期限切れの場合はAPIErrorを返す。
func (s *Service) VerifyToken(token string) (string, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return "", model.NewInvalidTokenError()
	}
	return userID, nil
}

// GetUser は指定IDのユーザーを取得する。
// 見つからない場合はUserNotFoundErrorを返す。
func (s *Service) GetUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}
