package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/tabilog/internal/model"
)

// --- モック ---

type mockUserRepo struct {
	findByIDFn    func(ctx context.Context, id string) (*model.User, error)
	findByEmailFn func(ctx context.Context, email string) (*model.User, error)
	createFn      func(ctx context.Context, user *model.User) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func newTestService(repo *mockUserRepo) *Service {
	return NewService(
		repo,
		NewPasswordHasher(4),
		NewTokenManager(testSecret, 72*time.Hour),
	)
}

// --- Register ---

func TestService_Register_Success(t *testing.T) {
	var created *model.User
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			created = user
			return nil
		},
	}
	svc := newTestService(repo)

	user, token, err := svc.Register(context.Background(), "Alice Example", "Alice@X.com", "pw1")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Email != "alice@x.com" {
		t.Errorf("email = %q, want lowercased %q", user.Email, "alice@x.com")
	}
	if user.PasswordHash == "pw1" || user.PasswordHash == "" {
		t.Error("password must be stored as a hash, never plaintext")
	}
	if token == "" {
		t.Error("expected a session token")
	}
	if created == nil {
		t.Fatal("expected Create to be called")
	}
	if created.ID == "" {
		t.Error("expected an assigned user ID")
	}

	// 発行されたトークンが本人のIDに束縛されていることを確認
	verified, err := svc.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken returned error: %v", err)
	}
	if verified != user.ID {
		t.Errorf("token userID = %q, want %q", verified, user.ID)
	}
}

func TestService_Register_MissingFields(t *testing.T) {
	svc := newTestService(&mockUserRepo{})

	tests := []struct {
		name     string
		fullName string
		email    string
		password string
	}{
		{"missing fullName", "", "a@x.com", "pw"},
		{"missing email", "Alice", "", "pw"},
		{"missing password", "Alice", "a@x.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Register(context.Background(), tt.fullName, tt.email, tt.password)
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidation {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			if email == "a@x.com" {
				return &model.User{ID: "existing", Email: "a@x.com"}, nil
			}
			return nil, nil
		},
	}
	svc := newTestService(repo)

	// 大文字混じりでも正規化により衝突が検出される
	_, _, err := svc.Register(context.Background(), "Alice", "A@X.com", "pw")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeConflict {
		t.Errorf("expected conflict error, got %v", err)
	}
}

// --- Login ---

func TestService_Login_Success(t *testing.T) {
	hasher := NewPasswordHasher(4)
	hash, err := hasher.Hash("pw1")
	if err != nil {
		t.Fatal(err)
	}

	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			if email == "a@x.com" {
				return &model.User{ID: "user-1", Email: "a@x.com", PasswordHash: hash}, nil
			}
			return nil, nil
		},
	}
	svc := newTestService(repo)

	user, token, err := svc.Login(context.Background(), "a@x.com", "pw1")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if user.ID != "user-1" {
		t.Errorf("user.ID = %q, want %q", user.ID, "user-1")
	}
	if token == "" {
		t.Error("expected a session token")
	}
}

// ログイン時のメールアドレス検索は大文字小文字を正規化しない。
// 登録時と非対称だが、既存の挙動として維持されている。
func TestService_Login_LookupIsCaseExact(t *testing.T) {
	var lookedUp string
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			lookedUp = email
			return nil, nil
		},
	}
	svc := newTestService(repo)

	_, _, err := svc.Login(context.Background(), "A@X.com", "pw")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeNotFound {
		t.Errorf("expected not-found error, got %v", err)
	}
	if lookedUp != "A@X.com" {
		t.Errorf("lookup email = %q, want exact %q", lookedUp, "A@X.com")
	}
}

func TestService_Login_WrongPassword(t *testing.T) {
	hasher := NewPasswordHasher(4)
	hash, err := hasher.Hash("correct")
	if err != nil {
		t.Fatal(err)
	}

	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: "user-1", Email: email, PasswordHash: hash}, nil
		},
	}
	svc := newTestService(repo)

	_, _, err = svc.Login(context.Background(), "a@x.com", "wrong")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeAuth {
		t.Errorf("expected auth error, got %v", err)
	}
}

func TestService_Login_MissingFields(t *testing.T) {
	svc := newTestService(&mockUserRepo{})

	_, _, err := svc.Login(context.Background(), "", "pw")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}

// --- VerifyToken / GetUser ---

func TestService_VerifyToken_Invalid(t *testing.T) {
	svc := newTestService(&mockUserRepo{})

	_, err := svc.VerifyToken("garbage")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUnauthorized {
		t.Errorf("expected unauthorized error, got %v", err)
	}
}

func TestService_GetUser_NotFound(t *testing.T) {
	svc := newTestService(&mockUserRepo{})

	_, err := svc.GetUser(context.Background(), "missing")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeNotFound {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestService_GetUser_Found(t *testing.T) {
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, FullName: "Alice", Email: "a@x.com"}, nil
		},
	}
	svc := newTestService(repo)

	user, err := svc.GetUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetUser returned error: %v", err)
	}
	if user.FullName != "Alice" {
		t.Errorf("FullName = %q, want %q", user.FullName, "Alice")
	}
}
