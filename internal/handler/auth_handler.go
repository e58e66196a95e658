package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hitoshi/tabilog/internal/middleware"
	"github.com/hitoshi/tabilog/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Register は新規ユーザーを登録し、アクセストークンを発行する。
	Register(ctx context.Context, fullName, email, password string) (*model.User, string, error)
	// Login は認証情報を検証し、アクセストークンを発行する。
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	// GetUser はユーザーIDからユーザーを取得する。
	GetUser(ctx context.Context, userID string) (*model.User, error)
}

// AuthHandler は認証のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// createAccountRequest はアカウント作成リクエストのボディ。
type createAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateAccount はアカウント作成を処理する。
// POST /create-account
func (h *AuthHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "All fields are required")
		return
	}

	user, accessToken, err := h.service.Register(r.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"error":       false,
		"user":        user.Public(),
		"accessToken": accessToken,
		"message":     "Registration Successful",
	})
}

// Login はログインを処理する。
// POST /login
//
// 未登録メールアドレスは404ではなく400で報告する。
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Email and Password are required")
		return
	}

	user, accessToken, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeNotFound {
			writeError(w, http.StatusBadRequest, apiErr.Message)
			return
		}
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"error":       false,
		"message":     "Login Successful",
		"user":        user.Public(),
		"accessToken": accessToken,
	})
}

// GetUser は認証済みユーザーの情報を返す。
// GET /get-user
//
// トークンは有効だがユーザーが存在しない場合は401を返す。
func (h *AuthHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeNotFound {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":    user.Public(),
		"message": "",
	})
}
