package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/tabilog/internal/middleware"
	"github.com/hitoshi/tabilog/internal/model"
)

// StoryServiceInterface は旅行記ハンドラーが必要とするサービスインターフェース。
type StoryServiceInterface interface {
	// Create は新規旅行記を作成する。
	Create(ctx context.Context, ownerID, title, narrative, location, imageURL string, visitedMillis int64) (*model.Story, error)
	// ListAll はオーナーの全旅行記をお気に入り優先で返す。
	ListAll(ctx context.Context, ownerID string) ([]*model.Story, error)
	// Edit は既存旅行記の全フィールドを更新する。
	Edit(ctx context.Context, ownerID, storyID, title, narrative, location, imageURL string, visitedMillis int64) (*model.Story, error)
	// Remove は旅行記と関連画像を削除する。
	Remove(ctx context.Context, ownerID, storyID string) error
	// SetFavourite はお気に入りフラグを設定する。
	SetFavourite(ctx context.Context, ownerID, storyID string, isFavourite bool) (*model.Story, error)
	// Search はタイトル・本文・訪問地への部分一致で検索する。
	Search(ctx context.Context, ownerID, query string) ([]*model.Story, error)
	// FilterByDateRange は訪問日の範囲で絞り込む。
	FilterByDateRange(ctx context.Context, ownerID string, startMillis, endMillis int64) ([]*model.Story, error)
}

// StoryCreatedRecorder は旅行記作成のメトリクス記録に必要なインターフェース。
type StoryCreatedRecorder interface {
	RecordStoryCreated()
}

// StoryHandler は旅行記管理のHTTPハンドラー。
type StoryHandler struct {
	service StoryServiceInterface
	metrics StoryCreatedRecorder
}

// NewStoryHandler はStoryHandlerを生成する。
func NewStoryHandler(service StoryServiceInterface, metrics StoryCreatedRecorder) *StoryHandler {
	return &StoryHandler{
		service: service,
		metrics: metrics,
	}
}

// storyRequest は旅行記の作成・編集リクエストのボディ。
// visitedDateはエポックミリ秒で受け取る。
type storyRequest struct {
	Title           string `json:"title"`
	Story           string `json:"story"`
	VisitedLocation string `json:"visitedLocation"`
	ImageURL        string `json:"imageUrl"`
	VisitedDate     int64  `json:"visitedDate"`
}

// updateIsFavouriteRequest はお気に入り更新リクエストのボディ。
type updateIsFavouriteRequest struct {
	IsFavourite bool `json:"isFavourite"`
}

// AddStory は旅行記の作成を処理する。
// POST /add-travel-story
func (h *StoryHandler) AddStory(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var req storyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "All fields are required")
		return
	}

	story, err := h.service.Create(r.Context(), userID, req.Title, req.Story, req.VisitedLocation, req.ImageURL, req.VisitedDate)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordStoryCreated()

	writeJSON(w, http.StatusCreated, map[string]any{
		"error":   false,
		"story":   toStoryResponse(story),
		"message": "Added Successfully",
	})
}

// GetAllStories は認証済みユーザーの全旅行記を返す。
// GET /get-all-stories
func (h *StoryHandler) GetAllStories(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	stories, err := h.service.ListAll(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"stories": toStoryResponses(stories),
	})
}

// EditStory は旅行記の更新を処理する。
// PUT /edit-story/:id
func (h *StoryHandler) EditStory(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	storyID := chi.URLParam(r, "id")

	var req storyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "All fields are required")
		return
	}

	story, err := h.service.Edit(r.Context(), userID, storyID, req.Title, req.Story, req.VisitedLocation, req.ImageURL, req.VisitedDate)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"error":   false,
		"story":   toStoryResponse(story),
		"message": "Update Successful",
	})
}

// DeleteStory は旅行記の削除を処理する。
// DELETE /delete-story/:id
//
// 該当旅行記が存在しない場合も200を返し、ボディのエラーフラグで報告する。
func (h *StoryHandler) DeleteStory(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	storyID := chi.URLParam(r, "id")

	if err := h.service.Remove(r.Context(), userID, storyID); err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeNotFound {
			writeError(w, http.StatusOK, apiErr.Message)
			return
		}
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"error":   false,
		"message": "Travel story deleted successfully",
	})
}

// UpdateIsFavourite はお気に入りフラグの更新を処理する。
// PUT /update-is-favourite/:id
func (h *StoryHandler) UpdateIsFavourite(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	storyID := chi.URLParam(r, "id")

	var req updateIsFavouriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	story, err := h.service.SetFavourite(r.Context(), userID, storyID, req.IsFavourite)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"error":   false,
		"story":   toStoryResponse(story),
		"message": "Update Successful",
	})
}

// SearchStories は旅行記の検索を処理する。
// GET /search?query=...
//
// 空クエリは404で報告する。
func (h *StoryHandler) SearchStories(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusNotFound, "query is required")
		return
	}

	stories, err := h.service.Search(r.Context(), userID, query)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"error":   false,
		"stories": toStoryResponses(stories),
	})
}

// FilterStories は訪問日範囲での絞り込みを処理する。
// GET /travel-stories/filter?startDate=...&endDate=...
func (h *StoryHandler) FilterStories(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	startMillis, err := strconv.ParseInt(r.URL.Query().Get("startDate"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "startDate and endDate are required")
		return
	}
	endMillis, err := strconv.ParseInt(r.URL.Query().Get("endDate"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "startDate and endDate are required")
		return
	}

	stories, err := h.service.FilterByDateRange(r.Context(), userID, startMillis, endMillis)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"error":   false,
		"stories": toStoryResponses(stories),
	})
}
