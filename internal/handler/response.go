// Package handler はHTTP APIのハンドラー層を提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/tabilog/internal/model"
)

// storyResponse は旅行記のAPIレスポンス。
type storyResponse struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Story           string    `json:"story"`
	VisitedLocation string    `json:"visitedLocation"`
	ImageURL        string    `json:"imageUrl"`
	VisitedDate     time.Time `json:"visitedDate"`
	IsFavourite     bool      `json:"isFavourite"`
	CreatedOn       time.Time `json:"createdOn"`
}

func toStoryResponse(story *model.Story) storyResponse {
	return storyResponse{
		ID:              story.ID,
		Title:           story.Title,
		Story:           story.Story,
		VisitedLocation: story.VisitedLocation,
		ImageURL:        story.ImageURL,
		VisitedDate:     story.VisitedDate,
		IsFavourite:     story.IsFavourite,
		CreatedOn:       story.CreatedAt,
	}
}

func toStoryResponses(stories []*model.Story) []storyResponse {
	out := make([]storyResponse, 0, len(stories))
	for _, s := range stories {
		out = append(out, toStoryResponse(s))
	}
	return out
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response",
			slog.String("error", err.Error()),
		)
	}
}

// writeError はエラーフラグ形式のエラーレスポンスを書き込む。
// ボディは常に {"error": true, "message": ...} の形を取る。
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"error":   true,
		"message": message,
	})
}

// handleServiceError はサービス層のエラーをHTTPレスポンスに変換する。
// APIErrorはコードに応じたステータスコードで返し、
// それ以外は詳細を隠して500を返す。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeError(w, statusForCode(apiErr.Code), apiErr.Message)
		return
	}

	slog.Error("unexpected service error",
		slog.String("error", err.Error()),
	)
	writeError(w, http.StatusInternalServerError, "Internal Server Error")
}

// statusForCode はエラーコードをHTTPステータスコードに対応付ける。
func statusForCode(code string) int {
	switch code {
	case model.ErrCodeValidation, model.ErrCodeConflict, model.ErrCodeAuth:
		return http.StatusBadRequest
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
