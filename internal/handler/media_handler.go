package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/hitoshi/tabilog/internal/model"
)

// MediaServiceInterface はメディアハンドラーが必要とするサービスインターフェース。
type MediaServiceInterface interface {
	// Upload は画像をストレージに保存し、公開URLを返す。
	Upload(r io.Reader, mimeType, originalName string) (string, error)
	// DeleteByURL は公開URLに対応する画像ファイルを削除する。
	DeleteByURL(imageURL string) error
	// ImportFromURL はリモートURLから画像を取り込み、公開URLを返す。
	ImportFromURL(ctx context.Context, remoteURL string) (string, error)
}

// MediaMetricsRecorder はメディア操作のメトリクス記録に必要なインターフェース。
type MediaMetricsRecorder interface {
	RecordUpload()
	RecordImageImport(success bool)
}

// MediaHandler は画像アップロード・削除のHTTPハンドラー。
type MediaHandler struct {
	service MediaServiceInterface
	metrics MediaMetricsRecorder
	maxSize int64
}

// NewMediaHandler はMediaHandlerを生成する。
// maxSizeはマルチパートフォーム全体のメモリ上限（バイト）。
func NewMediaHandler(service MediaServiceInterface, metrics MediaMetricsRecorder, maxSize int64) *MediaHandler {
	return &MediaHandler{
		service: service,
		metrics: metrics,
		maxSize: maxSize,
	}
}

// importImageRequest はリモート画像取り込みリクエストのボディ。
type importImageRequest struct {
	URL string `json:"url"`
}

// UploadImage はマルチパートフォームでの画像アップロードを処理する。
// POST /image-upload
//
// フォームフィールド名は "image" 固定。
func (h *MediaHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxSize); err != nil {
		writeError(w, http.StatusBadRequest, "No image uploaded")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No image uploaded")
		return
	}
	defer file.Close()

	imageURL, err := h.service.Upload(file, header.Header.Get("Content-Type"), header.Filename)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordUpload()

	writeJSON(w, http.StatusOK, map[string]any{
		"imageUrl": imageURL,
	})
}

// DeleteImage は画像ファイルの削除を処理する。
// DELETE /delete-image?imageUrl=...
//
// ファイルが存在しない場合も200を返し、ボディのエラーフラグで報告する。
func (h *MediaHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	imageURL := r.URL.Query().Get("imageUrl")
	if imageURL == "" {
		writeError(w, http.StatusBadRequest, "imageUrl parameter is required")
		return
	}

	if err := h.service.DeleteByURL(imageURL); err != nil {
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
		"message": "Image deleted successfully",
	})
}

// ImportImage はリモートURLからの画像取り込みを処理する。
// POST /image-import
func (h *MediaHandler) ImportImage(w http.ResponseWriter, r *http.Request) {
	var req importImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	imageURL, err := h.service.ImportFromURL(r.Context(), req.URL)
	if err != nil {
		h.metrics.RecordImageImport(false)
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordImageImport(true)

	writeJSON(w, http.StatusOK, map[string]any{
		"imageUrl": imageURL,
	})
}
