package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/hitoshi/tabilog/internal/model"
	"github.com/hitoshi/tabilog/internal/security"
)

// importExtByMime はリモート画像インポート時にContent-Typeから拡張子を補うためのマップ。
var importExtByMime = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ServiceConfig はメディアサービスの設定。
type ServiceConfig struct {
	BaseURL       string
	ImportTimeout time.Duration
	ImportMaxSize int64
}

// Service は画像アップロード・削除・リモートインポートのサービス層。
type Service struct {
	store  *DiskStore
	guard  security.SSRFGuardService
	config ServiceConfig
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(store *DiskStore, guard security.SSRFGuardService, config ServiceConfig) *Service {
	return &Service{
		store:  store,
		guard:  guard,
		config: config,
	}
}

// Upload は画像ストリームを保存し、配信URLを返す。
// MIMEタイプが画像でない場合はValidationErrorを返す。
func (s *Service) Upload(r io.Reader, mimeType, originalName string) (string, error) {
	if !strings.HasPrefix(mimeType, "image/") {
		return "", model.NewValidationError("Only images are allowed")
	}

	name, err := s.store.Save(r, originalName)
	if err != nil {
		return "", err
	}

	return s.urlFor(name), nil
}

// DeleteByURL は画像URLからファイル名を導出してファイルを削除する。
// ファイルが存在しない場合はImageNotFoundErrorを返す（冪等）。
func (s *Service) DeleteByURL(imageURL string) error {
	filename, err := filenameFromURL(imageURL)
	if err != nil {
		return model.NewImageNotFoundError()
	}

	if !s.store.Exists(filename) {
		return model.NewImageNotFoundError()
	}

	return s.store.Remove(filename)
}

// ImportFromURL はリモートURLから画像を取得してストアに保存し、配信URLを返す。
// URLはSSRF検証を通過する必要があり、取得はサイズ上限付きの
// SSRF防止クライアントで行う。画像以外のContent-Typeは拒否する。
func (s *Service) ImportFromURL(ctx context.Context, remoteURL string) (string, error) {
	if remoteURL == "" {
		return "", model.NewValidationError("url is required")
	}
	if err := s.guard.ValidateURL(remoteURL); err != nil {
		return "", model.NewValidationError(fmt.Sprintf("URL not allowed: %v", err))
	}

	client := s.guard.NewSafeClient(s.config.ImportTimeout)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, remoteURL, nil)
	if err != nil {
		return "", model.NewValidationError("invalid URL")
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch remote image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", model.NewValidationError(fmt.Sprintf("remote server returned status %d", resp.StatusCode))
	}

	mimeType := resp.Header.Get("Content-Type")
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return "", model.NewValidationError("Only images are allowed")
	}

	// サイズ上限を1バイト超えて読み、上限超過を検出する
	limited := io.LimitReader(resp.Body, s.config.ImportMaxSize+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return "", fmt.Errorf("failed to read remote image: %w", err)
	}
	if int64(len(data)) > s.config.ImportMaxSize {
		return "", model.NewValidationError("remote image exceeds size limit")
	}

	originalName := path.Base(remoteURL)
	if path.Ext(originalName) == "" {
		if ext, ok := importExtByMime[mimeType]; ok {
			originalName += ext
		}
	}

	name, err := s.store.Save(strings.NewReader(string(data)), originalName)
	if err != nil {
		return "", err
	}

	return s.urlFor(name), nil
}

// urlFor はファイル名から配信URLを組み立てる。
func (s *Service) urlFor(filename string) string {
	return s.config.BaseURL + "/uploads/" + filename
}

// filenameFromURL は画像URLからファイル名を導出する。
// パストラバーサルにつながる名前は拒否する。
func filenameFromURL(imageURL string) (string, error) {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return "", fmt.Errorf("invalid image URL: %w", err)
	}

	filename := path.Base(parsed.Path)
	if filename == "." || filename == "/" || filename == ".." || filename == "" {
		return "", fmt.Errorf("no filename in URL: %s", imageURL)
	}
	return filename, nil
}
