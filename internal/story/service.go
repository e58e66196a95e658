// Package story は旅行記のCRUD・検索・絞り込みのドメインロジックを提供する。
// 全ての操作は認証済みオーナーIDでスコープされ、他ユーザーの旅行記には一切触れない。
package story

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/tabilog/internal/model"
	"github.com/hitoshi/tabilog/internal/repository"
	"github.com/hitoshi/tabilog/internal/security"
)

// ImageDeleter は旅行記削除時の画像ファイル掃除に必要なインターフェース。
// media.Serviceの部分集合として定義する。
type ImageDeleter interface {
	DeleteByURL(imageURL string) error
}

// ServiceConfig は旅行記サービスの設定。
type ServiceConfig struct {
	// PlaceholderImageURL は編集時に画像URLが省略された場合の代替URL。
	PlaceholderImageURL string
}

// Service は旅行記のサービス層。
type Service struct {
	stories   repository.StoryRepository
	sanitizer security.TextSanitizerService
	images    ImageDeleter
	config    ServiceConfig
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	stories repository.StoryRepository,
	sanitizer security.TextSanitizerService,
	images ImageDeleter,
	config ServiceConfig,
) *Service {
	return &Service{
		stories:   stories,
		sanitizer: sanitizer,
		images:    images,
		config:    config,
	}
}

// Create は新規旅行記を作成する。
// 全フィールドが必須で、訪問日はエポックミリ秒から日付に変換される。
// テキストフィールドは保存前にサニタイズされる。
func (s *Service) Create(ctx context.Context, ownerID, title, narrative, location, imageURL string, visitedMillis int64) (*model.Story, error) {
	if title == "" || narrative == "" || location == "" || imageURL == "" || visitedMillis <= 0 {
		return nil, model.NewValidationError("All fields are required")
	}

	now := time.Now().UTC()
	story := &model.Story{
		ID:              uuid.NewString(),
		OwnerID:         ownerID,
		Title:           s.sanitizer.Sanitize(title),
		Story:           s.sanitizer.Sanitize(narrative),
		VisitedLocation: s.sanitizer.Sanitize(location),
		ImageURL:        imageURL,
		VisitedDate:     model.DateFromMillis(visitedMillis),
		IsFavourite:     false,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.stories.Create(ctx, story); err != nil {
		return nil, fmt.Errorf("failed to create story: %w", err)
	}

	return story, nil
}

// ListAll はオーナーの全旅行記をお気に入り優先で返す。
func (s *Service) ListAll(ctx context.Context, ownerID string) ([]*model.Story, error) {
	stories, err := s.stories.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	return stories, nil
}

// Edit は既存旅行記の全フィールドを更新する。
// imageURLが空の場合はプレースホルダー画像で代替する。
// オーナーの旅行記が見つからない場合はNotFoundErrorを返す。
func (s *Service) Edit(ctx context.Context, ownerID, storyID, title, narrative, location, imageURL string, visitedMillis int64) (*model.Story, error) {
	if title == "" || narrative == "" || location == "" || visitedMillis <= 0 {
		return nil, model.NewValidationError("All fields are required")
	}

	story, err := s.stories.FindByOwnerAndID(ctx, ownerID, storyID)
	if err != nil {
		return nil, fmt.Errorf("failed to find story: %w", err)
	}
	if story == nil {
		return nil, model.NewStoryNotFoundError()
	}

	if imageURL == "" {
		imageURL = s.config.PlaceholderImageURL
	}

	story.Title = s.sanitizer.Sanitize(title)
	story.Story = s.sanitizer.Sanitize(narrative)
	story.VisitedLocation = s.sanitizer.Sanitize(location)
	story.ImageURL = imageURL
	story.VisitedDate = model.DateFromMillis(visitedMillis)
	story.UpdatedAt = time.Now().UTC()

	if err := s.stories.Update(ctx, story); err != nil {
		return nil, fmt.Errorf("failed to update story: %w", err)
	}

	return story, nil
}

// Remove は旅行記を削除する。
// 該当行が存在しない場合はStoryNotFoundErrorを返す（ハンドラーはこれを
// 200ボディ内のエラーフラグとして報告する）。
// レコード削除後の画像ファイル削除はベストエフォートで非同期に行い、
// 失敗してもログに記録するのみで呼び出し元には伝搬しない。
func (s *Service) Remove(ctx context.Context, ownerID, storyID string) error {
	story, err := s.stories.FindByOwnerAndID(ctx, ownerID, storyID)
	if err != nil {
		return fmt.Errorf("failed to find story: %w", err)
	}
	if story == nil {
		return model.NewStoryNotFoundError()
	}

	deleted, err := s.stories.Delete(ctx, ownerID, storyID)
	if err != nil {
		return fmt.Errorf("failed to delete story: %w", err)
	}
	if !deleted {
		return model.NewStoryNotFoundError()
	}

	imageURL := story.ImageURL
	go func() {
		if err := s.images.DeleteByURL(imageURL); err != nil {
			slog.Error("failed to delete image file",
				slog.String("story_id", storyID),
				slog.String("image_url", imageURL),
				slog.String("error", err.Error()),
			)
		}
	}()

	return nil
}

// SetFavourite は旅行記のお気に入りフラグを設定する。
// オーナーの旅行記が見つからない場合はNotFoundErrorを返す。
func (s *Service) SetFavourite(ctx context.Context, ownerID, storyID string, isFavourite bool) (*model.Story, error) {
	story, err := s.stories.FindByOwnerAndID(ctx, ownerID, storyID)
	if err != nil {
		return nil, fmt.Errorf("failed to find story: %w", err)
	}
	if story == nil {
		return nil, model.NewStoryNotFoundError()
	}

	story.IsFavourite = isFavourite
	story.UpdatedAt = time.Now().UTC()

	if err := s.stories.Update(ctx, story); err != nil {
		return nil, fmt.Errorf("failed to update story: %w", err)
	}

	return story, nil
}

// Search はタイトル・本文・訪問地への部分一致でオーナーの旅行記を検索する。
// 大文字小文字は区別しない。空クエリはValidationErrorになる。
func (s *Service) Search(ctx context.Context, ownerID, query string) ([]*model.Story, error) {
	if query == "" {
		return nil, model.NewValidationError("Query is required")
	}

	stories, err := s.stories.Search(ctx, ownerID, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search stories: %w", err)
	}
	return stories, nil
}

// FilterByDateRange は訪問日が範囲内（両端含む）のオーナーの旅行記を返す。
// 開始と終了の前後関係は検証しない。逆転した範囲は空の結果になる。
func (s *Service) FilterByDateRange(ctx context.Context, ownerID string, startMillis, endMillis int64) ([]*model.Story, error) {
	start := model.DateFromMillis(startMillis)
	end := model.DateFromMillis(endMillis)

	stories, err := s.stories.FilterByDateRange(ctx, ownerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to filter stories: %w", err)
	}
	return stories, nil
}
