package story

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/tabilog/internal/model"
)

const testPlaceholderURL = "http://localhost:8000/assets/placeholder.jpeg"

// mockStoryRepo はStoryRepositoryのモック実装。
type mockStoryRepo struct {
	createFn       func(ctx context.Context, story *model.Story) error
	findFn         func(ctx context.Context, ownerID, storyID string) (*model.Story, error)
	listFn         func(ctx context.Context, ownerID string) ([]*model.Story, error)
	updateFn       func(ctx context.Context, story *model.Story) error
	deleteFn       func(ctx context.Context, ownerID, storyID string) (bool, error)
	searchFn       func(ctx context.Context, ownerID, query string) ([]*model.Story, error)
	filterByDateFn func(ctx context.Context, ownerID string, start, end time.Time) ([]*model.Story, error)
}

func (m *mockStoryRepo) Create(ctx context.Context, story *model.Story) error {
	if m.createFn != nil {
		return m.createFn(ctx, story)
	}
	return nil
}

func (m *mockStoryRepo) FindByOwnerAndID(ctx context.Context, ownerID, storyID string) (*model.Story, error) {
	if m.findFn != nil {
		return m.findFn(ctx, ownerID, storyID)
	}
	return nil, nil
}

func (m *mockStoryRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.Story, error) {
	if m.listFn != nil {
		return m.listFn(ctx, ownerID)
	}
	return nil, nil
}

func (m *mockStoryRepo) Update(ctx context.Context, story *model.Story) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, story)
	}
	return nil
}

func (m *mockStoryRepo) Delete(ctx context.Context, ownerID, storyID string) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, ownerID, storyID)
	}
	return false, nil
}

func (m *mockStoryRepo) Search(ctx context.Context, ownerID, query string) ([]*model.Story, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, ownerID, query)
	}
	return nil, nil
}

func (m *mockStoryRepo) FilterByDateRange(ctx context.Context, ownerID string, start, end time.Time) ([]*model.Story, error) {
	if m.filterByDateFn != nil {
		return m.filterByDateFn(ctx, ownerID, start, end)
	}
	return nil, nil
}

// passthroughSanitizer は入力をそのまま返すサニタイザ。
type passthroughSanitizer struct{}

func (passthroughSanitizer) Sanitize(input string) string { return input }

// recordingSanitizer はサニタイズ呼び出しを記録し、タグ除去を模倣する。
type recordingSanitizer struct {
	inputs []string
}

func (s *recordingSanitizer) Sanitize(input string) string {
	s.inputs = append(s.inputs, input)
	return strings.ReplaceAll(strings.ReplaceAll(input, "<b>", ""), "</b>", "")
}

// mockImageDeleter はDeleteByURL呼び出しをチャネルで通知する。
type mockImageDeleter struct {
	deleteFn func(imageURL string) error
	called   chan string
}

func (m *mockImageDeleter) DeleteByURL(imageURL string) error {
	if m.called != nil {
		m.called <- imageURL
	}
	if m.deleteFn != nil {
		return m.deleteFn(imageURL)
	}
	return nil
}

func newTestService(repo *mockStoryRepo, deleter *mockImageDeleter) *Service {
	if deleter == nil {
		deleter = &mockImageDeleter{}
	}
	return NewService(repo, passthroughSanitizer{}, deleter, ServiceConfig{
		PlaceholderImageURL: testPlaceholderURL,
	})
}

func existingStory(ownerID string) *model.Story {
	return &model.Story{
		ID:              "story-1",
		OwnerID:         ownerID,
		Title:           "Kyoto in autumn",
		Story:           "Momiji everywhere.",
		VisitedLocation: "Kyoto",
		ImageURL:        "http://localhost:8000/uploads/kyoto.jpg",
		VisitedDate:     time.Date(2024, 11, 20, 0, 0, 0, 0, time.UTC),
		IsFavourite:     false,
		CreatedAt:       time.Date(2024, 11, 21, 10, 0, 0, 0, time.UTC),
		UpdatedAt:       time.Date(2024, 11, 21, 10, 0, 0, 0, time.UTC),
	}
}

func TestService_Create_Success(t *testing.T) {
	var saved *model.Story
	repo := &mockStoryRepo{
		createFn: func(_ context.Context, story *model.Story) error {
			saved = story
			return nil
		},
	}
	svc := newTestService(repo, nil)

	visited := time.Date(2024, 11, 20, 15, 30, 0, 0, time.UTC).UnixMilli()
	story, err := svc.Create(context.Background(), "owner-1", "Kyoto", "Great trip", "Kyoto, Japan", "http://localhost:8000/uploads/a.jpg", visited)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if saved == nil {
		t.Fatal("expected repository Create to be called")
	}
	if story.ID == "" {
		t.Error("expected generated story ID")
	}
	if story.OwnerID != "owner-1" {
		t.Errorf("OwnerID = %q, want %q", story.OwnerID, "owner-1")
	}
	if story.IsFavourite {
		t.Error("new story must not be favourite")
	}
	wantDate := time.Date(2024, 11, 20, 0, 0, 0, 0, time.UTC)
	if !story.VisitedDate.Equal(wantDate) {
		t.Errorf("VisitedDate = %v, want %v", story.VisitedDate, wantDate)
	}
}

func TestService_Create_MissingFields(t *testing.T) {
	svc := newTestService(&mockStoryRepo{}, nil)

	tests := []struct {
		name     string
		title    string
		story    string
		location string
		imageURL string
		visited  int64
	}{
		{"empty title", "", "s", "l", "u", 1},
		{"empty story", "t", "", "l", "u", 1},
		{"empty location", "t", "s", "", "u", 1},
		{"empty image url", "t", "s", "l", "", 1},
		{"zero visited date", "t", "s", "l", "u", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "owner-1", tt.title, tt.story, tt.location, tt.imageURL, tt.visited)
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.Code != model.ErrCodeValidation {
				t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeValidation)
			}
			if apiErr.Message != "All fields are required" {
				t.Errorf("Message = %q", apiErr.Message)
			}
		})
	}
}

func TestService_Create_SanitizesTextFields(t *testing.T) {
	var saved *model.Story
	repo := &mockStoryRepo{
		createFn: func(_ context.Context, story *model.Story) error {
			saved = story
			return nil
		},
	}
	sanitizer := &recordingSanitizer{}
	svc := NewService(repo, sanitizer, &mockImageDeleter{}, ServiceConfig{PlaceholderImageURL: testPlaceholderURL})

	_, err := svc.Create(context.Background(), "owner-1", "<b>Kyoto</b>", "<b>story</b>", "<b>Japan</b>", "http://localhost:8000/uploads/a.jpg", 1)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(sanitizer.inputs) != 3 {
		t.Fatalf("Sanitize called %d times, want 3", len(sanitizer.inputs))
	}
	if saved.Title != "Kyoto" || saved.Story != "story" || saved.VisitedLocation != "Japan" {
		t.Errorf("sanitized fields = %q %q %q", saved.Title, saved.Story, saved.VisitedLocation)
	}
	if saved.ImageURL != "http://localhost:8000/uploads/a.jpg" {
		t.Errorf("ImageURL must not be sanitized, got %q", saved.ImageURL)
	}
}

func TestService_ListAll(t *testing.T) {
	want := []*model.Story{existingStory("owner-1")}
	repo := &mockStoryRepo{
		listFn: func(_ context.Context, ownerID string) ([]*model.Story, error) {
			if ownerID != "owner-1" {
				t.Errorf("ownerID = %q, want %q", ownerID, "owner-1")
			}
			return want, nil
		},
	}
	svc := newTestService(repo, nil)

	stories, err := svc.ListAll(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(stories) != 1 || stories[0].ID != "story-1" {
		t.Errorf("unexpected stories: %+v", stories)
	}
}

func TestService_Edit_Success(t *testing.T) {
	var updated *model.Story
	repo := &mockStoryRepo{
		findFn: func(_ context.Context, ownerID, storyID string) (*model.Story, error) {
			return existingStory(ownerID), nil
		},
		updateFn: func(_ context.Context, story *model.Story) error {
			updated = story
			return nil
		},
	}
	svc := newTestService(repo, nil)

	visited := time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC).UnixMilli()
	story, err := svc.Edit(context.Background(), "owner-1", "story-1", "New title", "New story", "Osaka", "http://localhost:8000/uploads/b.jpg", visited)
	if err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	if updated == nil {
		t.Fatal("expected repository Update to be called")
	}
	if story.Title != "New title" || story.VisitedLocation != "Osaka" {
		t.Errorf("unexpected updated story: %+v", story)
	}
	wantDate := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	if !story.VisitedDate.Equal(wantDate) {
		t.Errorf("VisitedDate = %v, want %v", story.VisitedDate, wantDate)
	}
}

func TestService_Edit_EmptyImageURLUsesPlaceholder(t *testing.T) {
	repo := &mockStoryRepo{
		findFn: func(_ context.Context, ownerID, storyID string) (*model.Story, error) {
			return existingStory(ownerID), nil
		},
	}
	svc := newTestService(repo, nil)

	story, err := svc.Edit(context.Background(), "owner-1", "story-1", "t", "s", "l", "", 1)
	if err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	if story.ImageURL != testPlaceholderURL {
		t.Errorf("ImageURL = %q, want placeholder %q", story.ImageURL, testPlaceholderURL)
	}
}

func TestService_Edit_NotFound(t *testing.T) {
	svc := newTestService(&mockStoryRepo{}, nil)

	_, err := svc.Edit(context.Background(), "owner-1", "missing", "t", "s", "l", "u", 1)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeNotFound {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeNotFound)
	}
	if apiErr.Message != "Travel story not found" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestService_Remove_Success(t *testing.T) {
	repo := &mockStoryRepo{
		findFn: func(_ context.Context, ownerID, storyID string) (*model.Story, error) {
			return existingStory(ownerID), nil
		},
		deleteFn: func(_ context.Context, ownerID, storyID string) (bool, error) {
			return true, nil
		},
	}
	deleter := &mockImageDeleter{called: make(chan string, 1)}
	svc := newTestService(repo, deleter)

	if err := svc.Remove(context.Background(), "owner-1", "story-1"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	select {
	case url := <-deleter.called:
		if url != "http://localhost:8000/uploads/kyoto.jpg" {
			t.Errorf("DeleteByURL url = %q", url)
		}
	case <-time.After(time.Second):
		t.Fatal("expected image deletion to be triggered")
	}
}

func TestService_Remove_ImageDeletionFailureIsNotPropagated(t *testing.T) {
	repo := &mockStoryRepo{
		findFn: func(_ context.Context, ownerID, storyID string) (*model.Story, error) {
			return existingStory(ownerID), nil
		},
		deleteFn: func(_ context.Context, ownerID, storyID string) (bool, error) {
			return true, nil
		},
	}
	deleter := &mockImageDeleter{
		called:   make(chan string, 1),
		deleteFn: func(string) error { return errors.New("disk failure") },
	}
	svc := newTestService(repo, deleter)

	if err := svc.Remove(context.Background(), "owner-1", "story-1"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	<-deleter.called
}

func TestService_Remove_NotFound(t *testing.T) {
	svc := newTestService(&mockStoryRepo{}, nil)

	err := svc.Remove(context.Background(), "owner-1", "missing")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeNotFound {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeNotFound)
	}
}

func TestService_SetFavourite(t *testing.T) {
	var updated *model.Story
	repo := &mockStoryRepo{
		findFn: func(_ context.Context, ownerID, storyID string) (*model.Story, error) {
			return existingStory(ownerID), nil
		},
		updateFn: func(_ context.Context, story *model.Story) error {
			updated = story
			return nil
		},
	}
	svc := newTestService(repo, nil)

	story, err := svc.SetFavourite(context.Background(), "owner-1", "story-1", true)
	if err != nil {
		t.Fatalf("SetFavourite() error = %v", err)
	}
	if !story.IsFavourite {
		t.Error("expected IsFavourite to be true")
	}
	if updated == nil {
		t.Fatal("expected repository Update to be called")
	}
}

func TestService_SetFavourite_NotFound(t *testing.T) {
	svc := newTestService(&mockStoryRepo{}, nil)

	_, err := svc.SetFavourite(context.Background(), "owner-1", "missing", true)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeNotFound {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeNotFound)
	}
}

func TestService_Search_EmptyQuery(t *testing.T) {
	svc := newTestService(&mockStoryRepo{}, nil)

	_, err := svc.Search(context.Background(), "owner-1", "")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeValidation {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeValidation)
	}
}

func TestService_Search_DelegatesToRepository(t *testing.T) {
	repo := &mockStoryRepo{
		searchFn: func(_ context.Context, ownerID, query string) ([]*model.Story, error) {
			if query != "kyoto" {
				t.Errorf("query = %q, want %q", query, "kyoto")
			}
			return []*model.Story{existingStory(ownerID)}, nil
		},
	}
	svc := newTestService(repo, nil)

	stories, err := svc.Search(context.Background(), "owner-1", "kyoto")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(stories) != 1 {
		t.Errorf("len(stories) = %d, want 1", len(stories))
	}
}

func TestService_FilterByDateRange_ConvertsMillisToDates(t *testing.T) {
	var gotStart, gotEnd time.Time
	repo := &mockStoryRepo{
		filterByDateFn: func(_ context.Context, ownerID string, start, end time.Time) ([]*model.Story, error) {
			gotStart, gotEnd = start, end
			return nil, nil
		},
	}
	svc := newTestService(repo, nil)

	startMillis := time.Date(2024, 11, 1, 23, 59, 0, 0, time.UTC).UnixMilli()
	endMillis := time.Date(2024, 11, 30, 1, 0, 0, 0, time.UTC).UnixMilli()
	if _, err := svc.FilterByDateRange(context.Background(), "owner-1", startMillis, endMillis); err != nil {
		t.Fatalf("FilterByDateRange() error = %v", err)
	}
	if !gotStart.Equal(time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", gotStart)
	}
	if !gotEnd.Equal(time.Date(2024, 11, 30, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %v", gotEnd)
	}
}
