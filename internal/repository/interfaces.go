// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/tabilog/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスの完全一致でユーザーを検索する。
	// 大文字小文字の正規化は呼び出し側の責務。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error
}

// StoryRepository は旅行記データの永続化インターフェース。
// 読み書きは全てオーナーIDでスコープされる。
type StoryRepository interface {
	// Create は旅行記を作成する。
	Create(ctx context.Context, story *model.Story) error

	// FindByOwnerAndID はオーナーIDと旅行記IDで旅行記を取得する。
	// 見つからない場合はnilを返す。
	FindByOwnerAndID(ctx context.Context, ownerID, storyID string) (*model.Story, error)

	// ListByOwner はオーナーの旅行記一覧をお気に入り優先で返す。
	// 並び順: is_favourite降順、created_at昇順。
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Story, error)

	// Update は旅行記の全更新可能フィールドを上書きする。
	Update(ctx context.Context, story *model.Story) error

	// Delete はオーナーIDと旅行記IDで旅行記を削除する。
	// 削除された場合はtrueを、該当行が存在しない場合はfalseを返す。
	Delete(ctx context.Context, ownerID, storyID string) (bool, error)

	// Search はタイトル・本文・訪問地のいずれかにqueryを部分一致で含む
	// オーナーの旅行記をお気に入り優先で返す。大文字小文字は区別しない。
	Search(ctx context.Context, ownerID, query string) ([]*model.Story, error)

	// FilterByDateRange は訪問日がstartからendの範囲（両端含む）にある
	// オーナーの旅行記をお気に入り優先で返す。
	// start > end の場合は空の結果になる。
	FilterByDateRange(ctx context.Context, ownerID string, start, end time.Time) ([]*model.Story, error)
}
