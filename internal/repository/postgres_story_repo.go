package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/hitoshi/tabilog/internal/model"
)

// storyColumns はstoriesテーブルのSELECT対象カラム。
const storyColumns = `id, owner_id, title, story, visited_location, image_url,
	visited_date, is_favourite, created_at, updated_at`

// favouritesFirst は一覧系クエリの共通並び順。
// お気に入りを先頭に、同順位は作成順で安定させる。
const favouritesFirst = ` ORDER BY is_favourite DESC, created_at ASC`

// PostgresStoryRepo はPostgreSQLを使用した旅行記リポジトリ。
type PostgresStoryRepo struct {
	db *sql.DB
}

// NewPostgresStoryRepo はPostgresStoryRepoを生成する。
func NewPostgresStoryRepo(db *sql.DB) *PostgresStoryRepo {
	return &PostgresStoryRepo{db: db}
}

// Create は旅行記を作成する。
func (r *PostgresStoryRepo) Create(ctx context.Context, story *model.Story) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO stories (id, owner_id, title, story, visited_location, image_url,
		   visited_date, is_favourite, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		story.ID, story.OwnerID, story.Title, story.Story, story.VisitedLocation,
		story.ImageURL, story.VisitedDate, story.IsFavourite, story.CreatedAt, story.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert story: %w", err)
	}
	return nil
}

// FindByOwnerAndID はオーナーIDと旅行記IDで旅行記を取得する。
// 見つからない場合はnilを返す。
func (r *PostgresStoryRepo) FindByOwnerAndID(ctx context.Context, ownerID, storyID string) (*model.Story, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+storyColumns+` FROM stories WHERE id = $1 AND owner_id = $2`,
		storyID, ownerID,
	)

	story, err := scanStory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find story: %w", err)
	}
	return story, nil
}

// ListByOwner はオーナーの旅行記一覧をお気に入り優先で返す。
func (r *PostgresStoryRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.Story, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+storyColumns+` FROM stories WHERE owner_id = $1`+favouritesFirst,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	defer rows.Close()

	return collectStories(rows)
}

// Update は旅行記の全更新可能フィールドを上書きする。
// owner_idは不変のためWHERE句の条件としてのみ使用する。
func (r *PostgresStoryRepo) Update(ctx context.Context, story *model.Story) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE stories
		 SET title = $1, story = $2, visited_location = $3, image_url = $4,
		     visited_date = $5, is_favourite = $6, updated_at = $7
		 WHERE id = $8 AND owner_id = $9`,
		story.Title, story.Story, story.VisitedLocation, story.ImageURL,
		story.VisitedDate, story.IsFavourite, story.UpdatedAt,
		story.ID, story.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update story: %w", err)
	}
	return nil
}

// Delete はオーナーIDと旅行記IDで旅行記を削除する。
// 削除された場合はtrueを、該当行が存在しない場合はfalseを返す。
func (r *PostgresStoryRepo) Delete(ctx context.Context, ownerID, storyID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM stories WHERE id = $1 AND owner_id = $2`,
		storyID, ownerID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete story: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// Search はタイトル・本文・訪問地のいずれかにqueryを部分一致で含む
// オーナーの旅行記をお気に入り優先で返す。ILIKEで大文字小文字を無視する。
func (r *PostgresStoryRepo) Search(ctx context.Context, ownerID, query string) ([]*model.Story, error) {
	pattern := "%" + escapeLikePattern(query) + "%"
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+storyColumns+` FROM stories
		 WHERE owner_id = $1
		   AND (title ILIKE $2 OR story ILIKE $2 OR visited_location ILIKE $2)`+favouritesFirst,
		ownerID, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search stories: %w", err)
	}
	defer rows.Close()

	return collectStories(rows)
}

// FilterByDateRange は訪問日がstartからend（両端含む）のオーナーの旅行記を
// お気に入り優先で返す。start > end のときは空の結果になる。
func (r *PostgresStoryRepo) FilterByDateRange(ctx context.Context, ownerID string, start, end time.Time) ([]*model.Story, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+storyColumns+` FROM stories
		 WHERE owner_id = $1 AND visited_date >= $2 AND visited_date <= $3`+favouritesFirst,
		ownerID, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to filter stories by date range: %w", err)
	}
	defer rows.Close()

	return collectStories(rows)
}

// rowScanner はsql.Rowとsql.Rowsの共通Scanインターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

// scanStory は1行をmodel.Storyに読み取る。
func scanStory(row rowScanner) (*model.Story, error) {
	story := &model.Story{}
	err := row.Scan(
		&story.ID, &story.OwnerID, &story.Title, &story.Story, &story.VisitedLocation,
		&story.ImageURL, &story.VisitedDate, &story.IsFavourite, &story.CreatedAt, &story.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return story, nil
}

// collectStories は結果セット全体をスライスに読み取る。
func collectStories(rows *sql.Rows) ([]*model.Story, error) {
	stories := []*model.Story{}
	for rows.Next() {
		story, err := scanStory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan story: %w", err)
		}
		stories = append(stories, story)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stories: %w", err)
	}
	return stories, nil
}

// escapeLikePattern はLIKE/ILIKEのワイルドカード文字をエスケープする。
// 検索語は常にリテラルの部分文字列として扱う。
func escapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// compile-time interface check
var _ StoryRepository = (*PostgresStoryRepo)(nil)
