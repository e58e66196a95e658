// Package media は画像のアップロード・配信・削除のドメインロジックを提供する。
package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DiskStore はローカルファイルシステム上の画像ストア。
// ファイル名は衝突を避けるためタイムスタンプとランダムIDから生成する。
type DiskStore struct {
	baseDir string
}

// NewDiskStore はDiskStoreを生成し、保存先ディレクトリを作成する。
func NewDiskStore(baseDir string) (*DiskStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &DiskStore{baseDir: baseDir}, nil
}

// Save はリーダーの内容を新規ファイルに保存し、生成したファイル名を返す。
// 拡張子は元のファイル名から引き継ぐ。
func (s *DiskStore) Save(r io.Reader, originalName string) (string, error) {
	name := generateFilename(originalName)

	f, err := os.Create(filepath.Join(s.baseDir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		// 書き込み失敗時は部分ファイルを残さない
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return name, nil
}

// Exists は指定ファイル名のファイルがストアに存在するかを返す。
func (s *DiskStore) Exists(filename string) bool {
	info, err := os.Stat(filepath.Join(s.baseDir, filename))
	return err == nil && !info.IsDir()
}

// Remove は指定ファイル名のファイルを削除する。
func (s *DiskStore) Remove(filename string) error {
	if err := os.Remove(filepath.Join(s.baseDir, filename)); err != nil {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

// generateFilename は保存用の一意なファイル名を生成する。
// 形式: <エポックミリ秒>-<ランダムID><元の拡張子>
func generateFilename(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)
}
