// Package client は旅行記APIサーバーへのHTTPクライアントを提供する。
// CLIや外部ツールからの利用を想定する。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"time"
)

// APIError はサーバーが返したエラーレスポンスを表す。
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// User は公開可能なユーザー情報。
type User struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// Story は旅行記エントリのクライアント表現。
type Story struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Story           string    `json:"story"`
	VisitedLocation string    `json:"visitedLocation"`
	ImageURL        string    `json:"imageUrl"`
	VisitedDate     time.Time `json:"visitedDate"`
	IsFavourite     bool      `json:"isFavourite"`
	CreatedOn       time.Time `json:"createdOn"`
}

// StoryInput は旅行記の作成・編集の入力。
// VisitedDateはエポックミリ秒。
type StoryInput struct {
	Title           string `json:"title"`
	Story           string `json:"story"`
	VisitedLocation string `json:"visitedLocation"`
	ImageURL        string `json:"imageUrl"`
	VisitedDate     int64  `json:"visitedDate"`
}

// AuthResult は登録・ログインの結果。
type AuthResult struct {
	User        User   `json:"user"`
	AccessToken string `json:"accessToken"`
	Message     string `json:"message"`
}

// Client は旅行記APIのHTTPクライアント。
// トークンを保持し、認証が必要なリクエストに自動で付与する。
// 401を受け取った場合は保持トークンを破棄する。
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// NewClient はClientを生成する。
// httpClientがnilの場合は10秒タイムアウトのデフォルトクライアントを使用する。
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
	}
}

// SetToken はアクセストークンを設定する。
func (c *Client) SetToken(token string) { c.token = token }

// Token は保持中のアクセストークンを返す。
func (c *Client) Token() string { return c.token }

// ClearToken は保持中のアクセストークンを破棄する。
func (c *Client) ClearToken() { c.token = "" }

// Register は新規アカウントを作成し、取得したトークンを保持する。
func (c *Client) Register(ctx context.Context, fullName, email, password string) (*AuthResult, error) {
	body := map[string]string{
		"fullName": fullName,
		"email":    email,
		"password": password,
	}

	var result AuthResult
	if err := c.doJSON(ctx, http.MethodPost, "/create-account", body, &result); err != nil {
		return nil, err
	}

	c.token = result.AccessToken
	return &result, nil
}

// Login は認証を行い、取得したトークンを保持する。
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}

	var result AuthResult
	if err := c.doJSON(ctx, http.MethodPost, "/login", body, &result); err != nil {
		return nil, err
	}

	c.token = result.AccessToken
	return &result, nil
}

// GetUser は認証済みユーザーの情報を取得する。
func (c *Client) GetUser(ctx context.Context) (*User, error) {
	var result struct {
		User User `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/get-user", nil, &result); err != nil {
		return nil, err
	}
	return &result.User, nil
}

// AddStory は新規旅行記を作成する。
func (c *Client) AddStory(ctx context.Context, in StoryInput) (*Story, error) {
	var result struct {
		Story Story `json:"story"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/add-travel-story", in, &result); err != nil {
		return nil, err
	}
	return &result.Story, nil
}

// ListStories は全旅行記をお気に入り優先で取得する。
func (c *Client) ListStories(ctx context.Context) ([]Story, error) {
	var result struct {
		Stories []Story `json:"stories"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/get-all-stories", nil, &result); err != nil {
		return nil, err
	}
	return result.Stories, nil
}

// EditStory は既存旅行記を更新する。
func (c *Client) EditStory(ctx context.Context, storyID string, in StoryInput) (*Story, error) {
	var result struct {
		Story Story `json:"story"`
	}
	if err := c.doJSON(ctx, http.MethodPut, "/edit-story/"+url.PathEscape(storyID), in, &result); err != nil {
		return nil, err
	}
	return &result.Story, nil
}

// DeleteStory は旅行記を削除する。
// サーバーは不存在でも200を返すため、ボディのエラーフラグを検査する。
func (c *Client) DeleteStory(ctx context.Context, storyID string) error {
	var result struct {
		Error   bool   `json:"error"`
		Message string `json:"message"`
	}
	if err := c.doJSON(ctx, http.MethodDelete, "/delete-story/"+url.PathEscape(storyID), nil, &result); err != nil {
		return err
	}
	if result.Error {
		return &APIError{StatusCode: http.StatusOK, Message: result.Message}
	}
	return nil
}

// SetFavourite はお気に入りフラグを設定する。
func (c *Client) SetFavourite(ctx context.Context, storyID string, isFavourite bool) (*Story, error) {
	body := map[string]bool{"isFavourite": isFavourite}

	var result struct {
		Story Story `json:"story"`
	}
	if err := c.doJSON(ctx, http.MethodPut, "/update-is-favourite/"+url.PathEscape(storyID), body, &result); err != nil {
		return nil, err
	}
	return &result.Story, nil
}

// Search はキーワードで旅行記を検索する。
func (c *Client) Search(ctx context.Context, query string) ([]Story, error) {
	var result struct {
		Stories []Story `json:"stories"`
	}
	path := "/search?query=" + url.QueryEscape(query)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Stories, nil
}

// FilterByDateRange は訪問日の範囲（エポックミリ秒、両端含む）で旅行記を絞り込む。
func (c *Client) FilterByDateRange(ctx context.Context, startMillis, endMillis int64) ([]Story, error) {
	var result struct {
		Stories []Story `json:"stories"`
	}
	path := "/travel-stories/filter?startDate=" + strconv.FormatInt(startMillis, 10) +
		"&endDate=" + strconv.FormatInt(endMillis, 10)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Stories, nil
}

// UploadImage は画像をマルチパートフォームでアップロードし、公開URLを返す。
func (c *Client) UploadImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("image", filepath.Base(filename))
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("failed to copy file data: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/image-upload", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var result struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := c.send(req, &result); err != nil {
		return "", err
	}
	return result.ImageURL, nil
}

// DeleteImage は画像ファイルを削除する。
func (c *Client) DeleteImage(ctx context.Context, imageURL string) error {
	var result struct {
		Error   bool   `json:"error"`
		Message string `json:"message"`
	}
	path := "/delete-image?imageUrl=" + url.QueryEscape(imageURL)
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, &result); err != nil {
		return err
	}
	if result.Error {
		return &APIError{StatusCode: http.StatusOK, Message: result.Message}
	}
	return nil
}

// ImportImage はリモートURLから画像をサーバー側で取り込み、公開URLを返す。
func (c *Client) ImportImage(ctx context.Context, remoteURL string) (string, error) {
	body := map[string]string{"url": remoteURL}

	var result struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/image-import", body, &result); err != nil {
		return "", err
	}
	return result.ImageURL, nil
}

// doJSON はJSONボディのリクエストを送信し、レスポンスをoutにデコードする。
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out)
}

// send はリクエストを実行し、エラーレスポンスをAPIErrorに変換する。
// 401を受け取った場合は保持トークンを破棄する。
func (c *Client) send(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.ClearToken()
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errBody struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errBody); err == nil {
			apiErr.Message = errBody.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
