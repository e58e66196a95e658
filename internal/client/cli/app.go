package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hitoshi/tabilog/internal/client"
)

// App はCLIの状態とコマンド処理を保持する。
type App struct {
	api    *client.Client
	reader *bufio.Reader
	out    io.Writer
}

// NewApp はAppを生成する。
func NewApp(api *client.Client, in io.Reader, out io.Writer) *App {
	return &App{
		api:    api,
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// Run は標準入力からコマンドを読み取るREPLを起動する。
func (a *App) Run(ctx context.Context) {
	runREPL(ctx, a, bufio.NewScanner(os.Stdin), a.out)
}

func (a *App) isLoggedIn() bool {
	return a.api.Token() != ""
}

// Register はアカウント作成を対話的に行う。
func (a *App) Register(ctx context.Context) error {
	fullName, err := promptLine(a.reader, a.out, "Full name")
	if err != nil {
		return err
	}
	email, err := promptLine(a.reader, a.out, "Email")
	if err != nil {
		return err
	}
	password, err := promptPassword(a.out, "Password")
	if err != nil {
		return err
	}

	result, err := a.api.Register(ctx, fullName, email, password)
	if err != nil {
		fmt.Fprintln(a.out, "Registration failed:", err)
		return err
	}

	fmt.Fprintf(a.out, "Welcome, %s!\n", result.User.FullName)
	return nil
}

// Login はログインを対話的に行う。
func (a *App) Login(ctx context.Context) error {
	email, err := promptLine(a.reader, a.out, "Email")
	if err != nil {
		return err
	}
	password, err := promptPassword(a.out, "Password")
	if err != nil {
		return err
	}

	result, err := a.api.Login(ctx, email, password)
	if err != nil {
		fmt.Fprintln(a.out, "Login failed:", err)
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s\n", result.User.Email)
	return nil
}

// WhoAmI は現在のユーザー情報を表示する。
func (a *App) WhoAmI(ctx context.Context) error {
	user, err := a.api.GetUser(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Failed to fetch user:", err)
		return err
	}
	fmt.Fprintf(a.out, "%s <%s>\n", user.FullName, user.Email)
	return nil
}

// AddStory は旅行記の作成を対話的に行う。
func (a *App) AddStory(ctx context.Context) error {
	in, err := a.promptStoryInput()
	if err != nil {
		return err
	}

	story, err := a.api.AddStory(ctx, in)
	if err != nil {
		fmt.Fprintln(a.out, "Failed to add story:", err)
		return err
	}

	fmt.Fprintf(a.out, "Added story %s\n", story.ID)
	return nil
}

// ListStories は旅行記の一覧を表示する。
func (a *App) ListStories(ctx context.Context) error {
	stories, err := a.api.ListStories(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Failed to list stories:", err)
		return err
	}
	a.printStories(stories)
	return nil
}

// EditStory は旅行記の編集を対話的に行う。
func (a *App) EditStory(ctx context.Context) error {
	storyID, err := promptLine(a.reader, a.out, "Story ID")
	if err != nil {
		return err
	}
	in, err := a.promptStoryInput()
	if err != nil {
		return err
	}

	story, err := a.api.EditStory(ctx, storyID, in)
	if err != nil {
		fmt.Fprintln(a.out, "Failed to edit story:", err)
		return err
	}

	fmt.Fprintf(a.out, "Updated story %s\n", story.ID)
	return nil
}

// DeleteStory は旅行記の削除を対話的に行う。
func (a *App) DeleteStory(ctx context.Context) error {
	storyID, err := promptLine(a.reader, a.out, "Story ID")
	if err != nil {
		return err
	}

	if err := a.api.DeleteStory(ctx, storyID); err != nil {
		fmt.Fprintln(a.out, "Failed to delete story:", err)
		return err
	}

	fmt.Fprintln(a.out, "Story deleted")
	return nil
}

// ToggleFavourite はお気に入りフラグの設定を対話的に行う。
func (a *App) ToggleFavourite(ctx context.Context) error {
	storyID, err := promptLine(a.reader, a.out, "Story ID")
	if err != nil {
		return err
	}
	answer, err := promptLine(a.reader, a.out, "Favourite? (y/n)")
	if err != nil {
		return err
	}

	story, err := a.api.SetFavourite(ctx, storyID, answer == "y" || answer == "yes")
	if err != nil {
		fmt.Fprintln(a.out, "Failed to update favourite:", err)
		return err
	}

	fmt.Fprintf(a.out, "Story %s favourite = %v\n", story.ID, story.IsFavourite)
	return nil
}

// SearchStories はキーワード検索を対話的に行う。
func (a *App) SearchStories(ctx context.Context) error {
	query, err := promptLine(a.reader, a.out, "Query")
	if err != nil {
		return err
	}

	stories, err := a.api.Search(ctx, query)
	if err != nil {
		fmt.Fprintln(a.out, "Search failed:", err)
		return err
	}
	a.printStories(stories)
	return nil
}

// FilterStories は訪問日範囲での絞り込みを対話的に行う。
func (a *App) FilterStories(ctx context.Context) error {
	startStr, err := promptLine(a.reader, a.out, "Start date (YYYY-MM-DD)")
	if err != nil {
		return err
	}
	endStr, err := promptLine(a.reader, a.out, "End date (YYYY-MM-DD)")
	if err != nil {
		return err
	}

	start, err := parseDate(startStr)
	if err != nil {
		fmt.Fprintln(a.out, err)
		return err
	}
	end, err := parseDate(endStr)
	if err != nil {
		fmt.Fprintln(a.out, err)
		return err
	}

	stories, err := a.api.FilterByDateRange(ctx, start, end)
	if err != nil {
		fmt.Fprintln(a.out, "Filter failed:", err)
		return err
	}
	a.printStories(stories)
	return nil
}

// UploadImage はローカル画像のアップロードを対話的に行う。
func (a *App) UploadImage(ctx context.Context) error {
	path, err := promptLine(a.reader, a.out, "Image file path")
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintln(a.out, "Failed to open file:", err)
		return err
	}
	defer f.Close()

	imageURL, err := a.api.UploadImage(ctx, path, f)
	if err != nil {
		fmt.Fprintln(a.out, "Upload failed:", err)
		return err
	}

	fmt.Fprintln(a.out, "Uploaded:", imageURL)
	return nil
}

// ImportImage はリモートURLからの画像取り込みを対話的に行う。
func (a *App) ImportImage(ctx context.Context) error {
	remoteURL, err := promptLine(a.reader, a.out, "Image URL")
	if err != nil {
		return err
	}

	imageURL, err := a.api.ImportImage(ctx, remoteURL)
	if err != nil {
		fmt.Fprintln(a.out, "Import failed:", err)
		return err
	}

	fmt.Fprintln(a.out, "Imported:", imageURL)
	return nil
}

// Logout は保持トークンを破棄する。
func (a *App) Logout(ctx context.Context) error {
	a.api.ClearToken()
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// promptStoryInput は旅行記の入力フィールドを対話的に集める。
func (a *App) promptStoryInput() (client.StoryInput, error) {
	var in client.StoryInput

	title, err := promptLine(a.reader, a.out, "Title")
	if err != nil {
		return in, err
	}
	narrative, err := promptLine(a.reader, a.out, "Story")
	if err != nil {
		return in, err
	}
	location, err := promptLine(a.reader, a.out, "Visited location")
	if err != nil {
		return in, err
	}
	imageURL, err := promptLine(a.reader, a.out, "Image URL")
	if err != nil {
		return in, err
	}
	dateStr, err := promptLine(a.reader, a.out, "Visited date (YYYY-MM-DD)")
	if err != nil {
		return in, err
	}
	visited, err := parseDate(dateStr)
	if err != nil {
		fmt.Fprintln(a.out, err)
		return in, err
	}

	in.Title = title
	in.Story = narrative
	in.VisitedLocation = location
	in.ImageURL = imageURL
	in.VisitedDate = visited
	return in, nil
}

func (a *App) printStories(stories []client.Story) {
	if len(stories) == 0 {
		fmt.Fprintln(a.out, "No stories found")
		return
	}
	for _, s := range stories {
		marker := " "
		if s.IsFavourite {
			marker = "*"
		}
		fmt.Fprintf(a.out, "%s %s  %s  %s (%s)\n",
			marker, s.ID, s.VisitedDate.Format("2006-01-02"), s.Title, s.VisitedLocation)
	}
}
