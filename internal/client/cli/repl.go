package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// commandSurface はREPLが必要とする最小のコマンドインターフェース。
// 実体はAppが満たす。テストでは軽量なスタブを渡す。
type commandSurface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	AddStory(ctx context.Context) error
	ListStories(ctx context.Context) error
	EditStory(ctx context.Context) error
	DeleteStory(ctx context.Context) error
	ToggleFavourite(ctx context.Context) error
	SearchStories(ctx context.Context) error
	FilterStories(ctx context.Context) error
	UploadImage(ctx context.Context) error
	ImportImage(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL は対話ループを実行する。
// 1行読み取り、先頭トークンをコマンドとして対応するメソッドに振り分ける。
// EOFまたはexit/quitで終了する。
// コマンドハンドラーのエラーはハンドラー自身が表示するため、ここでは無視する。
func runREPL(ctx context.Context, a commandSurface, scanner *bufio.Scanner, w io.Writer) {
	for {
		status := "not logged in"
		if a.isLoggedIn() {
			status = "logged in"
		}
		fmt.Fprintf(w, "tabilog (%s)> ", status)

		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, "Commands: whoami, add, list, edit, delete, favourite, search, filter, upload, import, logout, exit")
			} else {
				fmt.Fprintln(w, "Commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "add":
			_ = a.AddStory(ctx)

		case "l", "list":
			_ = a.ListStories(ctx)

		case "edit":
			_ = a.EditStory(ctx)

		case "delete":
			_ = a.DeleteStory(ctx)

		case "favourite", "fav":
			_ = a.ToggleFavourite(ctx)

		case "search":
			_ = a.SearchStories(ctx)

		case "filter":
			_ = a.FilterStories(ctx)

		case "upload":
			_ = a.UploadImage(ctx)

		case "import":
			_ = a.ImportImage(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", parts[0])
		}
	}
}
