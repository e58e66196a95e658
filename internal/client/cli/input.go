// Package cli は旅行記APIの対話型コマンドラインクライアントを提供する。
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

// readPassword はterm.ReadPasswordのテストシーム。
// テストでは端末に触れないスタブに差し替える。
var readPassword = term.ReadPassword

// promptLine はプロンプトを表示して1行の入力を読み取る。
// 末尾の改行は取り除く。入力途中でEOFに達した場合は読めた分を返す。
func promptLine(reader *bufio.Reader, w io.Writer, prompt string) (string, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword はエコーなしでパスワードを読み取る。
func promptPassword(w io.Writer, prompt string) (string, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return "", err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// parseDate はYYYY-MM-DD形式の日付をエポックミリ秒に変換する。
func parseDate(s string) (int64, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
	}
	return t.UTC().UnixMilli(), nil
}
