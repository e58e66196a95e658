package cli

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
	"time"
)

// TestPromptLine は1行入力の読み取りとトリムを検証する。
func TestPromptLine(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("  Kyoto trip  \n"))
	var out bytes.Buffer

	got, err := promptLine(reader, &out, "Title")
	if err != nil {
		t.Fatalf("promptLine() error = %v", err)
	}
	if got != "Kyoto trip" {
		t.Errorf("got = %q, want %q", got, "Kyoto trip")
	}
	if !strings.Contains(out.String(), "Title: ") {
		t.Errorf("prompt output = %q", out.String())
	}
}

// TestPromptLine_EOFWithPartialInput は改行なしEOFで読めた分が返ることを検証する。
func TestPromptLine_EOFWithPartialInput(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("partial"))
	var out bytes.Buffer

	got, err := promptLine(reader, &out, "Title")
	if err != nil {
		t.Fatalf("promptLine() error = %v", err)
	}
	if got != "partial" {
		t.Errorf("got = %q, want %q", got, "partial")
	}
}

// TestPromptPassword_UsesSeam はreadPasswordシームの差し替えを検証する。
func TestPromptPassword_UsesSeam(t *testing.T) {
	orig := readPassword
	readPassword = func(int) ([]byte, error) { return []byte("secret123"), nil }
	defer func() { readPassword = orig }()

	var out bytes.Buffer
	got, err := promptPassword(&out, "Password")
	if err != nil {
		t.Fatalf("promptPassword() error = %v", err)
	}
	if got != "secret123" {
		t.Errorf("got = %q", got)
	}
}

// TestParseDate は日付文字列のエポックミリ秒変換を検証する。
func TestParseDate(t *testing.T) {
	got, err := parseDate("2024-11-20")
	if err != nil {
		t.Fatalf("parseDate() error = %v", err)
	}
	want := time.Date(2024, 11, 20, 0, 0, 0, 0, time.UTC).UnixMilli()
	if got != want {
		t.Errorf("got = %d, want %d", got, want)
	}

	if _, err := parseDate("20/11/2024"); err == nil {
		t.Error("expected error for invalid format")
	}
}
