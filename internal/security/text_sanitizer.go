// Package security はアプリケーションのセキュリティ機能を提供する。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizerService はユーザー入力テキストのサニタイズ機能のインターフェースを定義する。
// 旅行記のタイトル・本文・訪問地は平文フィールドであり、保存前にHTMLを全て除去する。
type TextSanitizerService interface {
	// Sanitize は入力からHTMLタグを全て除去した平文を返す。
	// script等の危険なタグだけでなく、あらゆるマークアップを許可しない。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(input string) string
}

// textSanitizer はTextSanitizerServiceの実装。
// bluemondayのStrictPolicyを保持し、スレッドセーフにサニタイズ処理を行う。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyは許可タグを一切持たないため、全てのマークアップが除去される。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は入力からHTMLタグを全て除去した平文を返す。
// bluemondayはタグ除去後にエンティティをエスケープするため、
// "Tom & Jerry" のような平文を保存値として保つにはアンエスケープが必要。
func (s *textSanitizer) Sanitize(input string) string {
	stripped := s.policy.Sanitize(input)
	return strings.TrimSpace(html.UnescapeString(stripped))
}
