// Package model はドメインモデルを定義する。
package model

import "time"

// Story は旅行記エントリを表す。
// OwnerIDは作成時に設定され、以後変更されない。
// 全ての読み書きはOwnerIDが一致するユーザーに限定される。
type Story struct {
	ID              string
	OwnerID         string
	Title           string
	Story           string
	VisitedLocation string
	ImageURL        string
	VisitedDate     time.Time
	IsFavourite     bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// DateFromMillis はエポックミリ秒を日付値に変換する。
// 訪問日は日付のみのセマンティクスを持つため、UTCで日単位に切り捨てる。
func DateFromMillis(millis int64) time.Time {
	return time.UnixMilli(millis).UTC().Truncate(24 * time.Hour)
}
