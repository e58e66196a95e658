// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ミドルウェアやハンドラー層から利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
	RecordUpload()
	RecordImageImport(success bool)
	RecordStoryCreated()
	RecordAuthFailure()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
	uploads        prometheus.Counter
	imageImports   *prometheus.CounterVec
	storiesCreated prometheus.Counter
	authFailures   prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tabilog_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tabilog_request_latency_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		uploads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tabilog_image_uploads_total",
			Help: "画像アップロード成功の合計数",
		}),
		imageImports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tabilog_image_imports_total",
			Help: "リモート画像取り込みの結果別の合計数",
		}, []string{"result"}),
		storiesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tabilog_stories_created_total",
			Help: "作成された旅行記の合計数",
		}),
		authFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tabilog_auth_failures_total",
			Help: "認証失敗の合計数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestLatency,
		c.uploads,
		c.imageImports,
		c.storiesCreated,
		c.authFailures,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordUpload は画像アップロード成功を記録する。
func (c *Collector) RecordUpload() {
	c.uploads.Inc()
}

// RecordImageImport はリモート画像取り込みの結果を記録する。
func (c *Collector) RecordImageImport(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	c.imageImports.WithLabelValues(result).Inc()
}

// RecordStoryCreated は旅行記の作成を記録する。
func (c *Collector) RecordStoryCreated() {
	c.storiesCreated.Inc()
}

// RecordAuthFailure は認証失敗を記録する。
func (c *Collector) RecordAuthFailure() {
	c.authFailures.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
