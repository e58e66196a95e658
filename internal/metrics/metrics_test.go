package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TestNewCollector_RegistersMetrics はコレクターの生成とレジストリ登録を検証する。
func TestNewCollector_RegistersMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	if c == nil {
		t.Fatal("expected non-nil collector")
	}
}

// TestCollector_RecordsWithoutPanic は各記録メソッドがパニックしないことを検証する。
func TestCollector_RecordsWithoutPanic(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(404)
	c.RecordRequestLatency(15 * time.Millisecond)
	c.RecordUpload()
	c.RecordImageImport(true)
	c.RecordImageImport(false)
	c.RecordStoryCreated()
	c.RecordAuthFailure()
}

// TestHandler_ServesMetrics はハンドラーが記録済みメトリクスを返すことを検証する。
func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordUpload()
	c.RecordHTTPStatus(201)

	handler := Handler(reg)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	bodyStr := string(body)

	if !strings.Contains(bodyStr, "tabilog_image_uploads_total") {
		t.Error("response should contain tabilog_image_uploads_total metric")
	}
	if !strings.Contains(bodyStr, `tabilog_http_status_total{status_code="201"}`) {
		t.Error("response should contain tabilog_http_status_total for 201")
	}
}

// コンパイル時インターフェースチェック
var _ MetricsCollector = (*Collector)(nil)
