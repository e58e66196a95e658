package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/tabilog/internal/metrics"
	"github.com/hitoshi/tabilog/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger *slog.Logger

	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	CORSAllowedOrigin string

	// メトリクス
	Metrics  metrics.MetricsCollector
	Gatherer prometheus.Gatherer

	// サービス
	AuthService  AuthServiceInterface
	StoryService StoryServiceInterface
	MediaService MediaServiceInterface

	// 静的ファイル配信
	UploadDir     string
	AssetsDir     string
	UploadMaxSize int64
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Metrics → Logging → (Auth)
//
// 認証ミドルウェアは旅行記とユーザー情報のルートにのみ適用する。
// 画像アップロード・削除ルートは認証の外に置く。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))

	authHandler := NewAuthHandler(deps.AuthService)
	storyHandler := NewStoryHandler(deps.StoryService, deps.Metrics)
	mediaHandler := NewMediaHandler(deps.MediaService, deps.Metrics, deps.UploadMaxSize)

	// --- 認証不要のルート ---

	r.Post("/create-account", authHandler.CreateAccount)
	r.Post("/login", authHandler.Login)

	r.Post("/image-upload", mediaHandler.UploadImage)
	r.Delete("/delete-image", mediaHandler.DeleteImage)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler(deps.Gatherer))

	// 静的ファイル配信
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(deps.UploadDir))))
	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.Dir(deps.AssetsDir))))

	// --- 認証が必要なルート ---

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier, deps.Metrics))

		r.Get("/get-user", authHandler.GetUser)

		r.Post("/add-travel-story", storyHandler.AddStory)
		r.Get("/get-all-stories", storyHandler.GetAllStories)
		r.Put("/edit-story/{id}", storyHandler.EditStory)
		r.Delete("/delete-story/{id}", storyHandler.DeleteStory)
		r.Put("/update-is-favourite/{id}", storyHandler.UpdateIsFavourite)
		r.Get("/search", storyHandler.SearchStories)
		r.Get("/travel-stories/filter", storyHandler.FilterStories)

		r.Post("/image-import", mediaHandler.ImportImage)
	})

	return r
}
