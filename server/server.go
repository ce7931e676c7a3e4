package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"musichub/cache"
	"musichub/config"
	"musichub/core/auth"
	"musichub/db"
	"musichub/logger"
	"musichub/repository"
	"musichub/storage"

	"github.com/gorilla/mux"
)

// Start initializes and starts the HTTP server.
func Start() {
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.LogPath)

	// 设置服务器超时
	server := &http.Server{
		Addr:         cfg.ListenAddr,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 初始化 MinIO 客户端
	if err := storage.InitMinio(cfg); err != nil {
		logger.Fatal("Failed to initialize MinIO", logger.ErrorField(err))
	}
	media := storage.NewMediaStore(cfg)

	// Connect to the database
	if err := db.ConnectDB(cfg); err != nil {
		logger.Fatal("Failed to connect to database", logger.ErrorField(err))
	}
	defer db.DB.Close()

	if err := db.ConnectGormDB(cfg); err != nil {
		logger.Fatal("Failed to connect GORM", logger.ErrorField(err))
	}
	defer db.CloseGormDB()

	// Connect to Redis
	if err := db.ConnectRedis(cfg); err != nil {
		logger.Fatal("Failed to connect to Redis", logger.ErrorField(err))
	}
	defer db.CloseRedis()
	logger.Info("Successfully connected to Redis")

	// Initialize database schema
	if err := db.InitDB(); err != nil {
		logger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}

	userRepo := repository.NewMySQLUserRepository(db.DB)
	songRepo := repository.NewGormSongRepository(db.GormDB)
	playlistRepo := repository.NewMySQLPlaylistRepository(db.DB)
	likeRepo := repository.NewMySQLLikeRepository(db.DB)

	signer := auth.NewTokenSigner(cfg.JWTSecret, time.Duration(cfg.TokenExpiryDay)*24*time.Hour)

	// 初始化处理器
	apiHandler := NewAPIHandler(
		userRepo,
		songRepo,
		playlistRepo,
		likeRepo,
		media,
		cache.NewCatalogCache(),
		cache.NewPlayerStateCache(),
		signer,
		cfg,
	)

	// 使用 gorilla/mux 创建路由器
	router := mux.NewRouter()

	// 添加 CORS 中间件
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Range")
			w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Range")
			w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// 公开目录
	router.HandleFunc("/api/songs", apiHandler.GetSongsHandler).Methods(http.MethodGet)

	// 用户认证相关的API端点
	router.HandleFunc("/api/user/signup", apiHandler.SignupHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/user/login", apiHandler.LoginHandler).Methods(http.MethodPost)

	// 喜欢列表
	router.HandleFunc("/api/user/likes", apiHandler.AuthMiddleware(apiHandler.GetLikedSongsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/user/like/{songId}", apiHandler.AuthMiddleware(apiHandler.ToggleLikeHandler)).Methods(http.MethodPost)

	// 歌单相关的API端点
	router.HandleFunc("/api/user/playlists", apiHandler.AuthMiddleware(apiHandler.GetPlaylistsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/user/playlists", apiHandler.AuthMiddleware(apiHandler.CreatePlaylistHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/user/playlists/{playlistId}", apiHandler.AuthMiddleware(apiHandler.DeletePlaylistHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/user/playlists/{playlistId}/songs/{songId}", apiHandler.AuthMiddleware(apiHandler.AddSongToPlaylistHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/user/playlists/{playlistId}/songs/{songId}", apiHandler.AuthMiddleware(apiHandler.RemoveSongFromPlaylistHandler)).Methods(http.MethodDelete)

	// 播放状态
	router.HandleFunc("/api/player/state", apiHandler.AuthMiddleware(apiHandler.GetPlayerStateHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/player/state", apiHandler.AuthMiddleware(apiHandler.SavePlayerStateHandler)).Methods(http.MethodPut)
	router.HandleFunc("/ws/player", apiHandler.PlayerSessionHandler).Methods(http.MethodGet)

	// 管理端API端点
	router.HandleFunc("/api/admin/signup", apiHandler.AdminSignupHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/admin/login", apiHandler.AdminLoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/admin/songs", apiHandler.AdminMiddleware(apiHandler.UploadSongHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/admin/songs", apiHandler.AdminMiddleware(apiHandler.ListAllSongsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/admin/songs/{songId}", apiHandler.AdminMiddleware(apiHandler.DeleteSongHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/admin/users", apiHandler.AdminMiddleware(apiHandler.ListUsersHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/admin/users/{userId}", apiHandler.AdminMiddleware(apiHandler.DeleteUserHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/admin/storage", apiHandler.AdminMiddleware(apiHandler.StorageStatsHandler)).Methods(http.MethodGet)

	server.Handler = router

	// 创建一个通道来接收操作系统信号
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// 在goroutine中启动服务器
	go func() {
		logger.Info("Server starting", logger.String("addr", cfg.ListenAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", logger.ErrorField(err))
		}
	}()

	// 等待中断信号
	<-stop
	logger.Info("Shutting down server...")

	// 创建一个5秒超时的上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 优雅关闭服务器
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("Server stopped")
}
