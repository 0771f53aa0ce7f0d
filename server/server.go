// Package server 命令通道：WebSocket 与 HTTP 两种入口共用同一个分发器。
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jdlmedia/cache"
	"jdlmedia/config"
	"jdlmedia/core/apperr"
	"jdlmedia/core/audio"
	"jdlmedia/core/folder"
	"jdlmedia/core/media"
	"jdlmedia/core/playlist"
	"jdlmedia/db"
	"jdlmedia/logger"
	"jdlmedia/model"
	"jdlmedia/repository"
	"jdlmedia/storage"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodySize HTTP 命令请求体上限
const maxBodySize = 1 << 20

// HealthCheck 依赖健康检查
type HealthCheck func(ctx context.Context) error

// Server HTTP 路由与 WebSocket 升级
type Server struct {
	cfg        *config.Config
	dispatcher *Dispatcher
	hub        *Hub
	upgrader   websocket.Upgrader
	checks     map[string]HealthCheck
}

// NewServer 创建服务
func NewServer(cfg *config.Config, dispatcher *Dispatcher, hub *Hub) *Server {
	return &Server{
		cfg:        cfg,
		dispatcher: dispatcher,
		hub:        hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		checks: make(map[string]HealthCheck),
	}
}

// AddHealthCheck 注册 /healthz 检查项
func (s *Server) AddHealthCheck(name string, check HealthCheck) {
	s.checks[name] = check
}

// Router 构建路由
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()

	// 添加 CORS 中间件
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	router.HandleFunc("/ws", s.AuthMiddleware(s.handleWebSocket)).Methods(http.MethodGet)
	router.HandleFunc("/api/commands/{event}", s.AuthMiddleware(s.handleCommand)).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return router
}

// handleCommand 请求体即 data，X-Request-ID 原样带回
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	ownerID, err := OwnerIDFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, Response{Event: EventServerError, Errors: apperr.List{apperr.BadToken}})
		return
	}

	event := mux.Vars(r)["event"]
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Response{
			Event:  OutputEvent(event),
			Errors: apperr.List{apperr.NoDataSent},
		})
		return
	}

	resp := s.dispatcher.Dispatch(r.Context(), ownerID, Request{
		Event:     event,
		RequestID: r.Header.Get("X-Request-ID"),
		Data:      body,
	})
	writeJSON(w, statusCode(resp), resp)
}

// statusCode 响应对应的 HTTP 状态码
func statusCode(resp Response) int {
	switch {
	case resp.Status:
		return http.StatusOK
	case resp.Errors.Has(apperr.Internal.Code):
		return http.StatusInternalServerError
	case resp.Errors.Has(apperr.UnknownEvent.Code):
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ownerID, err := OwnerIDFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, Response{Event: EventServerError, Errors: apperr.List{apperr.BadToken}})
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", logger.Owner(ownerID), logger.ErrorField(err))
		return
	}

	client := NewClient(s.hub, conn, ownerID)
	s.hub.Register(client)

	go client.WritePump()
	// 请求上下文在 handler 返回后结束，连接使用独立的上下文
	go client.ReadPump(context.Background(), s.dispatcher)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	result := make(map[string]string, len(s.checks))
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			result[name] = err.Error()
			continue
		}
		result[name] = "ok"
	}
	writeJSON(w, status, map[string]interface{}{
		"status": status == http.StatusOK,
		"checks": result,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("write response failed", logger.ErrorField(err))
	}
}

// Start 连接依赖、装配服务并启动 HTTP 服务，收到退出信号后优雅关闭
func Start(cfg *config.Config) error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_KEY is not set")
	}

	if err := db.ConnectGormDB(cfg); err != nil {
		return err
	}
	defer db.CloseGormDB()

	if err := db.ConnectRedis(cfg); err != nil {
		return err
	}
	defer db.CloseRedis()

	if err := os.MkdirAll(cfg.StorageDir, 0o755); err != nil {
		return fmt.Errorf("create storage dir %s: %w", cfg.StorageDir, err)
	}
	resolver, err := folder.NewResolver(cfg.StorageDir, cfg.PathCacheSize)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisCache := cache.New(db.RedisClient, cfg.CacheTTL)

	var covers playlist.CoverStore
	coverStore, err := storage.NewCoverStore(cfg)
	if err != nil {
		logger.Warn("cover store disabled", logger.ErrorField(err))
	} else {
		bucketCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := coverStore.EnsureBucket(bucketCtx); err != nil {
			logger.Warn("cover bucket unavailable", logger.String("bucket", coverStore.Bucket()), logger.ErrorField(err))
		}
		cancel()
		covers = coverStore
	}

	folderRepo := repository.NewGormFolderRepository(db.GormDB)
	audioRepo := repository.NewGormAudioRepository(db.GormDB)
	playlistRepo := repository.NewGormPlaylistRepository(db.GormDB)

	folders := folder.NewService(folderRepo, audioRepo, resolver, media.NewProber(cfg.FFprobePath), redisCache, cfg.ProbeConcurrency)
	playlists := playlist.NewService(playlistRepo, audioRepo, model.NewMediaTypeSet(cfg.MediaTypes), redisCache, covers)

	dispatcher := NewDispatcher()
	NewAPIHandler(folders, audio.NewService(audioRepo), playlists).Register(dispatcher)

	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	if cfg.WatchStorage {
		watcher, err := storage.NewWatcher(resolver, redisCache)
		if err != nil {
			logger.Warn("storage watcher disabled", logger.ErrorField(err))
		} else {
			go func() {
				if err := watcher.Run(ctx); err != nil {
					logger.Warn("storage watcher stopped", logger.ErrorField(err))
				}
			}()
		}
	}

	srv := NewServer(cfg, dispatcher, hub)
	srv.AddHealthCheck("mysql", func(ctx context.Context) error {
		sqlDB, err := db.GormDB.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
	srv.AddHealthCheck("redis", func(ctx context.Context) error {
		return db.CheckRedis(ctx, db.RedisClient)
	})

	// 设置服务器超时
	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      srv.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", logger.String("addr", cfg.ListenAddr), logger.String("storage", cfg.StorageDir))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
