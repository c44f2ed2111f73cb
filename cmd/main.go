// 程序入口：读取配置、初始化依赖并启动切分服务；路由注册在 internal/api
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"polysplit/internal/api"
	"polysplit/internal/logger"
	"polysplit/internal/metrics"
	"polysplit/internal/middleware"
	"polysplit/internal/migrate"
	"polysplit/internal/partition"
	"polysplit/internal/results"
	"polysplit/internal/service"
	"polysplit/internal/store"
	"polysplit/internal/utils"
	"polysplit/internal/version"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if s := os.Getenv(k); s != "" {
		if n, e := strconv.Atoi(s); e == nil && n > 0 {
			return n
		}
	}
	return def
}

func envFloat(k string, def float64) float64 {
	if s := os.Getenv(k); s != "" {
		if f, e := strconv.ParseFloat(s, 64); e == nil && f > 0 {
			return f
		}
	}
	return def
}

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()
	l.Debug("log_init_ok", "commit", version.Commit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	apiBase := envOr("API_BASE", "/api")
	ui := envOr("UI_DIST", filepath.Join("ui", "dist"))
	dataDir := envOr("DATA_DIR", filepath.Join("data", "processed"))
	l.Debug("config_paths", "base", apiBase, "ui", ui, "data", dataDir)

	var st *store.Store
	if utils.PostgresEnabled() {
		db, err := utils.OpenPostgresFromEnv()
		if err != nil {
			l.Error("db_open_error", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			l.Error("db_ping_error", "err", err)
		} else {
			l.Info("db_ping_ok")
		}
		if err := migrate.EnsureSchema(ctx, db); err != nil {
			l.Error("schema_error", "err", err)
			os.Exit(1)
		}
		st = store.AttachDB(db)
	} else {
		l.Info("db_disabled")
	}

	var rc *redis.Client
	if rc = utils.OpenRedisFromEnv(); rc == nil {
		l.Info("redis_disabled")
	} else {
		defer rc.Close()
		if err := rc.Ping(ctx).Err(); err != nil {
			l.Error("redis_ping_error", "err", err)
		} else {
			l.Info("redis_ping_ok")
		}
	}

	dir, err := results.Open(dataDir)
	if err != nil {
		l.Error("results_dir_error", "dir", dataDir, "err", err)
		os.Exit(1)
	}
	ttl := time.Duration(envInt("RESULT_TTL_MIN", 60)) * time.Minute
	dir.StartJanitor(ctx, ttl, ttl/4+time.Minute)

	opts := partition.DefaultOptions()
	opts.Steps = envInt("SPLIT_STEPS", opts.Steps)
	opts.Tolerance = envFloat("SPLIT_TOLERANCE", opts.Tolerance)
	opts.MaxPieces = envInt("SPLIT_MAX_PIECES", opts.MaxPieces)
	sp := service.New(service.Config{
		Options:    opts,
		Workers:    envInt("SPLIT_WORKERS", 4),
		CacheTTL:   time.Duration(envInt("RESULT_CACHE_TTL_S", 3600)) * time.Second,
		MemCache:   envInt("RESULT_MEM_CACHE", 256),
		DefaultCRS: os.Getenv("SPLIT_CRS"),
	}, rc, st, dir)
	l.Debug("config_split", "steps", opts.Steps, "tolerance", opts.Tolerance, "max_pieces", opts.MaxPieces)

	apiMux := api.BuildRoutes(sp, api.Options{
		Base:      apiBase,
		MaxUpload: int64(envInt("MAX_UPLOAD_MB", 32)) << 20,
		Merge:     os.Getenv("SPLIT_MERGE") != "false",
	})
	mux := http.NewServeMux()
	mux.Handle(apiBase+"/", http.StripPrefix(apiBase, apiMux))
	mux.Handle(apiBase+"/metrics", metrics.Handler())
	mux.Handle("/", http.FileServer(http.Dir(ui)))
	// NOTE: 向前端暴露 API 基础路径，避免硬编码
	mux.HandleFunc("/config.js", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/javascript; charset=utf-8")
		w.Header().Set("cache-control", "no-store")
		_, _ = w.Write([]byte("window.__API_BASE__='" + apiBase + "'\n"))
		_, _ = w.Write([]byte("window.__COMMIT_SHA__='" + version.Commit + "'\n"))
	})

	handler := middleware.Wrap(logger.AccessMiddleware(l)(mux))
	s := &http.Server{
		Addr:              envOr("ADDR", ":8080"),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}()

	if os.Getenv("TLS_ENABLE") == "true" {
		certPath := envOr("TLS_CERT_PATH", filepath.Join("data", "certs", "server.crt"))
		keyPath := envOr("TLS_KEY_PATH", filepath.Join("data", "certs", "server.key"))
		if err := utils.EnsureSelfSignedCert(certPath, keyPath, "polysplit.local"); err != nil {
			l.Error("tls_cert_error", "err", err)
			os.Exit(1)
		}
		l.Info("listening_tls", "addr", s.Addr, "cert", certPath)
		if err := s.ListenAndServeTLS(certPath, keyPath); err != nil && err != http.ErrServerClosed {
			l.Error("server_error", "err", err)
		}
		return
	}
	l.Info("listening", "addr", s.Addr)
	if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		l.Error("server_error", "err", err)
	}
}
