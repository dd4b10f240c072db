package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/soaringjerry/Informa/internal/api"
	"github.com/soaringjerry/Informa/internal/catalog"
	"github.com/soaringjerry/Informa/internal/config"
	dbstore "github.com/soaringjerry/Informa/internal/db"
	"github.com/soaringjerry/Informa/internal/logger"
	"github.com/soaringjerry/Informa/internal/middleware"
	"github.com/soaringjerry/Informa/internal/services"
	"github.com/soaringjerry/Informa/internal/utils"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// newBaseRouter installs the middleware chain. Recovery sits inside the
// request logger so a recovered panic is still logged as a 500.
func newBaseRouter(log *logger.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.CORS)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.NoStore)
	r.Use(middleware.LocaleMiddleware)
	return r
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatal("load catalog", "path", cfg.CatalogPath, "error", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatal("load timezone", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store api.Store
	if strings.EqualFold(cfg.DBDriver, "memory") {
		log.Warn("using in-memory store; submissions are lost on restart")
		store = api.NewMemoryStore()
	} else {
		sqlStore, err := dbstore.Open(ctx, cfg, log)
		if err != nil {
			log.Fatal("open database", "driver", cfg.DBDriver, "error", err)
		}
		defer sqlStore.Close()
		log.Info("using sql store", "driver", sqlStore.Driver())
		store = sqlStore
	}

	surveys := services.NewSurveyService(store, cat, log)
	exports := services.NewExportService(store, cat, loc, log)

	if err := ImportLegacyIfNeeded(ctx, cfg.LegacyLogPath, surveys, log); err != nil {
		log.Fatal("legacy import", "path", cfg.LegacyLogPath, "error", err)
	}

	r := newBaseRouter(log)
	api.NewRouter(surveys, exports, log).Register(r)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		locale := middleware.LocaleFromContext(r.Context())
		status, ok := http.StatusOK, true
		if p, isPinger := store.(pinger); isPinger {
			pctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := p.Ping(pctx); err != nil {
				log.Error("health ping failed", "error", err)
				status, ok = http.StatusServiceUnavailable, false
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":         ok,
			"name":       "Informa API",
			"locale":     locale,
			"msg":        utils.T(locale, "health.ok"),
			"catalog":    map[string]int{"reports": len(cat.Reports), "pages": cat.PageCount()},
			"commit":     cfg.Commit,
			"build_time": cfg.BuildTime,
		})
	})
	r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"commit":     cfg.Commit,
			"build_time": cfg.BuildTime,
		})
	})

	// The survey frontend, when bundled into the image.
	if cfg.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown", "error", err)
		}
	}()

	log.Info("Informa server listening", "addr", cfg.Addr, "timezone", loc.String(), "catalog_pages", cat.PageCount())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server error", "error", err)
	}
}
