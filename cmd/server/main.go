package main

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Nikhil2261/iot-backend/internal/accounts"
	"github.com/Nikhil2261/iot-backend/internal/provisioning"
	"github.com/Nikhil2261/iot-backend/internal/registry"
	"github.com/Nikhil2261/iot-backend/internal/store"
	"github.com/Nikhil2261/iot-backend/internal/syncengine"
	"github.com/Nikhil2261/iot-backend/pkg/db"
)

func main() {
	pool := db.MustConnect()

	jwtSecret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if jwtSecret == "" {
		panic("JWT_SECRET is required")
	}
	port := strings.TrimSpace(os.Getenv("SERVICE_PORT"))
	if port == "" {
		port = "5000"
	}
	provTTL := time.Duration(envIntDefault("PROVISION_TTL_MINUTES", 10)) * time.Minute
	storeTimeout := time.Duration(envIntDefault("STORE_TIMEOUT_MS", 5000)) * time.Millisecond
	firmwareDir := strings.TrimSpace(os.Getenv("FIRMWARE_DIR"))

	st := store.New(pool, storeTimeout)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := st.EnsureSchema(ctx); err != nil {
		panic(err)
	}
	cancel()

	accountsSvc := accounts.New(st, []byte(jwtSecret))
	reg := registry.New(st)
	prov := provisioning.New(st, provTTL)
	engine := syncengine.New(st)

	r := newRouter(accountsSvc, prov, reg, engine, firmwareDir)
	http.ListenAndServe(":"+port, r)
}

func newRouter(accountsSvc *accounts.Service, prov *provisioning.Manager, reg *registry.Registry, engine *syncengine.Engine, firmwareDir string) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	registerAccountRoutes(r, accountsSvc)
	registerDeviceRoutes(r, prov, reg, engine)

	r.Group(func(pr chi.Router) {
		pr.Use(sessionAuth(accountsSvc))
		registerAppRoutes(pr, prov, reg, engine)
	})

	if firmwareDir != "" {
		r.Handle("/firmware/*", http.StripPrefix("/firmware/", http.FileServer(http.Dir(firmwareDir))))
		r.Get("/version.json", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, filepath.Join(firmwareDir, "version.json"))
		})
	}
	return r
}

func envIntDefault(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}
