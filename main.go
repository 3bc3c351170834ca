package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/valyala/fasthttp"

	"github.com/kravietz/reporter/internal/config"
	"github.com/kravietz/reporter/internal/db"
	"github.com/kravietz/reporter/internal/http/handlers"
	appmw "github.com/kravietz/reporter/internal/http/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	sqlDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	store := db.NewStore(sqlDB, cfg)
	db.StartPingWorker(store)

	handlers.InitPrometheusMetrics()

	r := handlers.NewRouter(store)

	handler := appmw.SecurityHeaders(r.Handler)
	if cfg.Debug {
		handler = handlers.RequestLogger(handler)
	}

	log.Printf("reporter listening on %s", cfg.ListenAddr)
	if err := fasthttp.ListenAndServe(cfg.ListenAddr, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
