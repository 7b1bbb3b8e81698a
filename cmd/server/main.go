package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/matchforge/swiss-engine/internal/api"
	"github.com/matchforge/swiss-engine/internal/config"
	"github.com/matchforge/swiss-engine/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("storage: open: %v", err)
	}
	defer db.Close()

	store := storage.New(db)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatalf("storage: ensure schema: %v", err)
	}
	cancel()

	a := api.NewAPI(store, cfg)
	if restored, err := store.Load(context.Background()); err != nil {
		log.Printf("storage: load on boot failed, starting empty: %v", err)
	} else if restored != nil {
		a.Manager.T = restored
		log.Printf("restored tournament snapshot, current round %d", restored.CurrentRound)
	}

	router := api.NewRouter(a)
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server: forced shutdown: %v", err)
	}
	log.Println("server stopped")
}
