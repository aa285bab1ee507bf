package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/davidcallanan/wordle/assets"
	"github.com/davidcallanan/wordle/internal/auth"
	"github.com/davidcallanan/wordle/internal/config"
	"github.com/davidcallanan/wordle/internal/db"
	"github.com/davidcallanan/wordle/internal/game"
	"github.com/davidcallanan/wordle/internal/httpserver"
	"github.com/davidcallanan/wordle/internal/store"
	"github.com/davidcallanan/wordle/internal/words"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	list, err := words.Load(words.Options{AnswersFile: cfg.AnswersFile, AllowedFile: cfg.AllowedFile, Size: cfg.WordSize})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word lists")
	}
	answers, allowed := list.Stats()
	log.Info().Int("answers", answers).Int("allowed", allowed).Int("size", list.Size()).Msg("word lists loaded")

	factory, err := game.NewFactory(list.Answers(), cfg.MaxAttempts, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create session factory")
	}

	conn, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
	}
	defer conn.Close()
	if err := db.Migrate(conn, assets.Migrations()); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	st := newStore(cfg.Store, conn)
	srv := httpserver.New(httpserver.Deps{
		Config:  cfg,
		Store:   st,
		Words:   list,
		Factory: factory,
		Users:   auth.NewUsers(conn),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpSrv := &http.Server{Addr: ":" + cfg.Port, Handler: srv, ReadHeaderTimeout: 5 * time.Second}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store).Msg("starting go-server")
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		sweep(ctx, st, cfg.SweepInterval, cfg.SessionTTL)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

func newStore(kind string, conn *sql.DB) store.Store {
	switch kind {
	case "memory":
		return store.NewMemoryStore()
	case "sqlite":
		return store.NewSQLiteStore(conn)
	default:
		log.Warn().Str("store", kind).Msg("unknown STORE, using sqlite")
		return store.NewSQLiteStore(conn)
	}
}

// sweep drops finished and idle rounds every interval until ctx is done.
func sweep(ctx context.Context, st store.Store, every, ttl time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := st.Sweep(ctx, now.Add(-ttl))
			if err != nil {
				log.Warn().Err(err).Msg("sweep sessions")
				continue
			}
			if n > 0 {
				log.Debug().Int("removed", n).Msg("swept sessions")
			}
		}
	}
}
