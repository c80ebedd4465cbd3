package main

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/NikhilRaikwar/DrawParty/config"
	"github.com/NikhilRaikwar/DrawParty/crypto"
	"github.com/NikhilRaikwar/DrawParty/directory"
	"github.com/NikhilRaikwar/DrawParty/game"
	"github.com/NikhilRaikwar/DrawParty/locker"
	"github.com/NikhilRaikwar/DrawParty/migrations"
	"github.com/NikhilRaikwar/DrawParty/realtime"
	"github.com/NikhilRaikwar/DrawParty/server"
	"github.com/NikhilRaikwar/DrawParty/session"
	"github.com/NikhilRaikwar/DrawParty/storage"
	"github.com/NikhilRaikwar/DrawParty/vault"
	"github.com/NikhilRaikwar/DrawParty/words"
)

const reaperInterval = time.Hour

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("configuration error")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var store storage.Store
	var wordSource game.WordSource

	if cfg.PostgresURL != "" {
		if err := migrations.Migrate(cfg.PostgresURL); err != nil {
			log.Fatal().Err(err).Msg("migrations failed")
		}
		pg, err := storage.NewPostgresStore(context.Background(), cfg.PostgresURL)
		if err != nil {
			log.Fatal().Err(err).Msg("postgres connection failed")
		}
		defer pg.Close()
		store = pg
		wordSource = pg
		log.Info().Msg("using postgres store")
	} else {
		store = storage.NewMemoryStore()
		source, err := words.NewSource(rng)
		if err != nil {
			log.Fatal().Err(err).Msg("loading embedded word lists failed")
		}
		wordSource = source
		log.Warn().Msg("POSTGRES_URL not set, using in-memory store")
	}

	broker := realtime.NewBroker()
	locks := locker.NewKeyed()
	auth := session.NewAuthority(crypto.NewJWTManager(cfg.JWTKey), store)
	v := vault.New(store, store, rng)

	games := game.NewService(store, v, auth, wordSource, broker, locks, rng)
	rooms := directory.New(store, auth, broker, locks, rng)

	reaperCtx, stopReaper := context.WithCancel(context.Background())
	tickerGen := directory.NewTickerGen()
	go rooms.RunReaper(reaperCtx, &tickerGen, reaperInterval)

	engine := server.CreateEngine(cfg.AllowedOrigins)
	srv := server.New(games, rooms, auth, store, broker, cfg.ICEServers, cfg.PublicBaseURL)
	srv.Register(engine)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: engine,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server started")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, os.Interrupt)
	<-sigCh
	log.Info().Msg("shutdown signal received")

	stopReaper()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	log.Info().Msg("server stopped")
}
