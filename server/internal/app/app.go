package app

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"tunequiz/server/internal/auth"
	"tunequiz/server/internal/config"
	"tunequiz/server/internal/metrics"
	"tunequiz/server/internal/netws"
	"tunequiz/server/internal/room"
	"tunequiz/server/internal/session"
	"tunequiz/server/internal/store"
)

type App struct {
	cfg        config.Config
	log        *zap.Logger
	store      *store.Store
	metrics    *metrics.Metrics
	sessions   *session.Manager
	rooms      *room.Manager
	netServer  *netws.Server
	httpServer *http.Server
}

func New(cfg config.Config) (*App, error) {
	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	metricsSrv := metrics.NewMetrics()
	storeSrv, err := store.NewStore(cfg, log)
	if err != nil {
		return nil, err
	}

	sessions := session.NewManager(cfg.ReconnectTTL, metricsSrv, log)
	authMgr := auth.NewManager(cfg.JWTSecret)
	rooms := room.NewManager(room.Options{
		RoomLimit:     cfg.RoomLimit,
		MaxPlayers:    cfg.MaxPlayers,
		IdleTTL:       cfg.RoomIdleTTL,
		FinishedGrace: cfg.FinishedGrace,
		SweepInterval: cfg.SweepInterval,
	}, sessions, sessions, storeSrv.Idem, storeSrv, metricsSrv, log, func(code string, players []string) {
		for _, pid := range players {
			sessions.SetRoom(pid, "")
		}
	})

	netServer := netws.NewServer(cfg, log, metricsSrv, authMgr, sessions, rooms)

	mux := http.NewServeMux()
	mux.Handle("/ws", netServer)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return &App{
		cfg:        cfg,
		log:        log,
		store:      storeSrv,
		metrics:    metricsSrv,
		sessions:   sessions,
		rooms:      rooms,
		netServer:  netServer,
		httpServer: httpServer,
	}, nil
}

func (a *App) Run() error {
	a.log.Info("server start", zap.String("addr", a.cfg.HTTPAddr))
	err := a.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	a.rooms.Close()
	a.store.Close()
	return a.httpServer.Shutdown(ctx)
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
