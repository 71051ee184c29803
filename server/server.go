package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/wfunc/rpsserver/auth"
	"github.com/wfunc/rpsserver/broadcast"
	"github.com/wfunc/rpsserver/config"
	"github.com/wfunc/rpsserver/logger"
	"github.com/wfunc/rpsserver/monitor"
	"github.com/wfunc/rpsserver/persistence"
	gameserver_rpc "github.com/wfunc/rpsserver/rpc"
	"github.com/wfunc/rpsserver/services"
	"github.com/wfunc/rpsserver/session"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 10 * time.Second

type GameServer struct {
	cfg            config.ServerConfig
	router         *mux.Router
	upgrader       websocket.Upgrader
	auth           *auth.HeaderAuthenticator
	games          *services.GameService
	sessionManager *session.Manager
	monitor        *monitor.Monitor
	limiter        *RateLimiter
}

func NewGameServer(cfg config.ServerConfig, db persistence.Store, mon *monitor.Monitor) *GameServer {
	s := &GameServer{
		cfg:            cfg,
		router:         mux.NewRouter(),
		auth:           auth.NewHeaderAuthenticator(cfg.UserHeader, db),
		sessionManager: session.NewManager(),
		monitor:        mon,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	// 初始化广播器
	s.games = services.NewGameService(db, mon, broadcast.NewUserBroadcaster(s.sessionManager))

	if cfg.RateLimit.RPS > 0 {
		s.limiter = NewRateLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)
	}

	s.setupRoutes()
	return s
}

func (s *GameServer) setupRoutes() {
	s.router.Use(ObserveMiddleware(s.monitor))
	if s.limiter != nil {
		s.router.Use(s.limiter.Middleware)
	}

	s.router.HandleFunc("/games", s.handleListGames).Methods(http.MethodGet)
	s.router.HandleFunc("/games", s.handleCreateGame).Methods(http.MethodPost)
	s.router.HandleFunc("/game/{id}", s.handleFetchGame).Methods(http.MethodGet)
	s.router.HandleFunc("/game/{id}/add/{userId}", s.handleInviteOpponent).Methods(http.MethodPatch)
	s.router.HandleFunc("/game/{id}", s.handlePlay).Methods(http.MethodPatch)
	s.router.HandleFunc("/game/{id}", s.handleDeleteGame).Methods(http.MethodDelete)
	s.router.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
}

// Handler exposes the router, mainly for tests.
func (s *GameServer) Handler() http.Handler {
	return s.router
}

// Run serves HTTP, and RPC and metrics when their addresses are set, until
// ctx is cancelled or one of them fails.
func (s *GameServer) Run(ctx context.Context, metricsAddr string) error {
	var rpcServer *gameserver_rpc.Server
	if s.cfg.RPCAddress != "" {
		var err error
		if rpcServer, err = gameserver_rpc.NewServer(s.cfg.RPCAddress, s.games); err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	if rpcServer != nil {
		g.Go(func() error {
			rpcServer.Start()
			return nil
		})
	}

	httpServer := &http.Server{
		Addr:              s.cfg.HTTPAddress,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	g.Go(func() error {
		logger.Log.Infof("Game server listening on %s", s.cfg.HTTPAddress)
		return ignoreClosed(httpServer.ListenAndServe())
	})

	var metricsServer *http.Server
	if metricsAddr != "" {
		metricsServer = s.monitor.NewServer(metricsAddr)
		g.Go(func() error {
			logger.Log.Infof("Metrics listening on %s", metricsAddr)
			return ignoreClosed(metricsServer.ListenAndServe())
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		logger.Log.Info("Shutting down game server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if rpcServer != nil {
			rpcServer.Stop()
		}
		if s.limiter != nil {
			s.limiter.Stop()
		}
		s.sessionManager.CloseAll()
		if metricsServer != nil {
			metricsServer.Shutdown(shutdownCtx)
		}
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func ignoreClosed(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
