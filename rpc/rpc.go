package rpc

import (
	"context"
	"errors"
	"net"
	"net/rpc"
	"time"

	"github.com/wfunc/rpsserver/logger"
	"github.com/wfunc/rpsserver/models"
	"github.com/wfunc/rpsserver/services"
)

const callTimeout = 5 * time.Second

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
	rpc      *rpc.Server
}

// NewServer listens on addr and registers GameService on a private rpc.Server.
func NewServer(addr string, games *services.GameService) (*Server, error) {
	srv := rpc.NewServer()
	if err := srv.Register(NewGameService(games)); err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  listener.Addr().String(),
		rpc:      srv,
	}, nil
}

// Addr returns the address actually bound, useful with port 0.
func (s *Server) Addr() string {
	return s.address
}

// Start begins listening for RPC requests. It returns when the listener is closed.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go s.rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// GameService is the struct that exposes RPC methods.
// Methods follow the net/rpc signature: exported method, exported arguments,
// second argument is a pointer, return type is error.
type GameService struct {
	games *services.GameService
}

// NewGameService creates a new GameService.
func NewGameService(games *services.GameService) *GameService {
	return &GameService{games: games}
}

type GetGameArgs struct {
	GameID int64
}

type GetGameReply struct {
	Game *models.Game
}

func (gs *GameService) GetGame(args *GetGameArgs, reply *GetGameReply) error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	game, err := gs.games.GetGame(ctx, args.GameID)
	if err != nil {
		return err
	}
	reply.Game = game
	return nil
}

// ListGamesArgs filters by state; an empty State lists every game.
type ListGamesArgs struct {
	State models.GameState
}

type ListGamesReply struct {
	Games []*models.Game
}

func (gs *GameService) ListGames(args *ListGamesArgs, reply *ListGamesReply) error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	games, err := gs.games.ListGames(ctx)
	if err != nil {
		return err
	}
	if args.State == "" {
		reply.Games = games
		return nil
	}
	for _, g := range games {
		if g.State == args.State {
			reply.Games = append(reply.Games, g)
		}
	}
	return nil
}
