package server

import (
	"math/rand/v2"
	"net/http"

	"game-night/internal/config"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Server struct {
	store    *Store
	db       *gorm.DB
	cfg      config.Config
	log      *zap.SugaredLogger
	sessions *sessionStore
	games    *gameRegistry
	catalog  []Game
}

func New(conn *gorm.DB, cfg config.Config, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	s := &Server{
		store:    NewStore(cfg.RoomCodeLength),
		db:       conn,
		cfg:      cfg,
		log:      log,
		sessions: newSessionStore(conn),
		games:    newGameRegistry(),
	}
	s.games.register(slugBombNumber, bombEngine{
		draw:     drawUniform,
		rangeMin: cfg.BombRangeMin,
		rangeMax: cfg.BombRangeMax,
	})
	s.catalog = s.loadCatalog()
	return s
}

func drawUniform(min, max int) int {
	if max <= min {
		return min
	}
	return min + rand.IntN(max-min+1)
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/games", s.handleListGames)
	mux.HandleFunc("POST /api/rooms", s.handleCreateRoom)
	mux.HandleFunc("GET /api/rooms/", s.handleRoomSubroutes)
	mux.HandleFunc("POST /api/rooms/", s.handleRoomSubroutes)
	mux.HandleFunc("GET /ws/rooms/", s.handleWebsocket)
	mux.Handle("/api/admin/", s.adminHandler())
	return mux
}
