package server

import (
	"net/http"
	"time"

	"ti4-tracker/internal/config"
	"ti4-tracker/internal/logging"
	"ti4-tracker/internal/monitor"
	"ti4-tracker/internal/ti4"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Server struct {
	store   *Store
	db      *gorm.DB
	ws      *wsHub
	cfg     config.Config
	limiter *rateLimiter
	monitor *monitor.Monitor
	ruleset ti4.Ruleset
	log     *zap.SugaredLogger
}

func New(conn *gorm.DB, cfg config.Config, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = logging.Nop()
	}
	return &Server{
		store:   NewStore(),
		db:      conn,
		ws:      newWSHub(),
		cfg:     cfg,
		limiter: newRateLimiter(cfg.RateLimitPerMinute, time.Minute),
		monitor: monitor.New("ti4_tracker"),
		ruleset: ti4.BaseRuleset(),
		log:     log,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/games", s.handleCreateGame)
	mux.HandleFunc("GET /api/games", s.handleListGames)
	mux.HandleFunc("GET /api/games/", s.handleGameSubroutes)
	mux.HandleFunc("POST /api/games/", s.handleGameSubroutes)
	mux.HandleFunc("PATCH /api/games/", s.handleGameSubroutes)
	mux.HandleFunc("POST /api/players", s.handleCreatePlayer)
	mux.HandleFunc("PATCH /api/players", s.handleUpdatePlayer)
	mux.HandleFunc("POST /api/turns", s.handleTurn)
	mux.HandleFunc("POST /api/rounds", s.handleStartRound)
	mux.HandleFunc("POST /api/rounds/next", s.handleAdvanceRound)
	mux.HandleFunc("GET /api/cards", s.handleCards)
	mux.HandleFunc("GET /api/factions", s.handleFactions)
	mux.HandleFunc("GET /ws/games/", s.handleWebsocket)
	mux.Handle("GET /metrics", s.monitor.Handler())
	return mux
}

// gameSnapshot builds the full-state payload under the store mutex.
func (s *Server) gameSnapshot(id string) (map[string]any, bool) {
	var snap map[string]any
	ok := s.store.ViewGame(id, func(game *Game) {
		snap = snapshot(game, s.cfg.HistoryLimit)
	})
	return snap, ok
}
