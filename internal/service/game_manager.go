// service/game_manager.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/benbeisheim/chessai-backend/internal/engine"
	"github.com/benbeisheim/chessai-backend/internal/model"
	"github.com/google/uuid"
	"golang.org/x/exp/rand"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
	ErrInvalidDepth = errors.New("invalid search depth")
)

// CreateGameRequest describes a new game. Zero values mean engine mode, the
// white pieces, the server's default depth and the standard start position.
type CreateGameRequest struct {
	Mode  string `json:"mode"`
	Side  string `json:"side"`
	Depth int    `json:"depth"`
	FEN   string `json:"fen"`
}

type MatchStatus struct {
	Status string      `json:"status"`
	GameID string      `json:"game_id,omitempty"`
	Color  *model.Side `json:"color,omitempty"`
}

type GameManager struct {
	games     map[string]*model.Game
	searchers map[string]*engine.Searcher
	queue     *model.Queue
	matches   map[string]model.MatchFoundEvent
	mu        sync.RWMutex

	depth int
	seed  uint64
	rng   *rand.Rand
	rngMu sync.Mutex

	// engineWG tracks engine replies still being searched.
	engineWG sync.WaitGroup
}

// NewGameManager returns a manager whose engines search depth plies by
// default. A non-zero seed makes side draws and engine tie-breaks repeatable.
func NewGameManager(depth int, seed uint64) *GameManager {
	if depth <= 0 {
		depth = engine.MaxDepth
	}
	source := seed
	if source == 0 {
		source = uint64(time.Now().UnixNano())
	}
	return &GameManager{
		games:     make(map[string]*model.Game),
		searchers: make(map[string]*engine.Searcher),
		queue:     model.NewQueue(),
		matches:   make(map[string]model.MatchFoundEvent),
		depth:     depth,
		seed:      seed,
		rng:       rand.New(rand.NewSource(source)),
	}
}

func (gm *GameManager) randomSide() model.Side {
	gm.rngMu.Lock()
	defer gm.rngMu.Unlock()

	if gm.rng.Intn(2) == 0 {
		return model.First
	}
	return model.Second
}

func (gm *GameManager) newSearcher(depth int) *engine.Searcher {
	return engine.NewSearcher(
		engine.WithDepth(depth),
		engine.WithShuffler(engine.NewRandomShuffler(gm.seed)),
	)
}

// CreateGame sets up gameID and seats playerID in it.
func (gm *GameManager) CreateGame(gameID, playerID string, req CreateGameRequest) (model.Side, error) {
	mode, err := model.ParseMode(req.Mode)
	if err != nil {
		return model.First, err
	}

	depth := req.Depth
	if depth == 0 {
		depth = gm.depth
	}
	if depth < 1 || depth > engine.DepthLimit {
		return model.First, fmt.Errorf("%w: %d (want 1..%d)", ErrInvalidDepth, depth, engine.DepthLimit)
	}

	var side model.Side
	switch req.Side {
	case "":
		side = model.First
	case "random":
		side = gm.randomSide()
	default:
		if side, err = model.ParseSide(req.Side); err != nil {
			return model.First, err
		}
	}

	var game *model.Game
	if req.FEN != "" {
		board, toMove, err := model.ParseFEN(req.FEN)
		if err != nil {
			return model.First, err
		}
		game = model.NewGameFromPosition(gameID, mode, board, toMove)
	} else {
		game = model.NewGame(gameID, mode)
	}
	if _, err := game.AddPlayer(playerID, &side); err != nil {
		return model.First, err
	}

	gm.mu.Lock()
	if _, exists := gm.games[gameID]; exists {
		gm.mu.Unlock()
		return model.First, ErrGameExists
	}
	gm.games[gameID] = game
	if mode == model.ModeEngine {
		gm.searchers[gameID] = gm.newSearcher(depth)
	}
	gm.mu.Unlock()

	log.Printf("created %s game %s for %s (depth %d)", mode, gameID, playerID, depth)
	gm.scheduleEngine(game)
	return side, nil
}

func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, ErrGameNotFound
	}

	return game, nil
}

func (gm *GameManager) AddPlayerToGame(gameID string, playerID string) (model.Side, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.First, err
	}
	return game.AddPlayer(playerID, nil)
}

func (gm *GameManager) GetGameState(gameID string) (model.GameState, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.GetState(), nil
}

func (gm *GameManager) LegalMoves(gameID string, sq model.Square) ([]model.Square, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	return game.LegalMoves(sq)
}

// MakeMove plays a human move and, in engine games, queues the reply.
func (gm *GameManager) MakeMove(gameID string, playerID string, move model.Move) (model.GameState, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}

	state, err := game.MakeMove(playerID, move)
	if err != nil {
		return state, err
	}
	gm.scheduleEngine(game)
	return state, nil
}

// scheduleEngine searches for the engine's reply off the caller's goroutine
// when the engine is to move. A reply that arrives after the game has moved
// on is dropped.
func (gm *GameManager) scheduleEngine(game *model.Game) {
	board, side, ply, ok := game.EngineTurn()
	if !ok {
		return
	}

	gm.mu.RLock()
	searcher := gm.searchers[game.ID]
	gm.mu.RUnlock()
	if searcher == nil {
		return
	}

	gm.engineWG.Add(1)
	go func() {
		defer gm.engineWG.Done()

		start := time.Now()
		res, found := searcher.Search(board, side)
		if !found {
			return
		}
		log.Printf("game %s: engine plays %v (score %d, %d nodes, %v)",
			game.ID, res.Move, res.Score, res.Nodes, time.Since(start).Round(time.Millisecond))

		if err := game.ApplyEngineMove(ply, res.Move); err != nil {
			log.Printf("game %s: engine move %v dropped: %v", game.ID, res.Move, err)
		}
	}()
}

// Wait blocks until every pending engine reply has been applied or dropped.
func (gm *GameManager) Wait() {
	gm.engineWG.Wait()
}

func (gm *GameManager) JoinMatchmaking(playerID string) error {
	gm.mu.Lock()
	delete(gm.matches, playerID)
	gm.mu.Unlock()

	if err := gm.queue.AddPlayer(playerID); err != nil {
		log.Printf("matchmaking: %s: %v", playerID, err)
		return err
	}
	log.Printf("matchmaking: %s queued (%d waiting)", playerID, gm.queue.Size())
	return nil
}

// MatchStatus reports whether playerID has been paired. A match is handed
// out once.
func (gm *GameManager) MatchStatus(playerID string) MatchStatus {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if event, ok := gm.matches[playerID]; ok {
		delete(gm.matches, playerID)
		color := event.Color
		return MatchStatus{Status: "matched", GameID: event.GameID, Color: &color}
	}
	if gm.queue.Contains(playerID) {
		return MatchStatus{Status: "queued"}
	}
	return MatchStatus{Status: "idle"}
}

// processMatchmaking pairs queued players into new player-vs-player games.
func (gm *GameManager) processMatchmaking() {
	for {
		player1, player2, ok := gm.queue.NextPair()
		if !ok {
			return
		}

		gameID := uuid.New().String()
		game := model.NewGame(gameID, model.ModePvP)

		first := gm.randomSide()
		p1Color, err := game.AddPlayer(player1, &first)
		if err != nil {
			log.Printf("matchmaking: adding %s to %s: %v", player1, gameID, err)
			continue
		}
		p2Color, err := game.AddPlayer(player2, nil)
		if err != nil {
			log.Printf("matchmaking: adding %s to %s: %v", player2, gameID, err)
			continue
		}

		gm.mu.Lock()
		gm.games[gameID] = game
		gm.matches[player1] = model.MatchFoundEvent{GameID: gameID, Color: p1Color}
		gm.matches[player2] = model.MatchFoundEvent{GameID: gameID, Color: p2Color}
		gm.mu.Unlock()

		log.Printf("matchmaking: %s (%s) vs %s (%s) in %s", player1, p1Color, player2, p2Color, gameID)
	}
}

// Run pairs the matchmaking queue every interval until ctx is done.
func (gm *GameManager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			gm.processMatchmaking()
		}
	}
}

func (gm *GameManager) RegisterConnection(gameID string, playerID string, conn model.Conn) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(playerID, conn)
}

func (gm *GameManager) UnregisterConnection(gameID string, playerID string, conn model.Conn) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return
	}
	game.UnregisterConnection(playerID, conn)
}
