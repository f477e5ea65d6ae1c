package model

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/benbeisheim/chessai-backend/internal/ws"
)

var (
	ErrGameFull      = errors.New("game is full")
	ErrNotInGame     = errors.New("player not in game")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrIllegalMove   = errors.New("illegal move")
	ErrGameOver      = errors.New("game is over")
	ErrStaleMove     = errors.New("position changed before the move arrived")
	ErrNotAuthorized = errors.New("not authorized to join this game")

	ErrAlreadyConnected = errors.New("player already connected to this game")
)

type GameMode string

const (
	ModeEngine GameMode = "ai"
	ModePvP    GameMode = "pvp"
)

func ParseMode(name string) (GameMode, error) {
	switch GameMode(name) {
	case "", ModeEngine:
		return ModeEngine, nil
	case ModePvP:
		return ModePvP, nil
	}
	return "", fmt.Errorf("unknown game mode %q", name)
}

type Resolution string

const (
	ResolutionCheckmate Resolution = "checkmate"
	ResolutionStalemate Resolution = "stalemate"
)

// Conn is the part of a websocket connection a game writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// The connections for a specific game
type GameConnections struct {
	connections map[string]Conn // playerID -> connection
	mu          sync.RWMutex
	writeMu     sync.Mutex

	// broadcastMu orders whole broadcasts; sentSeq is the newest state sent.
	broadcastMu sync.Mutex
	sentSeq     uint64
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]Conn),
	}
}

// The Game struct focuses on a single game's state and its observers
type Game struct {
	ID          string
	Mode        GameMode
	mu          sync.Mutex
	board       *Board
	state       GameState
	stateSeq    uint64 // bumped on every applied move
	connections *GameConnections
}

type GameState struct {
	Sound          string         `json:"sound"`
	Board          BoardState     `json:"boardState"`
	Mode           GameMode       `json:"mode"`
	ToMove         Side           `json:"toMove"`
	MoveHistory    []Ply          `json:"moveHistory"`
	CapturedPieces CapturedPieces `json:"capturedPieces"`
	IsCheck        bool           `json:"isCheck"`
	Resolve        *Resolution    `json:"resolve"`
	Winner         *Side          `json:"winner"`
	Players        Players        `json:"players"`
	LastMove       *Move          `json:"lastMove"`
}

type BoardState struct {
	Board [BoardSize][BoardSize]*Piece `json:"board"`
}

type Handshake struct {
	GameID string `json:"gameId"`
	Color  *Side  `json:"color"`
}

func snapshotBoard(b *Board) BoardState {
	var s BoardState
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			if p, ok := b.At(Square{File: x, Rank: y}); ok {
				s.Board[y][x] = &p
			}
		}
	}
	return s
}

func NewGame(id string, mode GameMode) *Game {
	return NewGameFromPosition(id, mode, NewBoard(), First)
}

// NewGameFromPosition starts a game from an arbitrary position, for example one
// read with ParseFEN.
func NewGameFromPosition(id string, mode GameMode, board *Board, toMove Side) *Game {
	g := &Game{
		ID:          id,
		Mode:        mode,
		board:       board,
		connections: NewGameConnections(),
		state: GameState{
			Board:          snapshotBoard(board),
			Mode:           mode,
			ToMove:         toMove,
			MoveHistory:    make([]Ply, 0),
			CapturedPieces: newCapturedPieces(),
			Players: Players{
				White: ClientPlayer{Color: First},
				Black: ClientPlayer{Color: Second},
			},
		},
	}
	g.updateStatus()
	return g
}

// AddPlayer seats playerID, on preferred when it is free. In engine mode the
// engine takes the other side. A player already seated keeps their side.
func (g *Game) AddPlayer(playerID string, preferred *Side) (Side, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if side, ok := g.state.Players.sideOf(playerID); ok {
		return side, nil
	}

	order := []Side{First, Second}
	if preferred != nil {
		order = []Side{*preferred, preferred.Opposite()}
	}
	for _, side := range order {
		seat := g.state.Players.seat(side)
		if seat.ID != "" {
			continue
		}
		seat.ID = playerID
		if g.Mode == ModeEngine {
			other := g.state.Players.seat(side.Opposite())
			other.ID = EnginePlayerID
			other.Engine = true
		}
		log.Printf("game %s: %s plays %s", g.ID, playerID, side)
		return side, nil
	}
	return First, ErrGameFull
}

func (g *Game) GetState() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.state
}

func (g *Game) IsPlayerInGame(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.state.Players.sideOf(playerID)
	return ok
}

func (g *Game) canSpectate() bool {
	return g.state.Players.White.ID == "" || g.state.Players.Black.ID == ""
}

// LegalMoves lists the legal destinations from sq in the current position.
func (g *Game) LegalMoves(sq Square) ([]Square, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.board.ValidMoves(sq)
}

// MakeMove validates and applies a move for a seated player, then sends the
// new state to every connection.
func (g *Game) MakeMove(playerID string, move Move) (GameState, error) {
	state, seq, err := g.makeMove(playerID, move)
	if err != nil {
		return state, err
	}
	g.broadcastState(seq, state)
	return state, nil
}

func (g *Game) makeMove(playerID string, move Move) (GameState, uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	side, ok := g.state.Players.sideOf(playerID)
	if !ok || playerID == EnginePlayerID {
		return g.state, g.stateSeq, ErrNotInGame
	}
	if side != g.state.ToMove {
		return g.state, g.stateSeq, ErrNotYourTurn
	}
	if err := g.validateMove(side, move); err != nil {
		return g.state, g.stateSeq, err
	}
	g.executeMove(move)
	return g.state, g.stateSeq, nil
}

// EngineTurn hands out a copy of the position when the engine is to move.
// The returned ply count identifies the position for ApplyEngineMove.
func (g *Game) EngineTurn() (*Board, Side, int, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Mode != ModeEngine || g.state.Resolve != nil {
		return nil, First, 0, false
	}
	if !g.state.Players.seat(g.state.ToMove).Engine {
		return nil, First, 0, false
	}
	return g.board.Clone(), g.state.ToMove, len(g.state.MoveHistory), true
}

// ApplyEngineMove plays the engine's reply, provided the game has not moved
// on since EngineTurn reported ply.
func (g *Game) ApplyEngineMove(ply int, move Move) error {
	g.mu.Lock()
	if len(g.state.MoveHistory) != ply {
		g.mu.Unlock()
		return ErrStaleMove
	}
	if err := g.validateMove(g.state.ToMove, move); err != nil {
		g.mu.Unlock()
		return err
	}
	g.executeMove(move)
	state, seq := g.state, g.stateSeq
	g.mu.Unlock()

	g.broadcastState(seq, state)
	return nil
}

func (g *Game) validateMove(side Side, move Move) error {
	if g.state.Resolve != nil {
		return ErrGameOver
	}
	if !move.From.Valid() || !move.To.Valid() {
		return fmt.Errorf("move %v: %w", move, ErrInvalidSquare)
	}
	piece, ok := g.board.At(move.From)
	if !ok {
		return fmt.Errorf("move %v: %w", move, ErrNoPieceAtSource)
	}
	if piece.Side != side {
		return ErrNotYourTurn
	}
	legal, _ := g.board.ValidMoves(move.From)
	for _, to := range legal {
		if to == move.To {
			return nil
		}
	}
	return fmt.Errorf("move %v: %w", move, ErrIllegalMove)
}

func (g *Game) executeMove(move Move) {
	ply := g.board.describePly(move)
	if ply.CapturedPiece != nil {
		g.state.CapturedPieces.add(ply.Side, *ply.CapturedPiece)
	}

	g.board.movePiece(move.From, move.To)
	g.state.ToMove = ply.Side.Opposite()
	g.updateStatus()

	ply.Notation = ply.notation(g.state.IsCheck, g.state.Resolve != nil && *g.state.Resolve == ResolutionCheckmate)
	g.state.MoveHistory = append(g.state.MoveHistory, ply)

	switch {
	case g.state.IsCheck:
		g.state.Sound = "check"
	case ply.CapturedPiece != nil:
		g.state.Sound = "capture"
	default:
		g.state.Sound = "move"
	}
	g.state.LastMove = &Move{From: move.From, To: move.To}
	g.state.Board = snapshotBoard(g.board)
	g.stateSeq++
}

// updateStatus refreshes check and game-over flags for the side to move.
func (g *Game) updateStatus() {
	toMove := g.state.ToMove
	g.state.IsCheck = g.board.IsInCheck(toMove)
	if g.board.hasLegalMove(toMove) {
		return
	}
	resolution := ResolutionStalemate
	if g.state.IsCheck {
		resolution = ResolutionCheckmate
		winner := toMove.Opposite()
		g.state.Winner = &winner
	}
	g.state.Resolve = &resolution
	log.Printf("game %s: %s", g.ID, resolution)
}

func (g *Game) RegisterConnection(playerID string, conn Conn) error {
	g.mu.Lock()
	side, seated := g.state.Players.sideOf(playerID)
	isAuthorized := seated || g.canSpectate()
	g.mu.Unlock()

	if !isAuthorized {
		return ErrNotAuthorized
	}

	g.connections.mu.Lock()
	if _, exists := g.connections.connections[playerID]; exists {
		// keep the existing connection; the caller owns and closes the new one
		g.connections.mu.Unlock()
		return ErrAlreadyConnected
	}
	g.connections.connections[playerID] = conn
	g.connections.mu.Unlock()
	log.Printf("game %s: registered connection for %s", g.ID, playerID)

	hs := Handshake{GameID: g.ID}
	if seated {
		hs.Color = &side
	}
	if msg, err := ws.NewMessage(ws.MessageTypeHandshake, hs); err == nil {
		g.send(playerID, conn, msg)
	}

	// read after the insert: any later move's broadcast includes conn
	g.mu.Lock()
	state, seq := g.state, g.stateSeq
	g.mu.Unlock()
	g.broadcastState(seq, state)
	return nil
}

// UnregisterConnection forgets conn. A newer connection registered for the
// same player is left alone.
func (g *Game) UnregisterConnection(playerID string, conn Conn) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	if g.connections.connections[playerID] == conn {
		delete(g.connections.connections, playerID)
	}
}

// SendTo writes msg to a single connection in turn with the game's broadcasts.
func (g *Game) SendTo(playerID string, conn Conn, msg ws.Message) {
	g.send(playerID, conn, msg)
}

func (g *Game) send(playerID string, conn Conn, msg ws.Message) bool {
	g.connections.writeMu.Lock()
	defer g.connections.writeMu.Unlock()

	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("game %s: failed to send %s to %s: %v", g.ID, msg.Type, playerID, err)
		return false
	}
	return true
}

// broadcastState sends the state numbered seq to every connection. A state
// older than one already sent is dropped, so clients never step backwards.
func (g *Game) broadcastState(seq uint64, state GameState) {
	g.connections.broadcastMu.Lock()
	defer g.connections.broadcastMu.Unlock()

	if seq < g.connections.sentSeq {
		return
	}
	g.connections.sentSeq = seq

	msg, err := ws.NewMessage(ws.MessageTypeGameState, state)
	if err != nil {
		log.Printf("game %s: failed to marshal state: %v", g.ID, err)
		return
	}

	// Get a snapshot of connections under the connections mutex
	g.connections.mu.RLock()
	activeConnections := make(map[string]Conn, len(g.connections.connections))
	for playerID, conn := range g.connections.connections {
		activeConnections[playerID] = conn
	}
	g.connections.mu.RUnlock()

	var failed []string
	for playerID, conn := range activeConnections {
		if !g.send(playerID, conn, msg) {
			failed = append(failed, playerID)
		}
	}
	if len(failed) == 0 {
		return
	}
	g.connections.mu.Lock()
	for _, playerID := range failed {
		if g.connections.connections[playerID] == activeConnections[playerID] {
			delete(g.connections.connections, playerID)
		}
	}
	g.connections.mu.Unlock()
}
