package model

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/benbeisheim/chessai-backend/internal/ws"
)

type fakeConn struct {
	mu       sync.Mutex
	messages []ws.Message
	closed   bool
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, v.(ws.Message))
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) first() ws.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.messages[0]
}

func (c *fakeConn) count(t ws.MessageType) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, m := range c.messages {
		if m.Type == t {
			n++
		}
	}
	return n
}

func (c *fakeConn) lastState(t *testing.T) GameState {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Type != ws.MessageTypeGameState {
			continue
		}
		var state GameState
		if err := json.Unmarshal(c.messages[i].Payload, &state); err != nil {
			t.Fatal(err)
		}
		return state
	}
	t.Fatal("no game state received")
	return GameState{}
}

func move(t *testing.T, m string) Move {
	t.Helper()
	return Move{From: sq(t, m[:2]), To: sq(t, m[2:])}
}

func TestAddPlayerPvP(t *testing.T) {
	g := NewGame("g1", ModePvP)
	black := Second

	side, err := g.AddPlayer("alice", &black)
	if err != nil || side != Second {
		t.Fatalf("alice: got %v, %v", side, err)
	}
	side, err = g.AddPlayer("bob", &black)
	if err != nil || side != First {
		t.Fatalf("bob: got %v, %v", side, err)
	}
	if side, _ := g.AddPlayer("alice", nil); side != Second {
		t.Fatalf("rejoin: got %v", side)
	}
	if _, err := g.AddPlayer("carol", nil); !errors.Is(err, ErrGameFull) {
		t.Fatalf("carol: got %v", err)
	}
}

func TestAddPlayerEngineMode(t *testing.T) {
	g := NewGame("g1", ModeEngine)
	black := Second
	if side, err := g.AddPlayer("alice", &black); err != nil || side != Second {
		t.Fatalf("alice: got %v, %v", side, err)
	}
	state := g.GetState()
	if !state.Players.White.Engine || state.Players.White.ID != EnginePlayerID {
		t.Fatalf("white seat: got %+v", state.Players.White)
	}
	if _, err := g.AddPlayer("bob", nil); !errors.Is(err, ErrGameFull) {
		t.Fatalf("bob: got %v", err)
	}

	board, side, ply, ok := g.EngineTurn()
	if !ok || side != First || ply != 0 || board == nil {
		t.Fatalf("engine turn: got %v %v %v", side, ply, ok)
	}
	if _, err := g.MakeMove(EnginePlayerID, move(t, "e2e4")); !errors.Is(err, ErrNotInGame) {
		t.Fatalf("engine id as player: got %v", err)
	}
	if err := g.ApplyEngineMove(ply, move(t, "e2e4")); err != nil {
		t.Fatalf("engine move: %v", err)
	}
	if err := g.ApplyEngineMove(ply, move(t, "d2d4")); !errors.Is(err, ErrStaleMove) {
		t.Fatalf("stale engine move: got %v", err)
	}
	if _, _, _, ok := g.EngineTurn(); ok {
		t.Fatal("engine should wait for alice")
	}
}

func TestMakeMoveValidation(t *testing.T) {
	g := NewGame("g1", ModePvP)
	g.AddPlayer("alice", nil)
	g.AddPlayer("bob", nil)

	tests := []struct {
		name   string
		player string
		move   Move
		want   error
	}{
		{"stranger", "carol", move(t, "e2e4"), ErrNotInGame},
		{"out of turn", "bob", move(t, "e7e5"), ErrNotYourTurn},
		{"opponent piece", "alice", move(t, "e7e5"), ErrNotYourTurn},
		{"empty square", "alice", move(t, "e4e5"), ErrNoPieceAtSource},
		{"illegal", "alice", move(t, "e2e5"), ErrIllegalMove},
		{"off board", "alice", Move{From: sq(t, "e2"), To: Square{File: 4, Rank: 9}}, ErrInvalidSquare},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := g.MakeMove(tt.player, tt.move); !errors.Is(err, tt.want) {
				t.Fatalf("got %v want %v", err, tt.want)
			}
		})
	}
	if state := g.GetState(); len(state.MoveHistory) != 0 || state.ToMove != First {
		t.Fatalf("rejected moves changed the game: %+v", state)
	}
}

func TestFoolsMateEndsGame(t *testing.T) {
	g := NewGame("g1", ModePvP)
	g.AddPlayer("alice", nil)
	g.AddPlayer("bob", nil)

	for i, m := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		player := "alice"
		if i%2 == 1 {
			player = "bob"
		}
		if _, err := g.MakeMove(player, move(t, m)); err != nil {
			t.Fatalf("%s: %v", m, err)
		}
	}

	state := g.GetState()
	if state.Resolve == nil || *state.Resolve != ResolutionCheckmate {
		t.Fatalf("resolve: got %v", state.Resolve)
	}
	if state.Winner == nil || *state.Winner != Second {
		t.Fatalf("winner: got %v", state.Winner)
	}
	if !state.IsCheck || state.Sound != "check" {
		t.Fatalf("check flags: %v %q", state.IsCheck, state.Sound)
	}
	want := []string{"f3", "e5", "g4", "Qh4#"}
	for i, ply := range state.MoveHistory {
		if ply.Notation != want[i] {
			t.Fatalf("ply %d: got %q want %q", i, ply.Notation, want[i])
		}
	}
	if _, err := g.MakeMove("alice", move(t, "a2a3")); !errors.Is(err, ErrGameOver) {
		t.Fatalf("move after mate: got %v", err)
	}
}

func TestStalemateIsNotALoss(t *testing.T) {
	b, _ := fromFEN(t, "7k/8/5QK1/8/8/8/8/8 w - - 0 1")
	g := NewGameFromPosition("g1", ModePvP, b, First)
	g.AddPlayer("alice", nil)
	g.AddPlayer("bob", nil)

	state, err := g.MakeMove("alice", move(t, "f6f7"))
	if err != nil {
		t.Fatal(err)
	}
	if state.Resolve == nil || *state.Resolve != ResolutionStalemate {
		t.Fatalf("resolve: got %v", state.Resolve)
	}
	if state.Winner != nil {
		t.Fatalf("stalemate has no winner, got %v", *state.Winner)
	}
}

func TestHistoryRecordsSpecialMoves(t *testing.T) {
	b, _ := fromFEN(t, "r3k3/6P1/8/3pP3/8/8/8/R3K2R w KQq d6 0 1")
	g := NewGameFromPosition("g1", ModePvP, b, First)
	g.AddPlayer("alice", nil)
	g.AddPlayer("bob", nil)

	steps := []struct {
		player   string
		move     string
		notation string
	}{
		{"alice", "e5d6", "exd6"},
		{"bob", "e8c8", "O-O-O"},
		{"alice", "e1g1", "O-O"},
		{"bob", "d8d6", "Rxd6"},
		{"alice", "g7g8", "g8=Q+"},
	}
	for _, step := range steps {
		state, err := g.MakeMove(step.player, move(t, step.move))
		if err != nil {
			t.Fatalf("%s: %v", step.move, err)
		}
		last := state.MoveHistory[len(state.MoveHistory)-1]
		if last.Notation != step.notation {
			t.Fatalf("%s: notation %q want %q", step.move, last.Notation, step.notation)
		}
	}

	state := g.GetState()
	if got := state.MoveHistory[1].CastleRookMove; got == nil || *got != move(t, "a8d8") {
		t.Fatalf("castle rook move: got %v", got)
	}
	if len(state.CapturedPieces.White) != 1 || len(state.CapturedPieces.Black) != 1 {
		t.Fatalf("captured: %+v", state.CapturedPieces)
	}
	if p := state.Board.Board[0][6]; p == nil || p.Kind != Queen {
		t.Fatalf("g8: got %+v", p)
	}
}

func TestRegisterConnectionSendsHandshake(t *testing.T) {
	g := NewGame("g1", ModePvP)
	g.AddPlayer("alice", nil)
	g.AddPlayer("bob", nil)

	conn := &fakeConn{}
	if err := g.RegisterConnection("bob", conn); err != nil {
		t.Fatal(err)
	}
	msg := conn.first()
	if msg.Type != ws.MessageTypeHandshake {
		t.Fatalf("first message: %s", msg.Type)
	}
	var hs Handshake
	if err := json.Unmarshal(msg.Payload, &hs); err != nil {
		t.Fatal(err)
	}
	if hs.GameID != "g1" || hs.Color == nil || *hs.Color != Second {
		t.Fatalf("handshake: %+v", hs)
	}

	if err := g.RegisterConnection("carol", &fakeConn{}); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("stranger on a full game: got %v", err)
	}
}

func TestDuplicateConnectionKeepsOriginal(t *testing.T) {
	g := NewGame("g1", ModePvP)
	g.AddPlayer("alice", nil)
	g.AddPlayer("bob", nil)

	orig := &fakeConn{}
	if err := g.RegisterConnection("bob", orig); err != nil {
		t.Fatal(err)
	}
	dup := &fakeConn{}
	if err := g.RegisterConnection("bob", dup); !errors.Is(err, ErrAlreadyConnected) {
		t.Fatalf("duplicate connection: got %v", err)
	}
	// the rejected socket shutting down must not drop the live one
	g.UnregisterConnection("bob", dup)

	before := orig.count(ws.MessageTypeGameState)
	if _, err := g.MakeMove("alice", move(t, "e2e4")); err != nil {
		t.Fatal(err)
	}
	if got := orig.count(ws.MessageTypeGameState); got != before+1 {
		t.Fatalf("original connection states: got %d want %d", got, before+1)
	}
	if dup.count(ws.MessageTypeGameState) != 0 {
		t.Fatal("rejected connection received a state")
	}

	g.UnregisterConnection("bob", orig)
	if _, err := g.MakeMove("bob", move(t, "e7e5")); err != nil {
		t.Fatal(err)
	}
	if got := orig.count(ws.MessageTypeGameState); got != before+1 {
		t.Fatalf("unregistered connection still receives states: %d", got)
	}
}

func TestBroadcastsNeverStepBackwards(t *testing.T) {
	g := NewGame("g1", ModePvP)
	g.AddPlayer("alice", nil)
	g.AddPlayer("bob", nil)
	conn := &fakeConn{}
	if err := g.RegisterConnection("alice", conn); err != nil {
		t.Fatal(err)
	}

	old := g.GetState()
	if _, err := g.MakeMove("alice", move(t, "e2e4")); err != nil {
		t.Fatal(err)
	}
	if _, err := g.MakeMove("bob", move(t, "e7e5")); err != nil {
		t.Fatal(err)
	}
	sent := conn.count(ws.MessageTypeGameState)

	// a late delivery of the pre-move state is dropped
	g.broadcastState(0, old)
	if got := conn.count(ws.MessageTypeGameState); got != sent {
		t.Fatalf("stale state delivered: %d messages, want %d", got, sent)
	}
	if last := conn.lastState(t); len(last.MoveHistory) != 2 {
		t.Fatalf("latest state has %d plies", len(last.MoveHistory))
	}
}

func TestQueuePairsInOrder(t *testing.T) {
	q := NewQueue()
	for _, id := range []string{"a", "b", "c"} {
		if err := q.AddPlayer(id); err != nil {
			t.Fatal(err)
		}
	}
	if err := q.AddPlayer("a"); !errors.Is(err, ErrAlreadyQueued) {
		t.Fatalf("duplicate: got %v", err)
	}
	first, second, ok := q.NextPair()
	if !ok || first != "a" || second != "b" {
		t.Fatalf("pair: %s %s %v", first, second, ok)
	}
	if _, _, ok := q.NextPair(); ok {
		t.Fatal("one player cannot be paired")
	}
	if !q.Contains("c") || q.Size() != 1 {
		t.Fatal("c should still wait")
	}
}
