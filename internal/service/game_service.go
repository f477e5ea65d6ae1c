package service

import (
	"fmt"

	"github.com/benbeisheim/chessai-backend/internal/model"
	"github.com/benbeisheim/chessai-backend/internal/ws"
	"github.com/google/uuid"
)

type GameService struct {
	gameManager *GameManager
}

func NewGameService(gameManager *GameManager) *GameService {
	return &GameService{
		gameManager: gameManager,
	}
}

func (gs *GameService) JoinGame(gameID string, playerID string) (model.Side, error) {
	return gs.gameManager.AddPlayerToGame(gameID, playerID)
}

func (gs *GameService) CreateGame(playerID string, req CreateGameRequest) (string, model.Side, error) {
	gameID := uuid.New().String()

	side, err := gs.gameManager.CreateGame(gameID, playerID, req)
	if err != nil {
		return "", side, fmt.Errorf("failed to create game: %w", err)
	}

	return gameID, side, nil
}

func (gs *GameService) JoinMatchmaking(playerID string) error {
	return gs.gameManager.JoinMatchmaking(playerID)
}

func (gs *GameService) MatchStatus(playerID string) MatchStatus {
	return gs.gameManager.MatchStatus(playerID)
}

func (gs *GameService) GetGameState(gameID string) (model.GameState, error) {
	return gs.gameManager.GetGameState(gameID)
}

// LegalMoves parses an algebraic square and lists where its piece may go.
func (gs *GameService) LegalMoves(gameID string, square string) ([]model.Square, error) {
	sq, err := model.ParseSquare(square)
	if err != nil {
		return nil, err
	}
	return gs.gameManager.LegalMoves(gameID, sq)
}

func (gs *GameService) HandleMove(gameID string, playerID string, move model.Move) (model.GameState, error) {
	return gs.gameManager.MakeMove(gameID, playerID, move)
}

// HandleAlgebraicMove accepts squares such as "e2" and "e4".
func (gs *GameService) HandleAlgebraicMove(gameID, playerID, from, to string) (model.GameState, error) {
	src, err := model.ParseSquare(from)
	if err != nil {
		return model.GameState{}, err
	}
	dst, err := model.ParseSquare(to)
	if err != nil {
		return model.GameState{}, err
	}
	return gs.HandleMove(gameID, playerID, model.Move{From: src, To: dst})
}

func (gs *GameService) RegisterConnection(gameID string, playerID string, conn model.Conn) error {
	return gs.gameManager.RegisterConnection(gameID, playerID, conn)
}

// SendError reports a failed request to one websocket client.
func (gs *GameService) SendError(gameID string, playerID string, conn model.Conn, text string) {
	msg := ws.NewError(text)
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		conn.WriteJSON(msg)
		return
	}
	game.SendTo(playerID, conn, msg)
}

func (gs *GameService) UnregisterConnection(gameID string, playerID string, conn model.Conn) {
	gs.gameManager.UnregisterConnection(gameID, playerID, conn)
}
