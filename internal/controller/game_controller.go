package controller

import (
	"errors"

	"github.com/benbeisheim/chessai-backend/internal/middleware"
	"github.com/benbeisheim/chessai-backend/internal/model"
	"github.com/benbeisheim/chessai-backend/internal/service"
	"github.com/gofiber/fiber/v2"
)

type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

type moveRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// statusFor maps domain errors to HTTP status codes, using fallback for
// anything it does not recognise.
func statusFor(err error, fallback int) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrGameExists),
		errors.Is(err, model.ErrGameFull),
		errors.Is(err, model.ErrAlreadyQueued),
		errors.Is(err, model.ErrNotYourTurn),
		errors.Is(err, model.ErrGameOver),
		errors.Is(err, model.ErrAlreadyConnected):
		return fiber.StatusConflict
	case errors.Is(err, model.ErrNotInGame), errors.Is(err, model.ErrNotAuthorized):
		return fiber.StatusForbidden
	case errors.Is(err, model.ErrIllegalMove):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, model.ErrInvalidSquare),
		errors.Is(err, model.ErrNoPieceAtSource),
		errors.Is(err, service.ErrInvalidDepth):
		return fiber.StatusBadRequest
	}
	return fallback
}

func sendError(c *fiber.Ctx, err error, fallback int) error {
	return c.Status(statusFor(err, fallback)).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	var req service.CreateGameRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
	}

	gameID, color, err := gc.gameService.CreateGame(middleware.PlayerID(c), req)
	if err != nil {
		return sendError(c, err, fiber.StatusBadRequest)
	}
	return c.JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
		"color":   color,
	})
}

func (gc *GameController) JoinGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")

	color, err := gc.gameService.JoinGame(gameID, middleware.PlayerID(c))
	if err != nil {
		return sendError(c, err, fiber.StatusInternalServerError)
	}

	return c.JSON(fiber.Map{
		"message": "Game joined",
		"color":   color,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameState, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return sendError(c, err, fiber.StatusInternalServerError)
	}

	return c.JSON(gameState)
}

// LegalMoves lists destinations for the piece on ?square=.
func (gc *GameController) LegalMoves(c *fiber.Ctx) error {
	square := c.Query("square")
	moves, err := gc.gameService.LegalMoves(c.Params("gameId"), square)
	if err != nil {
		return sendError(c, err, fiber.StatusInternalServerError)
	}

	return c.JSON(fiber.Map{
		"square": square,
		"moves":  moves,
	})
}

func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	var req moveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	state, err := gc.gameService.HandleAlgebraicMove(c.Params("gameId"), middleware.PlayerID(c), req.From, req.To)
	if err != nil {
		return sendError(c, err, fiber.StatusInternalServerError)
	}
	return c.JSON(state)
}

func (gc *GameController) JoinMatchmaking(c *fiber.Ctx) error {
	if err := gc.gameService.JoinMatchmaking(middleware.PlayerID(c)); err != nil {
		return sendError(c, err, fiber.StatusInternalServerError)
	}

	return c.JSON(fiber.Map{
		"status": "queued",
	})
}

func (gc *GameController) MatchmakingStatus(c *fiber.Ctx) error {
	return c.JSON(gc.gameService.MatchStatus(middleware.PlayerID(c)))
}
