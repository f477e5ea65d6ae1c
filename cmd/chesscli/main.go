// Command chesscli prints a position and lets the engine play from it.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/benbeisheim/chessai-backend/internal/config"
	"github.com/benbeisheim/chessai-backend/internal/engine"
	"github.com/benbeisheim/chessai-backend/internal/model"
	"github.com/fatih/color"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func main() {
	fen := flag.String("fen", startFEN, "position to start from")
	depth := flag.Int("depth", engine.MaxDepth, "search depth in plies")
	seed := flag.Uint64("seed", 0, "random seed for tie-breaks (0: time based)")
	plies := flag.Int("plies", 1, "number of engine moves to play")
	logPath := flag.String("log", "", "log file (default: stderr)")
	noColor := flag.Bool("no-color", false, "disable colour output")
	flag.Parse()

	if err := config.InitLog(*logPath, "CLI: "); err != nil {
		log.Fatal(err)
	}
	if *noColor {
		color.NoColor = true
	}
	if *depth < 1 || *depth > engine.DepthLimit {
		log.Fatalf("depth %d outside 1..%d", *depth, engine.DepthLimit)
	}

	board, side, err := model.ParseFEN(*fen)
	if err != nil {
		log.Fatal(err)
	}

	searcher := engine.NewSearcher(
		engine.WithDepth(*depth),
		engine.WithShuffler(engine.NewRandomShuffler(*seed)),
	)
	selfPlay(color.Output, searcher, board, side, *plies)
}

// selfPlay lets the engine move for whichever side is to move, up to plies
// times or until the game ends.
func selfPlay(w io.Writer, searcher *engine.Searcher, board *model.Board, side model.Side, plies int) {
	renderBoard(w, board)
	for i := 0; i < plies; i++ {
		start := time.Now()
		res, ok := searcher.Search(board, side)
		if !ok {
			break
		}
		board = board.Play(res.Move)
		fmt.Fprintf(w, "\n%d. %s plays %s (score %d, %d nodes, %v)\n",
			i+1, side, res.Move, res.Score, res.Nodes, time.Since(start).Round(time.Millisecond))
		side = side.Opposite()
		renderBoard(w, board)
	}

	switch {
	case board.IsCheckmate(side):
		fmt.Fprintf(w, "\ncheckmate, %s wins\n", side.Opposite())
	case board.IsStalemate(side):
		fmt.Fprintln(w, "\nstalemate")
	case board.IsInCheck(side):
		fmt.Fprintf(w, "\n%s to move, in check\n", side)
	default:
		fmt.Fprintf(w, "\n%s to move\n", side)
	}
}
