package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/benbeisheim/chessai-backend/internal/engine"
	"github.com/benbeisheim/chessai-backend/internal/model"
	"github.com/fatih/color"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	m.Run()
}

func TestRenderBoard(t *testing.T) {
	var buf bytes.Buffer
	renderBoard(&buf, model.NewBoard())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 9 {
		t.Fatalf("got %d lines", len(lines))
	}
	if want := "8  ♜  ♞  ♝  ♛  ♚  ♝  ♞  ♜ "; lines[0] != want {
		t.Fatalf("rank 8: %q", lines[0])
	}
	if want := "4 " + strings.Repeat("   ", 8); lines[4] != want {
		t.Fatalf("rank 4: %q", lines[4])
	}
	if !strings.HasSuffix(lines[8], "h") {
		t.Fatalf("file labels: %q", lines[8])
	}
}

func TestSelfPlayStopsAtMate(t *testing.T) {
	board, side, err := model.ParseFEN("6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	searcher := engine.NewSearcher(engine.WithDepth(2), engine.WithShuffler(engine.NoShuffle{}))
	selfPlay(&buf, searcher, board, side, 5)

	out := buf.String()
	if !strings.Contains(out, "1. white plays a1a8") {
		t.Fatalf("missing mating move:\n%s", out)
	}
	if strings.Contains(out, "2. ") {
		t.Fatalf("played on after mate:\n%s", out)
	}
	if !strings.HasSuffix(out, "checkmate, white wins\n") {
		t.Fatalf("missing result:\n%s", out)
	}
}
