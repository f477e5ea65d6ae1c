package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/benbeisheim/chessai-backend/internal/engine"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Addr          string
	Origins       string
	Depth         int
	Seed          uint64
	MatchInterval time.Duration
	LogPath       string
}

// Load reads flags from args, falling back to CHESS_* environment variables
// looked up with getenv, then to built-in defaults.
func Load(args []string, getenv func(string) string) (Config, error) {
	env := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	depth, err := strconv.Atoi(env("CHESS_DEPTH", strconv.Itoa(engine.MaxDepth)))
	if err != nil {
		return Config{}, fmt.Errorf("%w: CHESS_DEPTH: %v", ErrInvalidConfig, err)
	}
	seed, err := strconv.ParseUint(env("CHESS_SEED", "0"), 10, 64)
	if err != nil {
		return Config{}, fmt.Errorf("%w: CHESS_SEED: %v", ErrInvalidConfig, err)
	}
	interval, err := time.ParseDuration(env("CHESS_MATCH_INTERVAL", "1s"))
	if err != nil {
		return Config{}, fmt.Errorf("%w: CHESS_MATCH_INTERVAL: %v", ErrInvalidConfig, err)
	}

	var cfg Config
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.Addr, "addr", env("CHESS_ADDR", ":3000"), "listen address")
	fs.StringVar(&cfg.Origins, "origins", env("CHESS_ORIGINS", "http://localhost:5173"), "comma-separated CORS origins")
	fs.IntVar(&cfg.Depth, "depth", depth, "default engine search depth in plies")
	fs.Uint64Var(&cfg.Seed, "seed", seed, "random seed for sides and engine tie-breaks (0: time based)")
	fs.DurationVar(&cfg.MatchInterval, "match-interval", interval, "how often the matchmaking queue is paired")
	fs.StringVar(&cfg.LogPath, "log", env("CHESS_LOG", ""), "log file (default: stderr)")
	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Depth < 1 || c.Depth > engine.DepthLimit {
		return fmt.Errorf("%w: depth %d outside 1..%d", ErrInvalidConfig, c.Depth, engine.DepthLimit)
	}
	if c.MatchInterval <= 0 {
		return fmt.Errorf("%w: match interval must be positive", ErrInvalidConfig)
	}
	if c.Addr == "" {
		return fmt.Errorf("%w: empty listen address", ErrInvalidConfig)
	}
	return nil
}

// InitLog sends the standard logger to dest with prefix. An empty dest keeps
// stderr.
func InitLog(dest, prefix string) error {
	log.SetPrefix(prefix)
	if dest == "" {
		return nil
	}
	f, err := os.OpenFile(dest, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("error opening log file: %w", err)
	}
	log.SetOutput(f)
	return nil
}
