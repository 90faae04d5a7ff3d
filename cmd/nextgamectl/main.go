// Command nextgamectl drives the next-game aggregation stack from a shell.
//
// Usage:
//
//	nextgamectl fetch --team 1610612739
//	nextgamectl clear [--all]
//	nextgamectl warm
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/preston-bernstein/nba-next-game-service/internal/config"
	"github.com/preston-bernstein/nba-next-game-service/internal/domain"
	"github.com/preston-bernstein/nba-next-game-service/internal/logging"
	"github.com/preston-bernstein/nba-next-game-service/internal/server"
)

// operator is the slice of the orchestrator the CLI needs.
type operator interface {
	NextGame(ctx context.Context, teamID int) (domain.NextGameResponse, error)
	Invalidate(ctx context.Context, all bool) (int, []string)
	Warm(ctx context.Context) error
}

// openOperator builds the same core the server runs. Tests replace it.
var openOperator = func(ctx context.Context, cfg config.Config, logger *slog.Logger) (operator, func() error) {
	core := server.NewCore(ctx, cfg, logger, nil)
	return core.Service, core.Close
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "nextgamectl",
		Short:         "Inspect and maintain the next-game cache",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(fetchCmd())
	root.AddCommand(clearCmd())
	root.AddCommand(warmCmd())
	return root
}

func fetchCmd() *cobra.Command {
	var teamID int
	var compact bool
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Print the next-game aggregate as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOperator(cmd, func(ctx context.Context, op operator) error {
				resp, err := op.NextGame(ctx, teamID)
				if err != nil {
					return fmt.Errorf("next game: %w", err)
				}
				return printJSON(cmd.OutOrStdout(), resp, !compact)
			})
		},
	}
	cmd.Flags().IntVar(&teamID, "team", 0, "NBA team id (default: DEFAULT_TEAM_ID)")
	cmd.Flags().BoolVar(&compact, "compact", false, "Print single-line JSON")
	return cmd
}

func clearCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear cached schedule, standings, aggregate and injury data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOperator(cmd, func(ctx context.Context, op operator) error {
				cleared, keys := op.Invalidate(ctx, all)
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"ok":      true,
					"cleared": cleared,
					"keys":    keys,
				}, true)
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Clear every key under the cache prefix, stale backups included")
	return cmd
}

func warmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "warm",
		Short: "Refetch the schedule, standings and default team aggregate",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOperator(cmd, func(ctx context.Context, op operator) error {
				start := time.Now()
				if err := op.Warm(ctx); err != nil {
					return fmt.Errorf("warm: %w", err)
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"success":    true,
					"durationMs": time.Since(start).Milliseconds(),
				}, true)
			})
		},
	}
}

// withOperator loads config, wires the core and cancels on SIGINT/SIGTERM.
func withOperator(cmd *cobra.Command, fn func(ctx context.Context, op operator) error) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()
	logger := logging.NewLogger(logging.Config{
		Level:   os.Getenv("LOG_LEVEL"),
		Format:  os.Getenv("LOG_FORMAT"),
		Service: "nextgamectl",
		Output:  cmd.ErrOrStderr(),
	})

	op, closeFn := openOperator(ctx, cfg, logger)
	defer func() {
		if err := closeFn(); err != nil {
			logging.Warn(logger, "cache close failed", logging.FieldError, err)
		}
	}()
	return fn(ctx, op)
}

func printJSON(w io.Writer, v any, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
