package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kiralabs/launchpad/internal/config"
	"github.com/kiralabs/launchpad/internal/history"
	"github.com/kiralabs/launchpad/internal/launchpad"
	"github.com/kiralabs/launchpad/internal/workflow"
)

var logger = logrus.New()

func main() {
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found, using system environment variables")
	}

	root := &cobra.Command{
		Use:   "launchpad",
		Short: "Launch tokens and swap against constant-product pools",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	root.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		if v, _ := cmd.Flags().GetBool("verbose"); v {
			logger.SetLevel(logrus.DebugLevel)
		}
	}

	root.AddCommand(issueCmd(), quoteCmd(), swapCmd(), runsCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// signalContext returns a context canceled on SIGINT/SIGTERM. Cancellation
// mid-confirmation leaves the in-flight step submitted, never failed.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newEngine() (*launchpad.Engine, error) {
	cfg := config.Load()
	opts := launchpad.EngineConfig{Logger: logger}

	// History is best effort for the CLI; runs execute fine without redis.
	rclient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rclient.Ping(context.Background()).Err(); err == nil {
		opts.Cache = history.NewRedisCacheFromClient(rclient, logger)
	} else {
		_ = rclient.Close()
		logger.WithError(err).Debug("redis unavailable, run history disabled")
	}

	return launchpad.NewEngineFromEnv(cfg, opts)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func issueCmd() *cobra.Command {
	var params workflow.IssuanceParams
	var decimals uint8

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Launch a new token: create mint with metadata, create token account, mint supply",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true

			engine, err := newEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			ctx, cancel := signalContext()
			defer cancel()

			params.Decimals = decimals
			result, err := engine.IssueToken(ctx, params)
			if err != nil {
				return err
			}

			if err := printJSON(result.Run); err != nil {
				return err
			}
			if result.Run.Succeeded() {
				logger.WithField("mint", result.Mint).Info("token launched")
				return nil
			}
			if result.Run.Canceled {
				logger.Warn("run canceled, last transaction still in flight, check it manually")
			}
			return fmt.Errorf("issuance stopped before completion")
		},
	}

	cmd.Flags().StringVar(&params.Name, "name", "", "token name")
	cmd.Flags().StringVar(&params.Symbol, "symbol", "", "token symbol")
	cmd.Flags().StringVar(&params.URI, "uri", "", "metadata URI")
	cmd.Flags().Uint8Var(&decimals, "decimals", 9, "mint decimals")
	cmd.Flags().Uint64Var(&params.Supply, "supply", 0, "initial supply in base units")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("symbol")
	_ = cmd.MarkFlagRequired("uri")
	_ = cmd.MarkFlagRequired("supply")
	return cmd
}

func quoteCmd() *cobra.Command {
	var req launchpad.QuoteRequest

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a swap against the registered pool without executing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true

			engine, err := newEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			ctx, cancel := signalContext()
			defer cancel()

			quote, err := engine.QuoteSwap(ctx, req)
			if err != nil {
				return err
			}
			return printJSON(quote)
		},
	}

	addSwapFlags(cmd, &req)
	return cmd
}

func swapCmd() *cobra.Command {
	var req launchpad.SwapRequest

	cmd := &cobra.Command{
		Use:   "swap",
		Short: "Quote and execute a swap with an on-chain minimum-out guard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true

			engine, err := newEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			ctx, cancel := signalContext()
			defer cancel()

			result, err := engine.ExecuteSwap(ctx, req)
			if err != nil {
				return err
			}

			if err := printJSON(result); err != nil {
				return err
			}
			if result.Run.Succeeded() {
				return nil
			}
			if result.Run.Canceled {
				logger.Warn("run canceled, transaction still in flight, check it manually")
			}
			return fmt.Errorf("swap did not complete")
		},
	}

	addSwapFlags(cmd, &req)
	return cmd
}

func addSwapFlags(cmd *cobra.Command, req *launchpad.QuoteRequest) {
	cmd.Flags().StringVar(&req.InputMint, "input", "", "input mint address")
	cmd.Flags().StringVar(&req.OutputMint, "output", "", "output mint address")
	cmd.Flags().Uint64Var(&req.AmountIn, "amount", 0, "input amount in base units")
	cmd.Flags().Uint16Var(&req.SlippageBps, "slippage", 0, "slippage tolerance in bps (default from env)")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	_ = cmd.MarkFlagRequired("amount")
}

func runsCmd() *cobra.Command {
	var limit int64

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "Show recent workflow runs, or one run by id",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg := config.Load()
			ctx, cancel := signalContext()
			defer cancel()

			rclient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
			if err := rclient.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("failed to connect to Redis: %w", err)
			}
			cache := history.NewRedisCacheFromClient(rclient, logger)
			defer cache.Close()

			if len(args) == 1 {
				run, err := cache.GetRun(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(run)
			}

			runs, err := cache.GetRecentRuns(ctx, limit)
			if err != nil {
				return err
			}
			return printJSON(runs)
		},
	}

	cmd.Flags().Int64Var(&limit, "limit", 20, "max runs to list")
	return cmd
}
