// Command scattermul multiplies two random integer matrices across a group of
// ranks that talk only through broadcast, scatter and gather.
//
//	scattermul --np 4 8 3 5                    # four ranks in this process
//	scattermul --listen :7070 --size 3 6 4 2   # networked coordinator
//	scattermul --coordinator ws://host:7070/scattermul --size 3 --rank 1 6 4 2
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/katalvlaran/scattermul/driver"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, driver.ErrUsage) { // usage was already printed by the coordinator
			fmt.Fprintln(os.Stderr, "scattermul:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgPath string
		flagCfg = driver.DefaultConfig()
	)

	cmd := &cobra.Command{
		Use:           "scattermul [flags] <rows_A> <cols_A> <cols_B>",
		Short:         "Distributed dense integer matrix multiply over collectives",
		Args:          cobra.ArbitraryArgs, // every rank must see a usage error, so args are checked by driver
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := driver.DefaultConfig()
			if cfgPath != "" {
				var err error
				if cfg, err = driver.LoadConfig(cfgPath); err != nil {
					return err
				}
			}
			mergeFlags(cmd, &cfg, flagCfg)

			logger, err := driver.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel)
			if err != nil {
				return err
			}

			return driver.Execute(cmd.Context(), cfg, args,
				driver.WithOutput(cmd.OutOrStdout()),
				driver.WithLogger(logger),
			)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfgPath, "config", "", "TOML or YAML config file; explicit flags override it")
	f.IntVar(&flagCfg.NP, "np", flagCfg.NP, "number of in-process ranks")
	f.Int64Var(&flagCfg.Seed, "seed", flagCfg.Seed, "generator seed (0 picks a time-based seed)")
	f.IntVar(&flagCfg.MaxValue, "max-value", flagCfg.MaxValue, "generated entries lie in [0, max-value)")
	f.StringVar(&flagCfg.LogLevel, "log-level", flagCfg.LogLevel, "debug, info, warn or error")
	f.StringVar(&flagCfg.Listen, "listen", "", "act as networked coordinator on this address")
	f.StringVar(&flagCfg.Coordinator, "coordinator", "", "websocket URL of the networked coordinator")
	f.IntVar(&flagCfg.Size, "size", 0, "number of ranks in the networked group")
	f.IntVar(&flagCfg.Rank, "rank", 0, "this process's rank in the networked group")

	return cmd
}

// mergeFlags copies every explicitly set flag from fl onto cfg.
func mergeFlags(cmd *cobra.Command, cfg *driver.Config, fl driver.Config) {
	set := cmd.Flags().Changed
	if set("np") {
		cfg.NP = fl.NP
	}
	if set("seed") {
		cfg.Seed = fl.Seed
	}
	if set("max-value") {
		cfg.MaxValue = fl.MaxValue
	}
	if set("log-level") {
		cfg.LogLevel = fl.LogLevel
	}
	if set("listen") {
		cfg.Listen = fl.Listen
	}
	if set("coordinator") {
		cfg.Coordinator = fl.Coordinator
	}
	if set("size") {
		cfg.Size = fl.Size
	}
	if set("rank") {
		cfg.Rank = fl.Rank
	}
}
