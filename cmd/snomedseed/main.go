package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/snomedcore/ingestion-core/internal/app"
	"github.com/snomedcore/ingestion-core/internal/domain/snomed"
)

var (
	flagActiveOnly          bool
	flagBatchSize           int
	flagForceRestart        bool
	flagDialectRefsetID     string
	flagVerifyAfterSeed     bool
	flagProgressLogInterval int
	flagStrictEdgeDedup     bool
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "snomedseed",
		Short: "Operate the SNOMED CT ingestion pipeline against its graph store",
	}

	root.AddCommand(
		seedCmd(),
		pauseCmd(),
		resumeCmd(),
		reseedCmd(),
		statusCmd(),
		verifyCmd(),
		clearCheckpointCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildApp() (*app.App, error) {
	return app.New()
}

func optionsFromFlags() snomed.SeedOptions {
	opts := snomed.DefaultSeedOptions()
	opts.ActiveOnly = flagActiveOnly
	if flagBatchSize > 0 {
		opts.BatchSize = flagBatchSize
	}
	if flagDialectRefsetID != "" {
		opts.DialectRefsetID = flagDialectRefsetID
	}
	opts.VerifyAfterSeed = flagVerifyAfterSeed
	if flagProgressLogInterval > 0 {
		opts.ProgressLogInterval = flagProgressLogInterval
	}
	opts.StrictEdgeDedup = flagStrictEdgeDedup
	return opts
}

// waitForCompletion blocks the CLI process until the background seeding
// task the controller just launched finishes. The controller's StartSeed
// contract returns as soon as the task is launched (matching the HTTP
// layer's 202-immediately behavior), but a CLI invocation has no separate
// long-lived process to check back on later, so it must wait here instead
// of exiting out from under its own background goroutine.
func waitForCompletion(a *app.App) {
	for a.Controller.IsRunning() {
		time.Sleep(200 * time.Millisecond)
	}
}

func printJSON(v any) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	fmt.Println(string(raw))
}

func addSeedFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&flagActiveOnly, "active-only", true, "skip inactive RF2 rows")
	cmd.Flags().IntVar(&flagBatchSize, "batch-size", 0, "concept batch size (0 = default)")
	cmd.Flags().StringVar(&flagDialectRefsetID, "dialect-refset-id", "", "language refset id for preferred terms")
	cmd.Flags().BoolVar(&flagVerifyAfterSeed, "verify-after-seed", false, "run verification once seeding completes")
	cmd.Flags().IntVar(&flagProgressLogInterval, "progress-log-interval", 0, "rows between progress log lines (0 = default)")
	cmd.Flags().BoolVar(&flagStrictEdgeDedup, "strict-edge-dedup", false, "skip edges already added during this process's run")
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Start (or resume) seeding the graph from the configured snapshot directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.Close()
			started, err := a.Controller.StartSeed(optionsFromFlags(), flagForceRestart)
			if err != nil {
				return err
			}
			printJSON(started)
			waitForCompletion(a)
			printJSON(a.Controller.Status())
			return nil
		},
	}
	addSeedFlags(cmd)
	cmd.Flags().BoolVar(&flagForceRestart, "force-restart", false, "discard any existing checkpoint before starting")
	return cmd
}

func pauseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Request a pause of a job running in this process (a job started by another process is reported as not running)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.Close()
			started, err := a.Controller.RequestPause()
			if err != nil {
				return err
			}
			printJSON(started)
			return nil
		},
	}
}

func resumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resume a paused or failed job using its own stored options",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.Close()
			started, err := a.Controller.Resume()
			if err != nil {
				return err
			}
			printJSON(started)
			waitForCompletion(a)
			printJSON(a.Controller.Status())
			return nil
		},
	}
}

func reseedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reseed",
		Short: "Discard any checkpoint and start a fresh run",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.Close()
			started, err := a.Controller.Reseed(optionsFromFlags())
			if err != nil {
				return err
			}
			printJSON(started)
			waitForCompletion(a)
			printJSON(a.Controller.Status())
			return nil
		},
	}
	addSeedFlags(cmd)
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print job status plus a best-effort verification snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.Close()
			printJSON(a.Controller.FullStatus(context.Background()))
			return nil
		},
	}
}

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Run the post-seed verification checks against the graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.Close()
			v, err := a.Controller.Verify(context.Background())
			if err != nil {
				return err
			}
			printJSON(v)
			return nil
		},
	}
}

func clearCheckpointCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-checkpoint",
		Short: "Delete the checkpoint file for the configured snapshot directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.Controller.ClearCheckpoint(); err != nil {
				return err
			}
			fmt.Println("checkpoint cleared")
			return nil
		},
	}
}
