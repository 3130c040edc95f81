package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"spelld/internal/lsp"
	"spelld/internal/version"
)

var lspCmd = &cobra.Command{
	Use:          "lsp",
	Short:        "Run the spelld language server over stdio",
	Long:         "Run the spelld language server over stdio.\n\n" + dictHint,
	SilenceUsage: true,
	RunE:         runLSP,
}

func init() {
	lspCmd.Flags().Duration("debounce", 200*time.Millisecond, "delay between the last edit and a check")
	lspCmd.Flags().Int("jobs", 2, "max concurrent document checks")
	lspCmd.Flags().Bool("no-watch", false, "do not watch spelld.toml files for changes")
}

func runLSP(cmd *cobra.Command, _ []string) error {
	tracer, cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	defer dumpTraceOnPanic(tracer)
	stopProfiling, err := startProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return fmt.Errorf("failed to get debounce flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	noWatch, err := cmd.Flags().GetBool("no-watch")
	if err != nil {
		return fmt.Errorf("failed to get no-watch flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if debounce == 0 {
		debounce = -1
	}

	store, err := loadStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	server := lsp.NewServer(os.Stdin, os.Stdout, lsp.Options{
		Store:          store,
		Debounce:       debounce,
		Workers:        jobs,
		MaxDiagnostics: maxDiagnostics,
		Tracer:         tracer,
		NoWatch:        noWatch,
		Version:        version.Version,
		Log:            os.Stderr,
	})
	if err := server.Run(cmd.Context()); err != nil {
		if errors.Is(err, lsp.ErrExit) {
			return nil
		}
		if errors.Is(err, lsp.ErrExitWithoutShutdown) {
			return fmt.Errorf("lsp exit without shutdown")
		}
		return err
	}
	return nil
}
