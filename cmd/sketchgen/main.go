// Package main provides the CLI entry point for sketchgen, a tool that
// generates Go data-model code from the Sketch file-format JSON Schemas.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sketchdoc/sketchdoc/log"
	"github.com/sketchdoc/sketchdoc/profile"
	"github.com/sketchdoc/sketchdoc/registry"
	"github.com/sketchdoc/sketchdoc/schemagen"
	"github.com/sketchdoc/sketchdoc/version"
)

func main() {
	cfg := schemagen.NewConfig()
	logCfg := log.NewConfig()
	profileCfg := profile.NewConfig()

	rootCmd := &cobra.Command{
		Use:   "sketchgen [flags]",
		Short: "Generate Go types from the Sketch file-format schemas",
		Long: `sketchgen fetches the Sketch file-format schema package from a package
registry and generates a single self-contained Go source file containing the
typed data model, including polymorphic decoding of layer containers keyed
by the _class discriminator.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, cfg, logCfg, profileCfg)
		},
	}

	cfg.RegisterFlags(rootCmd.Flags())
	logCfg.RegisterFlags(rootCmd.PersistentFlags())
	profileCfg.RegisterFlags(rootCmd.Flags())

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	})

	completionErr := cfg.RegisterCompletions(rootCmd)
	if completionErr != nil {
		fmt.Fprintf(os.Stderr, "register completions: %v\n", completionErr)
	}

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode distinguishes flag-parsing mistakes from generation failures.
func exitCode(err error) int {
	msg := err.Error()
	if strings.HasPrefix(msg, "unknown flag") || strings.HasPrefix(msg, "unknown shorthand flag") {
		return 2
	}

	return 1
}

func run(cmd *cobra.Command, cfg *schemagen.Config, logCfg *log.Config, profileCfg *profile.Config) error {
	handler, err := logCfg.NewHandler(os.Stderr)
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(handler))

	err = cfg.LoadFile()
	if err != nil {
		return err
	}

	profiler := profileCfg.NewProfiler()

	err = profiler.Start()
	if err != nil {
		return err
	}

	defer func() {
		stopErr := profiler.Stop()
		if stopErr != nil {
			slog.Warn("stopping profiler", slog.Any("error", stopErr))
		}
	}()

	ctx := cmd.Context()
	client := http.DefaultClient

	slog.Info("fetching schema package",
		slog.String("registry", cfg.Registry),
		slog.String("package", cfg.NpmName),
		slog.String("version", cfg.Version),
	)

	pkg, err := registry.FetchPackage(ctx, client, cfg.Registry, cfg.NpmName)
	if err != nil {
		return err
	}

	return registry.WithTarball(ctx, client, pkg, cfg.Version, func(dir string) error {
		schemas, err := registry.LoadSchemas(dir)
		if err != nil {
			return err
		}

		slog.Info("loaded schemas", slog.Int64("documentVersion", schemas.Version))

		source, err := cfg.NewGenerator().Generate(schemas.Bundle())
		if err != nil {
			return err
		}

		err = os.MkdirAll(filepath.Dir(cfg.Out), 0o755)
		if err != nil {
			return fmt.Errorf("write %s: %w", cfg.Out, err)
		}

		err = os.WriteFile(cfg.Out, source, 0o644) //nolint:gosec // Generated source is not a secret.
		if err != nil {
			return fmt.Errorf("write %s: %w", cfg.Out, err)
		}

		slog.Info("generated types", slog.String("out", cfg.Out))

		return nil
	})
}
