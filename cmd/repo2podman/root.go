// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for repo2podman.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"repo2podman/internal/config"
	"repo2podman/internal/engine"
	"repo2podman/internal/issue"

	// Registers the podman adapter with the engine registry.
	_ "repo2podman/internal/podman"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string
	// engineName selects the engine adapter
	engineName string
	// executableOverride replaces the engine binary name or path
	executableOverride string

	// cfg is the loaded configuration, populated by initRootConfig.
	cfg *config.Config

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "repo2podman",
		Short: "Drive Podman as a repo2docker-style build engine",
		Long: TitleStyle.Render("repo2podman") + SubtitleStyle.Render(" - Podman engine adapter") + `

repo2podman translates abstract build, run, push and login requests into
podman CLI invocations, streaming subprocess output as it is produced and
relaying the real exit code. Any podman-compatible CLI (nerdctl,
podman-remote, docker) can be substituted via --podman-executable.

` + SubtitleStyle.Render("Examples:") + `
  repo2podman build -t img:1 .          Build an image from the current directory
  repo2podman run img:1 -- echo hi      Start a container and print its id
  repo2podman push img:1                Push an image to its registry
  repo2podman login -u me quay.io       Log in (secret on stdin)
  repo2podman images                    List local images`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/repo2podman/config.toml)")
	rootCmd.PersistentFlags().StringVar(&engineName, "engine", "", "engine adapter to use (default \"podman\")")
	rootCmd.PersistentFlags().StringVar(&executableOverride, "podman-executable", "", "engine executable name or path (e.g. nerdctl, podman-remote)")

	// Add subcommands
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(imagesCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(enginesCmd)
	rootCmd.AddCommand(configCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). A SIGINT cancels the command
// context, which kills any in-flight engine subprocess.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// initRootConfig reads the config file and environment, then applies flag
// overrides.
func initRootConfig() {
	loaded, err := config.LoadFrom(cfgFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
		loaded = config.DefaultConfig()
	}
	cfg = loaded

	if !verbose {
		verbose = cfg.Verbose
	}
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
}

// newEngine constructs the configured engine adapter, with flag overrides
// applied on top of the loaded config.
func newEngine() (engine.Engine, error) {
	name := string(cfg.Engine)
	if engineName != "" {
		name = engineName
	}

	opts := cfg.EngineOptions()
	if executableOverride != "" {
		opts.Executable = executableOverride
	}

	return engine.New(name, opts)
}

// formatErrorForDisplay formats an error for user display. ActionableErrors
// render their suggestions; verbose mode shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
