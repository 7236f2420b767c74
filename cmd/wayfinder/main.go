package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦ ╦┌─┐┬ ┬┌─┐┬┌┐┌┌┬┐┌─┐┬─┐
  ║║║├─┤└┬┘├┤ ││││ ││├┤ ├┬┘
  ╚╩╝┴ ┴ ┴ └  ┴┘└┘─┴┘└─┘┴└─
`

// globalFlags are shared by every command.
type globalFlags struct {
	config    string
	logLevel  string
	logFormat string
	noColor   bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "wayfinder",
		Short: "Client-side navigation for nested layouts",
		Long: `Wayfinder resolves URLs against a base prefix, matches them against a
nested route tree and renders each matched route into its outlet.

The CLI works on a site file (wayfinder.yaml or wayfinder.toml):

  • resolve  normalise a URL the way navigation does
  • match    show the route chain a path selects
  • go       run navigations and print the rendered page
  • serve    render pages over HTTP with metrics and an event stream`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&flags.config, "config", "c", ".", "Site file, or a directory containing one")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn or error (default from site file)")
	rootCmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "Log format: text or json (default from site file)")
	rootCmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		resolveCmd(),
		matchCmd(flags),
		goCmd(flags),
		serveCmd(flags),
		versionCmd(),
	)

	return rootCmd
}

// printBanner prints the ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}
