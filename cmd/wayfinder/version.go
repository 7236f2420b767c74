package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func versionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print version, commit, and build information for the wayfinder CLI.`,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			if short {
				fmt.Fprintln(w, version)
				return
			}

			printBanner(w)
			fmt.Fprintln(w)
			fmt.Fprintf(w, "  Version:    %s\n", version)
			fmt.Fprintf(w, "  Commit:     %s\n", commit)
			fmt.Fprintf(w, "  Built:      %s\n", date)
			fmt.Fprintf(w, "  Go version: %s\n", runtime.Version())
			fmt.Fprintf(w, "  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
			fmt.Fprintln(w)
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only version number")

	return cmd
}
