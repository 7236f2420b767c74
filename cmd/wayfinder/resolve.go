package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vango-dev/wayfinder/pkg/location"
)

// resolved is the printed form of a navigation context.
type resolved struct {
	Href       string              `json:"href"`
	Origin     string              `json:"origin"`
	BasePrefix string              `json:"basePrefix"`
	Path       string              `json:"path"`
	Pathname   string              `json:"pathname"`
	Query      map[string][]string `json:"query,omitempty"`
	Hash       string              `json:"hash,omitempty"`
	External   bool                `json:"external"`
}

func resolveCmd() *cobra.Command {
	var (
		base   string
		from   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <href>",
		Short: "Resolve a URL the way navigation does",
		Long: `Resolve normalises href against a base prefix and the current location.

Relative hrefs resolve against the base prefix, root-relative hrefs against
the origin, and the pathname is canonicalised.

Examples:
  wayfinder resolve users/1
  wayfinder resolve guides/intro --base /docs
  wayfinder resolve b --from http://localhost/app/acme/a/x --base /app/:tenant --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var current *url.URL
			if from != "" {
				u, err := url.Parse(from)
				if err != nil {
					return fmt.Errorf("--from: %w", err)
				}
				current = u
			}

			nav, err := location.Resolve(args[0], base, current)
			if err != nil {
				return err
			}
			out := resolved{
				Href:       nav.Href,
				Origin:     nav.Origin,
				BasePrefix: nav.BasePrefix,
				Path:       nav.Path,
				Pathname:   nav.Pathname,
				Query:      nav.Query,
				Hash:       nav.Hash,
				External:   location.IsExternal(args[0], nav.Origin),
			}

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			fmt.Fprintf(w, "href:       %s\n", out.Href)
			fmt.Fprintf(w, "origin:     %s\n", out.Origin)
			fmt.Fprintf(w, "basePrefix: %s\n", out.BasePrefix)
			fmt.Fprintf(w, "path:       %s\n", out.Path)
			fmt.Fprintf(w, "pathname:   %s\n", out.Pathname)
			keys := make([]string, 0, len(out.Query))
			for k := range out.Query {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(w, "query:      %s=%v\n", k, out.Query[k])
			}
			if out.Hash != "" {
				fmt.Fprintf(w, "hash:       %s\n", out.Hash)
			}
			if out.External {
				fmt.Fprintln(w, "external:   true")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&base, "base", "b", "/", "Base prefix template")
	cmd.Flags().StringVar(&from, "from", "", "Current location (default "+location.DefaultOrigin+"/)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")

	return cmd
}
