package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/wayfinder/pkg/routeerr"
	"github.com/vango-dev/wayfinder/pkg/router"
)

func matchCmd(flags *globalFlags) *cobra.Command {
	var tree bool

	cmd := &cobra.Command{
		Use:   "match [pathname]",
		Short: "Show the route chain a pathname selects",
		Long: `Match compiles the site's route tree and prints the chain of routes,
outermost first, that the pathname selects, followed by the captured params.

With --tree, the whole compiled tree is printed instead, followed by a
warning for every route an earlier route shadows.

Examples:
  wayfinder match /docs/guides/intro
  wayfinder match --tree`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSite(flags)
			if err != nil {
				return err
			}
			defer s.flush()

			routes, err := s.cfg.RouteTree()
			if err != nil {
				return err
			}
			t, err := router.Compile(routes, s.cfg.BasePrefix)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if tree {
				t.Walk(func(r *router.Route, depth int) bool {
					fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), describe(r))
					return true
				})
				for _, c := range t.Conflicts() {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", c)
				}
				return nil
			}

			if len(args) == 0 {
				return fmt.Errorf("pathname required without --tree")
			}
			pathname := args[0]
			matches := t.Match(pathname)
			if len(matches) == 0 {
				rerr := routeerr.NotFound(pathname)
				fmt.Fprint(cmd.ErrOrStderr(), rerr.Format(!flags.noColor))
				return rerr
			}

			for depth, r := range matches {
				fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), describe(r))
			}
			params := t.Params(matches[len(matches)-1], pathname)
			keys := make([]string, 0, len(params))
			for k := range params {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(w, "param %s=%s\n", k, params[k])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&tree, "tree", false, "Print the whole route tree")

	return cmd
}

// describe prints a route as pattern plus its flags.
func describe(r *router.Route) string {
	var b strings.Builder
	b.WriteString(r.Pattern())
	if r.Index {
		b.WriteString(" [index]")
	}
	if r.Title != "" {
		fmt.Fprintf(&b, " title=%q", r.Title)
	}
	if r.ForceRerender() {
		b.WriteString(" force")
	}
	if r.Content == nil {
		b.WriteString(" (no content)")
	}
	return b.String()
}
