package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/wayfinder/pkg/dom"
	"github.com/vango-dev/wayfinder/pkg/events"
	"github.com/vango-dev/wayfinder/pkg/navigation"
)

func goCmd(flags *globalFlags) *cobra.Command {
	var (
		showEvents bool
		document   bool
	)

	cmd := &cobra.Command{
		Use:   "go <href>...",
		Short: "Navigate and print the rendered page",
		Long: `Go runs the given navigations in order on one in-memory document and
prints the outcome of each, then the rendered root element.

Later navigations reuse what earlier ones rendered: ancestors that are
already shown are not rendered again.

Examples:
  wayfinder go /docs/
  wayfinder go /docs/ /docs/guides/intro --events
  wayfinder go /docs/about --document`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSite(flags)
			if err != nil {
				return err
			}
			defer s.flush()

			p, err := s.newPage(s.cfg.BasePrefix)
			if err != nil {
				return err
			}
			defer p.nav.Wait()

			w := cmd.OutOrStdout()
			stderr := cmd.ErrOrStderr()
			unsubscribe := p.nav.Subscribe(func(e *events.Event) {
				if e.Type == events.Error {
					fmt.Fprint(stderr, e.Err.Format(!flags.noColor))
				}
				if showEvents {
					info(w, "%s token=%d %s", e.Type, e.Token, eventDetail(e))
				}
			})
			defer unsubscribe()

			failed := 0
			for _, href := range args {
				outcome := p.nav.Navigate(cmd.Context(), href)
				switch outcome {
				case navigation.OutcomeDone, navigation.OutcomeUnchanged:
					success(w, "%s %s", href, outcome)
				default:
					failed++
					errorMsg(w, "%s %s", href, outcome)
				}
			}

			fmt.Fprintf(w, "title: %s\n", p.doc.Title())
			if document {
				if err := dom.RenderDocument(w, p.doc); err != nil {
					return err
				}
				fmt.Fprintln(w)
			} else {
				fmt.Fprintln(w, dom.OuterHTML(p.root))
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d navigations failed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showEvents, "events", "e", false, "Print lifecycle events")
	cmd.Flags().BoolVar(&document, "document", false, "Print the whole document instead of the root element")

	return cmd
}

func eventDetail(e *events.Event) string {
	var parts []string
	if e.Context != nil {
		parts = append(parts, e.Context.Pathname)
	}
	switch e.Type {
	case events.Progress:
		parts = append(parts, fmt.Sprintf("%d%%", e.Progress))
	case events.Error:
		parts = append(parts, e.Err.FormatCompact())
	}
	return strings.Join(parts, " ")
}
