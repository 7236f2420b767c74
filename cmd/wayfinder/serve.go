package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/wayfinder/pkg/dom"
	"github.com/vango-dev/wayfinder/pkg/events"
	"github.com/vango-dev/wayfinder/pkg/inspect"
	"github.com/vango-dev/wayfinder/pkg/middleware"
	"github.com/vango-dev/wayfinder/pkg/navigation"
	"github.com/vango-dev/wayfinder/pkg/routeerr"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		port    int
		host    string
		metrics bool
		insp    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Render site pages over HTTP",
		Long: `Serve renders every GET request by navigating a fresh document to the
request path and writing the result as HTML.

Optional endpoints:
  • /metrics                   Prometheus metrics (--metrics)
  • /_wayfinder/events         WebSocket stream of a shared preview's events (--inspect)
  • /_wayfinder/current        the preview's committed location (--inspect)
  • POST /_wayfinder/navigate  navigate the preview, ?href=/path (--inspect)

Examples:
  wayfinder serve
  wayfinder serve --port=8080 --metrics --inspect`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSite(flags)
			if err != nil {
				return err
			}
			defer s.flush()

			if cmd.Flags().Changed("port") {
				s.cfg.Serve.Port = port
			}
			if host != "" {
				s.cfg.Serve.Host = host
			}
			if metrics {
				s.cfg.Serve.Metrics = true
			}
			if insp {
				s.cfg.Serve.Inspect = true
			}

			printBanner(cmd.OutOrStdout())
			info(cmd.OutOrStdout(), "serving %s on http://%s", s.cfg.Path(), s.cfg.Addr())

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runServer(ctx, s)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from site file)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from site file)")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "Expose Prometheus metrics on /metrics")
	cmd.Flags().BoolVar(&insp, "inspect", false, "Expose the preview event stream under /_wayfinder")

	return cmd
}

// runServer serves s until ctx is cancelled, then shuts down gracefully.
func runServer(ctx context.Context, s *site) error {
	handler, closeHandler, err := newHandler(s)
	if err != nil {
		return err
	}
	defer closeHandler()

	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return err
	}

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("server starting", slog.String("address", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	s.log.Info("shutdown completed")
	return nil
}

// newHandler builds the HTTP routes for s. The returned function releases
// the preview controller and the event stream.
func newHandler(s *site) (http.Handler, func(), error) {
	mw := []navigation.Middleware{
		navigation.Chain(middleware.Logging(s.log), middleware.OpenTelemetry()),
	}
	if s.cfg.Serve.Metrics {
		mw = append(mw, middleware.Prometheus())
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	cleanup := func() {}
	if s.cfg.Serve.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}
	if s.cfg.Serve.Inspect {
		preview, err := s.newPage(s.cfg.BasePrefix, mw...)
		if err != nil {
			return nil, nil, err
		}
		stream := inspect.New(preview.nav)
		unwatch := middleware.WatchBus(preview.nav.Bus())

		var mu sync.Mutex
		r.Route("/_wayfinder", func(r chi.Router) {
			r.Post("/navigate", func(w http.ResponseWriter, req *http.Request) {
				href := req.URL.Query().Get("href")
				if href == "" {
					http.Error(w, "href required", http.StatusBadRequest)
					return
				}
				mu.Lock()
				defer mu.Unlock()
				outcome := preview.nav.Navigate(req.Context(), href)
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(map[string]string{
					"outcome": outcome.String(),
					"title":   preview.doc.Title(),
				})
			})
			r.Mount("/", stream.Handler())
		})

		cleanup = func() {
			unwatch()
			stream.Close()
			preview.nav.Wait()
		}
	}

	r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
		renderPage(w, req, s, mw)
	})

	return r, cleanup, nil
}

// renderPage navigates a fresh page to the request path and writes it.
// Failed navigations still write the fallback page, with a status taken
// from the error code.
func renderPage(w http.ResponseWriter, req *http.Request, s *site, mw []navigation.Middleware) {
	p, err := s.newPage(req.URL.RequestURI(), mw...)
	if err != nil {
		s.log.ErrorContext(req.Context(), "page setup failed", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	defer p.nav.Wait()

	var failure *routeerr.RouteError
	unsubscribe := p.nav.Subscribe(func(e *events.Event) {
		failure = e.Err
	}, events.Error)
	defer unsubscribe()

	status := http.StatusOK
	if outcome := p.nav.Navigate(req.Context(), req.URL.RequestURI()); outcome != navigation.OutcomeDone {
		status = statusOf(failure)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := dom.RenderDocument(w, p.doc); err != nil {
		s.log.ErrorContext(req.Context(), "page write failed", slog.Any("error", err))
	}
}

func statusOf(rerr *routeerr.RouteError) int {
	if rerr == nil {
		return http.StatusInternalServerError
	}
	if code, ok := rerr.Code.(int); ok && code >= 400 && code < 600 {
		return code
	}
	return http.StatusInternalServerError
}
