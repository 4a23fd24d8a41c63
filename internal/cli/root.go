// Package cli implements the elgo command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/hupe1980/elgo"
	"github.com/hupe1980/elgo/document"
	elgoprom "github.com/hupe1980/elgo/metrics/prometheus"
	"github.com/hupe1980/elgo/ontology"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

type globalOptions struct {
	workers     int
	logLevel    string
	logFormat   string
	metricsAddr string
	timeout     time.Duration
}

// NewRootCommand builds the elgo command tree.
func NewRootCommand(version string) *cobra.Command {
	g := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "elgo",
		Short: "Classify EL++ ontologies",
		Long: `elgo computes the class hierarchy of EL++ ontologies written as YAML
documents. Documents may be zstd (.zst) or lz4 (.lz4) compressed, and file
arguments accept ** glob patterns.`,
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.IntVarP(&g.workers, "workers", "w", 0, "Saturation workers (default: GOMAXPROCS)")
	pf.StringVar(&g.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	pf.StringVar(&g.logFormat, "log-format", "text", "Log format (text, json)")
	pf.StringVar(&g.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :2112")
	pf.DurationVar(&g.timeout, "timeout", 0, "Interrupt classification after this duration")

	rootCmd.AddCommand(
		newClassifyCommand(g),
		newTaxonomyCommand(g),
		newQueryCommand(g),
		newRepairsCommand(g),
		newWatchCommand(g),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "elgo version %s\n", version)
			},
		},
	)
	return rootCmd
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

func (g *globalOptions) logger(cmd *cobra.Command) (*elgo.Logger, error) {
	level, err := parseLevel(g.logLevel)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	switch g.logFormat {
	case "json":
		return elgo.NewLogger(slog.NewJSONHandler(cmd.ErrOrStderr(), opts)), nil
	case "text", "":
		return elgo.NewLogger(slog.NewTextHandler(cmd.ErrOrStderr(), opts)), nil
	}
	return nil, fmt.Errorf("unknown log format %q", g.logFormat)
}

// session is a loaded ontology with a reasoner over it.
type session struct {
	doc      *document.Document
	files    []string
	ont      *document.Ontology
	reasoner *elgo.Reasoner
	logger   *elgo.Logger
	stop     func()
}

func (s *session) Close() {
	_ = s.reasoner.Close()
	if s.stop != nil {
		s.stop()
	}
}

// open loads the documents matching patterns and creates a reasoner. Static
// axioms are applied to the index; changing axioms are added to the reasoner
// so they can be retracted later. With allChanging every axiom is added to
// the reasoner.
func (g *globalOptions) open(cmd *cobra.Command, patterns []string, allChanging bool) (*session, error) {
	logger, err := g.logger(cmd)
	if err != nil {
		return nil, err
	}
	doc, files, err := document.Load(patterns...)
	if err != nil {
		return nil, err
	}
	ont, err := doc.Build(nil)
	if err != nil {
		return nil, err
	}

	changing := ont.Changing
	if allChanging {
		changing = append(append([]ontology.Axiom{}, ont.Static...), ont.Changing...)
	} else if err := ont.ApplyStatic(); err != nil {
		return nil, err
	}

	s := &session{doc: doc, files: files, ont: ont, logger: logger}
	opts := []elgo.Option{elgo.WithWorkers(g.workers), elgo.WithLogger(logger)}
	if g.metricsAddr != "" {
		stop, obs, err := serveMetrics(g.metricsAddr, logger)
		if err != nil {
			return nil, err
		}
		s.stop = stop
		opts = append(opts, elgo.WithMetricsObserver(obs))
	}

	s.reasoner = elgo.New(ont.Index, opts...)
	if err := s.reasoner.AddAxioms(changing...); err != nil {
		s.Close()
		return nil, err
	}
	logger.Debug("documents loaded", "files", len(files), "static", len(ont.Static), "changing", len(ont.Changing))
	return s, nil
}

// runContext bounds ctx by --timeout.
func (g *globalOptions) runContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout > 0 {
		return context.WithTimeout(ctx, g.timeout)
	}
	return context.WithCancel(ctx)
}

func serveMetrics(addr string, logger *elgo.Logger) (func(), *elgoprom.Observer, error) {
	reg := prometheus.NewRegistry()
	obs := elgoprom.NewObserver(reg)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", ln.Addr().String())

	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
	return stop, obs, nil
}
