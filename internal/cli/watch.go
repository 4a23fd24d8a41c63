package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hupe1980/elgo/document"
	"github.com/hupe1980/elgo/ontology"
	"github.com/spf13/cobra"
)

func newWatchCommand(g *globalOptions) *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch FILES...",
		Short: "Reclassify incrementally whenever the documents change",
		Long: `Classify the documents, then watch their directories and reclassify after
every change. Each reload diffs the axioms against the previous version and
applies only the difference, so unchanged parts of the hierarchy are not
recomputed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := g.open(cmd, args, true)
			if err != nil {
				return err
			}
			defer s.Close()

			w := newWatcher(g, s, args)
			out := cmd.OutOrStdout()
			if err := w.classify(ctx, out, 0, 0); err != nil {
				return err
			}
			return w.run(ctx, out, debounce)
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", 300*time.Millisecond, "Wait this long for more changes before reloading")
	return cmd
}

type watcher struct {
	g        *globalOptions
	s        *session
	patterns []string
	axioms   []ontology.Axiom
}

func newWatcher(g *globalOptions, s *session, patterns []string) *watcher {
	return &watcher{
		g:        g,
		s:        s,
		patterns: patterns,
		axioms:   append(slices.Clone(s.ont.Static), s.ont.Changing...),
	}
}

func (w *watcher) run(ctx context.Context, out io.Writer, debounce time.Duration) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	watched := map[string]bool{}
	watchDirs := func() {
		for _, f := range w.s.files {
			dir := filepath.Dir(f)
			if watched[dir] {
				continue
			}
			if err := fsw.Add(dir); err != nil {
				w.s.logger.Warn("failed to watch directory", "path", dir, "error", err)
				continue
			}
			watched[dir] = true
			w.s.logger.Debug("watching directory", "path", dir)
		}
	}
	watchDirs()

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !isDocument(ev.Name) || (ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write)) {
				continue
			}
			w.s.logger.Debug("document change detected", "path", ev.Name, "op", ev.Op.String())
			timer.Reset(debounce)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.s.logger.Error("watcher error", "error", err)
		case <-timer.C:
			if err := w.reload(ctx, out); err != nil {
				w.s.logger.Error("reload failed", "error", err)
				fmt.Fprintf(out, "reload failed: %v\n", err)
				continue
			}
			watchDirs()
		}
	}
}

// reload reads the documents again and applies the axiom difference to the
// reasoner. On error the reasoner keeps the previous axioms.
func (w *watcher) reload(ctx context.Context, out io.Writer) error {
	doc, files, err := document.Load(w.patterns...)
	if err != nil {
		return err
	}
	ont, err := doc.Build(w.s.ont.Index)
	if err != nil {
		return err
	}
	next := append(slices.Clone(ont.Static), ont.Changing...)
	added, removed := document.Diff(w.axioms, next)

	if err := w.s.reasoner.RemoveAxioms(removed...); err != nil {
		return err
	}
	if err := w.s.reasoner.AddAxioms(added...); err != nil {
		// Put the retracted axioms back so the reasoner matches w.axioms.
		if rerr := w.s.reasoner.AddAxioms(removed...); rerr != nil {
			w.s.logger.Error("restoring axioms failed", "error", rerr)
		}
		return err
	}
	w.axioms = next
	w.s.doc, w.s.files, w.s.ont = doc, files, ont
	return w.classify(ctx, out, len(added), len(removed))
}

func (w *watcher) classify(ctx context.Context, out io.Writer, added, removed int) error {
	ctx, cancel := w.g.runContext(ctx)
	defer cancel()
	res, err := w.s.reasoner.Classify(ctx)
	if err != nil {
		return err
	}
	mode := "full"
	if res.Incremental != nil && !res.Incremental.FullReset {
		mode = fmt.Sprintf("incremental, %d invalidated", res.Incremental.Invalidated)
	}
	fmt.Fprintf(out, "%s +%d -%d axioms (%s): complete=%t consistent=%t contexts=%d in %s\n",
		time.Now().Format(time.TimeOnly), added, removed, mode,
		res.Complete, res.Consistent, res.Contexts, res.Duration.Round(time.Microsecond))
	return nil
}

func isDocument(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".zst", ".lz4":
		ext = strings.ToLower(filepath.Ext(strings.TrimSuffix(path, filepath.Ext(path))))
	}
	return ext == ".yaml" || ext == ".yml"
}
