package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/brezhnevtusks/Unidork-sub000/internal/application/taxonomy"
	"github.com/brezhnevtusks/Unidork-sub000/internal/log"
	"github.com/brezhnevtusks/Unidork-sub000/internal/presentation"
	"github.com/brezhnevtusks/Unidork-sub000/internal/pubsub"
	"github.com/brezhnevtusks/Unidork-sub000/internal/watcher"
)

var watchVerbose bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reload the taxonomy whenever the YAML file changes",
	Long: `Watch taxonomy_file and replace the stored taxonomy every time the file
is saved. An invalid file is reported and the previous taxonomy is kept.

With --verbose, log lines and taxonomy change events are streamed to stderr.`,
	Args: cobra.NoArgs,
	RunE: withSession(func(cmd *cobra.Command, _ []string, s *session) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if watchVerbose {
			log.InitWriter(cmd.ErrOrStderr())
			log.SetMinLevel(log.ParseLevel(cfg.LogLevel))
			go printChanges(ctx, cmd, s.svc.Subscribe(ctx,
				pubsub.TaxonomyReloaded, pubsub.TagsRemoved, pubsub.EntityChanged))
		}

		if _, err := os.Stat(cfg.TaxonomyFile); err == nil {
			reload(ctx, cmd, s)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}

		w, err := watcher.New(watcher.Config{Path: cfg.TaxonomyFile, DebounceDur: cfg.Watch.Debounce})
		if err != nil {
			return err
		}
		defer func() { _ = w.Stop() }()

		changes, err := w.Start()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "watching %s (ctrl-c to stop)\n", cfg.TaxonomyFile)

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-changes:
				reload(ctx, cmd, s)
			}
		}
	}),
}

// reload replaces the taxonomy from the watched file. Failures are reported
// and watching continues.
func reload(ctx context.Context, cmd *cobra.Command, s *session) {
	result, err := s.svc.ReloadFile(ctx, cfg.TaxonomyFile)
	if err != nil {
		log.ErrorErr(log.CatWatcher, "Reload failed", err, "path", cfg.TaxonomyFile)
		fmt.Fprintln(cmd.ErrOrStderr(), "reload failed:", err)
		return
	}
	_ = s.out.FormatReloadResult(presentation.FromReloadResult(result))
}

func printChanges(ctx context.Context, cmd *cobra.Command, events <-chan pubsub.Event[taxonomy.Change]) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch {
			case ev.Payload.EntityID != "":
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", ev.Type, ev.Payload.EntityID)
			default:
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", ev.Type, ev.Payload.Tags)
			}
		}
	}
}

func init() {
	watchCmd.Flags().BoolVarP(&watchVerbose, "verbose", "v", false, "stream logs and change events to stderr")
	rootCmd.AddCommand(watchCmd)
}
