package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/foomo/keel/log"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// NewChangesCommand loads the site and prints the directories the change
// detector reports, useful to debug what a running server would reload
func NewChangesCommand() *cobra.Command {
	v := newViper()
	cmd := &cobra.Command{
		Use:   "changes",
		Short: "Load the site and print changed directories on every poll",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l := log.Logger()
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			s := newSite(l, v)
			if err := s.Load(ctx, nil); err != nil {
				return err
			}
			l.Info("site loaded", zap.Int("num_models", s.Len()), zap.Strings("languages", s.Languages()))

			var (
				errs   error
				ticker = time.NewTicker(pollIntervalFlag(v))
				polls  = changesCountFlag(v)
			)
			defer ticker.Stop()
			for i := 0; polls <= 0 || i < polls; i++ {
				select {
				case <-ctx.Done():
					return errs
				case <-ticker.C:
				}
				changed, err := s.Refresh(ctx)
				if err != nil {
					l.Warn("poll failed", zap.Error(err))
					errs = multierr.Append(errs, err)
					continue
				}
				for _, dir := range changed {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), dir)
				}
			}
			return errs
		},
	}

	flags := cmd.Flags()
	addSiteFlags(flags, v)
	addPollIntervalFlag(flags, v)
	addChangesCountFlag(flags, v)

	return cmd
}
