package cmd

import (
	"github.com/foomo/keel/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewDumpCommand() *cobra.Command {
	v := newViper()
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Load the site once and print it as json",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l := log.Logger()
			s := newSite(l, v)
			if err := s.Load(cmd.Context(), nil); err != nil {
				return err
			}
			if err := s.WriteExport(cmd.OutOrStdout()); err != nil {
				return err
			}
			l.Debug("dumped site", zap.Int("num_models", s.Len()))
			return nil
		},
	}

	addSiteFlags(cmd.Flags(), v)

	return cmd
}
