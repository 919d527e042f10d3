package main

import (
	"fmt"

	"github.com/danielpatrickdp/persona-fusion/internal/logging"
	"github.com/danielpatrickdp/persona-fusion/internal/replay"
	"github.com/spf13/cobra"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		userID string
		last   int
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export-fixture",
		Short: "Write a user's logged analyses as a replay fixture",
		Long: "export-fixture reads the most recent analysis log rows for a user and\n" +
			"writes them as a YAML fixture whose expectations are the logged outcomes.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if last <= 0 {
				return fmt.Errorf("--last must be positive, got %d", last)
			}
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			entries, err := logging.ListAnalyses(a.store.DB(), userID, last)
			if err != nil {
				return err
			}
			f, err := replay.FromAnalyses(userID, entries)
			if err != nil {
				return err
			}
			if err := replay.WriteFixture(f, out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d observations to %s\n", len(f.Observations), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user ID")
	cmd.Flags().IntVar(&last, "last", 20, "number of most recent analyses to export")
	cmd.Flags().StringVar(&out, "out", "fixture.yaml", "output path")
	cmd.MarkFlagRequired("user")
	return cmd
}
