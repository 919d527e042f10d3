package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/danielpatrickdp/persona-fusion/internal/state"
	"github.com/spf13/cobra"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var (
		userID string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List a user's persona snapshots, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			snaps, err := a.store.List(userID, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return printJSON(out, snaps)
			}
			if len(snaps) == 0 {
				fmt.Fprintf(out, "No snapshots for user %s\n", userID)
				return nil
			}

			active := ""
			if latest, err := a.store.Latest(userID); err == nil {
				active = latest.VersionID
			} else if !errors.Is(err, state.ErrNoSnapshot) {
				return err
			}

			t := newTable(out)
			t.AppendHeader([]any{"", "VERSION", "CREATED", "PERSONA", "CONFIDENCE", "WEATHER", "DEGRADED"})
			for _, s := range snaps {
				marker := ""
				if s.VersionID == active {
					marker = "*"
				}
				weather, degraded := "-", "-"
				if s.Context != nil {
					weather = fmt.Sprintf("%s %.0f°C", s.Context.Weather, s.Context.Temperature)
					degraded = fmt.Sprint(s.Context.Degraded)
				}
				t.AppendRow([]any{
					marker, s.VersionID, s.CreatedAt.Local().Format(time.DateTime),
					s.Result.Archetype.Code, fmt.Sprintf("%.2f", s.Result.Confidence), weather, degraded,
				})
			}
			t.AppendFooter([]any{"", fmt.Sprintf("%d snapshots", len(snaps))})
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user ID (required)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum snapshots to show")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newRollbackCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rollback <user> <version-id>",
		Short: "Make an earlier snapshot the user's active persona",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			userID, versionID := args[0], args[1]
			if err := a.store.Rollback(userID, versionID); err != nil {
				return fmt.Errorf("rollback %s to %s: %w", userID, versionID, err)
			}
			snap, err := a.store.Latest(userID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Active persona for %s is now %s (%s)\n",
				userID, snap.Result.Archetype.Code, snap.VersionID)
			return nil
		},
	}
}
