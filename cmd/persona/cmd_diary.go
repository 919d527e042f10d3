package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/danielpatrickdp/persona-fusion/internal/diary"
	"github.com/danielpatrickdp/persona-fusion/internal/state"
	"github.com/spf13/cobra"
)

func newDiaryCmd(opts *rootOptions) *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "diary",
		Short: "Write, search and summarise diary entries",
	}
	cmd.PersistentFlags().StringVar(&userID, "user", "", "user ID (required)")
	_ = cmd.MarkPersistentFlagRequired("user")

	cmd.AddCommand(
		newDiaryAddCmd(opts, &userID),
		newDiaryListCmd(opts, &userID),
		newDiarySearchCmd(opts, &userID),
		newDiaryStatsCmd(opts, &userID),
	)
	return cmd
}

func newDiaryAddCmd(opts *rootOptions, userID *string) *cobra.Command {
	var (
		mood       string
		activities []string
		tags       []string
	)
	cmd := &cobra.Command{
		Use:   "add <text...>",
		Short: "Add an entry; activities are detected from the text when not given",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			entry := diary.Entry{
				Content:    strings.Join(args, " "),
				Mood:       mood,
				Activities: activities,
				Tags:       tags,
			}
			// stamp the entry with the active persona and its weather
			if snap, err := a.store.Latest(*userID); err == nil {
				entry.Persona = snap.Result.Archetype.Code
				if snap.Context != nil {
					entry.Weather = snap.Context.Weather
				}
			} else if !errors.Is(err, state.ErrNoSnapshot) {
				return err
			}

			saved, err := a.diary.Add(*userID, entry)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return printJSON(out, saved)
			}
			fmt.Fprintf(out, "Saved %s (activities: %s)\n", saved.ID, orDash(strings.Join(saved.Activities, ", ")))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&mood, "mood", "", "mood label, e.g. calm, happy, tired")
	f.StringSliceVar(&activities, "activity", nil, "activities (repeatable)")
	f.StringSliceVar(&tags, "tag", nil, "tags (repeatable)")
	return cmd
}

func newDiaryListCmd(opts *rootOptions, userID *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			entries, err := a.diary.List(*userID, limit)
			if err != nil {
				return err
			}
			return printEntries(cmd.OutOrStdout(), entries, opts.jsonOut)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries to show")
	return cmd
}

func newDiarySearchCmd(opts *rootOptions, userID *string) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Find entries whose content, tags or activities contain query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			entries, err := a.diary.Search(*userID, strings.Join(args, " "))
			if err != nil {
				return err
			}
			return printEntries(cmd.OutOrStdout(), entries, opts.jsonOut)
		},
	}
}

func newDiaryStatsCmd(opts *rootOptions, userID *string) *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show mood distribution and most frequent activities",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			stats, err := a.diary.Stats(*userID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return printJSON(out, stats)
			}
			fmt.Fprintf(out, "Entries: %d\n", stats.Total)

			moods := diary.Stats{ActivityFrequency: stats.MoodDistribution}.TopActivities(0)
			t := newTable(out)
			t.AppendHeader([]any{"MOOD", "COUNT"})
			for _, m := range moods {
				t.AppendRow([]any{m.Label, m.N})
			}
			t.Render()

			t = newTable(out)
			t.AppendHeader([]any{"ACTIVITY", "COUNT"})
			for _, c := range stats.TopActivities(top) {
				t.AppendRow([]any{c.Label, c.N})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().IntVar(&top, "top", 5, "number of activities to show")
	return cmd
}

func printEntries(out io.Writer, entries []diary.Entry, asJSON bool) error {
	if asJSON {
		return printJSON(out, entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No entries")
		return nil
	}
	t := newTable(out)
	t.AppendHeader([]any{"CREATED", "MOOD", "PERSONA", "ACTIVITIES", "CONTENT"})
	for _, e := range entries {
		t.AppendRow([]any{
			e.CreatedAt.Local().Format(time.DateTime), orDash(e.Mood), orDash(e.Persona),
			orDash(strings.Join(e.Activities, ", ")), truncate(e.Content, 48),
		})
	}
	t.Render()
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
