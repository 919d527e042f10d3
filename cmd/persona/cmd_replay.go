package main

import (
	"fmt"

	"github.com/danielpatrickdp/persona-fusion/internal/replay"
	"github.com/spf13/cobra"
)

func newReplayCmd(opts *rootOptions) *cobra.Command {
	var (
		persist bool
		userID  string
	)
	cmd := &cobra.Command{
		Use:   "replay <fixture.yaml>",
		Short: "Classify a fixture's observations in order and report archetype drift",
		Long: "replay runs every observation in a YAML fixture through the analyzers\n" +
			"and classifier. With --persist each observation is stored as a snapshot.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := replay.LoadFixture(args[0])
			if err != nil {
				return err
			}
			if userID == "" {
				userID = f.UserID
			}

			var results []replay.ReplayResult
			if persist {
				if userID == "" {
					return fmt.Errorf("fixture %s has no user_id; pass --user", args[0])
				}
				a, err := opts.load(cmd)
				if err != nil {
					return err
				}
				results, err = replay.Persist(cmd.Context(), a.orch, userID, f.Observations)
				if err != nil {
					return err
				}
			} else {
				results, err = replay.Replay(f.Observations)
				if err != nil {
					return err
				}
			}
			summary := replay.Summarize(results)

			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return printJSON(out, map[string]any{"results": results, "summary": summary})
			}
			if f.Description != "" {
				fmt.Fprintf(out, "%s\n", f.Description)
			}
			t := newTable(out)
			t.AppendHeader([]any{"OBSERVATION", "PERSONA", "CONFIDENCE", "ACTION", "EVOLUTION"})
			for _, r := range results {
				t.AppendRow([]any{
					r.ObservationID, r.Result.Archetype.Code,
					fmt.Sprintf("%.2f", r.Result.Confidence), r.Action, truncate(r.Evolution.Summary, 60),
				})
			}
			t.Render()
			fmt.Fprintf(out, "observations=%d switches=%d drifts=%d stable=%d longest_run=%d final=%s\n",
				summary.TotalObservations, summary.Switches, summary.Drifts, summary.Stable,
				summary.LongestStableRun, summary.FinalCode)

			mismatches := 0
			for i, exp := range f.Expected {
				if i >= len(results) {
					break
				}
				r := results[i]
				if r.Result.Archetype.Code != exp.Archetype || r.Action != exp.Action {
					mismatches++
					fmt.Fprintf(out, "MISMATCH %s: got %s/%s, expected %s/%s\n",
						exp.ID, r.Result.Archetype.Code, r.Action, exp.Archetype, exp.Action)
				}
			}
			if mismatches > 0 {
				return fmt.Errorf("%d observations differ from the fixture's expectations", mismatches)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&persist, "persist", false, "store each observation as a snapshot")
	cmd.Flags().StringVar(&userID, "user", "", "user ID (defaults to the fixture's user_id)")
	return cmd
}
