package main

import (
	"fmt"

	"github.com/danielpatrickdp/persona-fusion/internal/advisor"
	"github.com/danielpatrickdp/persona-fusion/internal/orchestrator"
	"github.com/danielpatrickdp/persona-fusion/internal/signals"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var (
		userID   string
		facial   map[string]string
		text     string
		cond     signals.Conditions
		loc      locationFlags
		portrait bool
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Classify one observation and store it as the user's active persona",
		Example: `  persona analyze --user u1 --facial eyes=deep,overall=thoughtful
  persona analyze --user u1 --text "분석적이고 체계적인 편" --lat 37.57 --lon 126.98`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			location, err := loc.location(cmd)
			if err != nil {
				return err
			}
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}

			req := orchestrator.AnalyzeRequest{
				UserID:   userID,
				Location: location,
				Portrait: portrait,
				Trigger:  "cli",
			}
			if len(facial) > 0 {
				req.Facial = signals.FacialFeatures(facial)
			}
			if cmd.Flags().Changed("text") {
				req.Text = &text
			}
			if cond != (signals.Conditions{}) {
				req.Conditions = &cond
			}

			resp, err := a.orch.Analyze(cmd.Context(), req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return printJSON(out, resp)
			}

			fmt.Fprintf(out, "Persona:     %s\n", archetypeLabel(resp.Result.Archetype))
			fmt.Fprintf(out, "Confidence:  %.2f\n", resp.Result.Confidence)
			fmt.Fprintf(out, "Vector:      %s\n", resp.Result.Final)
			fmt.Fprintf(out, "Scores:      %s\n", formatScores(resp.Result))
			if resp.Conditions != nil {
				fmt.Fprintf(out, "Conditions:  weather=%s time=%s season=%s\n",
					resp.Conditions.Weather, resp.Conditions.TimeOfDay, resp.Conditions.Season)
			}
			fmt.Fprintf(out, "Evolution:   %s\n", resp.Evolution.Summary)
			fmt.Fprintf(out, "Version:     %s\n", resp.VersionID)
			if resp.Portrait != nil {
				fmt.Fprintf(out, "Portrait:    %s (%s)\n", resp.Portrait.URL, resp.Portrait.Source)
			}
			if resp.Recommendations != nil {
				fmt.Fprintf(out, "\n%s", advisor.Render(*resp.Recommendations))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&userID, "user", "", "user ID (required)")
	f.StringToStringVar(&facial, "facial", nil, "facial feature tags, e.g. eyes=deep,jaw=round")
	f.StringVar(&text, "text", "", "free text written by the user")
	f.StringVar((*string)(&cond.Weather), "weather", "", "override weather: sunny|clear|cloudy|rainy|snowy|stormy|foggy")
	f.StringVar((*string)(&cond.TimeOfDay), "time-of-day", "", "override time of day: morning|afternoon|evening|night")
	f.StringVar((*string)(&cond.Season), "season", "", "override season: spring|summer|autumn|winter")
	f.BoolVar(&portrait, "portrait", false, "generate a portrait image")
	loc.register(cmd)
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
