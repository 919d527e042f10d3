package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danielpatrickdp/persona-fusion/internal/environment"
	"github.com/spf13/cobra"
)

func newContextCmd(opts *rootOptions) *cobra.Command {
	var loc locationFlags
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Show weather, cultural, economic and geopolitical context for a location",
		RunE: func(cmd *cobra.Command, _ []string) error {
			location, err := loc.location(cmd)
			if err != nil {
				return err
			}
			if location == nil {
				return errors.New("--lat and --lon are required")
			}
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}

			c := a.aggregator.GetContext(cmd.Context(), *location, time.Time{})
			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return printJSON(out, c)
			}

			w := c.Weather
			fmt.Fprintf(out, "Location:  %s (%s)\n", location.Key(), c.Country)
			fmt.Fprintf(out, "Weather:   %s, %.1f°C, humidity %.0f%%, UV %.1f, AQI %d\n",
				w.Reading.Description, w.Reading.Temperature, w.Reading.Humidity, w.Reading.UVIndex, w.Reading.AirQuality)
			fmt.Fprintf(out, "Risk:      %s (score %d)\n", w.RiskLevel, w.RiskScore)
			fmt.Fprintf(out, "Culture:   %s, %s communication, values: %s\n",
				c.Cultural.Language, c.Cultural.CommunicationStyle, strings.Join(c.Cultural.Values, ", "))
			fmt.Fprintf(out, "Economy:   %s, inflation %.1f%%, sentiment %d, %s\n",
				c.Economic.Currency, c.Economic.InflationRate, c.Economic.ConsumerSentiment, c.Economic.Trend)
			fmt.Fprintf(out, "Stability: index %d, advisory level %d\n",
				c.Geopolitical.StabilityIndex, c.Geopolitical.AdvisoryLevel)

			t := newTable(out)
			t.AppendHeader([]any{"CATEGORY", "SOURCE"})
			for _, cat := range environment.Categories {
				t.AppendRow([]any{cat, c.Sources[cat]})
			}
			t.Render()
			if c.Degraded {
				fmt.Fprintln(out, "Some categories use fallback data.")
			}
			return nil
		},
	}
	loc.register(cmd)
	return cmd
}
