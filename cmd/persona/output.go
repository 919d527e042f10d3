package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/danielpatrickdp/persona-fusion/internal/environment"
	"github.com/danielpatrickdp/persona-fusion/internal/persona"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// #region output

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	return t
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatScores(r persona.Result) string {
	ranked := r.Ranked()
	parts := make([]string, 0, len(ranked))
	for _, s := range ranked {
		parts = append(parts, fmt.Sprintf("%s %.2f", s.Code, s.Ratio))
	}
	return strings.Join(parts, " | ")
}

func archetypeLabel(a persona.Archetype) string {
	return fmt.Sprintf("%s (%s) %s", a.Name, a.Code, a.LocalizedName)
}

// #endregion output

// #region location-flags

type locationFlags struct {
	lat, lon float64
}

func (l *locationFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&l.lat, "lat", 0, "latitude in decimal degrees")
	cmd.Flags().Float64Var(&l.lon, "lon", 0, "longitude in decimal degrees")
}

// location returns nil when neither flag was given.
func (l *locationFlags) location(cmd *cobra.Command) (*environment.Location, error) {
	latSet, lonSet := cmd.Flags().Changed("lat"), cmd.Flags().Changed("lon")
	if !latSet && !lonSet {
		return nil, nil
	}
	if latSet != lonSet {
		return nil, errors.New("--lat and --lon must be given together")
	}
	loc := environment.Location{Latitude: l.lat, Longitude: l.lon}
	if !loc.Valid() {
		return nil, fmt.Errorf("location %s is off the globe", loc.Key())
	}
	return &loc, nil
}

// #endregion location-flags
