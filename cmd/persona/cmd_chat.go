package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danielpatrickdp/persona-fusion/internal/advisor"
	"github.com/danielpatrickdp/persona-fusion/internal/diary"
	"github.com/danielpatrickdp/persona-fusion/internal/environment"
	"github.com/danielpatrickdp/persona-fusion/internal/orchestrator"
	"github.com/danielpatrickdp/persona-fusion/internal/state"
	"github.com/spf13/cobra"
)

// #region chat-cmd

func newChatCmd(opts *rootOptions) *cobra.Command {
	var (
		userID string
		loc    locationFlags
	)
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive session: each message is routed by intent",
		RunE: func(cmd *cobra.Command, _ []string) error {
			location, err := loc.location(cmd)
			if err != nil {
				return err
			}
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			sess := &chatSession{app: a, userID: userID, location: location}

			fmt.Fprintln(out, "Persona chat ready.")
			fmt.Fprintf(out, "  DB: %s | User: %s\n", a.cfg.DBPath, userID)
			fmt.Fprintln(out, "Type a message (or 'quit' to exit):")

			scanner := bufio.NewScanner(cmd.InOrStdin())
			turnNum := 0
			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					break
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "quit" || line == "exit" {
					break
				}
				turnNum++

				ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
				class, reply, err := sess.turn(ctx, line)
				cancel()
				if err != nil {
					fmt.Fprintf(out, "error: %v\n", err)
					continue
				}
				fmt.Fprintf(out, "\n%s\n\n", reply)
				fmt.Fprintf(out, "[turn-%d] intent=%s source=%s confidence=%.2f\n",
					turnNum, class.Intent, class.Source, class.Confidence)
			}
			return scanner.Err()
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user ID (required)")
	loc.register(cmd)
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

// #endregion chat-cmd

// #region chat-session

// chatSession dispatches one user's messages by routed intent.
type chatSession struct {
	app      *app
	userID   string
	location *environment.Location
}

func (s *chatSession) turn(ctx context.Context, line string) (orchestrator.IntentClassification, string, error) {
	class := s.app.orch.RouteIntent(ctx, s.userID, line)
	var (
		reply string
		err   error
	)
	switch class.Intent {
	case orchestrator.IntentAnalyze:
		reply, err = s.analyze(ctx, line)
	case orchestrator.IntentDiary:
		reply, err = s.writeDiary(line)
	case orchestrator.IntentWeather:
		reply = s.weather(ctx)
	case orchestrator.IntentRecommend:
		reply, err = s.recommend(ctx)
	case orchestrator.IntentImage:
		reply, err = s.portrait(ctx)
	default:
		reply = "Ask about your persona, the weather or what to do today, or tell me about your day."
	}
	return class, reply, err
}

func (s *chatSession) analyze(ctx context.Context, line string) (string, error) {
	resp, err := s.app.orch.Analyze(ctx, orchestrator.AnalyzeRequest{
		UserID:   s.userID,
		Text:     &line,
		Location: s.location,
		Trigger:  "chat",
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("You read as %s (confidence %.2f).\n%s",
		archetypeLabel(resp.Result.Archetype), resp.Result.Confidence, resp.Evolution.Summary), nil
}

func (s *chatSession) writeDiary(line string) (string, error) {
	entry := diary.Entry{Content: line}
	if snap, err := s.app.store.Latest(s.userID); err == nil {
		entry.Persona = snap.Result.Archetype.Code
	}
	saved, err := s.app.diary.Add(s.userID, entry)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Saved to your diary (activities: %s).", orDash(strings.Join(saved.Activities, ", "))), nil
}

func (s *chatSession) weather(ctx context.Context) string {
	if s.location == nil {
		return "Start the chat with --lat and --lon to get local weather."
	}
	w := s.app.aggregator.GetContext(ctx, *s.location, time.Time{}).Weather
	lines := []string{fmt.Sprintf("%s, %.1f°C, risk %s.", w.Reading.Description, w.Reading.Temperature, w.RiskLevel)}
	lines = append(lines, w.Impacts.Health...)
	return strings.Join(lines, "\n")
}

func (s *chatSession) recommend(ctx context.Context) (string, error) {
	snap, err := s.app.store.Latest(s.userID)
	if errors.Is(err, state.ErrNoSnapshot) {
		return "Tell me a little about yourself first so I can find your persona.", nil
	}
	if err != nil {
		return "", err
	}
	var envCtx environment.Context
	if s.location != nil {
		envCtx = s.app.aggregator.GetContext(ctx, *s.location, time.Time{})
	} else {
		envCtx = environment.Context{
			Weather:      environment.FallbackWeather(),
			Cultural:     environment.FallbackCultural(environment.DefaultCountry),
			Economic:     environment.FallbackEconomic(environment.DefaultCountry),
			Geopolitical: environment.FallbackGeopolitical(environment.DefaultCountry),
			Country:      environment.DefaultCountry,
			Degraded:     true,
		}
	}
	return advisor.Render(advisor.GenerateComprehensiveRecommendations(snap.Result.Archetype.Code, envCtx)), nil
}

func (s *chatSession) portrait(ctx context.Context) (string, error) {
	snap, err := s.app.store.Latest(s.userID)
	if errors.Is(err, state.ErrNoSnapshot) {
		return "There is no persona to draw yet.", nil
	}
	if err != nil {
		return "", err
	}
	img := s.app.portraits.Portrait(ctx, snap.Result)
	return fmt.Sprintf("Portrait (%s): %s", img.Source, img.URL), nil
}

// #endregion chat-session
