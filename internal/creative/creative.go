package creative

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/danielpatrickdp/persona-fusion/internal/codec"
	"github.com/danielpatrickdp/persona-fusion/internal/persona"
	"go.uber.org/zap"
)

// #region types

// Image is a generated or placeholder persona portrait.
type Image struct {
	URL         string `json:"url"`
	PersonaCode string `json:"persona_code"`
	Prompt      string `json:"prompt"`
	Source      string `json:"source"` // "codec" | "genai" | "placeholder"
}

// Imager produces a portrait for a persona code and its match ratios.
type Imager interface {
	GenerateImage(ctx context.Context, code string, scores map[string]float64, prompt string) (Image, error)
}

// #endregion types

// #region placeholder

// PlaceholderURL is the static portrait served when generation is unavailable.
func PlaceholderURL(code string) string {
	if code == "" {
		code = "unknown"
	}
	return fmt.Sprintf("/static/personas/%s.png", strings.ToLower(code))
}

// Placeholder returns the static image for code.
func Placeholder(code, prompt string) Image {
	return Image{URL: PlaceholderURL(code), PersonaCode: code, Prompt: prompt, Source: "placeholder"}
}

// #endregion placeholder

// #region prompt

// BuildPrompt describes the archetype for an image model. Secondary
// archetypes scoring at least 0.7 are mentioned as undertones.
func BuildPrompt(r persona.Result) string {
	a := r.Archetype
	var b strings.Builder
	fmt.Fprintf(&b, "Portrait illustration of %s (%s): %s", a.Name, a.LocalizedName, a.Description)

	var undertones []string
	for _, s := range r.Ranked() {
		if s.Code != a.Code && s.Ratio >= 0.7 {
			if other, ok := persona.Lookup(s.Code); ok {
				undertones = append(undertones, other.Name)
			}
		}
	}
	sort.Strings(undertones)
	if len(undertones) > 0 {
		fmt.Fprintf(&b, " with undertones of %s", strings.Join(undertones, " and "))
	}
	b.WriteString(". Soft lighting, warm palette, no text.")
	return b.String()
}

// #endregion prompt

// #region codec-imager

// CodecImager generates portraits through the gRPC creative service.
type CodecImager struct {
	client *codec.CodecClient
}

// NewCodecImager wraps client.
func NewCodecImager(client *codec.CodecClient) *CodecImager {
	return &CodecImager{client: client}
}

// GenerateImage calls the service.
func (c *CodecImager) GenerateImage(ctx context.Context, code string, scores map[string]float64, prompt string) (Image, error) {
	res, err := c.client.GenerateImage(ctx, code, scores, prompt)
	if err != nil {
		return Image{}, err
	}
	return Image{URL: res.URL, PersonaCode: code, Prompt: prompt, Source: "codec"}, nil
}

// #endregion codec-imager

// #region service

// Service always yields an image: any imager failure degrades to the
// placeholder.
type Service struct {
	imager Imager
	logger *zap.Logger
}

// NewService creates a service. A nil imager serves placeholders only.
func NewService(imager Imager, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{imager: imager, logger: logger.Named("creative")}
}

// Portrait returns an image for the classification.
func (s *Service) Portrait(ctx context.Context, r persona.Result) Image {
	code := r.Archetype.Code
	prompt := BuildPrompt(r)
	if s.imager == nil {
		return Placeholder(code, prompt)
	}
	img, err := s.imager.GenerateImage(ctx, code, r.Scores, prompt)
	if err != nil {
		s.logger.Warn("image generation failed, using placeholder",
			zap.String("persona", code), zap.Error(err))
		return Placeholder(code, prompt)
	}
	return img
}

// #endregion service
