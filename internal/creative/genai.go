package creative

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// DefaultImageModel is used when no model is configured.
const DefaultImageModel = "imagen-3.0-generate-002"

// imageModels is the subset of *genai.Models the imager uses.
type imageModels interface {
	GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// GenAIImager generates portraits with Google's image models.
type GenAIImager struct {
	models imageModels
	model  string
}

// NewGenAIImager creates an imager backed by the Gemini API.
func NewGenAIImager(ctx context.Context, apiKey, model string) (*GenAIImager, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return newGenAIImager(client.Models, model), nil
}

func newGenAIImager(models imageModels, model string) *GenAIImager {
	if model == "" {
		model = DefaultImageModel
	}
	return &GenAIImager{models: models, model: model}
}

// GenerateImage returns the first generated image as a data URL.
func (g *GenAIImager) GenerateImage(ctx context.Context, code string, _ map[string]float64, prompt string) (Image, error) {
	resp, err := g.models.GenerateImages(ctx, g.model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		return Image{}, fmt.Errorf("GenAI image generation failed: %w", err)
	}
	if resp == nil || len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return Image{}, errors.New("no images returned")
	}
	img := resp.GeneratedImages[0].Image
	if len(img.ImageBytes) == 0 {
		return Image{}, errors.New("empty image returned")
	}
	mime := img.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	url := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(img.ImageBytes))
	return Image{URL: url, PersonaCode: code, Prompt: prompt, Source: "genai"}, nil
}
