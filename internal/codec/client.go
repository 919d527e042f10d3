package codec

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region types
// ImageResult holds the response from a GenerateImage RPC call.
type ImageResult struct {
	URL    string
	Prompt string
	Model  string
}

// IntentResult holds the response from a ClassifyIntent RPC call.
type IntentResult struct {
	Intent     string
	Confidence float64
}
// #endregion types

// #region client-struct
// CodecClient wraps the gRPC connection to the creative service.
type CodecClient struct {
	conn *grpc.ClientConn
	cc   grpc.ClientConnInterface
}
// #endregion client-struct

// #region constructor
// NewCodecClient connects to the creative service at addr. The connection
// is established lazily on the first call.
func NewCodecClient(addr string, opts ...grpc.DialOption) (*CodecClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &CodecClient{conn: conn, cc: conn}, nil
}

// NewCodecClientWithConn creates a CodecClient over an existing connection.
// Close is then a no-op; the caller owns cc.
func NewCodecClientWithConn(cc grpc.ClientConnInterface) *CodecClient {
	return &CodecClient{cc: cc}
}
// #endregion constructor

// #region close
// Close shuts down the gRPC connection.
func (c *CodecClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
// #endregion close

// #region generate-image
// GenerateImage asks the service for a persona portrait. scores are the
// per-archetype match ratios of the classification.
func (c *CodecClient) GenerateImage(ctx context.Context, personaCode string, scores map[string]float64, prompt string) (ImageResult, error) {
	scoreFields := make(map[string]any, len(scores))
	for k, v := range scores {
		scoreFields[k] = v
	}
	req, err := structpb.NewStruct(map[string]any{
		"persona_code": personaCode,
		"scores":       scoreFields,
		"prompt":       prompt,
	})
	if err != nil {
		return ImageResult{}, fmt.Errorf("build image request: %w", err)
	}

	resp := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, generateImageMethod, req, resp); err != nil {
		return ImageResult{}, fmt.Errorf("generate image rpc: %w", err)
	}

	url := resp.GetFields()["url"].GetStringValue()
	if url == "" {
		return ImageResult{}, fmt.Errorf("generate image rpc: empty url")
	}
	return ImageResult{
		URL:    url,
		Prompt: resp.GetFields()["prompt"].GetStringValue(),
		Model:  resp.GetFields()["model"].GetStringValue(),
	}, nil
}
// #endregion generate-image

// #region classify-intent
// ClassifyIntent asks the service for the intent label of text.
func (c *CodecClient) ClassifyIntent(ctx context.Context, text string) (IntentResult, error) {
	req, err := structpb.NewStruct(map[string]any{"text": text})
	if err != nil {
		return IntentResult{}, fmt.Errorf("build intent request: %w", err)
	}

	resp := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, classifyIntentMethod, req, resp); err != nil {
		return IntentResult{}, fmt.Errorf("classify intent rpc: %w", err)
	}

	intent := resp.GetFields()["intent"].GetStringValue()
	if intent == "" {
		return IntentResult{}, fmt.Errorf("classify intent rpc: empty intent")
	}
	return IntentResult{
		Intent:     intent,
		Confidence: resp.GetFields()["confidence"].GetNumberValue(),
	}, nil
}
// #endregion classify-intent
