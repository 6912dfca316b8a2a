// Package google adapts model.ChatModel (and model.Embedder) to Google's
// Generative AI API.
package google

import (
	"context"
	"fmt"

	"github.com/arborist-dev/cellgraph/model"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ChatModel implements model.ChatModel and model.Embedder against Gemini.
type ChatModel struct {
	apiKey    string
	modelName string
}

// NewChatModel returns a ChatModel using apiKey, targeting modelName (an
// empty modelName defaults to "gemini-1.5-pro").
func NewChatModel(apiKey, modelName string) *ChatModel {
	if modelName == "" {
		modelName = "gemini-1.5-pro"
	}
	return &ChatModel{apiKey: apiKey, modelName: modelName}
}

func (m *ChatModel) Chat(ctx context.Context, messages []model.Message, tools []model.ToolSpec) (model.ChatOut, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(m.apiKey))
	if err != nil {
		return model.ChatOut{}, fmt.Errorf("google: new client: %w", err)
	}
	defer client.Close()

	genModel := client.GenerativeModel(m.modelName)
	if len(tools) > 0 {
		genModel.Tools = convertTools(tools)
	}

	resp, err := genModel.GenerateContent(ctx, convertMessages(messages)...)
	if err != nil {
		return model.ChatOut{}, fmt.Errorf("google: generate content: %w", err)
	}
	return convertResponse(resp), nil
}

// Embed implements model.Embedder using Gemini's embedding model.
func (m *ChatModel) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(m.apiKey))
	if err != nil {
		return nil, fmt.Errorf("google: new client: %w", err)
	}
	defer client.Close()

	em := client.EmbeddingModel("text-embedding-004")
	out := make([][]float64, len(texts))
	for i, text := range texts {
		res, err := em.EmbedContent(ctx, genai.Text(text))
		if err != nil {
			return nil, fmt.Errorf("google: embed content: %w", err)
		}
		vec := make([]float64, len(res.Embedding.Values))
		for j, v := range res.Embedding.Values {
			vec[j] = float64(v)
		}
		out[i] = vec
	}
	return out, nil
}

func convertMessages(messages []model.Message) []genai.Part {
	parts := make([]genai.Part, 0, len(messages))
	for _, msg := range messages {
		parts = append(parts, genai.Text(msg.Content))
	}
	return parts
}

func convertTools(tools []model.ToolSpec) []*genai.Tool {
	decls := make([]*genai.FunctionDeclaration, len(tools))
	for i, t := range tools {
		decls[i] = &genai.FunctionDeclaration{Name: t.Name, Description: t.Description}
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

func convertResponse(resp *genai.GenerateContentResponse) model.ChatOut {
	var out model.ChatOut
	if len(resp.Candidates) == 0 {
		return out
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			out.Text += string(p)
		case genai.FunctionCall:
			out.ToolCalls = append(out.ToolCalls, model.ToolCall{Name: p.Name, Input: p.Args})
		}
	}
	return out
}
