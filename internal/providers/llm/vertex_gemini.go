package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	vertexgenai "cloud.google.com/go/vertexai/genai"
)

// VertexGemini runs the agent on Vertex AI Gemini models. Profile model names
// that are not Gemini models fall back to the configured default.
type VertexGemini struct {
	client       *vertexgenai.Client
	defaultModel string
}

func NewVertexGemini(ctx context.Context, projectID, location, defaultModel string) (*VertexGemini, error) {
	c, err := vertexgenai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, err
	}
	if defaultModel == "" {
		defaultModel = "gemini-1.5-flash"
	}
	return &VertexGemini{client: c, defaultModel: defaultModel}, nil
}

var _ Provider = (*VertexGemini)(nil)

func (v *VertexGemini) Close() error { return v.client.Close() }

func (v *VertexGemini) Complete(ctx context.Context, req Request) (*Response, error) {
	name := req.Model
	if !strings.HasPrefix(name, "gemini") {
		name = v.defaultModel
	}
	model := v.client.GenerativeModel(name)
	if req.Temperature > 0 {
		model.SetTemperature(float32(req.Temperature))
	}
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if !req.ForceText && len(req.Tools) > 0 {
		decls := make([]*vertexgenai.FunctionDeclaration, 0, len(req.Tools))
		for _, spec := range req.Tools {
			decls = append(decls, &vertexgenai.FunctionDeclaration{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters:  toGeminiSchema(spec.Parameters),
			})
		}
		model.Tools = []*vertexgenai.Tool{{FunctionDeclarations: decls}}
	}

	var system []string
	var history []*vertexgenai.Content
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
		case RoleUser:
			history = append(history, &vertexgenai.Content{
				Role:  "user",
				Parts: []vertexgenai.Part{vertexgenai.Text(m.Content)},
			})
		case RoleAssistant:
			parts := make([]vertexgenai.Part, 0, 1+len(m.ToolCalls))
			if m.Content != "" {
				parts = append(parts, vertexgenai.Text(m.Content))
			}
			for _, tc := range m.ToolCalls {
				args := map[string]any{}
				_ = json.Unmarshal([]byte(tc.Arguments), &args)
				parts = append(parts, vertexgenai.FunctionCall{Name: tc.Name, Args: args})
			}
			if len(parts) == 0 {
				continue
			}
			history = append(history, &vertexgenai.Content{Role: "model", Parts: parts})
		case RoleTool:
			resp := map[string]any{}
			if err := json.Unmarshal([]byte(m.Content), &resp); err != nil {
				resp = map[string]any{"result": m.Content}
			}
			history = append(history, &vertexgenai.Content{
				Role:  "user",
				Parts: []vertexgenai.Part{vertexgenai.FunctionResponse{Name: m.Name, Response: resp}},
			})
		}
	}
	if len(system) > 0 {
		model.SystemInstruction = &vertexgenai.Content{
			Parts: []vertexgenai.Part{vertexgenai.Text(strings.Join(system, "\n\n"))},
		}
	}
	if len(history) == 0 {
		return nil, fmt.Errorf("empty conversation")
	}

	cs := model.StartChat()
	cs.History = history[:len(history)-1]
	last := history[len(history)-1]

	resp, err := cs.SendMessage(ctx, last.Parts...)
	if err != nil {
		return nil, fmt.Errorf("vertex generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("vertex returned no candidates")
	}

	out := &Response{}
	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case vertexgenai.Text:
			out.Content += string(p)
		case vertexgenai.FunctionCall:
			args, err := json.Marshal(p.Args)
			if err != nil {
				args = []byte("{}")
			}
			out.ToolCalls = append(out.ToolCalls, ToolCall{
				ID:        fmt.Sprintf("call_%d", len(out.ToolCalls)),
				Name:      p.Name,
				Arguments: string(args),
			})
		}
	}
	if resp.UsageMetadata != nil {
		out.Usage = Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return out, nil
}

func toGeminiSchema(s ObjectSchema) *vertexgenai.Schema {
	out := &vertexgenai.Schema{
		Type:       vertexgenai.TypeObject,
		Properties: make(map[string]*vertexgenai.Schema, len(s.Properties)),
		Required:   s.Required,
	}
	for name, p := range s.Properties {
		out.Properties[name] = &vertexgenai.Schema{
			Type:        geminiType(p.Type),
			Description: p.Description,
		}
	}
	return out
}

func geminiType(t string) vertexgenai.Type {
	switch t {
	case "number":
		return vertexgenai.TypeNumber
	case "integer":
		return vertexgenai.TypeInteger
	case "boolean":
		return vertexgenai.TypeBoolean
	default:
		return vertexgenai.TypeString
	}
}
