package llm

import "context"

// MockProvider is the offline stand-in used in development and tests.
// It never calls tools and answers with a fixed courtesy reply.
type MockProvider struct{}

func NewMockProvider() *MockProvider { return &MockProvider{} }

var _ Provider = (*MockProvider)(nil)

func (m *MockProvider) Complete(_ context.Context, req Request) (*Response, error) {
	content := "Gracias por escribir a CONCESA. Un asesor revisará tu consulta en breve. " +
		"¿Hay algún equipo en particular que te interese?"

	prompt := 0
	for _, msg := range req.Messages {
		prompt += len(msg.Content) / 4
	}
	completion := len(content) / 4

	return &Response{
		Content: content,
		Usage: Usage{
			PromptTokens:     prompt,
			CompletionTokens: completion,
			TotalTokens:      prompt + completion,
		},
	}, nil
}

func (m *MockProvider) Close() error { return nil }
