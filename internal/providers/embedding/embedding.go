package embedding

import "context"

type Provider interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, model string, texts []string) ([][]float32, error)
	Close() error
}
