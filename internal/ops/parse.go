package ops

import (
	"context"

	"github.com/hpungsan/flow/internal/nlp"
)

// ParseInput contains parameters for the Parse operation.
type ParseInput struct {
	Text string
}

// ParseOutput contains the result of the Parse operation.
type ParseOutput struct {
	Task nlp.ParsedTask `json:"task"`

	// AutoApply is true when the parse is confident enough to apply without
	// asking the user to confirm.
	AutoApply bool `json:"auto_apply"`
}

// Parse previews how text would be stored. Nothing is written.
func Parse(ctx context.Context, parser *Parser, input ParseInput) (*ParseOutput, error) {
	if err := checkCancelled(ctx, "parse"); err != nil {
		return nil, err
	}
	parsed := parser.Parse(ctx, input.Text)
	return &ParseOutput{
		Task:      parsed,
		AutoApply: parsed.Confidence >= parser.autoApply,
	}, nil
}
