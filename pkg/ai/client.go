// pkg/ai/client.go

package ai

import (
	"context"
	"errors"
)

var ErrEmptyReply = errors.New("generator returned an empty reply")

// Generator turns a rendered prompt into text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}
