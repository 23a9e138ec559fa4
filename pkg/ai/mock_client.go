// pkg/ai/mock_client.go

package ai

import (
	"context"
	"strings"
)

type mockClient struct{ reply string }

// NewMock returns a generator that answers without a model. An empty reply
// makes it echo the last line of the prompt's query section.
func NewMock(reply string) Generator { return &mockClient{reply: reply} }

func (m *mockClient) Model() string { return "mock" }

func (m *mockClient) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.reply != "" {
		return m.reply, nil
	}
	q := ""
	for _, line := range strings.Split(prompt, "\n") {
		if strings.HasPrefix(line, "Query: ") {
			q = strings.TrimPrefix(line, "Query: ")
		}
	}
	return "Policy draft (mock) for: " + q, nil
}
