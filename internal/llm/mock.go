package llm

import "context"

type mockGenerator struct {
	responses []string
	calls     int
}

// NewMockGenerator returns a Generator that replays canned responses in
// order, repeating the last one once exhausted. Used in tests and demos.
func NewMockGenerator(responses ...string) Generator {
	if len(responses) == 0 {
		responses = []string{"Personne A: Bonjour !\nPersonne B: Bonjour, comment ça va ?"}
	}
	return &mockGenerator{responses: responses}
}

func (m *mockGenerator) Complete(ctx context.Context, _ string, _ []ChatMessage, _ int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	i := m.calls
	if i >= len(m.responses) {
		i = len(m.responses) - 1
	}
	m.calls++
	return m.responses[i], nil
}
