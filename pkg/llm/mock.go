package llm

import "context"

// MockClient is a canned-response InsightClient for tests.
type MockClient struct {
	Answer string
	Err    error

	// LastQuestion and LastContext record the most recent call.
	LastQuestion string
	LastContext  string
	Calls        int
}

var _ InsightClient = (*MockClient)(nil)

func (m *MockClient) Ask(ctx context.Context, question, dataContext string) (string, error) {
	m.Calls++
	m.LastQuestion = question
	m.LastContext = dataContext
	if m.Err != nil {
		return "", m.Err
	}
	return m.Answer, nil
}

func (m *MockClient) Model() string {
	return "mock"
}
