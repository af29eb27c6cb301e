package handler

import (
	"context"
	"sync"
)

// CompletionCall records one Reply invocation
type CompletionCall struct {
	SystemPrompt string
	UserText     string
	HasDeadline  bool
}

// MockCompleter mocks Completer for testing
type MockCompleter struct {
	ReplyFunc func(ctx context.Context, systemPrompt, userText string) (string, error)

	mu    sync.Mutex
	calls []CompletionCall
}

// Verify MockCompleter implements Completer
var _ Completer = (*MockCompleter)(nil)

func (m *MockCompleter) Reply(ctx context.Context, systemPrompt, userText string) (string, error) {
	_, hasDeadline := ctx.Deadline()
	m.mu.Lock()
	m.calls = append(m.calls, CompletionCall{SystemPrompt: systemPrompt, UserText: userText, HasDeadline: hasDeadline})
	m.mu.Unlock()

	if m.ReplyFunc != nil {
		return m.ReplyFunc(ctx, systemPrompt, userText)
	}
	return "ok", nil
}

func (m *MockCompleter) Calls() []CompletionCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]CompletionCall(nil), m.calls...)
}

// PostCall records one PostReply invocation
type PostCall struct {
	ChannelID string
	ThreadTS  string
	Text      string
}

// MockPoster mocks Poster for testing
type MockPoster struct {
	PostReplyFunc func(ctx context.Context, channelID, threadTS, text string) error

	mu    sync.Mutex
	calls []PostCall
}

// Verify MockPoster implements Poster
var _ Poster = (*MockPoster)(nil)

func (m *MockPoster) PostReply(ctx context.Context, channelID, threadTS, text string) error {
	m.mu.Lock()
	m.calls = append(m.calls, PostCall{ChannelID: channelID, ThreadTS: threadTS, Text: text})
	m.mu.Unlock()

	if m.PostReplyFunc != nil {
		return m.PostReplyFunc(ctx, channelID, threadTS, text)
	}
	return nil
}

func (m *MockPoster) Calls() []PostCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PostCall(nil), m.calls...)
}
