package models

// EventKind identifies which Slack event produced an InboundEvent
type EventKind string

const (
	KindMention       EventKind = "mention"
	KindDirectMessage EventKind = "direct_message"
)

// ChannelTypeIM is the Slack channel_type of a one-to-one conversation
const ChannelTypeIM = "im"

// InboundEvent is a Slack message the bot may answer. It is built per
// webhook delivery and discarded once the dispatch finishes.
type InboundEvent struct {
	EventID     string
	Kind        EventKind
	ChannelID   string
	ChannelType string
	UserID      string
	BotID       string
	Text        string
	TS          string
	ThreadTS    string
}

// AuthorIsBot reports whether the message was posted by a bot
func (e InboundEvent) AuthorIsBot() bool {
	return e.BotID != ""
}

// ThreadAnchor returns the timestamp a reply should be threaded under: the
// existing thread if there is one, otherwise the message itself.
func (e InboundEvent) ThreadAnchor() string {
	if e.ThreadTS != "" {
		return e.ThreadTS
	}
	return e.TS
}

// FallbackReply is returned by completion clients when the upstream
// response carries no usable text.
const FallbackReply = "…"

// Message is a single chat message sent to a completion provider
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// MessageRole constants
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
