package api

import "context"

type ButtonKind int

const (
	// ButtonAction sends Data back as an action when pressed.
	ButtonAction ButtonKind = iota
	// ButtonQuery opens the capability query with Data as its text.
	ButtonQuery
	// ButtonLink opens the URL in Data (a web app on platforms that have them).
	ButtonLink
)

type Button struct {
	Label string
	Kind  ButtonKind
	Data  string
}

// Suggestion is one entry offered in response to a capability query.
type Suggestion struct {
	ID          string
	Title       string
	Description string
	Text        string
	Button      Button
}

// MessageRef addresses a message previously sent on a platform.
type MessageRef string

// Platform is what a messaging platform has to provide for the poll flow.
// Every call is best effort; callers log failures and never retry.
type Platform interface {
	SendMessage(ctx context.Context, channel string, text string, buttons []Button) (MessageRef, error)
	EditMessage(ctx context.Context, channel string, ref MessageRef, text string, buttons []Button) error
	AnswerQuery(ctx context.Context, queryId string, suggestions []Suggestion) error
	Acknowledge(ctx context.Context, actionId string, text string) error
}

// Handler processes one update received from a platform.
type Handler interface {
	Handle(ctx context.Context, platform Platform, update Update) error
}
