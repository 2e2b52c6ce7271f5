package api

type Kind int

const (
	KindUnknown Kind = iota
	KindCommand
	KindQuery
	KindSubmission
	KindAction
)

func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindQuery:
		return "query"
	case KindSubmission:
		return "submission"
	case KindAction:
		return "action"
	default:
		return "unknown"
	}
}

type User struct {
	ID   string
	Name string
}

type Query struct {
	ID   string
	Text string
}

// Submission carries the raw structured payload of the creation form.
type Submission struct {
	Payload string
}

type Action struct {
	ID      string
	Data    string
	Message MessageRef
}

// Update is a single inbound event, translated out of the platform's own model.
type Update struct {
	ID      string
	Channel string
	From    User

	Command    string
	Query      *Query
	Submission *Submission
	Action     *Action
}

// Kind classifies the update. When more than one field is set, commands win
// over queries, queries over submissions and submissions over actions.
func (u Update) Kind() Kind {
	switch {
	case u.Command != "":
		return KindCommand
	case u.Query != nil:
		return KindQuery
	case u.Submission != nil:
		return KindSubmission
	case u.Action != nil:
		return KindAction
	default:
		return KindUnknown
	}
}
