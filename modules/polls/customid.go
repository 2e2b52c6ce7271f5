package polls

import (
	"fmt"
	"github.com/google/uuid"
	"strconv"
	"strings"
)

const (
	voteAction     = "vote"
	tokenSeparator = ":"
)

// ActionToken is what a vote button carries: the poll and the option index.
// Poll ids are UUIDs, so they never contain the separator.
type ActionToken struct {
	PollId string
	Option int
}

func (t ActionToken) String() string {
	return strings.Join([]string{voteAction, t.PollId, strconv.Itoa(t.Option)}, tokenSeparator)
}

// ParseActionToken decodes "vote:<poll id>:<option index>".
func ParseActionToken(source string) (ActionToken, error) {
	parts := strings.Split(source, tokenSeparator)
	if len(parts) != 3 {
		return ActionToken{}, fmt.Errorf("%w: expected 3 parts in %q", ErrMalformedAction, source)
	}
	if parts[0] != voteAction {
		return ActionToken{}, fmt.Errorf("%w: unknown action %q", ErrMalformedAction, parts[0])
	}
	// Parse also takes braces, urn prefixes, upper case and missing dashes
	if id, err := uuid.Parse(parts[1]); err != nil || id.String() != parts[1] {
		return ActionToken{}, fmt.Errorf("%w: bad poll id %q", ErrMalformedAction, parts[1])
	}

	// Atoi would accept a sign
	if parts[2] == "" || strings.TrimLeft(parts[2], "0123456789") != "" {
		return ActionToken{}, fmt.Errorf("%w: bad option index %q", ErrMalformedAction, parts[2])
	}
	option, err := strconv.Atoi(parts[2])
	if err != nil {
		return ActionToken{}, fmt.Errorf("%w: bad option index %q", ErrMalformedAction, parts[2])
	}

	return ActionToken{PollId: parts[1], Option: option}, nil
}
