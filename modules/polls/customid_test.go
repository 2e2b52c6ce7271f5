package polls

import (
	"errors"
	"strings"
	"testing"
)

const testPollId = "0b0c5a36-3f5e-4a4b-9a43-0f4c1d2e3f40"

func TestActionToken_String(t *testing.T) {
	token := ActionToken{PollId: testPollId, Option: 12}
	want := "vote:" + testPollId + ":12"
	if got := token.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	parsed, err := ParseActionToken(token.String())
	if err != nil {
		t.Fatal(err)
	}
	if parsed != token {
		t.Errorf("ParseActionToken() = %+v, want %+v", parsed, token)
	}
}

func TestParseActionToken_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"two parts", "vote:" + testPollId},
		{"four parts", "vote:" + testPollId + ":1:2"},
		{"wrong action", "close:" + testPollId + ":1"},
		{"upper case action", "VOTE:" + testPollId + ":1"},
		{"bad poll id", "vote:poll_123:1"},
		{"empty poll id", "vote::1"},
		{"braced poll id", "vote:{" + testPollId + "}:1"},
		{"poll id without dashes", "vote:" + strings.ReplaceAll(testPollId, "-", "") + ":1"},
		{"upper case poll id", "vote:" + strings.ToUpper(testPollId) + ":1"},
		{"negative option", "vote:" + testPollId + ":-1"},
		{"signed option", "vote:" + testPollId + ":+1"},
		{"empty option", "vote:" + testPollId + ":"},
		{"text option", "vote:" + testPollId + ":one"},
		{"overflowing option", "vote:" + testPollId + ":99999999999999999999999"},
		{"old underscore format", "vote_" + testPollId + "_1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseActionToken(tt.token)
			if !errors.Is(err, ErrMalformedAction) {
				t.Errorf("ParseActionToken(%q) error = %v, want ErrMalformedAction", tt.token, err)
			}
		})
	}
}
