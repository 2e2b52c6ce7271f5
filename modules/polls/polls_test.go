package polls

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lordralex/rallypoint/api"
)

type sentMessage struct {
	channel string
	text    string
	buttons []api.Button
}

type editedMessage struct {
	channel string
	ref     api.MessageRef
	text    string
	buttons []api.Button
}

type fakePlatform struct {
	locker     sync.Mutex
	sent       []sentMessage
	edits      []editedMessage
	answers    map[string][]api.Suggestion
	acks       map[string]string
	failSend   error
	failEdit   error
	failAnswer error
	failAck    error
	// beforeEdit runs ahead of every edit, outside the lock.
	beforeEdit func(text string)
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{answers: make(map[string][]api.Suggestion), acks: make(map[string]string)}
}

func (f *fakePlatform) SendMessage(ctx context.Context, channel string, text string, buttons []api.Button) (api.MessageRef, error) {
	f.locker.Lock()
	defer f.locker.Unlock()
	if f.failSend != nil {
		return "", f.failSend
	}
	f.sent = append(f.sent, sentMessage{channel: channel, text: text, buttons: buttons})
	return "100", nil
}

func (f *fakePlatform) EditMessage(ctx context.Context, channel string, ref api.MessageRef, text string, buttons []api.Button) error {
	if f.beforeEdit != nil {
		f.beforeEdit(text)
	}
	f.locker.Lock()
	defer f.locker.Unlock()
	if f.failEdit != nil {
		return f.failEdit
	}
	f.edits = append(f.edits, editedMessage{channel: channel, ref: ref, text: text, buttons: buttons})
	return nil
}

func (f *fakePlatform) AnswerQuery(ctx context.Context, queryId string, suggestions []api.Suggestion) error {
	f.locker.Lock()
	defer f.locker.Unlock()
	if f.failAnswer != nil {
		return f.failAnswer
	}
	f.answers[queryId] = suggestions
	return nil
}

func (f *fakePlatform) Acknowledge(ctx context.Context, actionId string, text string) error {
	f.locker.Lock()
	defer f.locker.Unlock()
	if f.failAck != nil {
		return f.failAck
	}
	f.acks[actionId] = text
	return nil
}

func newTestHandler() (*Handler, *Store, *fakePlatform) {
	store := NewStore(nil, DefaultLimits)
	handler := NewHandler(store, Config{CreationURL: "https://example.com/planner"})
	return handler, store, newFakePlatform()
}

func submission(payload string) api.Update {
	return api.Update{
		ID:         "1",
		Channel:    "42",
		From:       api.User{ID: "7", Name: "Alice"},
		Submission: &api.Submission{Payload: payload},
	}
}

func vote(actionId string, data string, voterId string, name string) api.Update {
	return api.Update{
		ID:      actionId,
		Channel: "42",
		From:    api.User{ID: voterId, Name: name},
		Action:  &api.Action{ID: actionId, Data: data, Message: "100"},
	}
}

// createdPollToken creates a poll through the handler and returns the token
// of its option button.
func createdPollToken(t *testing.T, handler *Handler, platform *fakePlatform, option int) string {
	t.Helper()
	err := handler.Handle(context.Background(), platform, submission(`{"title":"Movie Night","options":["Fri","Sat"]}`))
	if err != nil {
		t.Fatalf("Handle(submission) error = %v", err)
	}
	last := platform.sent[len(platform.sent)-1]
	return last.buttons[option].Data
}

func TestHandle_PlanCommand(t *testing.T) {
	handler, store, platform := newTestHandler()

	err := handler.Handle(context.Background(), platform, api.Update{Channel: "42", Command: "plan"})
	if err != nil {
		t.Fatal(err)
	}

	if len(platform.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(platform.sent))
	}
	msg := platform.sent[0]
	if msg.channel != "42" || msg.text != planPrompt {
		t.Errorf("sent %+v", msg)
	}
	want := api.Button{Label: "Create Event", Kind: api.ButtonQuery, Data: DefaultCreateQuery}
	if len(msg.buttons) != 1 || msg.buttons[0] != want {
		t.Errorf("buttons = %+v, want [%+v]", msg.buttons, want)
	}
	if store.Len() != 0 {
		t.Errorf("command touched the store")
	}
}

func TestHandle_UnknownCommand(t *testing.T) {
	handler, _, platform := newTestHandler()

	if err := handler.Handle(context.Background(), platform, api.Update{Channel: "42", Command: "help"}); err != nil {
		t.Errorf("Handle() error = %v", err)
	}
	if len(platform.sent) != 0 {
		t.Errorf("unknown command sent %d messages", len(platform.sent))
	}
}

func TestHandle_Query(t *testing.T) {
	handler, _, platform := newTestHandler()

	t.Run("Create sentinel", func(t *testing.T) {
		err := handler.Handle(context.Background(), platform, api.Update{Query: &api.Query{ID: "q1", Text: "create_event"}})
		if err != nil {
			t.Fatal(err)
		}
		suggestions := platform.answers["q1"]
		if len(suggestions) != 1 {
			t.Fatalf("got %d suggestions, want 1", len(suggestions))
		}
		button := suggestions[0].Button
		if button.Kind != api.ButtonLink || button.Data != "https://example.com/planner" {
			t.Errorf("suggestion button = %+v", button)
		}
	})

	t.Run("Anything else", func(t *testing.T) {
		err := handler.Handle(context.Background(), platform, api.Update{Query: &api.Query{ID: "q2", Text: "weather"}})
		if err != nil {
			t.Fatal(err)
		}
		suggestions, answered := platform.answers["q2"]
		if !answered {
			t.Fatalf("query was not answered")
		}
		if len(suggestions) != 0 {
			t.Errorf("got %d suggestions, want none", len(suggestions))
		}
	})
}

func TestHandle_Submission(t *testing.T) {
	handler, store, platform := newTestHandler()

	err := handler.Handle(context.Background(), platform, submission(`{"title":"Movie Night","options":["Fri","Sat"]}`))
	if err != nil {
		t.Fatal(err)
	}

	if store.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", store.Len())
	}
	if len(platform.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(platform.sent))
	}
	msg := platform.sent[0]
	if msg.channel != "42" {
		t.Errorf("poll sent to %q", msg.channel)
	}
	if !strings.HasPrefix(msg.text, "🎯 Movie Night\n\nCreated by Alice") {
		t.Errorf("text = %q", msg.text)
	}
	assertLabels(t, msg.buttons, "Fri (0)", "Sat (0)")
}

func TestHandle_SubmissionIsDropped(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    error
	}{
		{"not json", `{"title":`, ErrMalformedSubmission},
		{"wrong schema", `{"title":"T","options":"A"}`, ErrMalformedSubmission},
		{"one option", `{"title":"T","options":["A"]}`, ErrInvalidPoll},
		{"empty title", `{"title":" ","options":["A","B"]}`, ErrInvalidPoll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, store, platform := newTestHandler()

			err := handler.Handle(context.Background(), platform, submission(tt.payload))
			if !errors.Is(err, tt.want) {
				t.Errorf("Handle() error = %v, want %v", err, tt.want)
			}
			if store.Len() != 0 || len(platform.sent) != 0 {
				t.Errorf("dropped submission created a poll")
			}
		})
	}
}

func TestHandle_SubmissionSendFails(t *testing.T) {
	handler, store, platform := newTestHandler()
	platform.failSend = errors.New("chat not found")

	err := handler.Handle(context.Background(), platform, submission(`{"title":"T","options":["A","B"]}`))
	if !errors.Is(err, ErrPlatformIO) {
		t.Errorf("Handle() error = %v, want ErrPlatformIO", err)
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}
}

func TestHandle_Vote(t *testing.T) {
	handler, _, platform := newTestHandler()
	token := createdPollToken(t, handler, platform, 1)

	err := handler.Handle(context.Background(), platform, vote("a1", token, "u1", "Bob"))
	if err != nil {
		t.Fatal(err)
	}

	if len(platform.edits) != 1 {
		t.Fatalf("got %d edits, want 1", len(platform.edits))
	}
	edit := platform.edits[0]
	if edit.channel != "42" || edit.ref != "100" {
		t.Errorf("edited %s/%s", edit.channel, edit.ref)
	}
	assertLabels(t, edit.buttons, "Fri (0)", "Sat (1)")
	if !strings.HasSuffix(edit.text, "\n\nSat:\n• Bob") {
		t.Errorf("text = %q", edit.text)
	}
	if got := platform.acks["a1"]; got != "Voted for: Sat" {
		t.Errorf("acknowledged with %q", got)
	}
}

func TestHandle_VoteFailures(t *testing.T) {
	handler, _, platform := newTestHandler()
	token := createdPollToken(t, handler, platform, 0)
	pollId := strings.Split(token, ":")[1]

	tests := []struct {
		name   string
		data   string
		want   error
		notice string
	}{
		{"malformed token", "vote_poll_1", ErrMalformedAction, failedNotice},
		{"unknown poll", ActionToken{PollId: uuid.NewString(), Option: 0}.String(), ErrPollNotFound, notFoundNotice},
		{"out of range", ActionToken{PollId: pollId, Option: 2}.String(), ErrInvalidOption, invalidNotice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := handler.Handle(context.Background(), platform, vote(tt.name, tt.data, "u1", "Bob"))
			if !errors.Is(err, tt.want) {
				t.Errorf("Handle() error = %v, want %v", err, tt.want)
			}
			if got := platform.acks[tt.name]; got != tt.notice {
				t.Errorf("acknowledged with %q, want %q", got, tt.notice)
			}
			if len(platform.edits) != 0 {
				t.Errorf("failed vote edited the message")
			}
		})
	}
}

func TestHandle_VoteEditFails(t *testing.T) {
	handler, store, platform := newTestHandler()
	token := createdPollToken(t, handler, platform, 0)
	platform.failEdit = errors.New("message to edit not found")

	err := handler.Handle(context.Background(), platform, vote("a1", token, "u1", "Bob"))
	if !errors.Is(err, ErrPlatformIO) {
		t.Errorf("Handle() error = %v, want ErrPlatformIO", err)
	}
	if got := platform.acks["a1"]; got != "Voted for: Fri" {
		t.Errorf("acknowledged with %q", got)
	}

	pollId := strings.Split(token, ":")[1]
	poll, _ := store.Get(pollId)
	if poll.VoterOption("u1") != 0 {
		t.Errorf("vote was not kept after the edit failed")
	}
}

func TestHandle_Unknown(t *testing.T) {
	handler, _, platform := newTestHandler()
	if err := handler.Handle(context.Background(), platform, api.Update{ID: "9"}); err != nil {
		t.Errorf("Handle() error = %v", err)
	}
}

func TestHandle_ConcurrentVotes(t *testing.T) {
	handler, store, platform := newTestHandler()
	fri := createdPollToken(t, handler, platform, 0)
	sat := strings.TrimSuffix(fri, "0") + "1"

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = handler.Handle(context.Background(), platform, vote("a", fri, "u1", "Alice"))
		}()
		go func() {
			defer wg.Done()
			_ = handler.Handle(context.Background(), platform, vote("b", sat, "u2", "Bob"))
		}()
	}
	wg.Wait()

	poll, _ := store.Get(strings.Split(fri, ":")[1])
	if len(poll.Options[0].Voters) != 1 || len(poll.Options[1].Voters) != 1 {
		t.Errorf("options = %+v", poll.Options)
	}
}

func TestHandle_PlatformFailuresAreReturned(t *testing.T) {
	t.Run("Answer", func(t *testing.T) {
		handler, _, platform := newTestHandler()
		platform.failAnswer = errors.New("query is too old")

		err := handler.Handle(context.Background(), platform, api.Update{Query: &api.Query{ID: "q1", Text: "create_event"}})
		if !errors.Is(err, ErrPlatformIO) {
			t.Errorf("Handle() error = %v, want ErrPlatformIO", err)
		}
	})

	t.Run("Acknowledge", func(t *testing.T) {
		handler, store, platform := newTestHandler()
		token := createdPollToken(t, handler, platform, 1)
		platform.failAck = errors.New("query is too old")

		err := handler.Handle(context.Background(), platform, vote("a1", token, "u1", "Bob"))
		if !errors.Is(err, ErrPlatformIO) {
			t.Errorf("Handle() error = %v, want ErrPlatformIO", err)
		}
		if len(platform.edits) != 1 {
			t.Errorf("got %d edits, want 1", len(platform.edits))
		}
		poll, _ := store.Get(strings.Split(token, ":")[1])
		if poll.VoterOption("u1") != 1 {
			t.Errorf("vote was not kept")
		}
	})

	t.Run("Plan prompt", func(t *testing.T) {
		handler, _, platform := newTestHandler()
		platform.failSend = errors.New("bot was kicked")

		err := handler.Handle(context.Background(), platform, api.Update{Channel: "42", Command: "PLAN"})
		if !errors.Is(err, ErrPlatformIO) {
			t.Errorf("Handle() error = %v, want ErrPlatformIO", err)
		}
	})
}

func TestHandle_SlowEditDoesNotOverwriteNewerVotes(t *testing.T) {
	handler, store, platform := newTestHandler()
	token := createdPollToken(t, handler, platform, 0)
	parsed, err := ParseActionToken(token)
	if err != nil {
		t.Fatal(err)
	}

	held := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	platform.beforeEdit = func(text string) {
		once.Do(func() {
			close(held)
			<-release
		})
	}

	done := make(chan error, 2)
	go func() {
		done <- handler.Handle(context.Background(), platform, vote("a1", token, "u1", "Uma"))
	}()
	<-held

	go func() {
		done <- handler.Handle(context.Background(), platform, vote("a2", token, "u2", "Vic"))
	}()
	for {
		poll, _ := store.Get(parsed.PollId)
		if len(poll.Options[0].Voters) == 2 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	close(release)

	for i := 0; i < 2; i++ {
		if err := <-done; err != nil {
			t.Fatalf("Handle(vote) error = %v", err)
		}
	}

	last := platform.edits[len(platform.edits)-1]
	if !strings.Contains(last.text, "• Uma") || !strings.Contains(last.text, "• Vic") {
		t.Errorf("last edit is stale:\n%s", last.text)
	}
	if last.buttons[0].Label != "Fri (2)" {
		t.Errorf("last edit label = %q, want %q", last.buttons[0].Label, "Fri (2)")
	}
}
