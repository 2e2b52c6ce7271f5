package polls

import (
	"context"
	"errors"
	"fmt"
	"github.com/lordralex/rallypoint/api"
	"github.com/lordralex/rallypoint/api/logger"
)

const (
	DefaultCreateQuery = "create_event"

	planPrompt     = "🎯 Ready to plan an event? Let's set it up!"
	failedNotice   = "Something went wrong"
	notFoundNotice = "Poll not found"
	invalidNotice  = "Invalid option"
)

type Config struct {
	// CreateQuery is the capability query text that offers the creation form.
	CreateQuery string
	// CreationURL is where the creation form lives.
	CreationURL string
}

// Handler routes platform updates into the store and vote engine, and sends
// the rendered polls back through the platform.
type Handler struct {
	store    *Store
	engine   *Engine
	commands *api.Commands
	config   Config
}

func NewHandler(store *Store, config Config) *Handler {
	if config.CreateQuery == "" {
		config.CreateQuery = DefaultCreateQuery
	}

	h := &Handler{
		store:    store,
		engine:   NewEngine(store),
		commands: api.NewCommands(),
		config:   config,
	}
	h.commands.Register("plan", h.runPlanCommand)
	return h
}

// Handle processes a single update. Every failure is logged and, where the
// platform allows it, reported to the user before being returned; none of
// them should stop the caller from handling further updates.
func (h *Handler) Handle(ctx context.Context, platform api.Platform, update api.Update) error {
	switch update.Kind() {
	case api.KindCommand:
		return h.runCommand(ctx, platform, update)
	case api.KindQuery:
		return h.answerQuery(ctx, platform, update)
	case api.KindSubmission:
		return h.createPoll(ctx, platform, update)
	case api.KindAction:
		return h.castVote(ctx, platform, update)
	default:
		logger.Debug().Printf("Ignoring update %s\n", update.ID)
		return nil
	}
}

func (h *Handler) runCommand(ctx context.Context, platform api.Platform, update api.Update) error {
	commandExecutor := h.commands.Get(update.Command)
	if commandExecutor == nil {
		logger.Debug().Printf("No command with name %s\n", update.Command)
		return nil
	}
	return commandExecutor(ctx, platform, update)
}

func (h *Handler) runPlanCommand(ctx context.Context, platform api.Platform, update api.Update) error {
	buttons := []api.Button{{Label: "Create Event", Kind: api.ButtonQuery, Data: h.config.CreateQuery}}

	_, err := platform.SendMessage(ctx, update.Channel, planPrompt, buttons)
	if err != nil {
		logger.Err().Printf("Error sending plan prompt to %s: %s\n", update.Channel, err.Error())
		return fmt.Errorf("%w: send: %w", ErrPlatformIO, err)
	}
	return nil
}

func (h *Handler) answerQuery(ctx context.Context, platform api.Platform, update api.Update) error {
	var suggestions []api.Suggestion
	if update.Query.Text == h.config.CreateQuery {
		suggestions = []api.Suggestion{{
			ID:          "1",
			Title:       "🎯 Create New Event",
			Description: "Plan an event with multiple time options",
			Text:        "Opening event planner...",
			Button:      api.Button{Label: "📝 Plan Event", Kind: api.ButtonLink, Data: h.config.CreationURL},
		}}
	}

	err := platform.AnswerQuery(ctx, update.Query.ID, suggestions)
	if err != nil {
		logger.Err().Printf("Error answering query %s (%q): %s\n", update.Query.ID, update.Query.Text, err.Error())
		return fmt.Errorf("%w: answer: %w", ErrPlatformIO, err)
	}
	return nil
}

func (h *Handler) createPoll(ctx context.Context, platform api.Platform, update api.Update) error {
	payload := update.Submission.Payload

	submission, err := ParseSubmission(payload)
	if err != nil {
		logger.Err().Printf("Dropping submission from %s in %s: %s (payload %q)\n", update.From.ID, update.Channel, err.Error(), payload)
		return err
	}

	id, err := h.store.Create(submission.Title, submission.Options, update.From.Name, update.Channel)
	if err != nil {
		logger.Err().Printf("Dropping submission from %s in %s: %s (payload %q)\n", update.From.ID, update.Channel, err.Error(), payload)
		return err
	}

	poll, exists := h.store.Get(id)
	if !exists {
		return fmt.Errorf("%w: %s was evicted right after creation", ErrPollNotFound, id)
	}
	logger.Out().Printf("Created poll %s in %s with %d options\n", id, poll.Channel, len(poll.Options))

	_, err = platform.SendMessage(ctx, poll.Channel, RenderText(poll), RenderButtons(poll))
	if err != nil {
		logger.Err().Printf("Error sending poll %s to %s: %s\n", id, poll.Channel, err.Error())
		return fmt.Errorf("%w: send poll %s: %w", ErrPlatformIO, id, err)
	}
	return nil
}

func (h *Handler) castVote(ctx context.Context, platform api.Platform, update api.Update) error {
	action := update.Action

	token, err := ParseActionToken(action.Data)
	if err != nil {
		logger.Err().Printf("Bad action from %s: %s\n", update.From.ID, err.Error())
		return errors.Join(err, h.acknowledge(ctx, platform, action.ID, failedNotice))
	}

	poll, err := h.engine.CastVote(token.PollId, token.Option, Voter{ID: update.From.ID, Name: update.From.Name})
	if err != nil {
		logger.Err().Printf("Vote from %s failed (payload %q): %s\n", update.From.ID, action.Data, err.Error())
		notice := failedNotice
		if errors.Is(err, ErrPollNotFound) {
			notice = notFoundNotice
		} else if errors.Is(err, ErrInvalidOption) {
			notice = invalidNotice
		}
		return errors.Join(err, h.acknowledge(ctx, platform, action.ID, notice))
	}

	editErr := h.editPoll(ctx, platform, poll, action.Message)
	return errors.Join(editErr, h.acknowledge(ctx, platform, action.ID, "Voted for: "+poll.Options[token.Option].Text))
}

// editPoll redraws the poll message from the latest state. Edits of one poll
// run one at a time, so the last edit always shows every vote cast before it.
func (h *Handler) editPoll(ctx context.Context, platform api.Platform, poll Poll, ref api.MessageRef) error {
	unlock, exists := h.store.lockMessage(poll.ID)
	if exists {
		defer unlock()
		if latest, ok := h.store.Get(poll.ID); ok {
			poll = latest
		}
	}

	err := platform.EditMessage(ctx, poll.Channel, ref, RenderText(poll), RenderButtons(poll))
	if err != nil {
		// the vote is in, so the user still gets their confirmation
		logger.Err().Printf("Error updating poll %s message %s: %s\n", poll.ID, ref, err.Error())
		return fmt.Errorf("%w: edit poll %s: %w", ErrPlatformIO, poll.ID, err)
	}
	return nil
}

func (h *Handler) acknowledge(ctx context.Context, platform api.Platform, actionId string, text string) error {
	err := platform.Acknowledge(ctx, actionId, text)
	if err != nil {
		logger.Err().Printf("Error acknowledging action %s: %s\n", actionId, err.Error())
		return fmt.Errorf("%w: acknowledge: %w", ErrPlatformIO, err)
	}
	return nil
}
