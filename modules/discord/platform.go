package discord

import (
	"context"
	"errors"
	"fmt"
	"github.com/bwmarrin/discordgo"
	"github.com/lordralex/rallypoint/api"
	"sync"
)

const (
	planModal    = "plan:"
	titleInput   = "title"
	optionsInput = "options"
	nothingToDo  = "There is nothing to plan here."
)

// Session is the part of *discordgo.Session the platform calls.
type Session interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseDelete(interaction *discordgo.Interaction, options ...discordgo.RequestOption) error
}

// Platform posts polls as channel messages with button rows. Queries and
// acknowledgements answer the interaction they came from, so interactions
// are held in pending until they get a response.
type Platform struct {
	session Session
	pending sync.Map
}

func NewPlatform(session Session) *Platform {
	return &Platform{session: session}
}

func (p *Platform) SendMessage(ctx context.Context, channel string, text string, buttons []api.Button) (api.MessageRef, error) {
	msg, err := p.session.ChannelMessageSendComplex(channel, &discordgo.MessageSend{
		Content:         limitContent(text),
		Components:      splitToRows(buttons),
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
	if err != nil {
		return "", err
	}
	return api.MessageRef(msg.ID), nil
}

func (p *Platform) EditMessage(ctx context.Context, channel string, ref api.MessageRef, text string, buttons []api.Button) error {
	if ref == "" {
		return errors.New("no message to edit")
	}

	content := limitContent(text)
	components := splitToRows(buttons)

	edit := discordgo.NewMessageEdit(channel, string(ref))
	edit.Content = &content
	edit.Components = &components
	edit.AllowedMentions = &discordgo.MessageAllowedMentions{}

	_, err := p.session.ChannelMessageEditComplex(edit)
	return err
}

// AnswerQuery opens the event planner form. Discord has no inline results,
// so only the first suggestion is used.
func (p *Platform) AnswerQuery(ctx context.Context, queryId string, suggestions []api.Suggestion) error {
	i, err := p.take(queryId)
	if err != nil {
		return err
	}

	if len(suggestions) == 0 {
		return p.session.InteractionRespond(i, ephemeral(nothingToDo))
	}

	return p.session.InteractionRespond(i, planForm(suggestions[0]))
}

func (p *Platform) Acknowledge(ctx context.Context, actionId string, text string) error {
	i, err := p.take(actionId)
	if err != nil {
		return err
	}
	return p.session.InteractionRespond(i, ephemeral(text))
}

func (p *Platform) hold(i *discordgo.Interaction) {
	p.pending.Store(i.ID, i)
}

func (p *Platform) take(id string) (*discordgo.Interaction, error) {
	v, exists := p.pending.LoadAndDelete(id)
	if !exists {
		return nil, fmt.Errorf("interaction %s is unknown or already answered", id)
	}
	return v.(*discordgo.Interaction), nil
}

// release answers an interaction the handler left alone, so Discord does not
// show it as failed.
func (p *Platform) release(i *discordgo.Interaction) error {
	if _, exists := p.pending.LoadAndDelete(i.ID); !exists {
		return nil
	}
	return p.session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
}

func ephemeral(text string) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: text,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}
}

func planForm(suggestion api.Suggestion) *discordgo.InteractionResponse {
	title := []rune(suggestion.Title)
	if len(title) > 45 {
		title = title[:45]
	}

	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: planModal + suggestion.ID,
			Title:    string(title),
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    titleInput,
						Label:       "Event",
						Style:       discordgo.TextInputShort,
						Placeholder: suggestion.Description,
						Required:    true,
						MaxLength:   100,
					},
				}},
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    optionsInput,
						Label:       "Options (one per line)",
						Style:       discordgo.TextInputParagraph,
						Placeholder: "Friday 7pm\nSaturday noon",
						Required:    true,
					},
				}},
			},
		},
	}
}
