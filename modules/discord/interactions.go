package discord

import (
	"encoding/json"
	"github.com/bwmarrin/discordgo"
	"github.com/lordralex/rallypoint/api"
	"strings"
)

var planOperation = &discordgo.ApplicationCommand{
	Name:        "plan",
	Description: "Plan an event and let everyone vote on when",
	Type:        discordgo.ChatApplicationCommand,
}

type planSubmission struct {
	Title   string   `json:"title"`
	Options []string `json:"options"`
}

// parseInteraction translates an interaction into an api.Update. Interactions
// the bot has no use for come back with api.KindUnknown.
func parseInteraction(i *discordgo.Interaction) api.Update {
	update := api.Update{
		ID:      i.ID,
		Channel: i.ChannelID,
		From:    user(i),
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		update.Command = strings.ToLower(i.ApplicationCommandData().Name)
	case discordgo.InteractionMessageComponent:
		id := i.MessageComponentData().CustomID
		if strings.HasPrefix(id, queryPrefix) {
			update.Query = &api.Query{ID: i.ID, Text: strings.TrimPrefix(id, queryPrefix)}
			break
		}
		update.Action = &api.Action{ID: i.ID, Data: id}
		if i.Message != nil {
			update.Action.Message = api.MessageRef(i.Message.ID)
		}
	case discordgo.InteractionModalSubmit:
		data := i.ModalSubmitData()
		if !strings.HasPrefix(data.CustomID, planModal) {
			break
		}
		update.Submission = &api.Submission{Payload: submissionPayload(data.Components)}
	}

	return update
}

// submissionPayload turns the planner form into the same JSON document the
// Telegram mini app produces. Each non-blank line of the options box is one
// option.
func submissionPayload(components []discordgo.MessageComponent) string {
	var submission planSubmission
	submission.Options = make([]string, 0)

	for _, input := range textInputs(components) {
		switch input.CustomID {
		case titleInput:
			submission.Title = input.Value
		case optionsInput:
			for _, line := range strings.Split(input.Value, "\n") {
				line = strings.TrimSpace(line)
				if line != "" {
					submission.Options = append(submission.Options, line)
				}
			}
		}
	}

	data, _ := json.Marshal(submission)
	return string(data)
}

func textInputs(components []discordgo.MessageComponent) []discordgo.TextInput {
	inputs := make([]discordgo.TextInput, 0)
	for _, c := range components {
		switch v := c.(type) {
		case *discordgo.ActionsRow:
			inputs = append(inputs, textInputs(v.Components)...)
		case discordgo.ActionsRow:
			inputs = append(inputs, textInputs(v.Components)...)
		case *discordgo.TextInput:
			inputs = append(inputs, *v)
		case discordgo.TextInput:
			inputs = append(inputs, v)
		}
	}
	return inputs
}

func user(i *discordgo.Interaction) api.User {
	u := i.User
	nick := ""
	if i.Member != nil {
		nick = i.Member.Nick
		if i.Member.User != nil {
			u = i.Member.User
		}
	}
	if u == nil {
		return api.User{Name: "User"}
	}

	name := nick
	if name == "" {
		name = u.GlobalName
	}
	if name == "" {
		name = u.Username
	}
	if name == "" {
		name = "User"
	}
	return api.User{ID: u.ID, Name: name}
}
