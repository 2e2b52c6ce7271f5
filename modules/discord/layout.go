package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/lordralex/rallypoint/api"
)

const (
	queryPrefix = "query:"
	maxContent  = 2000
)

// splitToRows lays buttons out in rows of 5, the most Discord allows.
func splitToRows(buttons []api.Button) []discordgo.MessageComponent {
	limit := 5

	components := make([]discordgo.MessageComponent, 0)
	row := discordgo.ActionsRow{}

	for _, v := range buttons {
		row.Components = append(row.Components, toButton(v))

		if len(row.Components) == limit {
			components = append(components, row)
			row = discordgo.ActionsRow{}
		}
	}

	if len(row.Components) > 0 {
		components = append(components, row)
	}

	return components
}

func toButton(b api.Button) discordgo.Button {
	switch b.Kind {
	case api.ButtonQuery:
		return discordgo.Button{CustomID: queryPrefix + b.Data, Style: discordgo.SuccessButton, Label: b.Label}
	case api.ButtonLink:
		return discordgo.Button{URL: b.Data, Style: discordgo.LinkButton, Label: b.Label}
	default:
		return discordgo.Button{CustomID: b.Data, Style: discordgo.PrimaryButton, Label: b.Label}
	}
}

// limitContent cuts text down to what a single message can hold.
func limitContent(text string) string {
	runes := []rune(text)
	if len(runes) <= maxContent {
		return text
	}
	return string(runes[:maxContent-1]) + "…"
}
