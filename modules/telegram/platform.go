package telegram

import (
	"context"
	"errors"
	"fmt"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/lordralex/rallypoint/api"
	"github.com/spf13/cast"
	"strconv"
)

// Bot is the part of *tgbotapi.BotAPI the platform calls.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Platform sends poll messages through the Telegram Bot API. Channels are
// chat ids and message refs are message ids, both in base 10.
type Platform struct {
	bot Bot
}

func NewPlatform(bot Bot) *Platform {
	return &Platform{bot: bot}
}

func (p *Platform) SendMessage(ctx context.Context, channel string, text string, buttons []api.Button) (api.MessageRef, error) {
	chatId, err := cast.ToInt64E(channel)
	if err != nil {
		return "", fmt.Errorf("bad chat id %q: %w", channel, err)
	}

	msg := tgbotapi.NewMessage(chatId, text)
	if len(buttons) > 0 {
		msg.ReplyMarkup = keyboard(buttons)
	}

	sent, err := p.bot.Send(msg)
	if err != nil {
		return "", err
	}
	return api.MessageRef(strconv.Itoa(sent.MessageID)), nil
}

func (p *Platform) EditMessage(ctx context.Context, channel string, ref api.MessageRef, text string, buttons []api.Button) error {
	chatId, err := cast.ToInt64E(channel)
	if err != nil {
		return fmt.Errorf("bad chat id %q: %w", channel, err)
	}
	if ref == "" {
		return errors.New("no message to edit")
	}
	messageId, err := cast.ToIntE(string(ref))
	if err != nil {
		return fmt.Errorf("bad message id %q: %w", ref, err)
	}

	edit := tgbotapi.NewEditMessageTextAndMarkup(chatId, messageId, text, keyboard(buttons))
	_, err = p.bot.Request(edit)
	return err
}

func (p *Platform) AnswerQuery(ctx context.Context, queryId string, suggestions []api.Suggestion) error {
	// an empty list has to go out as [] rather than null
	results := make([]interface{}, 0, len(suggestions))
	for _, v := range suggestions {
		results = append(results, newArticle(v))
	}

	_, err := p.bot.Request(tgbotapi.InlineConfig{
		InlineQueryID: queryId,
		Results:       results,
		CacheTime:     0,
		IsPersonal:    true,
	})
	return err
}

func (p *Platform) Acknowledge(ctx context.Context, actionId string, text string) error {
	_, err := p.bot.Request(tgbotapi.NewCallback(actionId, text))
	return err
}

// keyboard lays the buttons out one per row.
func keyboard(buttons []api.Button) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, v := range buttons {
		var button tgbotapi.InlineKeyboardButton
		switch v.Kind {
		case api.ButtonQuery:
			query := v.Data
			button = tgbotapi.InlineKeyboardButton{Text: v.Label, SwitchInlineQueryCurrentChat: &query}
		case api.ButtonLink:
			button = tgbotapi.NewInlineKeyboardButtonURL(v.Label, v.Data)
		default:
			button = tgbotapi.NewInlineKeyboardButtonData(v.Label, v.Data)
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

type webApp struct {
	URL string `json:"url"`
}

// articleButton is an inline keyboard button that can also open a web app,
// which tgbotapi.InlineKeyboardButton has no field for.
type articleButton struct {
	Text                         string  `json:"text"`
	WebApp                       *webApp `json:"web_app,omitempty"`
	CallbackData                 string  `json:"callback_data,omitempty"`
	SwitchInlineQueryCurrentChat *string `json:"switch_inline_query_current_chat,omitempty"`
}

type articleMarkup struct {
	InlineKeyboard [][]articleButton `json:"inline_keyboard"`
}

type article struct {
	Type                string                           `json:"type"`
	ID                  string                           `json:"id"`
	Title               string                           `json:"title"`
	Description         string                           `json:"description,omitempty"`
	InputMessageContent tgbotapi.InputTextMessageContent `json:"input_message_content"`
	ReplyMarkup         *articleMarkup                   `json:"reply_markup,omitempty"`
}

func newArticle(suggestion api.Suggestion) article {
	result := article{
		Type:                "article",
		ID:                  suggestion.ID,
		Title:               suggestion.Title,
		Description:         suggestion.Description,
		InputMessageContent: tgbotapi.InputTextMessageContent{Text: suggestion.Text},
	}

	b := suggestion.Button
	if b.Label == "" || b.Data == "" {
		return result
	}

	button := articleButton{Text: b.Label}
	switch b.Kind {
	case api.ButtonLink:
		button.WebApp = &webApp{URL: b.Data}
	case api.ButtonQuery:
		query := b.Data
		button.SwitchInlineQueryCurrentChat = &query
	default:
		button.CallbackData = b.Data
	}
	result.ReplyMarkup = &articleMarkup{InlineKeyboard: [][]articleButton{{button}}}
	return result
}
