// Package telegram implements the bot.Gateway interface over the Telegram
// Bot API, using long polling.
package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/pders01/torrentdrop/internal/bot"
	"github.com/pders01/torrentdrop/internal/debuglog"
)

// pollTimeout is the long-poll wait in seconds.
const pollTimeout = 30

// Client connects a bot.Bot to Telegram. It is both the Gateway the
// handlers send through and the update loop that feeds them.
type Client struct {
	api        *tgbotapi.BotAPI
	httpClient *http.Client
}

func NewClient(token string) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connecting to telegram: %w", err)
	}
	return &Client{
		api:        api,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// Username returns the bot account's username.
func (c *Client) Username() string {
	return c.api.Self.UserName
}

// Run polls for updates until ctx is cancelled, dispatching each update on
// its own goroutine so a slow feed fetch never blocks other chats.
func (c *Client) Run(ctx context.Context, b *bot.Bot) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = pollTimeout

	updates := c.api.GetUpdatesChan(cfg)
	debuglog.Infof("telegram update loop started as @%s", c.Username())

	for {
		select {
		case <-ctx.Done():
			c.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go c.dispatch(ctx, b, update)
		}
	}
}

func (c *Client) dispatch(ctx context.Context, b *bot.Bot, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			debuglog.Errorf("panic handling update %d: %v", update.UpdateID, r)
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.HandleCallback(ctx, callbackFromUpdate(update.CallbackQuery))
	case update.Message != nil:
		b.HandleMessage(ctx, messageFromUpdate(update.Message))
	}
}

// SendMessage implements bot.Gateway.
func (c *Client) SendMessage(chatID int64, text string, keyboard *bot.Keyboard) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	if keyboard != nil {
		msg.ReplyMarkup = toMarkup(keyboard)
	}
	sent, err := c.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("sending message: %w", err)
	}
	return sent.MessageID, nil
}

// EditMessage implements bot.Gateway. A "message is not modified" response
// means the rendered content did not change; that is not an error.
func (c *Client) EditMessage(chatID int64, messageID int, text string, keyboard *bot.Keyboard) error {
	var err error
	if keyboard != nil {
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, toMarkup(keyboard))
		_, err = c.api.Send(edit)
	} else {
		edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
		_, err = c.api.Send(edit)
	}
	if err != nil && !isNotModified(err) {
		return fmt.Errorf("editing message: %w", err)
	}
	return nil
}

// AnswerCallback implements bot.Gateway.
func (c *Client) AnswerCallback(callbackID, text string) error {
	_, err := c.api.Request(tgbotapi.NewCallback(callbackID, text))
	if err != nil {
		return fmt.Errorf("answering callback: %w", err)
	}
	return nil
}

// DownloadFile implements bot.Gateway. The caller owns the returned reader.
func (c *Client) DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, error) {
	file, err := c.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("resolving file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(c.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("building download request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading file: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("downloading file: HTTP %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// SetCommands implements bot.Gateway.
func (c *Client) SetCommands(commands []bot.Command) error {
	list := make([]tgbotapi.BotCommand, len(commands))
	for i, cmd := range commands {
		list[i] = tgbotapi.BotCommand{Command: cmd.Name, Description: cmd.Description}
	}
	_, err := c.api.Request(tgbotapi.NewSetMyCommands(list...))
	if err != nil {
		return fmt.Errorf("registering commands: %w", err)
	}
	return nil
}

func isNotModified(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "message is not modified")
}

func toMarkup(kb *bot.Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, len(kb.Rows))
	for i, row := range kb.Rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, len(row))
		for j, btn := range row {
			buttons[j] = tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.Data)
		}
		rows[i] = buttons
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func messageFromUpdate(m *tgbotapi.Message) bot.Message {
	msg := bot.Message{
		ChatID:   m.Chat.ID,
		UserName: userName(m.From),
		Text:     m.Text,
	}
	if m.IsCommand() {
		msg.Command = m.Command()
		msg.Args = m.CommandArguments()
	}
	if m.Document != nil {
		msg.Document = &bot.Document{
			FileID:   m.Document.FileID,
			FileName: m.Document.FileName,
			SizeKB:   float64(m.Document.FileSize) / 1024.0,
		}
	}
	return msg
}

func callbackFromUpdate(q *tgbotapi.CallbackQuery) bot.CallbackQuery {
	cb := bot.CallbackQuery{
		ID:       q.ID,
		UserName: userName(q.From),
		Data:     q.Data,
	}
	if q.Message != nil {
		cb.ChatID = q.Message.Chat.ID
		cb.MessageID = q.Message.MessageID
	} else if q.From != nil {
		cb.ChatID = q.From.ID
	}
	return cb
}

func userName(u *tgbotapi.User) string {
	if u == nil || u.FirstName == "" {
		return "User"
	}
	return u.FirstName
}
