package telegram

import (
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/torrentdrop/internal/bot"
)

func TestMessageFromUpdate_Command(t *testing.T) {
	m := &tgbotapi.Message{
		Text: "/setrss movies https://example.com/rss",
		Chat: &tgbotapi.Chat{ID: 42},
		From: &tgbotapi.User{FirstName: "Ana"},
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: 7},
		},
	}

	msg := messageFromUpdate(m)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, "Ana", msg.UserName)
	assert.Equal(t, "setrss", msg.Command)
	assert.Equal(t, "movies https://example.com/rss", msg.Args)
	assert.Nil(t, msg.Document)
}

func TestMessageFromUpdate_Document(t *testing.T) {
	m := &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: 42},
		Document: &tgbotapi.Document{
			FileID:   "file-1",
			FileName: "show.torrent",
			FileSize: 2048,
		},
	}

	msg := messageFromUpdate(m)
	require.NotNil(t, msg.Document)
	assert.Equal(t, "file-1", msg.Document.FileID)
	assert.Equal(t, "show.torrent", msg.Document.FileName)
	assert.InDelta(t, 2.0, msg.Document.SizeKB, 0.01)
	assert.Equal(t, "User", msg.UserName, "missing sender falls back to a placeholder")
}

func TestCallbackFromUpdate(t *testing.T) {
	q := &tgbotapi.CallbackQuery{
		ID:   "cb-1",
		From: &tgbotapi.User{ID: 42, FirstName: "Ana"},
		Message: &tgbotapi.Message{
			MessageID: 7,
			Chat:      &tgbotapi.Chat{ID: 42},
		},
		Data: "rss_toggle_3",
	}

	cb := callbackFromUpdate(q)
	assert.Equal(t, "cb-1", cb.ID)
	assert.Equal(t, int64(42), cb.ChatID)
	assert.Equal(t, 7, cb.MessageID)
	assert.Equal(t, "rss_toggle_3", cb.Data)
}

func TestCallbackFromUpdate_NoMessageFallsBackToSender(t *testing.T) {
	q := &tgbotapi.CallbackQuery{
		ID:   "cb-2",
		From: &tgbotapi.User{ID: 99},
		Data: "menu",
	}

	cb := callbackFromUpdate(q)
	assert.Equal(t, int64(99), cb.ChatID)
	assert.Equal(t, 0, cb.MessageID)
}

func TestToMarkup(t *testing.T) {
	kb := &bot.Keyboard{Rows: [][]bot.Button{
		{{Text: "A", Data: "a"}, {Text: "B", Data: "b"}},
		{{Text: "C", Data: "c"}},
	}}

	markup := toMarkup(kb)
	require.Len(t, markup.InlineKeyboard, 2)
	require.Len(t, markup.InlineKeyboard[0], 2)
	assert.Equal(t, "A", markup.InlineKeyboard[0][0].Text)
	require.NotNil(t, markup.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "a", *markup.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "c", *markup.InlineKeyboard[1][0].CallbackData)
}

func TestIsNotModified(t *testing.T) {
	assert.True(t, isNotModified(errors.New("Bad Request: message is not modified")))
	assert.False(t, isNotModified(errors.New("Bad Request: chat not found")))
	assert.False(t, isNotModified(nil))
}
