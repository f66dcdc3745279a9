package bot

import (
	"context"
	"io"
)

// Button is one inline keyboard button.
type Button struct {
	Text string
	Data string
}

// Keyboard is an inline keyboard, rows of buttons.
type Keyboard struct {
	Rows [][]Button
}

// Command is one entry of the platform's command menu.
type Command struct {
	Name        string
	Description string
}

// Gateway abstracts the messaging platform. Handlers talk only to this
// interface; internal/telegram provides the production implementation and
// tests substitute a fake.
type Gateway interface {
	// SendMessage posts a new message and returns its id for later edits.
	SendMessage(chatID int64, text string, keyboard *Keyboard) (int, error)

	// EditMessage replaces an existing message's text and keyboard. An edit
	// that would leave the message unchanged must not be surfaced as an
	// error.
	EditMessage(chatID int64, messageID int, text string, keyboard *Keyboard) error

	// AnswerCallback acknowledges a button press with a transient toast.
	AnswerCallback(callbackID, text string) error

	// DownloadFile opens the content of an uploaded attachment.
	DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, error)

	// SetCommands registers the command menu with the platform.
	SetCommands(commands []Command) error
}

// Message is an inbound chat message, normalized from the platform update.
type Message struct {
	ChatID   int64
	UserName string
	Text     string
	Command  string // without the leading slash, empty for plain text
	Args     string // everything after the command
	Document *Document
}

// Document is an uploaded attachment.
type Document struct {
	FileID   string
	FileName string
	SizeKB   float64
}

// CallbackQuery is an inbound button press.
type CallbackQuery struct {
	ID        string
	ChatID    int64
	MessageID int
	UserName  string
	Data      string
}
