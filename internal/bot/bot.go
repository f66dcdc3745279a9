// Package bot routes chat messages and button presses to the torrent and
// feed services. It talks to the messaging platform only through the Gateway
// interface.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pders01/torrentdrop/internal/batch"
	"github.com/pders01/torrentdrop/internal/browse"
	"github.com/pders01/torrentdrop/internal/debuglog"
	"github.com/pders01/torrentdrop/internal/download"
	"github.com/pders01/torrentdrop/internal/feed"
	"github.com/pders01/torrentdrop/internal/storage"
	"github.com/pders01/torrentdrop/internal/validation"
)

// Options configures a Bot beyond its service dependencies.
type Options struct {
	AllowedChatIDs []int64
	PageSize       int
	MaxFeeds       int
	BatchTimeout   time.Duration

	// URLValidator defaults to the strict validator; tests inject the
	// permissive one so httptest URLs pass.
	URLValidator *validation.FeedURLValidator
}

// Bot owns the handler state: browse sessions, the upload batch
// coordinator, and the authorization allow-list.
type Bot struct {
	gw          Gateway
	store       *storage.Store
	fetcher     *feed.Fetcher
	downloader  *download.Downloader
	sessions    *browse.Sessions
	coordinator *batch.Coordinator
	urls        *validation.FeedURLValidator
	allowed     map[int64]struct{}
	maxFeeds    int
}

func New(gw Gateway, store *storage.Store, fetcher *feed.Fetcher, downloader *download.Downloader, opts Options) *Bot {
	if opts.PageSize < 1 {
		opts.PageSize = 15
	}
	if opts.MaxFeeds < 1 {
		opts.MaxFeeds = storage.DefaultMaxFeeds
	}
	if opts.URLValidator == nil {
		opts.URLValidator = validation.NewFeedURLValidator()
	}

	allowed := make(map[int64]struct{}, len(opts.AllowedChatIDs))
	for _, id := range opts.AllowedChatIDs {
		allowed[id] = struct{}{}
	}

	b := &Bot{
		gw:         gw,
		store:      store,
		fetcher:    fetcher,
		downloader: downloader,
		sessions:   browse.NewSessions(opts.PageSize),
		urls:       opts.URLValidator,
		allowed:    allowed,
		maxFeeds:   opts.MaxFeeds,
	}
	b.coordinator = batch.NewCoordinator(opts.BatchTimeout, b)
	return b
}

// RegisterCommands publishes the command menu with the platform.
func (b *Bot) RegisterCommands() error {
	return b.gw.SetCommands([]Command{
		{Name: "start", Description: "🏠 Start the bot and show main menu"},
		{Name: "menu", Description: "🎯 Show interactive menu"},
		{Name: "help", Description: "📖 Show help and usage guide"},
		{Name: "status", Description: "📊 Check bot status and info"},
		{Name: "setrss", Description: "📡 Add or update an RSS feed"},
		{Name: "feeds", Description: "📋 List your RSS feeds"},
		{Name: "browse", Description: "🔍 Browse an RSS feed"},
		{Name: "clearrss", Description: "🗑️ Remove an RSS feed"},
	})
}

// Flush drains pending upload batches. Called at shutdown.
func (b *Bot) Flush() {
	b.coordinator.Flush()
}

// NotifyBatch delivers a drained upload batch summary to the chat.
// Implements batch.Notifier.
func (b *Bot) NotifyBatch(chatID int64, files []batch.File) error {
	_, err := b.gw.SendMessage(chatID, batchSummaryMessage(files), summaryKeyboard())
	return err
}

func (b *Bot) isAuthorized(chatID int64) bool {
	_, ok := b.allowed[chatID]
	return ok
}

// HandleMessage dispatches one inbound chat message.
func (b *Bot) HandleMessage(ctx context.Context, msg Message) {
	if msg.Document != nil {
		b.handleDocument(ctx, msg)
		return
	}

	switch msg.Command {
	case "start":
		b.handleStart(msg)
	case "menu":
		b.send(msg.ChatID, menuMessage(), b.mainMenu(msg.ChatID))
	case "help":
		b.send(msg.ChatID, helpMessage(), backKeyboard())
	case "status":
		b.handleStatus(msg.ChatID)
	case "setrss":
		b.handleSetRSS(msg)
	case "feeds":
		b.handleFeeds(msg)
	case "browse":
		b.handleBrowse(ctx, msg)
	case "clearrss":
		b.handleClearRSS(msg)
	default:
		b.handleText(msg)
	}
}

func (b *Bot) handleStart(msg Message) {
	debuglog.Infof("start command from chat %d", msg.ChatID)
	b.send(msg.ChatID, welcomeMessage(msg.UserName, b.isAuthorized(msg.ChatID)), b.mainMenu(msg.ChatID))
}

func (b *Bot) handleStatus(chatID int64) {
	count, err := b.downloader.CountTorrents()
	if err != nil {
		debuglog.Warnf("counting watch folder torrents: %v", err)
	}
	text := statusMessage(b.isAuthorized(chatID), b.downloader.Dir(), len(b.allowed), count)
	b.send(chatID, text, backKeyboard())
}

func (b *Bot) handleSetRSS(msg Message) {
	if !b.requireAuth(msg.ChatID) {
		return
	}

	fields := strings.Fields(msg.Args)
	if len(fields) == 0 || len(fields) > 2 {
		b.send(msg.ChatID, setRSSUsageMessage(), backKeyboard())
		return
	}

	name := storage.DefaultFeedName
	rawURL := fields[len(fields)-1]
	if len(fields) == 2 {
		name = fields[0]
		if err := validateFeedName(name); err != nil {
			b.send(msg.ChatID, invalidFeedNameMessage(err.Error()), nil)
			return
		}
	}

	url, err := b.urls.ValidateAndNormalize(rawURL)
	if err != nil {
		b.send(msg.ChatID, invalidURLMessage(err.Error()), nil)
		return
	}

	if err := b.store.SaveFeed(msg.ChatID, name, url); err != nil {
		if errors.Is(err, storage.ErrFeedLimit) {
			b.send(msg.ChatID, feedLimitMessage(b.maxFeeds), backKeyboard())
			return
		}
		debuglog.Errorf("saving feed for chat %d: %v", msg.ChatID, err)
		b.send(msg.ChatID, "❌ Error saving the feed. Please try again.", nil)
		return
	}

	debuglog.Infof("feed %q saved for chat %d", name, msg.ChatID)
	b.send(msg.ChatID, feedSavedMessage(name, url), backKeyboard())
}

func (b *Bot) handleFeeds(msg Message) {
	if !b.requireAuth(msg.ChatID) {
		return
	}

	feeds := b.store.GetAllFeeds(msg.ChatID)
	if len(feeds) == 0 {
		b.send(msg.ChatID, noFeedsMessage(), backKeyboard())
		return
	}
	b.send(msg.ChatID, feedsListMessage(feeds, b.maxFeeds), backKeyboard())
}

func (b *Bot) handleClearRSS(msg Message) {
	if !b.requireAuth(msg.ChatID) {
		return
	}

	name := strings.TrimSpace(msg.Args)
	if name == "" {
		feeds := b.store.GetAllFeeds(msg.ChatID)
		switch len(feeds) {
		case 0:
			b.send(msg.ChatID, noFeedsMessage(), backKeyboard())
			return
		case 1:
			for only := range feeds {
				name = only
			}
		default:
			b.send(msg.ChatID, clearPickMessage(feeds), backKeyboard())
			return
		}
	}

	removed, err := b.store.DeleteFeed(msg.ChatID, name)
	if err != nil {
		debuglog.Errorf("deleting feed %q for chat %d: %v", name, msg.ChatID, err)
		b.send(msg.ChatID, "❌ Error removing the feed. Please try again.", nil)
		return
	}
	if !removed {
		b.send(msg.ChatID, noSuchFeedMessage(name), backKeyboard())
		return
	}
	b.send(msg.ChatID, feedClearedMessage(name), backKeyboard())
}

func (b *Bot) handleBrowse(ctx context.Context, msg Message) {
	if !b.requireAuth(msg.ChatID) {
		return
	}

	name, url, ok := b.resolveFeed(msg.ChatID, strings.TrimSpace(msg.Args), func(text string, kb *Keyboard) {
		b.send(msg.ChatID, text, kb)
	})
	if !ok {
		return
	}

	messageID, err := b.gw.SendMessage(msg.ChatID, loadingMessage(), nil)
	if err != nil {
		debuglog.Errorf("sending loading message to chat %d: %v", msg.ChatID, err)
		return
	}
	b.openBrowse(ctx, msg.ChatID, messageID, name, url)
}

// resolveFeed maps an optional feed name to a stored URL. When the choice is
// ambiguous or impossible it replies through respond and reports false.
func (b *Bot) resolveFeed(chatID int64, name string, respond func(text string, kb *Keyboard)) (string, string, bool) {
	if name != "" {
		url, ok := b.store.GetFeed(chatID, name)
		if !ok {
			respond(noSuchFeedMessage(name), backKeyboard())
			return "", "", false
		}
		return name, url, true
	}

	feeds := b.store.GetAllFeeds(chatID)
	switch len(feeds) {
	case 0:
		respond(noFeedsMessage(), backKeyboard())
		return "", "", false
	case 1:
		for only, url := range feeds {
			return only, url, true
		}
	}
	respond(pickFeedMessage(), feedPickerKeyboard(feeds))
	return "", "", false
}

// openBrowse fetches the feed and replaces the message at messageID with the
// first page of a fresh session.
func (b *Bot) openBrowse(ctx context.Context, chatID int64, messageID int, name, url string) {
	result, err := b.fetcher.Fetch(ctx, url)
	if err != nil {
		debuglog.Errorf("fetching feed %q for chat %d: %v", name, chatID, err)
		b.edit(chatID, messageID, feedErrorMessage(), backKeyboard())
		return
	}
	if len(result.Entries) == 0 {
		b.edit(chatID, messageID, feedEmptyMessage(), backKeyboard())
		return
	}

	title := result.Title
	if title == "" {
		title = name
	}
	m := b.sessions.Open(chatID, name, title, result.Entries)
	b.renderBrowse(chatID, messageID, m)
}

func (b *Bot) handleDocument(ctx context.Context, msg Message) {
	doc := msg.Document

	if !b.isAuthorized(msg.ChatID) {
		debuglog.Warnf("unauthorized upload attempt from chat %d", msg.ChatID)
		b.send(msg.ChatID, notAuthorizedMessage(msg.ChatID), nil)
		return
	}

	if !validation.HasTorrentExtension(doc.FileName) {
		b.send(msg.ChatID, invalidFileMessage(), helpPointerKeyboard())
		return
	}

	file := b.saveDocument(ctx, doc)
	if file.OK() {
		debuglog.Infof("torrent saved: %s (chat %d)", file.Name, msg.ChatID)
	} else {
		debuglog.Errorf("saving torrent %s for chat %d: %v", doc.FileName, msg.ChatID, file.Err)
	}
	b.coordinator.Record(msg.ChatID, file)
}

func (b *Bot) saveDocument(ctx context.Context, doc *Document) batch.File {
	rc, err := b.gw.DownloadFile(ctx, doc.FileID)
	if err != nil {
		return batch.File{Name: doc.FileName, SizeKB: doc.SizeKB, Err: err}
	}
	defer rc.Close()

	name, sizeKB, err := b.downloader.SaveUpload(doc.FileName, rc)
	if err != nil {
		return batch.File{Name: doc.FileName, SizeKB: doc.SizeKB, Err: err}
	}
	return batch.File{Name: name, SizeKB: sizeKB}
}

func (b *Bot) handleText(msg Message) {
	// Unauthorized chatter gets no reply at all.
	if !b.isAuthorized(msg.ChatID) {
		return
	}
	kb := &Keyboard{Rows: [][]Button{{
		{Text: "📖 Help", Data: Callback{Kind: CallbackHelp}.Encode()},
		{Text: "📋 How to Use", Data: Callback{Kind: CallbackHowTo}.Encode()},
	}}}
	b.send(msg.ChatID, sendTorrentHintMessage(), kb)
}

// HandleCallback dispatches one button press. The raw data is decoded here;
// handlers only ever see a typed Callback.
func (b *Bot) HandleCallback(ctx context.Context, query CallbackQuery) {
	cb, err := ParseCallback(query.Data)
	if err != nil {
		debuglog.Warnf("bad callback from chat %d: %v", query.ChatID, err)
		b.answer(query.ID, "❌ Unknown action")
		return
	}

	switch cb.Kind {
	case CallbackMenu:
		// Leaving for the menu ends the browse session, same as cancel
		b.sessions.Cancel(query.ChatID)
		b.answer(query.ID, "")
		b.edit(query.ChatID, query.MessageID, menuMessage(), b.mainMenu(query.ChatID))
	case CallbackHelp:
		b.answer(query.ID, "")
		b.edit(query.ChatID, query.MessageID, helpMessage(), backKeyboard())
	case CallbackHowTo:
		b.answer(query.ID, "")
		b.edit(query.ChatID, query.MessageID, howToMessage(), backKeyboard())
	case CallbackStatus:
		b.answer(query.ID, "")
		count, err := b.downloader.CountTorrents()
		if err != nil {
			debuglog.Warnf("counting watch folder torrents: %v", err)
		}
		text := statusMessage(b.isAuthorized(query.ChatID), b.downloader.Dir(), len(b.allowed), count)
		b.edit(query.ChatID, query.MessageID, text, backKeyboard())
	case CallbackChatID:
		b.answer(query.ID, "")
		b.edit(query.ChatID, query.MessageID, chatIDMessage(query.UserName, query.ChatID), backKeyboard())
	case CallbackBrowse:
		b.callbackBrowse(ctx, query, cb.Feed)
	case CallbackPage:
		b.callbackPage(query, cb.Page)
	case CallbackToggle:
		b.callbackToggle(query, cb.Index)
	case CallbackPageInfo:
		b.callbackPageInfo(query)
	case CallbackDownload:
		b.callbackDownload(ctx, query)
	case CallbackCancel:
		b.sessions.Cancel(query.ChatID)
		b.answer(query.ID, "")
		b.edit(query.ChatID, query.MessageID, menuMessage(), b.mainMenu(query.ChatID))
	}
}

func (b *Bot) callbackBrowse(ctx context.Context, query CallbackQuery, feedName string) {
	if !b.isAuthorized(query.ChatID) {
		b.answer(query.ID, "⛔ Not authorized")
		return
	}

	name, url, ok := b.resolveFeed(query.ChatID, feedName, func(text string, kb *Keyboard) {
		b.edit(query.ChatID, query.MessageID, text, kb)
	})
	b.answer(query.ID, "")
	if !ok {
		return
	}

	b.edit(query.ChatID, query.MessageID, loadingMessage(), nil)
	b.openBrowse(ctx, query.ChatID, query.MessageID, name, url)
}

func (b *Bot) callbackPage(query CallbackQuery, page int) {
	m, err := b.sessions.Navigate(query.ChatID, page)
	if err != nil {
		b.answerExpired(query.ID)
		return
	}
	b.answer(query.ID, "")
	b.renderBrowse(query.ChatID, query.MessageID, m)
}

func (b *Bot) callbackToggle(query CallbackQuery, index int) {
	m, selected, err := b.sessions.Toggle(query.ChatID, index)
	if err != nil {
		b.answerExpired(query.ID)
		return
	}

	if selected {
		b.answer(query.ID, "✅ Selected")
	} else {
		b.answer(query.ID, "☐ Unselected")
	}
	b.renderBrowse(query.ChatID, query.MessageID, m)
}

func (b *Bot) callbackPageInfo(query CallbackQuery) {
	m, err := b.sessions.Current(query.ChatID)
	if err != nil {
		b.answerExpired(query.ID)
		return
	}
	b.answer(query.ID, fmt.Sprintf("📄 Page %d of %d", m.Page+1, m.TotalPages))
}

// callbackDownload fetches every selected entry into the watch folder. One
// failed entry does not stop the rest, and the selection is cleared no
// matter what.
func (b *Bot) callbackDownload(ctx context.Context, query CallbackQuery) {
	if !b.isAuthorized(query.ChatID) {
		b.answer(query.ID, "⛔ Not authorized")
		return
	}

	entries, err := b.sessions.TakeSelection(query.ChatID)
	if err != nil {
		b.answerExpired(query.ID)
		return
	}
	if len(entries) == 0 {
		b.answer(query.ID, "⚠️ No torrents selected!")
		return
	}

	b.answer(query.ID, fmt.Sprintf("⬇️ Downloading %d torrent(s)...", len(entries)))

	var ok []batch.File
	var failed []string
	for _, entry := range entries {
		if entry.Link == "" {
			failed = append(failed, entry.Title)
			continue
		}
		name, sizeKB, err := b.downloader.FetchLink(ctx, entry.Title, entry.Link)
		if err != nil {
			debuglog.Errorf("downloading %q for chat %d: %v", entry.Title, query.ChatID, err)
			failed = append(failed, entry.Title)
			continue
		}
		debuglog.Infof("feed torrent downloaded: %s (chat %d)", name, query.ChatID)
		ok = append(ok, batch.File{Name: name, SizeKB: sizeKB})
	}

	b.edit(query.ChatID, query.MessageID, downloadSummaryMessage(ok, failed), backKeyboard())
}

func (b *Bot) requireAuth(chatID int64) bool {
	if b.isAuthorized(chatID) {
		return true
	}
	debuglog.Warnf("unauthorized command from chat %d", chatID)
	b.send(chatID, notAuthorizedMessage(chatID), nil)
	return false
}

func (b *Bot) mainMenu(chatID int64) *Keyboard {
	return mainMenuKeyboard(b.store.CountFeeds(chatID) > 0)
}

func (b *Bot) renderBrowse(chatID int64, messageID int, m browse.Model) {
	b.edit(chatID, messageID, browseHeaderMessage(m), browseKeyboard(m))
}

func (b *Bot) send(chatID int64, text string, kb *Keyboard) {
	if _, err := b.gw.SendMessage(chatID, text, kb); err != nil {
		debuglog.Errorf("sending message to chat %d: %v", chatID, err)
	}
}

func (b *Bot) edit(chatID int64, messageID int, text string, kb *Keyboard) {
	if err := b.gw.EditMessage(chatID, messageID, text, kb); err != nil {
		debuglog.Errorf("editing message %d in chat %d: %v", messageID, chatID, err)
	}
}

func (b *Bot) answer(callbackID, text string) {
	if err := b.gw.AnswerCallback(callbackID, text); err != nil {
		debuglog.Warnf("answering callback: %v", err)
	}
}

func (b *Bot) answerExpired(callbackID string) {
	b.answer(callbackID, "⚠️ Session expired. Use /browse to start again.")
}
