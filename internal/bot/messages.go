package bot

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pders01/torrentdrop/internal/batch"
	"github.com/pders01/torrentdrop/internal/browse"
)

// Message templates. Plain text with emoji; no platform markup, so user
// supplied names and URLs never need escaping.

func welcomeMessage(userName string, authorized bool) string {
	status := "⚠️ NOT AUTHORIZED"
	if authorized {
		status = "✅ AUTHORIZED"
	}
	return fmt.Sprintf(
		"🤖 Send Torrent Bot\n\n"+
			"👋 Welcome %s!\n\n"+
			"Send me a .torrent file and I'll drop it into the watch folder "+
			"for your torrent client.\n\n"+
			"Authorization: %s\n\n"+
			"💡 Use the menu below to get started.",
		userName, status)
}

func helpMessage() string {
	return "📖 Help\n\n" +
		"Available commands:\n\n" +
		"🏠 /start - Main menu & welcome\n" +
		"❓ /help - Show this help\n" +
		"📊 /status - Bot status\n" +
		"🎯 /menu - Interactive menu\n" +
		"📡 /setrss [name] <url> - Add or update a feed\n" +
		"📋 /feeds - List your feeds\n" +
		"🔍 /browse [name] - Browse a feed\n" +
		"🗑️ /clearrss [name] - Remove a feed\n\n" +
		"Quick actions:\n" +
		"• Send any .torrent file\n" +
		"• Use the menu buttons\n\n" +
		"💡 Tip: keep your chat ID private."
}

func howToMessage() string {
	return "📋 How to Use\n\n" +
		"1️⃣ Find a .torrent file\n" +
		"2️⃣ Send it to this bot\n" +
		"3️⃣ Wait for confirmation\n" +
		"4️⃣ Check your torrent client\n\n" +
		"Or register an RSS feed with /setrss and bulk-download entries " +
		"with /browse.\n\n" +
		"• Only .torrent files are accepted\n" +
		"• Files are picked up automatically by the client"
}

func menuMessage() string {
	return "🎯 Main Menu\n\nSelect an option below:"
}

func statusMessage(authorized bool, watchFolder string, userCount, torrentCount int) string {
	access := "❌ NOT AUTHORIZED"
	if authorized {
		access = "✅ AUTHORIZED"
	}
	return fmt.Sprintf(
		"📊 Bot Status\n\n"+
			"🟢 System: ONLINE\n"+
			"🔑 Your access: %s\n\n"+
			"📁 Watch folder:\n%s\n\n"+
			"• Authorized users: %d\n"+
			"• Torrents in queue: %d",
		access, watchFolder, userCount, torrentCount)
}

func chatIDMessage(userName string, chatID int64) string {
	return fmt.Sprintf(
		"🔑 Your Chat ID\n\n"+
			"👤 User: %s\n"+
			"🆔 Chat ID: %d\n\n"+
			"Add this ID to the allowed list in the bot's configuration "+
			"to gain access.\n\n"+
			"⚠️ Keep this ID private.",
		userName, chatID)
}

func notAuthorizedMessage(chatID int64) string {
	return fmt.Sprintf(
		"🚫 Access Denied\n\n"+
			"⛔ You are not authorized to use this bot.\n\n"+
			"🔑 Your chat ID: %d\n\n"+
			"Ask the administrator to add it to the allowed list.",
		chatID)
}

func invalidFileMessage() string {
	return "⚠️ Invalid File\n\n" +
		"❌ This is not a torrent file.\n\n" +
		"📦 Please send only files with a .torrent extension."
}

func sendTorrentHintMessage() string {
	return "ℹ️ Please send me a .torrent file.\n\nUse the buttons below for help."
}

func setRSSUsageMessage() string {
	return fmt.Sprintf(
		"📡 Add an RSS Feed\n\n"+
			"Usage:\n"+
			"/setrss <url>\n"+
			"/setrss <name> <url>\n\n"+
			"Example:\n"+
			"/setrss movies https://example.com/rss/feed\n\n"+
			"💡 Names are a single word, up to %d characters. The URL is the "+
			"personal RSS link from your tracker.", maxFeedNameBytes)
}

func invalidFeedNameMessage(reason string) string {
	return fmt.Sprintf("❌ Invalid feed name: %s", reason)
}

func invalidURLMessage(reason string) string {
	return fmt.Sprintf("❌ Invalid URL: %s", reason)
}

func feedSavedMessage(name, url string) string {
	return fmt.Sprintf(
		"✅ Feed Saved\n\n"+
			"📡 %s\n%s\n\n"+
			"💡 Use /browse %s to view it, /clearrss %s to remove it.",
		name, url, name, name)
}

func feedLimitMessage(max int) string {
	return fmt.Sprintf(
		"⚠️ Feed limit reached (%d).\n\n"+
			"Remove one with /clearrss <name> before adding another.", max)
}

func feedClearedMessage(name string) string {
	return fmt.Sprintf(
		"✅ Feed Removed\n\n"+
			"🗑️ %q is gone.\n\n"+
			"💡 Use /setrss to add a new feed.", name)
}

func noSuchFeedMessage(name string) string {
	return fmt.Sprintf("⚠️ No feed named %q.\n\nUse /feeds to list your feeds.", name)
}

func noFeedsMessage() string {
	return "📡 No RSS Feeds\n\n" +
		"⚠️ You haven't configured a feed yet.\n\n" +
		"💡 Use /setrss <url> to add one."
}

func feedsListMessage(feeds map[string]string, max int) string {
	names := make([]string, 0, len(feeds))
	for name := range feeds {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 Your Feeds (%d/%d)\n\n", len(feeds), max)
	for _, name := range names {
		fmt.Fprintf(&sb, "📡 %s\n%s\n\n", name, feeds[name])
	}
	sb.WriteString("💡 /browse <name> to view one, /clearrss <name> to remove.")
	return sb.String()
}

func pickFeedMessage() string {
	return "📡 You have several feeds.\n\nWhich one do you want?"
}

func clearPickMessage(feeds map[string]string) string {
	names := make([]string, 0, len(feeds))
	for name := range feeds {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf(
		"⚠️ You have several feeds: %s\n\nUse /clearrss <name> to pick one.",
		strings.Join(names, ", "))
}

func loadingMessage() string {
	return "📡 Loading RSS feed...\nPlease wait."
}

func feedEmptyMessage() string {
	return "📡 RSS Feed Empty\n\nNo torrents found in the feed."
}

func feedErrorMessage() string {
	return "❌ Error loading RSS feed.\n\nPlease check your connection or the feed URL."
}

// browseHeaderMessage is the text above the entry keyboard.
func browseHeaderMessage(m browse.Model) string {
	unit := "torrents"
	if m.TotalEntries == 1 {
		unit = "torrent"
	}
	selected := ""
	if m.SelectedCount > 0 {
		selected = fmt.Sprintf(" | Selected: %d", m.SelectedCount)
	}
	return fmt.Sprintf(
		"📡 RSS Feed\n\n"+
			"🎯 %s\n\n"+
			"📊 Total: %d %s%s\n"+
			"📄 %s\n"+
			"🎬 Movies | 📺 Series | 📦 Others\n\n"+
			"☐ Click to select | ✅ Selected\n"+
			"👇 Choose torrents to download:",
		m.FeedTitle, m.TotalEntries, unit, selected, m.PageLabel)
}

// downloadSummaryMessage reports a bulk download, successes first.
func downloadSummaryMessage(ok []batch.File, failed []string) string {
	unit := "torrents"
	if len(ok) == 1 {
		unit = "torrent"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ Success!\n\n🎉 %d %s downloaded from RSS.\n\n", len(ok), unit)

	if len(ok) > 0 {
		sb.WriteString("📁 Downloaded files:\n\n")
		for i, f := range ok {
			fmt.Fprintf(&sb, "%d. %s\n   Size: %.2f KB\n   Status: QUEUED\n", i+1, f.Name, f.SizeKB)
		}
		sb.WriteString("\n")
	}

	if len(failed) > 0 {
		sb.WriteString("⚠️ Failed:\n")
		for i, name := range failed {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, name)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("🚀 Your torrent client will pick them up automatically!")
	return sb.String()
}

// batchSummaryMessage reports a drained upload batch. A single file keeps
// the detailed single-upload format.
func batchSummaryMessage(files []batch.File) string {
	var ok, failed []batch.File
	for _, f := range files {
		if f.OK() {
			ok = append(ok, f)
		} else {
			failed = append(failed, f)
		}
	}

	if len(files) == 1 {
		f := files[0]
		if f.OK() {
			return fmt.Sprintf(
				"✅ Success!\n\n"+
					"🎉 Torrent received and saved.\n\n"+
					"📁 Name: %s\n"+
					"   Size: %.2f KB\n"+
					"   Status: QUEUED\n\n"+
					"🚀 Your torrent client will pick it up automatically!",
				f.Name, f.SizeKB)
		}
		return "❌ Error\n\n" +
			"⚠️ Failed to save the torrent file. Please try again.\n\n" +
			"🔧 If the problem persists, contact the administrator."
	}

	var sb strings.Builder
	sb.WriteString("✅ Multiple torrents received!\n\n")

	if len(ok) > 0 {
		sb.WriteString("📁 Files processed:\n\n")
		for i, f := range ok {
			fmt.Fprintf(&sb, "%d. %s\n   Size: %.2f KB\n   Status: QUEUED\n", i+1, f.Name, f.SizeKB)
		}
		sb.WriteString("\n")
	}

	if len(failed) > 0 {
		sb.WriteString("⚠️ Failed files:\n")
		for i, f := range failed {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, f.Name)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("🚀 Your torrent client will pick them up automatically!")
	return sb.String()
}
