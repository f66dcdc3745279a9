package bot

import (
	"fmt"
	"sort"

	"github.com/pders01/torrentdrop/internal/browse"
)

func mainMenuKeyboard(hasFeeds bool) *Keyboard {
	kb := &Keyboard{Rows: [][]Button{
		{
			{Text: "ℹ️ Help", Data: Callback{Kind: CallbackHelp}.Encode()},
			{Text: "📊 Status", Data: Callback{Kind: CallbackStatus}.Encode()},
		},
		{
			{Text: "📋 How to Use", Data: Callback{Kind: CallbackHowTo}.Encode()},
			{Text: "🔑 My Chat ID", Data: Callback{Kind: CallbackChatID}.Encode()},
		},
	}}

	if hasFeeds {
		kb.Rows = append(kb.Rows, []Button{
			{Text: "📡 Browse RSS Feeds", Data: Callback{Kind: CallbackBrowse}.Encode()},
		})
	}
	return kb
}

func backKeyboard() *Keyboard {
	return &Keyboard{Rows: [][]Button{
		{{Text: "🔙 Back to Menu", Data: Callback{Kind: CallbackMenu}.Encode()}},
	}}
}

func helpPointerKeyboard() *Keyboard {
	return &Keyboard{Rows: [][]Button{
		{{Text: "📖 See Help", Data: Callback{Kind: CallbackHelp}.Encode()}},
	}}
}

func summaryKeyboard() *Keyboard {
	return &Keyboard{Rows: [][]Button{
		{
			{Text: "📊 Check Status", Data: Callback{Kind: CallbackStatus}.Encode()},
			{Text: "🔙 Menu", Data: Callback{Kind: CallbackMenu}.Encode()},
		},
	}}
}

// feedPickerKeyboard offers one button per stored feed, in name order.
func feedPickerKeyboard(feeds map[string]string) *Keyboard {
	names := make([]string, 0, len(feeds))
	for name := range feeds {
		names = append(names, name)
	}
	sort.Strings(names)

	kb := &Keyboard{}
	for _, name := range names {
		kb.Rows = append(kb.Rows, []Button{
			{Text: "📡 " + name, Data: Callback{Kind: CallbackBrowse, Feed: name}.Encode()},
		})
	}
	kb.Rows = append(kb.Rows, []Button{
		{Text: "🔙 Back to Menu", Data: Callback{Kind: CallbackMenu}.Encode()},
	})
	return kb
}

// browseKeyboard renders one page of a browse session: an entry button per
// row, a download row when something is selected, navigation, and cancel.
func browseKeyboard(m browse.Model) *Keyboard {
	kb := &Keyboard{}

	for _, entry := range m.PageEntries {
		kb.Rows = append(kb.Rows, []Button{
			{Text: entry.Label, Data: Callback{Kind: CallbackToggle, Index: entry.Index}.Encode()},
		})
	}

	if m.SelectedCount > 0 {
		kb.Rows = append(kb.Rows, []Button{
			{
				Text: fmt.Sprintf("⬇️ Download (%d)", m.SelectedCount),
				Data: Callback{Kind: CallbackDownload}.Encode(),
			},
		})
	}

	var nav []Button
	if m.HasPrev {
		nav = append(nav, Button{
			Text: "◀️ Previous",
			Data: Callback{Kind: CallbackPage, Page: m.Page - 1}.Encode(),
		})
	}
	nav = append(nav, Button{
		Text: fmt.Sprintf("📄 %d/%d", m.Page+1, m.TotalPages),
		Data: Callback{Kind: CallbackPageInfo}.Encode(),
	})
	if m.HasNext {
		nav = append(nav, Button{
			Text: "Next ▶️",
			Data: Callback{Kind: CallbackPage, Page: m.Page + 1}.Encode(),
		})
	}
	kb.Rows = append(kb.Rows, nav)

	kb.Rows = append(kb.Rows, []Button{
		{Text: "❌ Cancel", Data: Callback{Kind: CallbackCancel}.Encode()},
	})
	return kb
}
