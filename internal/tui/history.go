package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/angelmondragon/spesa/internal/catalog"
	"github.com/angelmondragon/spesa/internal/history"
)

type (
	historyMsg struct {
		entries []catalog.HistoryEntry
		err     error
	}
	historyItemsMsg struct {
		id    int64
		items []catalog.HistoryItem
		err   error
	}
	restoredMsg struct {
		summary history.Summary
		err     error
	}
	historyDeletedMsg struct {
		id  int64
		err error
	}
)

func (m *Model) loadHistory() tea.Cmd {
	ctx := m.ctx
	svc := m.deps.History
	return func() tea.Msg {
		entries, err := svc.List(ctx)
		return historyMsg{entries: entries, err: err}
	}
}

func (m *Model) selectedEntry() (catalog.HistoryEntry, bool) {
	if m.entryCursor < 0 || m.entryCursor >= len(m.entries) {
		return catalog.HistoryEntry{}, false
	}
	return m.entries[m.entryCursor], true
}

func (m *Model) updateHistory(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.entryCursor = clampCursor(m.entryCursor-1, len(m.entries))
		m.showItems = false
		return nil
	case key.Matches(msg, m.keys.Down):
		m.entryCursor = clampCursor(m.entryCursor+1, len(m.entries))
		m.showItems = false
		return nil
	case key.Matches(msg, m.keys.Back):
		m.showItems = false
		return nil
	}

	entry, ok := m.selectedEntry()
	if !ok {
		return nil
	}
	ctx := m.ctx
	svc := m.deps.History
	switch {
	case key.Matches(msg, m.keys.Open):
		return func() tea.Msg {
			items, err := svc.Items(ctx, entry.ID)
			return historyItemsMsg{id: entry.ID, items: items, err: err}
		}
	case key.Matches(msg, m.keys.Restore):
		return func() tea.Msg {
			summary, err := svc.Restore(ctx, entry.ID)
			return restoredMsg{summary: summary, err: err}
		}
	case key.Matches(msg, m.keys.Delete):
		return func() tea.Msg {
			return historyDeletedMsg{id: entry.ID, err: svc.Delete(ctx, entry.ID)}
		}
	}
	return nil
}

func (m *Model) updateHistoryData(msg tea.Msg) tea.Cmd {
	var err error
	switch msg := msg.(type) {
	case historyMsg:
		err = msg.err
		if err == nil {
			m.entries = msg.entries
			m.entryCursor = clampCursor(m.entryCursor, len(m.entries))
		}
	case historyItemsMsg:
		err = msg.err
		if err == nil {
			m.entryItems = msg.items
			m.showItems = true
		}
	case restoredMsg:
		err = msg.err
		if err == nil {
			m.setFlash(msg.summary.String())
			return m.loadCart()
		}
	case historyDeletedMsg:
		err = msg.err
		if err == nil {
			m.showItems = false
			m.setFlash("Shopping trip deleted")
			return m.loadHistory()
		}
	}
	if m.unauthorized(err) {
		return m.signOut("Session expired, sign in again")
	}
	if err != nil {
		m.setError(err)
	}
	return nil
}

// loadCart refetches the cart rows, joined against the current snapshot.
func (m *Model) loadCart() tea.Cmd {
	ctx := m.ctx
	l := m.deps.Loader
	snap := m.snapshot
	return func() tea.Msg {
		rows, _, err := l.LoadCart(ctx, snap)
		return cartMsg{rows: rows, err: err}
	}
}

func (m *Model) viewHistory() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Shopping history"))
	b.WriteString("\n\n")
	if len(m.entries) == 0 {
		b.WriteString(m.styles.Muted.Render("No finalized shopping trips yet."))
		return b.String()
	}

	var list strings.Builder
	for i, e := range m.entries {
		line := fmt.Sprintf("%s  %s  %s", e.CreatedAt, pluralize(e.TotalItems, "item", "items"), catalog.FormatEuro(e.TotalPrice))
		if i == m.entryCursor {
			list.WriteString(m.styles.Selected.Render(line))
		} else {
			list.WriteString(m.styles.Row.Render(line))
		}
		list.WriteString("\n")
	}
	if !m.showItems {
		b.WriteString(list.String())
		return b.String()
	}

	var items strings.Builder
	store := ""
	for _, it := range m.entryItems {
		if it.SupermarketName != store {
			store = it.SupermarketName
			items.WriteString(m.styles.Section.Render(store))
			items.WriteString("\n")
		}
		line := fmt.Sprintf("×%d %s  %s", it.Quantity, it.Name, catalog.FormatEuro(it.PricePaid))
		if it.WasDiscounted {
			line += " " + m.styles.Favorite.Render("(sale)")
		}
		items.WriteString(m.styles.Row.Render(line))
		items.WriteString("\n")
	}
	items.WriteString("\n")
	items.WriteString(m.styles.Price.Render("Total " + catalog.FormatEuro(history.Total(m.entryItems))))

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().PaddingRight(4).Render(list.String()),
		m.styles.Overlay.Render(items.String()),
	))
	return b.String()
}
