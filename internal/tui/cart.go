package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/angelmondragon/spesa/internal/catalog"
	"github.com/angelmondragon/spesa/internal/reconcile"
	"github.com/angelmondragon/spesa/internal/render"
	"github.com/angelmondragon/spesa/internal/shoppinglist"
)

// title, filter line and totals line above the cart rows
const cartHeaderRows = 3

func (m *Model) selectedRow() (catalog.CartRow, bool) {
	rows := m.cartView.Visible()
	if m.cartCursor < 0 || m.cartCursor >= len(rows) {
		return catalog.CartRow{}, false
	}
	return rows[m.cartCursor], true
}

func (m *Model) moveCartCursor(delta int) tea.Cmd {
	m.cartCursor = clampCursor(m.cartCursor+delta, len(m.cartView.Visible()))
	if m.cart.Reveal(m.cartCursor) {
		return m.requestFrame()
	}
	return nil
}

func (m *Model) updateCart(msg tea.KeyMsg) tea.Cmd {
	if m.state == nil {
		return nil
	}
	switch {
	case key.Matches(msg, m.keys.Up):
		return m.moveCartCursor(-1)
	case key.Matches(msg, m.keys.Down):
		return m.moveCartCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		return m.moveCartCursor(-m.pageRows(m.cart))
	case key.Matches(msg, m.keys.PageDown):
		return m.moveCartCursor(m.pageRows(m.cart))
	case key.Matches(msg, m.keys.Store):
		m.cartStore = next(append([]string{shoppinglist.AllStores}, m.cartView.Stores...), m.cartStore)
		m.cartCursor = 0
		m.rederive(false)
		return nil
	case key.Matches(msg, m.keys.Status):
		m.cartStatus = m.cartStatus.Next()
		m.cartCursor = 0
		m.rederive(false)
		return nil
	case key.Matches(msg, m.keys.All):
		var cmds []tea.Cmd
		for _, c := range reconcile.ToggleAllVisible(m.state, m.cartView.VisibleIDs()) {
			cmds = append(cmds, m.run(c))
		}
		return tea.Batch(cmds...)
	case key.Matches(msg, m.keys.Finalize):
		if len(m.state.Bought()) == 0 {
			m.setFlash("Mark items as bought before finalizing")
			return nil
		}
		return m.run(&reconcile.Finalize{})
	case key.Matches(msg, m.keys.Clear):
		if m.state.Len() == 0 {
			return nil
		}
		m.confirmClear = true
		m.setFlash("Clear the whole shopping list? (y/n)")
		return nil
	}

	r, ok := m.selectedRow()
	if !ok {
		return nil
	}
	switch {
	case key.Matches(msg, m.keys.Bought):
		m.fire(m.cart, r.Item.ID, render.EventToggleBought)
	case key.Matches(msg, m.keys.Inc):
		m.fire(m.cart, r.Item.ID, render.EventIncrement)
	case key.Matches(msg, m.keys.Dec):
		m.fire(m.cart, r.Item.ID, render.EventDecrement)
	case key.Matches(msg, m.keys.Remove):
		m.fire(m.cart, r.Item.ID, render.EventRemove)
	case key.Matches(msg, m.keys.Open):
		m.fire(m.cart, r.Item.ID, render.EventOpenDetail)
	}
	return nil
}

func (m *Model) updateConfirmClear(msg tea.KeyMsg) tea.Cmd {
	m.confirmClear = false
	m.flash = ""
	if msg.String() == "y" || msg.String() == "Y" {
		return m.run(&reconcile.ClearCart{})
	}
	return nil
}

func (m *Model) viewCart() string {
	var b strings.Builder
	v := m.cartView
	b.WriteString(m.styles.Title.Render("Shopping list"))
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render(fmt.Sprintf("store: %s • showing: %s", v.Store, v.Status)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Total %s  •  To buy %s",
		m.styles.Price.Render(catalog.FormatEuro(v.Totals.Total)),
		m.styles.Price.Render(catalog.FormatEuro(v.Totals.Pending))))
	b.WriteString("\n")

	if v.Empty {
		b.WriteString(m.styles.Muted.Render("Your shopping list is empty. Add products from the catalog."))
		return b.String()
	}
	if len(v.Visible()) == 0 {
		b.WriteString(m.styles.Muted.Render("Nothing to show with the current filters."))
		return b.String()
	}
	b.WriteString(m.paintList(m.cart, m.cartCursor, m.cartRow))
	return b.String()
}

func (m *Model) cartRow(n *render.Node, selected bool) []string {
	r, ok := n.Payload.(catalog.CartRow)
	if !ok {
		return nil
	}
	// the payload was captured at mount time; read the live row
	if m.state != nil {
		if live, ok := m.state.Row(r.Item.ID); ok {
			r = live
		}
	}

	box := "[ ]"
	name := lipgloss.NewStyle().Bold(true).Render(r.Product.Name)
	if r.Item.Checked {
		box = "[x]"
		name = m.styles.Done.Render(r.Product.Name)
	}
	title := box + " " + name
	if r.Product.OnSale() {
		title += " " + m.styles.Badge.Render(fmt.Sprintf("-%d%%", r.Product.DiscountPercent()))
	}

	qty := fmt.Sprintf("    ×%d  %s", r.Item.Quantity, m.styles.Price.Render(catalog.FormatEuro(r.LineTotal())))
	meta := m.styles.Muted.Render("    " + r.StoreName() + " • " + r.Product.CategoryLabel())
	if r.Product.AisleOrder != nil {
		meta += m.styles.Muted.Render(fmt.Sprintf(" • aisle %g", *r.Product.AisleOrder))
	}

	section := ""
	switch m.cartView.SectionAt(n.Index) {
	case shoppinglist.SectionPending:
		section = m.styles.Section.Render(fmt.Sprintf("To buy (%d)", len(m.cartView.Pending)))
	case shoppinglist.SectionBought:
		section = m.styles.Section.Render(fmt.Sprintf("Bought (%d)", len(m.cartView.Bought)))
	}

	lines := []string{title, qty, meta}
	style := m.styles.Row
	if selected {
		style = m.styles.Selected
	}
	for i := range lines {
		lines[i] = style.Render(lines[i])
	}
	if section != "" {
		lines = append([]string{section}, lines...)
	}
	return lines
}
