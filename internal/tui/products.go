package tui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/angelmondragon/spesa/internal/browse"
	"github.com/angelmondragon/spesa/internal/catalog"
	"github.com/angelmondragon/spesa/internal/render"
)

// title, filter line and search line above the product rows
const productHeaderRows = 3

func (m *Model) categoryOptions() []string {
	opts := []string{browse.CategoryAll, browse.CategorySale, browse.CategoryFavorites}
	return append(opts, catalog.Categories(m.snapshot.Products)...)
}

func (m *Model) storeOptions() []int64 {
	opts := []int64{browse.AllStores}
	for _, s := range m.snapshot.Supermarkets {
		opts = append(opts, s.ID)
	}
	return opts
}

func next[T comparable](opts []T, current T) T {
	i := slices.Index(opts, current)
	return opts[(i+1)%len(opts)]
}

// dispatch reduces a view action and re-derives the list from the top.
func (m *Model) dispatch(a browse.Action) {
	m.view = browse.Reduce(m.view, a)
	m.rederive(true)
}

func (m *Model) moveProductCursor(delta int) tea.Cmd {
	m.productCursor = clampCursor(m.productCursor+delta, len(m.derived))
	if m.products.Reveal(m.productCursor) {
		return m.requestFrame()
	}
	return nil
}

func (m *Model) pageRows(l *render.List) int {
	stride := max(1, l.Metrics().Stride())
	return max(1, (m.height-chromeRows-m.helpRows()-productHeaderRows)/stride)
}

func (m *Model) selectedProduct() (catalog.Product, bool) {
	if m.productCursor < 0 || m.productCursor >= len(m.derived) {
		return catalog.Product{}, false
	}
	return m.derived[m.productCursor], true
}

func (m *Model) updateProducts(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Up):
		return m.moveProductCursor(-1)
	case key.Matches(msg, m.keys.Down):
		return m.moveProductCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		return m.moveProductCursor(-m.pageRows(m.products))
	case key.Matches(msg, m.keys.PageDown):
		return m.moveProductCursor(m.pageRows(m.products))
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue(m.view.Search)
		return tea.Batch(m.search.Focus(), textinput.Blink)
	case key.Matches(msg, m.keys.Category):
		m.dispatch(browse.SetCategory{Category: next(m.categoryOptions(), m.view.Category)})
		return nil
	case key.Matches(msg, m.keys.Store):
		m.dispatch(browse.SetStore{Store: next(m.storeOptions(), m.view.Store)})
		return nil
	case key.Matches(msg, m.keys.Back):
		m.dispatch(browse.Reset{})
		return nil
	}

	p, ok := m.selectedProduct()
	if !ok {
		return nil
	}
	switch {
	case key.Matches(msg, m.keys.Favorite):
		m.fire(m.products, p.ID, render.EventToggleFavorite)
	case key.Matches(msg, m.keys.Add):
		m.fire(m.products, p.ID, render.EventAddToCart)
	case key.Matches(msg, m.keys.Open):
		m.fire(m.products, p.ID, render.EventOpenDetail)
	}
	return nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.search.Blur()
		return nil
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.dispatch(browse.SetSearch{Text: ""})
		return nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != m.view.Search {
		m.dispatch(browse.SetSearch{Text: m.search.Value()})
	}
	return cmd
}

func (m *Model) viewProducts() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(fmt.Sprintf("Products (%d)", len(m.derived))))
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render(fmt.Sprintf("category: %s • store: %s", m.categoryLabel(), m.storeLabel())))
	b.WriteString("\n")
	switch {
	case m.searching:
		b.WriteString(m.search.View())
	case m.view.Search != "":
		b.WriteString(m.styles.Muted.Render("search: " + m.view.Search))
	}
	b.WriteString("\n")

	if len(m.derived) == 0 {
		b.WriteString(m.styles.Muted.Render("No products match the current filters."))
		return b.String()
	}
	b.WriteString(m.paintList(m.products, m.productCursor, m.productRow))
	return b.String()
}

func (m *Model) categoryLabel() string {
	switch m.view.Category {
	case browse.CategorySale:
		return "on sale"
	case browse.CategoryFavorites:
		return "favorites"
	case browse.CategoryAll, "":
		return "all"
	}
	return m.view.Category
}

func (m *Model) storeLabel() string {
	if m.view.Store == browse.AllStores {
		return "all (by name)"
	}
	return m.snapshot.Stores.Name(m.view.Store) + " (by aisle)"
}

// paintList draws the mounted rows of l at their virtual positions.
func (m *Model) paintList(l *render.List, cursor int, row func(n *render.Node, selected bool) []string) string {
	height := max(0, m.height-chromeRows-m.helpRows()-m.headerRowsOf(l))
	canvas := make([]string, height)
	for _, n := range l.Visible() {
		lines := row(n, n.Index == cursor)
		for i := 0; i < len(lines) && i < n.Height; i++ {
			y := n.Top - l.Offset() + i
			if y >= 0 && y < height {
				canvas[y] = lines[i]
			}
		}
	}
	return strings.Join(canvas, "\n")
}

func (m *Model) headerRowsOf(l *render.List) int {
	if l == m.cart {
		return cartHeaderRows
	}
	return productHeaderRows
}

func (m *Model) productRow(n *render.Node, selected bool) []string {
	p, ok := n.Payload.(catalog.Product)
	if !ok {
		return nil
	}
	fav := "  "
	if m.state != nil && m.state.IsFavorite(p.ID) {
		fav = m.styles.Favorite.Render("♥ ")
	}
	title := fav + lipgloss.NewStyle().Bold(true).Render(p.Name)
	if p.OnSale() {
		title += " " + m.styles.Badge.Render("-"+strconv.Itoa(p.DiscountPercent())+"%")
	}

	price := m.styles.Price.Render(catalog.FormatEuro(p.UnitPrice()))
	if p.OnSale() {
		price += " " + m.styles.Struck.Render(catalog.FormatEuro(p.OriginalPrice))
	}
	price += m.styles.Muted.Render(" / " + p.Unit)

	meta := m.styles.Muted.Render(p.CategoryLabel() + " • " + m.snapshot.Stores.Name(p.SupermarketID))
	if m.state != nil {
		if q := m.state.Quantity(p.ID); q > 0 {
			meta += m.styles.Flash.Render(fmt.Sprintf("  in list ×%d", q))
		}
	}

	lines := []string{title, "  " + price, "  " + meta}
	style := m.styles.Row
	if selected {
		style = m.styles.Selected
	}
	for i := range lines {
		lines[i] = style.Render(lines[i])
	}
	return lines
}

func (m *Model) updateSupermarkets(msg tea.KeyMsg) tea.Cmd {
	stores := m.snapshot.Supermarkets
	switch {
	case key.Matches(msg, m.keys.Up):
		m.storeCursor = clampCursor(m.storeCursor-1, len(stores))
	case key.Matches(msg, m.keys.Down):
		m.storeCursor = clampCursor(m.storeCursor+1, len(stores))
	case key.Matches(msg, m.keys.Open):
		if m.storeCursor >= len(stores) {
			return nil
		}
		m.view = browse.Reduce(m.view, browse.Reset{})
		m.dispatch(browse.SetStore{Store: stores[m.storeCursor].ID})
		m.switchTo(screenProducts)
	}
	return nil
}

func (m *Model) viewSupermarkets() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Supermarkets"))
	b.WriteString("\n\n")
	if len(m.snapshot.Supermarkets) == 0 {
		b.WriteString(m.styles.Muted.Render("No supermarkets available."))
		return b.String()
	}
	for i, s := range m.snapshot.Supermarkets {
		line := lipgloss.NewStyle().Bold(true).Render(s.Name)
		if s.Location != nil && *s.Location != "" {
			line += m.styles.Muted.Render("  " + *s.Location)
		}
		count := 0
		for _, p := range m.snapshot.Products {
			if p.SupermarketID == s.ID {
				count++
			}
		}
		line += m.styles.Muted.Render(fmt.Sprintf("  (%s)", pluralize(count, "product", "products")))
		if i == m.storeCursor {
			b.WriteString(m.styles.Selected.Render(line))
		} else {
			b.WriteString(m.styles.Row.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return strconv.Itoa(n) + " " + many
}
