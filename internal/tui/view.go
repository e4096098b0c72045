package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/angelmondragon/spesa/internal/browse"
	"github.com/angelmondragon/spesa/internal/catalog"
	"github.com/angelmondragon/spesa/internal/detail"
	"github.com/angelmondragon/spesa/internal/reconcile"
)

const offersPreview = 4

func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var body string
	switch m.screen {
	case screenLogin:
		body = m.viewLogin()
	case screenRegister:
		body = m.viewRegister()
	case screenDashboard:
		body = m.viewDashboard()
	case screenProducts:
		body = m.viewProducts()
	case screenSupermarkets:
		body = m.viewSupermarkets()
	case screenCart:
		body = m.viewCart()
	case screenHistory:
		body = m.viewHistory()
	}
	if m.detailOpen {
		body = m.viewDetail()
	}

	var b strings.Builder
	if m.screen != screenLogin && m.screen != screenRegister {
		b.WriteString(m.viewTabs())
		b.WriteString("\n")
	}
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(m.viewFlash())
	if m.screen != screenLogin && m.screen != screenRegister {
		b.WriteString("\n")
		b.WriteString(m.help.View(m.keys.forScreen(m.screen)))
	}
	return m.styles.App.Render(b.String())
}

func (m *Model) viewTabs() string {
	tabs := []struct {
		s     screen
		label string
	}{
		{screenDashboard, "1 Home"},
		{screenProducts, "2 Products"},
		{screenSupermarkets, "3 Stores"},
		{screenCart, "4 List"},
		{screenHistory, "5 History"},
	}
	parts := []string{m.styles.Title.Render("spesa") + "  "}
	for _, t := range tabs {
		label := t.label
		if t.s == screenCart && m.state != nil && m.state.Len() > 0 {
			label += fmt.Sprintf(" (%d)", m.state.Len())
		}
		if t.s == m.screen {
			parts = append(parts, m.styles.ActiveTab.Render(label))
		} else {
			parts = append(parts, m.styles.Tabs.Render(label))
		}
	}
	if m.user.Username != "" {
		parts = append(parts, m.styles.Muted.Render(m.user.Username))
	}
	return m.styles.Header.Render(lipgloss.JoinHorizontal(lipgloss.Top, parts...))
}

func (m *Model) viewFlash() string {
	switch {
	case m.loading:
		return m.spinner.View() + " Loading..."
	case m.flash == "":
		return ""
	case m.flashErr:
		return m.styles.Error.Render(m.flash)
	}
	return m.styles.Flash.Render(m.flash)
}

func (m *Model) updateDashboard(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Sale) {
		m.view = browse.Reduce(m.view, browse.Reset{})
		m.dispatch(browse.SetCategory{Category: browse.CategorySale})
		m.switchTo(screenProducts)
		return m.requestFrame()
	}
	return nil
}

func (m *Model) viewDashboard() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Ciao, " + m.user.DisplayName() + "!"))
	b.WriteString("\n\n")

	b.WriteString(m.styles.Section.Render("Offers"))
	b.WriteString(m.styles.Muted.Render("  (o to see all)"))
	b.WriteString("\n")
	offers := browse.OffersPreview(m.snapshot.Products, offersPreview)
	if len(offers) == 0 {
		b.WriteString(m.styles.Muted.Render("  No offers right now."))
		b.WriteString("\n")
	}
	for _, p := range offers {
		b.WriteString(fmt.Sprintf("  %s %s %s %s\n",
			m.styles.Badge.Render(fmt.Sprintf("-%d%%", p.DiscountPercent())),
			p.Name,
			m.styles.Price.Render(catalog.FormatEuro(p.UnitPrice())),
			m.styles.Struck.Render(catalog.FormatEuro(p.OriginalPrice)),
		))
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Section.Render("Your recipes"))
	b.WriteString("\n")
	if len(m.recipes) == 0 {
		b.WriteString(m.styles.Muted.Render("  No recipes yet."))
		b.WriteString("\n")
	}
	for _, r := range m.recipes {
		b.WriteString("  • " + r.Name + "\n")
	}

	if m.state != nil {
		v := m.cartView
		b.WriteString("\n")
		b.WriteString(m.styles.Section.Render("Shopping list"))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("  %s to buy, %s in total\n",
			pluralize(len(v.Pending), "item", "items"),
			catalog.FormatEuro(v.Totals.Total)))
	}
	return b.String()
}

func (m *Model) openDetail(productID int64) {
	if _, ok := m.snapshot.Index.Get(productID); !ok {
		return
	}
	m.detailID = productID
	m.detailOpen = true
}

func (m *Model) updateDetail(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Open):
		m.detailOpen = false
	case key.Matches(msg, m.keys.Quit):
		m.detailOpen = false
	case key.Matches(msg, m.keys.Favorite):
		return m.run(&reconcile.ToggleFavorite{ProductID: m.detailID})
	case key.Matches(msg, m.keys.Add):
		return m.run(&reconcile.AddToCart{ProductID: m.detailID})
	}
	return nil
}

func (m *Model) viewDetail() string {
	p, ok := m.snapshot.Index.Get(m.detailID)
	if !ok {
		return ""
	}
	quantity := 0
	favorite := false
	if m.state != nil {
		quantity = m.state.Quantity(p.ID)
		favorite = m.state.IsFavorite(p.ID)
	}
	o := detail.Build(p, m.snapshot.Stores.Get(p.SupermarketID), quantity)

	var b strings.Builder
	title := m.styles.Title.Render(o.Title)
	if favorite {
		title += " " + m.styles.Favorite.Render("♥")
	}
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render(o.Category + " • " + o.Unit))
	b.WriteString("\n\n")

	price := m.styles.Price.Render(o.Price)
	if o.OnSale {
		price += " " + m.styles.Struck.Render(o.OriginalPrice) + " " + m.styles.Badge.Render(o.Badge)
	}
	b.WriteString(price)
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Store     %s\nLocation  %s\n", o.Store, o.Location))
	if o.Quantity > 0 {
		b.WriteString(fmt.Sprintf("In list   ×%d (%s)\n", o.Quantity, o.LineTotal))
	}

	b.WriteString("\n")
	cards := make([]string, 0, len(o.Nutrition))
	for _, f := range o.Nutrition {
		cards = append(cards, m.styles.Input.Render(m.styles.Muted.Render(f.Label)+"\n"+f.Value))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	b.WriteString("\n\n")
	b.WriteString(m.styles.Muted.Render("f favorite • a add to list • esc close"))

	return lipgloss.Place(m.width-2, max(0, m.height-chromeRows-m.helpRows()), lipgloss.Center, lipgloss.Center,
		m.styles.Overlay.Render(b.String()))
}
