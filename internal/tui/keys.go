package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Open     key.Binding
	Back     key.Binding
	Search   key.Binding
	Category key.Binding
	Store    key.Binding
	Status   key.Binding
	Favorite key.Binding
	Add      key.Binding
	Bought   key.Binding
	Inc      key.Binding
	Dec      key.Binding
	Remove   key.Binding
	All      key.Binding
	Clear    key.Binding
	Finalize key.Binding
	Sale     key.Binding
	Restore  key.Binding
	Delete   key.Binding
	Refresh  key.Binding
	Logout   key.Binding
	Help     key.Binding
	Quit     key.Binding

	Dashboard    key.Binding
	Products     key.Binding
	Supermarkets key.Binding
	Cart         key.Binding
	History      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "K"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "J"),
			key.WithHelp("pgdn", "page down"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Category: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "category"),
		),
		Store: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "store"),
		),
		Status: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "status"),
		),
		Favorite: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "favorite"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add to cart"),
		),
		Bought: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "bought"),
		),
		Inc: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "more"),
		),
		Dec: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "less"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "remove"),
		),
		All: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "select all"),
		),
		Clear: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "clear cart"),
		),
		Finalize: key.NewBinding(
			key.WithKeys("F"),
			key.WithHelp("F", "finalize"),
		),
		Sale: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "offers"),
		),
		Restore: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restore"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "reload"),
		),
		Logout: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "logout"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Dashboard: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "home"),
		),
		Products: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "products"),
		),
		Supermarkets: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "stores"),
		),
		Cart: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "list"),
		),
		History: key.NewBinding(
			key.WithKeys("5"),
			key.WithHelp("5", "history"),
		),
	}
}

// screenKeys adapts the key map to help.KeyMap for one screen.
type screenKeys struct {
	short []key.Binding
	full  [][]key.Binding
}

func (s screenKeys) ShortHelp() []key.Binding  { return s.short }
func (s screenKeys) FullHelp() [][]key.Binding { return s.full }

func (k keyMap) navigation() []key.Binding {
	return []key.Binding{k.Dashboard, k.Products, k.Supermarkets, k.Cart, k.History, k.Logout, k.Quit}
}

func (k keyMap) forScreen(s screen) screenKeys {
	var short []key.Binding
	switch s {
	case screenProducts:
		short = []key.Binding{k.Search, k.Category, k.Store, k.Favorite, k.Add, k.Open}
	case screenSupermarkets:
		short = []key.Binding{k.Up, k.Down, k.Open}
	case screenCart:
		short = []key.Binding{k.Bought, k.Inc, k.Dec, k.Remove, k.All, k.Store, k.Status, k.Finalize, k.Clear}
	case screenHistory:
		short = []key.Binding{k.Open, k.Restore, k.Delete, k.Back}
	case screenDashboard:
		short = []key.Binding{k.Sale, k.Products, k.Cart}
	}
	short = append(short, k.Help)
	return screenKeys{
		short: short,
		full:  [][]key.Binding{short, {k.Up, k.Down, k.PageUp, k.PageDown, k.Back, k.Refresh}, k.navigation()},
	}
}
