// Package tui is the Bubble Tea front end of the client. It owns the
// reconciler state and drives every list through the incremental renderer;
// remote commits run as commands off the update loop.
package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/multierr"

	"github.com/angelmondragon/spesa/internal/account"
	"github.com/angelmondragon/spesa/internal/browse"
	"github.com/angelmondragon/spesa/internal/catalog"
	"github.com/angelmondragon/spesa/internal/history"
	"github.com/angelmondragon/spesa/internal/loader"
	"github.com/angelmondragon/spesa/internal/reconcile"
	"github.com/angelmondragon/spesa/internal/render"
	"github.com/angelmondragon/spesa/internal/shoppinglist"
	"github.com/angelmondragon/spesa/internal/virtual"
	"github.com/angelmondragon/spesa/pkg/auth"
	pkgerrors "github.com/angelmondragon/spesa/pkg/errors"
	"github.com/angelmondragon/spesa/pkg/logger"
	"github.com/angelmondragon/spesa/pkg/metrics"
)

type screen int

const (
	screenLogin screen = iota
	screenRegister
	screenDashboard
	screenProducts
	screenSupermarkets
	screenCart
	screenHistory
)

func (s screen) String() string {
	switch s {
	case screenLogin:
		return "login"
	case screenRegister:
		return "register"
	case screenDashboard:
		return "dashboard"
	case screenProducts:
		return "products"
	case screenSupermarkets:
		return "supermarkets"
	case screenCart:
		return "cart"
	case screenHistory:
		return "history"
	}
	return "unknown"
}

// rows taken by the tab bar, the flash line and the help line
const chromeRows = 4

// Deps wires the program to the data layer.
type Deps struct {
	Account    *account.Service
	Loader     *loader.Loader
	Remote     reconcile.Remote
	History    *history.Service
	Layout     virtual.Layout
	Virtualize bool
	Metrics    *metrics.ClientMetrics
	Logger     *logger.Logger
	// StartOnSale opens the product list on discounted products after login.
	StartOnSale bool
}

// UnauthorizedMsg tells the program the server rejected the session.
type UnauthorizedMsg struct{}

type (
	sessionMsg struct {
		claims *auth.AccessTokenClaims
		err    error
	}
	loggedInMsg struct {
		claims *auth.AccessTokenClaims
		err    error
	}
	registeredMsg struct {
		username string
		err      error
	}
	dataMsg struct {
		data loader.Data
		err  error
	}
	dashboardMsg struct {
		user    catalog.User
		recipes []catalog.Recipe
		err     error
	}
	cartMsg struct {
		rows []catalog.CartRow
		err  error
	}
	commitMsg struct {
		pending *reconcile.Pending
		err     error
	}
	frameMsg struct{}
)

type Model struct {
	deps   Deps
	ctx    context.Context
	logg   *logger.Logger
	keys   keyMap
	styles styles
	help   help.Model

	screen   screen
	width    int
	height   int
	flash    string
	flashErr bool
	loading  bool
	spinner  spinner.Model

	claims *auth.AccessTokenClaims
	user   catalog.User
	loaded bool

	snapshot catalog.Snapshot
	state    *reconcile.State
	exec     *reconcile.Executor
	recipes  []catalog.Recipe

	view          browse.ViewState
	derived       []catalog.Product
	products      *render.List
	productCursor int
	search        textinput.Model
	searching     bool

	storeCursor int

	cartStore    string
	cartStatus   browse.Status
	cartView     shoppinglist.View
	cart         *render.List
	cartCursor   int
	confirmClear bool

	entries     []catalog.HistoryEntry
	entryCursor int
	entryItems  []catalog.HistoryItem
	showItems   bool

	detailID   int64
	detailOpen bool

	login    loginForm
	register registerForm

	throttle virtual.Throttle
	queued   []tea.Cmd
}

// New builds the program model. ctx bounds every remote call it starts.
func New(ctx context.Context, deps Deps) *Model {
	logg := deps.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	search := textinput.New()
	search.Placeholder = "Search products..."
	search.CharLimit = 60
	search.Prompt = "/ "

	m := &Model{
		deps:       deps,
		ctx:        ctx,
		logg:       logg,
		keys:       defaultKeyMap(),
		styles:     defaultStyles(),
		help:       help.New(),
		spinner:    sp,
		search:     search,
		view:       browse.DefaultState(),
		cartStore:  shoppinglist.AllStores,
		cartStatus: browse.StatusAll,
		login:      newLoginForm(),
		register:   newRegisterForm(),
	}
	m.products = render.NewList(deps.Layout, deps.Virtualize, render.New(m.bind, render.WithLogger(logg), render.WithMetrics(deps.Metrics)))
	m.cart = render.NewList(deps.Layout, deps.Virtualize, render.New(m.bind, render.WithLogger(logg), render.WithMetrics(deps.Metrics)))
	return m
}

func (m *Model) Init() tea.Cmd {
	m.loading = true
	return tea.Batch(m.spinner.Tick, m.checkSession())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	queued := m.queued
	m.queued = nil
	return m, tea.Batch(append(queued, cmd)...)
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m.requestFrame()

	case spinner.TickMsg:
		if !m.loading {
			return nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd

	case frameMsg:
		m.throttle.Done()
		m.products.Refresh(m.ctx)
		m.cart.Refresh(m.ctx)
		return nil

	case UnauthorizedMsg:
		return m.signOut("Session expired, sign in again")

	case sessionMsg:
		m.loading = false
		if msg.err != nil || msg.claims == nil || msg.claims.Expired(time.Now()) {
			m.switchTo(screenLogin)
			return m.login.focus()
		}
		return m.startSession(msg.claims)

	case loggedInMsg:
		m.loading = false
		if msg.err != nil {
			m.setError(msg.err)
			return nil
		}
		m.login.reset()
		return m.startSession(msg.claims)

	case registeredMsg:
		m.loading = false
		if msg.err != nil {
			m.setError(msg.err)
			return nil
		}
		m.register.reset()
		m.login.username.SetValue(msg.username)
		m.switchTo(screenLogin)
		m.setFlash("Account created, sign in to continue")
		return m.login.focus()

	case dataMsg:
		return m.applyData(msg)

	case dashboardMsg:
		if m.unauthorized(msg.err) {
			return m.signOut("Session expired, sign in again")
		}
		m.user = msg.user
		m.recipes = msg.recipes
		if msg.err != nil {
			m.logg.Warn(m.logg.WithFields(m.ctx, pkgerrors.Dump(msg.err).Fields()), "dashboard partially loaded")
		}
		return nil

	case cartMsg:
		if m.unauthorized(msg.err) {
			return m.signOut("Session expired, sign in again")
		}
		if msg.err != nil {
			m.setError(msg.err)
			return nil
		}
		if m.state != nil {
			m.state.Replace(msg.rows)
			m.rederive(false)
		}
		return nil

	case commitMsg:
		return m.settle(msg)

	case historyMsg, historyItemsMsg, restoredMsg, historyDeletedMsg:
		return m.updateHistoryData(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}
	switch m.screen {
	case screenLogin:
		return m.updateLogin(msg)
	case screenRegister:
		return m.updateRegister(msg)
	}

	if m.detailOpen {
		return m.updateDetail(msg)
	}
	if m.searching {
		return m.updateSearch(msg)
	}
	if m.confirmClear {
		return m.updateConfirmClear(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
		return m.requestFrame()
	case key.Matches(msg, m.keys.Logout):
		return m.signOut("Signed out")
	case key.Matches(msg, m.keys.Refresh):
		return m.reload()
	case key.Matches(msg, m.keys.Dashboard):
		m.switchTo(screenDashboard)
		return nil
	case key.Matches(msg, m.keys.Products):
		m.switchTo(screenProducts)
		return m.requestFrame()
	case key.Matches(msg, m.keys.Supermarkets):
		m.switchTo(screenSupermarkets)
		return nil
	case key.Matches(msg, m.keys.Cart):
		m.switchTo(screenCart)
		return m.requestFrame()
	case key.Matches(msg, m.keys.History):
		m.switchTo(screenHistory)
		m.showItems = false
		return m.loadHistory()
	}

	switch m.screen {
	case screenDashboard:
		return m.updateDashboard(msg)
	case screenProducts:
		return m.updateProducts(msg)
	case screenSupermarkets:
		return m.updateSupermarkets(msg)
	case screenCart:
		return m.updateCart(msg)
	case screenHistory:
		return m.updateHistory(msg)
	}
	return nil
}

func (m *Model) switchTo(s screen) {
	if m.screen == s {
		return
	}
	m.screen = s
	m.flash = ""
	m.logg.Debug(m.logg.WithView(m.ctx, s.String()), "view.opened")
}

func (m *Model) setFlash(text string) {
	m.flash = text
	m.flashErr = false
}

func (m *Model) setError(err error) {
	m.flash = pkgerrors.UserMessage(err)
	m.flashErr = true
}

func (m *Model) unauthorized(err error) bool {
	return err != nil && pkgerrors.Is(err, pkgerrors.CodeUnauthorized)
}

// queue schedules cmd with the result of the current Update.
func (m *Model) queue(cmd tea.Cmd) {
	if cmd != nil {
		m.queued = append(m.queued, cmd)
	}
}

// requestFrame schedules one render pass on the next frame tick. Requests
// made while a pass is pending are absorbed by it.
func (m *Model) requestFrame() tea.Cmd {
	if !m.throttle.Request() {
		return nil
	}
	return tea.Tick(virtual.FrameInterval, func(time.Time) tea.Msg { return frameMsg{} })
}

func (m *Model) resize() {
	rows := max(0, m.height-chromeRows-m.helpRows())
	m.products.SetHeader(productHeaderRows)
	m.products.Resize(m.width, rows-productHeaderRows)
	m.cart.SetHeader(cartHeaderRows)
	m.cart.Resize(m.width, rows-cartHeaderRows)
}

func (m *Model) helpRows() int {
	if m.help.ShowAll {
		return 6
	}
	return 1
}

func (m *Model) checkSession() tea.Cmd {
	ctx := m.ctx
	acct := m.deps.Account
	return func() tea.Msg {
		claims, err := acct.Claims(ctx)
		return sessionMsg{claims: claims, err: err}
	}
}

func (m *Model) startSession(claims *auth.AccessTokenClaims) tea.Cmd {
	m.claims = claims
	m.ctx = m.logg.WithUserID(m.ctx, claims.OwnerID())
	m.user = catalog.User{ID: claims.UserID, Username: claims.Subject}
	m.switchTo(screenDashboard)
	return m.reload()
}

// reload fetches catalog, cart, favorites and the dashboard in the background.
func (m *Model) reload() tea.Cmd {
	if m.claims == nil {
		return nil
	}
	m.loading = true
	ctx := m.ctx
	userID := m.claims.UserID
	l := m.deps.Loader
	acct := m.deps.Account
	loadData := func() tea.Msg {
		data, err := l.LoadAll(ctx, userID)
		return dataMsg{data: data, err: err}
	}
	loadDashboard := func() tea.Msg {
		var errs error
		user, err := acct.CurrentUser(ctx)
		errs = multierr.Append(errs, err)
		recipes, err := l.LoadRecipes(ctx, userID)
		if loader.IsPartial(err) {
			err = nil
		}
		errs = multierr.Append(errs, err)
		return dashboardMsg{user: user, recipes: recipes, err: errs}
	}
	return tea.Batch(m.spinner.Tick, loadData, loadDashboard)
}

func (m *Model) applyData(msg dataMsg) tea.Cmd {
	m.loading = false
	if m.unauthorized(msg.err) {
		return m.signOut("Session expired, sign in again")
	}
	if msg.err != nil {
		m.setError(msg.err)
		if !loader.IsPartial(msg.err) {
			return nil
		}
	}

	m.snapshot = msg.data.Snapshot
	m.state = reconcile.NewState(msg.data.Snapshot, msg.data.Rows, msg.data.Favorites)
	m.exec = reconcile.NewExecutor(m.state, m.deps.Remote,
		reconcile.WithLogger(m.logg),
		reconcile.WithMetrics(m.deps.Metrics),
		reconcile.OnChange(m.onChange),
	)
	if len(msg.data.Orphans) > 0 {
		m.logg.Warn(m.logg.WithField(m.ctx, "orphans", len(msg.data.Orphans)), "cart rows without product skipped")
	}

	if !m.loaded && m.deps.StartOnSale {
		m.view = browse.Reduce(m.view, browse.SetCategory{Category: browse.CategorySale})
		m.switchTo(screenProducts)
	}
	m.loaded = true
	m.rederive(true)
	return nil
}

// onChange re-derives both lists after every reconciler transition.
func (m *Model) onChange(reconcile.Change) {
	m.rederive(false)
}

// rederive recomputes the product view and the shopping list, then schedules
// a render pass. reset scrolls the product list back to the top.
func (m *Model) rederive(reset bool) {
	if m.state == nil {
		return
	}
	m.derived = browse.DeriveView(m.snapshot.Products, m.view.Criteria(m.state.Favorites()))
	items := make([]render.Item, len(m.derived))
	for i, p := range m.derived {
		items[i] = render.Item{Key: p.ID, Payload: p}
	}
	if reset {
		m.products.SetItems(items)
		m.productCursor = 0
	} else {
		m.products.Replace(items)
	}
	m.productCursor = clampCursor(m.productCursor, len(items))

	m.cartView = shoppinglist.Build(m.state.Rows(), m.cartStore, m.cartStatus)
	m.cartStore = m.cartView.Store
	visible := m.cartView.Visible()
	rows := make([]render.Item, len(visible))
	for i, r := range visible {
		rows[i] = render.Item{Key: r.Item.ID, Payload: r}
	}
	m.cart.Replace(rows)
	m.cartCursor = clampCursor(m.cartCursor, len(rows))

	m.queue(m.requestFrame())
}

func clampCursor(cursor, n int) int {
	if n == 0 {
		return 0
	}
	return min(max(0, cursor), n-1)
}

// bind attaches the interaction handlers of a freshly mounted row.
func (m *Model) bind(item render.Item, n *render.Node) error {
	switch v := item.Payload.(type) {
	case catalog.Product:
		id := v.ID
		return multierr.Combine(
			n.On(render.EventToggleFavorite, func() { m.queue(m.run(&reconcile.ToggleFavorite{ProductID: id})) }),
			n.On(render.EventAddToCart, func() { m.queue(m.run(&reconcile.AddToCart{ProductID: id})) }),
			n.On(render.EventOpenDetail, func() { m.openDetail(id) }),
		)
	case catalog.CartRow:
		id := v.Item.ID
		productID := v.Item.ProductID
		return multierr.Combine(
			n.On(render.EventToggleBought, func() { m.queue(m.run(&reconcile.ToggleBought{ID: id})) }),
			n.On(render.EventIncrement, func() { m.queue(m.run(&reconcile.ChangeQuantity{ID: id, Delta: 1})) }),
			n.On(render.EventDecrement, func() { m.queue(m.run(&reconcile.ChangeQuantity{ID: id, Delta: -1})) }),
			n.On(render.EventRemove, func() { m.queue(m.run(&reconcile.RemoveItem{ID: id})) }),
			n.On(render.EventOpenDetail, func() { m.openDetail(productID) }),
		)
	}
	return nil
}

// fire dispatches ev to the mounted node of key, mounting the window first
// when the row was scrolled in after the last pass.
func (m *Model) fire(l *render.List, key int64, ev render.Event) bool {
	n := l.Container().Find(key)
	if n == nil {
		l.Refresh(m.ctx)
		n = l.Container().Find(key)
	}
	return n != nil && n.Fire(ev)
}

// run applies cmd locally and returns the tea.Cmd that commits it.
func (m *Model) run(cmd reconcile.Command) tea.Cmd {
	if m.exec == nil {
		return nil
	}
	p, err := m.exec.Begin(m.ctx, cmd)
	if errors.Is(err, reconcile.ErrNoChange) {
		return nil
	}
	if err != nil {
		m.setError(err)
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		return commitMsg{pending: p, err: p.Commit(ctx)}
	}
}

func (m *Model) settle(msg commitMsg) tea.Cmd {
	// results from before a sign out or a reload belong to a dropped state
	if m.exec == nil || !m.exec.Owns(msg.pending) {
		return nil
	}
	if err := m.exec.Finish(m.ctx, msg.pending, msg.err); err != nil {
		if m.unauthorized(err) {
			return m.signOut("Session expired, sign in again")
		}
		m.setError(err)
		return nil
	}
	switch c := msg.pending.Command().(type) {
	case *reconcile.AddToCart:
		if p, ok := m.snapshot.Index.Get(c.ProductID); ok {
			m.setFlash(p.Name + " added to the list")
		}
	case *reconcile.ClearCart:
		m.setFlash("Shopping list cleared")
	case *reconcile.Finalize:
		m.setFlash(pluralize(c.Count(), "item", "items") + " moved to history")
	}
	return nil
}

func (m *Model) signOut(reason string) tea.Cmd {
	if err := m.deps.Account.Logout(m.ctx); err != nil {
		m.logg.Error(m.ctx, "clearing session", err)
	}
	m.claims = nil
	m.user = catalog.User{}
	m.state = nil
	m.exec = nil
	m.loaded = false
	m.loading = false
	m.detailOpen = false
	m.searching = false
	m.confirmClear = false
	m.entries = nil
	m.entryItems = nil
	m.view = browse.DefaultState()
	m.products.SetItems(nil)
	m.cart.SetItems(nil)
	m.switchTo(screenLogin)
	m.setFlash(reason)
	return tea.Batch(m.login.focus(), m.requestFrame())
}
