package tui

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/spesa/api/routes"
	"github.com/angelmondragon/spesa/internal/account"
	"github.com/angelmondragon/spesa/internal/browse"
	"github.com/angelmondragon/spesa/internal/catalog"
	"github.com/angelmondragon/spesa/internal/devstore"
	"github.com/angelmondragon/spesa/internal/history"
	"github.com/angelmondragon/spesa/internal/loader"
	"github.com/angelmondragon/spesa/internal/virtual"
	"github.com/angelmondragon/spesa/pkg/apiclient"
	"github.com/angelmondragon/spesa/pkg/config"
	pkgerrors "github.com/angelmondragon/spesa/pkg/errors"
	"github.com/angelmondragon/spesa/pkg/security"
)

var testLayout = virtual.Layout{
	Breakpoint:        60,
	ItemHeight:        4,
	ItemHeightCompact: 5,
	Spacing:           0,
	SpacingCompact:    1,
	Buffer:            2,
}

type memoryTokens struct {
	mu    sync.Mutex
	token string
}

func (m *memoryTokens) Token(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *memoryTokens) Save(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *memoryTokens) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

type fakeRemote struct {
	failFavorite bool
	finalized    int
	cleared      int
	updates      int
}

func (f *fakeRemote) AddToCart(_ context.Context, productID int64, quantity int) (catalog.CartItem, error) {
	return catalog.CartItem{ID: 900, ProductID: productID, Quantity: quantity}, nil
}

func (f *fakeRemote) UpdateCartItem(context.Context, int64, apiclient.CartUpdate) error {
	f.updates++
	return nil
}

func (f *fakeRemote) DeleteCartItem(context.Context, int64) error { return nil }

func (f *fakeRemote) ClearCart(context.Context) error {
	f.cleared++
	return nil
}

func (f *fakeRemote) FinalizeCart(context.Context) (catalog.FinalizeResult, error) {
	f.finalized++
	return catalog.FinalizeResult{FinalizedItems: 1}, nil
}

func (f *fakeRemote) AddFavorite(context.Context, int64) error {
	if f.failFavorite {
		return pkgerrors.New(pkgerrors.CodeNetwork, "offline")
	}
	return nil
}

func (f *fakeRemote) RemoveFavorite(context.Context, int64) error { return nil }

// drain runs cmd and feeds every resulting message back into m. Spinner
// ticks are dropped so the loop ends.
func drain(m *Model, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case nil, spinner.TickMsg:
	case tea.BatchMsg:
		for _, c := range msg {
			drain(m, c)
		}
	default:
		_, next := m.Update(msg)
		drain(m, next)
	}
}

func press(m *Model, keys string) tea.Cmd {
	var msg tea.KeyMsg
	switch keys {
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)}
	}
	_, cmd := m.Update(msg)
	return cmd
}

func price(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func sale(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func localData() loader.Data {
	products := []catalog.Product{
		{ID: 1, Name: "Mele", Category: "Frutta", Unit: "kg", SupermarketID: 10, OriginalPrice: price("2.00")},
		{ID: 2, Name: "Olio", Category: "Dispensa", Unit: "1L", SupermarketID: 10, OriginalPrice: price("10.00"), DiscountedPrice: sale("7.50")},
	}
	stores := []catalog.Supermarket{{ID: 10, Name: "Conad"}}
	snap := catalog.NewSnapshot(products, stores)
	rows, _ := snap.Join([]catalog.CartItem{{ID: 100, ProductID: 1, Quantity: 2}})
	return loader.Data{Snapshot: snap, Rows: rows, Favorites: catalog.NewIDSet()}
}

func newLocalModel(t *testing.T, remote *fakeRemote) *Model {
	t.Helper()
	tokens := &memoryTokens{}
	acct, err := account.NewService(account.ServiceParams{API: nopAccountAPI{}, Tokens: tokens})
	require.NoError(t, err)
	m := New(context.Background(), Deps{Account: acct, Remote: remote, Layout: testLayout, Virtualize: true})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m.throttle.Done()
	m.applyData(dataMsg{data: localData()})
	m.throttle.Done()
	return m
}

type nopAccountAPI struct{}

func (nopAccountAPI) Login(context.Context, string, string) (catalog.Token, error) {
	return catalog.Token{}, nil
}
func (nopAccountAPI) Register(context.Context, catalog.Registration) error { return nil }
func (nopAccountAPI) CurrentUser(context.Context) (catalog.User, error) {
	return catalog.User{}, nil
}

func TestSaleDeepLinkOpensDiscountedProducts(t *testing.T) {
	cfg := &config.Config{
		App:      config.AppConfig{Env: "test"},
		JWT:      config.JWTConfig{Secret: "tui-secret", Issuer: "spesa-test", ExpirationMinutes: 30},
		Password: config.PasswordConfig{ArgonMemoryKB: 8, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 8, ArgonKeyLen: 16},
	}
	store := devstore.New(security.NewHasher(cfg.Password))
	require.NoError(t, store.Seed(context.Background()))
	srv := httptest.NewServer(routes.NewRouter(cfg, nil, store))
	defer srv.Close()

	ctx := context.Background()
	tokens := &memoryTokens{}
	client, err := apiclient.New(srv.URL, tokens)
	require.NoError(t, err)
	acct, err := account.NewService(account.ServiceParams{API: client, Tokens: tokens})
	require.NoError(t, err)
	_, err = acct.Login(ctx, devstore.DemoUsername, devstore.DemoPassword)
	require.NoError(t, err)

	m := New(ctx, Deps{
		Account:     acct,
		Loader:      loader.New(client),
		Remote:      client,
		History:     history.NewService(client, nil),
		Layout:      testLayout,
		Virtualize:  true,
		StartOnSale: true,
	})
	_, cmd := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	drain(m, cmd)
	drain(m, m.Init())

	require.Equal(t, screenProducts, m.screen)
	assert.Equal(t, browse.CategorySale, m.view.Category)
	require.NotEmpty(t, m.derived)
	for _, p := range m.derived {
		assert.True(t, p.OnSale(), p.Name)
	}
	assert.Equal(t, "Giulia", m.user.DisplayName())
	assert.Len(t, m.recipes, 3)
	assert.NotEmpty(t, m.products.Container().Items(), "window mounted after the frame tick")
}

func TestFrameRequestsCollapse(t *testing.T) {
	m := newLocalModel(t, &fakeRemote{})

	first := m.requestFrame()
	require.NotNil(t, first)
	assert.Nil(t, m.requestFrame())
	assert.Nil(t, m.moveProductCursor(0))

	m.Update(frameMsg{})
	assert.False(t, m.throttle.Pending())
	assert.Len(t, m.products.Container().Items(), 2)
}

func TestFavoriteFailureIsCompensated(t *testing.T) {
	m := newLocalModel(t, &fakeRemote{failFavorite: true})
	m.switchTo(screenProducts)
	m.Update(frameMsg{})

	cmd := press(m, "f")
	// the toggle is applied before the commit runs
	assert.True(t, m.state.IsFavorite(m.derived[0].ID))
	drain(m, cmd)

	assert.False(t, m.state.IsFavorite(m.derived[0].ID))
	assert.True(t, m.flashErr)
}

func TestCommitFromReplacedStateIsDropped(t *testing.T) {
	m := newLocalModel(t, &fakeRemote{failFavorite: true})
	m.switchTo(screenProducts)
	m.Update(frameMsg{})

	id := m.derived[0].ID
	cmd := press(m, "f")
	require.True(t, m.state.IsFavorite(id))

	// a reload swaps in a new state before the old commit answers
	m.applyData(dataMsg{data: localData()})
	m.throttle.Done()
	require.False(t, m.state.IsFavorite(id))
	drain(m, cmd)

	assert.False(t, m.state.IsFavorite(id))
	assert.False(t, m.flashErr, "a stale failure is not reported")
}

func TestBoughtThenFinalize(t *testing.T) {
	remote := &fakeRemote{}
	m := newLocalModel(t, remote)
	m.switchTo(screenCart)
	m.Update(frameMsg{})

	drain(m, press(m, " "))
	require.Equal(t, 1, remote.updates)
	row, ok := m.state.Row(100)
	require.True(t, ok)
	assert.True(t, row.Item.Checked)

	drain(m, press(m, "F"))
	assert.Equal(t, 1, remote.finalized)
	assert.Equal(t, 0, m.state.Len())
	assert.Equal(t, "1 item moved to history", m.flash)
}

func TestClearAsksForConfirmation(t *testing.T) {
	remote := &fakeRemote{}
	m := newLocalModel(t, remote)
	m.switchTo(screenCart)

	press(m, "C")
	require.True(t, m.confirmClear)
	drain(m, press(m, "n"))
	assert.Equal(t, 0, remote.cleared)
	assert.Equal(t, 1, m.state.Len())

	press(m, "C")
	drain(m, press(m, "y"))
	assert.Equal(t, 1, remote.cleared)
	assert.Equal(t, 0, m.state.Len())
}

func TestQuantityStaysAtLeastOne(t *testing.T) {
	m := newLocalModel(t, &fakeRemote{})
	m.switchTo(screenCart)
	m.Update(frameMsg{})

	drain(m, press(m, "-"))
	drain(m, press(m, "-"))
	row, _ := m.state.Row(100)
	assert.Equal(t, 1, row.Item.Quantity)
}

func TestUnauthorizedReturnsToLogin(t *testing.T) {
	m := newLocalModel(t, &fakeRemote{})
	m.switchTo(screenProducts)

	m.Update(UnauthorizedMsg{})
	assert.Equal(t, screenLogin, m.screen)
	assert.Nil(t, m.state)
	assert.Equal(t, "Session expired, sign in again", m.flash)
}
