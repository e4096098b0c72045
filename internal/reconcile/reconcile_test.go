package reconcile

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/spesa/internal/catalog"
	"github.com/angelmondragon/spesa/pkg/apiclient"
	pkgerrors "github.com/angelmondragon/spesa/pkg/errors"
	"github.com/angelmondragon/spesa/pkg/metrics"
)

type call struct {
	op     string
	id     int64
	update apiclient.CartUpdate
}

type fakeRemote struct {
	calls    []call
	fail     error
	nextID   int64
	finalize int
}

func (f *fakeRemote) record(c call) error {
	f.calls = append(f.calls, c)
	return f.fail
}

func (f *fakeRemote) AddToCart(_ context.Context, productID int64, quantity int) (catalog.CartItem, error) {
	if err := f.record(call{op: "add", id: productID}); err != nil {
		return catalog.CartItem{}, err
	}
	f.nextID++
	return catalog.CartItem{ID: f.nextID, ProductID: productID, Quantity: quantity}, nil
}

func (f *fakeRemote) UpdateCartItem(_ context.Context, id int64, update apiclient.CartUpdate) error {
	return f.record(call{op: "update", id: id, update: update})
}

func (f *fakeRemote) DeleteCartItem(_ context.Context, id int64) error {
	return f.record(call{op: "delete", id: id})
}

func (f *fakeRemote) ClearCart(context.Context) error {
	return f.record(call{op: "clear"})
}

func (f *fakeRemote) FinalizeCart(context.Context) (catalog.FinalizeResult, error) {
	if err := f.record(call{op: "finalize"}); err != nil {
		return catalog.FinalizeResult{}, err
	}
	return catalog.FinalizeResult{FinalizedItems: f.finalize}, nil
}

func (f *fakeRemote) AddFavorite(_ context.Context, productID int64) error {
	return f.record(call{op: "fav_add", id: productID})
}

func (f *fakeRemote) RemoveFavorite(_ context.Context, productID int64) error {
	return f.record(call{op: "fav_remove", id: productID})
}

var errOffline = pkgerrors.New(pkgerrors.CodeNetwork, "offline")

func newFixture(t *testing.T, items ...catalog.CartItem) (*Executor, *fakeRemote, *[]Change) {
	t.Helper()
	snap := catalog.NewSnapshot([]catalog.Product{
		{ID: 1, Name: "Pane", SupermarketID: 1, OriginalPrice: decimal.NewFromInt(5)},
		{ID: 2, Name: "Latte", SupermarketID: 1, OriginalPrice: decimal.NewFromInt(3)},
		{ID: 3, Name: "Uova", SupermarketID: 2, OriginalPrice: decimal.NewFromInt(2)},
	}, []catalog.Supermarket{{ID: 1, Name: "Coop"}, {ID: 2, Name: "Conad"}})
	rows, orphans := snap.Join(items)
	require.Empty(t, orphans)

	remote := &fakeRemote{nextID: 100}
	var changes []Change
	exec := NewExecutor(NewState(snap, rows, catalog.NewIDSet(2)), remote,
		OnChange(func(c Change) { changes = append(changes, c) }),
		WithMetrics(metrics.NewClientMetrics(nil)),
	)
	return exec, remote, &changes
}

func checked(t *testing.T, s *State, id int64) bool {
	t.Helper()
	row, ok := s.Row(id)
	require.True(t, ok)
	return row.Item.Checked
}

func quantity(t *testing.T, s *State, id int64) int {
	t.Helper()
	row, ok := s.Row(id)
	require.True(t, ok)
	return row.Item.Quantity
}

func TestToggleBoughtCommitsAndNotifies(t *testing.T) {
	exec, remote, changes := newFixture(t, catalog.CartItem{ID: 10, ProductID: 1, Quantity: 1})
	ctx := context.Background()

	require.NoError(t, exec.Execute(ctx, &ToggleBought{ID: 10}))
	assert.True(t, checked(t, exec.State(), 10))
	require.Len(t, remote.calls, 1)
	require.NotNil(t, remote.calls[0].update.Checked)
	assert.True(t, *remote.calls[0].update.Checked)
	assert.Nil(t, remote.calls[0].update.Quantity)

	require.NoError(t, exec.Execute(ctx, &ToggleBought{ID: 10}))
	assert.False(t, checked(t, exec.State(), 10))
	assert.False(t, *remote.calls[1].update.Checked)

	assert.Equal(t, []Change{
		{Command: "toggle_bought", Outcome: OutcomeApplied},
		{Command: "toggle_bought", Outcome: OutcomeCommitted},
		{Command: "toggle_bought", Outcome: OutcomeApplied},
		{Command: "toggle_bought", Outcome: OutcomeCommitted},
	}, *changes)
}

func TestFailedCommitCompensates(t *testing.T) {
	exec, remote, changes := newFixture(t,
		catalog.CartItem{ID: 10, ProductID: 1, Quantity: 2},
		catalog.CartItem{ID: 11, ProductID: 2, Quantity: 1},
		catalog.CartItem{ID: 12, ProductID: 3, Quantity: 1},
	)
	remote.fail = errOffline
	ctx := context.Background()
	s := exec.State()

	assert.ErrorIs(t, exec.Execute(ctx, &ToggleBought{ID: 10}), errOffline)
	assert.False(t, checked(t, s, 10))

	assert.Error(t, exec.Execute(ctx, &ChangeQuantity{ID: 10, Delta: 1}))
	assert.Equal(t, 2, quantity(t, s, 10))

	assert.Error(t, exec.Execute(ctx, &RemoveItem{ID: 11}))
	ids := []int64{}
	for _, r := range s.Rows() {
		ids = append(ids, r.Item.ID)
	}
	assert.Equal(t, []int64{10, 11, 12}, ids, "removed row goes back to its position")

	assert.Error(t, exec.Execute(ctx, &ToggleFavorite{ProductID: 2}))
	assert.True(t, s.IsFavorite(2))
	assert.Error(t, exec.Execute(ctx, &ToggleFavorite{ProductID: 3}))
	assert.False(t, s.IsFavorite(3))

	last := (*changes)[len(*changes)-1]
	assert.Equal(t, OutcomeCompensated, last.Outcome)
	assert.ErrorIs(t, last.Err, errOffline)
}

func TestQuantityNeverDropsBelowOne(t *testing.T) {
	exec, remote, _ := newFixture(t, catalog.CartItem{ID: 10, ProductID: 1, Quantity: 2})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, exec.Execute(ctx, &ChangeQuantity{ID: 10, Delta: -1}))
		assert.GreaterOrEqual(t, quantity(t, exec.State(), 10), 1)
	}
	assert.Equal(t, 1, quantity(t, exec.State(), 10))
	require.Len(t, remote.calls, 1, "only the 2 -> 1 step reaches the server")
	assert.Equal(t, 1, *remote.calls[0].update.Quantity)

	require.NoError(t, exec.Execute(ctx, &ChangeQuantity{ID: 10, Delta: 1}))
	assert.Equal(t, 2, quantity(t, exec.State(), 10))
}

func TestUnknownItemIsRejected(t *testing.T) {
	exec, remote, changes := newFixture(t)
	ctx := context.Background()
	assert.ErrorIs(t, exec.Execute(ctx, &ToggleBought{ID: 99}), ErrUnknownItem)
	assert.ErrorIs(t, exec.Execute(ctx, &RemoveItem{ID: 99}), ErrUnknownItem)
	assert.ErrorIs(t, exec.Execute(ctx, &AddToCart{ProductID: 99}), ErrUnknownProduct)
	assert.Empty(t, remote.calls)
	assert.Empty(t, *changes)
}

func TestFavoriteToggleIsOptimistic(t *testing.T) {
	exec, remote, _ := newFixture(t)
	ctx := context.Background()

	cmd := &ToggleFavorite{ProductID: 1}
	p, err := exec.Begin(ctx, cmd)
	require.NoError(t, err)
	assert.True(t, exec.State().IsFavorite(1), "visible before the server answers")
	assert.Empty(t, remote.calls)

	require.NoError(t, exec.Finish(ctx, p, p.Commit(ctx)))
	assert.True(t, cmd.Added())
	assert.Equal(t, []call{{op: "fav_add", id: 1}}, remote.calls)

	require.NoError(t, exec.Execute(ctx, &ToggleFavorite{ProductID: 2}))
	assert.False(t, exec.State().IsFavorite(2))
	assert.Equal(t, "fav_remove", remote.calls[1].op)
}

func TestOverlappingQuantityFailureKeepsNewerCommit(t *testing.T) {
	exec, _, _ := newFixture(t, catalog.CartItem{ID: 10, ProductID: 1, Quantity: 1})
	ctx := context.Background()
	s := exec.State()

	first, err := exec.Begin(ctx, &ChangeQuantity{ID: 10, Delta: 1})
	require.NoError(t, err)
	second, err := exec.Begin(ctx, &ChangeQuantity{ID: 10, Delta: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, quantity(t, s, 10))

	// the server stored 3, the earlier PUT of 2 never arrived
	require.NoError(t, exec.Finish(ctx, second, nil))
	assert.ErrorIs(t, exec.Finish(ctx, first, errOffline), errOffline)
	assert.Equal(t, 3, quantity(t, s, 10))
}

func TestOverlappingQuantityFailureWaitsForNewer(t *testing.T) {
	exec, _, _ := newFixture(t, catalog.CartItem{ID: 10, ProductID: 1, Quantity: 1})
	ctx := context.Background()
	s := exec.State()

	first, err := exec.Begin(ctx, &ChangeQuantity{ID: 10, Delta: 1})
	require.NoError(t, err)
	second, err := exec.Begin(ctx, &ChangeQuantity{ID: 10, Delta: 1})
	require.NoError(t, err)

	require.Error(t, exec.Finish(ctx, first, errOffline))
	assert.Equal(t, 3, quantity(t, s, 10), "the newer change still owns the row")

	require.Error(t, exec.Finish(ctx, second, errOffline))
	assert.Equal(t, 1, quantity(t, s, 10), "back to the last acknowledged quantity")
}

func TestOlderQuantitySuccessAfterNewerFailure(t *testing.T) {
	exec, _, _ := newFixture(t, catalog.CartItem{ID: 10, ProductID: 1, Quantity: 1})
	ctx := context.Background()
	s := exec.State()

	first, err := exec.Begin(ctx, &ChangeQuantity{ID: 10, Delta: 1})
	require.NoError(t, err)
	second, err := exec.Begin(ctx, &ChangeQuantity{ID: 10, Delta: 1})
	require.NoError(t, err)

	require.Error(t, exec.Finish(ctx, second, errOffline))
	require.NoError(t, exec.Finish(ctx, first, nil))
	assert.Equal(t, 2, quantity(t, s, 10))
}

func TestOverlappingFavoriteFailures(t *testing.T) {
	exec, _, _ := newFixture(t)
	ctx := context.Background()
	s := exec.State()

	add, err := exec.Begin(ctx, &ToggleFavorite{ProductID: 1})
	require.NoError(t, err)
	remove, err := exec.Begin(ctx, &ToggleFavorite{ProductID: 1})
	require.NoError(t, err)
	assert.False(t, s.IsFavorite(1))

	require.Error(t, exec.Finish(ctx, add, errOffline))
	assert.False(t, s.IsFavorite(1))
	notFound := pkgerrors.New(pkgerrors.CodeRequestFailed, "Favorite not found").WithStatus(http.StatusNotFound)
	require.Error(t, exec.Finish(ctx, remove, notFound))
	assert.False(t, s.IsFavorite(1), "neither change reached the server")
}

func TestOverlappingFavoriteNewerSuccessSurvives(t *testing.T) {
	exec, _, _ := newFixture(t)
	ctx := context.Background()
	s := exec.State()

	add, err := exec.Begin(ctx, &ToggleFavorite{ProductID: 1})
	require.NoError(t, err)
	remove, err := exec.Begin(ctx, &ToggleFavorite{ProductID: 1})
	require.NoError(t, err)
	again, err := exec.Begin(ctx, &ToggleFavorite{ProductID: 1})
	require.NoError(t, err)
	assert.True(t, s.IsFavorite(1))

	require.NoError(t, exec.Finish(ctx, again, nil))
	require.Error(t, exec.Finish(ctx, add, errOffline))
	require.Error(t, exec.Finish(ctx, remove, errOffline))
	assert.True(t, s.IsFavorite(1))
}

func TestFinishIgnoresPendingFromReplacedExecutor(t *testing.T) {
	old, _, _ := newFixture(t, catalog.CartItem{ID: 10, ProductID: 1, Quantity: 2})
	current, _, changes := newFixture(t, catalog.CartItem{ID: 10, ProductID: 1, Quantity: 5})
	ctx := context.Background()

	p, err := old.Begin(ctx, &ChangeQuantity{ID: 10, Delta: 1})
	require.NoError(t, err)
	assert.False(t, current.Owns(p))
	assert.True(t, old.Owns(p))

	require.NoError(t, current.Finish(ctx, p, errOffline))
	assert.Equal(t, 5, quantity(t, current.State(), 10))
	assert.Empty(t, *changes)
}

func TestReplaceDetachesInflightRowCommands(t *testing.T) {
	exec, _, _ := newFixture(t, catalog.CartItem{ID: 10, ProductID: 1, Quantity: 2})
	ctx := context.Background()
	s := exec.State()

	p, err := exec.Begin(ctx, &ChangeQuantity{ID: 10, Delta: 1})
	require.NoError(t, err)
	rows, _ := s.Snapshot().Join([]catalog.CartItem{{ID: 10, ProductID: 1, Quantity: 7}})
	s.Replace(rows)

	require.Error(t, exec.Finish(ctx, p, errOffline))
	assert.Equal(t, 7, quantity(t, s, 10))
}

func TestAddToCartAppendsServerRow(t *testing.T) {
	exec, _, _ := newFixture(t)
	ctx := context.Background()

	cmd := &AddToCart{ProductID: 3}
	p, err := exec.Begin(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, 0, exec.State().Len(), "no local row before the server assigns an id")

	require.NoError(t, exec.Finish(ctx, p, p.Commit(ctx)))
	row, ok := exec.State().Row(101)
	require.True(t, ok)
	assert.Equal(t, "Conad", row.StoreName())
	assert.Equal(t, 1, row.Item.Quantity)
	assert.True(t, exec.State().InCart(3))
	assert.Equal(t, 1, exec.State().Quantity(3))
}

func TestClearRequiresConfirmation(t *testing.T) {
	exec, remote, _ := newFixture(t, catalog.CartItem{ID: 10, ProductID: 1, Quantity: 1})
	ctx := context.Background()

	require.NoError(t, exec.Clear(ctx, func() bool { return false }))
	assert.Equal(t, 1, exec.State().Len())
	assert.Empty(t, remote.calls)

	require.NoError(t, exec.Clear(ctx, func() bool { return true }))
	assert.Equal(t, 0, exec.State().Len())
	assert.Equal(t, []call{{op: "clear"}}, remote.calls)

	require.NoError(t, exec.Clear(ctx, func() bool { return true }))
	assert.Len(t, remote.calls, 1, "empty cart is not cleared again")
}

func TestClearKeepsRowsWhenServerFails(t *testing.T) {
	exec, remote, _ := newFixture(t, catalog.CartItem{ID: 10, ProductID: 1, Quantity: 1})
	remote.fail = errOffline
	assert.Error(t, exec.Clear(context.Background(), func() bool { return true }))
	assert.Equal(t, 1, exec.State().Len())

	remote.fail = pkgerrors.New(pkgerrors.CodeRequestFailed, "Cart is empty").WithStatus(http.StatusNotFound)
	assert.NoError(t, exec.Clear(context.Background(), func() bool { return true }))
	assert.Equal(t, 0, exec.State().Len())
}

func TestFinalizeRemovesBoughtItems(t *testing.T) {
	exec, remote, _ := newFixture(t,
		catalog.CartItem{ID: 10, ProductID: 1, Quantity: 1, Checked: true},
		catalog.CartItem{ID: 11, ProductID: 2, Quantity: 1},
		catalog.CartItem{ID: 12, ProductID: 3, Quantity: 4, Checked: true},
	)
	remote.finalize = 2
	ctx := context.Background()

	n, err := exec.Finalize(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, exec.State().Len())
	_, ok := exec.State().Row(11)
	assert.True(t, ok)

	n, err = exec.Finalize(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, remote.calls, 1, "nothing bought, nothing sent")
}

func TestFinalizeFailureKeepsItems(t *testing.T) {
	exec, remote, _ := newFixture(t, catalog.CartItem{ID: 10, ProductID: 1, Quantity: 1, Checked: true})
	remote.fail = errOffline
	_, err := exec.Finalize(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, exec.State().Len())
}

func TestToggleAllVisibleFoldAndFlip(t *testing.T) {
	exec, remote, _ := newFixture(t,
		catalog.CartItem{ID: 10, ProductID: 1, Quantity: 1},
		catalog.CartItem{ID: 11, ProductID: 2, Quantity: 1, Checked: true},
		catalog.CartItem{ID: 12, ProductID: 3, Quantity: 1},
	)
	ctx := context.Background()
	s := exec.State()
	visible := []int64{10, 11}

	require.NoError(t, exec.ToggleAllVisible(ctx, visible))
	assert.True(t, checked(t, s, 10))
	assert.True(t, checked(t, s, 11))
	assert.False(t, checked(t, s, 12), "hidden rows are untouched")
	assert.Len(t, remote.calls, 1, "only the row that changes is sent")

	require.NoError(t, exec.ToggleAllVisible(ctx, visible))
	assert.False(t, checked(t, s, 10))
	assert.False(t, checked(t, s, 11))

	assert.False(t, AllChecked(s, nil))
	assert.Empty(t, ToggleAllVisible(s, []int64{404}))
}

func TestToggleAllVisibleCompensatesEachRow(t *testing.T) {
	exec, remote, _ := newFixture(t,
		catalog.CartItem{ID: 10, ProductID: 1, Quantity: 1},
		catalog.CartItem{ID: 11, ProductID: 2, Quantity: 1},
	)
	remote.fail = errOffline
	err := exec.ToggleAllVisible(context.Background(), []int64{10, 11})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errOffline))
	assert.False(t, checked(t, exec.State(), 10))
	assert.False(t, checked(t, exec.State(), 11))
	assert.Len(t, remote.calls, 2)
}

func TestStateIsolation(t *testing.T) {
	exec, _, _ := newFixture(t, catalog.CartItem{ID: 10, ProductID: 1, Quantity: 1})
	rows := exec.State().Rows()
	rows[0].Item.Quantity = 50
	assert.Equal(t, 1, quantity(t, exec.State(), 10))

	exec.State().Replace(nil)
	assert.Zero(t, exec.State().Len())
}
