package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/angelmondragon/spesa/internal/catalog"
)

// CartUpdate is the PUT /cart/{id} payload; nil fields are left untouched.
type CartUpdate struct {
	Quantity *int  `json:"quantity,omitempty"`
	Checked  *bool `json:"checked,omitempty"`
}

type addToCartPayload struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type favoritePayload struct {
	ProductID int64 `json:"product_id"`
}

func (c *Client) Products(ctx context.Context) ([]catalog.Product, error) {
	var out []catalog.Product
	err := c.do(ctx, request{method: http.MethodGet, path: "/product", route: "/product"}, &out)
	return out, err
}

func (c *Client) Supermarkets(ctx context.Context) ([]catalog.Supermarket, error) {
	var out []catalog.Supermarket
	err := c.do(ctx, request{method: http.MethodGet, path: "/supermarket", route: "/supermarket"}, &out)
	return out, err
}

// Recipes lists recipes owned by ownerID; zero lists every recipe.
func (c *Client) Recipes(ctx context.Context, ownerID int64) ([]catalog.Recipe, error) {
	req := request{method: http.MethodGet, path: "/recipe", route: "/recipe"}
	if ownerID > 0 {
		req.query = url.Values{"owner_id": {strconv.FormatInt(ownerID, 10)}}
	}
	var out []catalog.Recipe
	err := c.do(ctx, req, &out)
	return out, err
}

func (c *Client) Cart(ctx context.Context) ([]catalog.CartItem, error) {
	var out []catalog.CartItem
	err := c.do(ctx, request{method: http.MethodGet, path: "/cart", route: "/cart"}, &out)
	return out, err
}

// AddToCart creates a cart row and returns it as stored by the server.
func (c *Client) AddToCart(ctx context.Context, productID int64, quantity int) (catalog.CartItem, error) {
	var out catalog.CartItem
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/cart",
		route:  "/cart",
		body:   addToCartPayload{ProductID: productID, Quantity: quantity},
	}, &out)
	return out, err
}

func (c *Client) UpdateCartItem(ctx context.Context, id int64, update CartUpdate) error {
	return c.do(ctx, request{
		method: http.MethodPut,
		path:   "/cart/" + strconv.FormatInt(id, 10),
		route:  "/cart/{id}",
		body:   update,
	}, nil)
}

func (c *Client) DeleteCartItem(ctx context.Context, id int64) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   "/cart/" + strconv.FormatInt(id, 10),
		route:  "/cart/{id}",
	}, nil)
}

// ClearCart deletes every cart row of the user in one call.
func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/cart", route: "/cart"}, nil)
}

// FinalizeCart turns the checked rows into a completed purchase.
func (c *Client) FinalizeCart(ctx context.Context) (catalog.FinalizeResult, error) {
	var out catalog.FinalizeResult
	err := c.do(ctx, request{method: http.MethodPost, path: "/cart/finalize", route: "/cart/finalize"}, &out)
	return out, err
}

// Favorites returns the product ids the user marked as favorite.
func (c *Client) Favorites(ctx context.Context) ([]int64, error) {
	var out []int64
	err := c.do(ctx, request{method: http.MethodGet, path: "/favorite", route: "/favorite"}, &out)
	return out, err
}

func (c *Client) AddFavorite(ctx context.Context, productID int64) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/favorite",
		route:  "/favorite",
		body:   favoritePayload{ProductID: productID},
	}, nil)
}

func (c *Client) RemoveFavorite(ctx context.Context, productID int64) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   "/favorite/" + strconv.FormatInt(productID, 10),
		route:  "/favorite/{id}",
	}, nil)
}

// Login exchanges credentials for an access token. A 401 here means bad
// credentials, so it does not trigger the logout hook.
func (c *Client) Login(ctx context.Context, username, password string) (catalog.Token, error) {
	var out catalog.Token
	err := c.do(ctx, request{
		method:    http.MethodPost,
		path:      "/auth/token",
		route:     "/auth/token",
		form:      url.Values{"username": {username}, "password": {password}},
		anonymous: true,
	}, &out)
	return out, err
}

func (c *Client) Register(ctx context.Context, payload catalog.Registration) error {
	return c.do(ctx, request{
		method:    http.MethodPost,
		path:      "/auth",
		route:     "/auth",
		body:      payload,
		anonymous: true,
	}, nil)
}

func (c *Client) CurrentUser(ctx context.Context) (catalog.User, error) {
	var out catalog.User
	err := c.do(ctx, request{method: http.MethodGet, path: "/user", route: "/user"}, &out)
	return out, err
}

func (c *Client) History(ctx context.Context) ([]catalog.HistoryEntry, error) {
	var out []catalog.HistoryEntry
	err := c.do(ctx, request{method: http.MethodGet, path: "/shopping-history", route: "/shopping-history"}, &out)
	return out, err
}

func (c *Client) HistoryItems(ctx context.Context, id int64) ([]catalog.HistoryItem, error) {
	var out []catalog.HistoryItem
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/shopping-history/" + strconv.FormatInt(id, 10) + "/items",
		route:  "/shopping-history/{id}/items",
	}, &out)
	return out, err
}

// RestoreHistory copies a past trip back into the cart.
func (c *Client) RestoreHistory(ctx context.Context, id int64) (catalog.RestoreResult, error) {
	var out catalog.RestoreResult
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/shopping-history/" + strconv.FormatInt(id, 10) + "/restore-cart",
		route:  "/shopping-history/{id}/restore-cart",
	}, &out)
	return out, err
}

func (c *Client) DeleteHistory(ctx context.Context, id int64) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   "/shopping-history/" + strconv.FormatInt(id, 10),
		route:  "/shopping-history/{id}",
	}, nil)
}
