package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront/internal/domain/auth"
	"github.com/xenking/storefront/internal/domain/offer"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/owner"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/domain/user"
)

// --- In-memory repositories ---

type memUsers struct {
	seq  int64
	byID map[int64]*user.User
}

func newMemUsers() *memUsers { return &memUsers{byID: make(map[int64]*user.User)} }

func (m *memUsers) Create(_ context.Context, u *user.User) error {
	for _, existing := range m.byID {
		if existing.Username == u.Username {
			return user.ErrNameTaken
		}
	}
	m.seq++
	u.ID = m.seq
	m.byID[u.ID] = u
	return nil
}

func (m *memUsers) GetByName(_ context.Context, username string) (*user.User, error) {
	for _, u := range m.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*user.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

type memOwners struct {
	seq  int64
	byID map[int64]*owner.Owner
}

func newMemOwners() *memOwners { return &memOwners{byID: make(map[int64]*owner.Owner)} }

func (m *memOwners) Create(_ context.Context, o *owner.Owner) error {
	for _, existing := range m.byID {
		if existing.Name == o.Name {
			return owner.ErrNameTaken
		}
	}
	m.seq++
	o.ID = m.seq
	m.byID[o.ID] = o
	return nil
}

func (m *memOwners) GetByName(_ context.Context, name string) (*owner.Owner, error) {
	for _, o := range m.byID {
		if o.Name == name {
			return o, nil
		}
	}
	return nil, owner.ErrNotFound
}

func (m *memOwners) GetByID(_ context.Context, id int64) (*owner.Owner, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, owner.ErrNotFound
	}
	return o, nil
}

type memProducts struct {
	seq  int64
	byID map[int64]*product.Product
}

func newMemProducts() *memProducts { return &memProducts{byID: make(map[int64]*product.Product)} }

func (m *memProducts) Create(_ context.Context, p *product.Product) error {
	for _, existing := range m.byID {
		if existing.Name == p.Name {
			return product.ErrNameTaken
		}
	}
	m.seq++
	p.ID = m.seq
	m.byID[p.ID] = p
	return nil
}

func (m *memProducts) List(_ context.Context) ([]product.Product, error) {
	out := make([]product.Product, 0, len(m.byID))
	for _, p := range m.byID {
		out = append(out, *p)
	}
	return out, nil
}

func (m *memProducts) GetByID(_ context.Context, id int64) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *memProducts) Delete(_ context.Context, id int64) error {
	if _, ok := m.byID[id]; !ok {
		return product.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

type memOffers struct {
	seq  int64
	byID map[int64]*offer.Offer
}

func newMemOffers() *memOffers { return &memOffers{byID: make(map[int64]*offer.Offer)} }

func (m *memOffers) Create(_ context.Context, o *offer.Offer) error {
	for _, existing := range m.byID {
		if existing.Code == o.Code {
			return offer.ErrCodeTaken
		}
	}
	m.seq++
	o.ID = m.seq
	m.byID[o.ID] = o
	return nil
}

func (m *memOffers) GetByID(_ context.Context, id int64) (*offer.Offer, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, offer.ErrNotFound
	}
	clone := *o
	return &clone, nil
}

func (m *memOffers) FindByCode(_ context.Context, code string) (*offer.Offer, error) {
	for _, o := range m.byID {
		if o.Code == code {
			clone := *o
			return &clone, nil
		}
	}
	return nil, offer.ErrNotFound
}

func (m *memOffers) Update(_ context.Context, o *offer.Offer) error {
	if _, ok := m.byID[o.ID]; !ok {
		return offer.ErrNotFound
	}
	clone := *o
	m.byID[o.ID] = &clone
	return nil
}

func (m *memOffers) Delete(_ context.Context, id int64) error {
	if _, ok := m.byID[id]; !ok {
		return offer.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

// memOrders mimics the transactional store: creating an order decrements
// stock and records offer code usage per user.
type memOrders struct {
	seq      int64
	byID     map[int64]*order.Order
	products *memProducts
}

func newMemOrders(products *memProducts) *memOrders {
	return &memOrders{byID: make(map[int64]*order.Order), products: products}
}

func (m *memOrders) decrement(productID int64, qty int) error {
	p, ok := m.products.byID[productID]
	if !ok || p.Stock < qty {
		return order.ErrInsufficientStock
	}
	p.Stock -= qty
	return nil
}

func (m *memOrders) Create(_ context.Context, o *order.Order) error {
	if o.OfferCode != "" {
		for _, existing := range m.byID {
			if existing.UserID == o.UserID && existing.OfferCode == o.OfferCode {
				return offer.ErrAlreadyUsed
			}
		}
	}
	if err := m.decrement(o.ProductID, o.Quantity); err != nil {
		return err
	}
	m.seq++
	o.ID = m.seq
	clone := *o
	m.byID[o.ID] = &clone
	return nil
}

func (m *memOrders) GetByID(_ context.Context, id int64) (*order.Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	clone := *o
	return &clone, nil
}

func (m *memOrders) Update(_ context.Context, o *order.Order) error {
	if _, ok := m.byID[o.ID]; !ok {
		return order.ErrNotFound
	}
	clone := *o
	m.byID[o.ID] = &clone
	return nil
}

func (m *memOrders) AppendStock(_ context.Context, o *order.Order, productID int64, qty int) error {
	if err := m.decrement(productID, qty); err != nil {
		return err
	}
	clone := *o
	m.byID[o.ID] = &clone
	return nil
}

func (m *memOrders) Delete(_ context.Context, id int64) error {
	if _, ok := m.byID[id]; !ok {
		return order.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memOrders) UserHasUsedCode(_ context.Context, userID int64, code string) (bool, error) {
	for _, o := range m.byID {
		if o.UserID == userID && o.OfferCode == code {
			return true, nil
		}
	}
	return false, nil
}

// --- Test fixture ---

// testNow is a Monday, safely inside business days.
var testNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

type fixture struct {
	router   http.Handler
	products *memProducts
	offers   *memOffers
	orders   *memOrders

	ownerToken  string
	owner2Token string
	userToken   string
	user2Token  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	users := newMemUsers()
	owners := newMemOwners()
	products := newMemProducts()
	offers := newMemOffers()
	orders := newMemOrders(products)

	tokens := auth.NewTokenIssuer([]byte("test-secret"), 30*time.Minute)
	authSvc := auth.NewService(users, owners, tokens)

	clock := func() time.Time { return testNow }
	validator := offer.NewRepoValidator(offers, orders, offer.WithClock(clock))
	cal, err := order.NewCalendar([]string{"2026-12-25"})
	require.NoError(t, err)
	orderSvc := order.NewService(products, validator, orders, cal,
		order.DefaultAmountRange(), order.WithClock(clock))

	h := NewHandler(authSvc, tokens, products, offers, orderSvc, WithClock(clock))

	f := &fixture{
		router:   h.Routes(),
		products: products,
		offers:   offers,
		orders:   orders,
	}

	f.ownerToken = f.registerOwner(t, "acme", "secret")
	f.owner2Token = f.registerOwner(t, "globex", "secret")
	f.userToken = f.registerUser(t, "alice", "secret")
	f.user2Token = f.registerUser(t, "bob", "secret")
	return f
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) registerOwner(t *testing.T, name, password string) string {
	t.Helper()
	creds := map[string]string{"name": name, "password": password}
	w := f.do(t, http.MethodPost, "/owner/register", "", creds)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = f.do(t, http.MethodPost, "/owner/login", "", creds)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return tokenFrom(t, w)
}

func (f *fixture) registerUser(t *testing.T, username, password string) string {
	t.Helper()
	creds := map[string]string{"username": username, "password": password}
	w := f.do(t, http.MethodPost, "/user/register", "", creds)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = f.do(t, http.MethodPost, "/user/login", "", creds)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return tokenFrom(t, w)
}

func (f *fixture) createProduct(t *testing.T, token, name, price string, stock int) int64 {
	t.Helper()
	w := f.do(t, http.MethodPost, "/products", token, map[string]any{
		"name":  name,
		"price": price,
		"stock": stock,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return int64(decodeBody(t, w)["id"].(float64))
}

func (f *fixture) createOffer(t *testing.T, token string, body map[string]any) int64 {
	t.Helper()
	w := f.do(t, http.MethodPost, "/offers", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return int64(decodeBody(t, w)["id"].(float64))
}

func tokenFrom(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeBody(t, w)
	require.Equal(t, "bearer", body["token_type"])
	return body["access_token"].(string)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

// --- Auth ---

func TestRegisterUser_DuplicateName(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/user/register", "", map[string]string{
		"username": "alice",
		"password": "other",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterUser_MissingFields(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/user/register", "", map[string]string{"username": "carol"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginUser_WrongPassword(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/user/login", "", map[string]string{
		"username": "alice",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_MissingToken(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_GarbageToken(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/products", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_UserCannotUseOwnerEndpoints(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/products", f.userToken, map[string]any{
		"name":  "Widget",
		"price": "100.00",
		"stock": 5,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuth_OwnerCannotPlaceOrders(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/orders", f.ownerToken, map[string]any{
		"product_id": 1,
		"quantity":   1,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

// --- Products ---

func TestProducts_CreateListGet(t *testing.T) {
	f := newFixture(t)
	id := f.createProduct(t, f.ownerToken, "Widget", "150.00", 5)

	w := f.do(t, http.MethodGet, "/products", f.userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, "Widget", list[0]["name"])

	w = f.do(t, http.MethodGet, fmt.Sprintf("/products/%d", id), f.userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, 150.0, body["price"])
	assert.Equal(t, 5.0, body["stock"])
}

func TestProducts_DuplicateName(t *testing.T) {
	f := newFixture(t)
	f.createProduct(t, f.ownerToken, "Widget", "150.00", 5)

	w := f.do(t, http.MethodPost, "/products", f.ownerToken, map[string]any{
		"name":  "Widget",
		"price": "99.00",
		"stock": 1,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestProducts_GetUnknown(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/products/999", f.userToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProducts_BadID(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/products/abc", f.userToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProducts_DeleteByOtherOwner(t *testing.T) {
	f := newFixture(t)
	id := f.createProduct(t, f.ownerToken, "Widget", "150.00", 5)

	w := f.do(t, http.MethodDelete, fmt.Sprintf("/products/%d", id), f.owner2Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodDelete, fmt.Sprintf("/products/%d", id), f.ownerToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodGet, fmt.Sprintf("/products/%d", id), f.userToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- Offers ---

func validOffer(code string) map[string]any {
	return map[string]any{
		"code":           code,
		"discount_value": "20",
		"is_percentage":  true,
		"expires_at":     testNow.AddDate(0, 1, 0).Format(time.RFC3339),
	}
}

func TestOffers_Create(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/offers", f.ownerToken, validOffer("SAVE20"))
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "SAVE20", body["code"])
	assert.Equal(t, 20.0, body["discount_value"])
}

func TestOffers_CreateExpired(t *testing.T) {
	f := newFixture(t)

	body := validOffer("OLD")
	body["expires_at"] = testNow.AddDate(0, 0, -1).Format(time.RFC3339)
	w := f.do(t, http.MethodPost, "/offers", f.ownerToken, body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestOffers_DuplicateCode(t *testing.T) {
	f := newFixture(t)
	f.createOffer(t, f.ownerToken, validOffer("SAVE20"))

	w := f.do(t, http.MethodPost, "/offers", f.ownerToken, validOffer("SAVE20"))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestOffers_UpdateByOtherOwner(t *testing.T) {
	f := newFixture(t)
	id := f.createOffer(t, f.ownerToken, validOffer("SAVE20"))

	w := f.do(t, http.MethodPut, fmt.Sprintf("/offers/%d", id), f.owner2Token, map[string]any{
		"discount_value": "50",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestOffers_Update(t *testing.T) {
	f := newFixture(t)
	id := f.createOffer(t, f.ownerToken, validOffer("SAVE20"))

	w := f.do(t, http.MethodPut, fmt.Sprintf("/offers/%d", id), f.ownerToken, map[string]any{
		"discount_value": "25",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, 25.0, body["discount_value"])
	assert.Equal(t, "SAVE20", body["code"], "unset fields stay unchanged")
}

func TestOffers_Delete(t *testing.T) {
	f := newFixture(t)
	id := f.createOffer(t, f.ownerToken, validOffer("SAVE20"))

	w := f.do(t, http.MethodDelete, fmt.Sprintf("/offers/%d", id), f.ownerToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodDelete, fmt.Sprintf("/offers/%d", id), f.ownerToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- Orders ---

func TestOrders_PlaceWithOffer(t *testing.T) {
	f := newFixture(t)
	productID := f.createProduct(t, f.ownerToken, "Widget", "250.00", 10)
	f.createOffer(t, f.ownerToken, validOffer("SAVE20"))

	w := f.do(t, http.MethodPost, "/orders", f.userToken, map[string]any{
		"product_id": productID,
		"quantity":   2,
		"offer_code": "SAVE20",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, 500.0, body["total_amount"])
	assert.Equal(t, 100.0, body["discount_amount"])
	assert.Equal(t, 400.0, body["final_amount"])
	assert.Equal(t, "SAVE20", body["offer_code"])

	// Stock was consumed.
	p, err := f.products.GetByID(context.Background(), productID)
	require.NoError(t, err)
	assert.Equal(t, 8, p.Stock)
}

func TestOrders_OfferSingleUsePerUser(t *testing.T) {
	f := newFixture(t)
	productID := f.createProduct(t, f.ownerToken, "Widget", "250.00", 10)
	f.createOffer(t, f.ownerToken, validOffer("SAVE20"))

	place := map[string]any{
		"product_id": productID,
		"quantity":   1,
		"offer_code": "SAVE20",
	}

	w := f.do(t, http.MethodPost, "/orders", f.userToken, place)
	require.Equal(t, http.StatusCreated, w.Code)

	// Same user again: rejected.
	w = f.do(t, http.MethodPost, "/orders", f.userToken, place)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// A different user may still redeem the code.
	w = f.do(t, http.MethodPost, "/orders", f.user2Token, place)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestOrders_UnknownOfferCode(t *testing.T) {
	f := newFixture(t)
	productID := f.createProduct(t, f.ownerToken, "Widget", "250.00", 10)

	w := f.do(t, http.MethodPost, "/orders", f.userToken, map[string]any{
		"product_id": productID,
		"quantity":   1,
		"offer_code": "NOPE",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrders_InsufficientStock(t *testing.T) {
	f := newFixture(t)
	productID := f.createProduct(t, f.ownerToken, "Widget", "250.00", 2)

	w := f.do(t, http.MethodPost, "/orders", f.userToken, map[string]any{
		"product_id": productID,
		"quantity":   3,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestOrders_AmountBelowMin(t *testing.T) {
	f := newFixture(t)
	productID := f.createProduct(t, f.ownerToken, "Trinket", "50.00", 10)

	w := f.do(t, http.MethodPost, "/orders", f.userToken, map[string]any{
		"product_id": productID,
		"quantity":   1,
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decodeBody(t, w)["message"], "must be between")
}

func TestOrders_GetOtherUsers(t *testing.T) {
	f := newFixture(t)
	productID := f.createProduct(t, f.ownerToken, "Widget", "250.00", 10)

	w := f.do(t, http.MethodPost, "/orders", f.userToken, map[string]any{
		"product_id": productID,
		"quantity":   1,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	orderID := int64(decodeBody(t, w)["order_id"].(float64))

	w = f.do(t, http.MethodGet, fmt.Sprintf("/orders/%d", orderID), f.user2Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodGet, fmt.Sprintf("/orders/%d", orderID), f.userToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOrders_UpdateQuantity(t *testing.T) {
	f := newFixture(t)
	productID := f.createProduct(t, f.ownerToken, "Widget", "150.00", 10)

	w := f.do(t, http.MethodPost, "/orders", f.userToken, map[string]any{
		"product_id": productID,
		"quantity":   1,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	orderID := int64(decodeBody(t, w)["order_id"].(float64))

	w = f.do(t, http.MethodPut, fmt.Sprintf("/orders/%d", orderID), f.userToken, map[string]any{
		"quantity": 3,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, 3.0, body["quantity"])
	assert.Equal(t, 450.0, body["total_amount"])
	assert.Equal(t, 450.0, body["final_amount"])
}

func TestOrders_AddProduct(t *testing.T) {
	f := newFixture(t)
	p1 := f.createProduct(t, f.ownerToken, "Widget", "150.00", 10)
	p2 := f.createProduct(t, f.ownerToken, "Gadget", "200.00", 5)

	w := f.do(t, http.MethodPost, "/orders", f.userToken, map[string]any{
		"product_id": p1,
		"quantity":   1,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	orderID := int64(decodeBody(t, w)["order_id"].(float64))

	w = f.do(t, http.MethodPost, fmt.Sprintf("/orders/%d/products", orderID), f.userToken, map[string]any{
		"product_id": p2,
		"quantity":   2,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, 550.0, body["total_amount"])

	p, err := f.products.GetByID(context.Background(), p2)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Stock)
}

func TestOrders_DeleteKeepsStockConsumed(t *testing.T) {
	f := newFixture(t)
	productID := f.createProduct(t, f.ownerToken, "Widget", "150.00", 10)

	w := f.do(t, http.MethodPost, "/orders", f.userToken, map[string]any{
		"product_id": productID,
		"quantity":   4,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	orderID := int64(decodeBody(t, w)["order_id"].(float64))

	w = f.do(t, http.MethodDelete, fmt.Sprintf("/orders/%d", orderID), f.userToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	// Stock is not restored on deletion.
	p, err := f.products.GetByID(context.Background(), productID)
	require.NoError(t, err)
	assert.Equal(t, 6, p.Stock)
}

func TestOrders_MalformedBody(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer "+f.userToken)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, 400.0, body["code"])
}

func TestErrorEnvelopeShape(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/products/999", f.userToken, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	body := decodeBody(t, w)
	assert.Equal(t, 404.0, body["code"])
	assert.NotEmpty(t, body["message"])
}
