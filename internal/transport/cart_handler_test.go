package transport

import (
	"net/http"
	"testing"

	"bozoruz/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestCartAddAndTotals(t *testing.T) {
	api := newTestAPI(t)

	api.do(t, http.MethodPost, "/api/cart/items", AddItemRequest{ProductID: "9"}, "")
	api.do(t, http.MethodPost, "/api/cart/items", AddItemRequest{ProductID: "9"}, "")
	w := api.do(t, http.MethodPost, "/api/cart/items", AddItemRequest{ProductID: "10"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	cart := decode[CartResponse](t, w)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, 3, cart.TotalItems)
	assert.Equal(t, int64(2*25000+85000), cart.TotalPrice)
	assert.Equal(t, domain.FormatPrice(135000), cart.TotalPriceFormatted)
}

func TestCartAddUnknownProduct(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/cart/items", AddItemRequest{ProductID: "nope"}, "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 0, api.cart.TotalItems())
}

func TestCartAddRequiresProductID(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/cart/items", map[string]string{}, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "product_id")
}

func TestCartUpdateAndRemove(t *testing.T) {
	api := newTestAPI(t)
	api.do(t, http.MethodPost, "/api/cart/items", AddItemRequest{ProductID: "1"}, "")
	api.do(t, http.MethodPost, "/api/cart/items", AddItemRequest{ProductID: "2"}, "")

	w := api.do(t, http.MethodPut, "/api/cart/items/1", UpdateQuantityRequest{Quantity: intPtr(4)}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, decode[CartResponse](t, w).TotalItems)

	w = api.do(t, http.MethodPut, "/api/cart/items/1", UpdateQuantityRequest{Quantity: intPtr(0)}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[CartResponse](t, w).Items, 1)

	w = api.do(t, http.MethodDelete, "/api/cart/items/2", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[CartResponse](t, w).Items)
}

func TestCartUpdateRequiresQuantity(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPut, "/api/cart/items/1", map[string]string{}, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartClear(t *testing.T) {
	api := newTestAPI(t)
	api.do(t, http.MethodPost, "/api/cart/items", AddItemRequest{ProductID: "1"}, "")

	w := api.do(t, http.MethodDelete, "/api/cart", nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[CartResponse](t, w).TotalItems)
}

func TestCartKeepsPriceAfterAdminEdit(t *testing.T) {
	api := newTestAPI(t)
	api.do(t, http.MethodPost, "/api/cart/items", AddItemRequest{ProductID: "7"}, "")

	p, err := api.products.FindByID(t.Context(), "7")
	require.NoError(t, err)
	p.Price = 999999
	require.NoError(t, api.products.Update(t.Context(), p))

	assert.Equal(t, int64(250000), api.cart.TotalPrice())
}

func TestCheckoutRequiresLogin(t *testing.T) {
	api := newTestAPI(t)
	api.do(t, http.MethodPost, "/api/cart/items", AddItemRequest{ProductID: "1"}, "")

	w := api.do(t, http.MethodPost, "/api/checkout", nil, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 1, api.cart.TotalItems())
}

func TestCheckoutEmptyCart(t *testing.T) {
	api := newTestAPI(t)
	token := api.login(t, "user@example.com")

	w := api.do(t, http.MethodPost, "/api/checkout", nil, token)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutPlacesOrder(t *testing.T) {
	api := newTestAPI(t)
	token := api.login(t, "user@example.com")
	api.do(t, http.MethodPost, "/api/cart/items", AddItemRequest{ProductID: "5"}, "")
	api.do(t, http.MethodPost, "/api/cart/items", AddItemRequest{ProductID: "5"}, "")

	w := api.do(t, http.MethodPost, "/api/checkout", CheckoutRequest{Address: "Toshkent, Yunusobod"}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	order := decode[OrderResponse](t, w)
	assert.Equal(t, int64(900000), order.Total)
	assert.Equal(t, 2, order.ItemCount)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, "Kutilmoqda", order.StatusLabel)
	assert.Equal(t, 0, api.cart.TotalItems())

	w = api.do(t, http.MethodGet, "/api/profile/orders", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	orders := decode[[]OrderResponse](t, w)
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)
}

// Feature: storefront, Property 24: Cart totals over HTTP match the line items
func TestProperty_CartTotalsMatchLineItems(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("total price is the sum of the line item subtotals", prop.ForAll(
		func(ids []string) bool {
			api := newTestAPI(t)
			for _, id := range ids {
				api.do(t, http.MethodPost, "/api/cart/items", AddItemRequest{ProductID: id}, "")
			}

			w := api.do(t, http.MethodGet, "/api/cart", nil, "")
			cart := decode[CartResponse](t, w)

			var sum int64
			count := 0
			for _, item := range cart.Items {
				sum += item.Product.Price * int64(item.Quantity)
				count += item.Quantity
			}
			return sum == cart.TotalPrice && count == cart.TotalItems && count == len(ids)
		},
		gen.SliceOf(gen.OneConstOf("1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12")),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
