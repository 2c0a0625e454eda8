package storefront_handler_http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storefront_controller "storefront-service/internal/controller"
	storefront_repository "storefront-service/internal/repository"
	dmodel "storefront-service/pkg"
)

func newTestRouter(products ...*dmodel.Product) *mux.Router {
	datarepo := storefront_repository.New_Volatile(products...)
	controller := storefront_controller.New(datarepo, nil)
	handler := New(controller)

	r := mux.NewRouter()
	r.Handle("/api/products", AddCORSHeaders(http.HandlerFunc(handler.Get_AllProducts))).Methods(http.MethodGet)
	r.Handle("/api/products/{productId}", AddCORSHeaders(http.HandlerFunc(handler.Get_ProductByID))).Methods(http.MethodGet)
	r.Handle("/api/products/{productId}/quantity", AddCORSHeaders(http.HandlerFunc(handler.Set_ProductQuantity))).Methods(http.MethodPut)
	r.Handle("/api/orders", AddCORSHeaders(http.HandlerFunc(handler.Get_AllOrders))).Methods(http.MethodGet)
	r.Handle("/api/orders/{orderId}", AddCORSHeaders(http.HandlerFunc(handler.Get_ByOrderID))).Methods(http.MethodGet)
	r.Handle("/api/orders", AddCORSHeaders(http.HandlerFunc(handler.Create_Order))).Methods(http.MethodPost)
	r.Handle("/api/orders/{orderId}/complete", AddCORSHeaders(http.HandlerFunc(handler.Complete_Order))).Methods(http.MethodPost)
	return r
}

func doJSON(t *testing.T, router *mux.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func catalog() []*dmodel.Product {
	return []*dmodel.Product{
		{ID: "p1", Name: "Chocolate Cake", Price: 450, Category: "Cake", Quantity: 10},
		{ID: "p2", Name: "White Bread", Price: 60, Category: "Bread", Quantity: 3},
	}
}

func validOrderBody(lines ...map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"customerName": "Asha",
		"phone":        "9876543210",
		"address":      "12 Baker Street",
		"products":     lines,
	}
}

func TestGetAllProducts(t *testing.T) {
	router := newTestRouter(catalog()...)

	rec := doJSON(t, router, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var products []dmodel.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	assert.Len(t, products, 2)
}

func TestGetProductByID(t *testing.T) {
	router := newTestRouter(catalog()...)

	rec := doJSON(t, router, http.MethodGet, "/api/products/p1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var product dmodel.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &product))
	assert.Equal(t, "Chocolate Cake", product.Name)

	rec = doJSON(t, router, http.MethodGet, "/api/products/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlaceOrderEndpoint_Success(t *testing.T) {
	router := newTestRouter(catalog()...)

	rec := doJSON(t, router, http.MethodPost, "/api/orders", validOrderBody(
		map[string]interface{}{"productId": "p1", "quantity": 2},
	))
	require.Equal(t, http.StatusCreated, rec.Code)

	var order dmodel.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, int64(900), order.TotalAmount)
	assert.Equal(t, dmodel.OrderStatusPlaced, order.Status)

	// stock visible through the catalog endpoint
	rec = doJSON(t, router, http.MethodGet, "/api/products/p1", nil)
	var product dmodel.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &product))
	assert.Equal(t, 8, product.Quantity)
}

func TestPlaceOrderEndpoint_Failures(t *testing.T) {
	router := newTestRouter(catalog()...)

	cases := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantKind   string
	}{
		{
			"missing customer name",
			map[string]interface{}{
				"phone": "1", "address": "a",
				"products": []map[string]interface{}{{"productId": "p1", "quantity": 1}},
			},
			http.StatusBadRequest, "validation",
		},
		{
			"empty lines",
			validOrderBody(),
			http.StatusBadRequest, "validation",
		},
		{
			"unknown product",
			validOrderBody(map[string]interface{}{"productId": "ghost", "quantity": 1}),
			http.StatusNotFound, "product_not_found",
		},
		{
			"insufficient stock",
			validOrderBody(map[string]interface{}{"productId": "p2", "quantity": 5}),
			http.StatusBadRequest, "insufficient_stock",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/api/orders", tc.body)
			require.Equal(t, tc.wantStatus, rec.Code)

			var body struct {
				Kind      string `json:"kind"`
				Message   string `json:"message"`
				Available *int   `json:"available"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.wantKind, body.Kind)
			assert.NotEmpty(t, body.Message)

			if tc.wantKind == "insufficient_stock" {
				require.NotNil(t, body.Available)
				assert.Equal(t, 3, *body.Available)
			}
		})
	}

	// no order was created by any failed request
	rec := doJSON(t, router, http.MethodGet, "/api/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestSetQuantityEndpoint(t *testing.T) {
	router := newTestRouter(catalog()...)

	rec := doJSON(t, router, http.MethodPut, "/api/products/p2/quantity", map[string]interface{}{"quantity": 50})
	require.Equal(t, http.StatusOK, rec.Code)

	var product dmodel.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &product))
	assert.Equal(t, 50, product.Quantity)

	rec = doJSON(t, router, http.MethodPut, "/api/products/p2/quantity", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPut, "/api/products/p2/quantity", map[string]interface{}{"quantity": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPut, "/api/products/ghost/quantity", map[string]interface{}{"quantity": 5})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCompleteOrderEndpoint(t *testing.T) {
	router := newTestRouter(catalog()...)

	rec := doJSON(t, router, http.MethodPost, "/api/orders", validOrderBody(
		map[string]interface{}{"productId": "p1", "quantity": 1},
	))
	require.Equal(t, http.StatusCreated, rec.Code)

	var order dmodel.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))

	path := fmt.Sprintf("/api/orders/%s/complete", order.ID)
	rec = doJSON(t, router, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var completed dmodel.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &completed))
	assert.Equal(t, dmodel.OrderStatusCompleted, completed.Status)

	// second completion is rejected
	rec = doJSON(t, router, http.MethodPost, path, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/orders/ghost/complete", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSHeaders(t *testing.T) {
	router := newTestRouter(catalog()...)

	rec := doJSON(t, router, http.MethodGet, "/api/products", nil)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
