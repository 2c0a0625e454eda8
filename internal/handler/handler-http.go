package storefront_handler_http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	internal "storefront-service/internal"
	storefront_controller "storefront-service/internal/controller"
	dmodel "storefront-service/pkg"
)

func AddCORSHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// CORS preflight request (OPTIONS) handling
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type Handler_Storefront struct {
	controller *storefront_controller.Controller_Storefront
}

func New(controller *storefront_controller.Controller_Storefront) *Handler_Storefront {
	return &Handler_Storefront{
		controller: controller,
	}
}

// -------------------------------------------------------------------
// error responses
// -------------------------------------------------------------------

// errorBody
// structured failure payload; Kind is the machine tag, the rest is
// detail for rendering an actionable message
type errorBody struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Product   string `json:"product,omitempty"`
	Available *int   `json:"available,omitempty"`
}

func writeError(w http.ResponseWriter, status int, body errorBody) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// mapping the controller's failure taxonomy to status signals:
// validation -> 400, product not found -> 404, insufficient stock
// -> 400 with remaining quantity, anything else -> 500
func writePlacementError(w http.ResponseWriter, err error) {
	var validationErr *internal.ValidationError
	if errors.As(err, &validationErr) {
		writeError(w, http.StatusBadRequest, errorBody{Kind: "validation", Message: validationErr.Message})
		return
	}

	var notFoundErr *internal.ProductNotFoundError
	if errors.As(err, &notFoundErr) {
		writeError(w, http.StatusNotFound, errorBody{
			Kind:    "product_not_found",
			Message: "Product not found",
			Product: notFoundErr.ProductID,
		})
		return
	}

	var stockErr *internal.StockError
	if errors.As(err, &stockErr) {
		available := stockErr.Available
		writeError(w, http.StatusBadRequest, errorBody{
			Kind:      "insufficient_stock",
			Message:   stockErr.Error(),
			Product:   stockErr.ProductID,
			Available: &available,
		})
		return
	}

	log.Printf("Error placing order: Repository error: %v", err)
	writeError(w, http.StatusInternalServerError, errorBody{Kind: "storage", Message: "Server error"})
}

// -------------------------------------------------------------------

// -------------------------------------------------------------------
// products
// -------------------------------------------------------------------

func (h *Handler_Storefront) Get_AllProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	w.Header().Set("Content-Type", "application/json")

	// getting the controller's response
	products, err := h.controller.Get_AllProducts(ctx)
	if err != nil {
		log.Printf("Error getting all products: Repository error: %v", err)
		writeError(w, http.StatusInternalServerError, errorBody{Kind: "storage", Message: "Server error"})
		return
	}

	// encoding the response to JSON
	err = json.NewEncoder(w).Encode(products)
	if err != nil {
		log.Printf("Error encoding products to JSON: %v", err)
	}
}

func (h *Handler_Storefront) Get_ProductByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	w.Header().Set("Content-Type", "application/json")

	r_params := mux.Vars(r)
	productID := r_params["productId"]

	// getting the controller's response
	product, err := h.controller.Get_ProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, internal.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, errorBody{Kind: "product_not_found", Message: "Product not found", Product: productID})
		} else {
			log.Printf("Error getting product by ID: Repository error: %v", err)
			writeError(w, http.StatusInternalServerError, errorBody{Kind: "storage", Message: "Server error"})
		}
		return
	}

	json.NewEncoder(w).Encode(product)
}

func (h *Handler_Storefront) Set_ProductQuantity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	w.Header().Set("Content-Type", "application/json")

	r_params := mux.Vars(r)
	productID := r_params["productId"]

	var template_req struct {
		Quantity *int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&template_req); err != nil {
		writeError(w, http.StatusBadRequest, errorBody{Kind: "validation", Message: "Invalid JSON"})
		return
	}
	if template_req.Quantity == nil {
		writeError(w, http.StatusBadRequest, errorBody{Kind: "validation", Message: "Quantity required"})
		return
	}

	// getting the controller's response
	product, err := h.controller.Set_ProductQuantity(ctx, productID, *template_req.Quantity)
	if err != nil {
		var validationErr *internal.ValidationError
		switch {
		case errors.As(err, &validationErr):
			writeError(w, http.StatusBadRequest, errorBody{Kind: "validation", Message: validationErr.Message})
		case errors.Is(err, internal.ErrProductNotFound):
			writeError(w, http.StatusNotFound, errorBody{Kind: "product_not_found", Message: "Product not found", Product: productID})
		default:
			log.Printf("Error setting product quantity: Repository error: %v", err)
			writeError(w, http.StatusInternalServerError, errorBody{Kind: "storage", Message: "Server error"})
		}
		return
	}

	// logging
	log.Printf("Product %s quantity set to %d", product.ID, product.Quantity)
	json.NewEncoder(w).Encode(product)
}

// -------------------------------------------------------------------

// -------------------------------------------------------------------
// orders
// -------------------------------------------------------------------

func (h *Handler_Storefront) Get_AllOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	w.Header().Set("Content-Type", "application/json")

	// getting the controller's response
	orders, err := h.controller.Get_AllOrders(ctx)
	if err != nil {
		log.Printf("Error getting all orders: Repository error: %v", err)
		writeError(w, http.StatusInternalServerError, errorBody{Kind: "storage", Message: "Server error"})
		return
	}

	// encoding the response to JSON
	err = json.NewEncoder(w).Encode(orders)
	if err != nil {
		log.Printf("Error encoding orders to JSON: %v", err)
	}
}

func (h *Handler_Storefront) Get_ByOrderID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	w.Header().Set("Content-Type", "application/json")

	r_params := mux.Vars(r)
	orderID := r_params["orderId"]

	// getting the controller's response
	order, err := h.controller.Get_ByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, internal.ErrOrderNotFound) {
			writeError(w, http.StatusNotFound, errorBody{Kind: "order_not_found", Message: "Order not found"})
		} else {
			log.Printf("Error getting order by ID: Repository error: %v", err)
			writeError(w, http.StatusInternalServerError, errorBody{Kind: "storage", Message: "Server error"})
		}
		return
	}

	json.NewEncoder(w).Encode(order)
}

func (h *Handler_Storefront) Create_Order(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	w.Header().Set("Content-Type", "application/json")

	var template_req dmodel.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&template_req); err != nil {
		writeError(w, http.StatusBadRequest, errorBody{Kind: "validation", Message: "Invalid JSON"})
		return
	}

	// getting the controller's response
	order, err := h.controller.Place_Order(ctx, &template_req)
	if err != nil {
		writePlacementError(w, err)
		return
	}

	// logging
	log.Printf("Order %s placed: %d item(s), total %d", order.ID, len(order.Items), order.TotalAmount)
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(order)
}

func (h *Handler_Storefront) Complete_Order(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	w.Header().Set("Content-Type", "application/json")

	r_params := mux.Vars(r)
	orderID := r_params["orderId"]

	// getting the controller's response
	order, err := h.controller.Complete_Order(ctx, orderID)
	if err != nil {
		switch {
		case errors.Is(err, internal.ErrOrderNotFound):
			writeError(w, http.StatusNotFound, errorBody{Kind: "order_not_found", Message: "Order not found"})
		case errors.Is(err, internal.ErrOrderNotPlaced):
			writeError(w, http.StatusBadRequest, errorBody{Kind: "validation", Message: "Order is not in Placed status"})
		default:
			log.Printf("Error completing order: Repository error: %v", err)
			writeError(w, http.StatusInternalServerError, errorBody{Kind: "storage", Message: "Server error"})
		}
		return
	}

	// logging
	log.Printf("Order %s marked as %s", order.ID, order.Status)
	json.NewEncoder(w).Encode(order)
}

// -------------------------------------------------------------------
