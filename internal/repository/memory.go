package storefront_repository

import (
	"context"
	"sort"
	"sync"

	internal "storefront-service/internal"
	dmodel "storefront-service/pkg"
)

// -------------------------------------------------------------------
// dtypes
// -------------------------------------------------------------------

// DataRepo_Volatile
// holds volatile data and a mutex for concurrency; used when no
// DATABASE_URL is configured, and by the tests
type DataRepo_Volatile struct {
	mu       sync.RWMutex
	products map[string]*dmodel.Product
	orders   map[string]*dmodel.Order
}

func New_Volatile(initial ...*dmodel.Product) *DataRepo_Volatile {
	datarepo := &DataRepo_Volatile{
		products: make(map[string]*dmodel.Product),
		orders:   make(map[string]*dmodel.Order),
	}

	for _, product := range initial {
		p := *product
		datarepo.products[p.ID] = &p
	}

	return datarepo
}

// -------------------------------------------------------------------

// -------------------------------------------------------------------
// products
// -------------------------------------------------------------------

// retrieving all products
func (dr *DataRepo_Volatile) Get_AllProducts(_ context.Context) ([]*dmodel.Product, error) {
	dr.mu.RLock()
	defer dr.mu.RUnlock()

	products := make([]*dmodel.Product, 0, len(dr.products))
	for _, product := range dr.products {
		p := *product
		products = append(products, &p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })

	return products, nil
}

// retrieving product by ID
func (dr *DataRepo_Volatile) Get_ProductByID(_ context.Context, id string) (*dmodel.Product, error) {
	dr.mu.RLock()
	defer dr.mu.RUnlock()

	product, exists := dr.products[id]
	if !exists {
		return nil, internal.ErrProductNotFound
	}

	p := *product
	return &p, nil
}

// overwriting the available quantity of a product (admin path);
// pure replace, not a delta
func (dr *DataRepo_Volatile) Set_ProductQuantity(_ context.Context, id string, quantity int) (*dmodel.Product, error) {
	dr.mu.Lock()
	defer dr.mu.Unlock()

	product, exists := dr.products[id]
	if !exists {
		return nil, internal.ErrProductNotFound
	}

	product.Quantity = quantity

	p := *product
	return &p, nil
}

// -------------------------------------------------------------------

// -------------------------------------------------------------------
// orders
// -------------------------------------------------------------------

// retrieving all orders, newest first
func (dr *DataRepo_Volatile) Get_AllOrders(_ context.Context) ([]*dmodel.Order, error) {
	dr.mu.RLock()
	defer dr.mu.RUnlock()

	orders := make([]*dmodel.Order, 0, len(dr.orders))
	for _, order := range dr.orders {
		orders = append(orders, copyOrder(order))
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })

	return orders, nil
}

// retrieving order by ID
func (dr *DataRepo_Volatile) Get_ByOrderID(_ context.Context, id string) (*dmodel.Order, error) {
	dr.mu.RLock()
	defer dr.mu.RUnlock()

	order, exists := dr.orders[id]
	if !exists {
		return nil, internal.ErrOrderNotFound
	}

	return copyOrder(order), nil
}

// persisting an order while taking its stock; the mutex spans the
// whole verify-decrement-append sequence, so either every line is
// taken and the order exists, or nothing changes
func (dr *DataRepo_Volatile) Create_Order(_ context.Context, order *dmodel.Order) error {
	dr.mu.Lock()
	defer dr.mu.Unlock()

	// verifying every line before touching any quantity; quantities
	// are accumulated per product so duplicate lines for the same
	// product are checked against their combined demand
	needed := make(map[string]int, len(order.Items))
	for _, item := range order.Items {
		product, exists := dr.products[item.ProductID]
		if !exists {
			return &internal.ProductNotFoundError{ProductID: item.ProductID}
		}
		needed[item.ProductID] += item.Quantity
		if product.Quantity < needed[item.ProductID] {
			return &internal.StockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   product.Quantity,
			}
		}
	}

	for _, item := range order.Items {
		dr.products[item.ProductID].Quantity -= item.Quantity
	}

	dr.orders[order.ID] = copyOrder(order)

	return nil
}

// moving an order from one status to another; the current-status
// check and the write happen under the same lock, so only one of two
// concurrent transitions can win
func (dr *DataRepo_Volatile) Transition_OrderStatus(_ context.Context, id string, from, to dmodel.OrderStatus) error {
	dr.mu.Lock()
	defer dr.mu.Unlock()

	order, exists := dr.orders[id]
	if !exists {
		return internal.ErrOrderNotFound
	}
	if order.Status != from {
		return internal.ErrOrderNotPlaced
	}

	order.Status = to
	return nil
}

// -------------------------------------------------------------------

func copyOrder(order *dmodel.Order) *dmodel.Order {
	o := *order
	o.Items = make([]dmodel.OrderItem, len(order.Items))
	copy(o.Items, order.Items)
	return &o
}
