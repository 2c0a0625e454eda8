package storefront_controller

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	internal "storefront-service/internal"
	dmodel "storefront-service/pkg"
)

type if_repo_storefront interface {
	Get_AllProducts(_ context.Context) ([]*dmodel.Product, error)
	Get_ProductByID(_ context.Context, id string) (*dmodel.Product, error)
	Set_ProductQuantity(_ context.Context, id string, quantity int) (*dmodel.Product, error)
	Get_AllOrders(_ context.Context) ([]*dmodel.Order, error)
	Get_ByOrderID(_ context.Context, id string) (*dmodel.Order, error)
	Create_Order(_ context.Context, order *dmodel.Order) error
	Transition_OrderStatus(_ context.Context, id string, from, to dmodel.OrderStatus) error
}

type if_publisher interface {
	Publish_OrderPlaced(_ context.Context, order *dmodel.Order) error
}

type Controller_Storefront struct {
	repo      if_repo_storefront
	publisher if_publisher
}

// publisher may be nil when no queue is configured
func New(repo if_repo_storefront, publisher if_publisher) *Controller_Storefront {
	return &Controller_Storefront{
		repo:      repo,
		publisher: publisher,
	}
}

// -------------------------------------------------------------------
// catalog
// -------------------------------------------------------------------

func (c *Controller_Storefront) Get_AllProducts(ctx context.Context) ([]*dmodel.Product, error) {
	return c.repo.Get_AllProducts(ctx)
}

func (c *Controller_Storefront) Get_ProductByID(ctx context.Context, id string) (*dmodel.Product, error) {
	return c.repo.Get_ProductByID(ctx, id)
}

// admin quantity override; unconditional replace of the available
// quantity, unrelated to pending orders or carts
func (c *Controller_Storefront) Set_ProductQuantity(ctx context.Context, id string, quantity int) (*dmodel.Product, error) {
	if quantity < 0 {
		return nil, &internal.ValidationError{Message: "quantity must not be negative"}
	}

	return c.repo.Set_ProductQuantity(ctx, id, quantity)
}

// -------------------------------------------------------------------

// -------------------------------------------------------------------
// orders
// -------------------------------------------------------------------

func (c *Controller_Storefront) Get_AllOrders(ctx context.Context) ([]*dmodel.Order, error) {
	return c.repo.Get_AllOrders(ctx)
}

func (c *Controller_Storefront) Get_ByOrderID(ctx context.Context, id string) (*dmodel.Order, error) {
	return c.repo.Get_ByOrderID(ctx, id)
}

// checking a requested line list against the current catalog, in the
// order submitted, stopping at the first problem; read-only
func (c *Controller_Storefront) Check_Inventory(ctx context.Context, lines []dmodel.RequestedLine) ([]dmodel.ResolvedLine, error) {
	if len(lines) == 0 {
		return nil, &internal.ValidationError{Message: "order must contain at least one item"}
	}

	resolved := make([]dmodel.ResolvedLine, 0, len(lines))
	needed := make(map[string]int, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, &internal.ValidationError{Message: "item quantity must be positive"}
		}

		product, err := c.repo.Get_ProductByID(ctx, line.ProductID)
		if errors.Is(err, internal.ErrProductNotFound) {
			return nil, &internal.ProductNotFoundError{ProductID: line.ProductID}
		}
		if err != nil {
			return nil, err
		}

		// duplicate lines for the same product count against the
		// same stock, so demand is accumulated per product
		needed[line.ProductID] += line.Quantity
		if product.Quantity < needed[line.ProductID] {
			return nil, &internal.StockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   product.Quantity,
			}
		}

		resolved = append(resolved, dmodel.ResolvedLine{
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    line.Quantity,
		})
	}

	return resolved, nil
}

// building the order record from already-checked lines; integer money
// math only, total is the exact sum of the line subtotals
func (c *Controller_Storefront) Assemble_Order(resolved []dmodel.ResolvedLine, customer dmodel.CustomerInfo) *dmodel.Order {
	items := make([]dmodel.OrderItem, 0, len(resolved))
	var totalAmount int64

	for _, line := range resolved {
		subtotal := line.UnitPrice * int64(line.Quantity)
		items = append(items, dmodel.OrderItem{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
			Subtotal:    subtotal,
		})
		totalAmount += subtotal
	}

	return &dmodel.Order{
		ID:           uuid.NewString(),
		CustomerName: customer.CustomerName,
		Phone:        customer.Phone,
		Address:      customer.Address,
		Items:        items,
		TotalAmount:  totalAmount,
		Status:       dmodel.OrderStatusPlaced,
		CreatedAt:    time.Now(),
	}
}

// the placement flow: validate fields, check the cart against the
// catalog, assemble the record, then hand it to the repository, whose
// Create_Order atomically takes the stock and persists the order.
// The check is advisory (it resolves names and prices and reports the
// first problem); the repository re-verifies under its own atomicity,
// so two concurrent placements can never oversell a product.
// A failed placement leaves both collections untouched.
func (c *Controller_Storefront) Place_Order(ctx context.Context, req *dmodel.PlaceOrderRequest) (*dmodel.Order, error) {
	if err := validateCustomer(req.CustomerInfo); err != nil {
		return nil, err
	}

	resolved, err := c.Check_Inventory(ctx, req.Products)
	if err != nil {
		return nil, err
	}

	order := c.Assemble_Order(resolved, req.CustomerInfo)

	if err := c.repo.Create_Order(ctx, order); err != nil {
		return nil, err
	}

	// the order is durable at this point; a publish failure is an
	// operational warning, not a placement failure
	if c.publisher != nil {
		if err := c.publisher.Publish_OrderPlaced(ctx, order); err != nil {
			log.Printf("Warning: order %s placed but event publish failed: %v", order.ID, err)
		}
	}

	return order, nil
}

// transitioning a placed order to Completed (fulfillment path); the
// repository checks the current status and flips it as one operation,
// so concurrent completes cannot both pass the Placed guard
func (c *Controller_Storefront) Complete_Order(ctx context.Context, id string) (*dmodel.Order, error) {
	err := c.repo.Transition_OrderStatus(ctx, id, dmodel.OrderStatusPlaced, dmodel.OrderStatusCompleted)
	if err != nil {
		return nil, err
	}

	return c.repo.Get_ByOrderID(ctx, id)
}

// -------------------------------------------------------------------

// customer fields are checked before any catalog lookup happens
func validateCustomer(customer dmodel.CustomerInfo) error {
	if strings.TrimSpace(customer.CustomerName) == "" {
		return &internal.ValidationError{Message: "customer name is required"}
	}
	if strings.TrimSpace(customer.Phone) == "" {
		return &internal.ValidationError{Message: "phone is required"}
	}
	if strings.TrimSpace(customer.Address) == "" {
		return &internal.ValidationError{Message: "address is required"}
	}
	return nil
}
