package dmodel

import "time"

type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "Placed"
	OrderStatusCompleted OrderStatus = "Completed"
)

// Product
// catalog entry; Price is in minor currency units, Quantity never negative
type Product struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Category string `json:"category"`
	Img      string `json:"img"`
	Quantity int    `json:"quantity"`
}

// RequestedLine
// one (product, quantity) pairing as submitted by the storefront cart
type RequestedLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// ResolvedLine
// a requested line after the inventory check, carrying the catalog
// name and price in effect at check time
type ResolvedLine struct {
	ProductID   string
	ProductName string
	UnitPrice   int64
	Quantity    int
}

// OrderItem
// denormalized snapshot kept inside the order; later product edits
// must not change it
type OrderItem struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	UnitPrice   int64  `json:"unitPrice"`
	Quantity    int    `json:"quantity"`
	Subtotal    int64  `json:"subtotal"`
}

type Order struct {
	ID           string      `json:"id"`
	CustomerName string      `json:"customerName"`
	Phone        string      `json:"phone"`
	Address      string      `json:"address"`
	Items        []OrderItem `json:"items"`
	TotalAmount  int64       `json:"totalAmount"`
	Status       OrderStatus `json:"status"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// CustomerInfo
// delivery contact fields of a placement request
type CustomerInfo struct {
	CustomerName string `json:"customerName"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
}

type PlaceOrderRequest struct {
	CustomerInfo
	Products []RequestedLine `json:"products"`
}
