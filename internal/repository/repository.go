package storefront_repository

import (
	"context"
	"database/sql"
	"time"

	internal "storefront-service/internal"
	dmodel "storefront-service/pkg"
)

// -------------------------------------------------------------------
// dtypes
// -------------------------------------------------------------------

// DataRepo_Storefront
// durable catalog and order collections in Postgres
type DataRepo_Storefront struct {
	db      *sql.DB
	timeout time.Duration
}

func New(db *sql.DB, timeout time.Duration) *DataRepo_Storefront {
	return &DataRepo_Storefront{
		db:      db,
		timeout: timeout,
	}
}

// creating the tables if they do not exist yet
func (dr *DataRepo_Storefront) Init_Schema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, dr.timeout)
	defer cancel()

	schema := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id       TEXT PRIMARY KEY,
			name     TEXT NOT NULL,
			price    BIGINT NOT NULL CHECK (price >= 0),
			category TEXT NOT NULL DEFAULT '',
			img      TEXT NOT NULL DEFAULT '',
			quantity INTEGER NOT NULL CHECK (quantity >= 0)
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id            TEXT PRIMARY KEY,
			customer_name TEXT NOT NULL,
			phone         TEXT NOT NULL,
			address       TEXT NOT NULL,
			total_amount  BIGINT NOT NULL,
			status        TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			order_id     TEXT NOT NULL REFERENCES orders(id),
			product_id   TEXT NOT NULL,
			product_name TEXT NOT NULL,
			unit_price   BIGINT NOT NULL,
			quantity     INTEGER NOT NULL,
			subtotal     BIGINT NOT NULL
		)`,
	}

	for _, statement := range schema {
		if _, err := dr.db.ExecContext(ctx, statement); err != nil {
			return err
		}
	}

	return nil
}

// -------------------------------------------------------------------

// -------------------------------------------------------------------
// products
// -------------------------------------------------------------------

// retrieving all products
func (dr *DataRepo_Storefront) Get_AllProducts(ctx context.Context) ([]*dmodel.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, dr.timeout)
	defer cancel()

	query := `SELECT id, name, price, category, img, quantity FROM products ORDER BY name`
	rows, err := dr.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*dmodel.Product
	for rows.Next() {
		var p dmodel.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Category, &p.Img, &p.Quantity); err != nil {
			return nil, err
		}
		products = append(products, &p)
	}

	return products, rows.Err()
}

// retrieving product by ID
func (dr *DataRepo_Storefront) Get_ProductByID(ctx context.Context, id string) (*dmodel.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, dr.timeout)
	defer cancel()

	query := `SELECT id, name, price, category, img, quantity FROM products WHERE id = $1`
	var p dmodel.Product

	err := dr.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.Price, &p.Category, &p.Img, &p.Quantity)
	if err == sql.ErrNoRows {
		return nil, internal.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// overwriting the available quantity of a product (admin path);
// pure replace, not a delta
func (dr *DataRepo_Storefront) Set_ProductQuantity(ctx context.Context, id string, quantity int) (*dmodel.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, dr.timeout)
	defer cancel()

	query := `UPDATE products SET quantity = $1 WHERE id = $2
		RETURNING id, name, price, category, img, quantity`
	var p dmodel.Product

	err := dr.db.QueryRowContext(ctx, query, quantity, id).Scan(&p.ID, &p.Name, &p.Price, &p.Category, &p.Img, &p.Quantity)
	if err == sql.ErrNoRows {
		return nil, internal.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// -------------------------------------------------------------------

// -------------------------------------------------------------------
// orders
// -------------------------------------------------------------------

// retrieving all orders, newest first
func (dr *DataRepo_Storefront) Get_AllOrders(ctx context.Context) ([]*dmodel.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, dr.timeout)
	defer cancel()

	query := `SELECT id, customer_name, phone, address, total_amount, status, created_at
		FROM orders ORDER BY created_at DESC`
	rows, err := dr.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*dmodel.Order
	for rows.Next() {
		var o dmodel.Order
		if err := rows.Scan(&o.ID, &o.CustomerName, &o.Phone, &o.Address, &o.TotalAmount, &o.Status, &o.CreatedAt); err != nil {
			return nil, err
		}

		items, err := dr.getOrderItems(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		o.Items = items

		orders = append(orders, &o)
	}

	return orders, rows.Err()
}

// retrieving order by ID
func (dr *DataRepo_Storefront) Get_ByOrderID(ctx context.Context, id string) (*dmodel.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, dr.timeout)
	defer cancel()

	query := `SELECT id, customer_name, phone, address, total_amount, status, created_at
		FROM orders WHERE id = $1`
	var o dmodel.Order

	err := dr.db.QueryRowContext(ctx, query, id).Scan(&o.ID, &o.CustomerName, &o.Phone, &o.Address, &o.TotalAmount, &o.Status, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, internal.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := dr.getOrderItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return &o, nil
}

func (dr *DataRepo_Storefront) getOrderItems(ctx context.Context, orderID string) ([]dmodel.OrderItem, error) {
	query := `SELECT product_id, product_name, unit_price, quantity, subtotal
		FROM order_items WHERE order_id = $1`
	rows, err := dr.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []dmodel.OrderItem
	for rows.Next() {
		var item dmodel.OrderItem
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.UnitPrice, &item.Quantity, &item.Subtotal); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// -------------------------------------------------------------------

// persisting an order while taking its stock; one transaction covers
// the conditional decrement of every line and the order insert, so a
// placement succeeds only if all of its stock was actually taken
func (dr *DataRepo_Storefront) Create_Order(ctx context.Context, order *dmodel.Order) error {
	ctx, cancel := context.WithTimeout(ctx, dr.timeout)
	defer cancel()

	tx, err := dr.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	decrementQuery := `UPDATE products SET quantity = quantity - $1 WHERE id = $2 AND quantity >= $1`
	for _, item := range order.Items {
		result, err := tx.ExecContext(ctx, decrementQuery, item.Quantity, item.ProductID)
		if err != nil {
			return err
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			// zero rows means the product is gone or the stock ran out;
			// the follow-up read inside the tx tells which
			var name string
			var available int
			err = tx.QueryRowContext(ctx, `SELECT name, quantity FROM products WHERE id = $1`, item.ProductID).Scan(&name, &available)
			if err == sql.ErrNoRows {
				return &internal.ProductNotFoundError{ProductID: item.ProductID}
			}
			if err != nil {
				return err
			}
			return &internal.StockError{
				ProductID:   item.ProductID,
				ProductName: name,
				Available:   available,
			}
		}
	}

	orderQuery := `INSERT INTO orders (id, customer_name, phone, address, total_amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = tx.ExecContext(ctx, orderQuery, order.ID, order.CustomerName, order.Phone, order.Address, order.TotalAmount, order.Status, order.CreatedAt)
	if err != nil {
		return err
	}

	itemQuery := `INSERT INTO order_items (order_id, product_id, product_name, unit_price, quantity, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6)`
	for _, item := range order.Items {
		_, err = tx.ExecContext(ctx, itemQuery, order.ID, item.ProductID, item.ProductName, item.UnitPrice, item.Quantity, item.Subtotal)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// moving an order from one status to another; the UPDATE is
// conditional on the current status, so only one of two concurrent
// transitions can win
func (dr *DataRepo_Storefront) Transition_OrderStatus(ctx context.Context, id string, from, to dmodel.OrderStatus) error {
	ctx, cancel := context.WithTimeout(ctx, dr.timeout)
	defer cancel()

	query := `UPDATE orders SET status = $1 WHERE id = $2 AND status = $3`
	result, err := dr.db.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		// zero rows means the order is gone or already past the
		// expected status
		var current string
		err = dr.db.QueryRowContext(ctx, `SELECT status FROM orders WHERE id = $1`, id).Scan(&current)
		if err == sql.ErrNoRows {
			return internal.ErrOrderNotFound
		}
		if err != nil {
			return err
		}
		return internal.ErrOrderNotPlaced
	}

	return nil
}

// -------------------------------------------------------------------
