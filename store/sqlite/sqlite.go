/*
Package sqlite provides SQLite-backed persistence for the allocation system.

PURPOSE:
  Persists the pristine seed snapshot (pools, price book, order backlog),
  the current working snapshot, and the last run's log. The engine itself
  is a pure in-memory transform; this package only stores its inputs and
  outputs. It contains no allocation logic.

KEY TABLES:
  warehouses, suppliers, customers:  Resource pools
  prices:                            Price book entries (tiers as JSON)
  sub_orders:                        Backlog with allocation results
  allocation_logs:                   Last run's log entries only

SNAPSHOT SEMANTICS:
  SaveSnapshot replaces the whole stored snapshot atomically inside one
  database transaction; a crash mid-save never leaves a half-written
  snapshot. Logs are also replace-on-write: only the last run is kept,
  matching the engine's no-audit-trail contract.

MONEY:
  Decimal values are stored as TEXT and re-parsed on load so two-decimal
  exactness survives the round trip. Never store money as REAL.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging): multiple readers do
  not block, one writer at a time, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/allocation.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - allocation/types.go: The State being persisted
  - api/handlers.go:     The caller that saves/loads around runs
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/allocation-engine/allocation"
)

// Store persists allocation snapshots and run logs in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS warehouses (
		warehouse_id TEXT PRIMARY KEY,
		stock INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS suppliers (
		supplier_id TEXT PRIMARY KEY,
		stock INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS customers (
		customer_id TEXT PRIMARY KEY,
		credit_limit TEXT NOT NULL,
		used_credit TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS prices (
		item_id TEXT NOT NULL,
		supplier_id TEXT NOT NULL,
		base_price TEXT NOT NULL,
		tiers_json TEXT NOT NULL,
		PRIMARY KEY (item_id, supplier_id)
	);

	CREATE TABLE IF NOT EXISTS sub_orders (
		sub_order_id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL,
		item_id TEXT NOT NULL,
		warehouse_id TEXT NOT NULL,
		supplier_id TEXT NOT NULL,
		request_qty INTEGER NOT NULL,
		tier TEXT NOT NULL,
		created_on TEXT NOT NULL,
		customer_id TEXT NOT NULL,
		remark TEXT NOT NULL DEFAULT '',
		allocated INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		resolved_warehouse TEXT NOT NULL DEFAULT '',
		resolved_supplier TEXT NOT NULL DEFAULT '',
		unit_price TEXT NOT NULL DEFAULT '0',
		total_value TEXT NOT NULL DEFAULT '0'
	);

	CREATE INDEX IF NOT EXISTS idx_sub_orders_order
		ON sub_orders(order_id);
	CREATE INDEX IF NOT EXISTS idx_sub_orders_priority
		ON sub_orders(tier, created_on);

	CREATE TABLE IF NOT EXISTS allocation_logs (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		sub_order_id TEXT NOT NULL,
		message TEXT NOT NULL,
		severity TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_allocation_logs_sub_order
		ON allocation_logs(sub_order_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SNAPSHOT PERSISTENCE
// =============================================================================

// SaveSnapshot atomically replaces the stored snapshot with the given state.
func (s *Store) SaveSnapshot(ctx context.Context, state allocation.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"warehouses", "suppliers", "customers", "prices", "sub_orders"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}

	for _, w := range state.Warehouses {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO warehouses (warehouse_id, stock) VALUES (?, ?)`,
			string(w.ID), w.Stock); err != nil {
			return err
		}
	}
	for _, sp := range state.Suppliers {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO suppliers (supplier_id, stock) VALUES (?, ?)`,
			string(sp.ID), sp.Stock); err != nil {
			return err
		}
	}
	for _, c := range state.Customers {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO customers (customer_id, credit_limit, used_credit) VALUES (?, ?, ?)`,
			string(c.ID), c.CreditLimit.String(), c.UsedCredit.String()); err != nil {
			return err
		}
	}
	for _, e := range state.Prices.Entries() {
		tiers := make(map[string]string, len(e.Tiers))
		for name, pct := range e.Tiers {
			tiers[string(name)] = pct.String()
		}
		tiersJSON, err := json.Marshal(tiers)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO prices (item_id, supplier_id, base_price, tiers_json) VALUES (?, ?, ?, ?)`,
			string(e.ItemID), string(e.SupplierID), e.BasePrice.String(), string(tiersJSON)); err != nil {
			return err
		}
	}
	for _, o := range state.Orders {
		for _, sub := range o.SubOrders {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO sub_orders (
					sub_order_id, order_id, item_id, warehouse_id, supplier_id,
					request_qty, tier, created_on, customer_id, remark,
					allocated, status, resolved_warehouse, resolved_supplier,
					unit_price, total_value
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				string(sub.ID), string(o.ID), string(sub.ItemID),
				sub.Warehouse.String(), sub.Supplier.String(),
				sub.RequestQty, string(sub.Tier), sub.CreatedOn,
				string(sub.CustomerID), sub.Remark,
				sub.Allocated, string(sub.Status),
				string(sub.ResolvedWarehouse), string(sub.ResolvedSupplier),
				sub.UnitPrice.String(), sub.TotalValue.String()); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// LoadSnapshot reads the full stored snapshot.
func (s *Store) LoadSnapshot(ctx context.Context) (allocation.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var state allocation.State

	rows, err := s.db.QueryContext(ctx,
		`SELECT warehouse_id, stock FROM warehouses ORDER BY warehouse_id`)
	if err != nil {
		return state, err
	}
	defer rows.Close()
	for rows.Next() {
		var w allocation.Warehouse
		var id string
		if err := rows.Scan(&id, &w.Stock); err != nil {
			return state, err
		}
		w.ID = allocation.WarehouseID(id)
		state.Warehouses = append(state.Warehouses, w)
	}
	if err := rows.Err(); err != nil {
		return state, err
	}

	if state.Suppliers, err = s.loadSuppliers(ctx); err != nil {
		return state, err
	}
	if state.Customers, err = s.loadCustomers(ctx); err != nil {
		return state, err
	}
	if state.Prices, err = s.loadPrices(ctx); err != nil {
		return state, err
	}
	if state.Orders, err = s.loadOrders(ctx); err != nil {
		return state, err
	}
	return state, nil
}

// HasSnapshot reports whether a snapshot has been stored.
func (s *Store) HasSnapshot(ctx context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM warehouses`).Scan(&count)
	return count > 0, err
}

func (s *Store) loadSuppliers(ctx context.Context) ([]allocation.Supplier, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT supplier_id, stock FROM suppliers ORDER BY supplier_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []allocation.Supplier
	for rows.Next() {
		var sp allocation.Supplier
		var id string
		if err := rows.Scan(&id, &sp.Stock); err != nil {
			return nil, err
		}
		sp.ID = allocation.SupplierID(id)
		out = append(out, sp)
	}
	return out, rows.Err()
}

func (s *Store) loadCustomers(ctx context.Context) ([]allocation.Customer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT customer_id, credit_limit, used_credit FROM customers ORDER BY customer_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []allocation.Customer
	for rows.Next() {
		var id, limit, used string
		if err := rows.Scan(&id, &limit, &used); err != nil {
			return nil, err
		}
		c := allocation.Customer{ID: allocation.CustomerID(id)}
		if c.CreditLimit, err = decimal.NewFromString(limit); err != nil {
			return nil, fmt.Errorf("customer %s: bad credit limit %q: %w", id, limit, err)
		}
		if c.UsedCredit, err = decimal.NewFromString(used); err != nil {
			return nil, fmt.Errorf("customer %s: bad used credit %q: %w", id, used, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) loadPrices(ctx context.Context) (allocation.PriceBook, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT item_id, supplier_id, base_price, tiers_json FROM prices`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	book := allocation.NewPriceBook()
	for rows.Next() {
		var item, supplier, base, tiersJSON string
		if err := rows.Scan(&item, &supplier, &base, &tiersJSON); err != nil {
			return nil, err
		}

		entry := allocation.PriceEntry{
			ItemID:     allocation.ItemID(item),
			SupplierID: allocation.SupplierID(supplier),
			Tiers:      make(map[allocation.PriceTier]decimal.Decimal),
		}
		if entry.BasePrice, err = decimal.NewFromString(base); err != nil {
			return nil, fmt.Errorf("price %s/%s: bad base price %q: %w", item, supplier, base, err)
		}

		var tiers map[string]string
		if err := json.Unmarshal([]byte(tiersJSON), &tiers); err != nil {
			return nil, fmt.Errorf("price %s/%s: bad tiers: %w", item, supplier, err)
		}
		for name, pct := range tiers {
			d, err := decimal.NewFromString(pct)
			if err != nil {
				return nil, fmt.Errorf("price %s/%s tier %s: %w", item, supplier, name, err)
			}
			entry.Tiers[allocation.PriceTier(name)] = d
		}
		book.Put(entry)
	}
	return book, rows.Err()
}

func (s *Store) loadOrders(ctx context.Context) ([]allocation.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sub_order_id, order_id, item_id, warehouse_id, supplier_id,
		       request_qty, tier, created_on, customer_id, remark,
		       allocated, status, resolved_warehouse, resolved_supplier,
		       unit_price, total_value
		FROM sub_orders ORDER BY order_id, sub_order_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []allocation.Order
	index := make(map[allocation.OrderID]int)
	for rows.Next() {
		sub, orderID, err := scanSubOrder(rows)
		if err != nil {
			return nil, err
		}

		i, ok := index[orderID]
		if !ok {
			i = len(orders)
			index[orderID] = i
			orders = append(orders, allocation.Order{ID: orderID})
		}
		orders[i].SubOrders = append(orders[i].SubOrders, sub)
	}
	return orders, rows.Err()
}

func scanSubOrder(rows *sql.Rows) (allocation.SubOrder, allocation.OrderID, error) {
	var sub allocation.SubOrder
	var (
		id, orderID, item, warehouse, supplier string
		tier, customer, status                 string
		resolvedWarehouse, resolvedSupplier    string
		unitPrice, totalValue                  string
	)
	if err := rows.Scan(&id, &orderID, &item, &warehouse, &supplier,
		&sub.RequestQty, &tier, &sub.CreatedOn, &customer, &sub.Remark,
		&sub.Allocated, &status, &resolvedWarehouse, &resolvedSupplier,
		&unitPrice, &totalValue); err != nil {
		return sub, "", err
	}

	sub.ID = allocation.SubOrderID(id)
	sub.OrderID = allocation.OrderID(orderID)
	sub.ItemID = allocation.ItemID(item)
	sub.Warehouse = allocation.ParseWarehouseRef(allocation.WarehouseID(warehouse))
	sub.Supplier = allocation.ParseSupplierRef(allocation.SupplierID(supplier))
	sub.Tier = allocation.UrgencyTier(tier)
	sub.CustomerID = allocation.CustomerID(customer)
	sub.Status = allocation.Status(status)
	sub.ResolvedWarehouse = allocation.WarehouseID(resolvedWarehouse)
	sub.ResolvedSupplier = allocation.SupplierID(resolvedSupplier)

	var err error
	if sub.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
		return sub, "", fmt.Errorf("sub-order %s: bad unit price %q: %w", id, unitPrice, err)
	}
	if sub.TotalValue, err = decimal.NewFromString(totalValue); err != nil {
		return sub, "", fmt.Errorf("sub-order %s: bad total value %q: %w", id, totalValue, err)
	}
	return sub, sub.OrderID, nil
}

// =============================================================================
// RUN LOG PERSISTENCE - Last run only
// =============================================================================

// SaveRunLog replaces the stored log with the given run's entries.
func (s *Store) SaveRunLog(ctx context.Context, runID string, entries []allocation.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM allocation_logs`); err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO allocation_logs (id, run_id, sub_order_id, message, severity, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			e.ID, runID, string(e.SubOrderID), e.Message, string(e.Severity), now); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadRunLog returns the last run's ID and log entries, in insertion order.
func (s *Store) LoadRunLog(ctx context.Context) (string, []allocation.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, sub_order_id, message, severity
		FROM allocation_logs ORDER BY rowid`)
	if err != nil {
		return "", nil, err
	}
	defer rows.Close()

	var runID string
	var entries []allocation.LogEntry
	for rows.Next() {
		var e allocation.LogEntry
		var subOrderID, severity string
		if err := rows.Scan(&e.ID, &runID, &subOrderID, &e.Message, &severity); err != nil {
			return "", nil, err
		}
		e.SubOrderID = allocation.SubOrderID(subOrderID)
		e.Severity = allocation.LogSeverity(severity)
		entries = append(entries, e)
	}
	return runID, entries, rows.Err()
}
