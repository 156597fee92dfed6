/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific formatting (money as strings, refs as IDs)
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Decimal values are serialized as strings ("148.19"), never as JSON
  numbers, so clients are not exposed to float rounding.

TYPES:
  State:
    StateDTO, WarehouseDTO, SupplierDTO, CustomerDTO

  Orders:
    SubOrderDTO, OrderListDTO

  Runs:
    RunAcceptedDTO, RunStatusDTO, LogsDTO, LogEntryDTO

  Manual:
    ManualAllocationRequest

  Summary:
    SummaryDTO

SEE ALSO:
  - handlers.go: Uses these types
  - allocation/types.go: The domain model being projected
*/
package api

import (
	"github.com/warp/allocation-engine/allocation"
)

// =============================================================================
// STATE TYPES
// =============================================================================

// StateDTO is the full resource-pool snapshot returned to clients.
type StateDTO struct {
	Warehouses []WarehouseDTO `json:"warehouses"`
	Suppliers  []SupplierDTO  `json:"suppliers"`
	Customers  []CustomerDTO  `json:"customers"`
}

// WarehouseDTO represents a warehouse pool in API responses.
type WarehouseDTO struct {
	ID    string `json:"id"`
	Stock int    `json:"stock"`
}

// SupplierDTO represents a supplier in API responses.
type SupplierDTO struct {
	ID    string `json:"id"`
	Stock int    `json:"stock"`
}

// CustomerDTO represents a customer credit account in API responses.
type CustomerDTO struct {
	ID              string `json:"id"`
	CreditLimit     string `json:"credit_limit"`
	UsedCredit      string `json:"used_credit"`
	RemainingCredit string `json:"remaining_credit"`
}

// =============================================================================
// ORDER TYPES
// =============================================================================

// SubOrderDTO represents a sub-order line in API responses.
type SubOrderDTO struct {
	ID                string `json:"id"`
	OrderID           string `json:"order_id"`
	ItemID            string `json:"item_id"`
	Warehouse         string `json:"warehouse"`
	Supplier          string `json:"supplier"`
	RequestQty        int    `json:"request_qty"`
	Tier              string `json:"tier"`
	CreatedOn         string `json:"created_on"`
	CustomerID        string `json:"customer_id"`
	Remark            string `json:"remark,omitempty"`
	Allocated         int    `json:"allocated"`
	Status            string `json:"status"`
	ResolvedWarehouse string `json:"resolved_warehouse,omitempty"`
	ResolvedSupplier  string `json:"resolved_supplier,omitempty"`
	UnitPrice         string `json:"unit_price"`
	TotalValue        string `json:"total_value"`
}

// OrderListDTO is a filtered, paginated page of sub-orders.
type OrderListDTO struct {
	Total     int           `json:"total"`
	Page      int           `json:"page"`
	PageSize  int           `json:"page_size"`
	SubOrders []SubOrderDTO `json:"sub_orders"`
}

// =============================================================================
// RUN TYPES
// =============================================================================

// RunAcceptedDTO acknowledges an accepted allocation run.
type RunAcceptedDTO struct {
	RunID string `json:"run_id"`
}

// RunStatusDTO reports the state of the allocation runner.
type RunStatusDTO struct {
	Running     bool   `json:"running"`
	RunID       string `json:"run_id,omitempty"`
	StartedAt   string `json:"started_at,omitempty"`
	CompletedAt string `json:"completed_at,omitempty"`
}

// LogEntryDTO represents one allocation log line.
type LogEntryDTO struct {
	ID         string `json:"id"`
	SubOrderID string `json:"sub_order_id"`
	Message    string `json:"message"`
	Severity   string `json:"severity"`
}

// LogsDTO wraps the last run's log.
type LogsDTO struct {
	RunID   string        `json:"run_id"`
	Entries []LogEntryDTO `json:"entries"`
}

// =============================================================================
// MANUAL ALLOCATION TYPES
// =============================================================================

// ManualAllocationRequest is the request to override one sub-order's quantity.
type ManualAllocationRequest struct {
	SubOrderID string `json:"sub_order_id"`
	Quantity   int    `json:"quantity"`
}

// =============================================================================
// SUMMARY TYPES
// =============================================================================

// SummaryDTO is an aggregate view of the current allocation state.
type SummaryDTO struct {
	TotalSubOrders      int            `json:"total_sub_orders"`
	StatusCounts        map[string]int `json:"status_counts"`
	TotalAllocatedUnits int            `json:"total_allocated_units"`
	TotalAllocatedValue string         `json:"total_allocated_value"`
	StockRemaining      int            `json:"stock_remaining"`
}

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toSubOrderDTO(sub allocation.SubOrder) SubOrderDTO {
	return SubOrderDTO{
		ID:                string(sub.ID),
		OrderID:           string(sub.OrderID),
		ItemID:            string(sub.ItemID),
		Warehouse:         sub.Warehouse.String(),
		Supplier:          sub.Supplier.String(),
		RequestQty:        sub.RequestQty,
		Tier:              string(sub.Tier),
		CreatedOn:         sub.CreatedOn,
		CustomerID:        string(sub.CustomerID),
		Remark:            sub.Remark,
		Allocated:         sub.Allocated,
		Status:            string(sub.Status),
		ResolvedWarehouse: string(sub.ResolvedWarehouse),
		ResolvedSupplier:  string(sub.ResolvedSupplier),
		UnitPrice:         sub.UnitPrice.StringFixed(2),
		TotalValue:        sub.TotalValue.StringFixed(2),
	}
}

func toStateDTO(state *allocation.State) StateDTO {
	dto := StateDTO{
		Warehouses: make([]WarehouseDTO, len(state.Warehouses)),
		Suppliers:  make([]SupplierDTO, len(state.Suppliers)),
		Customers:  make([]CustomerDTO, len(state.Customers)),
	}
	for i, w := range state.Warehouses {
		dto.Warehouses[i] = WarehouseDTO{ID: string(w.ID), Stock: w.Stock}
	}
	for i, s := range state.Suppliers {
		dto.Suppliers[i] = SupplierDTO{ID: string(s.ID), Stock: s.Stock}
	}
	for i, c := range state.Customers {
		dto.Customers[i] = CustomerDTO{
			ID:              string(c.ID),
			CreditLimit:     c.CreditLimit.StringFixed(2),
			UsedCredit:      c.UsedCredit.StringFixed(2),
			RemainingCredit: c.RemainingCredit().StringFixed(2),
		}
	}
	return dto
}

func toLogEntryDTOs(entries []allocation.LogEntry) []LogEntryDTO {
	dtos := make([]LogEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = LogEntryDTO{
			ID:         e.ID,
			SubOrderID: string(e.SubOrderID),
			Message:    e.Message,
			Severity:   string(e.Severity),
		}
	}
	return dtos
}
