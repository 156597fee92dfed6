/*
handlers.go - HTTP API handlers for the allocation system

PURPOSE:
  Exposes the allocation engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  State:
    GET    /api/state                  Resource pool snapshot
    GET    /api/summary                Aggregate allocation summary

  Orders:
    GET    /api/orders                 Filtered, paginated sub-orders
    GET    /api/orders/{id}            Single sub-order

  Allocations:
    POST   /api/allocations/run        Start async allocation run (202)
    GET    /api/allocations/status     Runner status
    POST   /api/allocations/manual     Manual quantity override
    GET    /api/logs                   Last run's log

  Admin:
    POST   /api/reset                  Rebuild state from the seed

ARCHITECTURE:
  Handler holds all dependencies:
  - Store: Snapshot and log persistence
  - Runner: Serializes async allocation runs
  - state: The in-memory working snapshot, guarded by mu

  The engine is pure: a run feeds the working snapshot through
  allocation.Run and swaps in the result. Persistence happens after
  the swap; the in-memory snapshot is authoritative while serving.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Sub-order not found
  - 409: Run already in flight
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - runner.go: Async run coordination
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/warp/allocation-engine/allocation"
	"github.com/warp/allocation-engine/seed"
	"github.com/warp/allocation-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  *sqlite.Store
	Runner *AllocationRunner

	// Seed configuration used by /api/reset and first boot.
	Seed       int64
	OrderCount int

	mu        sync.RWMutex
	state     allocation.State
	lastRunID string
	lastLog   []allocation.LogEntry
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{
		Store:      store,
		Runner:     NewAllocationRunner(),
		Seed:       seed.DefaultSeed,
		OrderCount: seed.DefaultOrderCount,
	}
}

// Bootstrap seeds the database on first start and loads the working
// snapshot and last run log into memory.
func (h *Handler) Bootstrap(ctx context.Context) error {
	has, err := h.Store.HasSnapshot(ctx)
	if err != nil {
		return err
	}
	if !has {
		log.Printf("[API] No snapshot found, seeding %d orders (seed %d)", h.OrderCount, h.Seed)
		if err := h.Store.SaveSnapshot(ctx, seed.NewWithCount(h.Seed, h.OrderCount)); err != nil {
			return err
		}
	}

	state, err := h.Store.LoadSnapshot(ctx)
	if err != nil {
		return err
	}
	runID, entries, err := h.Store.LoadRunLog(ctx)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.state = state
	h.lastRunID = runID
	h.lastLog = entries
	h.mu.Unlock()

	log.Printf("[API] Loaded snapshot with %d sub-orders", state.SubOrderCount())
	return nil
}

// =============================================================================
// STATE HANDLERS
// =============================================================================

// GetState returns the current resource pool snapshot.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	dto := toStateDTO(&h.state)
	h.mu.RUnlock()

	writeJSON(w, http.StatusOK, dto)
}

// GetSummary returns aggregate counts and totals for the current state.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	summary := SummaryDTO{
		StatusCounts: map[string]int{},
	}
	totalValue := decimal.Zero
	for _, o := range h.state.Orders {
		for _, sub := range o.SubOrders {
			summary.TotalSubOrders++
			summary.StatusCounts[string(sub.Status)]++
			summary.TotalAllocatedUnits += sub.Allocated
			totalValue = totalValue.Add(sub.TotalValue)
		}
	}
	summary.TotalAllocatedValue = totalValue.StringFixed(2)
	for _, wh := range h.state.Warehouses {
		summary.StockRemaining += wh.Stock
	}

	writeJSON(w, http.StatusOK, summary)
}

// =============================================================================
// ORDER HANDLERS
// =============================================================================

// ListSubOrders returns a filtered, paginated page of sub-orders.
//
// Query parameters:
//
//	search     Case-insensitive substring over sub-order, order, item,
//	           and customer IDs
//	status     Exact status match
//	tier       Exact urgency tier match
//	warehouse  Matches the requested or resolved warehouse
//	page       1-based page number (default 1)
//	page_size  Rows per page (default 50, max 500)
func (h *Handler) ListSubOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.ToLower(q.Get("search"))
	status := q.Get("status")
	tier := q.Get("tier")
	warehouse := q.Get("warehouse")

	page := queryInt(q.Get("page"), 1)
	if page < 1 {
		page = 1
	}
	pageSize := queryInt(q.Get("page_size"), 50)
	if pageSize < 1 {
		pageSize = 50
	}
	if pageSize > 500 {
		pageSize = 500
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	var matched []SubOrderDTO
	for _, o := range h.state.Orders {
		for _, sub := range o.SubOrders {
			if !matchSubOrder(sub, search, status, tier, warehouse) {
				continue
			}
			matched = append(matched, toSubOrderDTO(sub))
		}
	}

	total := len(matched)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	writeJSON(w, http.StatusOK, OrderListDTO{
		Total:     total,
		Page:      page,
		PageSize:  pageSize,
		SubOrders: matched[start:end],
	})
}

// GetSubOrder returns a single sub-order by ID.
func (h *Handler) GetSubOrder(w http.ResponseWriter, r *http.Request) {
	id := allocation.SubOrderID(chi.URLParam(r, "id"))

	h.mu.RLock()
	defer h.mu.RUnlock()

	sub := h.state.FindSubOrder(id)
	if sub == nil {
		writeError(w, http.StatusNotFound, "Sub-order not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toSubOrderDTO(*sub))
}

func matchSubOrder(sub allocation.SubOrder, search, status, tier, warehouse string) bool {
	if status != "" && string(sub.Status) != status {
		return false
	}
	if tier != "" && string(sub.Tier) != tier {
		return false
	}
	if warehouse != "" &&
		sub.Warehouse.String() != warehouse &&
		string(sub.ResolvedWarehouse) != warehouse {
		return false
	}
	if search != "" {
		haystack := strings.ToLower(strings.Join([]string{
			string(sub.ID), string(sub.OrderID), string(sub.ItemID), string(sub.CustomerID),
		}, " "))
		if !strings.Contains(haystack, search) {
			return false
		}
	}
	return true
}

func queryInt(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// =============================================================================
// ALLOCATION RUN HANDLERS
// =============================================================================

// RunAllocations starts an asynchronous allocation run.
// Returns 202 with the run ID, or 409 if a run is already in flight.
func (h *Handler) RunAllocations(w http.ResponseWriter, r *http.Request) {
	runID, ok := h.Runner.Start(h.executeRun)
	if !ok {
		writeError(w, http.StatusConflict, "An allocation run is already in progress", nil)
		return
	}
	writeJSON(w, http.StatusAccepted, RunAcceptedDTO{RunID: runID})
}

// GetRunStatus reports whether a run is in flight.
func (h *Handler) GetRunStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Runner.Status())
}

// executeRun feeds the working snapshot through the engine, swaps in
// the result, and persists both the snapshot and the run log.
func (h *Handler) executeRun(runID string) {
	h.mu.Lock()
	result, entries := allocation.Run(h.state)
	h.state = result
	h.lastRunID = runID
	h.lastLog = entries
	h.mu.Unlock()

	ctx := context.Background()
	if err := h.Store.SaveSnapshot(ctx, result); err != nil {
		log.Printf("[API] Failed to persist snapshot for run %s: %v", runID, err)
	}
	if err := h.Store.SaveRunLog(ctx, runID, entries); err != nil {
		log.Printf("[API] Failed to persist log for run %s: %v", runID, err)
	}
}

// GetLogs returns the last run's log entries.
func (h *Handler) GetLogs(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	dto := LogsDTO{
		RunID:   h.lastRunID,
		Entries: toLogEntryDTOs(h.lastLog),
	}
	h.mu.RUnlock()

	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// MANUAL ALLOCATION HANDLERS
// =============================================================================

// ManualAllocate overrides one sub-order's allocated quantity after
// validating stock and credit against the current pools.
func (h *Handler) ManualAllocate(w http.ResponseWriter, r *http.Request) {
	var req ManualAllocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.SubOrderID == "" {
		writeError(w, http.StatusBadRequest, "sub_order_id is required", nil)
		return
	}

	if h.Runner.Status().Running {
		writeError(w, http.StatusConflict, "An allocation run is in progress", nil)
		return
	}

	h.mu.Lock()
	err := allocation.ManualAllocate(&h.state, allocation.SubOrderID(req.SubOrderID), req.Quantity)
	var dto SubOrderDTO
	var snapshot allocation.State
	if err == nil {
		dto = toSubOrderDTO(*h.state.FindSubOrder(allocation.SubOrderID(req.SubOrderID)))
		snapshot = h.state.Clone()
	}
	h.mu.Unlock()

	switch {
	case err == nil:
	case allocation.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Sub-order not found", err)
		return
	case allocation.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Manual allocation rejected", err)
		return
	default:
		writeError(w, http.StatusInternalServerError, "Manual allocation failed", err)
		return
	}

	if err := h.Store.SaveSnapshot(r.Context(), snapshot); err != nil {
		log.Printf("[API] Failed to persist snapshot after manual allocation: %v", err)
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// ResetState rebuilds the working snapshot from the seed. Running the
// reset twice yields the identical state.
func (h *Handler) ResetState(w http.ResponseWriter, r *http.Request) {
	if h.Runner.Status().Running {
		writeError(w, http.StatusConflict, "An allocation run is in progress", nil)
		return
	}

	fresh := seed.NewWithCount(h.Seed, h.OrderCount)

	h.mu.Lock()
	h.state = fresh
	h.lastRunID = ""
	h.lastLog = nil
	h.mu.Unlock()

	ctx := r.Context()
	if err := h.Store.SaveSnapshot(ctx, fresh); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to persist reset snapshot", err)
		return
	}
	if err := h.Store.SaveRunLog(ctx, "", nil); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clear run log", err)
		return
	}

	log.Printf("[API] Reset state from seed %d (%d sub-orders)", h.Seed, fresh.SubOrderCount())
	writeJSON(w, http.StatusOK, map[string]any{
		"sub_orders": fresh.SubOrderCount(),
		"seed":       h.Seed,
	})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
