package allocation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/allocation-engine/allocation"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestLedger() (*allocation.Ledger, *allocation.State) {
	st := &allocation.State{
		Warehouses: []allocation.Warehouse{
			{ID: "WH-001", Stock: 100},
			{ID: "WH-002", Stock: 0},
		},
		Customers: []allocation.Customer{
			{ID: "CT-0001", CreditLimit: dec("1000"), UsedCredit: dec("250")},
		},
	}
	return allocation.NewLedger(st), st
}

// =============================================================================
// STOCK POOL
// =============================================================================

func TestLedger_DebitStock(t *testing.T) {
	ledger, st := newTestLedger()

	require.NoError(t, ledger.DebitStock("WH-001", 30))
	assert.Equal(t, 70, ledger.Stock("WH-001"))
	assert.Equal(t, 70, st.Warehouses[0].Stock, "debit must land in the state's backing array")
}

func TestLedger_DebitStock_NeverGoesNegative(t *testing.T) {
	ledger, st := newTestLedger()

	err := ledger.DebitStock("WH-001", 101)
	require.ErrorIs(t, err, allocation.ErrInsufficientStock)
	assert.Equal(t, 100, st.Warehouses[0].Stock, "failed debit must not mutate")
}

func TestLedger_DebitStock_RejectsNegativeQuantity(t *testing.T) {
	ledger, _ := newTestLedger()
	assert.Error(t, ledger.DebitStock("WH-001", -1))
}

func TestLedger_UnknownWarehouseReadsEmpty(t *testing.T) {
	// Unknown warehouses (including an unresolved wildcard) fail closed.
	ledger, _ := newTestLedger()

	assert.Equal(t, 0, ledger.Stock("WH-GHOST"))
	assert.Equal(t, 0, ledger.Stock(allocation.WildcardWarehouseID))
	assert.Error(t, ledger.DebitStock("WH-GHOST", 1))
}

func TestLedger_ReleaseAndAdjustStock(t *testing.T) {
	ledger, _ := newTestLedger()

	require.NoError(t, ledger.ReleaseStock("WH-002", 25))
	assert.Equal(t, 25, ledger.Stock("WH-002"))

	// AdjustStock: positive debits, negative releases.
	require.NoError(t, ledger.AdjustStock("WH-002", 10))
	assert.Equal(t, 15, ledger.Stock("WH-002"))
	require.NoError(t, ledger.AdjustStock("WH-002", -5))
	assert.Equal(t, 20, ledger.Stock("WH-002"))
}

// =============================================================================
// CREDIT POOL
// =============================================================================

func TestLedger_ChargeCredit(t *testing.T) {
	ledger, st := newTestLedger()

	require.NoError(t, ledger.ChargeCredit("CT-0001", dec("444.56")))
	assert.Equal(t, "694.56", st.Customers[0].UsedCredit.StringFixed(2))
	assert.Equal(t, "305.44", ledger.RemainingCredit("CT-0001").StringFixed(2))
}

func TestLedger_ChargeCredit_GuardsLimit(t *testing.T) {
	ledger, st := newTestLedger()

	err := ledger.ChargeCredit("CT-0001", dec("750.01"))
	require.ErrorIs(t, err, allocation.ErrCreditLimitExceeded)
	assert.Equal(t, "250.00", st.Customers[0].UsedCredit.StringFixed(2), "failed charge must not mutate")
}

func TestLedger_ChargeCredit_RoundsHalfToEven(t *testing.T) {
	ledger, st := newTestLedger()

	// 250 + 88.885 = 338.885, which rounds half-to-even to 338.88.
	require.NoError(t, ledger.ChargeCredit("CT-0001", dec("88.885")))
	assert.Equal(t, "338.88", st.Customers[0].UsedCredit.StringFixed(2))
}

func TestLedger_RechargeCredit_ReplacesOldValue(t *testing.T) {
	ledger, st := newTestLedger()

	// Replace a 250.00 charge with 100.00: used credit drops to 100.00.
	require.NoError(t, ledger.RechargeCredit("CT-0001", dec("250"), dec("100")))
	assert.Equal(t, "100.00", st.Customers[0].UsedCredit.StringFixed(2))
}

func TestLedger_RechargeCredit_NeverGoesNegative(t *testing.T) {
	ledger, st := newTestLedger()

	// Releasing more than was ever charged clamps at zero.
	require.NoError(t, ledger.RechargeCredit("CT-0001", dec("900"), dec("0")))
	assert.True(t, st.Customers[0].UsedCredit.IsZero())
}

func TestLedger_UnknownCustomerFailsClosed(t *testing.T) {
	ledger, _ := newTestLedger()

	assert.True(t, ledger.RemainingCredit("CT-GHOST").IsZero())

	err := ledger.ChargeCredit("CT-GHOST", dec("1"))
	require.ErrorIs(t, err, allocation.ErrCustomerNotFound)
	assert.True(t, allocation.IsNotFound(err))
}
