package cashflow

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fwtesting "github.com/aristath/fundwatch/internal/testing"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, cleanup := fwtesting.NewTestDB(t, "ledger")
	t.Cleanup(cleanup)
	return NewRepository(db.Conn(), zerolog.Nop())
}

func TestAddFlowValidation(t *testing.T) {
	repo := newTestRepo(t)

	assert.Error(t, repo.AddFlow("", "2025-08-29", FlowInflow, 1000, ""))
	assert.Error(t, repo.AddFlow("成长一号", "2025-08-29", "transfer", 1000, ""))
	assert.Error(t, repo.AddFlow("成长一号", "2025-08-29", FlowInflow, 0, ""))
	assert.Error(t, repo.AddFlow("成长一号", "2025-08-29", FlowInflow, -500, ""))
	assert.Error(t, repo.AddFlow("成长一号", "29/08/2025", FlowInflow, 1000, ""))
}

func TestAddFlowReplacesSameKey(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.AddFlow("成长一号", "2025-08-29", FlowInflow, 40000, ""))
	require.NoError(t, repo.AddFlow("成长一号", "2025-08-29", FlowInflow, 50000, "corrected"))

	// Second write replaced the first: one row, latest amount
	net, err := repo.NetFlow("成长一号", "2025-08-29")
	require.NoError(t, err)
	assert.InDelta(t, 50000, net, 0.001)

	flows, err := repo.FlowsByUnit("成长一号")
	require.NoError(t, err)
	require.Len(t, flows, 1)
	assert.Equal(t, "corrected", flows[0].Note)
}

func TestNetFlow(t *testing.T) {
	repo := newTestRepo(t)

	// Nothing recorded: zero, no error
	net, err := repo.NetFlow("成长一号", "2025-08-29")
	require.NoError(t, err)
	assert.Zero(t, net)

	require.NoError(t, repo.AddFlow("成长一号", "2025-08-29", FlowInflow, 40000, ""))
	require.NoError(t, repo.AddFlow("成长一号", "2025-08-29", FlowOutflow, 15000, ""))

	net, err = repo.NetFlow("成长一号", "2025-08-29")
	require.NoError(t, err)
	assert.InDelta(t, 25000, net, 0.001)

	// Other units and dates do not leak in
	require.NoError(t, repo.AddFlow("稳健二号", "2025-08-29", FlowInflow, 99999, ""))
	require.NoError(t, repo.AddFlow("成长一号", "2025-08-28", FlowInflow, 77777, ""))
	net, err = repo.NetFlow("成长一号", "2025-08-29")
	require.NoError(t, err)
	assert.InDelta(t, 25000, net, 0.001)
}

func TestRemoveFlowRequiresAmountMatch(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.AddFlow("成长一号", "2025-08-29", FlowInflow, 40000, ""))

	// Wrong amount: nothing removed
	removed, err := repo.RemoveFlow("成长一号", "2025-08-29", FlowInflow, 41000)
	require.NoError(t, err)
	assert.False(t, removed)

	// Matching amount within tolerance
	removed, err = repo.RemoveFlow("成长一号", "2025-08-29", FlowInflow, 40000.001)
	require.NoError(t, err)
	assert.True(t, removed)

	net, err := repo.NetFlow("成长一号", "2025-08-29")
	require.NoError(t, err)
	assert.Zero(t, net)
}

func TestRemoveAllFlows(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.AddFlow("成长一号", "2025-08-28", FlowInflow, 1000, ""))
	require.NoError(t, repo.AddFlow("成长一号", "2025-08-29", FlowOutflow, 500, ""))
	require.NoError(t, repo.AddFlow("稳健二号", "2025-08-29", FlowInflow, 900, ""))

	deleted, err := repo.RemoveAllFlows("成长一号")
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	flows, err := repo.FlowsByUnit("稳健二号")
	require.NoError(t, err)
	assert.Len(t, flows, 1)
}

func TestTotals(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.AddFlow("成长一号", "2025-08-27", FlowInflow, 10000, ""))
	require.NoError(t, repo.AddFlow("成长一号", "2025-08-28", FlowInflow, 5000, ""))
	require.NoError(t, repo.AddFlow("成长一号", "2025-08-29", FlowOutflow, 3000, ""))

	inflow, outflow, err := repo.Totals("成长一号")
	require.NoError(t, err)
	assert.InDelta(t, 15000, inflow, 0.001)
	assert.InDelta(t, 3000, outflow, 0.001)
}

func TestGetFlow(t *testing.T) {
	repo := newTestRepo(t)

	ev, err := repo.GetFlow("成长一号", "2025-08-29", FlowInflow)
	require.NoError(t, err)
	assert.Nil(t, ev)

	require.NoError(t, repo.AddFlow("成长一号", "2025-08-29", FlowInflow, 40000, "subscription"))
	ev, err = repo.GetFlow("成长一号", "2025-08-29", FlowInflow)
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, "2025-08-29", ev.Date)
	assert.InDelta(t, 40000, ev.Amount, 0.001)
	assert.Equal(t, "subscription", ev.Note)
}
