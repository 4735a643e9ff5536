package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symeon158/Equipment-Inspection/ledger"
	"github.com/symeon158/Equipment-Inspection/ledger/store"
)

func rec(asset string, dir ledger.Direction, cond ledger.Condition) ledger.Record {
	return ledger.Record{AssetKey: asset, Actor: "alex", Direction: dir, Condition: cond, Comment: "c"}
}

func TestMemory_Append_AssignsMonotonicSequence(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	s1, err := m.Append(ctx, rec("A", ledger.CheckIn, ledger.Checked))
	require.NoError(t, err)
	s2, err := m.Append(ctx, rec("B", ledger.CheckIn, ledger.Checked))
	require.NoError(t, err)

	assert.Equal(t, int64(1), s1)
	assert.Equal(t, int64(2), s2)

	all, err := m.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, int64(1), all[0].Sequence)
	assert.Equal(t, int64(2), all[1].Sequence)
}

func TestMemory_ReadAsset_FiltersExactly(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	m.Seed(
		rec("Jigsaw", ledger.CheckIn, ledger.Checked),
		rec("Blower", ledger.CheckIn, ledger.Checked),
		rec("Jigsaw", ledger.CheckOut, ledger.Checked),
	)

	got, err := m.ReadAsset(ctx, "Jigsaw")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].Sequence)
	assert.Equal(t, int64(3), got[1].Sequence)
}

func TestMemory_AppendIf_StaleToken_Conflict(t *testing.T) {
	// GIVEN: Asset A has a record at sequence 1, token captured before it moved
	// WHEN: Another record for A lands, then the stale-token append runs
	// THEN: The stale append is refused with ErrConflict and nothing is written

	m := store.NewMemory()
	ctx := context.Background()

	_, err := m.Append(ctx, rec("A", ledger.CheckIn, ledger.Checked))
	require.NoError(t, err)
	token := int64(1)

	// Concurrent writer moves the asset forward.
	_, err = m.Append(ctx, rec("A", ledger.CheckIn, ledger.BrokenDown))
	require.NoError(t, err)

	_, err = m.AppendIf(ctx, rec("A", ledger.CheckOut, ledger.Checked), token)
	require.ErrorIs(t, err, ledger.ErrConflict)

	all, err := m.ReadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2, "refused append must not write")
}

func TestMemory_AppendIf_FreshToken_Succeeds(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	// Records for other assets never conflict.
	_, err := m.Append(ctx, rec("B", ledger.CheckIn, ledger.Checked))
	require.NoError(t, err)

	seq, err := m.AppendIf(ctx, rec("A", ledger.CheckIn, ledger.Checked), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), seq)

	seq, err = m.AppendIf(ctx, rec("A", ledger.CheckOut, ledger.Checked), seq)
	require.NoError(t, err)
	assert.Equal(t, int64(3), seq)
}
