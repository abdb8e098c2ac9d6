package service

import (
	"context"
	"testing"

	"github.com/dompetkeluarga/backend/internal/model"
	"github.com/dompetkeluarga/backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAllocator(t *testing.T) (*Allocator, store.Store) {
	t.Helper()
	st := store.NewMemoryStore()
	a, err := NewAllocator(t.TempDir(), st, testLogger())
	require.NoError(t, err)
	return a, st
}

func TestAllocatorStateRoundTrip(t *testing.T) {
	a, _ := newTestAllocator(t)

	st, err := a.State(testUser)
	require.NoError(t, err)
	assert.Zero(t, st.Salary)
	assert.Empty(t, st.Allocations)

	saved, err := a.SaveState(testUser, AllocatorState{
		Salary:   10_000_000,
		WalletID: "bank",
		Allocations: []Allocation{
			{Category: "Makanan", Amount: 2_500_000},
			{Category: "Transportasi", Amount: 1_000_000, Percentage: 99}, // stale, recomputed
		},
	})
	require.NoError(t, err)

	// Percentages derive from amounts, ids are assigned.
	assert.InDelta(t, 25.0, saved.Allocations[0].Percentage, 0.001)
	assert.InDelta(t, 10.0, saved.Allocations[1].Percentage, 0.001)
	assert.NotEmpty(t, saved.Allocations[0].ID)

	loaded, err := a.State(testUser)
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
	assert.Equal(t, int64(3_500_000), loaded.TotalAllocated())
	assert.Equal(t, int64(6_500_000), loaded.Remaining())
}

func TestAllocatorStatesArePerUser(t *testing.T) {
	a, _ := newTestAllocator(t)

	_, err := a.SaveState("alice", AllocatorState{Salary: 5_000_000})
	require.NoError(t, err)

	st, err := a.State("bob")
	require.NoError(t, err)
	assert.Zero(t, st.Salary)
}

func TestAllocatorTemplates(t *testing.T) {
	a, _ := newTestAllocator(t)

	_, err := a.SaveTemplate(testUser, "Gaji Bulanan")
	assert.Error(t, err, "no state yet")

	_, err = a.SaveState(testUser, AllocatorState{
		Salary:      8_000_000,
		Allocations: []Allocation{{Category: "Makanan", Amount: 2_000_000}},
	})
	require.NoError(t, err)

	tpl, err := a.SaveTemplate(testUser, "Gaji Bulanan")
	require.NoError(t, err)
	assert.NotEmpty(t, tpl.ID)
	assert.Equal(t, int64(8_000_000), tpl.Salary)

	// Mutate the live state, then restore from the template.
	_, err = a.SaveState(testUser, AllocatorState{Salary: 1})
	require.NoError(t, err)

	restored, err := a.LoadTemplate(testUser, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(8_000_000), restored.Salary)
	require.Len(t, restored.Allocations, 1)
	assert.NotEqual(t, tpl.Allocations[0].ID, restored.Allocations[0].ID)

	require.NoError(t, a.DeleteTemplate(testUser, tpl.ID))
	templates, err := a.Templates(testUser)
	require.NoError(t, err)
	assert.Empty(t, templates)

	assert.ErrorIs(t, a.DeleteTemplate(testUser, tpl.ID), store.ErrNotFound)
}

func TestAllocatorApplyToBudget(t *testing.T) {
	a, st := newTestAllocator(t)
	ctx := context.Background()

	require.NoError(t, st.CreateCategory(ctx, testUser, &model.Category{
		Name: "Makanan", Kind: model.CategoryExpense, Budget: 100,
	}))
	require.NoError(t, st.CreateCategory(ctx, testUser, &model.Category{
		Name: "Gaji Pokok", Kind: model.CategoryIncome,
	}))

	_, err := a.SaveState(testUser, AllocatorState{
		Salary: 10_000_000,
		Allocations: []Allocation{
			{Category: "Makanan", Amount: 2_500_000},
			{Category: "Gaji Pokok", Amount: 1_000_000},  // income category, skipped
			{Category: "Tidak Ada", Amount: 500_000},     // unknown name, skipped
		},
	})
	require.NoError(t, err)

	applied, err := a.ApplyToBudget(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)

	categories, err := st.ListCategories(ctx, testUser)
	require.NoError(t, err)
	for _, c := range categories {
		if c.Name == "Makanan" {
			assert.Equal(t, int64(2_500_000), c.Budget)
		}
	}
}
