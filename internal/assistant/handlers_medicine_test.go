package assistant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmassist/internal/store"
)

func openStore(t *testing.T) *store.FileStore {
	t.Helper()
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)
	return s
}

// setMainStock replaces the main store's inventory map.
func setMainStock(t *testing.T, s *store.FileStore, stock map[string]any) {
	t.Helper()
	require.NoError(t, s.Update(store.Stores, store.MainID, store.Record{"inventory": stock}))
}

func TestMedicineHandlerCanHandle(t *testing.T) {
	h := NewMedicineHandler(openStore(t))
	assert.True(t, h.CanHandle("medicines_count"))
	assert.True(t, h.CanHandle("medicine_names_list"))
	assert.False(t, h.CanHandle("patients_count"))

	res := h.Handle(context.Background(), "medicines_bogus", "", "u1")
	assert.False(t, res.Success)
	assert.Contains(t, res.Response, "Unknown medicine query type")
}

func TestMedicineCount(t *testing.T) {
	s := openStore(t)
	h := NewMedicineHandler(s)
	seedMedicines(t, s, "Aspirin", "Paracetamol", "Ibuprofen")

	res := h.Handle(context.Background(), "medicines_count", "how many medicines", "u1")
	require.True(t, res.Success)
	assert.Equal(t, 3, res.Data["count"])
	assert.Contains(t, res.Response, "**Total Medicines:** 3")
	assert.Contains(t, res.Response, "**Unique Suppliers:** 1")
	assert.Contains(t, res.Response, "Tablet 100mg (3 medicines)")
}

func TestMedicineCountEmpty(t *testing.T) {
	h := NewMedicineHandler(openStore(t))
	res := h.Handle(context.Background(), "medicines_count", "", "u1")
	require.True(t, res.Success)
	assert.Equal(t, 0, res.Data["count"])
	assert.NotContains(t, res.Response, "Additional Statistics")
}

func TestMedicineList(t *testing.T) {
	s := openStore(t)
	h := NewMedicineHandler(s)

	t.Run("empty database", func(t *testing.T) {
		res := h.Handle(context.Background(), "medicines_list", "", "u1")
		require.True(t, res.Success)
		assert.Equal(t, "No medicines found in the database.", res.Response)
	})

	ids := seedMedicines(t, s, "Paracetamol", "Aspirin")
	setMainStock(t, s, map[string]any{ids[0]: 80, ids[1]: 40})

	t.Run("sorted with stock", func(t *testing.T) {
		res := h.Handle(context.Background(), "medicines_list", "", "u1")
		require.True(t, res.Success)
		assert.Equal(t, 2, res.Data["total_count"])
		assert.Contains(t, res.Response, "1. **Aspirin** (Tablet 100mg) - Stock: 40")
		assert.Contains(t, res.Response, "2. **Paracetamol** (Tablet 100mg) - Stock: 80")
	})
}

func TestMedicineStockLevels(t *testing.T) {
	s := openStore(t)
	h := NewMedicineHandler(s)
	ids := seedMedicines(t, s, "Aspirin", "Zinc")
	setMainStock(t, s, map[string]any{ids[0]: 100, ids[1]: 5})

	res := h.Handle(context.Background(), "medicines_stock_levels", "", "u1")
	require.True(t, res.Success)
	assert.Equal(t, 105, res.Data["total_stock"])
	assert.Contains(t, res.Response, "**Total Stock Units:** 105")
	// Highest first, and the 5-unit medicine is below its limit of 10.
	assert.Contains(t, res.Response, "1. **Aspirin**")
	assert.Contains(t, res.Response, "🟢 OK")
	assert.Contains(t, res.Response, "🔴 LOW")
}

func TestMedicineLowStock(t *testing.T) {
	s := openStore(t)
	h := NewMedicineHandler(s)
	ids := seedMedicines(t, s, "Aspirin", "Zinc")

	t.Run("one at or below limit", func(t *testing.T) {
		setMainStock(t, s, map[string]any{ids[0]: 100, ids[1]: 10})
		res := h.Handle(context.Background(), "medicines_low_stock", "", "u1")
		require.True(t, res.Success)
		assert.Equal(t, 1, res.Data["count"])
		assert.Contains(t, res.Response, "**Zinc**")
		assert.Contains(t, res.Response, "Restock these medicines soon")
	})

	t.Run("all healthy", func(t *testing.T) {
		setMainStock(t, s, map[string]any{ids[0]: 100, ids[1]: 90})
		res := h.Handle(context.Background(), "medicines_low_stock", "", "u1")
		require.True(t, res.Success)
		assert.Equal(t, "Good news! No medicines are currently below their low stock limit.", res.Response)
	})
}

func TestMedicineOutOfStock(t *testing.T) {
	s := openStore(t)
	h := NewMedicineHandler(s)
	ids := seedMedicines(t, s, "Aspirin", "Zinc")
	setMainStock(t, s, map[string]any{ids[0]: 100})

	res := h.Handle(context.Background(), "medicines_out_of_stock", "", "u1")
	require.True(t, res.Success)
	assert.Equal(t, 1, res.Data["count"])
	assert.Contains(t, res.Response, "**Zinc**")

	setMainStock(t, s, map[string]any{ids[0]: 100, ids[1]: 1})
	res = h.Handle(context.Background(), "medicines_out_of_stock", "", "u1")
	require.True(t, res.Success)
	assert.Equal(t, "Good news! Every medicine currently has stock available.", res.Response)
}

func TestMedicineHighestStock(t *testing.T) {
	s := openStore(t)
	h := NewMedicineHandler(s)
	ids := seedMedicines(t, s, "Aspirin", "Paracetamol", "Zinc")
	setMainStock(t, s, map[string]any{ids[0]: 40, ids[1]: 200, ids[2]: 10})

	res := h.Handle(context.Background(), "medicines_highest_stock", "", "u1")
	require.True(t, res.Success)
	top, ok := res.Data["highest_stock_medicine"].(medicineStock)
	require.True(t, ok)
	assert.Equal(t, "Paracetamol", top.Name)
	assert.Equal(t, 200, top.Stock)
	assert.Contains(t, res.Response, "**Paracetamol** has the highest stock with **200 units**")
	assert.Contains(t, res.Response, "Top 5 Highest Stock Medicines")
}

func TestMedicineByCategory(t *testing.T) {
	s := openStore(t)
	h := NewMedicineHandler(s)
	_, err := s.Create(store.Medicines, store.Record{"name": "Aspirin", "category": "Analgesic"})
	require.NoError(t, err)
	_, err = s.Create(store.Medicines, store.Record{"name": "Zinc"})
	require.NoError(t, err)

	res := h.Handle(context.Background(), "medicines_by_category", "", "u1")
	require.True(t, res.Success)
	assert.Equal(t, 2, res.Data["total_count"])
	assert.Contains(t, res.Response, "**Analgesic** (1 medicines)")
	assert.Contains(t, res.Response, "**Uncategorized** (1 medicines)")
}

func TestMedicineBySupplier(t *testing.T) {
	s := openStore(t)
	h := NewMedicineHandler(s)
	supID, err := s.Create(store.Suppliers, store.Record{"name": "MediSupply Co"})
	require.NoError(t, err)
	_, err = s.Create(store.Medicines, store.Record{"name": "Aspirin", "supplier_id": supID})
	require.NoError(t, err)
	_, err = s.Create(store.Medicines, store.Record{"name": "Zinc", "supplier_id": "99"})
	require.NoError(t, err)

	res := h.Handle(context.Background(), "medicines_by_supplier", "", "u1")
	require.True(t, res.Success)
	assert.Contains(t, res.Response, "**MediSupply Co** (1 medicines)")
	assert.Contains(t, res.Response, "Unknown Supplier (99)")
}

func TestMedicineByForm(t *testing.T) {
	s := openStore(t)
	h := NewMedicineHandler(s)
	for _, r := range []store.Record{
		{"name": "Aspirin", "form_dosage": "Tablet 100mg"},
		{"name": "Ibuprofen", "form_dosage": "Tablet 100mg"},
		{"name": "Paracetamol", "form_dosage": "Syrup 120mg/5ml"},
	} {
		_, err := s.Create(store.Medicines, r)
		require.NoError(t, err)
	}

	res := h.Handle(context.Background(), "medicines_by_form", "", "u1")
	require.True(t, res.Success)
	assert.Contains(t, res.Response, "**Total Forms:** 2")
	assert.Contains(t, res.Response, "**Tablet 100mg** (2 medicines)")
	assert.Contains(t, res.Response, "**Syrup 120mg/5ml** (1 medicines)")
}

func TestMedicineAnalysis(t *testing.T) {
	s := openStore(t)
	h := NewMedicineHandler(s)
	ids := seedMedicines(t, s, "Aspirin", "Paracetamol", "Zinc")
	setMainStock(t, s, map[string]any{ids[0]: 100, ids[1]: 5})

	res := h.Handle(context.Background(), "medicines_analysis", "", "u1")
	require.True(t, res.Success)
	assert.Equal(t, 3, res.Data["total_count"])
	assert.Equal(t, 105, res.Data["total_stock"])
	assert.Equal(t, 1, res.Data["low_stock"])
	assert.Equal(t, 1, res.Data["out_of_stock"])
	assert.Contains(t, res.Response, "Top 5 by Stock")
}

func TestGroupingHelpers(t *testing.T) {
	t.Run("mostCommon ties alphabetically", func(t *testing.T) {
		name, count := mostCommon(map[string]int{"tablet": 2, "syrup": 2, "cream": 1})
		assert.Equal(t, "syrup", name)
		assert.Equal(t, 2, count)
	})

	t.Run("sortGroupsBySize largest first", func(t *testing.T) {
		groups := map[string][]store.Record{
			"a": {{"name": "x"}},
			"b": {{"name": "y"}, {"name": "z"}},
		}
		sorted := sortGroupsBySize(groups)
		require.Len(t, sorted, 2)
		assert.Equal(t, "b", sorted[0].key)
		assert.Equal(t, "a", sorted[1].key)
	})
}
