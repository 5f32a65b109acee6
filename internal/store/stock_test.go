package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedInventory stocks the main store with the given quantity of a
// fresh medicine and returns the medicine ID.
func seedInventory(t *testing.T, s *FileStore, qty int) string {
	t.Helper()
	medID, err := s.Create(Medicines, Record{"name": "Aspirin", "low_stock_limit": 10})
	require.NoError(t, err)
	require.NoError(t, s.AdjustStock(medID, qty, MainID))
	return medID
}

func TestGetStockSumsAcrossStores(t *testing.T) {
	s := newTestStore(t)
	medID := seedInventory(t, s, 40)

	deptID, err := s.Create(Departments, Record{"name": "ICU"})
	require.NoError(t, err)
	_, err = s.CreateStoreForDepartment(deptID, "ICU")
	require.NoError(t, err)
	require.NoError(t, s.AdjustStock(medID, 5, deptID))

	total, err := s.GetStock(medID, "")
	require.NoError(t, err)
	assert.Equal(t, 45, total)

	mainOnly, err := s.GetStock(medID, MainID)
	require.NoError(t, err)
	assert.Equal(t, 40, mainOnly)

	icuOnly, err := s.GetStock(medID, deptID)
	require.NoError(t, err)
	assert.Equal(t, 5, icuOnly)
}

func TestTransferMovesUnits(t *testing.T) {
	s := newTestStore(t)
	medID := seedInventory(t, s, 40)

	deptID, err := s.Create(Departments, Record{"name": "ICU"})
	require.NoError(t, err)
	_, err = s.CreateStoreForDepartment(deptID, "ICU")
	require.NoError(t, err)

	require.NoError(t, s.Transfer(medID, 15, MainID, deptID))

	src, err := s.GetStock(medID, MainID)
	require.NoError(t, err)
	assert.Equal(t, 25, src)
	dst, err := s.GetStock(medID, deptID)
	require.NoError(t, err)
	assert.Equal(t, 15, dst)

	transfers, err := s.List(Transfers)
	require.NoError(t, err)
	require.Len(t, transfers, 1)
	assert.Equal(t, medID, transfers[0].Str("medicine_id"))
	assert.Equal(t, 15, transfers[0].Int("quantity"))
}

func TestTransferInsufficientStock(t *testing.T) {
	s := newTestStore(t)
	medID := seedInventory(t, s, 3)

	deptID, err := s.Create(Departments, Record{"name": "ICU"})
	require.NoError(t, err)
	_, err = s.CreateStoreForDepartment(deptID, "ICU")
	require.NoError(t, err)

	err = s.Transfer(medID, 10, MainID, deptID)
	var insufficient *ErrInsufficientStock
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 3, insufficient.Available)
	assert.Equal(t, 10, insufficient.Requested)
	assert.Equal(t, "Main Pharmacy", insufficient.Department)

	// No partial movement
	src, err := s.GetStock(medID, MainID)
	require.NoError(t, err)
	assert.Equal(t, 3, src)
}

func TestTransferUnknownDepartmentStore(t *testing.T) {
	s := newTestStore(t)
	medID := seedInventory(t, s, 10)

	err := s.Transfer(medID, 1, MainID, "99")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransferRejectsNonPositiveQuantity(t *testing.T) {
	s := newTestStore(t)
	medID := seedInventory(t, s, 10)

	assert.Error(t, s.Transfer(medID, 0, MainID, MainID))
	assert.Error(t, s.Transfer(medID, -4, MainID, MainID))
}

func TestGetStockStatusBands(t *testing.T) {
	s := newTestStore(t)
	medID, err := s.Create(Medicines, Record{"name": "Aspirin", "low_stock_limit": 10})
	require.NoError(t, err)

	tests := []struct {
		name  string
		stock int
		want  string
	}{
		{"at limit is low", 10, "low"},
		{"within 1.5x is medium", 15, "medium"},
		{"above 1.5x is good", 16, "good"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current, err := s.GetStock(medID, "")
			require.NoError(t, err)
			require.NoError(t, s.AdjustStock(medID, tt.stock-current, MainID))

			status, err := s.GetStockStatus(medID, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, status.Status)
		})
	}
}

func TestAdjustStockCannotGoNegative(t *testing.T) {
	s := newTestStore(t)
	medID := seedInventory(t, s, 2)

	err := s.AdjustStock(medID, -5, MainID)
	var insufficient *ErrInsufficientStock
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 2, insufficient.Available)
}
