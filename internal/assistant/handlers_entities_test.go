package assistant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmassist/internal/store"
)

func newEntityHandler(t *testing.T) (*EntityHandler, *store.FileStore) {
	t.Helper()
	s := openStore(t)
	return NewEntityHandler(s, newTestCatalog()), s
}

func seedPatients(t *testing.T, s *store.FileStore) {
	t.Helper()
	for _, r := range []store.Record{
		{"name": "John Smith", "age": 30, "gender": "male", "department_id": store.MainID},
		{"name": "Mary Johnson", "age": 45, "gender": "female", "medical_history": "penicillin allergy"},
		{"name": "Ali Hassan", "age": 60, "gender": "male"},
	} {
		_, err := s.Create(store.Patients, r)
		require.NoError(t, err)
	}
}

func TestEntityHandlerCanHandle(t *testing.T) {
	h, _ := newEntityHandler(t)
	assert.True(t, h.CanHandle("patients_count"))
	assert.True(t, h.CanHandle("database_overview"))
	assert.False(t, h.CanHandle("medicines_count"))

	res := h.Handle(context.Background(), "weather_report", "", "u1")
	assert.False(t, res.Success)
	assert.Contains(t, res.Response, "Unknown query type")
}

func TestPatientsCount(t *testing.T) {
	h, s := newEntityHandler(t)
	seedPatients(t, s)

	res := h.Handle(context.Background(), "patients_count", "how many patients", "u1")
	require.True(t, res.Success)
	assert.Equal(t, 3, res.Data["count"])
	assert.Contains(t, res.Response, "**Total Patients:** 3")
	assert.Contains(t, res.Response, "**Male:** 2")
	assert.Contains(t, res.Response, "**Female:** 1")
	assert.Contains(t, res.Response, "**Average Age:** 45.0")
}

func TestPatientsList(t *testing.T) {
	h, s := newEntityHandler(t)

	t.Run("empty database", func(t *testing.T) {
		res := h.Handle(context.Background(), "patients_list", "", "u1")
		require.True(t, res.Success)
		assert.Equal(t, "No patients found in the database.", res.Response)
	})

	seedPatients(t, s)

	t.Run("resolves departments", func(t *testing.T) {
		res := h.Handle(context.Background(), "patients_list", "", "u1")
		require.True(t, res.Success)
		assert.Equal(t, 3, res.Data["total_count"])
		assert.Contains(t, res.Response, "**John Smith** (Age: 30, male) - Main Pharmacy")
		assert.Contains(t, res.Response, "**Ali Hassan** (Age: 60, male) - Unassigned")
	})
}

func TestPatientsByGender(t *testing.T) {
	h, s := newEntityHandler(t)
	seedPatients(t, s)

	res := h.Handle(context.Background(), "patients_by_gender", "", "u1")
	require.True(t, res.Success)
	assert.Contains(t, res.Response, "PATIENTS BY GENDER")
	assert.Contains(t, res.Response, "**Male** (2 patients)")
	assert.Contains(t, res.Response, "**Female** (1 patients)")
}

func TestPatientsWithAllergies(t *testing.T) {
	h, s := newEntityHandler(t)

	res := h.Handle(context.Background(), "patients_with_allergies", "", "u1")
	require.True(t, res.Success)
	assert.Equal(t, "No patients with recorded allergies were found.", res.Response)

	seedPatients(t, s)
	res = h.Handle(context.Background(), "patients_with_allergies", "", "u1")
	require.True(t, res.Success)
	assert.Equal(t, 1, res.Data["count"])
	assert.Contains(t, res.Response, "**Mary Johnson** - penicillin allergy")
}

func TestPatientsAnalysis(t *testing.T) {
	h, s := newEntityHandler(t)
	seedPatients(t, s)

	res := h.Handle(context.Background(), "patients_analysis", "", "u1")
	require.True(t, res.Success)
	assert.Equal(t, 3, res.Data["total_count"])
	assert.Contains(t, res.Response, "## 🚻 **By Gender:**")
	assert.Contains(t, res.Response, "**Main Pharmacy:** 1")
	assert.Contains(t, res.Response, "**Unassigned:** 2")
}

func TestSupplierQueries(t *testing.T) {
	h, s := newEntityHandler(t)
	supID, err := s.Create(store.Suppliers, store.Record{
		"name": "MediSupply Co", "type": "wholesale",
		"contact": "555-0101", "email": "orders@medisupply.example",
	})
	require.NoError(t, err)
	_, err = s.Create(store.Purchases, store.Record{
		"supplier_id": supID, "medicine_id": "01", "quantity": 10, "unit_price": 2.5,
	})
	require.NoError(t, err)

	t.Run("count", func(t *testing.T) {
		res := h.Handle(context.Background(), "suppliers_count", "", "u1")
		require.True(t, res.Success)
		assert.Equal(t, 1, res.Data["count"])
		assert.Contains(t, res.Response, "**Total Suppliers:** 1")
	})

	t.Run("contact info", func(t *testing.T) {
		res := h.Handle(context.Background(), "suppliers_contact_info", "", "u1")
		require.True(t, res.Success)
		assert.Contains(t, res.Response, "**MediSupply Co**")
		assert.Contains(t, res.Response, "555-0101")
		assert.Contains(t, res.Response, "orders@medisupply.example")
	})

	t.Run("performance joins purchases", func(t *testing.T) {
		res := h.Handle(context.Background(), "suppliers_performance", "", "u1")
		require.True(t, res.Success)
		assert.Contains(t, res.Response, "SUPPLIER PERFORMANCE")
		assert.Contains(t, res.Response, "**MediSupply Co**: 1 purchases, $25.00 total")
	})
}

func TestDepartmentQueries(t *testing.T) {
	h, s := newEntityHandler(t)
	// The main department exists from Open; add one more.
	deptID, err := s.Create(store.Departments, store.Record{"name": "Emergency", "responsible_person": "Dr Lee"})
	require.NoError(t, err)
	_, err = s.Create(store.Users, store.Record{"name": "Sarah Chen", "department_id": deptID})
	require.NoError(t, err)

	t.Run("count", func(t *testing.T) {
		res := h.Handle(context.Background(), "departments_count", "", "u1")
		require.True(t, res.Success)
		assert.Equal(t, 2, res.Data["count"])
	})

	t.Run("list", func(t *testing.T) {
		res := h.Handle(context.Background(), "departments_list", "", "u1")
		require.True(t, res.Success)
		assert.Contains(t, res.Response, "**Main Pharmacy** - Responsible: Madam Tina")
		assert.Contains(t, res.Response, "**Emergency** - Responsible: Dr Lee")
	})

	t.Run("staff", func(t *testing.T) {
		res := h.Handle(context.Background(), "departments_staff", "", "u1")
		require.True(t, res.Success)
		assert.Contains(t, res.Response, "## **Emergency**")
		assert.Contains(t, res.Response, "**Staff Accounts:** 1")
	})
}

func TestDepartmentsInventory(t *testing.T) {
	h, s := newEntityHandler(t)
	ids := seedMedicines(t, s, "Aspirin")
	setMainStock(t, s, map[string]any{ids[0]: 50})

	res := h.Handle(context.Background(), "departments_inventory", "", "u1")
	require.True(t, res.Success)
	assert.Contains(t, res.Response, "## **Main Pharmacy**")
	assert.Contains(t, res.Response, "**Aspirin**: 50 units")
	assert.Contains(t, res.Response, "**Total:** 50 units")
}

func TestStoreQueries(t *testing.T) {
	h, s := newEntityHandler(t)
	ids := seedMedicines(t, s, "Aspirin")
	setMainStock(t, s, map[string]any{ids[0]: 75})

	t.Run("count", func(t *testing.T) {
		res := h.Handle(context.Background(), "stores_count", "", "u1")
		require.True(t, res.Success)
		assert.Equal(t, 1, res.Data["count"])
	})

	t.Run("list resolves department", func(t *testing.T) {
		res := h.Handle(context.Background(), "stores_list", "", "u1")
		require.True(t, res.Success)
		assert.Contains(t, res.Response, "**Main Pharmacy Store** - Department: Main Pharmacy")
	})

	t.Run("inventory sums units", func(t *testing.T) {
		res := h.Handle(context.Background(), "stores_inventory", "", "u1")
		require.True(t, res.Success)
		assert.Equal(t, 75, res.Data["total_units"])
		assert.Contains(t, res.Response, "**Aspirin**: 75 units")
		assert.Contains(t, res.Response, "**Grand Total Across Stores:** 75 units")
	})

	t.Run("by department", func(t *testing.T) {
		res := h.Handle(context.Background(), "stores_by_department", "", "u1")
		require.True(t, res.Success)
		assert.Contains(t, res.Response, "**Main Pharmacy** (1 stores)")
	})
}

func TestPurchaseQueries(t *testing.T) {
	h, s := newEntityHandler(t)
	medIDs := seedMedicines(t, s, "Aspirin", "Ibuprofen")
	supID, err := s.Create(store.Suppliers, store.Record{"name": "PharmaDirect"})
	require.NoError(t, err)
	// One purchase priced via total_price, one via unit price.
	_, err = s.Create(store.Purchases, store.Record{
		"medicine_id": medIDs[0], "supplier_id": supID, "quantity": 100, "total_price": 120.0,
	})
	require.NoError(t, err)
	_, err = s.Create(store.Purchases, store.Record{
		"medicine_id": medIDs[1], "supplier_id": supID, "quantity": 10, "unit_price": 3.0,
	})
	require.NoError(t, err)

	t.Run("total cost", func(t *testing.T) {
		res := h.Handle(context.Background(), "purchases_total_cost", "", "u1")
		require.True(t, res.Success)
		assert.Equal(t, 150.0, res.Data["total_cost"])
		assert.Contains(t, res.Response, "**Total Spending:** $150.00")
		assert.Contains(t, res.Response, "**Average per Purchase:** $75.00")
	})

	t.Run("most expensive honors top n", func(t *testing.T) {
		res := h.Handle(context.Background(), "purchases_expensive", "show top 1 expensive purchases", "u1")
		require.True(t, res.Success)
		assert.Equal(t, 1, res.Data["top_n"])
		assert.Contains(t, res.Response, "Top 1 Most Expensive Purchases")
		assert.Contains(t, res.Response, "**Aspirin**: $120.00 (100 units from PharmaDirect)")
		assert.NotContains(t, res.Response, "Ibuprofen")
	})

	t.Run("by supplier", func(t *testing.T) {
		res := h.Handle(context.Background(), "purchases_by_supplier", "", "u1")
		require.True(t, res.Success)
		assert.Contains(t, res.Response, "**PharmaDirect** (2 purchases)")
	})
}

func TestConsumptionQueries(t *testing.T) {
	h, s := newEntityHandler(t)
	medIDs := seedMedicines(t, s, "Aspirin", "Ibuprofen")
	for _, r := range []store.Record{
		{"medicine_id": medIDs[0], "quantity": 30, "date": "2024-06-01"},
		{"medicine_id": medIDs[0], "quantity": 20, "date": "2024-06-02"},
		{"medicine_id": medIDs[1], "quantity": 5, "date": "2024-06-03"},
	} {
		_, err := s.Create(store.Consumption, r)
		require.NoError(t, err)
	}

	t.Run("by medicine aggregates", func(t *testing.T) {
		res := h.Handle(context.Background(), "consumption_by_medicine", "", "u1")
		require.True(t, res.Success)
		assert.Equal(t, 2, res.Data["group_count"])
		assert.Contains(t, res.Response, "1. **Aspirin**: 50 units")
		assert.Contains(t, res.Response, "2. **Ibuprofen**: 5 units")
	})

	t.Run("analysis", func(t *testing.T) {
		res := h.Handle(context.Background(), "consumption_analysis", "", "u1")
		require.True(t, res.Success)
		assert.Equal(t, 3, res.Data["record_count"])
		assert.Equal(t, 55, res.Data["total_units"])
	})
}

func TestTransferQueries(t *testing.T) {
	h, s := newEntityHandler(t)
	medIDs := seedMedicines(t, s, "Aspirin")
	deptID, err := s.Create(store.Departments, store.Record{"name": "Emergency"})
	require.NoError(t, err)
	_, err = s.CreateStoreForDepartment(deptID, "Emergency")
	require.NoError(t, err)
	setMainStock(t, s, map[string]any{medIDs[0]: 100})
	require.NoError(t, s.Transfer(medIDs[0], 30, store.MainID, deptID))

	t.Run("list", func(t *testing.T) {
		res := h.Handle(context.Background(), "transfers_list", "", "u1")
		require.True(t, res.Success)
		assert.Equal(t, 1, res.Data["count"])
		assert.Contains(t, res.Response, "**Aspirin**: 30 units, Main Pharmacy → Emergency [completed]")
	})

	t.Run("no pending transfers", func(t *testing.T) {
		res := h.Handle(context.Background(), "transfers_pending", "", "u1")
		require.True(t, res.Success)
		assert.Equal(t, "No pending transfers. All transfers are completed.", res.Response)
	})

	t.Run("routes", func(t *testing.T) {
		res := h.Handle(context.Background(), "transfers_routes", "", "u1")
		require.True(t, res.Success)
		assert.Equal(t, 1, res.Data["route_count"])
		assert.Contains(t, res.Response, "**Main Pharmacy → Emergency**: 30 units")
	})

	t.Run("analysis", func(t *testing.T) {
		res := h.Handle(context.Background(), "transfers_analysis", "", "u1")
		require.True(t, res.Success)
		assert.Equal(t, 1, res.Data["transfer_count"])
		assert.Equal(t, 30, res.Data["total_units"])
	})
}

func TestDatabaseOverview(t *testing.T) {
	h, s := newEntityHandler(t)
	seedMedicines(t, s, "Aspirin", "Ibuprofen")
	seedPatients(t, s)

	res := h.Handle(context.Background(), "database_overview", "", "u1")
	require.True(t, res.Success)
	assert.Equal(t, 2, res.Data[store.Medicines])
	assert.Equal(t, 3, res.Data[store.Patients])
	assert.Equal(t, 1, res.Data[store.Departments])
	assert.Contains(t, res.Response, "COMPLETE DATABASE OVERVIEW")
}

func TestHelpQuery(t *testing.T) {
	h, _ := newEntityHandler(t)
	res := h.Handle(context.Background(), "help_query", "help", "u1")
	require.True(t, res.Success)
	assert.Contains(t, res.Response, "PHARMACY ASSISTANT HELP")
	assert.Contains(t, res.Response, "add new medicine called")
}

func TestRecordCost(t *testing.T) {
	tests := []struct {
		name   string
		record store.Record
		want   float64
	}{
		{"total price wins", store.Record{"total_price": 42.5, "unit_price": 1.0, "quantity": 3}, 42.5},
		{"total price as int", store.Record{"total_price": 40}, 40},
		{"unit price times quantity", store.Record{"unit_price": 2.5, "quantity": 4}, 10},
		{"integer unit price", store.Record{"unit_price": 3, "quantity": 2}, 6},
		{"no pricing", store.Record{"quantity": 5}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, recordCost(tt.record))
		})
	}
}

func TestParseTopN(t *testing.T) {
	tests := []struct {
		input    string
		fallback int
		want     int
	}{
		{"show top 3 patients", 5, 3},
		{"Top 10 purchases", 5, 10},
		{"most expensive purchases", 5, 5},
		{"top 0 things", 5, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseTopN(tt.input, tt.fallback), tt.input)
	}
}

func TestAgeBand(t *testing.T) {
	tests := []struct {
		age  int
		want string
	}{
		{10, "Under 18"}, {18, "18-39"}, {39, "18-39"},
		{40, "40-64"}, {64, "40-64"}, {65, "65+"}, {90, "65+"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ageBand(tt.age))
	}
}

func TestRecentRecords(t *testing.T) {
	records := []store.Record{
		{"name": "a", "date": "2024-01-01"},
		{"name": "b", "date": "2024-03-01"},
		{"name": "c", "date": "2024-02-01"},
		{"name": "d"},
	}
	recent := recentRecords(records, "date", 2)
	require.Len(t, recent, 2)
	assert.Equal(t, "b", recent[0].Str("name"))
	assert.Equal(t, "c", recent[1].Str("name"))
}
