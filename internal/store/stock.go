package store

import (
	"fmt"
	"time"
)

// InventoryStore exposes stock queries and transfers between
// department stores.
type InventoryStore interface {
	GetStock(medicineID, departmentID string) (int, error)
	Transfer(medicineID string, quantity int, fromDeptID, toDeptID string) error
}

// StockStatus describes a medicine's stock band relative to its low
// stock limit.
type StockStatus struct {
	Status  string `json:"status"`
	Color   string `json:"color"`
	Message string `json:"message"`
}

// ErrInsufficientStock is returned when a transfer exceeds the source
// department's available quantity.
type ErrInsufficientStock struct {
	Department string
	Available  int
	Requested  int
}

func (e *ErrInsufficientStock) Error() string {
	return fmt.Sprintf("Insufficient stock in %s. Available: %d units, Requested: %d units.",
		e.Department, e.Available, e.Requested)
}

// GetStock sums a medicine's quantity across store inventories. An
// empty departmentID sums over every store; otherwise only stores
// belonging to that department count.
func (s *FileStore) GetStock(medicineID, departmentID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stockLocked(medicineID, departmentID)
}

func (s *FileStore) stockLocked(medicineID, departmentID string) (int, error) {
	stores, err := s.load(Stores)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, st := range stores {
		if departmentID != "" && st.Str("department_id") != departmentID {
			continue
		}
		total += inventoryQty(st, medicineID)
	}
	return total, nil
}

func inventoryQty(st Record, medicineID string) int {
	inv, ok := st["inventory"].(map[string]any)
	if !ok {
		return 0
	}
	switch v := inv[medicineID].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

// GetStockStatus bands a medicine's current stock against its low
// stock limit: at or below the limit is low, within 1.5x is medium,
// anything above is good.
func (s *FileStore) GetStockStatus(medicineID, departmentID string) (StockStatus, error) {
	medicine, err := s.GetByID(Medicines, medicineID)
	if err != nil {
		return StockStatus{Status: "unknown", Color: "secondary", Message: "Medicine not found"}, err
	}
	current, err := s.GetStock(medicineID, departmentID)
	if err != nil {
		return StockStatus{}, err
	}
	lowLimit := medicine.Int("low_stock_limit")
	switch {
	case current <= lowLimit:
		return StockStatus{Status: "low", Color: "danger", Message: "Low Stock"}, nil
	case float64(current) <= float64(lowLimit)*1.5:
		return StockStatus{Status: "medium", Color: "warning", Message: "Medium Stock"}, nil
	default:
		return StockStatus{Status: "good", Color: "success", Message: "Good Stock"}, nil
	}
}

// Transfer moves quantity units of a medicine between two department
// stores and records the movement in the transfers collection. Both
// inventory adjustments happen under one lock so a reader never sees
// the units in flight.
func (s *FileStore) Transfer(medicineID string, quantity int, fromDeptID, toDeptID string) error {
	if quantity <= 0 {
		return fmt.Errorf("transfer quantity must be positive, got %d", quantity)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stores, err := s.load(Stores)
	if err != nil {
		return err
	}
	fromIdx, toIdx := -1, -1
	for i, st := range stores {
		switch st.Str("department_id") {
		case fromDeptID:
			if fromIdx == -1 {
				fromIdx = i
			}
		case toDeptID:
			if toIdx == -1 {
				toIdx = i
			}
		}
	}
	if fromIdx == -1 {
		return fmt.Errorf("store for department %s: %w", fromDeptID, ErrNotFound)
	}
	if toIdx == -1 {
		return fmt.Errorf("store for department %s: %w", toDeptID, ErrNotFound)
	}

	available := inventoryQty(stores[fromIdx], medicineID)
	if available < quantity {
		deptName := fromDeptID
		if dept, err := s.getByIDLocked(Departments, fromDeptID); err == nil {
			deptName = dept.Str("name")
		}
		return &ErrInsufficientStock{Department: deptName, Available: available, Requested: quantity}
	}

	setInventoryQty(stores[fromIdx], medicineID, available-quantity)
	setInventoryQty(stores[toIdx], medicineID, inventoryQty(stores[toIdx], medicineID)+quantity)
	if err := s.save(Stores, stores); err != nil {
		return err
	}

	transfers, err := s.load(Transfers)
	if err != nil {
		return err
	}
	transfers = append(transfers, Record{
		"id":            generateID(transfers),
		"medicine_id":   medicineID,
		"quantity":      quantity,
		"from_dept_id":  fromDeptID,
		"to_dept_id":    toDeptID,
		"status":        "completed",
		"transfer_date": s.now().Format(time.RFC3339),
		"created_at":    s.now().Format(time.RFC3339),
	})
	return s.save(Transfers, transfers)
}

func (s *FileStore) getByIDLocked(collection, id string) (Record, error) {
	records, err := s.load(collection)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if r.ID() == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%s %s: %w", collection, id, ErrNotFound)
}

func setInventoryQty(st Record, medicineID string, qty int) {
	inv, ok := st["inventory"].(map[string]any)
	if !ok {
		inv = map[string]any{}
		st["inventory"] = inv
	}
	inv[medicineID] = qty
}

// AdjustStock adds (or removes, with a negative delta) units of a
// medicine in a department's store. Used by restock and consumption.
func (s *FileStore) AdjustStock(medicineID string, delta int, departmentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stores, err := s.load(Stores)
	if err != nil {
		return err
	}
	for i, st := range stores {
		if st.Str("department_id") != departmentID {
			continue
		}
		current := inventoryQty(st, medicineID)
		next := current + delta
		if next < 0 {
			deptName := departmentID
			if dept, err := s.getByIDLocked(Departments, departmentID); err == nil {
				deptName = dept.Str("name")
			}
			return &ErrInsufficientStock{Department: deptName, Available: current, Requested: -delta}
		}
		setInventoryQty(stores[i], medicineID, next)
		return s.save(Stores, stores)
	}
	return fmt.Errorf("store for department %s: %w", departmentID, ErrNotFound)
}
