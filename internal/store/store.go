// Package store implements the flat-file JSON entity store used by the
// pharmacy assistant. Each collection lives in its own JSON array file
// under the data directory; records are free-form maps with zero-padded
// string IDs.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Collection names. The on-disk file for a collection is "<name>.json".
const (
	Medicines   = "medicines"
	Patients    = "patients"
	Suppliers   = "suppliers"
	Departments = "departments"
	Stores      = "stores"
	Purchases   = "purchases"
	Consumption = "consumption"
	Transfers   = "transfers"
	Users       = "users"
	History     = "history"
)

// Collections lists every known collection in a fixed order.
var Collections = []string{
	Medicines, Patients, Suppliers, Departments, Stores,
	Purchases, Consumption, Transfers, Users, History,
}

// Record is a single entity document.
type Record map[string]any

// ID returns the record's id field, or "".
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// Str returns a string field, or "" when absent or not a string.
func (r Record) Str(key string) string {
	v, _ := r[key].(string)
	return v
}

// Int returns an integer field, tolerating the float64 values that
// encoding/json produces for numbers.
func (r Record) Int(key string) int {
	switch v := r[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		n, _ := strconv.Atoi(v)
		return n
	}
	return 0
}

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrProtected is returned when deleting a system-protected record.
	ErrProtected = errors.New("record is protected")
	// ErrUnknownCollection is returned for collections outside Collections.
	ErrUnknownCollection = errors.New("unknown collection")
)

// EntityStore is the read/write surface handlers depend on.
type EntityStore interface {
	List(collection string) ([]Record, error)
	GetByID(collection, id string) (Record, error)
	Create(collection string, data Record) (string, error)
	Update(collection, id string, data Record) error
	Delete(collection, id string) error
}

// FileStore is the JSON flat-file implementation of EntityStore,
// InventoryStore and the activity log. All operations are serialized
// with a single RWMutex; files are written atomically.
type FileStore struct {
	dataDir string
	mu      sync.RWMutex
	now     func() time.Time
}

// Open prepares a FileStore rooted at dataDir, creating the directory
// and the protected main department/store when missing.
func Open(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	s := &FileStore{dataDir: dataDir, now: time.Now}
	if err := s.ensureMainEntities(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) filePath(collection string) string {
	return filepath.Join(s.dataDir, collection+".json")
}

func knownCollection(collection string) bool {
	for _, c := range Collections {
		if c == collection {
			return true
		}
	}
	return false
}

// load reads a collection without taking the lock. Missing or corrupt
// files read as empty, matching the tolerant read behavior of the rest
// of the system.
func (s *FileStore) load(collection string) ([]Record, error) {
	if !knownCollection(collection) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	data, err := os.ReadFile(s.filePath(collection))
	if err != nil {
		if os.IsNotExist(err) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", collection, err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return []Record{}, nil
	}
	return records, nil
}

// save writes a collection atomically (temp file + rename).
func (s *FileStore) save(collection string, records []Record) error {
	if !knownCollection(collection) {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", collection, err)
	}
	path := s.filePath(collection)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", collection, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", collection, err)
	}
	return nil
}

// generateID returns the next zero-padded ID for a collection: highest
// numeric ID plus one, "01" for an empty collection.
func generateID(records []Record) string {
	maxID := 0
	for _, r := range records {
		n, err := strconv.Atoi(r.ID())
		if err != nil {
			continue
		}
		if n > maxID {
			maxID = n
		}
	}
	return fmt.Sprintf("%02d", maxID+1)
}

// List returns all records of a collection.
func (s *FileStore) List(collection string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load(collection)
}

// GetByID returns a single record or ErrNotFound.
func (s *FileStore) GetByID(collection, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
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

// Create appends a record, assigning its ID and created_at.
func (s *FileStore) Create(collection string, data Record) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.load(collection)
	if err != nil {
		return "", err
	}
	id := generateID(records)
	data["id"] = id
	data["created_at"] = s.now().Format(time.RFC3339)
	records = append(records, data)
	if err := s.save(collection, records); err != nil {
		return "", err
	}
	return id, nil
}

// Update merges data into an existing record and stamps updated_at.
// Fields absent from data are preserved.
func (s *FileStore) Update(collection, id string, data Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.load(collection)
	if err != nil {
		return err
	}
	for i, r := range records {
		if r.ID() != id {
			continue
		}
		merged := Record{}
		for k, v := range r {
			merged[k] = v
		}
		for k, v := range data {
			merged[k] = v
		}
		merged["id"] = id
		merged["updated_at"] = s.now().Format(time.RFC3339)
		records[i] = merged
		return s.save(collection, records)
	}
	return fmt.Errorf("%s %s: %w", collection, id, ErrNotFound)
}

// Delete removes a record. The main department and main store ("01")
// are protected; deleting a department cascades to its store and users.
func (s *FileStore) Delete(collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if (collection == Departments || collection == Stores) && id == MainID {
		return fmt.Errorf("%s %s: %w", collection, id, ErrProtected)
	}
	if collection == Departments {
		return s.deleteDepartmentLocked(id)
	}
	return s.deleteLocked(collection, id)
}

func (s *FileStore) deleteLocked(collection, id string) error {
	records, err := s.load(collection)
	if err != nil {
		return err
	}
	kept := records[:0]
	found := false
	for _, r := range records {
		if r.ID() == id {
			found = true
			continue
		}
		kept = append(kept, r)
	}
	if !found {
		return fmt.Errorf("%s %s: %w", collection, id, ErrNotFound)
	}
	return s.save(collection, kept)
}

// deleteDepartmentLocked removes a department together with its stores
// and department users.
func (s *FileStore) deleteDepartmentLocked(id string) error {
	if err := s.deleteLocked(Departments, id); err != nil {
		return err
	}
	stores, err := s.load(Stores)
	if err != nil {
		return err
	}
	kept := stores[:0]
	for _, st := range stores {
		if st.Str("department_id") == id {
			continue
		}
		kept = append(kept, st)
	}
	if err := s.save(Stores, kept); err != nil {
		return err
	}
	users, err := s.load(Users)
	if err != nil {
		return err
	}
	keptUsers := users[:0]
	for _, u := range users {
		if u.Str("department_id") == id {
			continue
		}
		keptUsers = append(keptUsers, u)
	}
	return s.save(Users, keptUsers)
}

// MainID is the ID of the protected main department and main store.
const MainID = "01"

// ensureMainEntities recreates the main department and main store when
// they are missing, so the system always has a home for inventory.
func (s *FileStore) ensureMainEntities() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	departments, err := s.load(Departments)
	if err != nil {
		return err
	}
	hasMainDept := false
	for _, d := range departments {
		if d.ID() == MainID {
			hasMainDept = true
			break
		}
	}
	if !hasMainDept {
		departments = append(departments, Record{
			"id":                 MainID,
			"name":               "Main Pharmacy",
			"description":        "Main hospital pharmacy department",
			"responsible_person": "Madam Tina",
			"telephone":          "+1234567890",
			"notes":              "Main hospital pharmacy department - System Protected",
			"created_at":         s.now().Format(time.RFC3339),
		})
		if err := s.save(Departments, departments); err != nil {
			return err
		}
	}

	stores, err := s.load(Stores)
	if err != nil {
		return err
	}
	hasMainStore := false
	for _, st := range stores {
		if st.ID() == MainID {
			hasMainStore = true
			break
		}
	}
	if !hasMainStore {
		stores = append(stores, Record{
			"id":            MainID,
			"name":          "Main Pharmacy Store",
			"department_id": MainID,
			"location":      "Main Building, Ground Floor",
			"description":   "Main pharmacy store - System Protected",
			"inventory":     map[string]any{},
			"created_at":    s.now().Format(time.RFC3339),
		})
		if err := s.save(Stores, stores); err != nil {
			return err
		}
	}
	return nil
}

// CreateStoreForDepartment creates the backing store for a department,
// mirroring what adding a department through the UI does.
func (s *FileStore) CreateStoreForDepartment(departmentID, departmentName string) (string, error) {
	return s.Create(Stores, Record{
		"name":          departmentName + " Store",
		"department_id": departmentID,
		"location":      "",
		"description":   fmt.Sprintf("Store for %s department", departmentName),
		"inventory":     map[string]any{},
	})
}

// SortedByName returns records ordered by their lowercased name field.
func SortedByName(records []Record) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Str("name")) < strings.ToLower(out[j].Str("name"))
	})
	return out
}
