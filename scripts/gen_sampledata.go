// Generates a sample pharmacy dataset for local development and demos.
//
// Usage: go run scripts/gen_sampledata.go <data_dir>
package main

import (
	"fmt"
	"os"

	"pharmassist/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: gen_sampledata <data_dir>")
		os.Exit(1)
	}
	dataDir := os.Args[1]

	s, err := store.Open(dataDir)
	if err != nil {
		fmt.Printf("Failed to open data store: %v\n", err)
		os.Exit(1)
	}

	if err := populate(s); err != nil {
		fmt.Printf("Failed to generate sample data: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Sample pharmacy data written to %s\n", dataDir)
}

func populate(s *store.FileStore) error {
	// Opening the store already seeded the main department and its
	// store; add an emergency department alongside.
	emergencyID, err := s.Create(store.Departments, store.Record{"name": "Emergency"})
	if err != nil {
		return err
	}
	emergencyStoreID, err := s.CreateStoreForDepartment(emergencyID, "Emergency")
	if err != nil {
		return err
	}

	suppliers := []store.Record{
		{"name": "MediSupply Co", "phone": "555-0101", "email": "orders@medisupply.example"},
		{"name": "PharmaDirect", "phone": "555-0102", "email": "sales@pharmadirect.example"},
	}
	supplierIDs := make([]string, 0, len(suppliers))
	for _, r := range suppliers {
		id, err := s.Create(store.Suppliers, r)
		if err != nil {
			return err
		}
		supplierIDs = append(supplierIDs, id)
	}

	medicines := []store.Record{
		{"name": "Aspirin", "form_dosage": "Tablet 100mg", "low_stock_limit": 50, "supplier_id": supplierIDs[0]},
		{"name": "Ibuprofen", "form_dosage": "Tablet 200mg", "low_stock_limit": 40, "supplier_id": supplierIDs[0]},
		{"name": "Amoxicillin", "form_dosage": "Capsule 500mg", "low_stock_limit": 30, "supplier_id": supplierIDs[1]},
		{"name": "Paracetamol", "form_dosage": "Syrup 120mg/5ml", "low_stock_limit": 25, "supplier_id": supplierIDs[1]},
		{"name": "Omeprazole", "form_dosage": "Capsule 20mg", "low_stock_limit": 20, "supplier_id": supplierIDs[1]},
	}
	medicineIDs := make([]string, 0, len(medicines))
	for _, r := range medicines {
		id, err := s.Create(store.Medicines, r)
		if err != nil {
			return err
		}
		medicineIDs = append(medicineIDs, id)
	}

	// Stock the main store generously and the emergency store lightly.
	mainInventory := map[string]any{}
	emergencyInventory := map[string]any{}
	for i, id := range medicineIDs {
		mainInventory[id] = 200 - 30*i
		emergencyInventory[id] = 20
	}
	if err := s.Update(store.Stores, store.MainID, store.Record{"inventory": mainInventory}); err != nil {
		return err
	}
	if err := s.Update(store.Stores, emergencyStoreID, store.Record{"inventory": emergencyInventory}); err != nil {
		return err
	}

	patients := []store.Record{
		{"name": "John Smith", "age": 45, "gender": "male", "phone": "555-0201", "medical_history": "hypertension"},
		{"name": "Mary Johnson", "age": 62, "gender": "female", "phone": "555-0202", "medical_history": "diabetes"},
		{"name": "Ali Hassan", "age": 29, "gender": "male", "phone": "555-0203", "medical_history": "asthma"},
	}
	for _, r := range patients {
		if _, err := s.Create(store.Patients, r); err != nil {
			return err
		}
	}

	users := []store.Record{
		{"name": "Sarah Chen", "role": "pharmacist", "department_id": store.MainID},
		{"name": "David Okafor", "role": "pharmacist", "department_id": emergencyID},
	}
	for _, r := range users {
		if _, err := s.Create(store.Users, r); err != nil {
			return err
		}
	}

	// A few historical movements so activity views have content.
	if _, err := s.Create(store.Purchases, store.Record{
		"medicine_id": medicineIDs[0], "supplier_id": supplierIDs[0], "quantity": 100,
	}); err != nil {
		return err
	}
	if _, err := s.Create(store.Consumption, store.Record{
		"medicine_id": medicineIDs[1], "department_id": store.MainID, "quantity": 10,
	}); err != nil {
		return err
	}
	return s.Append(store.ActivityEntry{
		UserID: "system", Action: "SEED", EntityType: "database",
		Details: fmt.Sprintf("Seeded sample data with %d medicines", len(medicineIDs)),
	})
}
