package assistant

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"pharmassist/internal/store"
)

// CRUDHandler serves the create, update and delete commands plus the
// inventory transfer. Destructive commands are two-phase: the first
// pass returns a confirmation prompt with the exact phrase to type,
// the literal phrase then executes.
type CRUDHandler struct {
	store Store
	now   func() time.Time
}

// NewCRUDHandler creates the handler.
func NewCRUDHandler(s Store) *CRUDHandler {
	return &CRUDHandler{store: s, now: time.Now}
}

var crudQueryTypes = []string{
	"add_medicine", "add_patient", "add_supplier", "add_department",
	"update_patient", "delete_medicine", "transfer_inventory",
}

func (h *CRUDHandler) SupportedQueryTypes() []string { return crudQueryTypes }

func (h *CRUDHandler) CanHandle(queryType string) bool {
	return containsString(crudQueryTypes, queryType)
}

func (h *CRUDHandler) Handle(ctx context.Context, queryType, input, userID string) Result {
	switch queryType {
	case "add_medicine":
		return h.addMedicine(input, userID)
	case "add_patient":
		return h.addPatient(input, userID)
	case "add_supplier":
		return h.addSupplier(input, userID)
	case "add_department":
		return h.addDepartment(input, userID)
	case "update_patient":
		return h.updatePatient(input, userID)
	case "delete_medicine":
		return h.deleteMedicine(input)
	case "transfer_inventory":
		return h.transferInventory(input)
	}
	return errorResult(fmt.Sprintf("Unknown command type: %s", queryType))
}

// Field extraction patterns. Values run to the next comma.
var (
	namePattern        = regexp.MustCompile(`called\s+([^,\s]+(?:\s+[^,\s]+)*)`)
	namedPattern       = regexp.MustCompile(`named?\s+([^,\s]+(?:\s+[^,\s]+)*)`)
	supplierPattern    = regexp.MustCompile(`supplier\s+([^,\s]+(?:\s+[^,\s]+)*)`)
	dosagePattern      = regexp.MustCompile(`dosage\s+([^,\s]+(?:\s+[^,\s]+)*)`)
	formPattern        = regexp.MustCompile(`form\s+([^,\s]+)`)
	notesPattern       = regexp.MustCompile(`notes?\s+([^,]+)`)
	departmentPattern  = regexp.MustCompile(`department\s+([^,\s]+(?:\s+[^,\s]+)*)`)
	historyPattern     = regexp.MustCompile(`medical\s+history\s+([^,]+)`)
	historySetPattern  = regexp.MustCompile(`medical\s+history\s+to\s+(.+)`)
	genderPattern      = regexp.MustCompile(`gender\s+(male|female|other)`)
	agePattern         = regexp.MustCompile(`age\s+(\d+)`)
	contactPattern     = regexp.MustCompile(`(?:contact|phone)\s+([^,\s]+)`)
	emailPattern       = regexp.MustCompile(`email\s+([^,\s]+)`)
	typePattern        = regexp.MustCompile(`type\s+([^,\s]+)`)
	responsiblePattern = regexp.MustCompile(`responsible\s+person\s+([^,\s]+(?:\s+[^,\s]+)*)`)
	patientIDPattern   = regexp.MustCompile(`patient\s+(\w+)`)
	medicineIDPattern  = regexp.MustCompile(`id\s+(\w+)`)

	transferQtyPattern  = regexp.MustCompile(`transfer\s+(\d+)`)
	transferMedPattern  = regexp.MustCompile(`of\s+([^,\s]+(?:\s+[^,\s]+)*?)\s+from`)
	transferFromPattern = regexp.MustCompile(`from\s+([^,\s]+(?:\s+[^,\s]+)*?)\s+to`)
	transferToPattern   = regexp.MustCompile(`to\s+([^,\s]+(?:\s+[^,\s]+)*)`)
)

// extract returns the first capture group of the pattern, trimmed.
func extract(re *regexp.Regexp, input string) string {
	if m := re.FindStringSubmatch(input); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func (h *CRUDHandler) addMedicine(input, userID string) Result {
	name := extract(namePattern, input)
	if name == "" {
		name = extract(namedPattern, input)
	}
	if name == "" {
		return errorResult("Please specify the medicine name, e.g. 'add new medicine called Aspirin'.")
	}

	supplierID := h.resolveSupplierID(extract(supplierPattern, input))
	form := extract(formPattern, input)
	if form == "" {
		form = "Tablet"
	}
	dosage := extract(dosagePattern, input)
	if dosage == "" {
		dosage = "1 unit"
	}
	notes := extract(notesPattern, input)
	if notes == "" {
		notes = "Medicine added via AI assistant on " + h.now().Format("2006-01-02")
	}

	record := store.Record{
		"name":            titleCase(name),
		"supplier_id":     supplierID,
		"form_dosage":     fmt.Sprintf("%s %s", form, dosage),
		"low_stock_limit": 10,
		"notes":           notes,
	}
	id, err := h.store.Create(store.Medicines, record)
	if err != nil {
		return errorResult(fmt.Sprintf("Error adding medicine: %v", err))
	}
	h.logActivity(userID, "CREATE", "medicine", id, "Added medicine "+record.Str("name"))

	var b strings.Builder
	b.WriteString("✅ **Medicine Added Successfully!**\n\n")
	fmt.Fprintf(&b, "**ID:** %s\n", id)
	fmt.Fprintf(&b, "**Name:** %s\n", record.Str("name"))
	fmt.Fprintf(&b, "**Form/Dosage:** %s\n", record.Str("form_dosage"))
	fmt.Fprintf(&b, "**Supplier:** %s\n", h.supplierName(supplierID))
	fmt.Fprintf(&b, "**Low Stock Limit:** %d\n", 10)
	fmt.Fprintf(&b, "**Notes:** %s", notes)
	return successResult(b.String(), map[string]any{"medicine_id": id, "medicine": record})
}

// resolveSupplierID matches a supplier by name, else falls back to the
// first supplier, else "01".
func (h *CRUDHandler) resolveSupplierID(name string) string {
	suppliers, err := h.store.List(store.Suppliers)
	if err != nil || len(suppliers) == 0 {
		return "01"
	}
	if name != "" {
		lower := strings.ToLower(name)
		for _, s := range suppliers {
			if strings.Contains(strings.ToLower(s.Str("name")), lower) {
				return s.ID()
			}
		}
	}
	return suppliers[0].ID()
}

func (h *CRUDHandler) supplierName(id string) string {
	s, err := h.store.GetByID(store.Suppliers, id)
	if err != nil {
		return "Supplier " + id
	}
	return orUnknown(s.Str("name"))
}

func (h *CRUDHandler) addPatient(input, userID string) Result {
	name := extract(namedPattern, input)
	if name == "" {
		name = extract(namePattern, input)
	}
	if name == "" {
		return errorResult("Please specify the patient name, e.g. 'add new patient named John Smith'.")
	}

	record := store.Record{
		"name":            titleCase(name),
		"gender":          titleCase(extract(genderPattern, strings.ToLower(input))),
		"medical_history": extract(historyPattern, input),
		"contact":         extract(contactPattern, input),
	}
	if age := extract(agePattern, input); age != "" {
		n, _ := strconv.Atoi(age)
		record["age"] = n
	}
	if dept := extract(departmentPattern, input); dept != "" {
		if id := h.resolveDepartmentID(dept); id != "" {
			record["department_id"] = id
		}
	}

	id, err := h.store.Create(store.Patients, record)
	if err != nil {
		return errorResult(fmt.Sprintf("Error adding patient: %v", err))
	}
	h.logActivity(userID, "CREATE", "patient", id, "Added patient "+record.Str("name"))

	var b strings.Builder
	b.WriteString("✅ **Patient Added Successfully!**\n\n")
	fmt.Fprintf(&b, "**ID:** %s\n", id)
	fmt.Fprintf(&b, "**Name:** %s\n", record.Str("name"))
	fmt.Fprintf(&b, "**Gender:** %s\n", orNA(record.Str("gender")))
	fmt.Fprintf(&b, "**Age:** %s\n", orNA(extract(agePattern, input)))
	fmt.Fprintf(&b, "**Medical History:** %s", orNA(record.Str("medical_history")))
	return successResult(b.String(), map[string]any{"patient_id": id, "patient": record})
}

func (h *CRUDHandler) resolveDepartmentID(name string) string {
	departments, err := h.store.List(store.Departments)
	if err != nil {
		return ""
	}
	lower := strings.ToLower(name)
	for _, d := range departments {
		if strings.Contains(strings.ToLower(d.Str("name")), lower) {
			return d.ID()
		}
	}
	return ""
}

func (h *CRUDHandler) addSupplier(input, userID string) Result {
	name := extract(namedPattern, input)
	if name == "" {
		name = extract(namePattern, input)
	}
	if name == "" {
		return errorResult("Please specify the supplier name, e.g. 'add new supplier named MedCorp'.")
	}
	record := store.Record{
		"name":    titleCase(name),
		"type":    orUnknown(extract(typePattern, input)),
		"contact": extract(contactPattern, input),
		"email":   extract(emailPattern, input),
	}
	id, err := h.store.Create(store.Suppliers, record)
	if err != nil {
		return errorResult(fmt.Sprintf("Error adding supplier: %v", err))
	}
	h.logActivity(userID, "CREATE", "supplier", id, "Added supplier "+record.Str("name"))

	var b strings.Builder
	b.WriteString("✅ **Supplier Added Successfully!**\n\n")
	fmt.Fprintf(&b, "**ID:** %s\n", id)
	fmt.Fprintf(&b, "**Name:** %s\n", record.Str("name"))
	fmt.Fprintf(&b, "**Type:** %s\n", record.Str("type"))
	fmt.Fprintf(&b, "**Contact:** %s\n", orNA(record.Str("contact")))
	fmt.Fprintf(&b, "**Email:** %s", orNA(record.Str("email")))
	return successResult(b.String(), map[string]any{"supplier_id": id, "supplier": record})
}

// addDepartment also creates the department's store, the same way the
// management UI does.
func (h *CRUDHandler) addDepartment(input, userID string) Result {
	name := extract(namedPattern, input)
	if name == "" {
		name = extract(namePattern, input)
	}
	if name == "" {
		return errorResult("Please specify the department name, e.g. 'add new department called Cardiology'.")
	}
	record := store.Record{
		"name":               titleCase(name),
		"responsible_person": extract(responsiblePattern, input),
		"telephone":          extract(contactPattern, input),
	}
	id, err := h.store.Create(store.Departments, record)
	if err != nil {
		return errorResult(fmt.Sprintf("Error adding department: %v", err))
	}
	storeID, err := h.store.CreateStoreForDepartment(id, record.Str("name"))
	if err != nil {
		return errorResult(fmt.Sprintf("Department created but its store failed: %v", err))
	}
	h.logActivity(userID, "CREATE", "department", id, "Added department "+record.Str("name"))

	var b strings.Builder
	b.WriteString("✅ **Department Added Successfully!**\n\n")
	fmt.Fprintf(&b, "**ID:** %s\n", id)
	fmt.Fprintf(&b, "**Name:** %s\n", record.Str("name"))
	fmt.Fprintf(&b, "**Responsible Person:** %s\n", orNA(record.Str("responsible_person")))
	fmt.Fprintf(&b, "**Store Created:** %s Store (ID: %s)", record.Str("name"), storeID)
	return successResult(b.String(), map[string]any{"department_id": id, "store_id": storeID})
}

func (h *CRUDHandler) updatePatient(input, userID string) Result {
	patientID := extract(patientIDPattern, strings.ToLower(input))
	if patientID == "" {
		return errorResult("Please specify the patient, e.g. 'update patient 03 medical history to diabetes'.")
	}
	history := extract(historySetPattern, input)
	if history == "" {
		return errorResult("Please specify the new medical history, e.g. 'update patient 03 medical history to diabetes'.")
	}
	patient, err := h.store.GetByID(store.Patients, patientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errorResult(fmt.Sprintf("Patient with ID %s not found.", patientID))
		}
		return errorResult(fmt.Sprintf("Error reading patient: %v", err))
	}
	if err := h.store.Update(store.Patients, patientID, store.Record{"medical_history": history}); err != nil {
		return errorResult(fmt.Sprintf("Error updating patient: %v", err))
	}
	h.logActivity(userID, "UPDATE", "patient", patientID, "Updated medical history")

	var b strings.Builder
	b.WriteString("✅ **Patient Updated Successfully!**\n\n")
	fmt.Fprintf(&b, "**ID:** %s\n", patientID)
	fmt.Fprintf(&b, "**Name:** %s\n", orUnknown(patient.Str("name")))
	fmt.Fprintf(&b, "**New Medical History:** %s", history)
	return successResult(b.String(), map[string]any{"patient_id": patientID})
}

// deleteMedicine is phase one: it looks up the medicine and returns
// the confirmation prompt. No state is stored; any reply other than
// the literal phrase cancels implicitly.
func (h *CRUDHandler) deleteMedicine(input string) Result {
	medicineID := extract(medicineIDPattern, strings.ToLower(input))
	if medicineID == "" {
		medicineID = extract(regexp.MustCompile(`medicine\s+(\w+)`), strings.ToLower(input))
	}
	if medicineID == "" {
		return errorResult("Please specify the medicine, e.g. 'delete medicine with id 05'.")
	}
	medicine, err := h.store.GetByID(store.Medicines, medicineID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errorResult(fmt.Sprintf("Medicine with ID %s not found.", medicineID))
		}
		return errorResult(fmt.Sprintf("Error reading medicine: %v", err))
	}
	stock, _ := h.store.GetStock(medicineID, "")

	var b strings.Builder
	b.WriteString("⚠️ **Deletion Confirmation Required**\n\n")
	b.WriteString("You are about to delete:\n")
	fmt.Fprintf(&b, "**Medicine:** %s (ID: %s)\n", orUnknown(medicine.Str("name")), medicineID)
	fmt.Fprintf(&b, "**Current Stock:** %d units\n\n", stock)
	b.WriteString("This action cannot be undone.\n\n")
	fmt.Fprintf(&b, "To confirm deletion, please type: **'CONFIRM DELETE MEDICINE %s'**\n", medicineID)
	b.WriteString("To cancel, type anything else.")

	return Result{
		Success:              true,
		Response:             b.String(),
		RequiresConfirmation: true,
		ConfirmationData: map[string]any{
			"action":        "delete_medicine",
			"medicine_id":   medicineID,
			"medicine_name": medicine.Str("name"),
			"current_stock": stock,
		},
	}
}

// transferInventory is phase one of a transfer. The stock check runs
// before the confirmation prompt so an impossible transfer fails fast.
func (h *CRUDHandler) transferInventory(input string) Result {
	lower := strings.ToLower(input)
	qtyStr := extract(transferQtyPattern, lower)
	medName := extract(transferMedPattern, lower)
	fromName := extract(transferFromPattern, lower)
	toName := extract(transferToPattern, lower)
	if qtyStr == "" || fromName == "" || toName == "" {
		return errorResult("Please phrase the transfer like 'transfer 50 units of aspirin from main pharmacy to emergency'.")
	}
	qty, _ := strconv.Atoi(qtyStr)
	medName = strings.TrimPrefix(medName, "units of ")
	medName = strings.TrimPrefix(medName, "unit of ")
	medName = strings.TrimSpace(strings.TrimPrefix(medName, "units "))

	medicine := h.findMedicineByName(medName)
	if medicine == nil {
		return errorResult(fmt.Sprintf("Medicine '%s' not found.", medName))
	}
	fromID := h.resolveDepartmentID(fromName)
	if fromID == "" {
		return errorResult(fmt.Sprintf("Department '%s' not found.", fromName))
	}
	toID := h.resolveDepartmentID(toName)
	if toID == "" {
		return errorResult(fmt.Sprintf("Department '%s' not found.", toName))
	}

	available, err := h.store.GetStock(medicine.ID(), fromID)
	if err != nil {
		return errorResult(fmt.Sprintf("Error reading stock: %v", err))
	}
	if available < qty {
		from, _ := h.store.GetByID(store.Departments, fromID)
		return errorResult((&store.ErrInsufficientStock{
			Department: orUnknown(from.Str("name")),
			Available:  available,
			Requested:  qty,
		}).Error())
	}

	var b strings.Builder
	b.WriteString("🔄 **Transfer Confirmation Required**\n\n")
	b.WriteString("You are about to transfer:\n")
	fmt.Fprintf(&b, "**Medicine:** %s\n", orUnknown(medicine.Str("name")))
	fmt.Fprintf(&b, "**Quantity:** %d units\n", qty)
	fmt.Fprintf(&b, "**From:** %s\n", h.departmentName(fromID))
	fmt.Fprintf(&b, "**To:** %s\n\n", h.departmentName(toID))
	fmt.Fprintf(&b, "To confirm, please type: **'CONFIRM TRANSFER %s %d %s %s'**\n", medicine.ID(), qty, fromID, toID)
	b.WriteString("To cancel, type anything else.")

	return Result{
		Success:              true,
		Response:             b.String(),
		RequiresConfirmation: true,
		ConfirmationData: map[string]any{
			"action":       "transfer_inventory",
			"medicine_id":  medicine.ID(),
			"quantity":     qty,
			"from_dept_id": fromID,
			"to_dept_id":   toID,
		},
	}
}

func (h *CRUDHandler) findMedicineByName(name string) store.Record {
	medicines, err := h.store.List(store.Medicines)
	if err != nil {
		return nil
	}
	lower := strings.ToLower(strings.TrimSpace(name))
	for _, m := range medicines {
		if strings.Contains(strings.ToLower(m.Str("name")), lower) {
			return m
		}
	}
	return nil
}

func (h *CRUDHandler) departmentName(id string) string {
	d, err := h.store.GetByID(store.Departments, id)
	if err != nil {
		return "Department " + id
	}
	return orUnknown(d.Str("name"))
}

// Literal confirmation phrases typed as the follow-up turn.
var (
	confirmDeletePattern   = regexp.MustCompile(`(?i)^\s*confirm\s+delete\s+medicine\s+(\w+)\s*$`)
	confirmTransferPattern = regexp.MustCompile(`(?i)^\s*confirm\s+transfer\s+(\w+)\s+(\d+)\s+(\w+)\s+(\w+)\s*$`)
)

// MatchConfirmPhrase reports whether the input is one of the literal
// destructive-confirmation phrases.
func MatchConfirmPhrase(input string) bool {
	return confirmDeletePattern.MatchString(input) || confirmTransferPattern.MatchString(input)
}

// ExecuteConfirmPhrase runs a matched confirmation phrase.
func (h *CRUDHandler) ExecuteConfirmPhrase(input, userID string) Result {
	if m := confirmDeletePattern.FindStringSubmatch(input); m != nil {
		return h.executeDelete(m[1], userID)
	}
	if m := confirmTransferPattern.FindStringSubmatch(input); m != nil {
		qty, _ := strconv.Atoi(m[2])
		return h.executeTransfer(m[1], qty, m[3], m[4], userID)
	}
	return errorResult("Unrecognized confirmation phrase.")
}

func (h *CRUDHandler) executeDelete(medicineID, userID string) Result {
	medicine, err := h.store.GetByID(store.Medicines, medicineID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errorResult(fmt.Sprintf("Medicine with ID %s not found.", medicineID))
		}
		return errorResult(fmt.Sprintf("Error reading medicine: %v", err))
	}
	name := orUnknown(medicine.Str("name"))
	if err := h.store.Delete(store.Medicines, medicineID); err != nil {
		return errorResult(fmt.Sprintf("Error deleting medicine: %v", err))
	}
	h.logActivity(userID, "DELETE", "medicine", medicineID, "Deleted medicine "+name)
	return successResult(fmt.Sprintf("✅ **Medicine Deleted**\n\n**%s** (ID: %s) has been removed from the database.", name, medicineID),
		map[string]any{"medicine_id": medicineID, "medicine_name": name})
}

func (h *CRUDHandler) executeTransfer(medicineID string, qty int, fromID, toID, userID string) Result {
	if err := h.store.Transfer(medicineID, qty, fromID, toID); err != nil {
		var insufficient *store.ErrInsufficientStock
		if errors.As(err, &insufficient) {
			return errorResult(insufficient.Error())
		}
		if errors.Is(err, store.ErrNotFound) {
			return errorResult("Transfer failed: medicine or department store not found.")
		}
		return errorResult(fmt.Sprintf("Error executing transfer: %v", err))
	}
	medicine, _ := h.store.GetByID(store.Medicines, medicineID)
	name := "Medicine " + medicineID
	if medicine != nil {
		name = orUnknown(medicine.Str("name"))
	}
	h.logActivity(userID, "TRANSFER", "medicine", medicineID,
		fmt.Sprintf("Transferred %d units from %s to %s", qty, fromID, toID))

	var b strings.Builder
	b.WriteString("✅ **Transfer Completed**\n\n")
	fmt.Fprintf(&b, "**Medicine:** %s\n", name)
	fmt.Fprintf(&b, "**Quantity:** %d units\n", qty)
	fmt.Fprintf(&b, "**From:** %s\n", h.departmentName(fromID))
	fmt.Fprintf(&b, "**To:** %s", h.departmentName(toID))
	return successResult(b.String(), map[string]any{
		"medicine_id": medicineID, "quantity": qty,
		"from_dept_id": fromID, "to_dept_id": toID,
	})
}

func (h *CRUDHandler) logActivity(userID, action, entityType, entityID, details string) {
	_ = h.store.Append(store.ActivityEntry{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
	})
}
