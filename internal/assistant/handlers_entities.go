package assistant

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"pharmassist/internal/store"
)

// EntityHandler serves the query types for patients, suppliers,
// departments, stores, purchases, consumption and transfers, plus the
// whole-database overview and the help text.
type EntityHandler struct {
	store    Store
	patterns *PatternCatalog
}

// NewEntityHandler creates the handler.
func NewEntityHandler(s Store, patterns *PatternCatalog) *EntityHandler {
	return &EntityHandler{store: s, patterns: patterns}
}

var entityQueryTypes = []string{
	"patients_count", "patients_list", "patients_by_department",
	"patients_by_gender", "patients_by_age", "patients_with_allergies",
	"patients_consumption", "patients_recent", "patients_analysis",

	"suppliers_count", "suppliers_list", "suppliers_by_type",
	"suppliers_performance", "suppliers_contact_info",
	"suppliers_purchase_history", "suppliers_analysis",

	"departments_count", "departments_list", "departments_staff",
	"departments_inventory", "departments_consumption", "departments_analysis",

	"stores_count", "stores_list", "stores_inventory",
	"stores_capacity", "stores_by_department", "stores_analysis",

	"purchases_count", "purchases_list", "purchases_recent",
	"purchases_by_supplier", "purchases_expensive", "purchases_total_cost",
	"purchases_by_date", "purchases_analysis",

	"consumption_count", "consumption_list", "consumption_by_patient",
	"consumption_by_medicine", "consumption_by_department",
	"consumption_recent", "consumption_trends", "consumption_analysis",

	"transfers_count", "transfers_list", "transfers_recent",
	"transfers_by_department", "transfers_pending", "transfers_routes",
	"transfers_analysis",

	"database_overview", "help_query",
}

func (h *EntityHandler) SupportedQueryTypes() []string { return entityQueryTypes }

func (h *EntityHandler) CanHandle(queryType string) bool {
	return containsString(entityQueryTypes, queryType)
}

func (h *EntityHandler) Handle(ctx context.Context, queryType, input, userID string) Result {
	switch {
	case strings.HasPrefix(queryType, "patients_"):
		return h.handlePatients(queryType, input)
	case strings.HasPrefix(queryType, "suppliers_"):
		return h.handleSuppliers(queryType)
	case strings.HasPrefix(queryType, "departments_"):
		return h.handleDepartments(queryType)
	case strings.HasPrefix(queryType, "stores_"):
		return h.handleStores(queryType)
	case strings.HasPrefix(queryType, "purchases_"):
		return h.handlePurchases(queryType, input)
	case strings.HasPrefix(queryType, "consumption_"):
		return h.handleConsumption(queryType)
	case strings.HasPrefix(queryType, "transfers_"):
		return h.handleTransfers(queryType)
	case queryType == "database_overview":
		return h.handleOverview()
	case queryType == "help_query":
		return h.handleHelp()
	}
	return errorResult(fmt.Sprintf("Unknown query type: %s", queryType))
}

func (h *EntityHandler) list(collection string) ([]store.Record, Result, bool) {
	records, err := h.store.List(collection)
	if err != nil {
		return nil, errorResult(fmt.Sprintf("Error reading %s: %v", collection, err)), false
	}
	return records, Result{}, true
}

func (h *EntityHandler) nameIndex(collection string) map[string]string {
	names := make(map[string]string)
	records, err := h.store.List(collection)
	if err != nil {
		return names
	}
	for _, r := range records {
		names[r.ID()] = orUnknown(r.Str("name"))
	}
	return names
}

// --- patients ---

func (h *EntityHandler) handlePatients(queryType, input string) Result {
	patients, errRes, ok := h.list(store.Patients)
	if !ok {
		return errRes
	}
	switch queryType {
	case "patients_count":
		return h.patientsCount(patients)
	case "patients_list", "patients_recent":
		rows := patients
		title := "ALL PATIENTS LIST"
		if queryType == "patients_recent" {
			rows = recentRecords(patients, "created_at", 10)
			title = "RECENTLY REGISTERED PATIENTS"
		}
		return h.patientsList(rows, title, len(patients))
	case "patients_by_department":
		deptNames := h.nameIndex(store.Departments)
		groups := groupRecords(patients, func(p store.Record) string {
			if name, ok := deptNames[p.Str("department_id")]; ok {
				return name
			}
			return "Unassigned"
		})
		return groupedResult("👥", "PATIENTS BY DEPARTMENT", "patients", groups, patientLine)
	case "patients_by_gender":
		groups := groupRecords(patients, func(p store.Record) string {
			return orUnknown(titleCase(strings.ToLower(p.Str("gender"))))
		})
		return groupedResult("👥", "PATIENTS BY GENDER", "patients", groups, patientLine)
	case "patients_by_age":
		groups := groupRecords(patients, func(p store.Record) string { return ageBand(p.Int("age")) })
		return groupedResult("👥", "PATIENTS BY AGE GROUP", "patients", groups, patientLine)
	case "patients_with_allergies":
		var allergic []store.Record
		for _, p := range patients {
			history := strings.ToLower(p.Str("medical_history"))
			if strings.Contains(history, "allerg") {
				allergic = append(allergic, p)
			}
		}
		if len(allergic) == 0 {
			return successResult("No patients with recorded allergies were found.", nil)
		}
		var b strings.Builder
		b.WriteString("# 👥 **PATIENTS WITH ALLERGIES**\n\n")
		fmt.Fprintf(&b, "**Found:** %d patients\n\n", len(allergic))
		for i, p := range store.SortedByName(allergic) {
			fmt.Fprintf(&b, "%d. **%s** - %s\n", i+1, orUnknown(p.Str("name")), orNA(p.Str("medical_history")))
		}
		return successResult(b.String(), map[string]any{"patients": allergic, "count": len(allergic)})
	case "patients_consumption":
		return h.consumptionByKey("patient_id", h.nameIndex(store.Patients), "👥", "PATIENT CONSUMPTION")
	case "patients_analysis":
		return h.patientsAnalysis(patients)
	}
	return errorResult(fmt.Sprintf("Unknown patient query type: %s", queryType))
}

func patientLine(p store.Record) string {
	return fmt.Sprintf("• **%s** (Age: %d, %s)", orUnknown(p.Str("name")), p.Int("age"), orNA(p.Str("gender")))
}

func (h *EntityHandler) patientsCount(patients []store.Record) Result {
	var b strings.Builder
	b.WriteString("# 👥 **PATIENT COUNT**\n\n")
	fmt.Fprintf(&b, "**Total Patients:** %d\n", len(patients))
	if len(patients) > 0 {
		genders := make(map[string]int)
		totalAge := 0
		for _, p := range patients {
			genders[orUnknown(titleCase(strings.ToLower(p.Str("gender"))))]++
			totalAge += p.Int("age")
		}
		b.WriteString("\n## 📊 **Breakdown:**\n")
		for _, g := range sortedKeys(genders) {
			fmt.Fprintf(&b, "• **%s:** %d\n", g, genders[g])
		}
		fmt.Fprintf(&b, "• **Average Age:** %.1f\n", float64(totalAge)/float64(len(patients)))
	}
	return successResult(b.String(), map[string]any{"count": len(patients)})
}

func (h *EntityHandler) patientsList(patients []store.Record, title string, total int) Result {
	if len(patients) == 0 {
		return successResult("No patients found in the database.", nil)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# 👥 **%s**\n\n", title)
	fmt.Fprintf(&b, "**Total Patients:** %d\n\n", total)
	deptNames := h.nameIndex(store.Departments)
	for i, p := range store.SortedByName(patients) {
		dept := deptNames[p.Str("department_id")]
		if dept == "" {
			dept = "Unassigned"
		}
		fmt.Fprintf(&b, "%d. **%s** (Age: %d, %s) - %s\n",
			i+1, orUnknown(p.Str("name")), p.Int("age"), orNA(p.Str("gender")), dept)
	}
	return successResult(b.String(), map[string]any{"patients": patients, "total_count": total})
}

func (h *EntityHandler) patientsAnalysis(patients []store.Record) Result {
	if len(patients) == 0 {
		return successResult("No patients found in the database.", nil)
	}
	genders := make(map[string]int)
	depts := make(map[string]int)
	totalAge := 0
	deptNames := h.nameIndex(store.Departments)
	for _, p := range patients {
		genders[orUnknown(titleCase(strings.ToLower(p.Str("gender"))))]++
		dept := deptNames[p.Str("department_id")]
		if dept == "" {
			dept = "Unassigned"
		}
		depts[dept]++
		totalAge += p.Int("age")
	}
	var b strings.Builder
	b.WriteString("# 👥 **COMPREHENSIVE PATIENT ANALYSIS**\n\n")
	b.WriteString("## 📊 **Overview:**\n")
	fmt.Fprintf(&b, "• **Total Patients:** %d\n", len(patients))
	fmt.Fprintf(&b, "• **Average Age:** %.1f\n\n", float64(totalAge)/float64(len(patients)))
	b.WriteString("## 🚻 **By Gender:**\n")
	for _, g := range sortedKeys(genders) {
		fmt.Fprintf(&b, "• **%s:** %d\n", g, genders[g])
	}
	b.WriteString("\n## 🏥 **By Department:**\n")
	for _, d := range sortedKeys(depts) {
		fmt.Fprintf(&b, "• **%s:** %d\n", d, depts[d])
	}
	return successResult(b.String(), map[string]any{"total_count": len(patients)})
}

// --- suppliers ---

func (h *EntityHandler) handleSuppliers(queryType string) Result {
	suppliers, errRes, ok := h.list(store.Suppliers)
	if !ok {
		return errRes
	}
	switch queryType {
	case "suppliers_count":
		return countResult("🏢", "SUPPLIER COUNT", "Suppliers", len(suppliers))
	case "suppliers_list":
		return simpleList("🏢", "ALL SUPPLIERS LIST", "suppliers", suppliers, func(s store.Record) string {
			return fmt.Sprintf("• **%s** (%s)", orUnknown(s.Str("name")), orNA(s.Str("type")))
		})
	case "suppliers_by_type":
		groups := groupRecords(suppliers, func(s store.Record) string { return orUnknown(s.Str("type")) })
		return groupedResult("🏢", "SUPPLIERS BY TYPE", "suppliers", groups, func(s store.Record) string {
			return fmt.Sprintf("• **%s**", orUnknown(s.Str("name")))
		})
	case "suppliers_contact_info":
		if len(suppliers) == 0 {
			return successResult("No suppliers found in the database.", nil)
		}
		var b strings.Builder
		b.WriteString("# 🏢 **SUPPLIER CONTACT INFORMATION**\n\n")
		for i, s := range store.SortedByName(suppliers) {
			fmt.Fprintf(&b, "%d. **%s**\n", i+1, orUnknown(s.Str("name")))
			fmt.Fprintf(&b, "   📞 %s | ✉️ %s\n\n", orNA(s.Str("contact")), orNA(s.Str("email")))
		}
		return successResult(b.String(), map[string]any{"suppliers": suppliers})
	case "suppliers_performance", "suppliers_purchase_history", "suppliers_analysis":
		return h.suppliersPurchaseAnalysis(suppliers, queryType)
	}
	return errorResult(fmt.Sprintf("Unknown supplier query type: %s", queryType))
}

func (h *EntityHandler) suppliersPurchaseAnalysis(suppliers []store.Record, queryType string) Result {
	if len(suppliers) == 0 {
		return successResult("No suppliers found in the database.", nil)
	}
	purchases, errRes, ok := h.list(store.Purchases)
	if !ok {
		return errRes
	}
	type supplierStats struct {
		name  string
		count int
		total float64
	}
	byID := make(map[string]*supplierStats, len(suppliers))
	for _, s := range suppliers {
		byID[s.ID()] = &supplierStats{name: orUnknown(s.Str("name"))}
	}
	for _, p := range purchases {
		st, ok := byID[p.Str("supplier_id")]
		if !ok {
			continue
		}
		st.count++
		st.total += recordCost(p)
	}
	stats := make([]*supplierStats, 0, len(byID))
	for _, st := range byID {
		stats = append(stats, st)
	}
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].total != stats[j].total {
			return stats[i].total > stats[j].total
		}
		return stats[i].name < stats[j].name
	})
	title := map[string]string{
		"suppliers_performance":      "SUPPLIER PERFORMANCE",
		"suppliers_purchase_history": "SUPPLIER PURCHASE HISTORY",
		"suppliers_analysis":         "COMPREHENSIVE SUPPLIER ANALYSIS",
	}[queryType]
	var b strings.Builder
	fmt.Fprintf(&b, "# 🏢 **%s**\n\n", title)
	fmt.Fprintf(&b, "**Total Suppliers:** %d\n", len(suppliers))
	fmt.Fprintf(&b, "**Total Purchases:** %d\n\n", len(purchases))
	b.WriteString("## 📊 **By Purchase Volume:**\n")
	for i, st := range stats {
		fmt.Fprintf(&b, "%d. **%s**: %d purchases, $%.2f total\n", i+1, st.name, st.count, st.total)
	}
	return successResult(b.String(), map[string]any{"supplier_count": len(suppliers), "purchase_count": len(purchases)})
}

// --- departments ---

func (h *EntityHandler) handleDepartments(queryType string) Result {
	departments, errRes, ok := h.list(store.Departments)
	if !ok {
		return errRes
	}
	switch queryType {
	case "departments_count":
		return countResult("🏥", "DEPARTMENT COUNT", "Departments", len(departments))
	case "departments_list":
		return simpleList("🏥", "ALL DEPARTMENTS LIST", "departments", departments, func(d store.Record) string {
			return fmt.Sprintf("• **%s** - Responsible: %s", orUnknown(d.Str("name")), orNA(d.Str("responsible_person")))
		})
	case "departments_staff":
		return h.departmentsStaff(departments)
	case "departments_inventory":
		return h.departmentsInventory(departments)
	case "departments_consumption":
		return h.consumptionByKey("department_id", h.nameIndex(store.Departments), "🏥", "DEPARTMENT CONSUMPTION")
	case "departments_analysis":
		return h.departmentsAnalysis(departments)
	}
	return errorResult(fmt.Sprintf("Unknown department query type: %s", queryType))
}

func (h *EntityHandler) departmentsStaff(departments []store.Record) Result {
	if len(departments) == 0 {
		return successResult("No departments found in the database.", nil)
	}
	users, _, _ := h.list(store.Users)
	byDept := groupRecords(users, func(u store.Record) string { return u.Str("department_id") })
	var b strings.Builder
	b.WriteString("# 🏥 **DEPARTMENT STAFF**\n\n")
	for _, d := range store.SortedByName(departments) {
		staff := byDept[d.ID()]
		fmt.Fprintf(&b, "## **%s**\n", orUnknown(d.Str("name")))
		fmt.Fprintf(&b, "• **Responsible Person:** %s\n", orNA(d.Str("responsible_person")))
		fmt.Fprintf(&b, "• **Staff Accounts:** %d\n\n", len(staff))
	}
	return successResult(b.String(), map[string]any{"department_count": len(departments)})
}

func (h *EntityHandler) departmentsInventory(departments []store.Record) Result {
	if len(departments) == 0 {
		return successResult("No departments found in the database.", nil)
	}
	medicines, errRes, ok := h.list(store.Medicines)
	if !ok {
		return errRes
	}
	medNames := make(map[string]string, len(medicines))
	for _, m := range medicines {
		medNames[m.ID()] = orUnknown(m.Str("name"))
	}
	var b strings.Builder
	b.WriteString("# 🏥 **DEPARTMENT INVENTORY**\n\n")
	for _, d := range store.SortedByName(departments) {
		fmt.Fprintf(&b, "## **%s**\n", orUnknown(d.Str("name")))
		total := 0
		lines := 0
		for _, m := range medicines {
			qty, err := h.store.GetStock(m.ID(), d.ID())
			if err != nil || qty == 0 {
				continue
			}
			fmt.Fprintf(&b, "• **%s**: %d units\n", medNames[m.ID()], qty)
			total += qty
			lines++
		}
		if lines == 0 {
			b.WriteString("• No stock held\n")
		}
		fmt.Fprintf(&b, "**Total:** %d units\n\n", total)
	}
	return successResult(b.String(), map[string]any{"department_count": len(departments)})
}

func (h *EntityHandler) departmentsAnalysis(departments []store.Record) Result {
	if len(departments) == 0 {
		return successResult("No departments found in the database.", nil)
	}
	patients, _, _ := h.list(store.Patients)
	stores, _, _ := h.list(store.Stores)
	patientsByDept := groupRecords(patients, func(p store.Record) string { return p.Str("department_id") })
	storesByDept := groupRecords(stores, func(s store.Record) string { return s.Str("department_id") })
	var b strings.Builder
	b.WriteString("# 🏥 **COMPREHENSIVE DEPARTMENT ANALYSIS**\n\n")
	fmt.Fprintf(&b, "**Total Departments:** %d\n\n", len(departments))
	for _, d := range store.SortedByName(departments) {
		fmt.Fprintf(&b, "## **%s**\n", orUnknown(d.Str("name")))
		fmt.Fprintf(&b, "• **Responsible:** %s\n", orNA(d.Str("responsible_person")))
		fmt.Fprintf(&b, "• **Patients:** %d\n", len(patientsByDept[d.ID()]))
		fmt.Fprintf(&b, "• **Stores:** %d\n\n", len(storesByDept[d.ID()]))
	}
	return successResult(b.String(), map[string]any{"department_count": len(departments)})
}

// --- stores ---

func (h *EntityHandler) handleStores(queryType string) Result {
	stores, errRes, ok := h.list(store.Stores)
	if !ok {
		return errRes
	}
	switch queryType {
	case "stores_count":
		return countResult("🏪", "STORE COUNT", "Stores", len(stores))
	case "stores_list":
		deptNames := h.nameIndex(store.Departments)
		return simpleList("🏪", "ALL STORES LIST", "stores", stores, func(s store.Record) string {
			dept := deptNames[s.Str("department_id")]
			if dept == "" {
				dept = "Unassigned"
			}
			return fmt.Sprintf("• **%s** - Department: %s", orUnknown(s.Str("name")), dept)
		})
	case "stores_inventory", "stores_capacity", "stores_analysis":
		return h.storesInventory(stores, queryType)
	case "stores_by_department":
		deptNames := h.nameIndex(store.Departments)
		groups := groupRecords(stores, func(s store.Record) string {
			if name, ok := deptNames[s.Str("department_id")]; ok {
				return name
			}
			return "Unassigned"
		})
		return groupedResult("🏪", "STORES BY DEPARTMENT", "stores", groups, func(s store.Record) string {
			return fmt.Sprintf("• **%s**", orUnknown(s.Str("name")))
		})
	}
	return errorResult(fmt.Sprintf("Unknown store query type: %s", queryType))
}

func (h *EntityHandler) storesInventory(stores []store.Record, queryType string) Result {
	if len(stores) == 0 {
		return successResult("No stores found in the database.", nil)
	}
	medNames := h.nameIndex(store.Medicines)
	title := map[string]string{
		"stores_inventory": "STORE INVENTORY",
		"stores_capacity":  "STORE CAPACITY",
		"stores_analysis":  "COMPREHENSIVE STORE ANALYSIS",
	}[queryType]
	var b strings.Builder
	fmt.Fprintf(&b, "# 🏪 **%s**\n\n", title)
	fmt.Fprintf(&b, "**Total Stores:** %d\n\n", len(stores))
	grandTotal := 0
	for _, s := range store.SortedByName(stores) {
		fmt.Fprintf(&b, "## **%s**\n", orUnknown(s.Str("name")))
		inv, _ := s["inventory"].(map[string]any)
		total := 0
		for _, medID := range sortedKeys(invCounts(inv)) {
			qty := store.Record(inv).Int(medID)
			name := medNames[medID]
			if name == "" {
				name = "Medicine " + medID
			}
			fmt.Fprintf(&b, "• **%s**: %d units\n", name, qty)
			total += qty
		}
		if len(inv) == 0 {
			b.WriteString("• Empty\n")
		}
		fmt.Fprintf(&b, "**Total:** %d units\n\n", total)
		grandTotal += total
	}
	fmt.Fprintf(&b, "**Grand Total Across Stores:** %d units", grandTotal)
	return successResult(b.String(), map[string]any{"store_count": len(stores), "total_units": grandTotal})
}

func invCounts(inv map[string]any) map[string]int {
	out := make(map[string]int, len(inv))
	r := store.Record(inv)
	for k := range inv {
		out[k] = r.Int(k)
	}
	return out
}

// --- purchases ---

func (h *EntityHandler) handlePurchases(queryType, input string) Result {
	purchases, errRes, ok := h.list(store.Purchases)
	if !ok {
		return errRes
	}
	medNames := h.nameIndex(store.Medicines)
	supNames := h.nameIndex(store.Suppliers)
	purchaseLine := func(p store.Record) string {
		med := medNames[p.Str("medicine_id")]
		if med == "" {
			med = "Medicine " + p.Str("medicine_id")
		}
		return fmt.Sprintf("• **%s**: %d units, $%.2f (%s)",
			med, p.Int("quantity"), recordCost(p), orNA(p.Str("purchase_date")))
	}
	switch queryType {
	case "purchases_count":
		return countResult("💰", "PURCHASE COUNT", "Purchases", len(purchases))
	case "purchases_list":
		return simpleList("💰", "ALL PURCHASES LIST", "purchases", purchases, purchaseLine)
	case "purchases_recent", "purchases_by_date":
		recent := recentRecords(purchases, "purchase_date", 10)
		return simpleList("💰", "RECENT PURCHASES", "purchases", recent, purchaseLine)
	case "purchases_by_supplier":
		groups := groupRecords(purchases, func(p store.Record) string {
			if name, ok := supNames[p.Str("supplier_id")]; ok {
				return name
			}
			return "Unknown Supplier"
		})
		return groupedResult("💰", "PURCHASES BY SUPPLIER", "purchases", groups, purchaseLine)
	case "purchases_expensive":
		return h.expensivePurchases(purchases, input, medNames, supNames)
	case "purchases_total_cost", "purchases_analysis":
		total := 0.0
		for _, p := range purchases {
			total += recordCost(p)
		}
		var b strings.Builder
		b.WriteString("# 💰 **PURCHASE COST ANALYSIS**\n\n")
		fmt.Fprintf(&b, "**Total Purchases:** %d\n", len(purchases))
		fmt.Fprintf(&b, "**Total Spending:** $%.2f\n", total)
		if len(purchases) > 0 {
			fmt.Fprintf(&b, "**Average per Purchase:** $%.2f\n", total/float64(len(purchases)))
		}
		return successResult(b.String(), map[string]any{"total_cost": total, "count": len(purchases)})
	}
	return errorResult(fmt.Sprintf("Unknown purchase query type: %s", queryType))
}

var topNPattern = regexp.MustCompile(`top\s*(\d+)`)

func parseTopN(input string, fallback int) int {
	if m := topNPattern.FindStringSubmatch(strings.ToLower(input)); m != nil {
		var n int
		fmt.Sscanf(m[1], "%d", &n)
		if n > 0 {
			return n
		}
	}
	return fallback
}

func (h *EntityHandler) expensivePurchases(purchases []store.Record, input string, medNames, supNames map[string]string) Result {
	if len(purchases) == 0 {
		return successResult("No purchases found in the database.", nil)
	}
	n := parseTopN(input, 5)
	sorted := make([]store.Record, len(purchases))
	copy(sorted, purchases)
	sort.SliceStable(sorted, func(i, j int) bool { return recordCost(sorted[i]) > recordCost(sorted[j]) })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "**Top %d Most Expensive Purchases:**\n", n)
	for i, p := range sorted {
		med := medNames[p.Str("medicine_id")]
		if med == "" {
			med = "Medicine " + p.Str("medicine_id")
		}
		sup := supNames[p.Str("supplier_id")]
		if sup == "" {
			sup = "Unknown Supplier"
		}
		fmt.Fprintf(&b, "%d. **%s**: $%.2f (%d units from %s)\n",
			i+1, med, recordCost(p), p.Int("quantity"), sup)
	}
	return successResult(b.String(), map[string]any{"purchases": sorted, "top_n": n})
}

// --- consumption ---

func (h *EntityHandler) handleConsumption(queryType string) Result {
	consumption, errRes, ok := h.list(store.Consumption)
	if !ok {
		return errRes
	}
	medNames := h.nameIndex(store.Medicines)
	consumptionLine := func(c store.Record) string {
		med := medNames[c.Str("medicine_id")]
		if med == "" {
			med = "Medicine " + c.Str("medicine_id")
		}
		return fmt.Sprintf("• **%s**: %d units (%s)", med, c.Int("quantity"), orNA(c.Str("date")))
	}
	switch queryType {
	case "consumption_count":
		return countResult("📊", "CONSUMPTION RECORD COUNT", "Consumption Records", len(consumption))
	case "consumption_list":
		return simpleList("📊", "ALL CONSUMPTION RECORDS", "records", consumption, consumptionLine)
	case "consumption_recent", "consumption_trends":
		recent := recentRecords(consumption, "date", 10)
		return simpleList("📊", "RECENT CONSUMPTION", "records", recent, consumptionLine)
	case "consumption_by_patient":
		return h.consumptionByKey("patient_id", h.nameIndex(store.Patients), "📊", "CONSUMPTION BY PATIENT")
	case "consumption_by_medicine":
		return h.consumptionByKey("medicine_id", medNames, "📊", "CONSUMPTION BY MEDICINE")
	case "consumption_by_department":
		return h.consumptionByKey("department_id", h.nameIndex(store.Departments), "📊", "CONSUMPTION BY DEPARTMENT")
	case "consumption_analysis":
		total := 0
		for _, c := range consumption {
			total += c.Int("quantity")
		}
		var b strings.Builder
		b.WriteString("# 📊 **COMPREHENSIVE CONSUMPTION ANALYSIS**\n\n")
		fmt.Fprintf(&b, "**Total Records:** %d\n", len(consumption))
		fmt.Fprintf(&b, "**Total Units Consumed:** %d\n", total)
		if len(consumption) > 0 {
			fmt.Fprintf(&b, "**Average per Record:** %.1f units\n", float64(total)/float64(len(consumption)))
		}
		return successResult(b.String(), map[string]any{"record_count": len(consumption), "total_units": total})
	}
	return errorResult(fmt.Sprintf("Unknown consumption query type: %s", queryType))
}

// consumptionByKey aggregates consumption quantities grouped by a
// record key, resolving IDs to display names.
func (h *EntityHandler) consumptionByKey(key string, names map[string]string, icon, title string) Result {
	consumption, errRes, ok := h.list(store.Consumption)
	if !ok {
		return errRes
	}
	if len(consumption) == 0 {
		return successResult("No consumption records found in the database.", nil)
	}
	totals := make(map[string]int)
	for _, c := range consumption {
		name := names[c.Str(key)]
		if name == "" {
			name = "Unknown"
		}
		totals[name] += c.Int("quantity")
	}
	type row struct {
		name  string
		units int
	}
	rows := make([]row, 0, len(totals))
	for name, units := range totals {
		rows = append(rows, row{name, units})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].units != rows[j].units {
			return rows[i].units > rows[j].units
		}
		return rows[i].name < rows[j].name
	})
	var b strings.Builder
	fmt.Fprintf(&b, "# %s **%s**\n\n", icon, title)
	for i, r := range rows {
		fmt.Fprintf(&b, "%d. **%s**: %d units\n", i+1, r.name, r.units)
	}
	return successResult(b.String(), map[string]any{"group_count": len(rows)})
}

// --- transfers ---

func (h *EntityHandler) handleTransfers(queryType string) Result {
	transfers, errRes, ok := h.list(store.Transfers)
	if !ok {
		return errRes
	}
	deptNames := h.nameIndex(store.Departments)
	medNames := h.nameIndex(store.Medicines)
	transferLine := func(t store.Record) string {
		med := medNames[t.Str("medicine_id")]
		if med == "" {
			med = "Medicine " + t.Str("medicine_id")
		}
		from := orUnknown(deptNames[t.Str("from_dept_id")])
		to := orUnknown(deptNames[t.Str("to_dept_id")])
		return fmt.Sprintf("• **%s**: %d units, %s → %s [%s]",
			med, t.Int("quantity"), from, to, orNA(t.Str("status")))
	}
	switch queryType {
	case "transfers_count":
		return countResult("🔄", "TRANSFER COUNT", "Transfers", len(transfers))
	case "transfers_list":
		return simpleList("🔄", "ALL TRANSFERS LIST", "transfers", transfers, transferLine)
	case "transfers_recent":
		recent := recentRecords(transfers, "transfer_date", 10)
		return simpleList("🔄", "RECENT TRANSFERS", "transfers", recent, transferLine)
	case "transfers_pending":
		var pending []store.Record
		for _, t := range transfers {
			if strings.EqualFold(t.Str("status"), "pending") {
				pending = append(pending, t)
			}
		}
		if len(pending) == 0 {
			return successResult("No pending transfers. All transfers are completed.", nil)
		}
		return simpleList("🔄", "PENDING TRANSFERS", "transfers", pending, transferLine)
	case "transfers_by_department", "transfers_routes":
		return h.transferRoutes(transfers, deptNames)
	case "transfers_analysis":
		total := 0
		for _, t := range transfers {
			total += t.Int("quantity")
		}
		var b strings.Builder
		b.WriteString("# 🔄 **COMPREHENSIVE TRANSFER ANALYSIS**\n\n")
		fmt.Fprintf(&b, "**Total Transfers:** %d\n", len(transfers))
		fmt.Fprintf(&b, "**Total Units Moved:** %d\n", total)
		return successResult(b.String(), map[string]any{"transfer_count": len(transfers), "total_units": total})
	}
	return errorResult(fmt.Sprintf("Unknown transfer query type: %s", queryType))
}

func (h *EntityHandler) transferRoutes(transfers []store.Record, deptNames map[string]string) Result {
	if len(transfers) == 0 {
		return successResult("No transfers found in the database.", nil)
	}
	routes := make(map[string]int)
	for _, t := range transfers {
		from := orUnknown(deptNames[t.Str("from_dept_id")])
		to := orUnknown(deptNames[t.Str("to_dept_id")])
		routes[from+" → "+to] += t.Int("quantity")
	}
	var b strings.Builder
	b.WriteString("# 🔄 **TRANSFER ROUTES**\n\n")
	for i, route := range sortedKeys(routes) {
		fmt.Fprintf(&b, "%d. **%s**: %d units\n", i+1, route, routes[route])
	}
	return successResult(b.String(), map[string]any{"route_count": len(routes)})
}

// --- overview and help ---

func (h *EntityHandler) handleOverview() Result {
	var b strings.Builder
	b.WriteString("# 🏥 **COMPLETE DATABASE OVERVIEW**\n\n")
	icons := map[string]string{
		store.Medicines: "💊", store.Patients: "👥", store.Suppliers: "🏢",
		store.Departments: "🏥", store.Stores: "🏪", store.Purchases: "💰",
		store.Consumption: "📊", store.Transfers: "🔄",
	}
	counts := make(map[string]any)
	for _, collection := range []string{
		store.Medicines, store.Patients, store.Suppliers, store.Departments,
		store.Stores, store.Purchases, store.Consumption, store.Transfers,
	} {
		records, err := h.store.List(collection)
		if err != nil {
			return errorResult(fmt.Sprintf("Error reading %s: %v", collection, err))
		}
		fmt.Fprintf(&b, "%s **%s:** %d\n", icons[collection], titleCase(collection), len(records))
		counts[collection] = len(records)
	}
	b.WriteString("\nAsk about any area for details, e.g. 'list all medicines' or 'recent transfers'.")
	return successResult(b.String(), counts)
}

func (h *EntityHandler) handleHelp() Result {
	var b strings.Builder
	b.WriteString("# 🤖 **PHARMACY ASSISTANT HELP**\n\n")
	b.WriteString("I can answer questions about the pharmacy database. Try:\n\n")
	b.WriteString("**📊 Queries:**\n")
	b.WriteString("• Medicine information (count, list, stock levels, categories)\n")
	b.WriteString("• Patient data (demographics, departments, history)\n")
	b.WriteString("• Supplier information (contacts, performance)\n")
	b.WriteString("• Department analytics (staff, inventory, consumption)\n")
	b.WriteString("• Purchase records (recent, expensive, totals)\n")
	b.WriteString("• Consumption patterns (trends, by patient/medicine)\n")
	b.WriteString("• Transfer records (recent, routes, pending)\n\n")
	b.WriteString("**✏️ Commands:**\n")
	b.WriteString("• add new medicine called <name> ...\n")
	b.WriteString("• add new patient named <name> ...\n")
	b.WriteString("• update patient <id> medical history to <text>\n")
	b.WriteString("• delete medicine with id <id>\n")
	b.WriteString("• transfer <n> units of <medicine> from <dept> to <dept>\n\n")
	b.WriteString("**Example Commands:**\n")
	for _, cmd := range h.patterns.SupportedCommands() {
		fmt.Fprintf(&b, "• %s\n", cmd)
	}
	return successResult(b.String(), nil)
}

// --- shared helpers ---

func countResult(icon, title, noun string, count int) Result {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s **%s**\n\n", icon, title)
	fmt.Fprintf(&b, "**Total %s:** %d\n", noun, count)
	return successResult(b.String(), map[string]any{"count": count})
}

func simpleList(icon, title, noun string, records []store.Record, line func(store.Record) string) Result {
	if len(records) == 0 {
		return successResult(fmt.Sprintf("No %s found in the database.", noun), nil)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# %s **%s**\n\n", icon, title)
	fmt.Fprintf(&b, "**Total:** %d %s\n\n", len(records), noun)
	for _, r := range store.SortedByName(records) {
		b.WriteString(line(r))
		b.WriteString("\n")
	}
	return successResult(b.String(), map[string]any{"count": len(records)})
}

func groupedResult(icon, title, noun string, groups map[string][]store.Record, line func(store.Record) string) Result {
	if len(groups) == 0 {
		return successResult(fmt.Sprintf("No %s found in the database.", noun), nil)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# %s **%s**\n\n", icon, title)
	fmt.Fprintf(&b, "**Total Groups:** %d\n\n", len(groups))
	for _, g := range sortGroupsBySize(groups) {
		fmt.Fprintf(&b, "## **%s** (%d %s)\n", g.key, len(g.records), noun)
		for _, r := range store.SortedByName(g.records) {
			b.WriteString(line(r))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return successResult(b.String(), nil)
}

// recentRecords returns up to n records ordered newest-first by a
// date field. Records missing the field sort last.
func recentRecords(records []store.Record, dateField string, n int) []store.Record {
	sorted := make([]store.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Str(dateField) > sorted[j].Str(dateField)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// recordCost reads a purchase's total price, falling back to
// quantity times unit price.
func recordCost(p store.Record) float64 {
	if v, ok := p["total_price"]; ok {
		switch t := v.(type) {
		case float64:
			return t
		case int:
			return float64(t)
		}
	}
	unit := 0.0
	switch t := p["unit_price"].(type) {
	case float64:
		unit = t
	case int:
		unit = float64(t)
	}
	return unit * float64(p.Int("quantity"))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func ageBand(age int) string {
	switch {
	case age < 18:
		return "Under 18"
	case age < 40:
		return "18-39"
	case age < 65:
		return "40-64"
	default:
		return "65+"
	}
}
