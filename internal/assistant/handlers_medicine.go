package assistant

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"pharmassist/internal/store"
)

// Store is the data-store surface handlers depend on.
type Store interface {
	store.EntityStore
	store.InventoryStore
	store.ActivityLog
	CreateStoreForDepartment(departmentID, departmentName string) (string, error)
	GetStockStatus(medicineID, departmentID string) (store.StockStatus, error)
}

// MedicineHandler serves every medicine query type.
type MedicineHandler struct {
	store Store
}

// NewMedicineHandler creates the handler.
func NewMedicineHandler(s Store) *MedicineHandler {
	return &MedicineHandler{store: s}
}

var medicineQueryTypes = []string{
	"medicines_count", "medicines_list", "medicines_by_category",
	"medicines_by_supplier", "medicines_stock_levels", "medicines_low_stock",
	"medicines_out_of_stock", "medicines_highest_stock", "medicines_by_form",
	"medicines_analysis", "medicine_names_list",
}

func (h *MedicineHandler) SupportedQueryTypes() []string { return medicineQueryTypes }

func (h *MedicineHandler) CanHandle(queryType string) bool {
	return containsString(medicineQueryTypes, queryType)
}

func (h *MedicineHandler) Handle(ctx context.Context, queryType, input, userID string) Result {
	switch queryType {
	case "medicines_count":
		return h.handleCount()
	case "medicines_list", "medicine_names_list":
		return h.handleList()
	case "medicines_by_category":
		return h.handleByCategory()
	case "medicines_by_supplier":
		return h.handleBySupplier()
	case "medicines_stock_levels":
		return h.handleStockLevels()
	case "medicines_low_stock":
		return h.handleLowStock()
	case "medicines_out_of_stock":
		return h.handleOutOfStock()
	case "medicines_highest_stock":
		return h.handleHighestStock()
	case "medicines_by_form":
		return h.handleByForm()
	case "medicines_analysis":
		return h.handleAnalysis()
	}
	return errorResult(fmt.Sprintf("Unknown medicine query type: %s", queryType))
}

func (h *MedicineHandler) medicines() ([]store.Record, error) {
	return h.store.List(store.Medicines)
}

func (h *MedicineHandler) stockOf(medicineID string) int {
	qty, err := h.store.GetStock(medicineID, "")
	if err != nil {
		return 0
	}
	return qty
}

func (h *MedicineHandler) handleCount() Result {
	medicines, err := h.medicines()
	if err != nil {
		return errorResult(fmt.Sprintf("Error counting medicines: %v", err))
	}
	count := len(medicines)

	var b strings.Builder
	b.WriteString("# 💊 **MEDICINE COUNT**\n\n")
	fmt.Fprintf(&b, "**Total Medicines:** %d\n\n", count)
	if count > 0 {
		supplierCounts := make(map[string]int)
		formCounts := make(map[string]int)
		for _, m := range medicines {
			supplierCounts[m.Str("supplier_id")]++
			form := m.Str("form_dosage")
			if form == "" {
				form = "Unknown"
			}
			formCounts[form]++
		}
		b.WriteString("## 📊 **Additional Statistics:**\n")
		fmt.Fprintf(&b, "• **Unique Suppliers:** %d\n", len(supplierCounts))
		fmt.Fprintf(&b, "• **Average per Supplier:** %.1f\n", float64(count)/float64(len(supplierCounts)))
		topForm, topCount := mostCommon(formCounts)
		fmt.Fprintf(&b, "• **Most Common Form:** %s (%d medicines)\n", topForm, topCount)
	}
	return successResult(b.String(), map[string]any{"count": count, "medicines": medicines})
}

func (h *MedicineHandler) handleList() Result {
	medicines, err := h.medicines()
	if err != nil {
		return errorResult(fmt.Sprintf("Error listing medicines: %v", err))
	}
	if len(medicines) == 0 {
		return successResult("No medicines found in the database.", nil)
	}
	var b strings.Builder
	b.WriteString("# 💊 **ALL MEDICINES LIST**\n\n")
	fmt.Fprintf(&b, "**Total Medicines:** %d\n\n", len(medicines))
	b.WriteString("## 📋 **Complete Medicine List:**\n")
	for i, m := range store.SortedByName(medicines) {
		name := orUnknown(m.Str("name"))
		form := orNA(m.Str("form_dosage"))
		fmt.Fprintf(&b, "%d. **%s** (%s) - Stock: %d\n", i+1, name, form, h.stockOf(m.ID()))
	}
	return successResult(b.String(), map[string]any{"medicines": medicines, "total_count": len(medicines)})
}

func (h *MedicineHandler) handleByCategory() Result {
	medicines, err := h.medicines()
	if err != nil {
		return errorResult(fmt.Sprintf("Error grouping medicines: %v", err))
	}
	if len(medicines) == 0 {
		return successResult("No medicines found in the database.", nil)
	}
	groups := groupRecords(medicines, func(m store.Record) string {
		if c := m.Str("category"); c != "" {
			return c
		}
		return "Uncategorized"
	})
	var b strings.Builder
	b.WriteString("# 💊 **MEDICINES BY CATEGORY**\n\n")
	fmt.Fprintf(&b, "**Total Categories:** %d\n", len(groups))
	fmt.Fprintf(&b, "**Total Medicines:** %d\n\n", len(medicines))
	for _, g := range sortGroupsBySize(groups) {
		fmt.Fprintf(&b, "## 📂 **%s** (%d medicines)\n", g.key, len(g.records))
		for _, m := range store.SortedByName(g.records) {
			fmt.Fprintf(&b, "• **%s** (%s)\n", orUnknown(m.Str("name")), orNA(m.Str("form_dosage")))
		}
		b.WriteString("\n")
	}
	return successResult(b.String(), map[string]any{"total_count": len(medicines)})
}

func (h *MedicineHandler) handleBySupplier() Result {
	medicines, err := h.medicines()
	if err != nil {
		return errorResult(fmt.Sprintf("Error grouping medicines: %v", err))
	}
	if len(medicines) == 0 {
		return successResult("No medicines found in the database.", nil)
	}
	suppliers, err := h.store.List(store.Suppliers)
	if err != nil {
		return errorResult(fmt.Sprintf("Error loading suppliers: %v", err))
	}
	supplierNames := make(map[string]string, len(suppliers))
	for _, s := range suppliers {
		supplierNames[s.ID()] = s.Str("name")
	}
	groups := groupRecords(medicines, func(m store.Record) string {
		id := m.Str("supplier_id")
		if name, ok := supplierNames[id]; ok {
			return name
		}
		return fmt.Sprintf("Unknown Supplier (%s)", id)
	})
	var b strings.Builder
	b.WriteString("# 💊 **MEDICINES BY SUPPLIER**\n\n")
	fmt.Fprintf(&b, "**Total Suppliers:** %d\n", len(groups))
	fmt.Fprintf(&b, "**Total Medicines:** %d\n\n", len(medicines))
	for _, g := range sortGroupsBySize(groups) {
		fmt.Fprintf(&b, "## 🏢 **%s** (%d medicines)\n", g.key, len(g.records))
		for _, m := range store.SortedByName(g.records) {
			fmt.Fprintf(&b, "• **%s** (%s) - Stock: %d\n",
				orUnknown(m.Str("name")), orNA(m.Str("form_dosage")), h.stockOf(m.ID()))
		}
		b.WriteString("\n")
	}
	return successResult(b.String(), map[string]any{"total_count": len(medicines)})
}

type medicineStock struct {
	Name     string `json:"name"`
	Form     string `json:"form"`
	Stock    int    `json:"stock"`
	LowLimit int    `json:"low_limit"`
}

func (h *MedicineHandler) stockTable(medicines []store.Record) ([]medicineStock, int) {
	rows := make([]medicineStock, 0, len(medicines))
	total := 0
	for _, m := range medicines {
		stock := h.stockOf(m.ID())
		rows = append(rows, medicineStock{
			Name:     orUnknown(m.Str("name")),
			Form:     orNA(m.Str("form_dosage")),
			Stock:    stock,
			LowLimit: m.Int("low_stock_limit"),
		})
		total += stock
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Stock > rows[j].Stock })
	return rows, total
}

func (h *MedicineHandler) handleStockLevels() Result {
	medicines, err := h.medicines()
	if err != nil {
		return errorResult(fmt.Sprintf("Error reading stock levels: %v", err))
	}
	if len(medicines) == 0 {
		return successResult("No medicines found in the database.", nil)
	}
	rows, total := h.stockTable(medicines)
	var b strings.Builder
	b.WriteString("# 💊 **MEDICINE STOCK LEVELS**\n\n")
	fmt.Fprintf(&b, "**Total Medicines:** %d\n", len(medicines))
	fmt.Fprintf(&b, "**Total Stock Units:** %d\n", total)
	fmt.Fprintf(&b, "**Average Stock per Medicine:** %.1f\n\n", float64(total)/float64(len(medicines)))
	b.WriteString("## 📊 **Stock Levels (Highest to Lowest):**\n")
	for i, row := range rows {
		status := "🟢 OK"
		if row.Stock <= row.LowLimit {
			status = "🔴 LOW"
		}
		if row.Stock == 0 {
			status = "⚫ OUT"
		}
		fmt.Fprintf(&b, "%d. **%s** (%s)\n", i+1, row.Name, row.Form)
		fmt.Fprintf(&b, "   Stock: %d units | Limit: %d | Status: %s\n\n", row.Stock, row.LowLimit, status)
	}
	return successResult(b.String(), map[string]any{"medicine_stocks": rows, "total_stock": total})
}

func (h *MedicineHandler) handleLowStock() Result {
	medicines, err := h.medicines()
	if err != nil {
		return errorResult(fmt.Sprintf("Error reading stock levels: %v", err))
	}
	if len(medicines) == 0 {
		return successResult("No medicines found in the database.", nil)
	}
	rows, _ := h.stockTable(medicines)
	var low []medicineStock
	for _, row := range rows {
		if row.Stock <= row.LowLimit {
			low = append(low, row)
		}
	}
	if len(low) == 0 {
		return successResult("Good news! No medicines are currently below their low stock limit.", nil)
	}
	var b strings.Builder
	b.WriteString("# 💊 **LOW STOCK MEDICINES**\n\n")
	fmt.Fprintf(&b, "⚠️ **%d medicines** are at or below their low stock limit:\n\n", len(low))
	for i, row := range low {
		fmt.Fprintf(&b, "%d. **%s** (%s)\n", i+1, row.Name, row.Form)
		fmt.Fprintf(&b, "   Stock: %d units | Limit: %d\n\n", row.Stock, row.LowLimit)
	}
	b.WriteString("**Recommendation:** Restock these medicines soon to avoid shortages.")
	return successResult(b.String(), map[string]any{"low_stock": low, "count": len(low)})
}

func (h *MedicineHandler) handleOutOfStock() Result {
	medicines, err := h.medicines()
	if err != nil {
		return errorResult(fmt.Sprintf("Error reading stock levels: %v", err))
	}
	if len(medicines) == 0 {
		return successResult("No medicines found in the database.", nil)
	}
	rows, _ := h.stockTable(medicines)
	var out []medicineStock
	for _, row := range rows {
		if row.Stock == 0 {
			out = append(out, row)
		}
	}
	if len(out) == 0 {
		return successResult("Good news! Every medicine currently has stock available.", nil)
	}
	var b strings.Builder
	b.WriteString("# 💊 **OUT OF STOCK MEDICINES**\n\n")
	fmt.Fprintf(&b, "⚫ **%d medicines** have zero stock:\n\n", len(out))
	for i, row := range out {
		fmt.Fprintf(&b, "%d. **%s** (%s)\n", i+1, row.Name, row.Form)
	}
	b.WriteString("\n**Recommendation:** Order replacements from the suppliers as soon as possible.")
	return successResult(b.String(), map[string]any{"out_of_stock": out, "count": len(out)})
}

func (h *MedicineHandler) handleHighestStock() Result {
	medicines, err := h.medicines()
	if err != nil {
		return errorResult(fmt.Sprintf("Error reading stock levels: %v", err))
	}
	if len(medicines) == 0 {
		return successResult("No medicines found in the database.", nil)
	}
	rows, _ := h.stockTable(medicines)
	top := rows[0]
	var b strings.Builder
	b.WriteString("**Highest Stock Medicine:**\n")
	fmt.Fprintf(&b, "• **%s** has the highest stock with **%d units**\n", top.Name, top.Stock)
	fmt.Fprintf(&b, "• Form: %s\n", top.Form)
	fmt.Fprintf(&b, "• Low Stock Limit: %d\n\n", top.LowLimit)
	if len(rows) > 1 {
		b.WriteString("**Top 5 Highest Stock Medicines:**\n")
		for i, row := range rows {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&b, "%d. %s: %d units\n", i+1, row.Name, row.Stock)
		}
	}
	return successResult(b.String(), map[string]any{"highest_stock_medicine": top, "top_10_highest_stock": topN(rows, 10)})
}

func (h *MedicineHandler) handleByForm() Result {
	medicines, err := h.medicines()
	if err != nil {
		return errorResult(fmt.Sprintf("Error grouping medicines: %v", err))
	}
	if len(medicines) == 0 {
		return successResult("No medicines found in the database.", nil)
	}
	groups := groupRecords(medicines, func(m store.Record) string {
		return orUnknown(m.Str("form_dosage"))
	})
	var b strings.Builder
	b.WriteString("# 💊 **MEDICINES BY FORM**\n\n")
	fmt.Fprintf(&b, "**Total Forms:** %d\n", len(groups))
	fmt.Fprintf(&b, "**Total Medicines:** %d\n\n", len(medicines))
	for _, g := range sortGroupsBySize(groups) {
		fmt.Fprintf(&b, "## 💉 **%s** (%d medicines)\n", g.key, len(g.records))
		for _, m := range store.SortedByName(g.records) {
			fmt.Fprintf(&b, "• **%s**\n", orUnknown(m.Str("name")))
		}
		b.WriteString("\n")
	}
	return successResult(b.String(), map[string]any{"total_count": len(medicines)})
}

func (h *MedicineHandler) handleAnalysis() Result {
	medicines, err := h.medicines()
	if err != nil {
		return errorResult(fmt.Sprintf("Error analyzing medicines: %v", err))
	}
	if len(medicines) == 0 {
		return successResult("No medicines found in the database.", nil)
	}
	rows, total := h.stockTable(medicines)
	low, out := 0, 0
	for _, row := range rows {
		if row.Stock == 0 {
			out++
		} else if row.Stock <= row.LowLimit {
			low++
		}
	}
	var b strings.Builder
	b.WriteString("# 💊 **COMPREHENSIVE MEDICINE ANALYSIS**\n\n")
	b.WriteString("## 📊 **Overview:**\n")
	fmt.Fprintf(&b, "• **Total Medicines:** %d\n", len(medicines))
	fmt.Fprintf(&b, "• **Total Stock Units:** %d\n", total)
	fmt.Fprintf(&b, "• **Average Stock per Medicine:** %.1f\n", float64(total)/float64(len(medicines)))
	fmt.Fprintf(&b, "• **Low Stock:** %d medicines\n", low)
	fmt.Fprintf(&b, "• **Out of Stock:** %d medicines\n\n", out)
	b.WriteString("## 🏆 **Top 5 by Stock:**\n")
	for i, row := range rows {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&b, "%d. **%s**: %d units\n", i+1, row.Name, row.Stock)
	}
	return successResult(b.String(), map[string]any{
		"total_count":  len(medicines),
		"total_stock":  total,
		"low_stock":    low,
		"out_of_stock": out,
	})
}

// --- shared rendering helpers ---

type recordGroup struct {
	key     string
	records []store.Record
}

func groupRecords(records []store.Record, keyFn func(store.Record) string) map[string][]store.Record {
	groups := make(map[string][]store.Record)
	for _, r := range records {
		k := keyFn(r)
		groups[k] = append(groups[k], r)
	}
	return groups
}

// sortGroupsBySize orders groups largest first, ties alphabetical.
func sortGroupsBySize(groups map[string][]store.Record) []recordGroup {
	out := make([]recordGroup, 0, len(groups))
	for k, v := range groups {
		out = append(out, recordGroup{key: k, records: v})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i].records) != len(out[j].records) {
			return len(out[i].records) > len(out[j].records)
		}
		return out[i].key < out[j].key
	})
	return out
}

func mostCommon(counts map[string]int) (string, int) {
	best, bestCount := "", 0
	for k, v := range counts {
		if v > bestCount || (v == bestCount && k < best) {
			best, bestCount = k, v
		}
	}
	return best, bestCount
}

func topN(rows []medicineStock, n int) []medicineStock {
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
