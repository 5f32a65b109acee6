package assistant

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"pharmassist/internal/store"
)

// AnalyticsHandler serves the cross-table and period-based analysis
// queries.
type AnalyticsHandler struct {
	store Store
	now   func() time.Time
}

// NewAnalyticsHandler creates the handler.
func NewAnalyticsHandler(s Store) *AnalyticsHandler {
	return &AnalyticsHandler{store: s, now: time.Now}
}

var analyticsQueryTypes = []string{
	"highest_stock", "top_patients", "expensive_purchases",
	"department_analysis", "expiry_analysis", "comprehensive_overview",
	"cross_table_inventory", "cross_table_financial", "cross_table_performance",
}

func (h *AnalyticsHandler) SupportedQueryTypes() []string { return analyticsQueryTypes }

func (h *AnalyticsHandler) CanHandle(queryType string) bool {
	return containsString(analyticsQueryTypes, queryType)
}

func (h *AnalyticsHandler) Handle(ctx context.Context, queryType, input, userID string) Result {
	switch queryType {
	case "highest_stock":
		return NewMedicineHandler(h.store).Handle(ctx, "medicines_highest_stock", input, userID)
	case "top_patients":
		return h.topPatients(input)
	case "expensive_purchases":
		return NewEntityHandler(h.store, nil).Handle(ctx, "purchases_expensive", input, userID)
	case "department_analysis":
		return h.departmentAnalysis(input)
	case "expiry_analysis":
		return h.expiryAnalysis(input)
	case "comprehensive_overview":
		return h.comprehensiveOverview()
	case "cross_table_inventory":
		return h.crossTableInventory()
	case "cross_table_financial":
		return h.crossTableFinancial()
	case "cross_table_performance":
		return h.crossTablePerformance()
	}
	return errorResult(fmt.Sprintf("Unknown analytics query type: %s", queryType))
}

// periodPattern reads phrases like "last 30 days", "past 2 weeks".
var periodPattern = regexp.MustCompile(`(\d+)\s*.*?(day|week|month)`)

// parsePeriodDays returns the analysis window in days.
func parsePeriodDays(input string, fallback int) int {
	m := periodPattern.FindStringSubmatch(strings.ToLower(input))
	if m == nil {
		return fallback
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return fallback
	}
	switch m[2] {
	case "week":
		return n * 7
	case "month":
		return n * 30
	}
	return n
}

func (h *AnalyticsHandler) withinPeriod(dateStr string, days int) bool {
	if dateStr == "" {
		return false
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return h.now().Sub(t) <= time.Duration(days)*24*time.Hour
		}
	}
	return false
}

func (h *AnalyticsHandler) topPatients(input string) Result {
	consumption, err := h.store.List(store.Consumption)
	if err != nil {
		return errorResult(fmt.Sprintf("Error reading consumption: %v", err))
	}
	if len(consumption) == 0 {
		return successResult("No consumption records found in the database.", nil)
	}
	patients, err := h.store.List(store.Patients)
	if err != nil {
		return errorResult(fmt.Sprintf("Error reading patients: %v", err))
	}
	names := make(map[string]string, len(patients))
	for _, p := range patients {
		names[p.ID()] = orUnknown(p.Str("name"))
	}
	totals := make(map[string]int)
	for _, c := range consumption {
		totals[c.Str("patient_id")] += c.Int("quantity")
	}
	type row struct {
		name  string
		units int
	}
	rows := make([]row, 0, len(totals))
	for id, units := range totals {
		name := names[id]
		if name == "" {
			name = "Patient " + id
		}
		rows = append(rows, row{name, units})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].units != rows[j].units {
			return rows[i].units > rows[j].units
		}
		return rows[i].name < rows[j].name
	})
	n := parseTopN(input, 5)
	if len(rows) > n {
		rows = rows[:n]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "**Top %d Patients by Medicine Consumption:**\n", n)
	for i, r := range rows {
		fmt.Fprintf(&b, "%d. **%s**: %d units consumed\n", i+1, r.name, r.units)
	}
	return successResult(b.String(), map[string]any{"top_n": n})
}

func (h *AnalyticsHandler) departmentAnalysis(input string) Result {
	days := parsePeriodDays(input, 30)
	consumption, err := h.store.List(store.Consumption)
	if err != nil {
		return errorResult(fmt.Sprintf("Error reading consumption: %v", err))
	}
	departments, err := h.store.List(store.Departments)
	if err != nil {
		return errorResult(fmt.Sprintf("Error reading departments: %v", err))
	}
	names := make(map[string]string, len(departments))
	for _, d := range departments {
		names[d.ID()] = orUnknown(d.Str("name"))
	}
	totals := make(map[string]int)
	for _, c := range consumption {
		if !h.withinPeriod(c.Str("date"), days) {
			continue
		}
		name := names[c.Str("department_id")]
		if name == "" {
			name = "Unassigned"
		}
		totals[name] += c.Int("quantity")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "**Department Consumption (last %d days):**\n", days)
	if len(totals) == 0 {
		fmt.Fprintf(&b, "No consumption recorded in the last %d days.\n", days)
	}
	for i, name := range sortedKeys(totals) {
		fmt.Fprintf(&b, "%d. **%s**: %d units\n", i+1, name, totals[name])
	}
	return successResult(b.String(), map[string]any{"period_days": days})
}

func (h *AnalyticsHandler) expiryAnalysis(input string) Result {
	days := parsePeriodDays(input, 30)
	medicines, err := h.store.List(store.Medicines)
	if err != nil {
		return errorResult(fmt.Sprintf("Error reading medicines: %v", err))
	}
	type expiring struct {
		name   string
		expiry string
	}
	var rows []expiring
	cutoff := h.now().Add(time.Duration(days) * 24 * time.Hour)
	for _, m := range medicines {
		expiry := m.Str("expiry_date")
		if expiry == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", expiry)
		if err != nil {
			continue
		}
		if t.Before(cutoff) {
			rows = append(rows, expiring{orUnknown(m.Str("name")), expiry})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].expiry < rows[j].expiry })
	var b strings.Builder
	fmt.Fprintf(&b, "**Medicines Expiring Within %d Days:**\n", days)
	if len(rows) == 0 {
		fmt.Fprintf(&b, "No medicines expire within the next %d days.\n", days)
	}
	for i, r := range rows {
		fmt.Fprintf(&b, "%d. **%s** - expires %s\n", i+1, r.name, r.expiry)
	}
	return successResult(b.String(), map[string]any{"period_days": days, "expiring_count": len(rows)})
}

func (h *AnalyticsHandler) comprehensiveOverview() Result {
	counts := make(map[string]int)
	for _, collection := range []string{
		store.Medicines, store.Patients, store.Suppliers, store.Departments,
		store.Stores, store.Purchases, store.Consumption, store.Transfers,
	} {
		records, err := h.store.List(collection)
		if err != nil {
			return errorResult(fmt.Sprintf("Error reading %s: %v", collection, err))
		}
		counts[collection] = len(records)
	}
	purchases, _ := h.store.List(store.Purchases)
	totalSpend := 0.0
	for _, p := range purchases {
		totalSpend += recordCost(p)
	}
	var b strings.Builder
	b.WriteString("# 🏥 **COMPREHENSIVE DATABASE OVERVIEW**\n\n")
	b.WriteString("## 📊 **Record Counts:**\n")
	for _, collection := range []string{
		store.Medicines, store.Patients, store.Suppliers, store.Departments,
		store.Stores, store.Purchases, store.Consumption, store.Transfers,
	} {
		fmt.Fprintf(&b, "• **%s:** %d\n", titleCase(collection), counts[collection])
	}
	fmt.Fprintf(&b, "\n## 💰 **Financials:**\n• **Total Purchase Spending:** $%.2f\n", totalSpend)
	data := make(map[string]any, len(counts)+1)
	for k, v := range counts {
		data[k] = v
	}
	data["total_spending"] = totalSpend
	return successResult(b.String(), data)
}

// crossTableInventory joins medicines against store inventories.
func (h *AnalyticsHandler) crossTableInventory() Result {
	medicines, err := h.store.List(store.Medicines)
	if err != nil {
		return errorResult(fmt.Sprintf("Error reading medicines: %v", err))
	}
	if len(medicines) == 0 {
		return successResult("No medicines found in the database.", nil)
	}
	var b strings.Builder
	b.WriteString("# 📦 **CROSS-TABLE INVENTORY ANALYSIS**\n\n")
	totalUnits := 0
	for _, m := range store.SortedByName(medicines) {
		qty, err := h.store.GetStock(m.ID(), "")
		if err != nil {
			continue
		}
		status, _ := h.store.GetStockStatus(m.ID(), "")
		fmt.Fprintf(&b, "• **%s**: %d units (%s)\n", orUnknown(m.Str("name")), qty, status.Message)
		totalUnits += qty
	}
	fmt.Fprintf(&b, "\n**Total Units Across All Stores:** %d", totalUnits)
	return successResult(b.String(), map[string]any{"total_units": totalUnits})
}

// crossTableFinancial joins purchases against suppliers and medicines.
func (h *AnalyticsHandler) crossTableFinancial() Result {
	purchases, err := h.store.List(store.Purchases)
	if err != nil {
		return errorResult(fmt.Sprintf("Error reading purchases: %v", err))
	}
	if len(purchases) == 0 {
		return successResult("No purchases found in the database.", nil)
	}
	medicines, _ := h.store.List(store.Medicines)
	medNames := make(map[string]string, len(medicines))
	for _, m := range medicines {
		medNames[m.ID()] = orUnknown(m.Str("name"))
	}
	spendByMed := make(map[string]float64)
	total := 0.0
	for _, p := range purchases {
		name := medNames[p.Str("medicine_id")]
		if name == "" {
			name = "Medicine " + p.Str("medicine_id")
		}
		cost := recordCost(p)
		spendByMed[name] += cost
		total += cost
	}
	type row struct {
		name  string
		spend float64
	}
	rows := make([]row, 0, len(spendByMed))
	for name, spend := range spendByMed {
		rows = append(rows, row{name, spend})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].spend != rows[j].spend {
			return rows[i].spend > rows[j].spend
		}
		return rows[i].name < rows[j].name
	})
	var b strings.Builder
	b.WriteString("# 💰 **CROSS-TABLE FINANCIAL ANALYSIS**\n\n")
	fmt.Fprintf(&b, "**Total Spending:** $%.2f\n\n", total)
	b.WriteString("## **Spending by Medicine:**\n")
	for i, r := range rows {
		fmt.Fprintf(&b, "%d. **%s**: $%.2f\n", i+1, r.name, r.spend)
	}
	return successResult(b.String(), map[string]any{"total_spending": total})
}

// crossTablePerformance joins departments against patients, stores
// and consumption.
func (h *AnalyticsHandler) crossTablePerformance() Result {
	departments, err := h.store.List(store.Departments)
	if err != nil {
		return errorResult(fmt.Sprintf("Error reading departments: %v", err))
	}
	if len(departments) == 0 {
		return successResult("No departments found in the database.", nil)
	}
	patients, _ := h.store.List(store.Patients)
	consumption, _ := h.store.List(store.Consumption)
	patientCount := make(map[string]int)
	for _, p := range patients {
		patientCount[p.Str("department_id")]++
	}
	unitsConsumed := make(map[string]int)
	for _, c := range consumption {
		unitsConsumed[c.Str("department_id")] += c.Int("quantity")
	}
	var b strings.Builder
	b.WriteString("# 📈 **CROSS-TABLE PERFORMANCE ANALYSIS**\n\n")
	for _, d := range store.SortedByName(departments) {
		fmt.Fprintf(&b, "## **%s**\n", orUnknown(d.Str("name")))
		fmt.Fprintf(&b, "• **Patients:** %d\n", patientCount[d.ID()])
		fmt.Fprintf(&b, "• **Units Consumed:** %d\n\n", unitsConsumed[d.ID()])
	}
	return successResult(b.String(), map[string]any{"department_count": len(departments)})
}
