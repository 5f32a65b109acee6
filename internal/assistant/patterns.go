package assistant

import (
	"regexp"
	"strings"
)

// patternEntry is one ordered catalog row: a query type and the regex
// phrasings that trigger it. raw keeps the source text for fuzzy
// comparison and did-you-mean rendering.
type patternEntry struct {
	queryType string
	raw       []string
	compiled  []*regexp.Regexp
}

func newEntry(queryType string, patterns ...string) patternEntry {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(p)
	}
	return patternEntry{queryType: queryType, raw: patterns, compiled: compiled}
}

// clarificationOption is one lettered choice in an entity menu.
type clarificationOption struct {
	Letter      string
	Description string
	Followup    string
}

// PatternCatalog holds the primary and legacy command catalogs and the
// per-entity clarification menus. Matching is first-match-wins in
// declaration order; new patterns are appended, never inserted.
type PatternCatalog struct {
	primary       []patternEntry
	legacy        []patternEntry
	clarification map[string][]clarificationOption
	corrector     *Corrector
}

// NewPatternCatalog compiles the full catalog.
func NewPatternCatalog(corrector *Corrector) *PatternCatalog {
	return &PatternCatalog{
		primary:       buildPrimaryCatalog(),
		legacy:        buildLegacyCatalog(),
		clarification: buildClarificationOptions(),
		corrector:     corrector,
	}
}

// Identify resolves a query to a command type: primary catalog first,
// then the legacy catalog, then a fuzzy match against the primary
// catalog. Returns "" when nothing reaches the thresholds.
func (pc *PatternCatalog) Identify(query string) string {
	lower := strings.ToLower(strings.TrimSpace(query))
	for _, entry := range pc.primary {
		for _, re := range entry.compiled {
			if re.MatchString(lower) {
				return entry.queryType
			}
		}
	}
	for _, entry := range pc.legacy {
		for _, re := range entry.compiled {
			if re.MatchString(lower) {
				return entry.queryType
			}
		}
	}
	return pc.corrector.fuzzyMatchCommand(query, pc.primary)
}

// ClarificationOptions returns the lettered menu for an entity type,
// or nil when the entity has none.
func (pc *PatternCatalog) ClarificationOptions(entityType string) []clarificationOption {
	return pc.clarification[entityType]
}

// DidYouMean suggests close command phrasings for an unmatched query.
func (pc *PatternCatalog) DidYouMean(query string) []string {
	return pc.corrector.DidYouMean(query, pc.primary)
}

// QueryTypes returns every primary and legacy command type in order.
func (pc *PatternCatalog) QueryTypes() []string {
	var types []string
	for _, e := range pc.primary {
		types = append(types, e.queryType)
	}
	for _, e := range pc.legacy {
		types = append(types, e.queryType)
	}
	return types
}

// SupportedCommands returns readable example phrasings, one per
// primary command type, for help output and REPL completion.
func (pc *PatternCatalog) SupportedCommands() []string {
	commands := make([]string, 0, len(pc.primary))
	for _, e := range pc.primary {
		commands = append(commands, patternToReadable(plainPattern(e.raw[0])))
	}
	return commands
}

func buildPrimaryCatalog() []patternEntry {
	return []patternEntry{
		// Medicines
		newEntry("medicines_count",
			`how many medicines`, `total number of medicines`, `medicine count`,
			`count of medicines`, `number of medicines`, `total medicines`),
		newEntry("medicines_list",
			`list all medicines`, `show all medicines`, `give me all medicine names`,
			`what medicines do we have`, `complete medicine list`, `all medicines in database`),
		newEntry("medicines_by_category",
			`medicines by category`, `group medicines by category`, `medicine categories`,
			`categorize medicines`, `medicines in each category`),
		newEntry("medicines_by_supplier",
			`medicines by supplier`, `which medicines from supplier`, `supplier medicines`,
			`medicines per supplier`, `group medicines by supplier`),
		newEntry("medicines_stock_levels",
			`medicine stock levels`, `current stock of medicines`, `inventory levels`,
			`stock status of medicines`, `medicine quantities`),
		newEntry("medicines_low_stock",
			`low stock medicines`, `medicines running out`, `medicines below limit`,
			`shortage medicines`, `medicines need restocking`),
		newEntry("medicines_out_of_stock",
			`out of stock medicines`, `medicines with zero stock`, `empty stock medicines`,
			`unavailable medicines`, `medicines not in stock`),
		newEntry("medicines_highest_stock",
			`highest stock medicines`, `medicines with most stock`, `maximum stock medicines`,
			`medicines with highest inventory`, `top stock medicines`),
		newEntry("medicines_by_form",
			`medicines by form`, `tablets vs capsules`, `medicine forms`,
			`dosage forms`, `group by form dosage`),
		newEntry("medicines_analysis",
			`comprehensive medicine analysis`, `complete medicine overview`, `medicine statistics`,
			`medicine summary report`, `analyze medicine data`),

		// Patients
		newEntry("patients_count",
			`how many patients`, `total number of patients`, `patient count`,
			`count of patients`, `number of patients`, `total patients`),
		newEntry("patients_list",
			`list all patients`, `show all patients`, `give me all patient names`,
			`what patients do we have`, `complete patient list`, `all patients in database`),
		newEntry("patients_by_department",
			`patients by department`, `which patients in department`, `department patients`,
			`patients per department`, `group patients by department`),
		newEntry("patients_by_gender",
			`patients by gender`, `male vs female patients`, `gender distribution`,
			`how many male patients`, `how many female patients`),
		newEntry("patients_by_age",
			`patients by age`, `age distribution`, `oldest patients`,
			`youngest patients`, `average patient age`),
		newEntry("patients_with_allergies",
			`patients with allergies`, `allergy information`, `patients allergic to`,
			`allergy list`, `patients with medical conditions`),
		newEntry("patients_consumption",
			`patient consumption patterns`, `which patient consumed most`, `top consuming patients`,
			`patient medicine usage`, `consumption by patient`),
		newEntry("patients_recent",
			`recent patients`, `new patients`, `patients added recently`,
			`latest patient registrations`, `recent admissions`),
		newEntry("patients_analysis",
			`comprehensive patient analysis`, `complete patient overview`, `patient statistics`,
			`patient summary report`, `analyze patient data`),

		// Suppliers
		newEntry("suppliers_count",
			`how many suppliers`, `total number of suppliers`, `supplier count`,
			`count of suppliers`, `number of suppliers`, `total suppliers`),
		newEntry("suppliers_list",
			`list all suppliers`, `show all suppliers`, `give me all supplier names`,
			`what suppliers do we have`, `complete supplier list`, `all suppliers in database`),
		newEntry("suppliers_by_type",
			`suppliers by type`, `medicine suppliers`, `equipment suppliers`,
			`supplier categories`, `group suppliers by type`),
		newEntry("suppliers_performance",
			`supplier performance`, `best suppliers`, `top suppliers`,
			`supplier ratings`, `supplier quality metrics`),
		newEntry("suppliers_contact_info",
			`supplier contact information`, `supplier phone numbers`, `supplier addresses`,
			`how to contact suppliers`, `supplier details`),
		newEntry("suppliers_purchase_history",
			`supplier purchase history`, `purchases from supplier`, `supplier order history`,
			`what we bought from supplier`, `supplier transaction history`),
		newEntry("suppliers_analysis",
			`comprehensive supplier analysis`, `complete supplier overview`, `supplier statistics`,
			`supplier summary report`, `analyze supplier data`),

		// Departments
		newEntry("departments_count",
			`how many departments`, `total number of departments`, `department count`,
			`count of departments`, `number of departments`, `total departments`),
		newEntry("departments_list",
			`list all departments`, `show all departments`, `give me all department names`,
			`what departments do we have`, `complete department list`, `all departments in database`),
		newEntry("departments_staff",
			`department staff`, `who runs each department`, `department managers`,
			`responsible persons`, `department contacts`),
		newEntry("departments_inventory",
			`department inventory`, `stock by department`, `department stock levels`,
			`inventory per department`, `what each department has`),
		newEntry("departments_consumption",
			`department consumption`, `which department uses most`, `consumption by department`,
			`department usage patterns`, `medicine usage per department`),
		newEntry("departments_analysis",
			`comprehensive department analysis`, `complete department overview`, `department statistics`,
			`department summary report`, `analyze department data`),

		// Stores
		newEntry("stores_count",
			`how many stores`, `total number of stores`, `store count`,
			`count of stores`, `number of storage locations`, `total stores`),
		newEntry("stores_list",
			`list all stores`, `show all storage locations`, `give me all store names`,
			`what stores do we have`, `complete store list`, `all stores in database`),
		newEntry("stores_inventory",
			`store inventory`, `inventory by store`, `what is in each store`,
			`store stock levels`, `storage inventory`),
		newEntry("stores_capacity",
			`store capacity`, `storage capacity`, `how much can stores hold`,
			`store limits`, `maximum storage`),
		newEntry("stores_by_department",
			`stores by department`, `which stores belong to department`, `department storage locations`,
			`stores per department`, `departmental stores`),
		newEntry("stores_analysis",
			`comprehensive store analysis`, `complete store overview`, `store statistics`,
			`store summary report`, `analyze store data`),

		// Purchases
		newEntry("purchases_count",
			`how many purchases`, `total number of purchases`, `purchase count`,
			`count of purchases`, `number of orders`, `total purchases`),
		newEntry("purchases_list",
			`list all purchases`, `show all orders`, `give me purchase history`,
			`what purchases were made`, `complete purchase list`, `all purchases in database`),
		newEntry("purchases_recent",
			`recent purchases`, `latest purchases`, `new orders`,
			`purchases this month`, `recent orders`),
		newEntry("purchases_by_supplier",
			`purchases by supplier`, `orders from supplier`, `what we bought from`,
			`supplier purchase history`, `purchases per supplier`),
		newEntry("purchases_expensive",
			`expensive purchases`, `highest cost purchases`, `most expensive orders`,
			`costly purchases`, `big purchases`),
		newEntry("purchases_total_cost",
			`total purchase cost`, `how much spent on purchases`, `purchase expenses`,
			`total money spent`, `purchase budget`),
		newEntry("purchases_by_date",
			`purchases by date`, `orders by month`, `purchase timeline`,
			`when were purchases made`, `purchase dates`),
		newEntry("purchases_analysis",
			`comprehensive purchase analysis`, `complete purchase overview`, `purchase statistics`,
			`purchase summary report`, `analyze purchase data`),

		// Consumption
		newEntry("consumption_count",
			`how many consumption records`, `total consumption entries`, `consumption count`,
			`number of consumptions`, `usage records`),
		newEntry("consumption_list",
			`list all consumption`, `show all usage`, `give me consumption history`,
			`what was consumed`, `complete consumption list`),
		newEntry("consumption_by_patient",
			`consumption by patient`, `what patient consumed`, `patient usage`,
			`medicine taken by patient`, `consumption per patient`),
		newEntry("consumption_by_medicine",
			`consumption by medicine`, `which medicine consumed most`, `medicine usage`,
			`most used medicines`, `consumption per medicine`),
		newEntry("consumption_by_department",
			`consumption by department`, `department usage`, `which department uses most`,
			`consumption per department`, `departmental consumption`),
		newEntry("consumption_recent",
			`recent consumption`, `latest usage`, `consumption this month`,
			`recent medicine usage`, `new consumption records`),
		newEntry("consumption_trends",
			`consumption trends`, `usage patterns`, `consumption over time`,
			`usage statistics`, `consumption analysis`),
		newEntry("consumption_analysis",
			`comprehensive consumption analysis`, `complete consumption overview`, `consumption statistics`,
			`consumption summary report`, `analyze consumption data`),

		// Transfers
		newEntry("transfers_count",
			`how many transfers`, `total number of transfers`, `transfer count`,
			`count of transfers`, `number of transfers`),
		newEntry("transfers_list",
			`list all transfers`, `show all transfers`, `give me transfer history`,
			`what transfers were made`, `complete transfer list`),
		newEntry("transfers_recent",
			`recent transfers`, `latest transfers`, `new transfers`,
			`transfers this month`, `recent movements`),
		newEntry("transfers_by_department",
			`transfers by department`, `department transfers`, `transfers from department`,
			`transfers to department`, `departmental transfers`),
		newEntry("transfers_pending",
			`pending transfers`, `transfers waiting approval`, `unapproved transfers`,
			`transfers in progress`, `incomplete transfers`),
		newEntry("transfers_routes",
			`transfer routes`, `common transfer paths`, `where transfers go`,
			`transfer destinations`, `transfer patterns`),
		newEntry("transfers_analysis",
			`comprehensive transfer analysis`, `complete transfer overview`, `transfer statistics`,
			`transfer summary report`, `analyze transfer data`),

		// General
		newEntry("database_overview",
			`complete database overview`, `show everything`, `full system analysis`,
			`comprehensive overview`, `all data summary`),
		newEntry("help_query",
			`help`, `what can you do`, `available commands`, `how to use`, `instructions`),
	}
}

func buildLegacyCatalog() []patternEntry {
	return []patternEntry{
		newEntry("highest_stock",
			`what.*highest.*stock`, `which.*medicine.*most.*stock`, `highest.*stock.*medicine`),
		newEntry("top_patients",
			`which.*patient.*consumed.*most`, `top.*consuming.*patient`, `patient.*most.*medicine`),
		newEntry("expensive_purchases",
			`most.*expensive.*purchase`, `top.*expensive.*purchase`, `highest.*cost.*purchase`),
		newEntry("department_analysis",
			`department.*lowest.*stock`, `which.*department.*low.*stock`, `department.*stock.*level`),
		newEntry("expiry_analysis",
			`medicine.*expir.*\d+.*day`, `expir.*within.*\d+`, `medicine.*expir.*soon`),
		newEntry("comprehensive_overview",
			`show.*complete.*overview.*database`, `comprehensive.*database.*analysis`,
			`complete.*overview.*all.*tables`, `show.*all.*database.*tables`,
			`comprehensive.*analysis.*all.*data`),
		newEntry("medicines_analysis",
			`complete.*analysis.*medicines.*table`, `comprehensive.*medicines.*analysis`,
			`show.*all.*medicines.*data`, `analyze.*medicines.*table`, `medicines.*with.*stock.*levels`),
		newEntry("medicine_names_list",
			`give.*me.*names.*of.*all.*medicines`, `show.*me.*all.*medicine.*names`,
			`list.*all.*medicines.*in.*database`, `what.*are.*all.*the.*medicines`,
			`show.*complete.*list.*of.*medicines`, `all.*medicine.*names.*in.*database`,
			`names.*of.*medicines.*in.*database`, `list.*all.*medicines`, `show.*all.*medicines`,
			`what.*medicines.*do.*we.*have`, `all.*medicines.*in.*database`, `complete.*medicine.*list`),
		newEntry("patients_analysis",
			`complete.*analysis.*patients.*table`, `comprehensive.*patients.*analysis`,
			`show.*all.*patients.*data`, `analyze.*patients.*table`, `patients.*consumption.*patterns`),
		newEntry("suppliers_analysis",
			`comprehensive.*supplier.*analysis`, `complete.*analysis.*suppliers`,
			`show.*all.*suppliers.*data`, `analyze.*suppliers.*table`, `supplier.*performance.*metrics`),
		newEntry("departments_analysis",
			`complete.*analysis.*departments`, `comprehensive.*departments.*analysis`,
			`show.*all.*departments.*data`, `analyze.*departments.*table`, `departments.*inventory.*levels`),
		newEntry("stores_analysis",
			`complete.*analysis.*storage.*locations`, `comprehensive.*stores.*analysis`,
			`show.*all.*storage.*locations`, `analyze.*stores.*table`, `storage.*inventory.*status`),
		newEntry("purchases_analysis",
			`complete.*analysis.*purchase.*records`, `comprehensive.*purchases.*analysis`,
			`show.*all.*purchase.*records`, `analyze.*purchases.*table`, `purchase.*costs.*supplier.*performance`),
		newEntry("consumption_analysis",
			`complete.*analysis.*consumption.*records`, `comprehensive.*consumption.*analysis`,
			`show.*all.*consumption.*records`, `analyze.*consumption.*table`, `consumption.*patient.*medicine.*details`),
		newEntry("transfers_analysis",
			`complete.*analysis.*transfer.*records`, `comprehensive.*transfers.*analysis`,
			`show.*all.*transfer.*records`, `analyze.*transfers.*table`, `transfer.*department.*routes.*quantities`),
		newEntry("cross_table_inventory",
			`analyze.*inventory.*across.*all.*stores`, `comprehensive.*inventory.*analysis`,
			`inventory.*optimization.*recommendations`, `cross.*department.*inventory.*analysis`),
		newEntry("cross_table_financial",
			`complete.*financial.*analysis`, `comprehensive.*financial.*analysis`,
			`financial.*analysis.*purchases.*consumption`, `cost.*analysis.*across.*all.*data`),
		newEntry("cross_table_performance",
			`performance.*metrics.*suppliers.*departments`, `comprehensive.*performance.*analysis`,
			`performance.*analysis.*all.*categories`, `supplier.*department.*medicine.*performance`),

		// CRUD commands
		newEntry("add_medicine",
			`add.*new.*medicine.*called`, `create.*medicine.*name`, `add.*medicine.*with`),
		newEntry("add_patient",
			`add.*new.*patient.*called`, `create.*patient.*name`, `add.*patient.*with`),
		newEntry("add_supplier",
			`add.*new.*supplier.*called`, `create.*supplier.*name`, `add.*supplier.*with`),
		newEntry("add_department",
			`add.*new.*department.*called`, `create.*department.*name`, `add.*department.*with`),
		newEntry("update_patient",
			`update.*patient.*\w+.*medical.*history`, `change.*patient.*\w+.*history`, `modify.*patient.*\w+`),
		newEntry("delete_medicine",
			`delete.*medicine.*id.*\w+`, `remove.*medicine.*\w+`, `delete.*medicine.*with.*id`),
		newEntry("transfer_inventory",
			`transfer.*\d+.*unit.*from.*to`, `move.*\d+.*medicine.*from.*to`, `transfer.*inventory.*from.*to`),
	}
}

func options(descs [6]string, followups [6]string) []clarificationOption {
	letters := []string{"a", "b", "c", "d", "e", "f"}
	opts := make([]clarificationOption, 6)
	for i := range opts {
		opts[i] = clarificationOption{Letter: letters[i], Description: descs[i], Followup: followups[i]}
	}
	return opts
}

func buildClarificationOptions() map[string][]clarificationOption {
	return map[string][]clarificationOption{
		"medicines": options(
			[6]string{"List all medicine names", "Show medicine stock levels", "Analyze medicines by category",
				"Show low stock medicines", "Complete medicine analysis", "Something else"},
			[6]string{"list all medicines", "medicine stock levels", "medicines by category",
				"low stock medicines", "comprehensive medicine analysis", ""}),
		"patients": options(
			[6]string{"List all patient names", "Show patients by department", "Analyze patient consumption",
				"Show patient demographics", "Complete patient analysis", "Something else"},
			[6]string{"list all patients", "patients by department", "patient consumption patterns",
				"patients by gender", "comprehensive patient analysis", ""}),
		"suppliers": options(
			[6]string{"List all supplier names", "Show supplier contact info", "Analyze supplier performance",
				"Show purchase history", "Complete supplier analysis", "Something else"},
			[6]string{"list all suppliers", "supplier contact information", "supplier performance",
				"supplier purchase history", "comprehensive supplier analysis", ""}),
		"departments": options(
			[6]string{"List all department names", "Show department staff", "Analyze department inventory",
				"Show department consumption", "Complete department analysis", "Something else"},
			[6]string{"list all departments", "department staff", "department inventory",
				"department consumption", "comprehensive department analysis", ""}),
		"stores": options(
			[6]string{"List all storage locations", "Show inventory by store", "Analyze storage capacity",
				"Show store assignments", "Complete store analysis", "Something else"},
			[6]string{"list all stores", "store inventory", "store capacity",
				"stores by department", "comprehensive store analysis", ""}),
		"purchases": options(
			[6]string{"List recent purchases", "Show purchase costs", "Analyze purchase trends",
				"Show expensive purchases", "Complete purchase analysis", "Something else"},
			[6]string{"recent purchases", "total purchase cost", "purchases by date",
				"expensive purchases", "comprehensive purchase analysis", ""}),
		"consumption": options(
			[6]string{"List recent consumption", "Show consumption by patient", "Analyze consumption patterns",
				"Show high consumption items", "Complete consumption analysis", "Something else"},
			[6]string{"recent consumption", "consumption by patient", "consumption trends",
				"consumption by medicine", "comprehensive consumption analysis", ""}),
		"transfers": options(
			[6]string{"List recent transfers", "Show transfer routes", "Analyze transfer patterns",
				"Show pending transfers", "Complete transfer analysis", "Something else"},
			[6]string{"recent transfers", "transfer routes", "transfer patterns",
				"pending transfers", "comprehensive transfer analysis", ""}),
	}
}
