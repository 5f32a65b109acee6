package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalog() *PatternCatalog {
	return NewPatternCatalog(NewCorrector())
}

func TestIdentify(t *testing.T) {
	pc := newTestCatalog()

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"medicine count", "how many medicines do we have", "medicines_count"},
		{"medicine list", "list all medicines", "medicines_list"},
		{"stock levels", "medicine stock levels", "medicines_stock_levels"},
		{"low stock", "low stock medicines", "medicines_low_stock"},
		{"patients count", "how many patients", "patients_count"},
		{"suppliers list", "list all suppliers", "suppliers_list"},
		{"database overview", "complete database overview", "database_overview"},
		{"help", "help", "help_query"},
		{"add medicine", "add new medicine called aspirin", "add_medicine"},
		{"delete medicine", "delete medicine with id 05", "delete_medicine"},
		{"transfer", "transfer 50 units from main pharmacy to emergency", "transfer_inventory"},
		{"legacy expiry", "medicines expiring in 30 days", "expiry_analysis"},
		{"no match", "what is the meaning of life", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pc.Identify(tt.query))
		})
	}

	t.Run("deterministic", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			assert.Equal(t, "medicines_count", pc.Identify("how many medicines"))
		}
	})

	t.Run("primary catalog beats legacy", func(t *testing.T) {
		// "comprehensive medicine analysis" matches the primary
		// medicines_analysis entry; the legacy catalog also has
		// medicine analysis patterns, but primary resolves first.
		assert.Equal(t, "medicines_analysis", pc.Identify("comprehensive medicine analysis"))
	})

	t.Run("fuzzy fallback resolves near misses", func(t *testing.T) {
		// Close to "how many medicines" but not a regex match after
		// the singularizing correction.
		assert.Equal(t, "medicines_count", pc.Identify("how many medicins"))
	})

	t.Run("case and whitespace insensitive", func(t *testing.T) {
		assert.Equal(t, "medicines_list", pc.Identify("  LIST ALL MEDICINES  "))
	})
}

func TestClarificationOptions(t *testing.T) {
	pc := newTestCatalog()

	t.Run("medicines menu has six lettered options", func(t *testing.T) {
		opts := pc.ClarificationOptions("medicines")
		require.Len(t, opts, 6)
		assert.Equal(t, "a", opts[0].Letter)
		assert.Equal(t, "f", opts[5].Letter)
		// Every option except "Something else" maps to a real command.
		for _, opt := range opts[:5] {
			assert.NotEmpty(t, opt.Followup, "option %s should carry a followup", opt.Letter)
			assert.NotEmpty(t, pc.Identify(opt.Followup), "followup %q should classify", opt.Followup)
		}
	})

	t.Run("unknown entity has no menu", func(t *testing.T) {
		assert.Empty(t, pc.ClarificationOptions("starships"))
	})
}

func TestSupportedCommands(t *testing.T) {
	pc := newTestCatalog()
	commands := pc.SupportedCommands()
	require.NotEmpty(t, commands)
	assert.Contains(t, commands, "how many medicines")
}

func TestDidYouMeanSuggestions(t *testing.T) {
	pc := newTestCatalog()

	t.Run("caps at five", func(t *testing.T) {
		suggestions := pc.DidYouMean("medicin stok levels pls")
		assert.LessOrEqual(t, len(suggestions), 5)
	})
}
