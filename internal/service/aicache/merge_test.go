package aicache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeContentUnionsLists(t *testing.T) {
	t.Parallel()

	existing := map[string]any{
		"mnemonics": []any{"old mnemonic"},
	}
	incoming := map[string]any{
		"mnemonics": []any{"old mnemonic", "new mnemonic"},
	}

	merged := MergeContent(existing, incoming)

	assert.Equal(t, []any{"old mnemonic", "new mnemonic"}, merged["mnemonics"])
}

func TestMergeContentDeduplicatesStructuredElements(t *testing.T) {
	t.Parallel()

	example := map[string]any{"en": "An example.", "vi": "Một ví dụ."}
	existing := map[string]any{"examples": []any{example}}
	incoming := map[string]any{
		"examples": []any{
			map[string]any{"en": "An example.", "vi": "Một ví dụ."},
			map[string]any{"en": "Another.", "vi": "Khác."},
		},
	}

	merged := MergeContent(existing, incoming)

	examples, ok := merged["examples"].([]any)
	require.True(t, ok)
	assert.Len(t, examples, 2, "structurally equal examples must merge to one")
}

func TestMergeContentKeepsExistingWhenIncomingOmitsKey(t *testing.T) {
	t.Parallel()

	existing := map[string]any{
		"examples":  []any{"kept"},
		"mnemonics": []any{"kept too"},
	}
	incoming := map[string]any{
		"meaningVariants": []any{"a variant"},
	}

	merged := MergeContent(existing, incoming)

	assert.Equal(t, []any{"kept"}, merged["examples"])
	assert.Equal(t, []any{"kept too"}, merged["mnemonics"])
	assert.Equal(t, []any{"a variant"}, merged["meaningVariants"])
}

func TestMergeContentReplacesJudgeWholesale(t *testing.T) {
	t.Parallel()

	existing := map[string]any{
		"judge": map[string]any{"isEquivalent": false, "reasonShort": "old"},
	}
	incoming := map[string]any{
		"judge": map[string]any{"isEquivalent": true, "reasonShort": "new"},
	}

	merged := MergeContent(existing, incoming)

	judge, ok := merged["judge"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, judge["isEquivalent"])
	assert.Equal(t, "new", judge["reasonShort"])
}

func TestMergeContentIPAOnlyReplacedWhenNonEmpty(t *testing.T) {
	t.Parallel()

	existing := map[string]any{"ipa": "/ˈsʌm.θɪŋ/"}

	merged := MergeContent(existing, map[string]any{"ipa": "   "})
	assert.Equal(t, "/ˈsʌm.θɪŋ/", merged["ipa"], "blank incoming ipa must not clobber")

	merged = MergeContent(existing, map[string]any{"ipa": "/ˈʌð.ər/"})
	assert.Equal(t, "/ˈʌð.ər/", merged["ipa"])
}

func TestMergeContentDoesNotMutateInputs(t *testing.T) {
	t.Parallel()

	existing := map[string]any{"mnemonics": []any{"one"}}
	incoming := map[string]any{"mnemonics": []any{"two"}}

	_ = MergeContent(existing, incoming)

	assert.Equal(t, []any{"one"}, existing["mnemonics"])
	assert.Equal(t, []any{"two"}, incoming["mnemonics"])
}
