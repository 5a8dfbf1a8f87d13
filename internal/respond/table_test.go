package respond

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/navyasetu/varunnetra/internal/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ruleText(t *testing.T, id string, tag i18n.Tag) string {
	t.Helper()
	for _, r := range Default().Rules() {
		if r.ID == id {
			return r.Responses[tag]
		}
	}
	if id == RuleDefault {
		return Default().Fallback().Responses[tag]
	}
	t.Fatalf("no rule %q", id)
	return ""
}

func TestSelectIsTotal(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"\t\n",
		"こんにちは",
		"qwerty",
		"🙂🙂🙂",
		strings.Repeat("a", 10000),
	}
	for _, tag := range i18n.Supported() {
		allowed := Default().Texts(tag)
		for _, in := range inputs {
			got := Select(in, string(tag))
			assert.NotEmpty(t, got, "input %q lang %s", in, tag)
			assert.Contains(t, allowed, got)
		}
	}
}

func TestBlankUtteranceUsesFallback(t *testing.T) {
	m := Default().Match("   ", "en")
	assert.True(t, m.Fallback)
	assert.Equal(t, RuleDefault, m.RuleID)
}

func TestFirstMatchWins(t *testing.T) {
	tests := []struct {
		name      string
		utterance string
		want      string
	}{
		{"stomach before hospital", "my stomach hurts, where is the nearest hospital", RuleStomach},
		{"water quality before emergency", "water quality emergency", RuleWaterQuality},
		{"skin before heavy metal", "skin rash from arsenic?", RuleSkin},
		{"hospital before emergency", "urgent: which hospital", RuleHospital},
		{"hindi stomach before hospital", "पेट दर्द, निकटतम अस्पताल", RuleStomach},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Default().Match(tt.utterance, "en")
			assert.Equal(t, tt.want, m.RuleID)
			assert.False(t, m.Fallback)
		})
	}
}

func TestDeclarationOrder(t *testing.T) {
	var ids []string
	for _, r := range Default().Rules() {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{
		RuleStomach, RuleSkin, RuleHospital, RuleHeavyMetal,
		RuleHeadache, RuleWaterQuality, RuleEmergency,
	}, ids)
	assert.Equal(t, RuleDefault, Default().Fallback().ID)
}

func TestCaseInsensitive(t *testing.T) {
	assert.Equal(t, Select("stomach pain", "en"), Select("STOMACH pain", "en"))
	assert.Equal(t, RuleWaterQuality, Default().Match("Water Quality?", "en").RuleID)
	assert.Equal(t, RuleHeavyMetal, Default().Match("HEAVY METAL", "hi").RuleID)
}

func TestUnsupportedLanguageFallsBackToEnglish(t *testing.T) {
	assert.Equal(t, Select("hospital", "en"), Select("hospital", "fr"))

	m := Default().Match("hospital", "fr")
	assert.Equal(t, i18n.English, m.Language)
	assert.True(t, m.LanguageFallback)

	m = Default().Match("hospital", "hi")
	assert.Equal(t, i18n.Hindi, m.Language)
	assert.False(t, m.LanguageFallback)
}

func TestDefaultFallback(t *testing.T) {
	got := Select("asdkjasdkjasd", "en")
	assert.Equal(t, ruleText(t, RuleDefault, i18n.English), got)
	for _, r := range Default().Rules() {
		assert.NotEqual(t, r.Responses[i18n.English], got)
	}
}

func TestDeterministic(t *testing.T) {
	first := Select("headache and fatigue", "hi")
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, first, Select("headache and fatigue", "hi"))
		}()
	}
	wg.Wait()
}

func TestScenarioEnglishStomach(t *testing.T) {
	got := Select("I have stomach pain and nausea, could it be from water?", "en")
	assert.Equal(t, ruleText(t, RuleStomach, i18n.English), got)
	assert.Contains(t, got, "Fortis Hospital, Bandra (2.3 km)")
}

func TestScenarioHindiStomach(t *testing.T) {
	got := Select("मुझे पेट दर्द और मतली है", "hi")
	assert.Equal(t, ruleText(t, RuleStomach, i18n.Hindi), got)
	assert.Contains(t, got, "फोर्टिस हॉस्पिटल, बांद्रा")
}

// Substring matching is not word-aware: "misleading" contains "lead".
func TestSubstringMatchInsideWords(t *testing.T) {
	assert.Equal(t, RuleHeavyMetal, Default().Match("that chart is misleading", "en").RuleID)
}

func TestRulesReturnsCopies(t *testing.T) {
	rules := Default().Rules()
	rules[0].Keywords[0] = "mutated"
	rules[0].Responses[i18n.English] = "mutated"
	assert.Equal(t, RuleStomach, Default().Match("stomach", "en").RuleID)
	assert.NotEqual(t, "mutated", Select("stomach", "en"))
}

func TestNewTable(t *testing.T) {
	both := func(s string) map[i18n.Tag]string {
		return map[i18n.Tag]string{i18n.English: s, i18n.Hindi: s + " (hi)"}
	}
	fallback := Rule{ID: "fallback", Responses: both("?")}

	tests := []struct {
		name     string
		rules    []Rule
		fallback Rule
	}{
		{"missing id", []Rule{{Keywords: []string{"a"}, Responses: both("a")}}, fallback},
		{"duplicate id", []Rule{
			{ID: "a", Keywords: []string{"a"}, Responses: both("a")},
			{ID: "a", Keywords: []string{"b"}, Responses: both("b")},
		}, fallback},
		{"no keywords", []Rule{{ID: "a", Responses: both("a")}}, fallback},
		{"blank keyword", []Rule{{ID: "a", Keywords: []string{" "}, Responses: both("a")}}, fallback},
		{"missing hindi", []Rule{{ID: "a", Keywords: []string{"a"}, Responses: map[i18n.Tag]string{i18n.English: "a"}}}, fallback},
		{"fallback with keywords", nil, Rule{ID: "f", Keywords: []string{"x"}, Responses: both("f")}},
		{"fallback without id", nil, Rule{Responses: both("f")}},
		{"fallback id reused", []Rule{{ID: "f", Keywords: []string{"a"}, Responses: both("a")}}, Rule{ID: "f", Responses: both("f")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.rules, tt.fallback)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTable))
		})
	}
}

func TestNewTableFoldsKeywords(t *testing.T) {
	both := map[i18n.Tag]string{i18n.English: "yes", i18n.Hindi: "हाँ"}
	tbl, err := NewTable(
		[]Rule{{ID: "upper", Keywords: []string{"WATER"}, Responses: both}},
		Rule{ID: "none", Responses: map[i18n.Tag]string{i18n.English: "no", i18n.Hindi: "नहीं"}},
	)
	require.NoError(t, err)

	assert.Equal(t, "yes", tbl.Select("water", "en"))
	assert.Equal(t, "हाँ", tbl.Select("Water", "hi"))
	assert.Equal(t, "no", tbl.Select("fire", "en"))
}
