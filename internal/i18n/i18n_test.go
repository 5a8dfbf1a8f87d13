package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		in   string
		want Tag
	}{
		{"en", English},
		{"hi", Hindi},
		{"fr", English},
		{"", English},
		{"EN", English},
		{"HI", English},
		{" hi", English},
		{"hi-IN", English},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Resolve(tt.in), "Resolve(%q)", tt.in)
	}
}

func TestSupportedReturnsCopy(t *testing.T) {
	tags := Supported()
	require.Equal(t, []Tag{English, Hindi}, tags)
	tags[0] = "xx"
	assert.Equal(t, English, Supported()[0])
}

func TestSuggest(t *testing.T) {
	assert.Equal(t, Hindi, Suggest("hi-IN,hi;q=0.9,en;q=0.8"))
	assert.Equal(t, English, Suggest("en-GB,en;q=0.9"))
	assert.Equal(t, English, Suggest("fr-FR"))
	assert.Equal(t, English, Suggest(""))
}

func TestCatalogLookup(t *testing.T) {
	c := DefaultCatalog()

	assert.Equal(t, "Send", c.Lookup("chatbot", "send", "en"))
	assert.Equal(t, "भेजें", c.Lookup("chatbot", "send", "hi"))
	assert.Equal(t, "Send", c.Lookup("chatbot", "send", "fr"))
	assert.Equal(t, "missing.key", c.Lookup("chatbot", "missing.key", "hi"))
	assert.Equal(t, "send", c.Lookup("nope", "send", "en"))
}

func TestCatalogLookupFallsBackToEnglishKey(t *testing.T) {
	c, err := ParseCatalog([]byte(`{
		"s": {
			"en": {"strings": {"a": "A", "b": "B"}, "lists": {"l": ["x"]}},
			"hi": {"strings": {"a": "अ"}, "lists": {}}
		}
	}`))
	require.NoError(t, err)

	assert.Equal(t, "अ", c.Lookup("s", "a", "hi"))
	assert.Equal(t, "B", c.Lookup("s", "b", "hi"))
	assert.Equal(t, []string{"x"}, c.List("s", "l", "hi"))

	table, ok := c.Table("s", "hi")
	require.True(t, ok)
	assert.Equal(t, "अ", table.Strings["a"])
	assert.Equal(t, "B", table.Strings["b"])
}

func TestParseCatalogRequiresEnglish(t *testing.T) {
	_, err := ParseCatalog([]byte(`{"s": {"hi": {"strings": {}, "lists": {}}}}`))
	require.Error(t, err)
}

func TestCatalogListReturnsCopy(t *testing.T) {
	c := DefaultCatalog()
	list := c.List("chatbot", "suggestedQuestions", "en")
	require.Len(t, list, 6)
	list[0] = "mutated"
	assert.Equal(t, "I have stomach pain and nausea, could it be from water?", c.List("chatbot", "suggestedQuestions", "en")[0])
}

func TestEveryScreenHasBothLanguages(t *testing.T) {
	c := DefaultCatalog()
	assert.Equal(t, []string{"about", "areawater", "chatbot", "map", "reports"}, c.Screens())
	for _, screen := range c.Screens() {
		en, _ := c.Table(screen, "en")
		for _, tag := range Supported() {
			raw := c.screens[screen][tag]
			for key := range en.Strings {
				_, ok := raw.Strings[key]
				assert.True(t, ok, "screen %s lang %s missing %s", screen, tag, key)
			}
		}
	}
}

func TestDisplayName(t *testing.T) {
	english, native := DisplayName(Hindi)
	assert.Equal(t, "Hindi", english)
	assert.NotEmpty(t, native)
	assert.NotEqual(t, english, native)

	english, native = DisplayName(English)
	assert.Equal(t, "English", english)
	assert.Equal(t, "English", native)
}
