package filter

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestIsAppropriate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"empty", "", true},
		{"clean", "Hello there, how can I help?", true},
		{"denylisted word", "that is nonsense", false},
		{"denylisted phrase mid word", "xxinappropriate word 1xx", false},
		{"second entry", "inappropriate word 2", false},
		{"case sensitive", "NONSENSE", true},
		{"partial entry", "inappropriate word", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAppropriate(tt.text))
		})
	}
}

func TestIsAppropriateEveryDenylistEntry(t *testing.T) {
	for _, word := range DefaultDenylist {
		for _, wrap := range []string{"%s", "prefix %s", "%s suffix", "a%sb"} {
			text := strings.Replace(wrap, "%s", word, 1)
			assert.False(t, IsAppropriate(text), "text %q", text)
		}
	}
}

func TestIsHighQuality(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"empty", "", false},
		{"nine chars", "123456789", false},
		{"ten chars", "1234567890", true},
		{"eight cjk chars", "日本語のテキスト", false},
		{"nine cjk chars", "日本語のテキストだ", false},
		{"ten cjk chars", "日本語のテキストです", true},
		{"ten accented chars", "éééééééééé", true},
		{"dont know", "Well, I don't know about that", false},
		{"dont understand", "Sorry but I don't understand you", false},
		{"nonsense", "this reply is nonsense really", false},
		{"good", "Paris is the capital of France.", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsHighQuality(tt.text))
		})
	}
}

func TestIsHighQualityShortAlwaysFalse(t *testing.T) {
	for n := 0; n < DefaultMinLength; n++ {
		assert.False(t, IsHighQuality(strings.Repeat("a", n)), "length %d", n)
	}
}

func TestCheckNamesRule(t *testing.T) {
	f := New()

	v := f.Check("this is nonsense")
	assert.False(t, v.OK())
	assert.Equal(t, RuleDenylist, v.Rule)

	v = f.Check("short")
	assert.False(t, v.OK())
	assert.Equal(t, RuleTooShort, v.Rule)

	v = f.Check("日本語のテキスト")
	assert.False(t, v.OK())
	assert.Equal(t, RuleTooShort, v.Rule)

	v = f.Check("Honestly, I don't know.")
	assert.False(t, v.OK())
	assert.Equal(t, RuleLowQuality, v.Rule)

	v = f.Check("A perfectly fine answer.")
	assert.True(t, v.OK())
	assert.Equal(t, RuleNone, v.Rule)
}

func TestCustomRules(t *testing.T) {
	f := New(WithDenylist("spam"), WithLowQualityPhrases("meh"), WithMinLength(3))

	assert.False(t, f.IsAppropriate("buy spam now"))
	assert.True(t, f.IsAppropriate("that is nonsense"))
	assert.False(t, f.IsHighQuality("meh, fine"))
	assert.True(t, f.IsHighQuality("abc"))
	assert.False(t, f.IsHighQuality("ab"))
}

func TestZeroFilterAcceptsEverything(t *testing.T) {
	var f Filter
	assert.True(t, f.IsAppropriate("nonsense"))
	assert.True(t, f.IsHighQuality(""))
}

func TestTrim(t *testing.T) {
	assert.Equal(t, "hello", Trim("hello", 10))
	assert.Equal(t, "hello", Trim("hello", 5))
	assert.Equal(t, "hell...", Trim("hello", 4))
	assert.Equal(t, "...", Trim("hello", 0))
	assert.Equal(t, "...", Trim("hello", -1))
	assert.Equal(t, "", Trim("", 0))
}

// The trimmed result is allowed to exceed maxLength by the ellipsis length.
func TestTrimLengthProperty(t *testing.T) {
	for textLen := 0; textLen <= 30; textLen++ {
		text := strings.Repeat("x", textLen)
		for limit := 0; limit <= 30; limit++ {
			got := Trim(text, limit)
			if textLen <= limit {
				assert.Len(t, got, textLen)
			} else {
				assert.Len(t, got, limit+len(Ellipsis))
				assert.True(t, strings.HasSuffix(got, Ellipsis))
			}
		}
	}
}

func TestTrimDefaultMaxLength(t *testing.T) {
	got := Trim(strings.Repeat("a", 500), DefaultMaxLength)
	assert.Len(t, got, DefaultMaxLength+len(Ellipsis))
}

func TestTrimCountsCharacters(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  string
	}{
		{"accented fits", strings.Repeat("é", 150), 200, strings.Repeat("é", 150)},
		{"accented at limit", strings.Repeat("é", 200), 200, strings.Repeat("é", 200)},
		{"accented cut", strings.Repeat("é", 10), 5, strings.Repeat("é", 5) + Ellipsis},
		{"emoji cut", strings.Repeat("😀", 300), 200, strings.Repeat("😀", 200) + Ellipsis},
		{"cjk cut", "日本語のテキスト", 3, "日本語" + Ellipsis},
		{"mixed", "añb😀c", 4, "añb😀" + Ellipsis},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Trim(tt.text, tt.limit)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

// Same length property as above, measured in characters on multibyte input.
func TestTrimRuneLengthProperty(t *testing.T) {
	for _, unit := range []string{"é", "日", "😀"} {
		for textLen := 0; textLen <= 30; textLen++ {
			text := strings.Repeat(unit, textLen)
			for limit := 0; limit <= 30; limit++ {
				got := utf8.RuneCountInString(Trim(text, limit))
				if textLen <= limit {
					assert.Equal(t, textLen, got, "%q x%d limit %d", unit, textLen, limit)
				} else {
					assert.Equal(t, limit+len(Ellipsis), got, "%q x%d limit %d", unit, textLen, limit)
				}
			}
		}
	}
}
