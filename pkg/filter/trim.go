package filter

// Ellipsis is appended to trimmed text.
const Ellipsis = "..."

// DefaultMaxLength is the reply length limit used across the bot.
const DefaultMaxLength = 200

// Trim returns text unchanged when it has at most maxLength characters.
// Otherwise it returns the first maxLength characters followed by Ellipsis,
// so the result is up to len(Ellipsis) characters longer than maxLength.
// Characters are Unicode code points.
func Trim(text string, maxLength int) string {
	if maxLength < 0 {
		maxLength = 0
	}
	n := 0
	for i := range text {
		if n == maxLength {
			return text[:i] + Ellipsis
		}
		n++
	}
	return text
}
