package forum

import (
	"regexp"
	"strings"
)

// Ten or more digits, optionally split by a space, dot or dash.
var phonePattern = regexp.MustCompile(`(\d[\s.-]?){10,}`)

var badWords = []string{
	"puto", "puta", "pendejo", "pendeja", "verga", "mierda", "imbecil", "estupido",
	"idiota", "chinga", "chingar", "pinche", "cabron", "mamada", "zorra",
}

var badWordPatterns = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(badWords))
	for i, w := range badWords {
		out[i] = regexp.MustCompile(`(?i)\b` + w + `\b`)
	}
	return out
}()

// ContainsPhoneNumber reports whether text carries something that looks like a phone number.
func ContainsPhoneNumber(text string) bool {
	return phonePattern.MatchString(text)
}

// MaskProfanity replaces listed words with asterisks of the same length.
func MaskProfanity(text string) string {
	for i, re := range badWordPatterns {
		text = re.ReplaceAllString(text, strings.Repeat("*", len(badWords[i])))
	}
	return text
}
