package workflow

import (
	"fmt"
	"unicode/utf8"

	"github.com/dalemusser/dexterhub/internal/app/system/htmlsanitize"
)

// cleanText reduces user-supplied free text to trimmed plain text.
func cleanText(s string) string {
	return htmlsanitize.PlainText(s)
}

func within(s string, n int) bool {
	return utf8.RuneCountInString(s) <= n
}

func tooLong(n int) string {
	return fmt.Sprintf("must be at most %d characters", n)
}
