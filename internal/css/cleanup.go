package css

import (
	"regexp"
	"strings"
)

var (
	// commentRegex matches /* ... */ comments, non-greedy, across lines
	commentRegex = regexp.MustCompile(`(?s)/\*.*?\*/`)

	// whitespaceRegex matches runs of two or more whitespace characters
	whitespaceRegex = regexp.MustCompile(`\s\s+`)

	// mediaQueryRegex matches "@media [only] <conditions> { <rule blocks> }"
	// ending at the first "}" that closes a nested rule block and is followed
	// by the closing brace of the media block itself.
	mediaQueryRegex = regexp.MustCompile(`(?is)@media\s+(?:only\s)?(?:[\s{(]|screen|all)\s?[^{]+?\{.*?\}\s*?\}`)

	// atRuleStatementRegex matches block-less at-rules like @charset
	atRuleStatementRegex = regexp.MustCompile(`(?i)@(?:charset|import|namespace)[^;]+;`)
)

// CleanupOptions controls the textual normalization of a stylesheet
type CleanupOptions struct {
	// ExcludeMediaQueries strips @media blocks so their rules are never inlined
	ExcludeMediaQueries bool

	// ExcludeAtRuleStatements strips @charset, @import and @namespace statements
	ExcludeAtRuleStatements bool
}

// Cleanup normalizes raw CSS text before rule parsing: line breaks are
// removed, double quotes become single quotes, comments are stripped and
// whitespace runs are collapsed. Comments are always stripped before media
// queries so a commented-out media query never survives.
func Cleanup(cssText string, opts CleanupOptions) string {
	cssText = strings.NewReplacer("\r", "", "\n", "", `"`, "'").Replace(cssText)
	cssText = RemoveComments(cssText)
	cssText = whitespaceRegex.ReplaceAllString(cssText, " ")

	if opts.ExcludeAtRuleStatements {
		cssText = atRuleStatementRegex.ReplaceAllString(cssText, "")
	}

	if opts.ExcludeMediaQueries {
		cssText = StripMediaQueries(cssText)
	}

	return cssText
}

// RemoveComments removes CSS comments /* ... */
func RemoveComments(cssText string) string {
	return commentRegex.ReplaceAllString(cssText, "")
}

// StripMediaQueries removes @media blocks from the stylesheet
func StripMediaQueries(cssText string) string {
	return mediaQueryRegex.ReplaceAllString(RemoveComments(cssText), "")
}

// ExtractMediaQueries returns every @media block of the stylesheet verbatim,
// in source order. Comments are removed first.
func ExtractMediaQueries(cssText string) []string {
	return mediaQueryRegex.FindAllString(RemoveComments(cssText), -1)
}
