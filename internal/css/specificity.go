package css

import (
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// legacyPseudoElements may be written with a single colon and still count
// as pseudo-elements.
var legacyPseudoElements = map[string]bool{
	"before":       true,
	"after":        true,
	"first-letter": true,
	"first-line":   true,
	"selection":    true,
}

// FromSelector calculates the specificity of a single selector.
//
// IDs count towards the first component; classes, attribute selectors and
// pseudo-classes towards the second; type selectors and pseudo-elements
// towards the third. The universal selector, namespace prefixes and
// combinators count nothing.
// Arguments of functional pseudo-classes are not inspected, so :not(...)
// contributes nothing at all.
func FromSelector(selector string) Specificity {
	var result Specificity

	lexer := css.NewLexer(parse.NewInputString(selector))

	var (
		afterDot bool
		colons   int
		depth    int  // nesting of [...] and (...) whose contents are skipped
		typeName bool // previous token was counted as a type selector
	)

	for {
		tt, data := lexer.Next()
		if tt == css.ErrorToken {
			break
		}

		if depth > 0 {
			switch tt {
			case css.LeftBracketToken, css.LeftParenthesisToken, css.FunctionToken:
				depth++
			case css.RightBracketToken, css.RightParenthesisToken:
				depth--
			}
			continue
		}

		switch tt {
		case css.ColonToken:
			colons++
			afterDot = false
			typeName = false
			continue
		case css.HashToken:
			result.Increase(1, 0, 0)
		case css.LeftBracketToken:
			result.Increase(0, 1, 0)
			depth++
		case css.IdentToken:
			result.Increase(identWeight(strings.ToLower(string(data)), colons, afterDot))
			typeName = colons == 0 && !afterDot
			afterDot = false
			colons = 0
			continue
		case css.FunctionToken:
			name := strings.ToLower(strings.TrimSuffix(string(data), "("))
			if !(colons == 1 && name == "not") {
				result.Increase(identWeight(name, colons, false))
			}
			depth++
		case css.DelimToken:
			if len(data) == 1 && data[0] == '.' {
				afterDot = true
				colons = 0
				typeName = false
				continue
			}
			// ns|p: the namespace prefix is not a type selector
			if len(data) == 1 && data[0] == '|' && typeName {
				result.Increase(0, 0, -1)
			}
		}

		afterDot = false
		colons = 0
		typeName = false
	}

	return result
}

// identWeight classifies an identifier by what precedes it
func identWeight(name string, colons int, afterDot bool) (ids, classes, elements int) {
	switch {
	case colons >= 2:
		return 0, 0, 1
	case colons == 1 && legacyPseudoElements[name]:
		return 0, 0, 1
	case colons == 1, afterDot:
		return 0, 1, 0
	default:
		return 0, 0, 1
	}
}
