package css

import (
	"strings"

	"go.uber.org/zap"
)

// Parser turns stylesheet text into a RuleSet in cascade order
type Parser struct {
	log  *zap.Logger
	opts CleanupOptions
}

// NewParser creates a new CSS parser
func NewParser(log *zap.Logger, opts CleanupOptions) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser"), opts: opts}
}

// Parse cleans cssText and parses it into rules sorted by specificity and
// source order. Rules are split on "}", selectors on ",". Chunks without a
// declaration block are dropped.
func (p *Parser) Parse(cssText string) *RuleSet {
	rs := &RuleSet{Rules: make([]Rule, 0)}

	cleaned := Cleanup(cssText, p.opts)

	order := 1
	for chunk := range strings.SplitSeq(cleaned, "}") {
		parts := strings.Split(chunk, "{")
		if len(parts) < 2 {
			continue
		}

		properties := ParseDeclarations(strings.TrimSpace(parts[1]))

		for selector := range strings.SplitSeq(strings.TrimSpace(parts[0]), ",") {
			selector = strings.TrimSpace(selector)
			if selector == "" {
				continue
			}

			rs.Rules = append(rs.Rules, Rule{
				Selector:    selector,
				Specificity: FromSelector(selector),
				Properties:  properties,
				SourceOrder: order,
			})
			order++
		}
	}

	rs.sortRules()

	p.log.Debug("Parsed CSS", zap.Int("bytes", len(cssText)), zap.Int("rules", len(rs.Rules)))
	return rs
}

// ParseDeclarations parses a declaration block into a property map sorted
// by property name. A property repeated with a different value keeps both
// values in declaration order; an identical repeat is dropped.
func ParseDeclarations(block string) *PropertyMap {
	properties := NewPropertyMap()

	for _, declaration := range SplitDeclarations(block) {
		property, value, ok := splitDeclaration(declaration)
		if !ok {
			continue
		}
		properties.Append(property, value)
	}

	properties.SortProperties()
	return properties
}

// ParseInlineStyle parses a style attribute value. Declaration order is
// kept and a repeated property keeps its last value.
func ParseInlineStyle(style string) *PropertyMap {
	properties := NewPropertyMap()

	for _, declaration := range SplitDeclarations(style) {
		property, value, ok := splitDeclaration(declaration)
		if !ok {
			continue
		}
		properties.Set(property, []string{value})
	}

	return properties
}

// SplitDeclarations splits a declaration block on ";". A fragment followed
// by one containing "base64," is joined back with it, since data URIs carry
// a ";" before their payload. Only one level of repair is applied and the
// result may contain empty strings.
func SplitDeclarations(block string) []string {
	parts := strings.Split(block, ";")

	for i := 0; i < len(parts)-1; i++ {
		if strings.Contains(parts[i+1], "base64,") {
			parts[i] += ";" + parts[i+1]
			parts[i+1] = ""
			i++
		}
	}

	return parts
}

// splitDeclaration splits "property: value" on the first colon. Only a
// declaration without a colon is rejected, so "color: ;" keeps its empty
// value.
func splitDeclaration(declaration string) (property, value string, ok bool) {
	property, value, ok = strings.Cut(declaration, ":")
	if !ok {
		return "", "", false
	}

	return strings.TrimSpace(property), strings.TrimSpace(value), true
}
