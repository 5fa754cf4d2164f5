package resolver

import (
	"strings"

	"cssinliner/internal/config"
	"cssinliner/internal/css"
)

// ValidationWarning represents a potential issue with computed styles
type ValidationWarning struct {
	Element  string
	Property string
	Value    string
	Message  string
	Severity string // "error", "warning", "info"
}

// ValidateStyles checks the inlined styles of one element against an email
// client profile. It is advisory only and never changes the styles.
func ValidateStyles(element string, styles *css.PropertyMap, profile config.EmailClientCompatibility) []ValidationWarning {
	var warnings []ValidationWarning

	warn := func(property, value, message, severity string) {
		warnings = append(warnings, ValidationWarning{
			Element:  element,
			Property: property,
			Value:    value,
			Message:  message,
			Severity: severity,
		})
	}

	if profile.MaxStyleLength > 0 {
		if style := styles.String(); len(style) > profile.MaxStyleLength {
			warn("style", "", "Inline style exceeds the length this email client keeps", "warning")
		}
	}

	for _, property := range styles.Properties() {
		values, _ := styles.Get(property)
		value := strings.Join(values, " ")
		name := css.NormalizePropertyName(property)

		// Check for problematic property values
		switch name {
		case "background", "background-image":
			if strings.Contains(value, "url(") && !profile.SupportsBackgrounds {
				warn(property, value, "Background images may not render in this email client", "warning")
			}

		case "width", "height":
			if strings.Contains(value, "vw") || strings.Contains(value, "vh") {
				warn(property, value, "Viewport units not supported in email clients", "error")
			}

		case "position":
			if !strings.HasPrefix(value, "static") && !profile.SupportsPositioning {
				warn(property, value, "Positioning not supported in this email client", "warning")
			}
		}

		// Vendor fallbacks are intentional and not reported
		if !css.IsEmailSafeProperty(property) && !css.IsVendorSpecific(property) {
			warn(property, value, "Property may not be supported across all email clients", "info")
		}
	}

	return warnings
}

// ValidateStyleBlock checks a <style> block left in the output against an
// email client profile
func ValidateStyleBlock(content string, profile config.EmailClientCompatibility) []ValidationWarning {
	var warnings []ValidationWarning

	if profile.RequiresInlineStyles && strings.TrimSpace(css.StripMediaQueries(content)) != "" {
		warnings = append(warnings, ValidationWarning{
			Element:  "style",
			Message:  "Style blocks are ignored by this email client, only inline styles apply",
			Severity: "warning",
		})
	}

	if !profile.SupportsMediaQueries {
		for _, query := range css.ExtractMediaQueries(content) {
			warnings = append(warnings, ValidationWarning{
				Element:  "style",
				Property: "@media",
				Value:    mediaPrelude(query),
				Message:  "Media queries are not supported in this email client",
				Severity: "warning",
			})
		}
	}

	return warnings
}

// mediaPrelude returns the @media line of a block without its body
func mediaPrelude(block string) string {
	prelude, _, _ := strings.Cut(block, "{")
	return strings.TrimSpace(prelude)
}
