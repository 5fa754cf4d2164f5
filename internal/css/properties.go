package css

import "strings"

// emailSafeProperties work reliably across email clients
var emailSafeProperties = map[string]bool{
	// Text properties
	"color":           true,
	"font":            true,
	"font-family":     true,
	"font-size":       true,
	"font-weight":     true,
	"font-style":      true,
	"text-align":      true,
	"text-decoration": true,
	"text-indent":     true,
	"text-transform":  true,
	"line-height":     true,
	"letter-spacing":  true,

	// Box model
	"width":          true,
	"height":         true,
	"padding":        true,
	"padding-top":    true,
	"padding-right":  true,
	"padding-bottom": true,
	"padding-left":   true,
	"margin":         true,
	"margin-top":     true,
	"margin-right":   true,
	"margin-bottom":  true,
	"margin-left":    true,
	"display":        true,

	// Background
	"background":       true,
	"background-color": true,
	"background-image": true,

	// Border
	"border":        true,
	"border-top":    true,
	"border-right":  true,
	"border-bottom": true,
	"border-left":   true,
	"border-color":  true,
	"border-style":  true,
	"border-width":  true,

	// Table properties
	"border-collapse": true,
	"border-spacing":  true,
	"vertical-align":  true,
}

// NormalizePropertyName lowercases a property name and drops vendor
// prefixes and the underscore/star hacks used for legacy IE fallbacks
func NormalizePropertyName(property string) string {
	property = strings.ToLower(strings.TrimSpace(property))
	property = strings.TrimLeft(property, "_*")

	for _, prefix := range []string{"-webkit-", "-moz-", "-ms-", "-o-"} {
		if strings.HasPrefix(property, prefix) {
			return strings.TrimPrefix(property, prefix)
		}
	}

	return property
}

// IsEmailSafeProperty checks if a CSS property is safe for email clients
func IsEmailSafeProperty(property string) bool {
	return emailSafeProperties[NormalizePropertyName(property)]
}

// IsVendorSpecific reports properties carrying a vendor prefix or a legacy hack
func IsVendorSpecific(property string) bool {
	return NormalizePropertyName(property) != strings.ToLower(strings.TrimSpace(property))
}
