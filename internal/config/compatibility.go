package config

import "strings"

// EmailClientCompatibility holds information about email client CSS support
type EmailClientCompatibility struct {
	SupportsMediaQueries bool
	SupportsPositioning  bool
	SupportsBackgrounds  bool
	RequiresInlineStyles bool
	MaxStyleLength       int // characters per style attribute, 0 = no limit
}

// GetCompatibilityProfile returns compatibility info for major email clients
func GetCompatibilityProfile(client string) EmailClientCompatibility {
	switch strings.ToLower(client) {
	case "outlook", "outlook_desktop":
		return EmailClientCompatibility{
			SupportsMediaQueries: false, // Desktop Outlook uses Word engine
			SupportsPositioning:  false,
			SupportsBackgrounds:  false,
			RequiresInlineStyles: true,
			MaxStyleLength:       8192,
		}
	case "gmail", "gmail_web":
		return EmailClientCompatibility{
			SupportsMediaQueries: true,
			SupportsPositioning:  false,
			SupportsBackgrounds:  true,
			RequiresInlineStyles: false, // But still recommended
			MaxStyleLength:       0,
		}
	case "apple_mail", "mail_app":
		return EmailClientCompatibility{
			SupportsMediaQueries: true,
			SupportsPositioning:  true,
			SupportsBackgrounds:  true,
			RequiresInlineStyles: false,
			MaxStyleLength:       0,
		}
	case "outlook_online", "outlook_web":
		return EmailClientCompatibility{
			SupportsMediaQueries: true,
			SupportsPositioning:  false,
			SupportsBackgrounds:  true,
			RequiresInlineStyles: true,
			MaxStyleLength:       0,
		}
	default:
		// Conservative defaults for unknown clients
		return EmailClientCompatibility{
			SupportsMediaQueries: false,
			SupportsPositioning:  false,
			SupportsBackgrounds:  true,
			RequiresInlineStyles: true,
			MaxStyleLength:       8192,
		}
	}
}
