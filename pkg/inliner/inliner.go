package inliner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"cssinliner/internal/config"
	"cssinliner/internal/css"
	"cssinliner/internal/html"
	"cssinliner/internal/resolver"
)

// ErrNoHTML is returned when conversion is requested without any markup
var ErrNoHTML = errors.New("no HTML provided")

var (
	// styleTagRegex matches <style ...>...</style> blocks; attributes are ignored
	styleTagRegex = regexp.MustCompile(`(?is)<style(?:\s[^>]*)?>(.*?)</style>`)

	// cleanupStyleTagRegex matches style blocks marked with class="cleanup"
	cleanupStyleTagRegex = regexp.MustCompile(`(?is)<style[^>]+class="cleanup"[^>]*>.*?</style>`)

	// htmlCommentRegex matches a single HTML comment
	htmlCommentRegex = regexp.MustCompile(`(?s)<!--.*?-->`)

	// commentedStyleRegex detects a style tag inside a comment
	commentedStyleRegex = regexp.MustCompile(`(?i)<style`)
)

// Inliner is the main CSS inlining engine for email HTML
type Inliner struct {
	config     config.Config
	log        *zap.Logger
	htmlParser html.Parser
}

// New creates a new CSS inliner with the given configuration
func New(cfg config.Config, log *zap.Logger) *Inliner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Inliner{
		config:     cfg,
		log:        log.Named("inliner"),
		htmlParser: html.NewParser(),
	}
}

// NewWithDefaults creates a new CSS inliner with default configuration
func NewWithDefaults() *Inliner {
	return New(config.Default(), nil)
}

// InlineResult contains the result of CSS inlining operation
type InlineResult struct {
	HTML            string                       // Final HTML with inlined styles
	Warnings        []resolver.ValidationWarning // Email compatibility warnings
	ProcessingStats ProcessingStats              // Performance and processing statistics
}

// ProcessingStats contains performance metrics from the inlining process
type ProcessingStats struct {
	CSSRulesParsed        int   // Rules after selector group expansion
	CSSRulesSkipped       int   // Rules whose selector could not be resolved
	HTMLElementsProcessed int   // Elements that had styles applied
	SelectorsMatched      int   // Total selector matches found
	ProcessingTimeMs      int64 // Processing time in milliseconds
}

// Convert inlines cssContent, plus any CSS gathered from the document when
// configured, into the style attributes of htmlContent.
func (i *Inliner) Convert(htmlContent, cssContent string) (*InlineResult, error) {
	start := time.Now()

	if htmlContent == "" {
		return nil, ErrNoHTML
	}

	// style blocks marked for cleanup are neither inlined nor kept
	htmlContent = cleanupStyleTagRegex.ReplaceAllString(htmlContent, " ")

	doc, err := i.htmlParser.Parse(htmlContent)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var cssText strings.Builder
	cssText.WriteString(cssContent)

	if i.config.LoadExternalStylesheets {
		cssText.WriteString(i.loadExternalStylesheets(doc))
	}

	if i.config.UseEmbeddedStyleBlocks {
		source := htmlContent
		if i.config.ExcludeConditionalCommentBlocks {
			source = removeCommentedStyleBlocks(source)
		}
		cssText.WriteString(CSSFromStyleBlocks(source))
	}

	parser := css.NewParser(i.log, css.CleanupOptions{
		ExcludeMediaQueries:     i.config.ExcludeMediaQueries,
		ExcludeAtRuleStatements: i.config.ExcludeCSSCharset,
	})
	rules := parser.Parse(cssText.String())

	applied := resolver.New(i.config, i.log).Apply(doc, rules)

	if i.config.RemoveEmbeddedStyleBlocks {
		i.removeStyleTags(doc)
	}

	if i.config.StripClassAndID {
		doc.RemoveAttributes("class", "id")
	}

	warnings := applied.Warnings
	profile := config.GetCompatibilityProfile(i.config.TargetEmailClient)
	for _, styleTag := range doc.StyleTags() {
		warnings = append(warnings, resolver.ValidateStyleBlock(styleTag.Text(), profile)...)
	}

	mode := html.OutputHTML
	if i.config.OutputXHTML {
		mode = html.OutputXHTML
	}

	finalHTML, err := doc.Render(mode)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize HTML: %w", err)
	}

	return &InlineResult{
		HTML:     finalHTML,
		Warnings: warnings,
		ProcessingStats: ProcessingStats{
			CSSRulesParsed:        rules.Len(),
			CSSRulesSkipped:       applied.RulesSkipped,
			HTMLElementsProcessed: applied.ElementsStyled,
			SelectorsMatched:      applied.SelectorsMatched,
			ProcessingTimeMs:      time.Since(start).Milliseconds(),
		},
	}, nil
}

// ConvertString is a convenience method returning only the converted HTML
func (i *Inliner) ConvertString(htmlContent, cssContent string) (string, error) {
	result, err := i.Convert(htmlContent, cssContent)
	if err != nil {
		return "", err
	}
	return result.HTML, nil
}

// CSSFromStyleBlocks concatenates the trimmed contents of all <style>
// blocks in document order, one block per line
func CSSFromStyleBlocks(htmlContent string) string {
	var cssContent strings.Builder

	for _, match := range styleTagRegex.FindAllStringSubmatch(htmlContent, -1) {
		cssContent.WriteString(strings.TrimSpace(match[1]))
		cssContent.WriteString("\n")
	}

	return cssContent.String()
}

// removeCommentedStyleBlocks drops HTML comments containing a <style> tag,
// e.g. <!--[if mso]><style>...</style><![endif]-->
func removeCommentedStyleBlocks(htmlContent string) string {
	return htmlCommentRegex.ReplaceAllStringFunc(htmlContent, func(comment string) string {
		if commentedStyleRegex.MatchString(comment) {
			return ""
		}
		return comment
	})
}

// loadExternalStylesheets reads linked stylesheets relative to the
// configured base path and removes the <link> elements. Missing files are
// skipped.
func (i *Inliner) loadExternalStylesheets(doc html.Document) string {
	basePath := i.config.StylesheetBasePath
	if basePath == "" {
		basePath = "."
	}

	var cssContent strings.Builder
	for _, link := range doc.StylesheetLinks() {
		href, _ := link.Attr("href")
		link.Remove()

		file := filepath.Join(basePath, filepath.FromSlash(href))
		data, err := os.ReadFile(file)
		if err != nil {
			i.log.Debug("Skipping external stylesheet", zap.String("href", href), zap.Error(err))
			continue
		}

		i.log.Debug("Loaded external stylesheet", zap.String("file", file), zap.Int("bytes", len(data)))
		cssContent.Write(data)
		cssContent.WriteString("\n")
	}

	return cssContent.String()
}

// removeStyleTags removes <style> elements. With media query exclusion on,
// the elements stay and keep only their @media blocks.
func (i *Inliner) removeStyleTags(doc html.Document) {
	for _, styleTag := range doc.StyleTags() {
		if !i.config.ExcludeMediaQueries {
			styleTag.Remove()
			continue
		}

		mediaQueries := css.ExtractMediaQueries(styleTag.Text())
		styleTag.SetText(strings.Join(mediaQueries, "\n"))

		if len(mediaQueries) > 0 {
			i.log.Debug("Preserved media queries", zap.Int("count", len(mediaQueries)))
		}
	}
}

// InlineCSS is a convenience function that inlines CSS with default configuration
func InlineCSS(htmlContent, cssContent string) (string, error) {
	return NewWithDefaults().ConvertString(htmlContent, cssContent)
}

// InlineCSSWithConfig is a convenience function that inlines CSS with custom configuration
func InlineCSSWithConfig(htmlContent, cssContent string, cfg config.Config) (string, error) {
	return New(cfg, nil).ConvertString(htmlContent, cssContent)
}
