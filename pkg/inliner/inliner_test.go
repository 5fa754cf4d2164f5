package inliner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cssinliner/internal/config"
)

func convert(t *testing.T, cfg config.Config, markup, stylesheet string) string {
	t.Helper()

	out, err := New(cfg, zap.NewNop()).ConvertString(markup, stylesheet)
	require.NoError(t, err)
	return out
}

func embeddedConfig() config.Config {
	cfg := config.Default()
	cfg.UseEmbeddedStyleBlocks = true
	cfg.RemoveEmbeddedStyleBlocks = true
	return cfg
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name       string
		markup     string
		stylesheet string
		expected   string
	}{
		{
			name:       "element selector",
			markup:     `<div></div>`,
			stylesheet: `div { display: none; }`,
			expected:   `<div style="display: none;"></div>`,
		},
		{
			name:       "original style kept",
			markup:     `<h1></h1><div mc:edit="body_content" style="display: block;"><span>test</span></div>`,
			stylesheet: `div { display: none; }`,
			expected:   `<h1></h1><div mc:edit="body_content" style="display: block;"><span>test</span></div>`,
		},
		{
			name:       "class selector",
			markup:     `<a class="test-class">nodeContent</a>`,
			stylesheet: `.test-class { background-color: #aaa; text-decoration: none; }`,
			expected:   `<a class="test-class" style="background-color: #aaa; text-decoration: none;">nodeContent</a>`,
		},
		{
			name:       "id selector",
			markup:     `<img id="IMG1">`,
			stylesheet: `#IMG1 { border: 1px solid red; }`,
			expected:   `<img id="IMG1" style="border: 1px solid red;">`,
		},
		{
			name:   "utf-8 selectors",
			markup: `<div id="東とう京" class="ɹǝddɐɹʍ" style="color: white;"></div>`,
			stylesheet: `
    .ɹǝddɐɹʍ { display: none;}
    #東とう京{ color: black !important}
    `,
			expected: `<div id="東とう京" class="ɹǝddɐɹʍ" style="display: none; color: black !important;"></div>`,
		},
		{
			name:   "comments",
			markup: `<h1><a>foo</a></h1>`,
			stylesheet: `a {
    padding: 5px;
    display: block;
}
/* style the titles */
h1 {
    color: rebeccapurple;
}
/* end of title styles */`,
			expected: `<h1 style="color: rebeccapurple;"><a style="display: block; padding: 5px;">foo</a></h1>`,
		},
		{
			name:   "media queries are not inlined",
			markup: `<a>foo</a>`,
			stylesheet: `@media (max-width: 600px) {
    a {
        color: green;
    }
}
a {
  color: red;
}`,
			expected: `<a style="color: red;">foo</a>`,
		},
		{
			name:   "overwritten properties move to the end",
			markup: `<p class="one"></p>`,
			stylesheet: `p {
  margin: 0;
}
p {
  margin-bottom: 10px;
}
p {
  margin: 0;
}
p {
  padding-bottom: 10px;
}
p {
  padding: 10px;
}`,
			expected: `<p class="one" style="margin-bottom: 10px; margin: 0; padding-bottom: 10px; padding: 10px;"></p>`,
		},
		{
			name:       "merge original styles",
			markup:     `<p style="padding: 20px; margin-top: 10px;">text</p>`,
			stylesheet: "p {\n  margin-top: 20px;\n  text-indent: 1em;\n}",
			expected:   `<p style="text-indent: 1em; padding: 20px; margin-top: 10px;">text</p>`,
		},
		{
			name:       "equal specificity",
			markup:     `<img class="one">`,
			stylesheet: ` .one { display: inline; } a > strong {} a {} a {} a {} a {} a {} a {}a {} img { display: block; }`,
			expected:   `<img class="one" style="display: inline;">`,
		},
		{
			name:       "invalid selector",
			markup:     `<p></p>`,
			stylesheet: ` p&@*$%& { display: inline; }`,
			expected:   `<p></p>`,
		},
		{
			name:       "quotes and utf-8 text",
			markup:     `<p>This is a test heading with various things such as <strong>bold</strong>, <span style="text-decoration: underline;"><strong>bold-underline</strong></span><strong></strong>, <em>italics</em>, and various other cool things.</p><p>Штампы гіст Эйн тэст!</p>`,
			stylesheet: `p { color: "red" }`,
			expected:   `<p style="color: 'red';">This is a test heading with various things such as <strong>bold</strong>, <span style="text-decoration: underline;"><strong>bold-underline</strong></span><strong></strong>, <em>italics</em>, and various other cool things.</p><p style="color: 'red';">Штампы гіст Эйн тэст!</p>`,
		},
		{
			name:       "charset statement stripped",
			markup:     `<p></p>`,
			stylesheet: `@charset "UTF-8"; p { color: red; }`,
			expected:   `<p style="color: red;"></p>`,
		},
		{
			name:       "empty value kept",
			markup:     `<p>x</p>`,
			stylesheet: `p { color: ; margin: 0 }`,
			expected:   `<p style="color: ; margin: 0;">x</p>`,
		},
		{
			name:       "no stylesheet",
			markup:     `<p style="color: red">x</p>`,
			stylesheet: ``,
			expected:   `<p style="color: red">x</p>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, convert(t, config.Default(), tt.markup, tt.stylesheet))
		})
	}
}

func TestConvertSpecificity(t *testing.T) {
	markup := `<a class="one" id="ONE" style="padding: 100px;">` +
		`<img class="two" id="TWO" style="padding-top: 30px;">` +
		`<img class="three" id="THREE">` +
		`<img class="four" id="FOUR" style="margin-left: 100px;">` +
		`<img class="five" id="FIVE" style="padding-left: 10px; padding: 100px;">` +
		`</a>`

	stylesheet := `a.one  {
  border-bottom: 2px;
  height: 20px;
}
a {
  border: 1px solid red;
  padding: 10px;
  margin: 20px;
  width: 10px !important;
  height: 10px;
}
.one {
  padding: 15px;
  width: 20px !important;
  height: 5px;
}
#ONE {
  margin: 10px;
  width: 30px;
}
.two {
  padding-top: 20px;
}
img {
  padding: 0;
}
a img {
  border: none;
}
img {
  border: 2px solid green;
  padding-bottom: 20px;
}
img {
  padding: 0;
}
#THREE {
  padding-left: 10px;
}
.three {
  padding: 100px;
}
.four {
  margin: 10px;
}
.five {
  padding: 15px;
}
#FIVE {
  padding-left: 20px;
}`

	expected := `<a class="one" id="ONE" style="border: 1px solid red; width: 20px !important; border-bottom: 2px; height: 20px; margin: 10px; padding: 100px;">` +
		`<img class="two" id="TWO" style="padding-bottom: 20px; padding: 0; border: none; padding-top: 30px;">` +
		`<img class="three" id="THREE" style="padding-bottom: 20px; border: none; padding: 100px; padding-left: 10px;">` +
		`<img class="four" id="FOUR" style="padding-bottom: 20px; padding: 0; border: none; margin: 10px; margin-left: 100px;">` +
		`<img class="five" id="FIVE" style="padding-bottom: 20px; border: none; padding-left: 10px; padding: 100px;">` +
		`</a>`

	assert.Equal(t, expected, convert(t, config.Default(), markup, stylesheet))
}

func TestConvertStyleBlocks(t *testing.T) {
	tests := []struct {
		name     string
		markup   string
		expected string
	}{
		{
			name:     "media query kept in style block",
			markup:   `<html><body><style>@media (max-width: 600px) { .test { display: none; } } h1 { color : "red" }</style><div class="test"><h1>foo</h1><h1>foo2</h1></div></body></html>`,
			expected: `<html><body><style>@media (max-width: 600px) { .test { display: none; } }</style><div class="test"><h1 style="color: 'red';">foo</h1><h1 style="color: 'red';">foo2</h1></div></body></html>`,
		},
		{
			name:   "several media queries kept in style block",
			markup: `<html><body><style>@media (max-width: 600px) { .test { display: none; } } @media (max-width: 500px) { .test { top: 1rem; } } h1 { color : "red" }</style><div class="test"><h1>foo</h1><h1>foo2</h1></div></body></html>`,
			expected: `<html><body><style>@media (max-width: 600px) { .test { display: none; } }
@media (max-width: 500px) { .test { top: 1rem; } }</style><div class="test"><h1 style="color: 'red';">foo</h1><h1 style="color: 'red';">foo2</h1></div></body></html>`,
		},
		{
			name:     "duplicate declarations kept as fallbacks",
			markup:   `<html><body><style>div { width: 200px; _width: 222px; width: 222px; }</style><div class="test"><h1>foo</h1><h1>foo2</h1></div></body></html>`,
			expected: `<html><body><style></style><div class="test" style="_width: 222px; width: 200px; width: 222px;"><h1>foo</h1><h1>foo2</h1></div></body></html>`,
		},
		{
			name: "base64 data uri",
			markup: `<html><body><style>@media (max-width: 600px) { .test { display: none; } } h1 { color : "red" } .bg {
background-image: url('data:image/jpg;base64,/9j/4QAYRXhpZgAASUkqAAgAA//Z'); } </style><div class="test"><h1>foo</h1><h1>foo2</h1><table class="bg"></table></div></body></html>`,
			expected: `<html><body><style>@media (max-width: 600px) { .test { display: none; } }</style><div class="test"><h1 style="color: 'red';">foo</h1><h1 style="color: 'red';">foo2</h1><table class="bg" style="background-image: url('data:image/jpg;base64,/9j/4QAYRXhpZgAASUkqAAgAA//Z');"></table></div></body></html>`,
		},
		{
			name:     "conditional comment blocks ignored",
			markup:   `<html><body><style>div { width: 200px; width: 222px; }</style><!--[if gte mso 9]><STyle>.test { top: 1em; } </STyle><![endif]--><div class="test"><h1>foo</h1><h1>foo2</h1></div></body></html>`,
			expected: `<html><body><style></style><!--[if gte mso 9]><STyle>.test { top: 1em; } </STyle><![endif]--><div class="test" style="width: 200px; width: 222px;"><h1>foo</h1><h1>foo2</h1></div></body></html>`,
		},
		{
			name:     "commented out style blocks ignored",
			markup:   `<html><body><style>div { width: 200px; width: 222px; }</style><!--[if gte mso 9]><STyle>.test { top: 1em; } </STyle><![endif]--><!-- <style> .test { width: 0 !important; } </style> --><div class="test"><h1>foo</h1><h1>foo2</h1></div></body></html>`,
			expected: `<html><body><style></style><!--[if gte mso 9]><STyle>.test { top: 1em; } </STyle><![endif]--><!-- <style> .test { width: 0 !important; } </style> --><div class="test" style="width: 200px; width: 222px;"><h1>foo</h1><h1>foo2</h1></div></body></html>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, convert(t, embeddedConfig(), tt.markup, ""))
		})
	}
}

func TestConvertConditionalCommentBlocksIncluded(t *testing.T) {
	cfg := embeddedConfig()
	cfg.ExcludeConditionalCommentBlocks = false

	markup := `<html><body><style>div { width: 200px; width: 222px; }</style><!--[if gte mso 9]><STyle>.test { top: 1em; } </STyle><![endif]--><div class="test"><h1>foo</h1><h1>foo2</h1></div></body></html>`
	expected := `<html><body><style></style><!--[if gte mso 9]><STyle>.test { top: 1em; } </STyle><![endif]--><div class="test" style="width: 200px; width: 222px; top: 1em;"><h1>foo</h1><h1>foo2</h1></div></body></html>`

	assert.Equal(t, expected, convert(t, cfg, markup, ""))
}

func TestConvertKeepsStyleBlocks(t *testing.T) {
	cfg := config.Default()
	cfg.UseEmbeddedStyleBlocks = true

	markup := `<html><body><style>@media (max-width: 600px) { .test { display: none; } } h1 { color : "red" }</style><div class="test"><h1>foo</h1><h1>foo2</h1></div></body></html>`
	expected := `<html><body><style>@media (max-width: 600px) { .test { display: none; } } h1 { color : "red" }</style><div class="test"><h1 style="color: 'red';">foo</h1><h1 style="color: 'red';">foo2</h1></div></body></html>`

	assert.Equal(t, expected, convert(t, cfg, markup, ""))
}

func TestConvertMediaQueriesUntouched(t *testing.T) {
	cfg := config.Default()
	cfg.UseEmbeddedStyleBlocks = true

	documents := []string{
		`<html><head><style>@media (max-width: 600px) {.foo {margin: 0;}}</style></head><body><div class="foo"></div></body></html>`,
		`<html><head><style>@media tv and (min-width: 700px) and (orientation: landscape) {.foo {display: none;}}</style></head><body><div class="foo"></div></body></html>`,
		`<html><head><style>@media (min-width: 700px), handheld and (orientation: landscape) {.foo {display: none;}}</style></head><body><div class="foo"></div></body></html>`,
		`<html><head><style>@media not screen and (color), print and (color)</style></head><body><div class="foo"></div></body></html>`,
		`<html><head><style>@media screen and (min-aspect-ratio: 1/1) {.foo {display: none;}}</style></head><body><div class="foo"></div></body></html>`,
		`<html><head><style>@media screen and (device-aspect-ratio: 16/9), screen and (device-aspect-ratio: 16/10) {.foo {display: none;}}</style></head><body><div class="foo"></div></body></html>`,
	}

	for _, markup := range documents {
		assert.Equal(t, markup, convert(t, cfg, markup, ""))
	}
}

func TestConvertInlineStylesBlock(t *testing.T) {
	cfg := config.Default()
	cfg.UseEmbeddedStyleBlocks = true

	markup := `<style type="text/css">
  a {
    padding: 10px;
    margin: 0;
  }
</style>
<a></a>`

	assert.Contains(t, convert(t, cfg, markup, ""), `<a style="margin: 0; padding: 10px;"></a>`)
}

func TestConvertRemovesStyleBlocks(t *testing.T) {
	cfg := config.Default()
	cfg.RemoveEmbeddedStyleBlocks = true
	cfg.ExcludeMediaQueries = false

	markup := `<style type="text/css">a { padding: 10px; }</style><a></a>`

	assert.Equal(t, `<a></a>`, convert(t, cfg, markup, ""))
}

func TestConvertStripClassAndID(t *testing.T) {
	cfg := config.Default()
	cfg.StripClassAndID = true

	out := convert(t, cfg,
		`<div id="id" class="className"> id="foo" class="bar" </div>`,
		` #id { display: inline; } .className { margin-right: 10px; }`)

	assert.Equal(t, `<div style="margin-right: 10px; display: inline;"> id="foo" class="bar" </div>`, out)
}

func TestConvertStripClassAndIDWithStyleBlocks(t *testing.T) {
	cfg := config.Default()
	cfg.StripClassAndID = true
	cfg.UseEmbeddedStyleBlocks = true

	stylesheet := ` #id { display: inline; } .className { margin-right: 10px; }`

	out := convert(t, cfg,
		`<style>div { top: 1em; }</style><style>div { left: 1em; }</style><div id="id" class="className"> id="foo" class="bar" </div>`,
		stylesheet)
	assert.Equal(t, `<style>div { top: 1em; }</style><style>div { left: 1em; }</style><div style="top: 1em; left: 1em; margin-right: 10px; display: inline;"> id="foo" class="bar" </div>`, out)

	// blocks marked for cleanup are dropped before anything else
	out = convert(t, cfg,
		`<style class="cleanup">div { top: 1em; }</style><style>.cleanup { top: 1em; } div { left: 1em; }</style><div id="id" class="className"> id="foo" class="bar" </div>`,
		stylesheet)
	assert.Equal(t, `<style>.cleanup { top: 1em; } div { left: 1em; }</style><div style="left: 1em; margin-right: 10px; display: inline;"> id="foo" class="bar" </div>`, out)
}

func TestConvertCharsetKeptWhenNotExcluded(t *testing.T) {
	cfg := config.Default()
	cfg.ExcludeCSSCharset = false

	// the statement glues onto the next selector, which then fails to resolve
	assert.Equal(t, `<p></p>`, convert(t, cfg, `<p></p>`, `@charset "UTF-8"; p { color: red; }`))
}

func TestConvertXHTML(t *testing.T) {
	cfg := config.Default()
	cfg.OutputXHTML = true

	assert.Equal(t, `<a style="display: block;"><img /></a>`, convert(t, cfg, `<a><img></a>`, `a { display: block; }`))

	out := convert(t, cfg, `<?xml version="1.0" encoding="utf-8"?><html><body><p>Foo</p></body>`, "")
	assert.NotContains(t, out, "<?xml")
	assert.NotContains(t, out, "?xml")
	assert.Equal(t, `<html><body><p>Foo</p></body></html>`, out)
}

func TestConvertExternalStylesheets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "style.css"), []byte("p { color: red; }"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "css"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "css", "extra.css"), []byte("p { margin: 0; }"), 0644))

	cfg := config.Default()
	cfg.LoadExternalStylesheets = true
	cfg.StylesheetBasePath = dir

	markup := `<html><head><link rel="stylesheet" href="style.css"><link rel="stylesheet" href="css/extra.css"><link rel="stylesheet" href="missing.css"><link rel="icon" href="favicon.ico"></head><body><p>x</p></body></html>`
	expected := `<html><head><link rel="icon" href="favicon.ico"></head><body><p style="color: red; margin: 0;">x</p></body></html>`

	assert.Equal(t, expected, convert(t, cfg, markup, ""))
}

func TestConvertNoHTML(t *testing.T) {
	_, err := NewWithDefaults().Convert("", "p { color: red; }")
	assert.ErrorIs(t, err, ErrNoHTML)

	_, err = InlineCSS("", "")
	assert.ErrorIs(t, err, ErrNoHTML)
}

func TestConvertIsRepeatable(t *testing.T) {
	engine := New(config.Default(), nil)

	tests := []struct {
		stylesheet string
		expected   string
	}{
		{`p { margin: 10px; }`, `<p style="margin: 10px;"></p>`},
		{`p { padding: 10px; margin: 10px; }`, `<p style="margin: 10px; padding: 10px;"></p>`},
		{`p { padding: 10px; }`, `<p style="padding: 10px;"></p>`},
	}

	for _, tt := range tests {
		out, err := engine.ConvertString(`<p></p>`, tt.stylesheet)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, out)
	}
}

func TestConvertResult(t *testing.T) {
	cfg := embeddedConfig()
	cfg.TargetEmailClient = "outlook"

	result, err := New(cfg, zap.NewNop()).Convert(
		`<html><body><style>h1 { color: red } .bg { background-image: url(a.png); } td[ { color: blue }</style><h1>foo</h1><h1>foo2</h1><table class="bg"></table></body></html>`,
		"")
	require.NoError(t, err)

	stats := result.ProcessingStats
	assert.Equal(t, 3, stats.CSSRulesParsed)
	assert.Equal(t, 1, stats.CSSRulesSkipped)
	assert.Equal(t, 3, stats.SelectorsMatched)
	assert.Equal(t, 3, stats.HTMLElementsProcessed)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "table", result.Warnings[0].Element)
	assert.Equal(t, "background-image", result.Warnings[0].Property)
}

func TestCSSFromStyleBlocks(t *testing.T) {
	markup := `<style>a { b: c; }</style><STYLE type="text/css">
  p { }
</STYLE><stylesheet>x</stylesheet><p>text</p>`

	assert.Equal(t, "a { b: c; }\np { }\n", CSSFromStyleBlocks(markup))
	assert.Equal(t, "", CSSFromStyleBlocks(`<p>no styles</p>`))
}

func TestInlineCSSWithConfig(t *testing.T) {
	cfg := config.Default()
	cfg.OutputXHTML = true

	out, err := InlineCSSWithConfig(`<p><br></p>`, `p { color: red; }`, cfg)
	require.NoError(t, err)
	assert.Equal(t, `<p style="color: red;"><br /></p>`, out)

	out, err = InlineCSS(`<p><br></p>`, `p { color: red; }`)
	require.NoError(t, err)
	assert.Equal(t, `<p style="color: red;"><br></p>`, out)
}

func TestConvertStyleBlockWarnings(t *testing.T) {
	markup := `<style>@media (max-width: 600px) { h1 { margin: 0; } } h1 { color: red; }</style><h1>foo</h1>`

	tests := []struct {
		name       string
		remove     bool
		client     string
		properties []string
	}{
		{"media queries kept for strict client", true, "outlook", []string{"@media"}},
		{"media queries kept for capable client", true, "gmail", nil},
		{"whole block kept for strict client", false, "outlook_web", []string{""}},
		{"whole block kept for lenient client", false, "apple_mail", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.UseEmbeddedStyleBlocks = true
			cfg.RemoveEmbeddedStyleBlocks = tt.remove
			cfg.TargetEmailClient = tt.client

			result, err := New(cfg, zap.NewNop()).Convert(markup, "")
			require.NoError(t, err)

			var properties []string
			for _, w := range result.Warnings {
				assert.Equal(t, "style", w.Element)
				properties = append(properties, w.Property)
			}
			assert.Equal(t, tt.properties, properties)
		})
	}
}

func TestConvertWrapperTagsOutsideMarkup(t *testing.T) {
	tests := []struct {
		markup   string
		expected string
	}{
		{`<!-- <body> --><p>x</p>`, `<!-- <body> --><p style="margin: 0;">x</p>`},
		{`<p data-x="<html>">x</p>`, `<p data-x="<html>" style="margin: 0;">x</p>`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, convert(t, config.Default(), tt.markup, "p { margin: 0 }"))
	}
}
