package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/rupor-github/gencfg"
	yaml "gopkg.in/yaml.v3"
)

// Config holds configuration options for the inlining process
type Config struct {
	// StripClassAndID removes class and id attributes after inlining
	StripClassAndID bool `yaml:"strip_class_and_id"`

	// UseEmbeddedStyleBlocks appends the contents of <style> blocks to the CSS
	UseEmbeddedStyleBlocks bool `yaml:"use_embedded_style_blocks"`

	// LoadExternalStylesheets reads <link> stylesheets relative to StylesheetBasePath
	LoadExternalStylesheets bool   `yaml:"load_external_stylesheets"`
	StylesheetBasePath      string `yaml:"stylesheet_base_path"`

	// RemoveEmbeddedStyleBlocks removes <style> elements after inlining,
	// keeping only their media queries when ExcludeMediaQueries is set
	RemoveEmbeddedStyleBlocks bool `yaml:"remove_embedded_style_blocks"`

	// ExcludeMediaQueries keeps @media rules from being inlined
	ExcludeMediaQueries bool `yaml:"exclude_media_queries"`

	// ExcludeConditionalCommentBlocks ignores <style> blocks inside HTML comments
	ExcludeConditionalCommentBlocks bool `yaml:"exclude_conditional_comment_blocks"`

	// ExcludeCSSCharset strips @charset, @import and @namespace statements
	ExcludeCSSCharset bool `yaml:"exclude_css_charset"`

	// OutputXHTML serializes the result with XML syntax
	OutputXHTML bool `yaml:"output_xhtml"`

	// TargetEmailClient selects the profile used for compatibility warnings
	TargetEmailClient string `yaml:"target_email_client" validate:"oneof=generic outlook outlook_desktop gmail gmail_web apple_mail mail_app outlook_online outlook_web"`

	Logging LoggingConfig `yaml:"logging"`
}

// Default returns the default configuration
func Default() Config {
	return Config{
		StripClassAndID:                 false,
		UseEmbeddedStyleBlocks:          false,
		LoadExternalStylesheets:         false,
		RemoveEmbeddedStyleBlocks:       false,
		ExcludeMediaQueries:             true, // Media queries cannot be expressed inline
		ExcludeConditionalCommentBlocks: true, // <!--[if mso]><style>..</style><![endif]--> is not live styling
		ExcludeCSSCharset:               true,
		OutputXHTML:                     false,
		TargetEmailClient:               "generic",
		Logging: LoggingConfig{
			Console: LoggerConfig{Level: "normal"},
		},
	}
}

// LoadConfiguration reads the yaml file at path and superimposes its values
// on top of the defaults. An empty path returns the defaults.
func LoadConfiguration(path string) (*Config, error) {
	cfg := Default()
	if len(path) == 0 {
		return &cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := unmarshalConfig(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return &cfg, nil
}

func unmarshalConfig(data []byte, cfg *Config) error {
	// only fields we defined are allowed
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("failed to decode configuration data: %w", err)
	}
	return Validate(cfg)
}

// Validate checks field constraints
func Validate(cfg *Config) error {
	if err := gencfg.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Dump marshals the configuration to yaml
func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}
