// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// PatternConfig is the configured form of one marker pattern. Every field is a
// regular expression in Go RE2 syntax.
type PatternConfig struct {
	// Start matches a line that opens a snippet. The line must also carry an
	// <id:NAME> token for a snippet to be recorded.
	Start string `json:"start" yaml:"start" mapstructure:"start"`

	// End matches a line that closes the currently open snippet.
	End string `json:"end" yaml:"end" mapstructure:"end"`

	// Cleanups are applied in order to the joined snippet body; every match
	// is removed.
	Cleanups []string `json:"cleanups,omitempty" yaml:"cleanups,omitempty" mapstructure:"cleanups"`
}

// ParserConfig holds settings for snippet extraction.
type ParserConfig struct {
	// Patterns are the marker patterns scanned simultaneously. When empty the
	// built-in default pattern is used.
	Patterns []PatternConfig `json:"patterns" yaml:"patterns" mapstructure:"patterns"`
}

// CollectorConfig holds settings for file discovery.
type CollectorConfig struct {
	// Includes are regular expressions matched against root-relative paths.
	// An empty list includes every file.
	Includes []string `json:"includes" yaml:"includes" mapstructure:"includes"`

	// Excludes are regular expressions matched against root-relative paths.
	Excludes []string `json:"excludes" yaml:"excludes" mapstructure:"excludes"`

	// Ignore are glob patterns (e.g. ".git/**") for files and directories that
	// are never walked.
	Ignore []string `json:"ignore" yaml:"ignore" mapstructure:"ignore"`
}

// ReplacerConfig holds the marker templates used to find snippet
// destinations in target documents.
type ReplacerConfig struct {
	// Start is the start marker template; it must contain exactly one {id}.
	Start string `json:"start" yaml:"start" mapstructure:"start"`

	// End is the end marker template; it must contain exactly one {id}.
	End string `json:"end" yaml:"end" mapstructure:"end"`
}

// Config groups all settings read from the config file and environment.
type Config struct {
	Parser    ParserConfig    `json:"parser" yaml:"parser" mapstructure:"parser"`
	Collector CollectorConfig `json:"collector" yaml:"collector" mapstructure:"collector"`
	Replacer  ReplacerConfig  `json:"replacer" yaml:"replacer" mapstructure:"replacer"`

	// Workers bounds the number of files processed concurrently.
	// Zero uses the number of CPUs.
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`
}

// Format selects the serialization used when exporting snippets.
type Format string

const (
	// FormatNone writes snippet bodies only.
	FormatNone   Format = ""
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatTOML   Format = "toml"
	FormatSQLite Format = "sqlite"
)

// Extension returns the file extension used for the format.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	case FormatSQLite:
		return "db"
	default:
		return ""
	}
}

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	switch f {
	case FormatNone, FormatJSON, FormatYAML, FormatTOML, FormatSQLite:
		return true
	}
	return false
}
