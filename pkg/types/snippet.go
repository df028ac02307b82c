// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ContentResult is one extracted snippet: the identifier taken from its start
// marker and the cleaned body. It is produced once by extraction and only read
// afterwards.
type ContentResult struct {
	// ID is the value of the <id:...> token on the start marker line.
	ID string `json:"id" yaml:"id" toml:"id"`

	// Data is the snippet body after cleanup rules and whitespace trimming.
	Data string `json:"data" yaml:"data" toml:"data"`

	// Source is the file the snippet was extracted from. It is informational
	// and never compared during replacement.
	Source string `json:"source,omitempty" yaml:"source,omitempty" toml:"source,omitempty"`
}

// ReplaceKind is the outcome of replacing one identifier in one document.
type ReplaceKind string

const (
	ReplaceEqual    ReplaceKind = "equal"
	ReplaceReplaced ReplaceKind = "replaced"
	ReplaceNotFound ReplaceKind = "not found"
	ReplaceError    ReplaceKind = "error"
)

// ReplaceStatus describes what happened to one identifier in one document.
type ReplaceStatus struct {
	Kind ReplaceKind
	ID   string

	// Content is the full document text after the replacement. Set only
	// for ReplaceReplaced.
	Content string

	// Block is the snippet text written between the markers. Set only for
	// ReplaceReplaced.
	Block string

	// Message explains a ReplaceError.
	Message string
}

// String returns the display name of the status kind.
func (s ReplaceStatus) String() string {
	return string(s.Kind)
}

// Equal returns an equal status for id.
func Equal(id string) ReplaceStatus {
	return ReplaceStatus{Kind: ReplaceEqual, ID: id}
}

// NotFound returns a not-found status for id.
func NotFound(id string) ReplaceStatus {
	return ReplaceStatus{Kind: ReplaceNotFound, ID: id}
}

// Replaced returns a replaced status carrying the new document and block text.
func Replaced(id, content, block string) ReplaceStatus {
	return ReplaceStatus{Kind: ReplaceReplaced, ID: id, Content: content, Block: block}
}

// Failed returns an error status for id.
func Failed(id, message string) ReplaceStatus {
	return ReplaceStatus{Kind: ReplaceError, ID: id, Message: message}
}

// ReplaceResult pairs a status with the target file it applies to.
type ReplaceResult struct {
	Path   string
	Status ReplaceStatus
}
