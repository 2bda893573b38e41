package typeid

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

const (
	PrefixUser      = "user"
	PrefixDiagram   = "dgm"
	PrefixPage      = "page"
	PrefixThumbnail = "thumb"
	PrefixSample    = "sample"
)

func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewUserID() string      { return New(PrefixUser) }
func NewDiagramID() string   { return New(PrefixDiagram) }
func NewPageID() string      { return New(PrefixPage) }
func NewThumbnailID() string { return New(PrefixThumbnail) }
func NewSampleID() string    { return New(PrefixSample) }

// Validate checks that id parses and carries expectedPrefix.
func Validate(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid typeid %q: %w", id, err)
	}
	if parsed.Prefix() != expectedPrefix {
		return fmt.Errorf("expected prefix %q but got %q in id %q", expectedPrefix, parsed.Prefix(), id)
	}
	return nil
}
