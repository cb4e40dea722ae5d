// Package uri implements the neurona:// URI scheme and cortex discovery
// (spec.md §4.9).
package uri

import (
	"strings"

	"github.com/engram-cortex/engram/internal/engramerr"
)

const scheme = "neurona://"

// URI is a parsed neurona:// reference.
type URI struct {
	CortexID  string
	NeuronaID string
}

// String renders u back into its canonical neurona://<cortex>/<id> form.
func (u URI) String() string {
	return scheme + u.CortexID + "/" + u.NeuronaID
}

// Parse validates and decomposes a neurona:// URI. Both the cortex id
// and the neurona id must be non-empty, and exactly one '/' must
// separate them (spec.md §4.9).
func Parse(raw string) (URI, error) {
	if !strings.HasPrefix(raw, scheme) {
		return URI{}, engramerr.New(engramerr.KindUser, engramerr.IDInvalidURI, raw,
			`a neurona reference must start with "neurona://"`)
	}
	rest := strings.TrimPrefix(raw, scheme)

	idx := strings.Index(rest, "/")
	if idx < 0 {
		return URI{}, engramerr.New(engramerr.KindUser, engramerr.IDInvalidURI, raw,
			"expected neurona://<cortex-id>/<neurona-id>")
	}
	cortexID := rest[:idx]
	neuronaID := rest[idx+1:]

	if strings.Contains(neuronaID, "/") {
		return URI{}, engramerr.New(engramerr.KindUser, engramerr.IDInvalidURI, raw,
			"expected exactly one '/' between cortex id and neurona id")
	}
	if cortexID == "" || neuronaID == "" {
		return URI{}, engramerr.New(engramerr.KindUser, engramerr.IDInvalidURI, raw,
			"cortex id and neurona id must both be non-empty")
	}

	return URI{CortexID: cortexID, NeuronaID: neuronaID}, nil
}
