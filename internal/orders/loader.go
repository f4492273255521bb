// Package orders loads the nested customer order container from its JSON
// export. The loader only deserializes; all cleaning happens in the
// flatten package.
package orders

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/tbraaten/orderflat/internal/flatten"
)

// Load decodes a JSON array of customer records from r.
// A malformed container is a fatal load error; per-record problems are left
// for the transform to report.
func Load(r io.Reader) ([]flatten.CustomerInput, error) {
	dec := json.NewDecoder(r)

	var customers []flatten.CustomerInput
	if err := dec.Decode(&customers); err != nil {
		return nil, fmt.Errorf("decoding order container: %w", err)
	}

	// Reject trailing content after the array; a truncated or concatenated
	// export should fail loudly rather than import partially.
	if dec.More() {
		return nil, fmt.Errorf("decoding order container: trailing data after customer array")
	}

	return customers, nil
}

// LoadFile opens path and decodes it with Load.
func LoadFile(path string) ([]flatten.CustomerInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening orders file: %w", err)
	}
	defer f.Close()

	return Load(f)
}
