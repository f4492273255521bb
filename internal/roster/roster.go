// Package roster loads the VIP customer roster: a plain-text file with one
// integer customer ID per line.
package roster

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tbraaten/orderflat/internal/flatten"
)

// Load reads VIP customer IDs from r. Blank lines and lines that are not
// plain integers are ignored, matching the tolerant behavior of the
// upstream roster exports.
func Load(r io.Reader) (flatten.VIPSet, error) {
	vips := make(flatten.VIPSet)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		id, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			continue
		}
		vips.Add(id)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading VIP roster: %w", err)
	}

	return vips, nil
}

// LoadFile opens path and reads it with Load.
func LoadFile(path string) (flatten.VIPSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening VIP roster: %w", err)
	}
	defer f.Close()

	return Load(f)
}
