package execution

import (
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/Robinhuo1/TradingButler/pkg/errors"
)

// Importer produces a time-ordered leg sequence from a broker's raw trade
// export. One implementation exists per supported export format; the format
// in use is selected by configuration, not discovered from the payload.
type Importer interface {
	// Import decodes the export and returns legs sorted by execution time.
	// Legs for the same symbol must come back in chronological order.
	Import(r io.Reader) ([]Leg, error)
}

var (
	importersMu sync.RWMutex
	importers   = map[string]Importer{}
)

// RegisterImporter makes an importer available under a format name.
// Names are case-insensitive. Called from importer package init functions.
func RegisterImporter(format string, imp Importer) {
	importersMu.Lock()
	defer importersMu.Unlock()
	importers[strings.ToLower(format)] = imp
}

// ImporterFor resolves the importer registered for a format name
func ImporterFor(format string) (Importer, error) {
	importersMu.RLock()
	imp, ok := importers[strings.ToLower(format)]
	importersMu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnsupportedFormat, "format %q", format)
	}
	return imp, nil
}

// SortLegs orders legs by execution time, preserving the original order of
// legs with equal timestamps. Importers call this after extraction so the
// matcher's per-symbol chronology precondition holds even when the export
// interleaves orders oddly.
func SortLegs(legs []Leg) {
	sort.SliceStable(legs, func(i, j int) bool {
		return legs[i].Time.Before(legs[j].Time)
	})
}
