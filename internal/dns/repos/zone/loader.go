package zone

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/haukened/az-dns/internal/dns/domain"
	"github.com/haukened/az-dns/internal/dns/repos/zonestore"
)

// LoadZoneDirectory walks dir, loading every supported zone file into a
// populated Store. Master-format files (.zone, .db) and structured files
// (.yaml, .yml, .json, .toml) may be mixed; files with the same origin are
// merged into one zone. Any parse failure aborts the whole load: no partial
// zone is ever served.
func LoadZoneDirectory(dir string, defaultTTL time.Duration) (*zonestore.Store, error) {
	type pendingZone struct {
		origin  domain.Name
		records []domain.ResourceRecord
	}
	pending := make(map[string]*pendingZone)

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		origin, records, err := LoadZoneFile(path, defaultTTL)
		if err != nil {
			return err
		}
		if origin.IsRoot() && len(records) == 0 {
			return nil // unsupported extension
		}
		key := origin.String()
		if p, ok := pending[key]; ok {
			p.records = append(p.records, records...)
		} else {
			pending[key] = &pendingZone{origin: origin, records: records}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	store := zonestore.New()
	for _, p := range pending {
		z, err := zonestore.NewZone(p.origin, p.records)
		if err != nil {
			return nil, fmt.Errorf("invalid zone %s: %w", p.origin, err)
		}
		if err := store.AddZone(z); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// LoadZoneFile loads a single zone file, picking the parser from the file
// extension. Unsupported extensions return an empty record set rather than
// an error so a zone directory can carry README or checksum files.
func LoadZoneFile(path string, defaultTTL time.Duration) (domain.Name, []domain.ResourceRecord, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".zone" || ext == ".db":
		return loadMasterFile(path, defaultTTL)
	default:
		if parser := structuredParser(ext); parser != nil {
			return loadStructuredFile(path, parser, defaultTTL)
		}
		return domain.Name{}, nil, nil
	}
}

// loadMasterFile parses a master-format file. The zone origin is the owner
// of the file's SOA record, which every zone must have.
func loadMasterFile(path string, defaultTTL time.Duration) (domain.Name, []domain.ResourceRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Name{}, nil, &domain.ParseError{File: path, Msg: err.Error(), Err: err}
	}
	defer f.Close()

	records, err := ParseMaster(f, path, uint32(defaultTTL.Seconds()))
	if err != nil {
		return domain.Name{}, nil, err
	}
	for _, rr := range records {
		if rr.Type == domain.RRTypeSOA {
			return rr.Name, records, nil
		}
	}
	return domain.Name{}, nil, &domain.ParseError{File: path, Msg: "zone file has no SOA record"}
}
