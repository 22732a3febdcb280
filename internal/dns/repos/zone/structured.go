package zone

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"

	"github.com/haukened/az-dns/internal/dns/common/rrdata"
	"github.com/haukened/az-dns/internal/dns/domain"
)

// loadStructuredFile loads a YAML/JSON/TOML zone document. The document shape
// is a flat map: a required "zone_root" key naming the origin, then one key
// per owner name mapping record-type mnemonics to a value or list of values.
// Returns the origin and the parsed records.
func loadStructuredFile(path string, parser koanf.Parser, defaultTTL time.Duration) (domain.Name, []domain.ResourceRecord, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return domain.Name{}, nil, &domain.ParseError{File: path, Msg: fmt.Sprintf("failed to load zone file: %v", err), Err: err}
	}

	root := k.String("zone_root")
	if root == "" {
		return domain.Name{}, nil, &domain.ParseError{File: path, Msg: "missing 'zone_root'"}
	}
	origin, err := domain.ParseName(root)
	if err != nil {
		return domain.Name{}, nil, &domain.ParseError{File: path, Msg: fmt.Sprintf("invalid zone_root: %v", err), Err: err}
	}

	var records []domain.ResourceRecord
	for name, raw := range k.Raw() {
		if name == "zone_root" {
			continue
		}
		rawMap, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		owner, err := structuredOwner(name, origin)
		if err != nil {
			return domain.Name{}, nil, &domain.ParseError{File: path, Msg: err.Error(), Err: err}
		}
		for rrType, val := range rawMap {
			values := toStringValues(val)
			if len(values) == 0 { // skip silently (empty or invalid elements)
				continue
			}
			recs, err := buildRecords(owner, rrType, values, defaultTTL)
			if err != nil {
				return domain.Name{}, nil, &domain.ParseError{File: path, Msg: fmt.Sprintf("invalid record: %v", err), Err: err}
			}
			records = append(records, recs...)
		}
	}
	return origin, records, nil
}

// structuredOwner expands a document key into an absolute owner name:
// '@' is the root, a trailing dot marks an absolute name, anything else is
// relative to the root.
func structuredOwner(label string, origin domain.Name) (domain.Name, error) {
	if label == "@" {
		return origin, nil
	}
	if strings.HasSuffix(label, ".") {
		return domain.ParseName(label)
	}
	return domain.ParseName(label + "." + origin.String())
}

// toStringValues converts a raw koanf-parsed value (string or []any of
// strings) into a slice of non-empty strings, skipping empty or non-string
// elements so a malformed element degrades to a no-op instead of crashing
// the loader.
func toStringValues(val any) []string {
	switch v := val.(type) {
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		return []string{s}
	case []any:
		out := make([]string, 0, len(v))
		for _, elem := range v {
			s, ok := elem.(string)
			if !ok {
				continue
			}
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			out = append(out, s)
		}
		if len(out) == 0 {
			return nil
		}
		return out
	default:
		return nil
	}
}

// buildRecords creates one ResourceRecord per value for a given owner and
// record type.
func buildRecords(owner domain.Name, rrType string, values []string, defaultTTL time.Duration) ([]domain.ResourceRecord, error) {
	rType := domain.RRTypeFromString(rrType)
	if rType == 0 {
		return nil, fmt.Errorf("unknown record type %q", rrType)
	}
	var records []domain.ResourceRecord
	for _, s := range values {
		data, err := rrdata.Encode(rType, s)
		if err != nil {
			return nil, err
		}
		rr, err := domain.NewResourceRecord(owner, rType, domain.RRClassIN, uint32(defaultTTL.Seconds()), data, s)
		if err != nil {
			return nil, err
		}
		records = append(records, rr)
	}
	return records, nil
}

// structuredParser picks the koanf parser for a structured zone file
// extension, or nil when the extension is not a structured format.
func structuredParser(ext string) koanf.Parser {
	switch ext {
	case ".yaml", ".yml":
		return yaml.Parser()
	case ".json":
		return json.Parser()
	case ".toml":
		return toml.Parser()
	default:
		return nil
	}
}
