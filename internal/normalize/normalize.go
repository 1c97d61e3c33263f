// Package normalize rewrites Webstack link records before they are exported.
//
// Two classes of fields are rewritten: the logo reference is resolved to the
// on-disk file name of the uploaded asset, and the numeric-as-string weights
// are turned into integers. Everything else passes through untouched.
// Normalize never mutates its input.
package normalize

import (
	"encoding/json"
	"math"

	"github.com/eallion/webstack-sync/pkg/directus"
)

// Field names of Webstack records.
const (
	FieldLogo          = "logo"
	FieldWeight        = "weight"
	FieldFatherWeight  = "father_weight"
	FieldWebCategories = "WebCategories"
	FieldWebCategoryID = "WebCategory_id"
	FieldFilenameDisk  = "filename_disk"
)

// LogoResolver maps a raw logo value to its replacement. The second result
// is false when the value must be left unchanged.
type LogoResolver interface {
	ResolveLogo(value any) (any, bool)
}

// LookupResolver resolves bare file ids through an id → filename_disk table.
type LookupResolver map[string]string

// ResolveLogo implements LogoResolver.
func (l LookupResolver) ResolveLogo(value any) (any, bool) {
	id, ok := value.(string)
	if !ok || id == "" {
		return nil, false
	}

	filename := l[id]
	if filename == "" {
		return nil, false
	}

	return filename, true
}

// InlineResolver resolves logos that the server expanded into file objects.
type InlineResolver struct{}

// ResolveLogo implements LogoResolver.
func (InlineResolver) ResolveLogo(value any) (any, bool) {
	file, ok := asMap(value)
	if !ok {
		return nil, false
	}

	filename, ok := file[FieldFilenameDisk].(string)
	if !ok || filename == "" {
		return nil, false
	}

	return filename, true
}

// BuildFileLookup builds the id → filename_disk table. Files without an id
// are skipped; a later duplicate id wins.
func BuildFileLookup(files []directus.File) map[string]string {
	lookup := make(map[string]string, len(files))

	for _, file := range files {
		if file.ID == "" {
			continue
		}

		lookup[file.ID] = file.FilenameDisk
	}

	return lookup
}

// Normalize returns a normalized copy of records, in the same order.
// A nil resolver leaves logos unchanged.
func Normalize(records []directus.Record, resolver LogoResolver) []directus.Record {
	if records == nil {
		return nil
	}

	out := make([]directus.Record, len(records))
	for i, record := range records {
		out[i] = NormalizeRecord(record, resolver)
	}

	return out
}

// NormalizeRecord returns a normalized deep copy of one record.
func NormalizeRecord(record directus.Record, resolver LogoResolver) directus.Record {
	if record == nil {
		return nil
	}

	out, _ := cloneValue(map[string]any(record)).(map[string]any)

	if resolver != nil {
		if logo, ok := out[FieldLogo]; ok && truthy(logo) {
			if resolved, ok := resolver.ResolveLogo(logo); ok {
				out[FieldLogo] = resolved
			}
		}
	}

	coerceField(out, FieldWeight)

	categories, ok := out[FieldWebCategories].([]any)
	if ok {
		for _, category := range categories {
			entry, ok := asMap(category)
			if !ok {
				continue
			}

			nested, ok := asMap(entry[FieldWebCategoryID])
			if !ok {
				continue
			}

			coerceField(nested, FieldWeight)
			coerceField(nested, FieldFatherWeight)
		}
	}

	return directus.Record(out)
}

// UnresolvedLogos lists the bare logo ids that are missing from lookup, in
// record order. Those logos are exported unchanged.
func UnresolvedLogos(records []directus.Record, lookup map[string]string) []string {
	var missing []string

	for _, record := range records {
		id, ok := record[FieldLogo].(string)
		if !ok || id == "" {
			continue
		}

		if lookup[id] == "" {
			missing = append(missing, id)
		}
	}

	return missing
}

// coerceField replaces a present, truthy field with its integer value.
func coerceField(m map[string]any, field string) {
	value, ok := m[field]
	if !ok || !truthy(value) {
		return
	}

	m[field] = ParseInt(value)
}

func asMap(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case directus.Record:
		return map[string]any(v), true
	default:
		return nil, false
	}
}

// cloneValue deep-copies the JSON shapes found in records.
func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(v))
		for key, item := range v {
			clone[key] = cloneValue(item)
		}

		return clone
	case directus.Record:
		return cloneValue(map[string]any(v))
	case []any:
		clone := make([]any, len(v))
		for i, item := range v {
			clone[i] = cloneValue(item)
		}

		return clone
	case []map[string]any:
		clone := make([]any, len(v))
		for i, item := range v {
			clone[i] = cloneValue(item)
		}

		return clone
	default:
		return v
	}
}

// truthy follows the usual JSON-ish notion: null, false, "", and zero are falsy.
func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case json.Number:
		f, err := v.Float64()

		return err != nil || f != 0
	case float64:
		return v != 0 && !math.IsNaN(v)
	case float32:
		return v != 0 && !math.IsNaN(float64(v))
	case int:
		return v != 0
	case int64:
		return v != 0
	case int32:
		return v != 0
	default:
		return true
	}
}
