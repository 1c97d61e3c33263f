package directus

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record is one item of a Directus collection, keyed by field name.
//
// The schema is intentionally open: whatever fields the server returns are
// kept. Numbers decoded by DecodeListResponse are json.Number values, so
// fields nobody touches are written back exactly as received.
type Record map[string]any

// File is an entry of the directus_files collection, reduced to what the
// logo lookup needs.
type File struct {
	ID           string `json:"id"            yaml:"id"`
	FilenameDisk string `json:"filename_disk" yaml:"filename_disk"`
}

// Meta is the optional metadata block Directus adds when meta is requested.
type Meta struct {
	TotalCount  *int `json:"total_count,omitempty"  yaml:"total_count,omitempty"`
	FilterCount *int `json:"filter_count,omitempty" yaml:"filter_count,omitempty"`
}

// ListResponse represents one page of a list endpoint.
type ListResponse[T any] struct {
	Data []T  `json:"data"           yaml:"data"`
	Meta *Meta `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// DecodeListResponse parses a list endpoint body, keeping numbers as json.Number.
func DecodeListResponse[T any](data []byte) (*ListResponse[T], error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var list ListResponse[T]

	err := decoder.Decode(&list)
	if err != nil {
		return nil, fmt.Errorf("decoding list response: %w", err)
	}

	return &list, nil
}
