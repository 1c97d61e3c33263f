package webstack

import (
	"fmt"
	"sort"

	"github.com/eallion/webstack-sync/internal/normalize"
	"github.com/eallion/webstack-sync/pkg/directus"
)

// CategoryCount is one row of the export summary.
type CategoryCount struct {
	Category string `json:"category" yaml:"category"`
	Links    int    `json:"links"    yaml:"links"`
}

// CountCategories counts links per expanded category. Links without an
// expanded category are counted under "".
func CountCategories(records []directus.Record) map[string]int {
	counts := make(map[string]int)

	for _, record := range records {
		categories, _ := record[normalize.FieldWebCategories].([]any)

		labelled := false

		for _, category := range categories {
			entry, ok := category.(map[string]any)
			if !ok {
				continue
			}

			nested, ok := entry[normalize.FieldWebCategoryID].(map[string]any)
			if !ok {
				continue
			}

			counts[categoryLabel(nested)]++
			labelled = true
		}

		if !labelled {
			counts[""]++
		}
	}

	return counts
}

// SortedCategories returns counts ordered by descending link count, then name.
func SortedCategories(counts map[string]int) []CategoryCount {
	rows := make([]CategoryCount, 0, len(counts))
	for category, links := range counts {
		rows = append(rows, CategoryCount{Category: category, Links: links})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Links != rows[j].Links {
			return rows[i].Links > rows[j].Links
		}

		return rows[i].Category < rows[j].Category
	})

	return rows
}

func categoryLabel(category map[string]any) string {
	for _, key := range []string{"name", "title", "slug", "id"} {
		if value, ok := category[key]; ok && value != nil {
			if s := fmt.Sprint(value); s != "" {
				return s
			}
		}
	}

	return ""
}
