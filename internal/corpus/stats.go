package corpus

import "sort"

// Stats describes the composition of a loaded corpus.
type Stats struct {
	// TotalChunks is the number of chunks in the store.
	TotalChunks int `json:"total_chunks"`
	// UniquePages is the number of distinct source URLs.
	UniquePages int `json:"unique_pages"`
	// ByCategory maps category name to chunk count.
	ByCategory map[string]int `json:"by_category"`
}

// Stats computes corpus statistics. Used for build reporting and the
// stats endpoint.
func (s *Store) Stats() Stats {
	byCategory := make(map[string]int)
	for i := range s.chunks {
		byCategory[s.chunks[i].Category]++
	}
	return Stats{
		TotalChunks: len(s.chunks),
		UniquePages: len(s.byURL),
		ByCategory:  byCategory,
	}
}

// CategoryCount is one row of a category breakdown.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// SortedCategories returns the category breakdown ordered by descending
// chunk count, ties by name.
func (st Stats) SortedCategories() []CategoryCount {
	rows := make([]CategoryCount, 0, len(st.ByCategory))
	for category, count := range st.ByCategory {
		rows = append(rows, CategoryCount{Category: category, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Category < rows[j].Category
	})
	return rows
}
