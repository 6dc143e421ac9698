package domain

// CategoryAll is the category selector that matches every product.
const CategoryAll = "All"

// FilterState is the category selector and free-text query of one view.
type FilterState struct {
	Category string `json:"category"`
	Query    string `json:"query"`
}

// DefaultFilter selects all categories with an empty query.
func DefaultFilter() FilterState {
	return FilterState{Category: CategoryAll}
}

// Normalize fills an empty category with CategoryAll.
func (f FilterState) Normalize() FilterState {
	if f.Category == "" {
		f.Category = CategoryAll
	}
	return f
}
