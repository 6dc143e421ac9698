package domain

// DetailView is the per-view state of a product detail page. The selected
// color defaults to the first color and is set once, on construction.
type DetailView struct {
	Product       Product `json:"product"`
	SelectedColor string  `json:"selected_color"`
	Quantity      int     `json:"quantity"`
}

func NewDetailView(p Product) DetailView {
	v := DetailView{Product: p, Quantity: 1}
	if len(p.Colors) > 0 {
		v.SelectedColor = p.Colors[0]
	}
	return v
}

// CartIntent is an "add to cart" request from the detail view. It is
// validated and logged; no cart state is kept anywhere.
type CartIntent struct {
	ProductID ProductID `json:"product_id"`
	Color     string    `json:"color"`
	Quantity  int       `json:"quantity"`
}
