package models

// Product is a sellable catalog item. The backend keys products by name:
// there is no numeric ID, and name-equality is the identity contract used
// by search, navigation and the memory game. Collisions are a known weak
// invariant of the data set, not something this client resolves.
type Product struct {
	Name     string  `json:"name"`
	Price    int     `json:"price"`
	Category string  `json:"category"`
	Rating   float64 `json:"rating"`
	ImageURL string  `json:"imageUrl"`
}

// Category groups products. Name doubles as display label and filter key.
type Category struct {
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

// Banner is one slide of the home screen's sliding banner.
type Banner struct {
	Title    string `json:"title"`
	ImageURL string `json:"imageUrl"`
	Link     string `json:"link"`
}
