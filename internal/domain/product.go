package domain

// Product is a catalog entry. Description is stored with the product but is
// never part of the public catalog response.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Description string  `json:"-"`
}
