package models

// CartItem is one (product, size) line of a client cart. Price is in minor
// units and only informs the client; checkout re-reads it from the catalog.
type CartItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Brand     string `json:"brand,omitempty"`
	Price     int64  `json:"price"`
	Image     string `json:"image,omitempty"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

// State is the persisted form of a cart.
type State struct {
	Items  []CartItem `json:"items"`
	IsOpen bool       `json:"isOpen"`
}
