package transport

// ProductRequest is the body of admin create and update calls.
type ProductRequest struct {
	Name             string         `json:"name"`
	Slug             string         `json:"slug"`
	Description      string         `json:"description"`
	CategoryID       string         `json:"category_id"`
	Price            int64          `json:"price"`
	ComparePrice     *int64         `json:"compare_price"`
	CostPrice        *int64         `json:"cost_price"`
	Stock            int            `json:"stock"`
	SizesAvailable   map[string]int `json:"sizes_available"`
	Images           []string       `json:"images"`
	SKU              string         `json:"sku"`
	Brand            string         `json:"brand"`
	Material         string         `json:"material"`
	Color            string         `json:"color"`
	IsFeatured       bool           `json:"is_featured"`
	IsActive         *bool          `json:"is_active"`
	IsLimitedEdition bool           `json:"is_limited_edition"`
}

type CategoryRequest struct {
	Name string `json:"name"`
}
