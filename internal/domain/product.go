package domain

// Product Model
type Product struct {
	SKU   string  `json:"sku"`   // Stock keeping unit
	Name  string  `json:"name"`  // Product name
	Price float64 `json:"price"` // Unit price
}
