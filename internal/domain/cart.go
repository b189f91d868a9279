package domain

// CartLine is one transient line of the session cart, prior to submission
type CartLine struct {
	Product   string  `json:"product"`    // Product name
	Quantity  int     `json:"quantity"`   // Units, always positive
	UnitPrice float64 `json:"unit_price"` // Price snapshot taken at add-time
}

// LineTotal returns quantity times the snapshotted unit price
func (l CartLine) LineTotal() float64 {
	return float64(l.Quantity) * l.UnitPrice
}
