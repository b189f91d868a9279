package domain

// OrderLine is one line item of a persisted order
type OrderLine struct {
	Product   string  `json:"product"`    // Product name at add-time
	Quantity  int     `json:"quantity"`   // Units ordered, always positive
	UnitPrice float64 `json:"unit_price"` // Price snapshot taken when the line was added
}

// Order Model
type Order struct {
	OrderID  string      `json:"order_id"` // Unique identifier, "ORD-NNN"
	Date     string      `json:"date"`     // Submission date, "2006-01-02"
	Customer string      `json:"customer"` // Customer name, denormalized
	Lines    []OrderLine `json:"items"`    // Line items
	Total    float64     `json:"total"`    // Sum of quantity times unit price over all lines
	Owner    string      `json:"owner"`    // Username of the sales rep owning this record
	Note     string      `json:"note"`     // Free-text note
}
