package domain

// Customer Model
type Customer struct {
	Name    string `json:"name"`    // Customer name, duplicates allowed
	Address string `json:"address"` // Delivery / billing address
	Phone   string `json:"phone"`   // Contact phone number
	TaxID   string `json:"tax_id"`  // Tax identifier
	Owner   string `json:"owner"`   // Username of the sales rep owning this record
}
