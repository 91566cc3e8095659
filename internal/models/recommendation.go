package models

// PetDescription is the free-text input of a recommendation request.
type PetDescription struct {
	Description string `json:"description" validate:"required,max=2000"`
}

// Recommendation is the single product picked for a pet description.
type Recommendation struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Reason    string `json:"reason"`
}
