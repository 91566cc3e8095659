package models

// Product represents a sellable item in the store catalog.
// Rows are never removed; deactivation flips Active to false.
type Product struct {
	ID          int64   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string  `json:"name" gorm:"type:varchar(255);not null"`
	Description string  `json:"description" gorm:"type:text;not null"`
	Quantity    int     `json:"quantity" gorm:"not null;check:chk_products_quantity,quantity >= 0"`
	Price       float64 `json:"price" gorm:"not null;check:chk_products_price,price > 0"`
	Active      bool    `json:"active" gorm:"not null"`
}

// TableName pins the relation name regardless of naming strategy.
func (Product) TableName() string {
	return "products"
}

// ProductInput is the body accepted when creating a product.
type ProductInput struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description string  `json:"description"`
	Quantity    *int    `json:"quantity" validate:"required,gte=0"`
	Price       float64 `json:"price" validate:"gt=0"`
	Active      *bool   `json:"active" validate:"required"`
}

// Product converts the input into a row without an id.
func (in ProductInput) Product() Product {
	p := Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
	}
	if in.Quantity != nil {
		p.Quantity = *in.Quantity
	}
	if in.Active != nil {
		p.Active = *in.Active
	}
	return p
}

// SellRequest is the body of a sell call.
type SellRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// StockRequest is the body of an admin restock call.
type StockRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0"`
}
