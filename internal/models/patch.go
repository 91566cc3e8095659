package models

import (
	"bytes"
	"encoding/json"
)

// Field carries a value together with whether the client supplied it.
// A JSON null marks the field as present with Null set.
type Field[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// Some returns a present, non-null field.
func Some[T any](v T) Field[T] {
	return Field[T]{Value: v, Set: true}
}

// UnmarshalJSON records presence before decoding the value.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Null = true
		return nil
	}
	return json.Unmarshal(data, &f.Value)
}

// MarshalJSON writes the value, or null when absent or explicitly null.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set || f.Null {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// ProductPatch is a partial update. Only fields with Set are written.
type ProductPatch struct {
	Name        Field[string]  `json:"name"`
	Description Field[string]  `json:"description"`
	Quantity    Field[int]     `json:"quantity"`
	Price       Field[float64] `json:"price"`
	Active      Field[bool]    `json:"active"`
}

// IsEmpty reports whether the patch changes nothing.
func (p ProductPatch) IsEmpty() bool {
	return !p.Name.Set && !p.Description.Set && !p.Quantity.Set && !p.Price.Set && !p.Active.Set
}

// Columns maps the supplied fields to column names.
func (p ProductPatch) Columns() map[string]interface{} {
	cols := make(map[string]interface{}, 5)
	if p.Name.Set {
		cols["name"] = p.Name.Value
	}
	if p.Description.Set {
		cols["description"] = p.Description.Value
	}
	if p.Quantity.Set {
		cols["quantity"] = p.Quantity.Value
	}
	if p.Price.Set {
		cols["price"] = p.Price.Value
	}
	if p.Active.Set {
		cols["active"] = p.Active.Value
	}
	return cols
}

// Apply merges the supplied fields into product.
func (p ProductPatch) Apply(product *Product) {
	if p.Name.Set {
		product.Name = p.Name.Value
	}
	if p.Description.Set {
		product.Description = p.Description.Value
	}
	if p.Quantity.Set {
		product.Quantity = p.Quantity.Value
	}
	if p.Price.Set {
		product.Price = p.Price.Value
	}
	if p.Active.Set {
		product.Active = p.Active.Value
	}
}

// NullFields lists the JSON names of fields sent as explicit null.
func (p ProductPatch) NullFields() []string {
	var fields []string
	if p.Name.Null {
		fields = append(fields, "name")
	}
	if p.Description.Null {
		fields = append(fields, "description")
	}
	if p.Quantity.Null {
		fields = append(fields, "quantity")
	}
	if p.Price.Null {
		fields = append(fields, "price")
	}
	if p.Active.Null {
		fields = append(fields, "active")
	}
	return fields
}
