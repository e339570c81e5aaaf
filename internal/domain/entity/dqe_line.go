package entity

import "github.com/shopspring/decimal"

// DqeLine línea del detalle cuantitativo estimativo (informativa, no entra
// en el cálculo del crédito).
type DqeLine struct {
	ID        string
	RequestID string
	Position  int

	Designation string
	Unit        string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal // Quantity * UnitPrice
}
