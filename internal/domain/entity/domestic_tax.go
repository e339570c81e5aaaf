package entity

import "github.com/shopspring/decimal"

// DomesticTaxModel modelo de IVA interno de la solicitud.
// Invariante: NetVAT = CollectedVAT - DeductibleVAT; DomesticCredit = NetVAT
// (puede ser negativo si el deducible excede el recaudado; se conserva tal
// cual, sin recortar).
type DomesticTaxModel struct {
	// Inputs
	PreTaxAmount decimal.Decimal // monto interno antes de impuestos
	VATRate      decimal.Decimal // IVA (%)
	OtherTaxes   decimal.Decimal

	// DeductibleVAT proviene de la suma de VATAmount de las líneas de importación.
	DeductibleVAT decimal.Decimal

	// Derivados
	CollectedVAT   decimal.Decimal
	NetVAT         decimal.Decimal
	DomesticCredit decimal.Decimal
}
