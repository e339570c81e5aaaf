package entity

import "github.com/shopspring/decimal"

// ImportLine línea de importación de la solicitud (un bien importado).
// Los campos derivados son función pura y determinista de los inputs
// (ver fiscal.RecalcImportLine): nunca se persisten por separado ni se
// editan directamente; se recalculan tras cualquier mutación de inputs.
type ImportLine struct {
	ID        string
	RequestID string
	Position  int

	// Inputs
	Designation      string
	Unit             string
	Quantity         decimal.Decimal
	UnitPrice        decimal.Decimal
	DutyRate         decimal.Decimal // derecho de aduana (%)
	LevyRate         decimal.Decimal // gravamen especial (%)
	ContributionRate decimal.Decimal // contribución al servicio público (%)
	VATRate          decimal.Decimal // IVA (%)

	// Derivados
	CustomsValue       decimal.Decimal // Quantity * UnitPrice
	DutyAmount         decimal.Decimal
	LevyAmount         decimal.Decimal
	ContributionAmount decimal.Decimal
	VATBase            decimal.Decimal
	VATAmount          decimal.Decimal
	TotalTaxes         decimal.Decimal
}
