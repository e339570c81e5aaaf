// Package fiscal implementa el motor de cálculo del crédito fiscal
// (servicio de dominio, funciones puras sobre decimales).
//
// Cadena de cálculo por línea de importación:
//
//	ValorAduana = Cantidad * PrecioUnitario
//	Derecho     = ValorAduana * TasaDerecho/100
//	Gravamen    = ValorAduana * TasaGravamen/100
//	Contribución= ValorAduana * TasaContribución/100
//	BaseIVA     = ValorAduana + Derecho + Gravamen + Contribución
//	IVA         = BaseIVA * TasaIVA/100
//	TotalImpuestos = Derecho + Gravamen + Contribución + IVA
//
// Toda la aritmética usa shopspring/decimal con precisión completa; el
// redondeo a 2 decimales ocurre únicamente en la capa de presentación.
// Las funciones son totales: no validan el dominio numérico (una tasa
// negativa se propaga tal cual para que el boundary de entrada la rechace;
// aquí no se recorta ni se falla).
package fiscal

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/credifiscal-api/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// pct aplica una tasa porcentual a una base con precisión completa.
func pct(base, rate decimal.Decimal) decimal.Decimal {
	return base.Mul(rate).Div(hundred)
}

// RecalcImportLine recalcula todos los campos derivados de una línea de
// importación a partir de sus inputs. Debe invocarse tras cualquier mutación
// de inputs (incluidas las tasas): un derivado obsoleto es un bug de
// corrección, no una optimización. Idempotente: aplicarla dos veces produce
// exactamente los mismos valores.
func RecalcImportLine(line entity.ImportLine) entity.ImportLine {
	line.CustomsValue = line.Quantity.Mul(line.UnitPrice)
	line.DutyAmount = pct(line.CustomsValue, line.DutyRate)
	line.LevyAmount = pct(line.CustomsValue, line.LevyRate)
	line.ContributionAmount = pct(line.CustomsValue, line.ContributionRate)
	line.VATBase = line.CustomsValue.
		Add(line.DutyAmount).
		Add(line.LevyAmount).
		Add(line.ContributionAmount)
	line.VATAmount = pct(line.VATBase, line.VATRate)
	line.TotalTaxes = line.DutyAmount.
		Add(line.LevyAmount).
		Add(line.ContributionAmount).
		Add(line.VATAmount)
	return line
}

// RecalcImportLines recalcula cada línea del slice (conveniencia para el
// endpoint puro de recálculo y para las lecturas de la solicitud).
func RecalcImportLines(lines []entity.ImportLine) []entity.ImportLine {
	out := make([]entity.ImportLine, len(lines))
	for i, l := range lines {
		out[i] = RecalcImportLine(l)
	}
	return out
}

// RecalcDqeLine recalcula el total de una línea DQE (informativa).
func RecalcDqeLine(line entity.DqeLine) entity.DqeLine {
	line.Total = line.Quantity.Mul(line.UnitPrice)
	return line
}

// DeductibleVAT suma el IVA de las líneas de importación (ya recalculadas);
// alimenta el IVA deducible del modelo interno.
func DeductibleVAT(lines []entity.ImportLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.VATAmount)
	}
	return sum
}

// RecalcDomestic recalcula el modelo de IVA interno.
// CollectedVAT = PreTaxAmount * VATRate/100; NetVAT = CollectedVAT - deductible;
// DomesticCredit = NetVAT (se conserva negativo si el deducible excede el recaudado).
func RecalcDomestic(m entity.DomesticTaxModel, deductibleVAT decimal.Decimal) entity.DomesticTaxModel {
	m.DeductibleVAT = deductibleVAT
	m.CollectedVAT = pct(m.PreTaxAmount, m.VATRate)
	m.NetVAT = m.CollectedVAT.Sub(deductibleVAT)
	m.DomesticCredit = m.NetVAT
	return m
}

// AggregateCredit agrega el crédito de la solicitud: crédito externo = suma de
// TotalTaxes por línea; crédito total = externo + interno. Las líneas y el
// modelo deben estar recalculados (ver RecalcAll).
func AggregateCredit(lines []entity.ImportLine, m entity.DomesticTaxModel) entity.CreditSummary {
	external := decimal.Zero
	for _, l := range lines {
		external = external.Add(l.TotalTaxes)
	}
	return entity.CreditSummary{
		ExternalCredit: external,
		DomesticCredit: m.DomesticCredit,
		TotalCredit:    external.Add(m.DomesticCredit),
	}
}

// RecalcAll recalcula líneas y modelo interno en cadena (el IVA deducible del
// modelo sale de las líneas recalculadas) y devuelve también el resumen.
// Es el único camino de cálculo: cliente y servidor invocan exactamente esta
// lógica, nunca dos implementaciones paralelas de la misma aritmética.
func RecalcAll(lines []entity.ImportLine, m entity.DomesticTaxModel) ([]entity.ImportLine, entity.DomesticTaxModel, entity.CreditSummary) {
	lines = RecalcImportLines(lines)
	m = RecalcDomestic(m, DeductibleVAT(lines))
	return lines, m, AggregateCredit(lines, m)
}
