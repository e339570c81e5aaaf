package request

import (
	"time"

	"github.com/jhoicas/credifiscal-api/internal/application/dto"
	"github.com/jhoicas/credifiscal-api/internal/domain"
	"github.com/jhoicas/credifiscal-api/internal/domain/entity"
)

// Conversión DTO -> entidad. Los derivados no se copian: siempre se recalculan.
func lineFromInput(in dto.ImportLineInput, position int) entity.ImportLine {
	return entity.ImportLine{
		Position:         position,
		Designation:      in.Designation,
		Unit:             in.Unit,
		Quantity:         in.Quantity,
		UnitPrice:        in.UnitPrice,
		DutyRate:         in.DutyRate,
		LevyRate:         in.LevyRate,
		ContributionRate: in.ContributionRate,
		VATRate:          in.VATRate,
	}
}

func linesFromInput(in []dto.ImportLineInput) []entity.ImportLine {
	lines := make([]entity.ImportLine, len(in))
	for i, l := range in {
		lines[i] = lineFromInput(l, i+1)
	}
	return lines
}

func dqeFromInput(in []dto.DqeLineInput) []entity.DqeLine {
	lines := make([]entity.DqeLine, len(in))
	for i, l := range in {
		lines[i] = entity.DqeLine{
			Position:    i + 1,
			Designation: l.Designation,
			Unit:        l.Unit,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		}
	}
	return lines
}

func domesticFromInput(in dto.DomesticInput) entity.DomesticTaxModel {
	return entity.DomesticTaxModel{
		PreTaxAmount: in.PreTaxAmount,
		VATRate:      in.VATRate,
		OtherTaxes:   in.OtherTaxes,
	}
}

// Conversión entidad -> DTO. Frontera de presentación: los montos derivados se
// redondean aquí a 2 decimales; internamente se conserva la precisión completa.
func lineToResponse(l entity.ImportLine) dto.ImportLineResponse {
	return dto.ImportLineResponse{
		ImportLineInput: dto.ImportLineInput{
			Designation:      l.Designation,
			Unit:             l.Unit,
			Quantity:         l.Quantity,
			UnitPrice:        l.UnitPrice,
			DutyRate:         l.DutyRate,
			LevyRate:         l.LevyRate,
			ContributionRate: l.ContributionRate,
			VATRate:          l.VATRate,
		},
		Position:           l.Position,
		CustomsValue:       l.CustomsValue.Round(2),
		DutyAmount:         l.DutyAmount.Round(2),
		LevyAmount:         l.LevyAmount.Round(2),
		ContributionAmount: l.ContributionAmount.Round(2),
		VATBase:            l.VATBase.Round(2),
		VATAmount:          l.VATAmount.Round(2),
		TotalTaxes:         l.TotalTaxes.Round(2),
	}
}

func linesToResponse(lines []entity.ImportLine) []dto.ImportLineResponse {
	out := make([]dto.ImportLineResponse, len(lines))
	for i, l := range lines {
		out[i] = lineToResponse(l)
	}
	return out
}

func dqeToResponse(lines []entity.DqeLine) []dto.DqeLineResponse {
	out := make([]dto.DqeLineResponse, len(lines))
	for i, l := range lines {
		out[i] = dto.DqeLineResponse{
			DqeLineInput: dto.DqeLineInput{
				Designation: l.Designation,
				Unit:        l.Unit,
				Quantity:    l.Quantity,
				UnitPrice:   l.UnitPrice,
			},
			Position: l.Position,
			Total:    l.Total.Round(2),
		}
	}
	return out
}

func domesticToResponse(m entity.DomesticTaxModel) dto.DomesticResponse {
	return dto.DomesticResponse{
		DomesticInput: dto.DomesticInput{
			PreTaxAmount: m.PreTaxAmount,
			VATRate:      m.VATRate,
			OtherTaxes:   m.OtherTaxes,
		},
		DeductibleVAT:  m.DeductibleVAT.Round(2),
		CollectedVAT:   m.CollectedVAT.Round(2),
		NetVAT:         m.NetVAT.Round(2),
		DomesticCredit: m.DomesticCredit.Round(2),
	}
}

func creditToResponse(s entity.CreditSummary) dto.CreditSummaryResponse {
	return dto.CreditSummaryResponse{
		ExternalCredit: s.ExternalCredit.Round(2),
		DomesticCredit: s.DomesticCredit.Round(2),
		TotalCredit:    s.TotalCredit.Round(2),
	}
}

func decisionToResponse(d *entity.Decision) dto.DecisionResponse {
	return dto.DecisionResponse{
		ID:         d.ID,
		RequestID:  d.RequestID,
		Role:       string(d.Role),
		Kind:       string(d.Kind),
		Motive:     d.Motive,
		ActingUser: d.ActingUser,
		DecidedAt:  d.DecidedAt.Format(time.RFC3339),
		IsFinal:    d.IsFinal,
		IsCurrent:  d.IsCurrent,
	}
}

// Validación de inputs numéricos en la frontera: el motor de cálculo es total
// y no recorta tasas negativas, por eso se rechazan aquí.
func validateLines(in []dto.ImportLineInput) error {
	if len(in) == 0 {
		return domain.NewValidationError("se requiere al menos una línea de importación")
	}
	for i, l := range in {
		if l.Designation == "" {
			return domain.NewValidationError("línea %d: designación requerida", i+1)
		}
		if l.Quantity.IsNegative() || l.UnitPrice.IsNegative() {
			return domain.NewValidationError("línea %d: cantidad y precio no pueden ser negativos", i+1)
		}
		if l.DutyRate.IsNegative() || l.LevyRate.IsNegative() ||
			l.ContributionRate.IsNegative() || l.VATRate.IsNegative() {
			return domain.NewValidationError("línea %d: las tasas no pueden ser negativas", i+1)
		}
	}
	return nil
}

func validateDomestic(in dto.DomesticInput) error {
	if in.PreTaxAmount.IsNegative() || in.VATRate.IsNegative() || in.OtherTaxes.IsNegative() {
		return domain.NewValidationError("modelo interno: montos y tasas no pueden ser negativos")
	}
	return nil
}
