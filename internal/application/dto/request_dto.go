package dto

import (
	"github.com/shopspring/decimal"
)

// ImportLineInput inputs de una línea de importación. Los derivados jamás se
// aceptan del cliente: se recalculan siempre en el servidor.
type ImportLineInput struct {
	Designation      string          `json:"designation"`
	Unit             string          `json:"unit"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	DutyRate         decimal.Decimal `json:"duty_rate"`
	LevyRate         decimal.Decimal `json:"levy_rate"`
	ContributionRate decimal.Decimal `json:"contribution_rate"`
	VATRate          decimal.Decimal `json:"vat_rate"`
}

// ImportLineResponse línea con sus valores derivados recalculados.
type ImportLineResponse struct {
	ImportLineInput
	Position           int             `json:"position"`
	CustomsValue       decimal.Decimal `json:"customs_value"`
	DutyAmount         decimal.Decimal `json:"duty_amount"`
	LevyAmount         decimal.Decimal `json:"levy_amount"`
	ContributionAmount decimal.Decimal `json:"contribution_amount"`
	VATBase            decimal.Decimal `json:"vat_base"`
	VATAmount          decimal.Decimal `json:"vat_amount"`
	TotalTaxes         decimal.Decimal `json:"total_taxes"`
}

// DqeLineInput línea DQE (informativa).
type DqeLineInput struct {
	Designation string          `json:"designation"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// DqeLineResponse línea DQE con total recalculado.
type DqeLineResponse struct {
	DqeLineInput
	Position int             `json:"position"`
	Total    decimal.Decimal `json:"total"`
}

// DomesticInput inputs del modelo de IVA interno.
type DomesticInput struct {
	PreTaxAmount decimal.Decimal `json:"pre_tax_amount"`
	VATRate      decimal.Decimal `json:"vat_rate"`
	OtherTaxes   decimal.Decimal `json:"other_taxes"`
}

// DomesticResponse modelo interno con derivados.
type DomesticResponse struct {
	DomesticInput
	DeductibleVAT  decimal.Decimal `json:"deductible_vat"`
	CollectedVAT   decimal.Decimal `json:"collected_vat"`
	NetVAT         decimal.Decimal `json:"net_vat"`
	DomesticCredit decimal.Decimal `json:"domestic_credit"`
}

// CreateRequestRequest presentación de una solicitud de corrección.
type CreateRequestRequest struct {
	EntityID    string            `json:"entity_id"`
	AuthorityID string            `json:"authority_id"`
	ProjectID   string            `json:"project_id,omitempty"`
	Lines       []ImportLineInput `json:"lines"`
	Dqe         []DqeLineInput    `json:"dqe,omitempty"`
	Domestic    DomesticInput     `json:"domestic"`
}

// UpdateFiscalRequest reemplazo del modelo fiscal (solo antes del congelamiento).
type UpdateFiscalRequest struct {
	Lines    []ImportLineInput `json:"lines"`
	Domestic DomesticInput     `json:"domestic"`
}

// RecalculateRequest recálculo puro de líneas (sin persistencia, idempotente).
type RecalculateRequest struct {
	Lines    []ImportLineInput `json:"lines"`
	Domestic *DomesticInput    `json:"domestic,omitempty"`
}

// RecalculateResponse líneas recalculadas y, si se envió modelo interno, el resumen.
type RecalculateResponse struct {
	Lines    []ImportLineResponse   `json:"lines"`
	Domestic *DomesticResponse      `json:"domestic,omitempty"`
	Credit   *CreditSummaryResponse `json:"credit,omitempty"`
}

// CreditSummaryResponse resumen del crédito (redondeado a 2 decimales: frontera de presentación).
type CreditSummaryResponse struct {
	ExternalCredit decimal.Decimal `json:"external_credit"`
	DomesticCredit decimal.Decimal `json:"domestic_credit"`
	TotalCredit    decimal.Decimal `json:"total_credit"`
}

// RequestResponse detalle completo de la solicitud. Status siempre rederivado.
type RequestResponse struct {
	ID               string                 `json:"id"`
	Reference        string                 `json:"reference"`
	EntityID         string                 `json:"entity_id"`
	AuthorityID      string                 `json:"authority_id"`
	ProjectID        string                 `json:"project_id,omitempty"`
	Status           string                 `json:"status"`
	RejectionReason  string                 `json:"rejection_reason,omitempty"`
	FiscalFrozen     bool                   `json:"fiscal_frozen"`
	SubmittedAt      string                 `json:"submitted_at"`
	Lines            []ImportLineResponse   `json:"lines"`
	Dqe              []DqeLineResponse      `json:"dqe,omitempty"`
	Domestic         DomesticResponse       `json:"domestic"`
	Credit           CreditSummaryResponse  `json:"credit"`
	Decisions        []DecisionResponse     `json:"decisions,omitempty"`
	Documents        []DocumentSlotResponse `json:"documents,omitempty"`
	ActeDigest       string                 `json:"acte_digest,omitempty"`
}

// RequestSummaryResponse fila de listado.
type RequestSummaryResponse struct {
	ID          string `json:"id"`
	Reference   string `json:"reference"`
	EntityID    string `json:"entity_id"`
	AuthorityID string `json:"authority_id"`
	Status      string `json:"status"`
	SubmittedAt string `json:"submitted_at"`
}

// StatusResponse estado vigente (proyección, nunca un campo cacheado).
type StatusResponse struct {
	RequestID string `json:"request_id"`
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

// DeclareAdmissibilityRequest dictamen de admisibilidad de la secretaría.
type DeclareAdmissibilityRequest struct {
	Admissible  bool     `json:"admissible"`
	MissingDocs []string `json:"missing_docs,omitempty"` // obligatorio cuando no es admisible
}
