package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de una solicitud de corrección.
// RECIBIDA/INCOMPLETA/ADMISIBLE son la fase de admisibilidad (previa a toda decisión);
// EN_EVALUACION y EN_VALIDACION_FINAL se derivan del conjunto de decisiones vigentes;
// ADOPTADA/RECHAZADA son terminales; NOTIFICADA es contabilidad posterior al cierre.
type RequestStatus string

const (
	StatusRecibida          RequestStatus = "RECIBIDA"
	StatusIncompleta        RequestStatus = "INCOMPLETA"
	StatusAdmisible         RequestStatus = "ADMISIBLE"
	StatusEnEvaluacion      RequestStatus = "EN_EVALUACION"
	StatusEnValidacionFinal RequestStatus = "EN_VALIDACION_FINAL"
	StatusAdoptada          RequestStatus = "ADOPTADA"
	StatusRechazada         RequestStatus = "RECHAZADA"
	StatusNotificada        RequestStatus = "NOTIFICADA"
)

// IsTerminal indica si el estado cierra la solicitud (ninguna decisión posterior se acepta).
func (s RequestStatus) IsTerminal() bool {
	return s == StatusAdoptada || s == StatusRechazada
}

// IsOpen indica si la solicitud sigue abierta (admite decisiones y documentos).
func (s RequestStatus) IsOpen() bool {
	switch s {
	case StatusRecibida, StatusIncompleta, StatusAdmisible, StatusEnEvaluacion, StatusEnValidacionFinal:
		return true
	}
	return false
}

// CorrectionRequest solicitud de corrección presentada por una entidad ante la comisión.
// El estado del ciclo de vida NO se guarda aquí: es una proyección pura sobre el
// conjunto de decisiones (ver workflow.Derive). Solo se persisten la fase de
// admisibilidad y los flags que no pueden derivarse de las decisiones.
type CorrectionRequest struct {
	ID          string
	Reference   string // referencia legible (ej. SC-2025-000123), asignada una vez, inmutable
	EntityID    string // entidad solicitante
	AuthorityID string // autoridad patrocinadora
	ProjectID   string // proyecto vinculado (opcional)

	// Admissibility fase previa a las decisiones: RECIBIDA, INCOMPLETA o ADMISIBLE.
	Admissibility       RequestStatus
	AdmissibilityDetail string // documentos faltantes cuando INCOMPLETA

	FiscalFrozen    bool   // true desde la primera decisión; el solicitante ya no puede editar el modelo fiscal
	RejectionReason string // presente solo cuando el desenlace final es RECHAZADA
	Notified        bool   // la capa orquestadora confirmó la notificación (post-terminal)

	Domestic DomesticTaxModel

	// Acte de la decisión final (XML + digest canónico SHA-384), vacíos mientras la solicitud está abierta.
	ActeXML    string
	ActeDigest string

	SubmittedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreditSummary resumen del crédito fiscal de la solicitud.
// ExternalCredit = suma de TotalTaxes de todas las líneas de importación;
// TotalCredit = ExternalCredit + DomesticCredit.
type CreditSummary struct {
	ExternalCredit decimal.Decimal
	DomesticCredit decimal.Decimal
	TotalCredit    decimal.Decimal
}
