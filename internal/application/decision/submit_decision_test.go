package decision_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/credifiscal-api/internal/application/apptest"
	"github.com/jhoicas/credifiscal-api/internal/application/decision"
	"github.com/jhoicas/credifiscal-api/internal/application/dto"
	"github.com/jhoicas/credifiscal-api/internal/domain"
	"github.com/jhoicas/credifiscal-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func setup() (*decision.SubmitDecisionUseCase, *apptest.Store, *apptest.Recorder) {
	store := apptest.NewStore()
	recorder := &apptest.Recorder{}
	uc := decision.NewSubmitDecisionUseCase(&apptest.TxRunner{S: store}, apptest.ActeGen{}, recorder)
	return uc, store, recorder
}

func seedRequest(store *apptest.Store) *entity.CorrectionRequest {
	req := &entity.CorrectionRequest{
		ID:            "req-1",
		Reference:     "SC-2026-100",
		EntityID:      "ent-1",
		AuthorityID:   "auth-1",
		Admissibility: entity.StatusAdmisible,
		Domestic: entity.DomesticTaxModel{
			PreTaxAmount: decimal.NewFromInt(1000),
			VATRate:      decimal.NewFromInt(18),
		},
		SubmittedAt: time.Now(),
	}
	store.Seed(req, &entity.ImportLine{
		ID: "l-1", RequestID: req.ID, Position: 1, Designation: "Motor",
		Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(100),
		DutyRate: decimal.NewFromInt(5), VATRate: decimal.NewFromInt(18),
	})
	return req
}

func submit(t *testing.T, uc *decision.SubmitDecisionUseCase, role entity.OrganismRole, in dto.SubmitDecisionRequest) *dto.DecisionResponse {
	t.Helper()
	resp, err := uc.Submit(context.Background(), "req-1", "user-"+string(role), role, in)
	require.NoError(t, err)
	return resp
}

func visaAll(t *testing.T, uc *decision.SubmitDecisionUseCase) {
	t.Helper()
	for _, role := range entity.RequiredRoles() {
		submit(t, uc, role, dto.SubmitDecisionRequest{Kind: "VISA"})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Emisión y congelamiento
// ──────────────────────────────────────────────────────────────────────────────

// La primera decisión congela el modelo fiscal en la misma transacción.
func TestSubmit_PrimeraDecisionCongelaModelo(t *testing.T) {
	uc, store, _ := setup()
	req := seedRequest(store)
	require.False(t, req.FiscalFrozen)

	resp := submit(t, uc, entity.RoleAduanas, dto.SubmitDecisionRequest{Kind: "VISA"})

	assert.True(t, store.Requests["req-1"].FiscalFrozen, "la primera decisión congela el modelo")
	assert.Equal(t, "EN_EVALUACION", resp.NewStatus)
	assert.True(t, resp.IsCurrent)
}

// Visado de los cuatro organismos: la solicitud entra en validación final.
func TestSubmit_CuatroVisas_EnValidacionFinal(t *testing.T) {
	uc, store, _ := setup()
	seedRequest(store)

	var last *dto.DecisionResponse
	for _, role := range entity.RequiredRoles() {
		last = submit(t, uc, role, dto.SubmitDecisionRequest{Kind: "VISA"})
	}
	assert.Equal(t, "EN_VALIDACION_FINAL", last.NewStatus)
}

// Rechazo sin motivo: ValidationError, nada persiste.
func TestSubmit_RechazoSinMotivo(t *testing.T) {
	uc, store, _ := setup()
	seedRequest(store)

	_, err := uc.Submit(context.Background(), "req-1", "u1", entity.RoleAduanas,
		dto.SubmitDecisionRequest{Kind: "RECHAZO"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, store.Decisions)
}

// Solicitud inexistente: ErrNotFound.
func TestSubmit_SolicitudInexistente(t *testing.T) {
	uc, _, _ := setup()
	_, err := uc.Submit(context.Background(), "no-existe", "u1", entity.RoleAduanas,
		dto.SubmitDecisionRequest{Kind: "VISA"})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reemplazo por rol (último gana)
// ──────────────────────────────────────────────────────────────────────────────

// Una segunda emisión del mismo rol reemplaza la vigente; la anterior queda
// como historial.
func TestSubmit_MismoRolReemplaza(t *testing.T) {
	uc, store, _ := setup()
	seedRequest(store)

	submit(t, uc, entity.RoleAduanas, dto.SubmitDecisionRequest{Kind: "RECHAZO", Motive: "falta factura"})
	resp := submit(t, uc, entity.RoleAduanas, dto.SubmitDecisionRequest{Kind: "VISA"})

	require.Len(t, store.Decisions, 2, "la reemplazada se conserva como historial")
	current := 0
	for _, d := range store.Decisions {
		if d.IsCurrent {
			current++
			assert.Equal(t, entity.KindVisa, d.Kind, "la vigente es la última emitida")
		}
	}
	assert.Equal(t, 1, current, "una sola decisión vigente por rol")
	assert.True(t, resp.IsCurrent)
}

// Si la vigente tiene timestamp posterior, la entrante se guarda solo como
// historial (último gana por fecha de emisión, no por orden de llegada).
func TestSubmit_VigentePosteriorGana(t *testing.T) {
	uc, store, _ := setup()
	seedRequest(store)

	store.Decisions = append(store.Decisions, &entity.Decision{
		ID: "d-futuro", RequestID: "req-1", Role: entity.RoleAduanas,
		Kind: entity.KindVisa, ActingUser: "u-prev",
		DecidedAt: time.Now().Add(time.Hour), IsCurrent: true,
	})

	resp := submit(t, uc, entity.RoleAduanas, dto.SubmitDecisionRequest{Kind: "RECHAZO", Motive: "tarde"})

	assert.False(t, resp.IsCurrent, "la entrante más antigua no desplaza a la vigente")
	existing, err := (&apptest.DecisionRepo{S: store}).GetCurrentByRole("req-1", entity.RoleAduanas)
	require.NoError(t, err)
	assert.Equal(t, "d-futuro", existing.ID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Decisión final — compuerta, cierre y acte
// ──────────────────────────────────────────────────────────────────────────────

// La decisión final queda vigente aunque la vigente del mismo rol tenga
// timestamp posterior: el cierre es irrevocable y nunca se degrada a historial.
func TestSubmit_FinalDesplazaVigentePosterior(t *testing.T) {
	uc, store, _ := setup()
	seedRequest(store)

	store.Decisions = append(store.Decisions, &entity.Decision{
		ID: "d-futuro", RequestID: "req-1", Role: entity.RoleTesoro,
		Kind: entity.KindVisa, ActingUser: "u-prev",
		DecidedAt: time.Now().Add(time.Hour), IsCurrent: true,
	})

	resp := submit(t, uc, entity.RoleTesoro,
		dto.SubmitDecisionRequest{Kind: "RECHAZO", Motive: "fuera de plazo", IsFinal: true})

	assert.True(t, resp.IsCurrent, "la final siempre queda vigente")
	assert.Equal(t, "RECHAZADA", resp.NewStatus)
	existing, err := (&apptest.DecisionRepo{S: store}).GetCurrentByRole("req-1", entity.RoleTesoro)
	require.NoError(t, err)
	assert.Equal(t, resp.ID, existing.ID, "el visado futuro pasa a historial")

	req := store.Requests["req-1"]
	assert.Equal(t, "fuera de plazo", req.RejectionReason)
	assert.NotEmpty(t, req.ActeDigest)

	// Cerrada: ninguna emisión posterior es admisible.
	_, err = uc.Submit(context.Background(), "req-1", "u-aduanas", entity.RoleAduanas,
		dto.SubmitDecisionRequest{Kind: "VISA"})
	var stateErr *domain.InvalidStateError
	require.ErrorAs(t, err, &stateErr)
}

// La adopción final sin consenso falla con los roles faltantes.
func TestSubmit_AdopcionSinConsenso(t *testing.T) {
	uc, store, _ := setup()
	seedRequest(store)
	submit(t, uc, entity.RoleAduanas, dto.SubmitDecisionRequest{Kind: "VISA"})

	_, err := uc.Submit(context.Background(), "req-1", "u-tesoro", entity.RoleTesoro,
		dto.SubmitDecisionRequest{Kind: "VISA", IsFinal: true})

	var preErr *domain.PreconditionError
	require.ErrorAs(t, err, &preErr)
	assert.Equal(t, []string{"TESORO", "IMPUESTOS", "PRESUPUESTO"}, preErr.MissingRoles)
}

// Adopción final con consenso: cierra la solicitud, genera el acte y deriva ADOPTADA.
func TestSubmit_AdopcionFinalGeneraActe(t *testing.T) {
	uc, store, recorder := setup()
	seedRequest(store)
	visaAll(t, uc)

	resp := submit(t, uc, entity.RolePresidencia, dto.SubmitDecisionRequest{Kind: "VISA", IsFinal: true})

	assert.Equal(t, "ADOPTADA", resp.NewStatus)
	req := store.Requests["req-1"]
	assert.NotEmpty(t, req.ActeXML, "el cierre materializa el acte XML")
	assert.NotEmpty(t, req.ActeDigest, "y su digest canónico")
	assert.Empty(t, req.RejectionReason)

	// El evento post-commit lleva el estado nuevo.
	require.NotEmpty(t, recorder.Events)
	last := recorder.Events[len(recorder.Events)-1]
	assert.Equal(t, entity.StatusAdoptada, last.NewStatus)
	assert.Equal(t, "SC-2026-100", last.Reference)
}

// El rechazo final es unilateral: no exige consenso, guarda el motivo.
func TestSubmit_RechazoFinalUnilateral(t *testing.T) {
	uc, store, _ := setup()
	seedRequest(store)

	resp := submit(t, uc, entity.RoleTesoro, dto.SubmitDecisionRequest{
		Kind: "RECHAZO", Motive: "fuera del ejercicio fiscal", IsFinal: true,
	})

	assert.Equal(t, "RECHAZADA", resp.NewStatus)
	req := store.Requests["req-1"]
	assert.Equal(t, "fuera del ejercicio fiscal", req.RejectionReason)
	assert.NotEmpty(t, req.ActeDigest)
}

// Un rol no habilitado no puede emitir decisión final.
func TestSubmit_FinalRolNoHabilitado(t *testing.T) {
	uc, store, _ := setup()
	seedRequest(store)
	visaAll(t, uc)

	_, err := uc.Submit(context.Background(), "req-1", "u-aduanas", entity.RoleAduanas,
		dto.SubmitDecisionRequest{Kind: "VISA", IsFinal: true})
	require.ErrorIs(t, err, domain.ErrForbidden)
}

// Tras el cierre, toda emisión posterior falla con InvalidStateError.
func TestSubmit_SolicitudCerradaRechazaEmisiones(t *testing.T) {
	uc, store, _ := setup()
	seedRequest(store)
	visaAll(t, uc)
	submit(t, uc, entity.RoleTesoro, dto.SubmitDecisionRequest{Kind: "VISA", IsFinal: true})

	_, err := uc.Submit(context.Background(), "req-1", "u1", entity.RoleImpuestos,
		dto.SubmitDecisionRequest{Kind: "VISA"})
	require.ErrorIs(t, err, domain.ErrInvalidState)
}
