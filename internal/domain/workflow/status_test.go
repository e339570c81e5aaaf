package workflow_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/credifiscal-api/internal/domain"
	"github.com/jhoicas/credifiscal-api/internal/domain/entity"
	"github.com/jhoicas/credifiscal-api/internal/domain/workflow"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func newRequest() *entity.CorrectionRequest {
	return &entity.CorrectionRequest{
		ID:            "req-1",
		Reference:     "SC-2026-001",
		Admissibility: entity.StatusAdmisible,
	}
}

func visa(role entity.OrganismRole) *entity.Decision {
	return &entity.Decision{
		ID: fmt.Sprintf("d-%s", role), RequestID: "req-1",
		Role: role, Kind: entity.KindVisa,
		DecidedAt: time.Now(), IsCurrent: true,
	}
}

func rechazo(role entity.OrganismRole, motive string) *entity.Decision {
	return &entity.Decision{
		ID: fmt.Sprintf("d-%s", role), RequestID: "req-1",
		Role: role, Kind: entity.KindRechazo, Motive: motive,
		DecidedAt: time.Now(), IsCurrent: true,
	}
}

func finalVisa(role entity.OrganismRole) *entity.Decision {
	d := visa(role)
	d.IsFinal = true
	return d
}

// permutations genera todas las permutaciones del slice (para verificar la
// conmutatividad de la derivación respecto al orden de emisión).
func permutations(ds []*entity.Decision) [][]*entity.Decision {
	if len(ds) <= 1 {
		return [][]*entity.Decision{ds}
	}
	var out [][]*entity.Decision
	for i := range ds {
		rest := make([]*entity.Decision, 0, len(ds)-1)
		rest = append(rest, ds[:i]...)
		rest = append(rest, ds[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]*entity.Decision{ds[i]}, p...))
		}
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Derive — proyección del estado
// ──────────────────────────────────────────────────────────────────────────────

// Sin decisiones, el estado es la fase de admisibilidad guardada.
func TestDerive_SinDecisiones_FaseAdmisibilidad(t *testing.T) {
	req := newRequest()

	req.Admissibility = entity.StatusRecibida
	assert.Equal(t, entity.StatusRecibida, workflow.Derive(req, nil))

	req.Admissibility = entity.StatusIncompleta
	assert.Equal(t, entity.StatusIncompleta, workflow.Derive(req, nil))

	req.Admissibility = entity.StatusAdmisible
	assert.Equal(t, entity.StatusAdmisible, workflow.Derive(req, nil))

	// Fase vacía (solicitud recién migrada): por defecto RECIBIDA.
	req.Admissibility = ""
	assert.Equal(t, entity.StatusRecibida, workflow.Derive(req, nil))
}

// Con decisiones parciales la solicitud está en evaluación.
func TestDerive_DecisionesParciales_EnEvaluacion(t *testing.T) {
	req := newRequest()
	decisions := []*entity.Decision{visa(entity.RoleAduanas), visa(entity.RoleTesoro)}
	assert.Equal(t, entity.StatusEnEvaluacion, workflow.Derive(req, decisions))
}

// Con visado vigente de los cuatro organismos obligatorios, entra en
// validación final.
func TestDerive_CuatroVisas_EnValidacionFinal(t *testing.T) {
	req := newRequest()
	decisions := []*entity.Decision{
		visa(entity.RoleAduanas), visa(entity.RoleTesoro),
		visa(entity.RoleImpuestos), visa(entity.RolePresupuesto),
	}
	assert.Equal(t, entity.StatusEnValidacionFinal, workflow.Derive(req, decisions))
}

// Un rechazo temporal vigente bloquea la validación final aunque los otros
// tres tengan visa.
func TestDerive_RechazoTemporalBloquea(t *testing.T) {
	req := newRequest()
	decisions := []*entity.Decision{
		visa(entity.RoleAduanas), visa(entity.RoleTesoro),
		visa(entity.RoleImpuestos), rechazo(entity.RolePresupuesto, "presupuesto insuficiente"),
	}
	assert.Equal(t, entity.StatusEnEvaluacion, workflow.Derive(req, decisions))
}

// Una decisión reemplazada no cuenta: el visado posterior del mismo rol
// levanta el bloqueo del rechazo histórico.
func TestDerive_RechazoReemplazadoNoBloquea(t *testing.T) {
	req := newRequest()
	old := rechazo(entity.RoleAduanas, "documentación incompleta")
	old.IsCurrent = false
	decisions := []*entity.Decision{
		old,
		visa(entity.RoleAduanas), visa(entity.RoleTesoro),
		visa(entity.RoleImpuestos), visa(entity.RolePresupuesto),
	}
	assert.Equal(t, entity.StatusEnValidacionFinal, workflow.Derive(req, decisions))
}

// La derivación es conmutativa: cualquier orden de emisión entre roles
// distintos produce el mismo estado.
func TestDerive_ConmutativaEnElOrden(t *testing.T) {
	req := newRequest()
	base := []*entity.Decision{
		visa(entity.RoleAduanas), visa(entity.RoleTesoro),
		visa(entity.RoleImpuestos), rechazo(entity.RolePresupuesto, "motivo"),
	}
	want := workflow.Derive(req, base)
	for _, p := range permutations(base) {
		assert.Equal(t, want, workflow.Derive(req, p),
			"el estado derivado no debe depender del orden de las decisiones")
	}
}

// Decisión final: ADOPTADA o RECHAZADA; NOTIFICADA cuando el envío se confirmó.
func TestDerive_DecisionFinal(t *testing.T) {
	req := newRequest()
	adopted := []*entity.Decision{
		visa(entity.RoleAduanas), visa(entity.RoleTesoro),
		visa(entity.RoleImpuestos), visa(entity.RolePresupuesto),
		finalVisa(entity.RoleTesoro),
	}
	assert.Equal(t, entity.StatusAdoptada, workflow.Derive(req, adopted))

	req.Notified = true
	assert.Equal(t, entity.StatusNotificada, workflow.Derive(req, adopted))

	req2 := newRequest()
	fr := rechazo(entity.RolePresidencia, "no procede")
	fr.IsFinal = true
	assert.Equal(t, entity.StatusRechazada, workflow.Derive(req2, []*entity.Decision{fr}))
}

// ──────────────────────────────────────────────────────────────────────────────
// MissingVisas / CanFinalAdopt — compuerta de adopción
// ──────────────────────────────────────────────────────────────────────────────

func TestMissingVisas_OrdenEstable(t *testing.T) {
	decisions := []*entity.Decision{visa(entity.RoleImpuestos)}
	missing := workflow.MissingVisas(decisions)
	// Orden estable: el de RequiredRoles, no el de emisión.
	assert.Equal(t, []entity.OrganismRole{
		entity.RoleAduanas, entity.RoleTesoro, entity.RolePresupuesto,
	}, missing)
	assert.False(t, workflow.CanFinalAdopt(decisions))
}

func TestMissingVisas_RechazoVigenteCuentaComoFaltante(t *testing.T) {
	decisions := []*entity.Decision{
		visa(entity.RoleAduanas), visa(entity.RoleTesoro),
		visa(entity.RoleImpuestos), rechazo(entity.RolePresupuesto, "motivo"),
	}
	assert.Equal(t, []entity.OrganismRole{entity.RolePresupuesto}, workflow.MissingVisas(decisions))
}

func TestCanFinalAdopt_ConCuatroVisas(t *testing.T) {
	decisions := []*entity.Decision{
		visa(entity.RoleAduanas), visa(entity.RoleTesoro),
		visa(entity.RoleImpuestos), visa(entity.RolePresupuesto),
	}
	assert.True(t, workflow.CanFinalAdopt(decisions))
	assert.Empty(t, workflow.MissingVisas(decisions))
}

// ──────────────────────────────────────────────────────────────────────────────
// CheckSubmission — validación de emisiones
// ──────────────────────────────────────────────────────────────────────────────

func TestCheckSubmission_KindDesconocido(t *testing.T) {
	err := workflow.CheckSubmission(newRequest(), nil, entity.RoleAduanas, "ABSTENCION", "", false)
	var valErr *domain.ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestCheckSubmission_RechazoSinMotivo(t *testing.T) {
	err := workflow.CheckSubmission(newRequest(), nil, entity.RoleAduanas, entity.KindRechazo, "", false)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCheckSubmission_SolicitudCerrada(t *testing.T) {
	closed := []*entity.Decision{finalVisa(entity.RoleTesoro)}
	err := workflow.CheckSubmission(newRequest(), closed, entity.RoleAduanas, entity.KindVisa, "", false)
	require.ErrorIs(t, err, domain.ErrInvalidState)
}

// Solo TESORO y PRESIDENCIA pueden emitir decisión final.
func TestCheckSubmission_FinalSoloRolesHabilitados(t *testing.T) {
	err := workflow.CheckSubmission(newRequest(), nil, entity.RoleAduanas, entity.KindVisa, "", true)
	require.ErrorIs(t, err, domain.ErrForbidden)

	// PRESIDENCIA puede rechazar en final aunque no sea organismo revisor.
	err = workflow.CheckSubmission(newRequest(), nil, entity.RolePresidencia, entity.KindRechazo, "no procede", true)
	require.NoError(t, err)
}

// La adopción final exige visado vigente de los cuatro organismos; el error
// enumera los faltantes.
func TestCheckSubmission_AdopcionExigeConsenso(t *testing.T) {
	decisions := []*entity.Decision{visa(entity.RoleAduanas), visa(entity.RoleTesoro)}
	err := workflow.CheckSubmission(newRequest(), decisions, entity.RoleTesoro, entity.KindVisa, "", true)

	var preErr *domain.PreconditionError
	require.ErrorAs(t, err, &preErr)
	assert.Equal(t, []string{"IMPUESTOS", "PRESUPUESTO"}, preErr.MissingRoles)
}

// El rechazo final es unilateral: no exige consenso, solo rol habilitado y motivo.
func TestCheckSubmission_RechazoFinalUnilateral(t *testing.T) {
	err := workflow.CheckSubmission(newRequest(), nil, entity.RoleTesoro, entity.KindRechazo, "fuera de plazo", true)
	require.NoError(t, err)
}

// PRESIDENCIA no es organismo revisor: su emisión no-final es inválida.
func TestCheckSubmission_PresidenciaNoRevisa(t *testing.T) {
	err := workflow.CheckSubmission(newRequest(), nil, entity.RolePresidencia, entity.KindVisa, "", false)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCheckSubmission_AdopcionConConsensoCompleto(t *testing.T) {
	decisions := []*entity.Decision{
		visa(entity.RoleAduanas), visa(entity.RoleTesoro),
		visa(entity.RoleImpuestos), visa(entity.RolePresupuesto),
	}
	err := workflow.CheckSubmission(newRequest(), decisions, entity.RolePresidencia, entity.KindVisa, "", true)
	require.NoError(t, err)
}
