// Package workflow deriva el estado del ciclo de vida de una solicitud a
// partir de su libro de decisiones y aplica la compuerta de decisión final.
//
// El estado nunca se guarda como campo independiente que pueda divergir del
// conjunto de decisiones: se rederiva en cada lectura y escritura. La
// derivación es conmutativa respecto al orden de emisión entre roles
// distintos (solo inspecciona "¿qué decisión vigente tiene el rol R?"),
// salvo por el efecto bloqueante del rechazo temporal, que domina siempre.
package workflow

import (
	"github.com/jhoicas/credifiscal-api/internal/domain"
	"github.com/jhoicas/credifiscal-api/internal/domain/entity"
)

// currentByRole indexa las decisiones vigentes por rol. Ignora las
// reemplazadas (historial de auditoría).
func currentByRole(decisions []*entity.Decision) map[entity.OrganismRole]*entity.Decision {
	byRole := make(map[entity.OrganismRole]*entity.Decision, len(decisions))
	for _, d := range decisions {
		if d.IsCurrent {
			byRole[d.Role] = d
		}
	}
	return byRole
}

// FinalDecision devuelve la decisión final del conjunto, o nil si la
// solicitud sigue abierta.
func FinalDecision(decisions []*entity.Decision) *entity.Decision {
	for _, d := range decisions {
		if d.IsFinal {
			return d
		}
	}
	return nil
}

// Derive calcula el estado vigente de la solicitud:
//
//	final VISA    -> ADOPTADA      (NOTIFICADA si la orquestación ya confirmó el envío)
//	final RECHAZO -> RECHAZADA     (ídem)
//	algún rechazo temporal vigente -> EN_EVALUACION (bloquea la validación final)
//	visa vigente de los cuatro organismos obligatorios -> EN_VALIDACION_FINAL
//	alguna decisión vigente -> EN_EVALUACION
//	sin decisiones -> fase de admisibilidad guardada (RECIBIDA/INCOMPLETA/ADMISIBLE)
func Derive(req *entity.CorrectionRequest, decisions []*entity.Decision) entity.RequestStatus {
	if final := FinalDecision(decisions); final != nil {
		if req.Notified {
			return entity.StatusNotificada
		}
		if final.Kind == entity.KindVisa {
			return entity.StatusAdoptada
		}
		return entity.StatusRechazada
	}

	byRole := currentByRole(decisions)
	if len(byRole) == 0 {
		if req.Admissibility == "" {
			return entity.StatusRecibida
		}
		return req.Admissibility
	}

	for _, d := range byRole {
		if d.Kind == entity.KindRechazo {
			return entity.StatusEnEvaluacion
		}
	}
	if len(MissingVisas(decisions)) == 0 {
		return entity.StatusEnValidacionFinal
	}
	return entity.StatusEnEvaluacion
}

// MissingVisas enumera los organismos obligatorios que aún no tienen un visado
// vigente (orden estable: el de RequiredRoles).
func MissingVisas(decisions []*entity.Decision) []entity.OrganismRole {
	byRole := currentByRole(decisions)
	var missing []entity.OrganismRole
	for _, role := range entity.RequiredRoles() {
		d, ok := byRole[role]
		if !ok || d.Kind != entity.KindVisa {
			missing = append(missing, role)
		}
	}
	return missing
}

// CanFinalAdopt indica si la adopción final es admisible: los cuatro
// organismos obligatorios tienen visado vigente.
func CanFinalAdopt(decisions []*entity.Decision) bool {
	return len(MissingVisas(decisions)) == 0
}

// CheckSubmission valida una emisión de decisión contra el estado vigente.
// No muta nada; los errores se devuelven estructurados y el caller los
// propaga tal cual (ninguno se reintenta: son deterministas).
func CheckSubmission(req *entity.CorrectionRequest, decisions []*entity.Decision, role entity.OrganismRole, kind entity.DecisionKind, motive string, isFinal bool) error {
	if !kind.Valid() {
		return domain.NewValidationError("tipo de decisión desconocido: %q", kind)
	}
	if kind == entity.KindRechazo && motive == "" {
		return domain.NewValidationError("el rechazo requiere motivo")
	}
	if FinalDecision(decisions) != nil {
		return domain.NewInvalidStateError("la solicitud %s ya está cerrada", req.Reference)
	}

	if isFinal {
		if !role.IsGating() {
			return domain.ErrForbidden
		}
		// La adopción exige consenso pleno; el rechazo final no tiene esa
		// precondición (un rol habilitado puede rechazar unilateralmente con motivo).
		if kind == entity.KindVisa {
			if missing := MissingVisas(decisions); len(missing) > 0 {
				roles := make([]string, len(missing))
				for i, r := range missing {
					roles[i] = string(r)
				}
				return &domain.PreconditionError{
					Detail:       "la adopción final exige visado vigente de los cuatro organismos",
					MissingRoles: roles,
				}
			}
		}
		return nil
	}

	if !role.IsRequired() {
		return domain.NewValidationError("rol revisor desconocido: %q", role)
	}
	return nil
}
