package entity

import "time"

// OrganismRole rol del organismo revisor dentro de la comisión.
type OrganismRole string

const (
	RoleAduanas     OrganismRole = "ADUANAS"     // dirección de aduanas
	RoleTesoro      OrganismRole = "TESORO"      // dirección del tesoro
	RoleImpuestos   OrganismRole = "IMPUESTOS"   // dirección de impuestos
	RolePresupuesto OrganismRole = "PRESUPUESTO" // dirección de presupuesto
	RolePresidencia OrganismRole = "PRESIDENCIA" // presidencia de la comisión (solo decisión final)

	// Roles fuera de la mesa de decisión.
	RoleSecretaria  OrganismRole = "SECRETARIA"  // secretaría de la comisión (admisibilidad)
	RoleSolicitante OrganismRole = "SOLICITANTE" // entidad que presenta la solicitud
)

// RequiredRoles los cuatro organismos cuyo visado vigente es obligatorio para
// entrar en validación final y para adoptar. Extender este slice es lo único
// necesario para incorporar un nuevo organismo revisor.
func RequiredRoles() []OrganismRole {
	return []OrganismRole{RoleAduanas, RoleTesoro, RoleImpuestos, RolePresupuesto}
}

// GatingRoles los roles habilitados para emitir la decisión final.
func GatingRoles() []OrganismRole {
	return []OrganismRole{RoleTesoro, RolePresidencia}
}

// IsRequired indica si el rol pertenece al conjunto obligatorio de revisores.
func (r OrganismRole) IsRequired() bool {
	for _, req := range RequiredRoles() {
		if r == req {
			return true
		}
	}
	return false
}

// IsGating indica si el rol puede emitir decisiones finales.
func (r OrganismRole) IsGating() bool {
	for _, g := range GatingRoles() {
		if r == g {
			return true
		}
	}
	return false
}

// ParseRole convierte el claim de rol del token en un OrganismRole conocido.
func ParseRole(s string) (OrganismRole, bool) {
	switch OrganismRole(s) {
	case RoleAduanas, RoleTesoro, RoleImpuestos, RolePresupuesto,
		RolePresidencia, RoleSecretaria, RoleSolicitante:
		return OrganismRole(s), true
	}
	return "", false
}

// DecisionKind tipo de decisión de un organismo.
type DecisionKind string

const (
	// KindVisa aprobación. No final: visado revisable. Final: adopta la solicitud.
	KindVisa DecisionKind = "VISA"
	// KindRechazo desaprobación con motivo obligatorio. No final: rechazo temporal
	// revisable que bloquea la entrada en validación final. Final: rechaza la solicitud.
	KindRechazo DecisionKind = "RECHAZO"
)

// Valid indica si el kind es uno de los valores conocidos.
func (k DecisionKind) Valid() bool {
	return k == KindVisa || k == KindRechazo
}

// Decision decisión de un organismo sobre una solicitud. A lo sumo una decisión
// vigente (IsCurrent) por par (RequestID, Role); una nueva emisión del mismo rol
// reemplaza la anterior, que se conserva como historial para auditoría. Una
// decisión con IsFinal=true nunca se reemplaza y cierra la solicitud.
type Decision struct {
	ID         string
	RequestID  string
	Role       OrganismRole
	Kind       DecisionKind
	Motive     string // obligatorio cuando Kind = RECHAZO
	ActingUser string
	DecidedAt  time.Time
	IsFinal    bool
	IsCurrent  bool
}
