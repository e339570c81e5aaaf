package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// ErrorResponse cuerpo de error HTTP. MissingRoles solo se llena cuando la
// compuerta de decisión final no está satisfecha (PRECONDITION_FAILED).
type ErrorResponse struct {
	Code         string   `json:"code"`
	Message      string   `json:"message"`
	MissingRoles []string `json:"missing_roles,omitempty"`
}
