package dto

// SubmitDecisionRequest emisión de una decisión de organismo.
type SubmitDecisionRequest struct {
	Kind    string `json:"kind"`              // VISA | RECHAZO
	Motive  string `json:"motive,omitempty"`  // obligatorio cuando kind = RECHAZO
	IsFinal bool   `json:"is_final,omitempty"`
}

// DecisionResponse decisión registrada. NewStatus es el estado rederivado tras
// la emisión (solo en la respuesta de SubmitDecision).
type DecisionResponse struct {
	ID         string `json:"id"`
	RequestID  string `json:"request_id"`
	Role       string `json:"role"`
	Kind       string `json:"kind"`
	Motive     string `json:"motive,omitempty"`
	ActingUser string `json:"acting_user"`
	DecidedAt  string `json:"decided_at"`
	IsFinal    bool   `json:"is_final"`
	IsCurrent  bool   `json:"is_current"`
	NewStatus  string `json:"new_status,omitempty"`
}
