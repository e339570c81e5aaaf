package decision

import (
	"context"

	"github.com/jhoicas/credifiscal-api/internal/domain/entity"
	"github.com/jhoicas/credifiscal-api/internal/domain/repository"
)

// TxRunner ejecuta la emisión de una decisión dentro de una transacción con
// los repos de solicitud y decisiones atados a la tx. El bloqueo de la fila
// de la solicitud dentro de la tx serializa las emisiones del mismo rol y
// hace el congelamiento del modelo fiscal atómico con la primera decisión.
type TxRunner interface {
	RunDecision(ctx context.Context, fn func(
		reqRepo repository.CorrectionRequestRepository,
		decRepo repository.DecisionRepository,
	) error) error
}

// ActeGenerator construye el XML del acte de la decisión final y su digest
// canónico (huella de integridad).
type ActeGenerator interface {
	Build(
		req *entity.CorrectionRequest,
		final *entity.Decision,
		lines []entity.ImportLine,
		summary entity.CreditSummary,
	) (xml []byte, digest string, err error)
}
