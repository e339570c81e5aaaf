package document

import (
	"context"

	"github.com/jhoicas/credifiscal-api/internal/domain/repository"
)

// TxRunner ejecuta la subida de una versión dentro de una transacción. El
// bloqueo de la fila de la solicitud serializa subidas concurrentes al mismo
// slot y garantiza "exactamente una versión activa".
type TxRunner interface {
	RunDocument(ctx context.Context, fn func(
		reqRepo repository.CorrectionRequestRepository,
		decRepo repository.DecisionRepository,
		docRepo repository.DocumentRepository,
	) error) error
}
