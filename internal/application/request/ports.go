package request

import (
	"context"

	"github.com/jhoicas/credifiscal-api/internal/domain/entity"
	"github.com/jhoicas/credifiscal-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción con los repos de
// solicitud y decisiones atados a la tx.
type TxRunner interface {
	RunRequest(ctx context.Context, fn func(
		reqRepo repository.CorrectionRequestRepository,
		decRepo repository.DecisionRepository,
	) error) error
}

// ActePDFGenerator genera la representación gráfica (PDF) del acte de la
// decisión final.
type ActePDFGenerator interface {
	GenerateActePDF(
		ctx context.Context,
		req *entity.CorrectionRequest,
		final *entity.Decision,
		lines []entity.ImportLine,
		summary entity.CreditSummary,
	) ([]byte, error)
}
