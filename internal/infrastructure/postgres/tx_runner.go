package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	appdecision "github.com/jhoicas/credifiscal-api/internal/application/decision"
	appdocument "github.com/jhoicas/credifiscal-api/internal/application/document"
	apprequest "github.com/jhoicas/credifiscal-api/internal/application/request"
	"github.com/jhoicas/credifiscal-api/internal/domain/repository"
)

// Asegura que TxRunner implementa los puertos transaccionales de los casos de uso.
var _ apprequest.TxRunner = (*TxRunner)(nil)
var _ appdecision.TxRunner = (*TxRunner)(nil)
var _ appdocument.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunRequest transacción con repos de solicitud y decisiones.
func (r *TxRunner) RunRequest(ctx context.Context, fn func(
	reqRepo repository.CorrectionRequestRepository,
	decRepo repository.DecisionRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewCorrectionRequestRepository(tx), NewDecisionRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunDecision transacción para la emisión de una decisión (mismos repos que
// RunRequest; nombre separado para que el puerto de cada caso de uso sea explícito).
func (r *TxRunner) RunDecision(ctx context.Context, fn func(
	reqRepo repository.CorrectionRequestRepository,
	decRepo repository.DecisionRepository,
) error) error {
	return r.RunRequest(ctx, fn)
}

// RunDocument transacción para la subida de una versión documental.
func (r *TxRunner) RunDocument(ctx context.Context, fn func(
	reqRepo repository.CorrectionRequestRepository,
	decRepo repository.DecisionRepository,
	docRepo repository.DocumentRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewCorrectionRequestRepository(tx), NewDecisionRepository(tx), NewDocumentRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
