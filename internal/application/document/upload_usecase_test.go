package document_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/credifiscal-api/internal/application/apptest"
	"github.com/jhoicas/credifiscal-api/internal/application/document"
	"github.com/jhoicas/credifiscal-api/internal/application/dto"
	"github.com/jhoicas/credifiscal-api/internal/domain"
	"github.com/jhoicas/credifiscal-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func setup(phase entity.RequestStatus) (*document.UploadUseCase, *apptest.Store) {
	store := apptest.NewStore()
	store.Seed(&entity.CorrectionRequest{
		ID: "req-1", Reference: "SC-2026-200", EntityID: "ent-1",
		Admissibility: phase, SubmittedAt: time.Now(),
	})
	uc := document.NewUploadUseCase(
		&apptest.TxRunner{S: store},
		&apptest.DocumentRepo{S: store},
		&apptest.RequestRepo{S: store},
	)
	return uc, store
}

func upload(t *testing.T, uc *document.UploadUseCase, docType, filename string, role entity.OrganismRole) *dto.DocumentVersionResponse {
	t.Helper()
	resp, err := uc.Upload(context.Background(), "req-1", docType, "user-1", role, dto.UploadDocumentRequest{
		Filename: filename, StorageRef: "s3://bucket/" + filename,
	})
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Versionado aditivo
// ──────────────────────────────────────────────────────────────────────────────

// La primera subida crea la versión 1 activa; subidas posteriores incrementan
// y desactivan a las hermanas.
func TestUpload_VersionesCrecientes(t *testing.T) {
	uc, store := setup(entity.StatusRecibida)

	v1 := upload(t, uc, entity.DocTypeSolicitud, "solicitud_v1.pdf", entity.RoleSolicitante)
	assert.Equal(t, 1, v1.Version)
	assert.True(t, v1.Active)

	v2 := upload(t, uc, entity.DocTypeSolicitud, "solicitud_v2.pdf", entity.RoleSolicitante)
	assert.Equal(t, 2, v2.Version)
	assert.True(t, v2.Active)

	// Exactamente una activa por slot; el historial completo se conserva.
	active := 0
	for _, v := range store.Documents {
		if v.Active {
			active++
		}
	}
	assert.Equal(t, 1, active)
	assert.Len(t, store.Documents, 2)
}

// Slots independientes: cada tipo documental versiona por separado.
func TestUpload_SlotsIndependientes(t *testing.T) {
	uc, _ := setup(entity.StatusRecibida)

	upload(t, uc, entity.DocTypeSolicitud, "sol.pdf", entity.RoleSolicitante)
	v := upload(t, uc, entity.DocTypeDQE, "dqe.xlsx", entity.RoleSolicitante)

	assert.Equal(t, 1, v.Version, "el slot DQE arranca en 1 aunque SOLICITUD ya tenga versiones")
}

// ──────────────────────────────────────────────────────────────────────────────
// Reglas de acceso y ciclo de vida
// ──────────────────────────────────────────────────────────────────────────────

// El solicitante no puede subir después de la admisibilidad.
func TestUpload_SolicitanteBloqueadoTrasAdmisibilidad(t *testing.T) {
	uc, _ := setup(entity.StatusAdmisible)

	_, err := uc.Upload(context.Background(), "req-1", entity.DocTypeOferta, "u1",
		entity.RoleSolicitante, dto.UploadDocumentRequest{Filename: "o.pdf", StorageRef: "s3://o"})
	require.ErrorIs(t, err, domain.ErrInvalidState)
}

// La secretaría sí puede adjuntar en cualquier estado abierto.
func TestUpload_SecretariaEnEstadoAbierto(t *testing.T) {
	uc, _ := setup(entity.StatusAdmisible)
	v := upload(t, uc, entity.DocTypeCertificado, "cert.pdf", entity.RoleSecretaria)
	assert.Equal(t, 1, v.Version)
}

// Una subida del solicitante sobre una solicitud INCOMPLETA la devuelve a
// RECIBIDA para un nuevo dictamen.
func TestUpload_IncompletaVuelveARecibida(t *testing.T) {
	uc, store := setup(entity.StatusIncompleta)

	upload(t, uc, entity.DocTypeSolicitud, "sol_corregida.pdf", entity.RoleSolicitante)

	assert.Equal(t, entity.StatusRecibida, store.Requests["req-1"].Admissibility)
}

// Solicitud cerrada: el expediente documental queda congelado.
func TestUpload_SolicitudCerrada(t *testing.T) {
	uc, store := setup(entity.StatusAdmisible)
	store.Decisions = append(store.Decisions, &entity.Decision{
		ID: "d-final", RequestID: "req-1", Role: entity.RoleTesoro,
		Kind: entity.KindVisa, DecidedAt: time.Now(), IsFinal: true, IsCurrent: true,
	})

	_, err := uc.Upload(context.Background(), "req-1", entity.DocTypeOferta, "u1",
		entity.RoleSecretaria, dto.UploadDocumentRequest{Filename: "o.pdf", StorageRef: "s3://o"})
	require.ErrorIs(t, err, domain.ErrInvalidState)
}

// Validación de entrada: tipo, filename y storage_ref obligatorios.
func TestUpload_EntradaInvalida(t *testing.T) {
	uc, _ := setup(entity.StatusRecibida)

	_, err := uc.Upload(context.Background(), "req-1", "", "u1",
		entity.RoleSolicitante, dto.UploadDocumentRequest{Filename: "a.pdf", StorageRef: "s3://a"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Upload(context.Background(), "req-1", entity.DocTypeOferta, "u1",
		entity.RoleSolicitante, dto.UploadDocumentRequest{})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consulta
// ──────────────────────────────────────────────────────────────────────────────

func TestListVersions_HistorialOrdenado(t *testing.T) {
	uc, _ := setup(entity.StatusRecibida)
	upload(t, uc, entity.DocTypeSolicitud, "v1.pdf", entity.RoleSolicitante)
	upload(t, uc, entity.DocTypeSolicitud, "v2.pdf", entity.RoleSolicitante)
	upload(t, uc, entity.DocTypeSolicitud, "v3.pdf", entity.RoleSolicitante)

	versions, err := uc.ListVersions(context.Background(), "req-1", entity.DocTypeSolicitud)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{versions[0].Version, versions[1].Version, versions[2].Version})
	assert.True(t, versions[2].Active)
	assert.False(t, versions[0].Active)
}

func TestListSlots_AgrupaPorTipo(t *testing.T) {
	uc, _ := setup(entity.StatusRecibida)
	upload(t, uc, entity.DocTypeSolicitud, "sol.pdf", entity.RoleSolicitante)
	upload(t, uc, entity.DocTypeDQE, "dqe.xlsx", entity.RoleSolicitante)
	upload(t, uc, entity.DocTypeDQE, "dqe_v2.xlsx", entity.RoleSolicitante)

	slots, err := uc.ListSlots(context.Background(), "req-1")
	require.NoError(t, err)
	require.Len(t, slots, 2)
	byType := map[string]int{}
	for _, s := range slots {
		byType[s.DocType] = len(s.Versions)
	}
	assert.Equal(t, 1, byType[entity.DocTypeSolicitud])
	assert.Equal(t, 2, byType[entity.DocTypeDQE])
}

func TestListVersions_SolicitudInexistente(t *testing.T) {
	uc, _ := setup(entity.StatusRecibida)
	_, err := uc.ListVersions(context.Background(), "no-existe", entity.DocTypeSolicitud)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
