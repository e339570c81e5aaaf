package entity

import "time"

// Tipos de documento habituales de una solicitud de corrección. El tipo es
// texto libre a nivel de almacenamiento; estas constantes cubren los slots
// requeridos para la admisibilidad.
const (
	DocTypeSolicitud       = "SOLICITUD"
	DocTypeDQE             = "DQE"
	DocTypeOferta          = "OFERTA"
	DocTypeFacturaProforma = "FACTURA_PROFORMA"
	DocTypeCertificado     = "CERTIFICADO"
)

// DocumentVersion una versión subida en un slot documental. El Version es
// estrictamente creciente por slot y nunca se reutiliza; el historial es
// permanente (no existe operación de borrado).
type DocumentVersion struct {
	ID         string
	RequestID  string
	DocType    string
	Version    int
	Filename   string
	StorageRef string // referencia opaca al almacenamiento de archivos (externo)
	UploadedBy string
	UploadedAt time.Time
	Active     bool // exactamente una versión activa por slot: la última subida
}

// DocumentSlot slot documental de una solicitud: (RequestID, DocType) con su
// historial de versiones ordenado por Version ascendente.
type DocumentSlot struct {
	RequestID string
	DocType   string
	Versions  []*DocumentVersion
}

// ActiveVersion devuelve la versión activa del slot, o nil si no hay ninguna.
func (s *DocumentSlot) ActiveVersion() *DocumentVersion {
	for _, v := range s.Versions {
		if v.Active {
			return v
		}
	}
	return nil
}
