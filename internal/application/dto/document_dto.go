package dto

// UploadDocumentRequest subida de una nueva versión a un slot documental.
// El transporte del archivo es externo: aquí solo viaja la referencia opaca.
type UploadDocumentRequest struct {
	Filename   string `json:"filename"`
	StorageRef string `json:"storage_ref"`
}

// DocumentVersionResponse versión de un slot documental.
type DocumentVersionResponse struct {
	ID         string `json:"id"`
	DocType    string `json:"doc_type"`
	Version    int    `json:"version"`
	Filename   string `json:"filename"`
	StorageRef string `json:"storage_ref"`
	UploadedBy string `json:"uploaded_by"`
	UploadedAt string `json:"uploaded_at"`
	Active     bool   `json:"active"`
}

// DocumentSlotResponse slot con su historial completo (la activa es la última subida).
type DocumentSlotResponse struct {
	DocType  string                    `json:"doc_type"`
	Versions []DocumentVersionResponse `json:"versions"`
}
