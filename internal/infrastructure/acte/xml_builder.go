// Package acte construye el acte XML de la decisión final de la comisión y su
// huella de integridad: SHA-384 sobre la forma canónica (C14N) del documento.
// El digest permite verificar que un acte archivado no fue alterado sin
// depender del orden de atributos ni del espaciado del XML.
package acte

import (
	"bytes"
	"crypto/sha512"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"time"
	"unicode"

	"github.com/beevik/etree"
	"github.com/ucarion/c14n"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	appdecision "github.com/jhoicas/credifiscal-api/internal/application/decision"
	"github.com/jhoicas/credifiscal-api/internal/domain/entity"
)

// Namespace del acte de decisión.
const NsActe = "urn:credifiscal:acte:v1"

var _ appdecision.ActeGenerator = (*BuilderService)(nil)

// BuilderService genera el acte XML con etree.
type BuilderService struct{}

// NewBuilderService crea el servicio.
func NewBuilderService() *BuilderService {
	return &BuilderService{}
}

// Build genera el documento y su digest canónico.
func (s *BuilderService) Build(
	req *entity.CorrectionRequest,
	final *entity.Decision,
	lines []entity.ImportLine,
	summary entity.CreditSummary,
) ([]byte, string, error) {
	if req == nil || final == nil {
		return nil, "", fmt.Errorf("acte: solicitud y decisión final son obligatorias")
	}
	if !final.IsFinal {
		return nil, "", fmt.Errorf("acte: la decisión %s no es final", final.ID)
	}

	outcome := string(entity.StatusAdoptada)
	if final.Kind == entity.KindRechazo {
		outcome = string(entity.StatusRechazada)
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("ActeDecision")
	root.CreateAttr("xmlns", NsActe)

	root.CreateElement("Referencia").SetText(req.Reference)
	root.CreateElement("Entidad").SetText(req.EntityID)
	root.CreateElement("Autoridad").SetText(req.AuthorityID)
	if req.ProjectID != "" {
		root.CreateElement("Proyecto").SetText(req.ProjectID)
	}
	root.CreateElement("Resultado").SetText(outcome)
	root.CreateElement("Organismo").SetText(string(final.Role))
	root.CreateElement("Usuario").SetText(final.ActingUser)
	root.CreateElement("FechaDecision").SetText(final.DecidedAt.UTC().Format(time.RFC3339))
	if final.Motive != "" {
		root.CreateElement("Motivo").SetText(removeDiacritics(final.Motive))
	}

	credito := root.CreateElement("Credito")
	credito.CreateElement("Externo").SetText(summary.ExternalCredit.Round(2).StringFixed(2))
	credito.CreateElement("Interno").SetText(summary.DomesticCredit.Round(2).StringFixed(2))
	credito.CreateElement("Total").SetText(summary.TotalCredit.Round(2).StringFixed(2))

	lineas := root.CreateElement("Lineas")
	for _, l := range lines {
		linea := lineas.CreateElement("Linea")
		linea.CreateAttr("posicion", fmt.Sprintf("%d", l.Position))
		linea.CreateElement("Designacion").SetText(removeDiacritics(l.Designation))
		linea.CreateElement("ValorAduana").SetText(l.CustomsValue.Round(2).StringFixed(2))
		linea.CreateElement("TotalImpuestos").SetText(l.TotalTaxes.Round(2).StringFixed(2))
	}

	doc.Indent(2)
	raw, err := doc.WriteToBytes()
	if err != nil {
		return nil, "", fmt.Errorf("acte: serializar XML: %w", err)
	}

	digest, err := CanonicalDigest(raw)
	if err != nil {
		return nil, "", err
	}
	return raw, digest, nil
}

// CanonicalDigest calcula SHA-384 en hex sobre la forma canónica C14N del XML.
func CanonicalDigest(raw []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	dec.Entity = map[string]string{}
	canonical, err := c14n.Canonicalize(dec)
	if err != nil {
		return "", fmt.Errorf("acte: canonicalizar XML: %w", err)
	}
	hash := sha512.Sum384(canonical)
	return hex.EncodeToString(hash[:]), nil
}

// removeDiacritics normaliza texto libre a ASCII sin acentos para los campos
// del acte (los sistemas de archivo documental aguas abajo no aceptan marcas
// combinantes).
func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
