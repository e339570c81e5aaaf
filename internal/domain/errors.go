package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrInvalidState       = errors.New("la acción ya no está disponible en el estado actual")
	ErrPreconditionFailed = errors.New("precondición no satisfecha")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
)

// ValidationError entrada malformada o incompleta. Recuperable corrigiendo el input;
// nunca se reintenta automáticamente.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string {
	return "validación: " + e.Detail
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidationError construye un ValidationError con detalle formateado.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Detail: fmt.Sprintf(format, args...)}
}

// InvalidStateError operación incompatible con el ciclo de vida actual de la solicitud
// (ej: decidir sobre una solicitud cerrada, editar el modelo fiscal congelado).
type InvalidStateError struct {
	Detail string
}

func (e *InvalidStateError) Error() string {
	return "estado inválido: " + e.Detail
}

func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

// NewInvalidStateError construye un InvalidStateError con detalle formateado.
func NewInvalidStateError(format string, args ...any) *InvalidStateError {
	return &InvalidStateError{Detail: fmt.Sprintf(format, args...)}
}

// PreconditionError la compuerta de decisión final no está satisfecha.
// MissingRoles enumera los organismos cuyo visado falta, para que el caller
// pueda explicar el bloqueo.
type PreconditionError struct {
	Detail       string
	MissingRoles []string
}

func (e *PreconditionError) Error() string {
	if len(e.MissingRoles) == 0 {
		return "precondición: " + e.Detail
	}
	return fmt.Sprintf("precondición: %s (faltan visas de: %s)", e.Detail, strings.Join(e.MissingRoles, ", "))
}

func (e *PreconditionError) Unwrap() error { return ErrPreconditionFailed }
