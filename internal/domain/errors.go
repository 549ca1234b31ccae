package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
)

// Error asocia un error de dominio (Kind) con un código estable para el cliente.
// errors.Is(err, domain.ErrNotFound) sigue funcionando gracias a Unwrap.
type Error struct {
	Kind    error
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// NewValidation entrada mal formada o fuera de rango.
func NewValidation(code, message string) error {
	return &Error{Kind: ErrInvalidInput, Code: code, Message: message}
}

// NewNotFound entidad referenciada inexistente.
func NewNotFound(code, message string) error {
	return &Error{Kind: ErrNotFound, Code: code, Message: message}
}

// NewConflict duplicados o estado incompatible con la operación.
func NewConflict(code, message string) error {
	return &Error{Kind: ErrConflict, Code: code, Message: message}
}

// NewInsufficientStock la salida dejaría el stock en negativo.
func NewInsufficientStock(message string) error {
	return &Error{Kind: ErrInsufficientStock, Code: "INSUFFICIENT_STOCK", Message: message}
}

// NewUnauthorized credenciales ausentes o inválidas.
func NewUnauthorized(code, message string) error {
	return &Error{Kind: ErrUnauthorized, Code: code, Message: message}
}

// NewForbidden el usuario no tiene permisos para la operación.
func NewForbidden(code, message string) error {
	return &Error{Kind: ErrForbidden, Code: code, Message: message}
}

// CodeOf devuelve el código de un *Error o "" si err no es de dominio.
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
