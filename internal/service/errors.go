package service

import "errors"

// Kind classifies a service error for transport mapping.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error is a domain error with a stable machine code and a user facing
// message. Sentinels below are compared with errors.Is.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// KindOf returns the Kind of err, or 0 when err is not a service error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

// Validation errors.
var (
	ErrMissingField    = newError(KindValidation, "MISSING_FIELD", "Faltan campos obligatorios")
	ErrInvalidDate     = newError(KindValidation, "INVALID_DATE", "Fecha inválida, use el formato AAAA-MM-DD")
	ErrPastDate        = newError(KindValidation, "PAST_DATE", "La fecha tentativa de finalización no puede ser anterior a la fecha actual")
	ErrInvalidStatus   = newError(KindValidation, "INVALID_STATUS", "Estado inválido")
	ErrInvalidUsername = newError(KindValidation, "INVALID_USERNAME", "El nombre de usuario debe tener entre 3 y 50 caracteres")
)

// Conflict errors.
var (
	ErrUsernameTaken = newError(KindConflict, "USERNAME_TAKEN", "El nombre de usuario ya está registrado")
	ErrCategoryInUse = newError(KindConflict, "CATEGORY_IN_USE", "La categoría tiene tareas asociadas")
)

// ErrInvalidCredentials covers both an unknown username and a wrong password.
var ErrInvalidCredentials = newError(KindUnauthorized, "INVALID_CREDENTIALS", "Credenciales incorrectas")

// Not found errors.
var (
	ErrUserNotFound     = newError(KindNotFound, "USER_NOT_FOUND", "Usuario no encontrado")
	ErrCategoryNotFound = newError(KindNotFound, "CATEGORY_NOT_FOUND", "Categoría no encontrada")
	ErrTaskNotFound     = newError(KindNotFound, "TASK_NOT_FOUND", "Tarea no encontrada")
)

// Ownership errors.
var (
	ErrForbiddenTaskOwner      = newError(KindForbidden, "FORBIDDEN", "No tienes permiso para crear una tarea para otro usuario")
	ErrForbiddenCategory       = newError(KindForbidden, "FORBIDDEN", "No tienes permiso para usar esta categoría")
	ErrForbiddenCategoryUpdate = newError(KindForbidden, "FORBIDDEN", "No tienes permiso para actualizar esta categoría")
	ErrForbiddenCategoryDelete = newError(KindForbidden, "FORBIDDEN", "No tienes permiso para eliminar esta categoría")
	ErrForbiddenTaskRead       = newError(KindForbidden, "FORBIDDEN", "No tienes permiso para ver esta tarea")
	ErrForbiddenTaskUpdate     = newError(KindForbidden, "FORBIDDEN", "No tienes permiso para actualizar esta tarea")
	ErrForbiddenTaskDelete     = newError(KindForbidden, "FORBIDDEN", "No tienes permiso para eliminar esta tarea")
	ErrForbiddenUserTasks      = newError(KindForbidden, "FORBIDDEN", "No tienes permiso para ver las tareas de este usuario")
)
