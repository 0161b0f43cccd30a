package api

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// Error es el resultado tipado de una llamada fallida al backend.
// Status es 0 cuando no hubo respuesta (timeout, DNS, conexión rechazada).
// Message trae el detalle legible del backend si existía en el cuerpo.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status == 0 {
		if e.Message != "" {
			return fmt.Sprintf("api: network error: %s", e.Message)
		}
		return "api: network error"
	}
	if e.Message != "" {
		return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: status %d", e.Status)
}

// Transient indica que no llegó respuesta del backend.
func (e *Error) Transient() bool { return e.Status == 0 }

// Reason devuelve el detalle del backend si existe, o el fallback de la operación.
// Los errores de transporte siempre usan el fallback: su mensaje crudo va solo a logs.
func Reason(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Status > 0 && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// detailFromBody sondea el cuerpo de error una sola vez en la frontera de transporte,
// en lugar de que cada pantalla adivine la forma del JSON.
func detailFromBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	for _, key := range []string{"detail", "message", "error"} {
		if v := gjson.GetBytes(body, key); v.Exists() && v.Type == gjson.String {
			return v.String()
		}
	}
	return ""
}
