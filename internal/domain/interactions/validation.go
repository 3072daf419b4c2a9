package interactions

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ValidationError es el único error que Analyze deja salir.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ParseMedicationList valida el valor JSON crudo de medication_list: debe ser un array
// de strings. Se hace antes de normalizar para fallar rápido.
func ParseMedicationList(raw json.RawMessage) ([]string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, &ValidationError{Field: "medication_list", Reason: "is required"}
	}
	if trimmed[0] != '[' {
		return nil, &ValidationError{Field: "medication_list", Reason: "must be a list of strings"}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, &ValidationError{Field: "medication_list", Reason: "must be a list of strings"}
	}

	out := make([]string, 0, len(items))
	for i, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err != nil || bytes.Equal(bytes.TrimSpace(item), []byte("null")) {
			return nil, &ValidationError{
				Field:  fmt.Sprintf("medication_list[%d]", i),
				Reason: "must be a string",
			}
		}
		out = append(out, s)
	}
	return out, nil
}
