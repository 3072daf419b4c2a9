package interactions

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize mapea texto libre a un identificador genérico. Es pura e idempotente:
// los nombres que no reconoce vuelven limpios (minúscula, sin espacios en los bordes).
func Normalize(raw string) string {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	if cleaned == "" {
		return ""
	}

	if id, ok := resolve(cleaned); ok {
		return id
	}
	if fixed, ok := collapseTrailingRepeat(cleaned); ok {
		if id, ok := resolve(fixed); ok {
			return id
		}
	}

	// "paracétamol" -> "paracetamol". El plegado solo se usa para buscar.
	if folded := foldDiacritics(cleaned); folded != cleaned {
		if id, ok := resolve(folded); ok {
			return id
		}
		if fixed, ok := collapseTrailingRepeat(folded); ok {
			if id, ok := resolve(fixed); ok {
				return id
			}
		}
	}

	return cleaned
}

// resolve busca primero en genéricos y después en marcas.
func resolve(name string) (string, bool) {
	if _, ok := canonical[name]; ok {
		return name, true
	}
	if id, ok := brandIndex[name]; ok {
		return id, true
	}
	return "", false
}

// collapseTrailingRepeat quita una letra del final si las dos últimas son iguales
// ("ibuprofenn" -> "ibuprofen"). El llamador decide si el resultado sirve.
func collapseTrailingRepeat(s string) (string, bool) {
	last, size := utf8.DecodeLastRuneInString(s)
	if size == 0 || !unicode.IsLetter(last) {
		return "", false
	}
	rest := s[:len(s)-size]
	prev, _ := utf8.DecodeLastRuneInString(rest)
	if prev != last {
		return "", false
	}
	return rest, true
}

func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
