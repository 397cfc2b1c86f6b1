// Package teams normaliza nomes de times para comparação entre fontes
// (provedor de odds, seleção da aposta, feed de placares).
package teams

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var removeAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize baixa a caixa, remove acentos e colapsa espaços.
// "São Paulo" e "sao  paulo" normalizam para o mesmo valor.
func Normalize(name string) string {
	name = strings.ToLower(name)
	name, _, _ = transform.String(removeAccents, name)
	return strings.Join(strings.Fields(name), " ")
}

// Equal compara dois nomes já normalizando ambos.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
