// Package validation contém validações de formato usadas pelos handlers.
package validation

import "strings"

// IsValidPlaca verifica se a placa segue o padrão brasileiro antigo (ABC1234)
// ou o padrão Mercosul (ABC1D23). Hífen e letras minúsculas são aceitos.
func IsValidPlaca(placa string) bool {
	p := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(placa), "-", ""))
	if len(p) != 7 {
		return false
	}

	for i, r := range p {
		switch i {
		case 0, 1, 2:
			if !isLetter(r) {
				return false
			}
		case 3, 5, 6:
			if !isDigit(r) {
				return false
			}
		case 4:
			// Quarta posição distingue os dois padrões.
			if !isDigit(r) && !isLetter(r) {
				return false
			}
		}
	}

	return true
}

func isLetter(r rune) bool { return r >= 'A' && r <= 'Z' }

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
