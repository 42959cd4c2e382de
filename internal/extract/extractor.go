// Package extract pulls lead fields out of free-text chat messages using
// independent, order-insensitive regex extractors. Every extractor either
// produces a value or leaves the field empty; extraction never fails and the
// same input always yields the same output.
package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lead-dialogue-engine/internal/lead"
	"github.com/lead-dialogue-engine/internal/textnorm"
)

const nameWord = `[\p{L}][\p{L}'\-]*`

var namePhrase = nameWord + `(?:\s+` + nameWord + `){0,3}`

var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)meu nome [eé]\s+(` + namePhrase + `)`),
	regexp.MustCompile(`(?i)me chamo\s+(` + namePhrase + `)`),
	regexp.MustCompile(`(?i)\bsou [oa]\s+(` + namePhrase + `)`),
	regexp.MustCompile(`(?i)aqui [eé] [oa]?\s*(` + namePhrase + `)`),
	regexp.MustCompile(`(?i)pode me chamar de\s+(` + namePhrase + `)`),
}

// bareNamePattern matches a message that is nothing but a capitalized word or
// short phrase, the common reply after the assistant asks for a name.
var bareNamePattern = regexp.MustCompile(`^\s*([\p{Lu}][\p{Ll}'\-]+(?:\s+[\p{L}][\p{L}'\-]*){0,3})\s*[.!]?\s*$`)

// nameStoplist keeps greetings and fillers from being mistaken for a name
// when the whole message is a single capitalized word.
var nameStoplist = map[string]bool{
	"oi": true, "ola": true, "opa": true, "eai": true, "hey": true,
	"bom": true, "boa": true, "dia": true, "tarde": true, "noite": true,
	"obrigado": true, "obrigada": true, "valeu": true, "tchau": true,
	"sim": true, "nao": true, "ok": true, "okay": true, "beleza": true,
	"legal": true, "otimo": true, "perfeito": true, "certo": true,
	"quero": true, "preciso": true, "gostaria": true, "tenho": true,
	"quanto": true, "qual": true, "quais": true, "como": true, "onde": true,
	"ajuda": true, "urgente": true, "orcamento": true, "portao": true,
	"portoes": true, "produto": true, "produtos": true, "preco": true,
}

// lowercaseConnectors stay lowercase when a captured name is recapitalized.
var lowercaseConnectors = map[string]bool{
	"de": true, "da": true, "do": true, "das": true, "dos": true, "e": true,
}

var (
	phonePattern = regexp.MustCompile(`\(?\d{2}\)?[\s.\-]?\d{4,5}[\s.\-]?\d{4}`)
	digitsOnly   = regexp.MustCompile(`\D`)

	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

	budgetPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)r\$\s*[\d.,]+\s*(?:mil|reais)?`),
		regexp.MustCompile(`(?i)\b\d{1,3}\s*mil\b(?:\s*reais)?`),
		regexp.MustCompile(`(?i)(?:tenho|disponho de|at[eé])\s+(?:uns\s+)?r?\$?\s*[\d.,]+\s*(?:mil|reais)\b`),
		regexp.MustCompile(`(?i)or[cç]amento\s+de\s+r?\$?\s*[\d.,]+`),
	}

	timelinePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:janeiro|fevereiro|mar[cç]o|abril|maio|junho|julho|agosto|setembro|outubro|novembro|dezembro)\b`),
		regexp.MustCompile(`(?i)\b(?:em|daqui|dentro de)\s+\d+\s+(?:dias?|semanas?|m[eê]s(?:es)?)\b`),
		regexp.MustCompile(`(?i)\b(?:urgente|urg[eê]ncia|o quanto antes|imediato|pra ontem|essa semana|esta semana|esse m[eê]s|este m[eê]s|pr[oó]xima semana|pr[oó]ximo m[eê]s)\b`),
		regexp.MustCompile(`(?i)\b(?:final|fim|come[cç]o|in[ií]cio)\s+d[eo]\s+ano\b`),
	}
)

// Extract runs every field extractor against message and returns a partial
// lead record holding only what this message yielded. It never fails; fields
// that did not match are left zero.
func Extract(message string) lead.Data {
	var d lead.Data
	d.Nome = extractName(message)
	d.Telefone = extractPhone(message)
	d.Email = extractEmail(message)
	d.Orcamento = extractBudget(message)
	d.Cidade = extractCity(message)
	d.Prazo = extractTimeline(message)
	return d
}

// Validate applies minimal sanity checks to captured fields. It is advisory:
// callers decide whether to reject low-confidence captures.
func Validate(d lead.Data) bool {
	if d.Nome != "" && utf8.RuneCountInString(d.Nome) < 2 {
		return false
	}
	if d.Telefone != "" {
		digits := digitsOnly.ReplaceAllString(d.Telefone, "")
		if len(digits) < 10 || len(digits) > 11 {
			return false
		}
	}
	if d.Email != "" && !emailPattern.MatchString(d.Email) {
		return false
	}
	return true
}

func extractName(message string) string {
	for _, p := range namePatterns {
		if m := p.FindStringSubmatch(message); len(m) >= 2 {
			if name := capitalizeName(m[1]); name != "" {
				return name
			}
		}
	}

	// A bare capitalized word or phrase counts as a name only when the
	// message contains nothing else and the first word is not a greeting.
	if m := bareNamePattern.FindStringSubmatch(message); len(m) >= 2 {
		first := textnorm.Normalize(strings.Fields(m[1])[0])
		if !nameStoplist[first] {
			return capitalizeName(m[1])
		}
	}
	return ""
}

// capitalizeName uppercases the first letter of each word, keeping the fixed
// set of Portuguese connectors lowercase ("João da Silva", not "João Da Silva").
func capitalizeName(raw string) string {
	words := strings.Fields(strings.TrimSpace(raw))
	out := make([]string, 0, len(words))
	for i, w := range words {
		lw := strings.ToLower(w)
		if i > 0 && lowercaseConnectors[lw] {
			out = append(out, lw)
			continue
		}
		r, size := utf8.DecodeRuneInString(lw)
		if size == 0 || !unicode.IsLetter(r) {
			continue
		}
		out = append(out, string(unicode.ToUpper(r))+lw[size:])
	}
	return strings.Join(out, " ")
}

// extractPhone finds a 10 or 11 digit Brazilian phone number and canonicalizes
// it to "(DD) DDDDD-DDDD" or "(DD) DDDD-DDDD". A match whose digit count is
// out of range is returned as matched, unmodified.
func extractPhone(message string) string {
	m := phonePattern.FindString(message)
	if m == "" {
		return ""
	}
	digits := digitsOnly.ReplaceAllString(m, "")
	switch len(digits) {
	case 11:
		return "(" + digits[:2] + ") " + digits[2:7] + "-" + digits[7:]
	case 10:
		return "(" + digits[:2] + ") " + digits[2:6] + "-" + digits[6:]
	default:
		return strings.TrimSpace(m)
	}
}

func extractEmail(message string) string {
	return strings.ToLower(emailPattern.FindString(message))
}

// extractBudget returns the raw matched budget phrase. Canonicalizing amounts
// is left to the CRM layer, which already parses display strings.
func extractBudget(message string) string {
	for _, p := range budgetPatterns {
		if m := p.FindString(message); m != "" {
			return strings.TrimSpace(m)
		}
	}
	return ""
}

func extractTimeline(message string) string {
	for _, p := range timelinePatterns {
		if m := p.FindString(message); m != "" {
			return strings.TrimSpace(m)
		}
	}
	return ""
}
