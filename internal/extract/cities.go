package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/lead-dialogue-engine/internal/textnorm"
)

// cityTable maps normalized city name and abbreviation variants to the
// canonical "City, UF" form stored on the lead.
var cityTable = map[string]string{
	"sao paulo":      "São Paulo, SP",
	"sp":             "São Paulo, SP",
	"sampa":          "São Paulo, SP",
	"capital":        "São Paulo, SP",
	"rio de janeiro": "Rio de Janeiro, RJ",
	"rio":            "Rio de Janeiro, RJ",
	"rj":             "Rio de Janeiro, RJ",
	"belo horizonte": "Belo Horizonte, MG",
	"bh":             "Belo Horizonte, MG",
	"curitiba":       "Curitiba, PR",
	"porto alegre":   "Porto Alegre, RS",
	"poa":            "Porto Alegre, RS",
	"brasilia":       "Brasília, DF",
	"bsb":            "Brasília, DF",
	"salvador":       "Salvador, BA",
	"fortaleza":      "Fortaleza, CE",
	"recife":         "Recife, PE",
	"campinas":       "Campinas, SP",
	"guarulhos":      "Guarulhos, SP",
	"osasco":         "Osasco, SP",
	"santos":         "Santos, SP",
	"goiania":        "Goiânia, GO",
	"manaus":         "Manaus, AM",
	"florianopolis":  "Florianópolis, SC",
	"floripa":        "Florianópolis, SC",
	"vitoria":        "Vitória, ES",
	"natal":          "Natal, RN",
	"belem":          "Belém, PA",
}

type cityVariant struct {
	variant   string
	canonical string
}

// variantOrder holds the table entries ordered longest variant first so that
// scanning a message is deterministic and "porto alegre" wins over a bare
// "rio" when both would match. Built once; extraction runs on many goroutines.
var variantOrder = buildCityVariants()

func buildCityVariants() []cityVariant {
	out := make([]cityVariant, 0, len(cityTable))
	for v, c := range cityTable {
		out = append(out, cityVariant{v, c})
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].variant) != len(out[j].variant) {
			return len(out[i].variant) > len(out[j].variant)
		}
		return out[i].variant < out[j].variant
	})
	return out
}

var (
	cityContextPattern = regexp.MustCompile(`(?i)(?:moro em|sou de|estou em|aqui de|aqui em|cidade de)\s+([\p{L}][\p{L}\s'\-]{1,40})`)
	// cityUFPattern catches the generic "Capitalized Word(s), UF" form for
	// cities outside the lookup table, e.g. "Sorocaba, SP" or "Maringá - PR".
	cityUFPattern = regexp.MustCompile(`\b([\p{Lu}][\p{Ll}']+(?:\s+[\p{L}'][\p{L}']*)*)\s*[,\-/]\s*([A-Z]{2})\b`)
)

// extractCity resolves a city mention to its canonical "City, UF" form. Known
// variants come from the lookup table; anything else falls back to the
// generic "City, UF" pattern.
func extractCity(message string) string {
	if m := cityContextPattern.FindStringSubmatch(message); len(m) >= 2 {
		if city := lookupCity(m[1]); city != "" {
			return city
		}
	}

	norm := textnorm.Normalize(message)
	for _, v := range variantOrder {
		if len(v.variant) <= 3 {
			continue
		}
		if strings.Contains(norm, v.variant) {
			return v.canonical
		}
	}

	// Generic "City, UF" text beats bare state abbreviations: in
	// "Sorocaba, SP" the city is Sorocaba, not the São Paulo capital.
	if m := cityUFPattern.FindStringSubmatch(message); len(m) >= 3 {
		return strings.TrimSpace(m[1]) + ", " + m[2]
	}

	// Abbreviations only match as standalone words so that "bh" inside
	// another word never triggers.
	for _, v := range variantOrder {
		if len(v.variant) <= 3 && textnorm.ContainsWord(norm, v.variant) {
			return v.canonical
		}
	}
	return ""
}

// lookupCity resolves a free-form capture ("moro em Campinas") against the
// table, trimming trailing words until a known variant is found.
func lookupCity(raw string) string {
	words := strings.Fields(textnorm.Normalize(raw))
	for end := len(words); end > 0; end-- {
		if city, ok := cityTable[strings.Join(words[:end], " ")]; ok {
			return city
		}
	}
	return ""
}
