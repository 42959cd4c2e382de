// Package lead defines the accumulating record of what is known about the
// person chatting. The record is owned by the transport layer across turns;
// the dialogue engine receives the current value and returns an updated one.
package lead

import "strings"

// Data holds the captured lead fields. Field values keep the wire names used
// by the surrounding CRM (Brazilian Portuguese), matching the chat payloads
// downstream consumers already expect.
type Data struct {
	Nome      string   `json:"nome,omitempty"`
	Telefone  string   `json:"telefone,omitempty"`
	Email     string   `json:"email,omitempty"`
	Interesse []string `json:"interesse,omitempty"`
	Orcamento string   `json:"orcamento,omitempty"`
	Cidade    string   `json:"cidade,omitempty"`
	Prazo     string   `json:"prazo,omitempty"`
	Source    string   `json:"source,omitempty"`
}

// IsEmpty reports whether no field has been captured yet.
func (d Data) IsEmpty() bool {
	return d.Nome == "" && d.Telefone == "" && d.Email == "" &&
		len(d.Interesse) == 0 && d.Orcamento == "" && d.Cidade == "" &&
		d.Prazo == "" && d.Source == ""
}

// Merge returns base with the non-empty fields of update overwriting it.
// Fields absent from update are preserved. Interest lists are unioned with
// insertion order kept and duplicates dropped (case-insensitive).
func Merge(base, update Data) Data {
	out := base
	if update.Nome != "" {
		out.Nome = update.Nome
	}
	if update.Telefone != "" {
		out.Telefone = update.Telefone
	}
	if update.Email != "" {
		out.Email = update.Email
	}
	if update.Orcamento != "" {
		out.Orcamento = update.Orcamento
	}
	if update.Cidade != "" {
		out.Cidade = update.Cidade
	}
	if update.Prazo != "" {
		out.Prazo = update.Prazo
	}
	if update.Source != "" {
		out.Source = update.Source
	}
	out.Interesse = AppendInterest(base.Interesse, update.Interesse...)
	return out
}

// AppendInterest appends names to list, skipping case-insensitive duplicates
// and keeping insertion order.
func AppendInterest(list []string, names ...string) []string {
	out := list
	for _, name := range names {
		if name == "" {
			continue
		}
		seen := false
		for _, have := range out {
			if strings.EqualFold(have, name) {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out[:len(out):len(out)], name)
		}
	}
	return out
}
