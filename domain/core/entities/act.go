package entities

import (
	"encoding/json"
	"strings"

	pkgerrors "titlechain/pkg/errors"
)

// Act is a notarial record of a property transaction as supplied by the
// external record store. The canvas only reads it; field names follow the
// record store and double as the drag-and-drop payload format.
type Act struct {
	ID                     string   `json:"id" dynamodbav:"ActID"`
	NumeroActe             string   `json:"numero_acte" dynamodbav:"NumeroActe"`
	NumerosActesAnterieurs []string `json:"numeros_actes_anterieurs" dynamodbav:"NumerosActesAnterieurs"`
	TypeActe               string   `json:"type_acte,omitempty" dynamodbav:"TypeActe,omitempty"`
	DateBPD                string   `json:"date_bpd,omitempty" dynamodbav:"DateBPD,omitempty"`
	Notaire                string   `json:"notaire,omitempty" dynamodbav:"Notaire,omitempty"`
	Acheteurs              []string `json:"acheteurs" dynamodbav:"Acheteurs"`
	Vendeurs               []string `json:"vendeurs" dynamodbav:"Vendeurs"`
}

// Validate checks that the act can be placed on a canvas
func (a Act) Validate() error {
	if a.Number() == "" {
		return pkgerrors.NewValidationError("numero_acte cannot be empty")
	}
	return nil
}

// Clone returns a deep copy so canvas state never aliases repository data
func (a Act) Clone() Act {
	c := a
	c.NumerosActesAnterieurs = cloneStrings(a.NumerosActesAnterieurs)
	c.Acheteurs = cloneStrings(a.Acheteurs)
	c.Vendeurs = cloneStrings(a.Vendeurs)
	return c
}

// NormalizeNumber is the canonical form of an act number. Every lookup keyed
// on numero_acte goes through it, so "50 " and "50" name the same act.
func NormalizeNumber(numero string) string {
	return strings.TrimSpace(numero)
}

// Number returns the normalized numero_acte
func (a Act) Number() string {
	return NormalizeNumber(a.NumeroActe)
}

// Antecedent is one entry of numeros_actes_anterieurs
type Antecedent struct {
	// Index is the position in the recorded list, blanks included. It
	// drives the stacking offset.
	Index  int
	Number string
}

// Antecedents returns the referenced prior act numbers in recorded order.
// Blank entries are skipped but still occupy their index.
func (a Act) Antecedents() []Antecedent {
	out := make([]Antecedent, 0, len(a.NumerosActesAnterieurs))
	for i, n := range a.NumerosActesAnterieurs {
		if n = NormalizeNumber(n); n != "" {
			out = append(out, Antecedent{Index: i, Number: n})
		}
	}
	return out
}

// Matches reports whether the act contains the query in any searchable field
func (a Act) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	fields := []string{a.NumeroActe, a.TypeActe, a.DateBPD, a.Notaire}
	fields = append(fields, a.Acheteurs...)
	fields = append(fields, a.Vendeurs...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// DecodeActPayload parses a drag payload. ok is false when the payload is
// not a JSON act with a numero_acte; such drops are ignored by callers.
func DecodeActPayload(payload []byte) (act Act, ok bool) {
	if len(payload) == 0 {
		return Act{}, false
	}
	if err := json.Unmarshal(payload, &act); err != nil {
		return Act{}, false
	}
	if act.Validate() != nil {
		return Act{}, false
	}
	return act, true
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
