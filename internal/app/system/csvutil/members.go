// internal/app/system/csvutil/members.go
package csvutil

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/dalemusser/pastoralhub/internal/domain/models"
)

// MemberHeader is the header row of the member export.
var MemberHeader = []string{
	"Nome", "Email", "Telefone", "Função", "Estado civil", "ECC",
	"Pastorais", "Instrumentos", "Outro instrumento", "Comunidade", "Servindo",
}

// WriteMembers writes members as CSV with a header row. communityName maps a
// community id to its display name; unknown ids are written as-is.
func WriteMembers(w io.Writer, members []models.Member, communityName func(id string) string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(MemberHeader); err != nil {
		return err
	}
	for _, m := range members {
		community := m.CommunityID
		if communityName != nil {
			if n := communityName(m.CommunityID); n != "" {
				community = n
			}
		}
		rec := []string{
			m.Name,
			m.Email,
			m.Phone,
			string(m.EffectiveRole()),
			string(m.MaritalStatus),
			yesNo(m.ParticipatedECC),
			join(m.PastoralWorks),
			join(m.Instruments),
			m.OtherInstrument,
			community,
			yesNo(m.Serving()),
		}
		for i := range rec {
			rec[i] = SafeCell(rec[i])
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SafeCell neutralises values a spreadsheet would evaluate as a formula.
// Signed numbers such as "+55 (11) 99999-8888" are left alone.
func SafeCell(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '@', '\t', '\r':
		return "'" + s
	case '+', '-':
		if len(s) > 1 && s[1] >= '0' && s[1] <= '9' {
			return s
		}
		return "'" + s
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "Sim"
	}
	return "Não"
}

func join[T ~string](vals []T) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = string(v)
	}
	return strings.Join(parts, "; ")
}
