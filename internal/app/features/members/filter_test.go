package members_test

import (
	"net/url"
	"testing"

	"github.com/dalemusser/pastoralhub/internal/app/features/members"
	"github.com/dalemusser/pastoralhub/internal/domain/models"
	"github.com/stretchr/testify/assert"
)

func ids(list []models.Member) []string {
	out := make([]string, 0, len(list))
	for _, m := range list {
		out = append(out, m.ID)
	}
	return out
}

func sampleMembers() []models.Member {
	voz := []models.Instrument{models.InstrumentVoice}
	return []models.Member{
		{ID: "a", Name: "Ana", CommunityID: "x", Instruments: voz, Status: models.StatusActive},
		{ID: "b", Name: "Bruno", CommunityID: "x", Instruments: voz, Status: models.StatusActive, IsActive: models.Bool(false)},
		{ID: "c", Name: "Carla", CommunityID: "x", Instruments: voz, Status: models.StatusPendingDeletion},
		{ID: "d", Name: "Davi", CommunityID: "y", Instruments: voz, Status: models.StatusActive},
		{ID: "e", Name: "Eva", CommunityID: "x", Instruments: []models.Instrument{models.InstrumentAcoustic}, Status: models.StatusActive},
		{ID: "f", Name: "Fábio", CommunityID: "x", Instruments: []models.Instrument{models.InstrumentVoice, models.InstrumentDrums}, Status: models.StatusActive, IsActive: models.Bool(true)},
	}
}

func TestFilter_InstrumentCommunityActive(t *testing.T) {
	f := members.ParseFilter(url.Values{
		"instrument": {"Voz"},
		"community":  {"x"},
		"active":     {"yes"},
	})

	got := f.Apply(sampleMembers(), func(string) string { return "" })

	assert.Equal(t, []string{"a", "f"}, ids(got))
}

func TestFilter_DefaultsToServingAndActiveStatus(t *testing.T) {
	f := members.ParseFilter(url.Values{})

	assert.Equal(t, "yes", f.Active)
	got := f.Apply(sampleMembers(), func(string) string { return "" })
	assert.Equal(t, []string{"a", "d", "e", "f"}, ids(got))
}

func TestFilter_ActiveNoAndAll(t *testing.T) {
	no := members.ParseFilter(url.Values{"active": {"no"}}).Apply(sampleMembers(), func(string) string { return "" })
	assert.Equal(t, []string{"b"}, ids(no))

	// Pending deletion stays hidden even with active=all.
	all := members.ParseFilter(url.Values{"active": {"all"}}).Apply(sampleMembers(), func(string) string { return "" })
	assert.Equal(t, []string{"a", "b", "d", "e", "f"}, ids(all))
}

func TestFilter_UnknownValuesFallBack(t *testing.T) {
	f := members.ParseFilter(url.Values{"active": {"maybe"}, "ecc": {"perhaps"}})

	assert.Equal(t, "yes", f.Active)
	assert.Equal(t, "", f.ECC)
}

func TestFilter_RoleUsesEffectiveRole(t *testing.T) {
	list := []models.Member{
		{ID: "1", Name: "Sem papel", Status: models.StatusActive},
		{ID: "2", Name: "Coord", Role: models.RoleCoordinator, Status: models.StatusActive},
	}

	got := members.ParseFilter(url.Values{"role": {"Membro"}}).Apply(list, func(string) string { return "" })
	assert.Equal(t, []string{"1"}, ids(got))

	got = members.ParseFilter(url.Values{"role": {"Coordenador"}}).Apply(list, func(string) string { return "" })
	assert.Equal(t, []string{"2"}, ids(got))
}

func TestFilter_ECCAndMarital(t *testing.T) {
	list := []models.Member{
		{ID: "1", Name: "A", MaritalStatus: models.MaritalMarried, ParticipatedECC: true, Status: models.StatusActive},
		{ID: "2", Name: "B", MaritalStatus: models.MaritalMarried, Status: models.StatusActive},
		{ID: "3", Name: "C", MaritalStatus: models.MaritalSingle, Status: models.StatusActive},
	}
	none := func(string) string { return "" }

	assert.Equal(t, []string{"1"}, ids(members.ParseFilter(url.Values{"ecc": {"yes"}}).Apply(list, none)))
	assert.Equal(t, []string{"2", "3"}, ids(members.ParseFilter(url.Values{"ecc": {"no"}}).Apply(list, none)))
	assert.Equal(t, []string{"1", "2"}, ids(members.ParseFilter(url.Values{"marital_status": {"Casado(a)"}}).Apply(list, none)))
}

func TestFilter_QueryFoldsDiacritics(t *testing.T) {
	got := members.ParseFilter(url.Values{"q": {"FABIO"}}).Apply(sampleMembers(), func(string) string { return "" })

	assert.Equal(t, []string{"f"}, ids(got))
}

func TestFilter_PastoralWork(t *testing.T) {
	list := []models.Member{
		{ID: "1", Name: "A", PastoralWorks: []models.PastoralWork{models.PastoralMass}, Status: models.StatusActive},
		{ID: "2", Name: "B", PastoralWorks: []models.PastoralWork{models.PastoralYouth}, Status: models.StatusActive},
	}

	got := members.ParseFilter(url.Values{"pastoral_work": {"Juventude"}}).Apply(list, func(string) string { return "" })

	assert.Equal(t, []string{"2"}, ids(got))
}

func TestFilter_Sorts(t *testing.T) {
	names := map[string]string{"x": "Zona", "y": "Alto"}
	resolve := func(id string) string { return names[id] }

	desc := members.ParseFilter(url.Values{"sort": {"-name"}}).Apply(sampleMembers(), resolve)
	assert.Equal(t, []string{"f", "e", "d", "a"}, ids(desc))

	byCommunity := members.ParseFilter(url.Values{"sort": {"community"}}).Apply(sampleMembers(), resolve)
	assert.Equal(t, []string{"d", "a", "e", "f"}, ids(byCommunity))
}
