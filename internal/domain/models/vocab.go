// internal/domain/models/vocab.go
package models

// Fixed vocabularies. Values are stored exactly as the ministry writes them,
// so documents created by earlier clients keep decoding.

// Module is one of the two application areas a user may operate in.
type Module string

const (
	ModuleLiturgy   Module = "Música Litúrgica"
	ModuleEducation Module = "Formação Musical"
)

// AllModules lists modules in display order. The first entry is the
// default for newly created users.
var AllModules = []Module{ModuleLiturgy, ModuleEducation}

// Status is the lifecycle marker shared by users and members.
type Status string

const (
	StatusActive          Status = "Ativo"
	StatusPendingDeletion Status = "Aguardando Exclusão"
)

// Role is a member's function inside the ministry.
type Role string

const (
	RoleCoordinator Role = "Coordenador"
	RoleMember      Role = "Membro"
)

var AllRoles = []Role{RoleCoordinator, RoleMember}

type PastoralWork string

const (
	PastoralMass       PastoralWork = "Santa Missa"
	PastoralCatechesis PastoralWork = "Catequese"
	PastoralWorship    PastoralWork = "Louvor e Adoração"
	PastoralYouth      PastoralWork = "Juventude"
	PastoralECC        PastoralWork = "ECC"
	PastoralBaptism    PastoralWork = "Batismo"
)

var AllPastoralWorks = []PastoralWork{
	PastoralMass, PastoralCatechesis, PastoralWorship,
	PastoralYouth, PastoralECC, PastoralBaptism,
}

type Instrument string

const (
	InstrumentDrums    Instrument = "Bateria"
	InstrumentCajon    Instrument = "Cajon"
	InstrumentBass     Instrument = "Contra-baixo"
	InstrumentGuitar   Instrument = "Guitarra"
	InstrumentKeyboard Instrument = "Teclado/Piano"
	InstrumentAcoustic Instrument = "Violão"
	InstrumentVoice    Instrument = "Voz"
	InstrumentOther    Instrument = "Outro"
)

var AllInstruments = []Instrument{
	InstrumentDrums, InstrumentCajon, InstrumentBass, InstrumentGuitar,
	InstrumentKeyboard, InstrumentAcoustic, InstrumentVoice, InstrumentOther,
}

type MaritalStatus string

const (
	MaritalSingle   MaritalStatus = "Solteiro(a)"
	MaritalMarried  MaritalStatus = "Casado(a)"
	MaritalDivorced MaritalStatus = "Divorciado(a)"
	MaritalWidowed  MaritalStatus = "Viúvo(a)"
)

var AllMaritalStatuses = []MaritalStatus{MaritalSingle, MaritalMarried, MaritalDivorced, MaritalWidowed}

func (m Module) Valid() bool { return contains(AllModules, m) }
func (r Role) Valid() bool { return contains(AllRoles, r) }
func (p PastoralWork) Valid() bool { return contains(AllPastoralWorks, p) }
func (i Instrument) Valid() bool { return contains(AllInstruments, i) }
func (ms MaritalStatus) Valid() bool { return contains(AllMaritalStatuses, ms) }
func (s Status) Valid() bool { return s == StatusActive || s == StatusPendingDeletion }
func (s Status) PendingDeletion() bool { return s == StatusPendingDeletion }

func contains[T comparable](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
