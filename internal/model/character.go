package model

import "time"

// Class is the job class identifier used by the client.
type Class uint16

const (
	ClassNovice   Class = 0
	ClassSummoner Class = 4218
)

// ValidStartingClass reports whether a class may be picked at character
// creation. Everything else is reached through in-game job changes.
func ValidStartingClass(c Class) bool {
	return c == ClassNovice || c == ClassSummoner
}

// Stats are the six base attributes.
type Stats struct {
	Str uint8
	Agi uint8
	Vit uint8
	Int uint8
	Dex uint8
	Luk uint8
}

// Experience tracks levels and progress toward the next ones.
type Experience struct {
	BaseLevel   uint16
	JobLevel    uint16
	BaseExp     uint32
	JobExp      uint32
	StatusPoint uint16
	SkillPoint  uint16
}

// Currency is everything spendable the character carries.
type Currency struct {
	Zeny uint32
}

// Status holds live combat state and the option bitfield the client renders
// from.
type Status struct {
	HP     uint32
	MaxHP  uint32
	SP     uint16
	MaxSP  uint16
	Option uint32
	Karma  uint32
	Manner uint32
}

// Appearance is the visual customization block.
type Appearance struct {
	Hair         uint16
	HairColor    uint16
	ClothesColor uint16
	Body         uint16
}

// Grouping links the character into party/guild structures.
type Grouping struct {
	PartyID uint32
	GuildID uint32
	PetID   uint32
	HomunID uint32
	ElemID  uint32
}

// Equipment mirrors the visible equip slots of the selection screen.
type Equipment struct {
	Weapon     uint16
	Shield     uint16
	HeadTop    uint16
	HeadMid    uint16
	HeadBottom uint16
	Robe       uint32
}

// MercenaryGuildRank tracks faith/calls per mercenary guild.
type MercenaryGuildRank struct {
	ArchersFaith    uint32
	ArchersCalls    uint32
	SpearmenFaith   uint32
	SpearmenCalls   uint32
	SwordsmenFaith  uint32
	SwordsmenCalls  uint32
}

// Point is a position on a named map.
type Point struct {
	MapID uint32
	X     uint16
	Y     uint16
}

// Location is the character's current position plus its save/memo anchors.
type Location struct {
	Current   Point
	SavePoint *Point
	MemoPoint *Point
}

// Skill is one learned skill.
type Skill struct {
	ID    uint16
	Level uint8
	Flag  uint8
}

// Settings are per-character toggles.
type Settings struct {
	// Rename counts completed renames; the selection screen offers the
	// rename button only while it is zero.
	Rename     uint16
	ShowEquip  bool
	AllowParty bool
	Font       uint8
}

// Relationship is the family/friend graph.
type Relationship struct {
	PartnerID uint32
	FatherID  uint32
	MotherID  uint32
	ChildID   uint32
	FriendIDs []uint32
}

// Character is one playable character. Records are owned by the character
// store; (AccountID, Slot) is unique among live characters.
type Character struct {
	ID        uint32
	AccountID uint32
	Slot      uint8
	Name      string
	Sex       Sex
	Class     Class

	Stats      Stats
	Experience Experience
	Currency   Currency
	Status     Status
	Appearance Appearance
	Grouping   Grouping
	Equipment  Equipment
	Mercenary  MercenaryGuildRank
	Location   Location

	Skills       []Skill
	Settings     Settings
	Relationship Relationship

	// DeleteDate is the scheduled deletion time, zero when none is pending.
	DeleteDate time.Time
}

// Starting vitals for a level-1 character: max_hp = 40·(100+vit)/100,
// max_sp = 11·(100+int)/100, with all base attributes at 1.
const (
	startingHP = 40 * (100 + 1) / 100
	startingSP = 11 * (100 + 1) / 100
)

// NewCharacter seeds a default level-1 character owned by the account.
// Name, slot, class, sex and appearance come from the creation request and
// are filled in by the caller.
func NewCharacter(id, accountID uint32) *Character {
	return &Character{
		ID:        id,
		AccountID: accountID,
		Stats:     Stats{Str: 1, Agi: 1, Vit: 1, Int: 1, Dex: 1, Luk: 1},
		Experience: Experience{
			BaseLevel: 1,
			JobLevel:  1,
		},
		Status: Status{
			HP:    startingHP,
			MaxHP: startingHP,
			SP:    startingSP,
			MaxSP: startingSP,
		},
	}
}

// RenameAvailable reports whether the client should offer the rename button.
func (c *Character) RenameAvailable() bool {
	return c.Settings.Rename == 0
}
