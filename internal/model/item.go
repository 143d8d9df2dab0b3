package model

// Slot is one of the ten fixed equipment slots. A player holds at most one
// item per slot.
type Slot string

const (
	SlotRing     Slot = "ring"
	SlotAmulet   Slot = "amulet"
	SlotCharm    Slot = "charm"
	SlotWeapon   Slot = "weapon"
	SlotHelm     Slot = "helm"
	SlotTunic    Slot = "tunic"
	SlotGloves   Slot = "pair of gloves"
	SlotShield   Slot = "shield"
	SlotLeggings Slot = "set of leggings"
	SlotBoots    Slot = "pair of boots"
)

// Slots lists every equipment slot in registration order
var Slots = []Slot{
	SlotRing, SlotAmulet, SlotCharm, SlotWeapon, SlotHelm,
	SlotTunic, SlotGloves, SlotShield, SlotLeggings, SlotBoots,
}

// ValidSlot reports whether s names one of the ten equipment slots
func ValidSlot(s Slot) bool {
	for _, slot := range Slots {
		if s == slot {
			return true
		}
	}
	return false
}

// Item is a piece of equipment owned by exactly one player
type Item struct {
	PlayerID PlayerID
	Slot     Slot
	Level    int
	Name     string // set only for unique items
	Unique   bool
}
