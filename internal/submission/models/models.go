// Package models holds the submission domain types shared across the
// validation pipeline.
package models

import "fmt"

// Difficulty identifies a leaderboard bracket. Each bracket keeps its own
// board; a ban wipes the account from all of them.
type Difficulty string

const (
	DifficultyApprentice Difficulty = "apprentice"
	DifficultyWarmage    Difficulty = "warmage"
	DifficultyNightmare  Difficulty = "nightmare"
)

// Difficulties lists every bracket, in display order.
var Difficulties = []Difficulty{
	DifficultyApprentice,
	DifficultyWarmage,
	DifficultyNightmare,
}

// ParseDifficulty converts the wire value into a Difficulty.
func ParseDifficulty(raw string) (Difficulty, error) {
	switch d := Difficulty(raw); d {
	case DifficultyApprentice, DifficultyWarmage, DifficultyNightmare:
		return d, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q", raw)
	}
}

// WeaponTag identifies a weapon slot family in run stats and in the packed
// metadata layout. Slot order is frozen; reorder and every historical
// leaderboard blob becomes unreadable.
type WeaponTag string

const (
	WeaponCrossbow    WeaponTag = "crossbow"
	WeaponBladestaff  WeaponTag = "bladestaff"
	WeaponWarhammer   WeaponTag = "warhammer"
	WeaponDwarfCannon WeaponTag = "dwarf_cannon"
	WeaponFlameBrace  WeaponTag = "flame_bracers"
	WeaponIceAmulet   WeaponTag = "ice_amulet"
	WeaponWindBelt    WeaponTag = "wind_belt"
	WeaponReserved    WeaponTag = "reserved"
)

// WeaponTags lists the weapon slots in packing order.
var WeaponTags = []WeaponTag{
	WeaponCrossbow,
	WeaponBladestaff,
	WeaponWarhammer,
	WeaponDwarfCannon,
	WeaponFlameBrace,
	WeaponIceAmulet,
	WeaponWindBelt,
	WeaponReserved,
}

// AbilityTag identifies an ability slot family.
type AbilityTag string

const (
	AbilityCombustion AbilityTag = "combustion"
	AbilityOverload   AbilityTag = "overload"
	AbilityFrostNova  AbilityTag = "frost_nova"
	AbilityDecoy      AbilityTag = "decoy"
	AbilityReservedA  AbilityTag = "reserved_a"
	AbilityReservedB  AbilityTag = "reserved_b"
)

// AbilityTags lists the ability slots in packing order.
var AbilityTags = []AbilityTag{
	AbilityCombustion,
	AbilityOverload,
	AbilityFrostNova,
	AbilityDecoy,
	AbilityReservedA,
	AbilityReservedB,
}

// WeaponStats is one weapon's contribution to a run.
type WeaponStats struct {
	Kills      int32
	Damage     int32
	AcquiredMs int32 // time of pickup relative to run start; 0 = never held
}

// AbilityStats is one ability's contribution to a run.
type AbilityStats struct {
	Uses    int32
	Utility int32 // ability-specific effect total (damage, slow ticks, ...)
	Kills   int32 // enemies killed by the ability itself
}

// Submission is a fully parsed score submission entering the pipeline.
type Submission struct {
	AccountID  string
	Ticket     string
	Token      string
	Difficulty Difficulty
	ScoreMs    int32 // final run time, the leaderboard value

	RoundTimesMs []int32 // elapsed time of each round; their sum is the final score
	RoundKills   []int32

	Weapons   map[WeaponTag]WeaponStats
	Abilities map[AbilityTag]AbilityStats

	TotalKills       int32
	TotalDamage      int32
	TotalAbilityUses int32
}
