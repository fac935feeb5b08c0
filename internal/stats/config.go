// Package stats is the deterministic plausibility rule engine. It judges a
// submission's numbers against static gameplay ground truth: per-round spawn
// profiles plus configured ceilings and floors. It is pure computation; no
// I/O, no clock.
package stats

// RoundProfile is the ground truth for one round: how many enemies spawn,
// how many resolve themselves without a kill credit, and when the last spawn
// trigger fires.
type RoundProfile struct {
	ExpectedEnemies int32 `koanf:"expected_enemies"`
	SelfResolving   int32 `koanf:"self_resolving"`
	LastSpawnSec    int32 `koanf:"last_spawn_sec"`
}

// Bounds holds every tunable the validator consults. All of it is
// configuration rather than code: gameplay balance patches move the ceilings,
// not the algorithm.
type Bounds struct {
	Rounds          int   `koanf:"rounds"`
	WeaponSlots     int   `koanf:"weapon_slots"`
	AbilitySlots    int   `koanf:"ability_slots"`
	SpawnDurationMs int32 `koanf:"spawn_duration_ms"`
	ToleranceMs     int32 `koanf:"tolerance_ms"`

	MaxWeaponKills   int32 `koanf:"max_weapon_kills"`
	MaxWeaponDamage  int32 `koanf:"max_weapon_damage"`
	MinTotalDamage   int32 `koanf:"min_total_damage"`
	MaxTotalDamage   int32 `koanf:"max_total_damage"`
	MaxAbilityUses   int32 `koanf:"max_ability_uses"`
	MaxUtility       int32 `koanf:"max_utility"`
	MaxTotalAbility  int32 `koanf:"max_total_ability"`
	MaxCombinedKills int32 `koanf:"max_combined_kills"`

	Profiles []RoundProfile `koanf:"profiles"`
}

// DefaultBounds returns the production tuning for the standard 10-round
// survival mode.
func DefaultBounds() Bounds {
	profiles := make([]RoundProfile, 10)
	for i := range profiles {
		profiles[i] = RoundProfile{
			ExpectedEnemies: int32(18 + 2*i),
			SelfResolving:   2,
			LastSpawnSec:    int32(15 + i),
		}
	}
	return Bounds{
		Rounds:          10,
		WeaponSlots:     8,
		AbilitySlots:    6,
		SpawnDurationMs: 2300,
		ToleranceMs:     500,

		MaxWeaponKills:   300,
		MaxWeaponDamage:  1_000_000,
		MinTotalDamage:   10_000,
		MaxTotalDamage:   5_000_000,
		MaxAbilityUses:   500,
		MaxUtility:       1_000_000,
		MaxTotalAbility:  500,
		MaxCombinedKills: 300,

		Profiles: profiles,
	}
}

// MinRoundTimeMs returns the earliest legitimate finish time for round i: the
// round cannot end before its last enemy has finished spawning.
func (b Bounds) MinRoundTimeMs(i int) int32 {
	return b.Profiles[i].LastSpawnSec*1000 + b.SpawnDurationMs
}
