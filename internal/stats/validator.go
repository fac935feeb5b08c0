package stats

import (
	"fmt"

	"scoregate/internal/submission/models"
)

// Result is the validator's verdict. Reason is a machine-readable label, set
// only on rejection; the first failing check wins.
type Result struct {
	Valid  bool
	Reason string
}

func reject(format string, args ...any) Result {
	return Result{Reason: fmt.Sprintf(format, args...)}
}

// Validator applies the plausibility rules against one Bounds tuning.
type Validator struct {
	bounds Bounds
}

// NewValidator creates a validator. The bounds must carry one profile per
// round.
func NewValidator(bounds Bounds) (*Validator, error) {
	if bounds.Rounds <= 0 {
		return nil, fmt.Errorf("round count must be positive")
	}
	if len(bounds.Profiles) != bounds.Rounds {
		return nil, fmt.Errorf("have %d spawn profiles for %d rounds", len(bounds.Profiles), bounds.Rounds)
	}
	return &Validator{bounds: bounds}, nil
}

// Validate runs the checks in their fixed order. Early checks encode physics
// no legitimate client can violate; the ceiling checks later on are
// conservative balance bounds.
func (v *Validator) Validate(sub *models.Submission) Result {
	b := v.bounds

	// Difficulty must be a known bracket.
	if _, err := models.ParseDifficulty(string(sub.Difficulty)); err != nil {
		return reject("unknown_difficulty")
	}

	// Both per-round sequences carry exactly one value per round.
	if len(sub.RoundTimesMs) != b.Rounds {
		return reject("round_time_count:have=%d", len(sub.RoundTimesMs))
	}
	if len(sub.RoundKills) != b.Rounds {
		return reject("round_kill_count:have=%d", len(sub.RoundKills))
	}

	// Per-round physics: a round cannot finish before its last spawn
	// completes, and kills land between "everything except the
	// self-resolving enemies" and "everything".
	for i := 0; i < b.Rounds; i++ {
		if sub.RoundTimesMs[i] < b.MinRoundTimeMs(i) {
			return reject("round_time_below_spawn_floor:round=%d", i+1)
		}
		profile := b.Profiles[i]
		minKills := profile.ExpectedEnemies - profile.SelfResolving
		if sub.RoundKills[i] < minKills || sub.RoundKills[i] > profile.ExpectedEnemies {
			return reject("round_kills_out_of_range:round=%d", i+1)
		}
	}

	// The final score and the round times are two accountings of the same
	// run; they may drift only by rounding.
	var timeSum int64
	for _, t := range sub.RoundTimesMs {
		timeSum += int64(t)
	}
	drift := timeSum - int64(sub.ScoreMs)
	if drift < 0 {
		drift = -drift
	}
	if drift > int64(b.ToleranceMs) {
		return reject("score_round_time_mismatch:drift_ms=%d", drift)
	}

	// Weapon block: full slot set, per-weapon ceilings, and the aggregate
	// damage interval. A run with implausibly little damage is as suspect
	// as one with too much.
	if len(sub.Weapons) != b.WeaponSlots {
		return reject("weapon_slot_count:have=%d", len(sub.Weapons))
	}
	var weaponKills, weaponDamage int64
	for _, tag := range models.WeaponTags {
		w := sub.Weapons[tag]
		if w.Kills < 0 || w.Kills > b.MaxWeaponKills {
			return reject("weapon_kills_out_of_range:weapon=%s", tag)
		}
		if w.Damage < 0 || w.Damage > b.MaxWeaponDamage {
			return reject("weapon_damage_out_of_range:weapon=%s", tag)
		}
		if w.AcquiredMs < 0 {
			return reject("weapon_acquired_negative:weapon=%s", tag)
		}
		weaponKills += int64(w.Kills)
		weaponDamage += int64(w.Damage)
	}
	if weaponDamage < int64(b.MinTotalDamage) || weaponDamage > int64(b.MaxTotalDamage) {
		return reject("total_damage_out_of_range:have=%d", weaponDamage)
	}

	// Ability block: full slot set, per-ability ceilings, and the derived
	// utility equations. Combustion's utility counter is defined as its own
	// kill count, so the two must agree exactly.
	if len(sub.Abilities) != b.AbilitySlots {
		return reject("ability_slot_count:have=%d", len(sub.Abilities))
	}
	var abilityKills, abilityUses int64
	for _, tag := range models.AbilityTags {
		a := sub.Abilities[tag]
		if a.Uses < 0 || a.Uses > b.MaxAbilityUses {
			return reject("ability_uses_out_of_range:ability=%s", tag)
		}
		if a.Utility < 0 || a.Utility > b.MaxUtility {
			return reject("ability_utility_out_of_range:ability=%s", tag)
		}
		if a.Kills < 0 {
			return reject("ability_kills_negative:ability=%s", tag)
		}
		if tag == models.AbilityCombustion && a.Utility != a.Kills {
			return reject("combustion_utility_mismatch")
		}
		abilityKills += int64(a.Kills)
		abilityUses += int64(a.Uses)
	}

	// Aggregates: total ability uses, the combined kill ceiling, and the
	// cross-consistency between the kill ledger and the per-round ledger.
	if abilityUses > int64(b.MaxTotalAbility) {
		return reject("total_ability_uses_out_of_range:have=%d", abilityUses)
	}
	combinedKills := weaponKills + abilityKills
	if combinedKills > int64(b.MaxCombinedKills) {
		return reject("combined_kills_out_of_range:have=%d", combinedKills)
	}
	var roundKills int64
	for _, k := range sub.RoundKills {
		roundKills += int64(k)
	}
	if combinedKills != roundKills {
		return reject("kill_accounting_mismatch:combined=%d,rounds=%d", combinedKills, roundKills)
	}

	// The summary fields the client sends are re-derived here, never
	// trusted; downstream packing uses them only because they now agree.
	if int64(sub.TotalKills) != combinedKills ||
		int64(sub.TotalDamage) != weaponDamage ||
		int64(sub.TotalAbilityUses) != abilityUses {
		return reject("declared_totals_mismatch")
	}

	return Result{Valid: true}
}
