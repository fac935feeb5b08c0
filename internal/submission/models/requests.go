package models

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// SubmitScoreRequest is the wire shape of POST /v1/scores. Structural
// problems (missing fields, wrong shapes, unknown tags) are hard failures;
// the validate tags catch the shallow ones and ToSubmission the rest.
type SubmitScoreRequest struct {
	AccountID  string `json:"account_id" validate:"required"`
	Ticket     string `json:"ticket" validate:"required"`
	Token      string `json:"token" validate:"required"`
	Difficulty string `json:"difficulty" validate:"required"`
	ScoreMs    int32  `json:"score_ms" validate:"required,gt=0"`

	RoundTimesMs []int32 `json:"round_times_ms" validate:"required"`
	RoundKills   []int32 `json:"round_kills" validate:"required"`

	Weapons   []WeaponEntry  `json:"weapons" validate:"required,dive"`
	Abilities []AbilityEntry `json:"abilities" validate:"required,dive"`

	TotalKills       int32 `json:"total_kills" validate:"gte=0"`
	TotalDamage      int32 `json:"total_damage" validate:"gte=0"`
	TotalAbilityUses int32 `json:"total_ability_uses" validate:"gte=0"`
}

// WeaponEntry is one weapon's stats on the wire.
type WeaponEntry struct {
	Tag        string `json:"tag" validate:"required"`
	Kills      int32  `json:"kills" validate:"gte=0"`
	Damage     int32  `json:"damage" validate:"gte=0"`
	AcquiredMs int32  `json:"acquired_ms" validate:"gte=0"`
}

// AbilityEntry is one ability's stats on the wire.
type AbilityEntry struct {
	Tag     string `json:"tag" validate:"required"`
	Uses    int32  `json:"uses" validate:"gte=0"`
	Utility int32  `json:"utility" validate:"gte=0"`
	Kills   int32  `json:"kills" validate:"gte=0"`
}

// ToSubmission validates the request and converts it into the domain shape.
// Duplicate or unknown tags and a bad difficulty are structural failures.
func (r *SubmitScoreRequest) ToSubmission(v *validator.Validate) (*Submission, error) {
	if err := v.Struct(r); err != nil {
		return nil, fmt.Errorf("validate submission: %w", err)
	}

	difficulty, err := ParseDifficulty(r.Difficulty)
	if err != nil {
		return nil, err
	}

	weapons := make(map[WeaponTag]WeaponStats, len(r.Weapons))
	for _, w := range r.Weapons {
		tag := WeaponTag(w.Tag)
		if !validWeaponTag(tag) {
			return nil, fmt.Errorf("unknown weapon tag %q", w.Tag)
		}
		if _, dup := weapons[tag]; dup {
			return nil, fmt.Errorf("duplicate weapon tag %q", w.Tag)
		}
		weapons[tag] = WeaponStats{Kills: w.Kills, Damage: w.Damage, AcquiredMs: w.AcquiredMs}
	}

	abilities := make(map[AbilityTag]AbilityStats, len(r.Abilities))
	for _, a := range r.Abilities {
		tag := AbilityTag(a.Tag)
		if !validAbilityTag(tag) {
			return nil, fmt.Errorf("unknown ability tag %q", a.Tag)
		}
		if _, dup := abilities[tag]; dup {
			return nil, fmt.Errorf("duplicate ability tag %q", a.Tag)
		}
		abilities[tag] = AbilityStats{Uses: a.Uses, Utility: a.Utility, Kills: a.Kills}
	}

	return &Submission{
		AccountID:        r.AccountID,
		Ticket:           r.Ticket,
		Token:            r.Token,
		Difficulty:       difficulty,
		ScoreMs:          r.ScoreMs,
		RoundTimesMs:     r.RoundTimesMs,
		RoundKills:       r.RoundKills,
		Weapons:          weapons,
		Abilities:        abilities,
		TotalKills:       r.TotalKills,
		TotalDamage:      r.TotalDamage,
		TotalAbilityUses: r.TotalAbilityUses,
	}, nil
}

// StructuralReason maps a ToSubmission failure onto the stable reason labels
// carried into the audit log and the auto-ban metrics. The first failing
// validation wins; non-validator failures (bad difficulty, unknown or
// duplicate tags) collapse into one bucket.
func StructuralReason(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Tag() == "required" {
			return "missing_" + fe.Field()
		}
		return "invalid_" + fe.Field()
	}
	return "malformed_payload"
}

func validWeaponTag(tag WeaponTag) bool {
	for _, t := range WeaponTags {
		if t == tag {
			return true
		}
	}
	return false
}

func validAbilityTag(tag AbilityTag) bool {
	for _, t := range AbilityTags {
		if t == tag {
			return true
		}
	}
	return false
}
