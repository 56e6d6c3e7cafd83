package scoring

import (
	"sort"

	"github.com/sinavlab/optik/internal/omr"
)

// Config carries everything the engine needs besides the answers: the
// wrong-answer penalty, per-subject weights, and the raw→scaled mapping.
type Config struct {
	PenaltyDivisor int                         `json:"penalty_divisor"`
	SubjectWeights map[omr.SubjectCode]float64 `json:"subject_weights"`
	MaxRawScore    float64                     `json:"max_raw_score"`
	MinScore       float64                     `json:"min_score"`
	MaxScore       float64                     `json:"max_score"`
}

// LGS is the middle-school placement exam: 90 questions, three wrong
// answers cancel one correct, core subjects weighted 4x, scaled 100–500.
func LGS() Config {
	return Config{
		PenaltyDivisor: 3,
		SubjectWeights: map[omr.SubjectCode]float64{
			omr.SubjectTUR: 4, omr.SubjectMAT: 4, omr.SubjectFEN: 4,
			omr.SubjectINK: 1, omr.SubjectDIN: 1, omr.SubjectING: 1,
		},
		MaxRawScore: 270,
		MinScore:    100,
		MaxScore:    500,
	}
}

// TYT is the first-stage university exam: penalty divisor 4, verbal and
// science sections weighted per the published coefficients.
func TYT() Config {
	return Config{
		PenaltyDivisor: 4,
		SubjectWeights: map[omr.SubjectCode]float64{
			omr.SubjectTUR: 1.32, omr.SubjectSOS: 1.36,
			omr.SubjectMAT: 1.32, omr.SubjectFEN: 1.36,
		},
		MaxRawScore: 160,
		MinScore:    100,
		MaxScore:    500,
	}
}

// AYT is the second-stage university exam (science track weights).
func AYT() Config {
	return Config{
		PenaltyDivisor: 4,
		SubjectWeights: map[omr.SubjectCode]float64{
			omr.SubjectMAT: 1.32, omr.SubjectFIZ: 1.36,
			omr.SubjectKIM: 1.36, omr.SubjectBIY: 1.36,
		},
		MaxRawScore: 107.2,
		MinScore:    100,
		MaxScore:    500,
	}
}

// ---- profile registry ----

var profiles = map[string]Config{}

// RegisterProfile binds a scoring config to a profile key like "lgs.v1".
func RegisterProfile(key string, cfg Config) { profiles[key] = cfg }

// ProfileFor fetches a registered profile config.
func ProfileFor(key string) (Config, bool) {
	cfg, ok := profiles[key]
	return cfg, ok
}

// Profiles lists registered profile keys, sorted.
func Profiles() []string {
	keys := make([]string, 0, len(profiles))
	for k := range profiles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	RegisterProfile("lgs.v1", LGS())
	RegisterProfile("tyt.v1", TYT())
	RegisterProfile("ayt.v1", AYT())
}
