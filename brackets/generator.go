package brackets

import (
	"fmt"
	"math/rand"

	"github.com/Dosada05/selective-league/models"
)

// Result is the set of match shells produced for a selective at creation time.
// Matches carry no IDs; the caller assigns them when persisting.
type Result struct {
	Matches     []*models.Match
	TotalRounds int
	BracketSize int
}

type options struct {
	rng *rand.Rand
}

type Option func(*options)

// WithRand makes the elimination shuffle use rng instead of the global source.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) { o.rng = rng }
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// GenerateForSelective dispatches to the generator of the selective's mode.
// Swiss only produces round 1; later rounds are generated as results come in.
func GenerateForSelective(sel *models.Selective, opts ...Option) (Result, error) {
	cfg := sel.Config.Normalize()
	switch sel.Mode {
	case models.ModeElimination:
		res := GenerateEliminationBracket(sel.PlayerIDs, opts...)
		return Result(res), nil
	case models.ModeRoundRobin:
		res := GenerateRoundRobin(sel.PlayerIDs, cfg.Rounds)
		return Result{Matches: res.Matches, TotalRounds: res.TotalRounds}, nil
	case models.ModeSwiss:
		res := GenerateSwissRound(sel.PlayerIDs, nil, 1, nil)
		return Result{Matches: res.Matches, TotalRounds: cfg.Rounds}, nil
	default:
		return Result{}, fmt.Errorf("unsupported selective mode '%s'", sel.Mode)
	}
}

func shuffle(ids []string, rng *rand.Rand) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	for i := len(out) - 1; i > 0; i-- {
		var j int
		if rng != nil {
			j = rng.Intn(i + 1)
		} else {
			j = rand.Intn(i + 1)
		}
		out[i], out[j] = out[j], out[i]
	}
	return out
}
