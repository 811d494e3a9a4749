package event

import (
	"strconv"
)

// AggregateWait collapses every run of consecutive wait tokens into a single
// wait token carrying the summed step count. All other tokens keep their order.
func AggregateWait(tokens []string) []string {
	return Aggregator{}.Aggregate(tokens)
}

// Aggregator collapses wait runs. With MaxWait > 0 a summed run is emitted as
// wt_MaxWait chunks followed by the remainder, so aggregated tokens stay inside
// a vocabulary that only enumerates wt_1..wt_MaxWait.
type Aggregator struct {
	MaxWait int
}

func (a Aggregator) Aggregate(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	run, inRun := 0, false

	flush := func() {
		if !inRun {
			return
		}
		out = append(out, a.chunks(run)...)
		run, inRun = 0, false
	}

	for _, tok := range tokens {
		if IsWait(tok) {
			run += ExpandWait(tok)
			inRun = true
			continue
		}
		flush()
		out = append(out, tok)
	}
	flush()

	return out
}

func (a Aggregator) chunks(total int) []string {
	if a.MaxWait <= 0 || total <= a.MaxWait {
		return []string{Wait(total)}
	}
	var out []string
	for total > a.MaxWait {
		out = append(out, Wait(a.MaxWait))
		total -= a.MaxWait
	}
	if total > 0 {
		out = append(out, Wait(total))
	}
	return out
}

// ExpandWait returns the number of steps a wait token stands for.
// Malformed or negative values count as zero-length silence.
func ExpandWait(tok string) int {
	if !IsWait(tok) {
		return 0
	}
	n, err := strconv.Atoi(Value(tok))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// StripWait removes every wait token.
func StripWait(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if IsWait(tok) {
			continue
		}
		out = append(out, tok)
	}
	return out
}
