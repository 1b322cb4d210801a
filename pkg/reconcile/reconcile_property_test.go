package reconcile

import (
	"sort"
	"testing"
	"time"

	"pgregory.net/rapid"
)

// After every pass the live keys equal the target keys, and once all
// animations settle no element outside the target set survives.
func TestProperty_LiveKeysMatchLatestTargets(t *testing.T) {
	universe := []string{"ET", "PD", "HC", "DT", "MS", "FT"}

	rapid.Check(t, func(t *rapid.T) {
		r := New(Options{Duration: 500 * time.Millisecond, Baseline: 100})
		now := t0
		var last []string

		steps := rapid.IntRange(1, 25).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			now = now.Add(time.Duration(rapid.IntRange(0, 800).Draw(t, "advance")) * time.Millisecond)

			var targets []Target
			for _, k := range universe {
				if rapid.Bool().Draw(t, "include_"+k) {
					targets = append(targets, Target{Key: k, Attrs: Attrs{Height: rapid.Float64Range(0, 100).Draw(t, "h")}})
				}
			}
			if rapid.Bool().Draw(t, "hover") && len(targets) > 0 {
				r.Hover(now, targets[0].Key)
			}
			r.Apply(now, targets)

			last = last[:0]
			for _, tg := range targets {
				last = append(last, tg.Key)
			}
			assertSameKeys(t, r.Keys(), last)
			for _, k := range last {
				if s := r.State(k); s == Exiting || s == Absent {
					t.Fatalf("target key %s in state %v", k, s)
				}
			}
		}

		r.Tick(now.Add(time.Hour))
		if r.Len() != len(last) {
			t.Fatalf("settled element count %d, want %d", r.Len(), len(last))
		}
		var settled []string
		for _, f := range r.Frame(now.Add(time.Hour)) {
			settled = append(settled, f.Key)
		}
		assertSameKeys(t, settled, last)
	})
}

func assertSameKeys(t *rapid.T, got, want []string) {
	a := append([]string(nil), got...)
	b := append([]string(nil), want...)
	sort.Strings(a)
	sort.Strings(b)
	if len(a) != len(b) {
		t.Fatalf("keys %v, want %v", got, want)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("keys %v, want %v", got, want)
		}
	}
}
