package domain

import (
	"math/rand"
	"reflect"
	"testing"
	"testing/quick"
)

var robJudgments = []RoBJudgment{RoBLow, RoBSomeConcerns, RoBHigh}

// robJudgmentSet is one judgment per RoB domain, generated uniformly.
type robJudgmentSet [5]RoBJudgment

func (robJudgmentSet) Generate(r *rand.Rand, _ int) reflect.Value {
	var s robJudgmentSet
	for i := range s {
		s[i] = robJudgments[r.Intn(len(robJudgments))]
	}
	return reflect.ValueOf(s)
}

func (s robJudgmentSet) assessments() []RoBDomainAssessment {
	return robSet(s[:]...)
}

// Property: any high domain forces an overall high.
func TestProperty_RoB_AnyHighIsHigh(t *testing.T) {
	property := func(s robJudgmentSet, idx uint8) bool {
		s[int(idx)%len(s)] = RoBHigh
		return ApplyRoBAlgorithm(s.assessments()) == RoBHigh
	}
	if err := quick.Check(property, nil); err != nil {
		t.Errorf("Property violation: %v", err)
	}
}

// Property: without a high domain, the result follows the critical-pair and
// concern-count rules.
func TestProperty_RoB_WithoutHigh(t *testing.T) {
	property := func(s robJudgmentSet) bool {
		for i := range s {
			if s[i] == RoBHigh {
				s[i] = RoBSomeConcerns
			}
		}
		concerns := 0
		for _, j := range s {
			if j == RoBSomeConcerns {
				concerns++
			}
		}
		criticalPair := s[0] == RoBSomeConcerns && s[1] == RoBSomeConcerns

		var want RoBJudgment
		switch {
		case criticalPair || concerns >= 3:
			want = RoBHigh
		case concerns >= 1:
			want = RoBSomeConcerns
		default:
			want = RoBLow
		}

		got := ApplyRoBAlgorithm(s.assessments())
		if got != want {
			t.Logf("judgments=%v got=%s want=%s", s, got, want)
			return false
		}
		return true
	}
	if err := quick.Check(property, nil); err != nil {
		t.Errorf("Property violation: %v", err)
	}
}

// Property: the overall judgment does not depend on the order of the domains.
func TestProperty_RoB_OrderIndependent(t *testing.T) {
	property := func(s robJudgmentSet, seed int64) bool {
		in := s.assessments()
		shuffled := make([]RoBDomainAssessment, len(in))
		copy(shuffled, in)
		rand.New(rand.NewSource(seed)).Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		return ApplyRoBAlgorithm(in) == ApplyRoBAlgorithm(shuffled)
	}
	if err := quick.Check(property, nil); err != nil {
		t.Errorf("Property violation: %v", err)
	}
}

// Property: reconciliation always keeps the computed judgment.
func TestProperty_RoB_ReconcileKeepsComputed(t *testing.T) {
	property := func(s robJudgmentSet, pick uint8) bool {
		suggested := robJudgments[int(pick)%len(robJudgments)]
		computed := ApplyRoBAlgorithm(s.assessments())
		rec := Reconcile(suggested, computed)
		return rec.Final == computed && rec.Overridden == (suggested != computed)
	}
	if err := quick.Check(property, nil); err != nil {
		t.Errorf("Property violation: %v", err)
	}
}
