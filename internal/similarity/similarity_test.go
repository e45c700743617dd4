package similarity

import (
	"errors"
	"math"
	"testing"

	"github.com/freightlens/shipdedup/internal/model"
)

// TestTokenSortRatio tests the primary similarity metric.
func TestTokenSortRatio(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "ACMETRADING", "ACMETRADING", 100},
		{"word order neutralized", "MAIN RD", "RD MAIN", 100},
		{"disjoint", "ABC", "XYZ", 0},
		{"both empty score zero", "", "", 0},
		{"one empty scores zero", "ABC", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := TokenSortRatio(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("TokenSortRatio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}

	t.Run("partial similarity in range", func(t *testing.T) {
		t.Parallel()

		got := TokenSortRatio("GOLDWIN", "GOLDWYN")
		if got <= 0 || got >= 100 {
			t.Errorf("expected partial score in (0, 100), got %v", got)
		}
	})
}

// TestTokenSortRatioSymmetry tests score(a,b) == score(b,a).
func TestTokenSortRatioSymmetry(t *testing.T) {
	t.Parallel()

	pairs := [][2]string{
		{"ACME TRADING", "ACME TRAIDNG"},
		{"MAINRD", "MAINSTREETRD"},
		{"", "GOLDWIN"},
		{"ABC", "ABD"},
	}

	for _, p := range pairs {
		ab := TokenSortRatio(p[0], p[1])
		ba := TokenSortRatio(p[1], p[0])
		if math.Abs(ab-ba) > 1e-9 {
			t.Errorf("asymmetric: TokenSortRatio(%q,%q)=%v but reversed=%v", p[0], p[1], ab, ba)
		}
	}
}

// TestScorerScore tests weighted pair scoring.
func TestScorerScore(t *testing.T) {
	t.Parallel()

	t.Run("identical records", func(t *testing.T) {
		t.Parallel()

		s := NewScorer(1.3)
		rec := model.StandardizedRecord{Name: "ABC", Address: "MAINRD"}

		got, err := s.Score(0, 1, rec, rec)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.NameConfidence != 100 || got.AddressConfidence != 100 {
			t.Errorf("expected 100/100, got %v/%v", got.NameConfidence, got.AddressConfidence)
		}
		if math.Abs(got.OverallSimilarity-100) > 1e-9 {
			t.Errorf("expected overall 100, got %v", got.OverallSimilarity)
		}
		if got.I != 0 || got.J != 1 {
			t.Errorf("pair IDs not carried: (%d, %d)", got.I, got.J)
		}
	})

	t.Run("combined is weighted average", func(t *testing.T) {
		t.Parallel()

		// name raw 90, address 40, weight 1.3:
		// combined = (90*1.3 + 40) / 2.3 ≈ 68.26
		s := NewScorer(1.3)
		p := model.PairScore{NameConfidence: 90, AddressConfidence: 40}
		overall := (p.NameConfidence*s.NameWeight + p.AddressConfidence) / (1 + s.NameWeight)

		if math.Abs(overall-68.26086956521739) > 1e-9 {
			t.Errorf("unexpected combined score: %v", overall)
		}
		if w := s.WeightedName(p); math.Abs(w-117) > 1e-9 {
			t.Errorf("expected weighted name 117, got %v", w)
		}
	})

	t.Run("symmetry of full score", func(t *testing.T) {
		t.Parallel()

		s := NewScorer(1.4)
		a := model.StandardizedRecord{Name: "GOLDWIN", Address: "88BUNRD"}
		b := model.StandardizedRecord{Name: "GOLDWYN", Address: "BUNRD"}

		ab, err := s.Score(0, 1, a, b)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ba, err := s.Score(0, 1, b, a)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ab.NameConfidence != ba.NameConfidence || ab.AddressConfidence != ba.AddressConfidence {
			t.Errorf("score not symmetric: %+v vs %+v", ab, ba)
		}
	})

	t.Run("invalid utf8 is a comparison error", func(t *testing.T) {
		t.Parallel()

		s := NewScorer(1.3)
		bad := model.StandardizedRecord{Name: string([]byte{0xff, 0xfe})}

		_, err := s.Score(0, 1, bad, model.StandardizedRecord{Name: "ABC"})
		if !errors.Is(err, ErrInvalidText) {
			t.Errorf("expected ErrInvalidText, got %v", err)
		}
	})
}

// TestJaroWinkler tests the auxiliary review metric.
func TestJaroWinkler(t *testing.T) {
	t.Parallel()

	if got := JaroWinkler("", ""); got != 0 {
		t.Errorf("both-empty should score 0, got %v", got)
	}
	if got := JaroWinkler("GOLDWIN", "GOLDWIN"); math.Abs(got-100) > 1e-9 {
		t.Errorf("identical should score 100, got %v", got)
	}
	got := JaroWinkler("GOLDWIN", "GOLDWYN")
	if got <= 0 || got >= 100 {
		t.Errorf("expected partial score in (0, 100), got %v", got)
	}
}
