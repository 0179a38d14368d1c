package actor

import (
	"math"
	"testing"
)

func TestNeeds_Apply_Clamps(t *testing.T) {
	n := Needs{Energy: 9, Hunger: 1, Social: 5, Comfort: 5, Stress: 0.5}

	got := n.Apply(map[NeedName]float64{
		NeedEnergy: 3,
		NeedHunger: -4,
		NeedStress: -1,
		"unknown":  5,
	})

	if got.Energy != MaxNeed {
		t.Errorf("expected energy clamped to %v, got %v", MaxNeed, got.Energy)
	}
	if got.Hunger != MinNeed {
		t.Errorf("expected hunger clamped to %v, got %v", MinNeed, got.Hunger)
	}
	if got.Stress != MinNeed {
		t.Errorf("expected stress clamped to %v, got %v", MinNeed, got.Stress)
	}
	if got.Social != 5 {
		t.Errorf("expected social unchanged, got %v", got.Social)
	}
	if n.Energy != 9 {
		t.Errorf("Apply must not mutate the receiver, energy is now %v", n.Energy)
	}
}

func TestNeeds_Apply_IgnoresNaN(t *testing.T) {
	n := Needs{Energy: 6, Hunger: 5, Social: 5, Comfort: 5, Stress: 2}

	got := n.Apply(map[NeedName]float64{NeedEnergy: math.NaN(), NeedHunger: math.Inf(1)})

	if got.Energy != 6 {
		t.Errorf("expected energy unchanged by NaN, got %v", got.Energy)
	}
	if got.Hunger != MaxNeed {
		t.Errorf("expected hunger clamped to %v, got %v", MaxNeed, got.Hunger)
	}
	if v := ClampNeed(math.NaN()); v != MinNeed {
		t.Errorf("expected NaN clamped to %v, got %v", MinNeed, v)
	}
	if c := (Needs{Energy: math.NaN()}).Clamped(); c.Energy != MinNeed {
		t.Errorf("expected NaN energy clamped to %v, got %v", MinNeed, c.Energy)
	}
}

func TestNeeds_Unmet(t *testing.T) {
	tests := []struct {
		name  string
		needs Needs
		want  []NeedName
	}{
		{"all met", DefaultNeeds(), nil},
		{"tired only", Needs{Energy: 2, Hunger: 8, Social: 8}, []NeedName{NeedEnergy}},
		{"everything low", Needs{Energy: 1, Hunger: 3.9, Social: 0}, []NeedName{NeedEnergy, NeedHunger, NeedSocial}},
		{"threshold is exclusive", Needs{Energy: 4, Hunger: 4, Social: 4}, nil},
		{"comfort is not restorable", Needs{Energy: 8, Hunger: 8, Social: 8, Comfort: 0}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.needs.Unmet()
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("position %d: expected %s, got %s", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestComputeMood(t *testing.T) {
	tests := []struct {
		name  string
		needs Needs
		want  Mood
	}{
		{"defaults", DefaultNeeds(), MoodContent},
		{"everything great", Needs{Energy: 10, Hunger: 10, Social: 10, Comfort: 10, Stress: 0}, MoodHappy},
		{"severe stress wins", Needs{Energy: 1, Hunger: 1, Social: 10, Comfort: 10, Stress: 9}, MoodStressed},
		{"two depleted", Needs{Energy: 2, Hunger: 2, Social: 8, Comfort: 8, Stress: 2}, MoodMiserable},
		{"tired", Needs{Energy: 2, Hunger: 8, Social: 8, Comfort: 8, Stress: 2}, MoodTired},
		{"hungry", Needs{Energy: 8, Hunger: 2, Social: 8, Comfort: 8, Stress: 2}, MoodHungry},
		{"lonely", Needs{Energy: 8, Hunger: 8, Social: 1, Comfort: 8, Stress: 2}, MoodLonely},
		{"moderate stress", Needs{Energy: 8, Hunger: 8, Social: 8, Comfort: 8, Stress: 6}, MoodStressed},
		{"middling", Needs{Energy: 5, Hunger: 5, Social: 5, Comfort: 5, Stress: 5}, MoodNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeMood(tt.needs); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
