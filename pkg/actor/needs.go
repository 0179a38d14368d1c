package actor

import "math"

// NeedName identifies one of a character's needs.
type NeedName string

const (
	NeedEnergy  NeedName = "energy"
	NeedHunger  NeedName = "hunger"
	NeedSocial  NeedName = "social"
	NeedComfort NeedName = "comfort"
	NeedStress  NeedName = "stress"
)

const (
	MinNeed = 0.0
	MaxNeed = 10.0

	// LowNeedThreshold is the level below which a need is considered unmet
	// and a restorative intent is offered.
	LowNeedThreshold = 4.0
)

// AllNeeds lists the needs in presentation order.
var AllNeeds = []NeedName{NeedEnergy, NeedHunger, NeedSocial, NeedComfort, NeedStress}

// Needs holds need levels on a 0-10 scale. Every need is a satisfaction
// level (10 = fully met) except Stress, where higher means more stressed.
type Needs struct {
	Energy  float64 `json:"energy" yaml:"energy"`
	Hunger  float64 `json:"hunger" yaml:"hunger"`
	Social  float64 `json:"social" yaml:"social"`
	Comfort float64 `json:"comfort" yaml:"comfort"`
	Stress  float64 `json:"stress" yaml:"stress"`
}

// DefaultNeeds returns the needs of a rested, fed, sociable character.
func DefaultNeeds() Needs {
	return Needs{Energy: 8, Hunger: 8, Social: 7, Comfort: 7, Stress: 2}
}

// ClampNeed keeps a need value within [MinNeed, MaxNeed]. NaN becomes
// MinNeed.
func ClampNeed(v float64) float64 {
	if math.IsNaN(v) || v < MinNeed {
		return MinNeed
	}
	if v > MaxNeed {
		return MaxNeed
	}
	return v
}

// Get returns the value of the named need.
func (n Needs) Get(name NeedName) (float64, bool) {
	switch name {
	case NeedEnergy:
		return n.Energy, true
	case NeedHunger:
		return n.Hunger, true
	case NeedSocial:
		return n.Social, true
	case NeedComfort:
		return n.Comfort, true
	case NeedStress:
		return n.Stress, true
	}
	return 0, false
}

func (n *Needs) set(name NeedName, v float64) bool {
	v = ClampNeed(v)
	switch name {
	case NeedEnergy:
		n.Energy = v
	case NeedHunger:
		n.Hunger = v
	case NeedSocial:
		n.Social = v
	case NeedComfort:
		n.Comfort = v
	case NeedStress:
		n.Stress = v
	default:
		return false
	}
	return true
}

// Clamped returns a copy with every need clamped to the valid range.
func (n Needs) Clamped() Needs {
	return Needs{
		Energy:  ClampNeed(n.Energy),
		Hunger:  ClampNeed(n.Hunger),
		Social:  ClampNeed(n.Social),
		Comfort: ClampNeed(n.Comfort),
		Stress:  ClampNeed(n.Stress),
	}
}

// Apply adds each delta to the matching need and clamps the result.
// Unknown need names and NaN deltas are ignored.
func (n Needs) Apply(delta map[NeedName]float64) Needs {
	out := n.Clamped()
	for name, d := range delta {
		if math.IsNaN(d) {
			continue
		}
		if cur, ok := out.Get(name); ok {
			out.set(name, cur+d)
		}
	}
	return out
}

// Unmet returns the restorable needs below LowNeedThreshold, in the fixed
// order energy, hunger, social.
func (n Needs) Unmet() []NeedName {
	var out []NeedName
	if n.Energy < LowNeedThreshold {
		out = append(out, NeedEnergy)
	}
	if n.Hunger < LowNeedThreshold {
		out = append(out, NeedHunger)
	}
	if n.Social < LowNeedThreshold {
		out = append(out, NeedSocial)
	}
	return out
}

// ToMap returns the needs keyed by name.
func (n Needs) ToMap() map[NeedName]float64 {
	return map[NeedName]float64{
		NeedEnergy:  n.Energy,
		NeedHunger:  n.Hunger,
		NeedSocial:  n.Social,
		NeedComfort: n.Comfort,
		NeedStress:  n.Stress,
	}
}
