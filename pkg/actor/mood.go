package actor

// Mood is derived from needs and never stored independently.
type Mood string

const (
	MoodHappy     Mood = "happy"
	MoodContent   Mood = "content"
	MoodNeutral   Mood = "neutral"
	MoodTired     Mood = "tired"
	MoodHungry    Mood = "hungry"
	MoodLonely    Mood = "lonely"
	MoodStressed  Mood = "stressed"
	MoodMiserable Mood = "miserable"
)

// ComputeMood derives a mood from need levels. Acute problems win over the
// overall average: severe stress first, then multiple depleted needs, then
// single depleted needs in order of urgency.
func ComputeMood(n Needs) Mood {
	n = n.Clamped()

	if n.Stress >= 8 {
		return MoodStressed
	}

	depleted := 0
	for _, v := range []float64{n.Energy, n.Hunger, n.Social, n.Comfort} {
		if v < 3 {
			depleted++
		}
	}
	if depleted >= 2 {
		return MoodMiserable
	}

	switch {
	case n.Energy < 3:
		return MoodTired
	case n.Hunger < 3:
		return MoodHungry
	case n.Social < 3:
		return MoodLonely
	case n.Stress >= 6:
		return MoodStressed
	}

	avg := (n.Energy + n.Hunger + n.Social + n.Comfort + (MaxNeed - n.Stress)) / 5
	switch {
	case avg >= 8:
		return MoodHappy
	case avg >= 6:
		return MoodContent
	default:
		return MoodNeutral
	}
}

// Describe returns a short phrase for the mood, used in snapshot summaries.
func (m Mood) Describe() string {
	switch m {
	case MoodHappy:
		return "in great spirits"
	case MoodContent:
		return "doing fine"
	case MoodTired:
		return "running on empty"
	case MoodHungry:
		return "distracted by hunger"
	case MoodLonely:
		return "craving some company"
	case MoodStressed:
		return "under a lot of pressure"
	case MoodMiserable:
		return "having a rough day"
	default:
		return "feeling so-so"
	}
}

// IsNegative reports whether the mood should color replies negatively.
func (m Mood) IsNegative() bool {
	switch m {
	case MoodTired, MoodHungry, MoodLonely, MoodStressed, MoodMiserable:
		return true
	}
	return false
}
