// Package analysis classifies incoming utterances. Every classifier is a
// pure function of the message text.
package analysis

import (
	"strings"
)

type MessageType string

const (
	TypeQuestion           MessageType = "question"
	TypeGreeting           MessageType = "greeting"
	TypeComplaint          MessageType = "complaint"
	TypeRequest            MessageType = "request"
	TypeExclamation        MessageType = "exclamation"
	TypeInformationSharing MessageType = "information_sharing"
	TypeShortStatement     MessageType = "short_statement"
	TypeLongStatement      MessageType = "long_statement"
	TypeConversationEnder  MessageType = "conversation_ender"
)

// ShortStatementMaxWords is the longest statement still considered short.
const ShortStatementMaxWords = 4

type Sentiment string

const (
	SentimentVeryPositive Sentiment = "very_positive"
	SentimentPositive     Sentiment = "positive"
	SentimentNeutral      Sentiment = "neutral"
	SentimentNegative     Sentiment = "negative"
	SentimentVeryNegative Sentiment = "very_negative"
)

// IsPositive reports positive or very positive.
func (s Sentiment) IsPositive() bool {
	return s == SentimentPositive || s == SentimentVeryPositive
}

// IsNegative reports negative or very negative.
func (s Sentiment) IsNegative() bool {
	return s == SentimentNegative || s == SentimentVeryNegative
}

type Emotion string

const (
	EmotionJoy        Emotion = "joy"
	EmotionExcitement Emotion = "excitement"
	EmotionAnger      Emotion = "anger"
	EmotionSadness    Emotion = "sadness"
	EmotionFear       Emotion = "fear"
	EmotionSurprise   Emotion = "surprise"
)

type Topic string

const (
	TopicWork          Topic = "work"
	TopicFood          Topic = "food"
	TopicSports        Topic = "sports"
	TopicEntertainment Topic = "entertainment"
	TopicPersonal      Topic = "personal"
	TopicWeather       Topic = "weather"
	TopicOffice        Topic = "office"
	TopicTechnology    Topic = "technology"
	TopicSocial        Topic = "social"
)

type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

type Formality string

const (
	FormalityCasual  Formality = "casual"
	FormalityNeutral Formality = "neutral"
	FormalityFormal  Formality = "formal"
)

// SocialCues flags interpersonal signals in a message.
type SocialCues struct {
	Politeness bool `json:"politeness,omitempty"`
	Humor      bool `json:"humor,omitempty"`
	Sarcasm    bool `json:"sarcasm,omitempty"`
	Gratitude  bool `json:"gratitude,omitempty"`
	Apology    bool `json:"apology,omitempty"`
	Compliment bool `json:"compliment,omitempty"`
	Invitation bool `json:"invitation,omitempty"`
}

// Any reports whether any cue is set.
func (c SocialCues) Any() bool {
	return c.Politeness || c.Humor || c.Sarcasm || c.Gratitude || c.Apology || c.Compliment || c.Invitation
}

// QuestionKind is the wh-word a question hinges on, or yes_no.
type QuestionKind string

const (
	QuestionNone  QuestionKind = ""
	QuestionWhat  QuestionKind = "what"
	QuestionWhen  QuestionKind = "when"
	QuestionWhere QuestionKind = "where"
	QuestionWho   QuestionKind = "who"
	QuestionWhy   QuestionKind = "why"
	QuestionHow   QuestionKind = "how"
	QuestionWhich QuestionKind = "which"
	QuestionYesNo QuestionKind = "yes_no"
	QuestionOther QuestionKind = "other"
)

// Question is the sub-analysis of an interrogative message.
type Question struct {
	IsQuestion bool         `json:"is_question"`
	Kind       QuestionKind `json:"kind,omitempty"`
	YesNo      bool         `json:"yes_no,omitempty"`
	Rhetorical bool         `json:"rhetorical,omitempty"`
}

// Analysis is the stateless classification of one message.
type Analysis struct {
	Message        string      `json:"message"`
	Type           MessageType `json:"type"`
	Sentiment      Sentiment   `json:"sentiment"`
	SentimentScore int         `json:"sentiment_score"`
	Emotions       []Emotion   `json:"emotions,omitempty"`
	Topics         []Topic     `json:"topics,omitempty"`
	Urgency        Level       `json:"urgency"`
	Formality      Formality   `json:"formality"`
	Cues           SocialCues  `json:"social_cues"`
	Question       Question    `json:"question"`
	WordCount      int         `json:"word_count"`
	Confidence     float64     `json:"confidence"`
}

// HasTopic reports whether the topic was detected.
func (a Analysis) HasTopic(t Topic) bool {
	for _, x := range a.Topics {
		if x == t {
			return true
		}
	}
	return false
}

// HasEmotion reports whether the emotion was detected.
func (a Analysis) HasEmotion(e Emotion) bool {
	for _, x := range a.Emotions {
		if x == e {
			return true
		}
	}
	return false
}

// IsCasualChat reports a message with no topic that is light small talk.
func (a Analysis) IsCasualChat() bool {
	if len(a.Topics) > 0 {
		return false
	}
	switch a.Type {
	case TypeGreeting, TypeExclamation, TypeShortStatement:
		return true
	}
	return a.Formality == FormalityCasual || a.Cues.Humor
}

// Analyze classifies message. An empty message yields a neutral short
// statement with the base confidence.
func Analyze(message string) Analysis {
	text := strings.TrimSpace(message)
	lower := strings.ToLower(text)
	words := wordToken.FindAllString(lower, -1)

	a := Analysis{
		Message:   message,
		WordCount: len(words),
	}
	a.Type = classifyType(text, len(words))
	a.SentimentScore, a.Sentiment = scoreSentiment(words)
	a.Emotions = detectEmotions(text)
	a.Topics = detectTopics(text)
	a.Urgency = detectUrgency(text)
	a.Formality = detectFormality(text)
	a.Cues = detectCues(text)
	a.Question = analyzeQuestion(text, a.Type)
	a.Confidence = confidence(a)
	return a
}

func classifyType(text string, wordCount int) MessageType {
	switch {
	case text == "":
		return TypeShortStatement
	case strings.HasSuffix(text, "?") || questionStart.MatchString(text):
		return TypeQuestion
	case enderPattern.MatchString(text):
		return TypeConversationEnder
	case greetingPattern.MatchString(text):
		return TypeGreeting
	case strings.HasSuffix(text, "!"):
		return TypeExclamation
	case complaintPattern.MatchString(text):
		return TypeComplaint
	case infoPattern.MatchString(text):
		return TypeInformationSharing
	case requestPattern.MatchString(text):
		return TypeRequest
	case wordCount <= ShortStatementMaxWords:
		return TypeShortStatement
	default:
		return TypeLongStatement
	}
}

// scoreSentiment counts positive minus negative hits, then pushes the score
// further from zero by one per intensifier.
func scoreSentiment(words []string) (int, Sentiment) {
	score, boost := 0, 0
	for _, w := range words {
		if _, ok := positiveWords[w]; ok {
			score++
		}
		if _, ok := negativeWords[w]; ok {
			score--
		}
		if _, ok := intensifiers[w]; ok {
			boost++
		}
	}
	switch {
	case score > 0:
		score += boost
	case score < 0:
		score -= boost
	}

	switch {
	case score >= 2:
		return score, SentimentVeryPositive
	case score >= 1:
		return score, SentimentPositive
	case score <= -2:
		return score, SentimentVeryNegative
	case score <= -1:
		return score, SentimentNegative
	default:
		return score, SentimentNeutral
	}
}

func detectEmotions(text string) []Emotion {
	var out []Emotion
	for _, r := range emotionRules {
		if r.pattern.MatchString(text) {
			out = append(out, r.emotion)
		}
	}
	return out
}

func detectTopics(text string) []Topic {
	var out []Topic
	for _, r := range topicRules {
		if r.pattern.MatchString(text) {
			out = append(out, r.topic)
		}
	}
	return out
}

func detectUrgency(text string) Level {
	switch {
	case highUrgency.MatchString(text):
		return LevelHigh
	case mediumUrgency.MatchString(text), strings.Count(text, "!") >= 2:
		return LevelMedium
	default:
		return LevelLow
	}
}

func detectFormality(text string) Formality {
	switch {
	case formalPattern.MatchString(text):
		return FormalityFormal
	case casualPattern.MatchString(text):
		return FormalityCasual
	default:
		return FormalityNeutral
	}
}

func detectCues(text string) SocialCues {
	var cues SocialCues
	for _, r := range cueRules {
		if r.pattern.MatchString(text) {
			r.set(&cues)
		}
	}
	return cues
}

func analyzeQuestion(text string, t MessageType) Question {
	q := Question{IsQuestion: t == TypeQuestion || strings.Contains(text, "?")}
	if !q.IsQuestion {
		return q
	}
	switch {
	case auxStart.MatchString(text):
		q.Kind = QuestionYesNo
		q.YesNo = true
	default:
		if m := whWord.FindStringSubmatch(text); m != nil {
			kind := strings.ToLower(m[1])
			switch kind {
			case "whom", "whose":
				kind = "who"
			}
			q.Kind = QuestionKind(kind)
		} else {
			q.Kind = QuestionOther
		}
	}
	q.Rhetorical = rhetorical.MatchString(text)
	return q
}

func confidence(a Analysis) float64 {
	tenths := 5
	if len(a.Topics) > 1 {
		tenths++
	}
	if a.Sentiment != SentimentNeutral {
		tenths++
	}
	if len(a.Emotions) > 0 {
		tenths++
	}
	if a.Question.IsQuestion {
		tenths++
	}
	if a.Urgency != LevelLow {
		tenths++
	}
	if tenths > 10 {
		tenths = 10
	}
	return float64(tenths) / 10
}
