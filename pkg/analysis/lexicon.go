package analysis

import (
	"regexp"
	"strings"
)

// phrasePattern builds a case-insensitive whole-word alternation. Phrases
// may contain spaces and apostrophes.
func phrasePattern(phrases ...string) *regexp.Regexp {
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

func wordSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

var (
	questionStart = regexp.MustCompile(`(?i)^(?:what|when|where|who|whom|whose|why|how|which|is|are|am|was|were|do|does|did|can|could|would|will|should|shall|may|might|have|has|had|isn't|aren't|don't|doesn't|didn't|won't|wouldn't|can't|couldn't|shouldn't)\b`)
	whWord        = regexp.MustCompile(`(?i)\b(what|when|where|who|whom|whose|why|how|which)\b`)
	auxStart      = regexp.MustCompile(`(?i)^(?:is|are|am|was|were|do|does|did|can|could|would|will|should|shall|may|might|have|has|had|isn't|aren't|don't|doesn't|didn't|won't|wouldn't|can't|couldn't|shouldn't)\b`)
	rhetorical    = phrasePattern("isn't it", "aren't they", "don't you think", "who cares", "why not", "what's the point", "am i right", "who knew")

	enderPattern = phrasePattern(
		"bye", "goodbye", "good bye", "bye bye", "see you", "see ya", "see you later",
		"talk later", "talk to you later", "ttyl", "gotta go", "got to go", "have to go",
		"need to go", "catch you later", "later then", "good night", "take care",
		"signing off", "heading out", "i'm off",
	)
	greetingPattern  = regexp.MustCompile(`(?i)^(?:hi|hello|hey|heya|hiya|howdy|yo|sup|greetings|good morning|good afternoon|good evening|morning|afternoon|evening)\b`)
	complaintPattern = phrasePattern(
		"hate", "annoying", "annoyed", "terrible", "awful", "ugh", "sick of", "tired of",
		"can't stand", "frustrated", "frustrating", "broken", "worst", "complain",
		"ridiculous", "unfair", "fed up", "not working", "doesn't work",
	)
	infoPattern = phrasePattern(
		"did you know", "fyi", "just so you know", "heads up", "i heard", "guess what",
		"apparently", "turns out", "i found out", "news", "i just learned", "rumor",
		"announcement", "just found out",
	)
	requestPattern = phrasePattern(
		"can you", "could you", "would you", "will you", "please", "i need you to",
		"mind if", "help me", "would you mind", "can i get", "could i get", "lend me",
	)
)

var positiveWords = wordSet(
	"good", "great", "awesome", "amazing", "love", "loved", "excellent", "happy",
	"excited", "fantastic", "wonderful", "nice", "fun", "glad", "thanks", "thank",
	"cool", "perfect", "brilliant", "enjoy", "enjoyed", "best", "yay", "delighted",
	"thrilled", "beautiful", "superb", "win", "won", "proud", "lovely",
)

var negativeWords = wordSet(
	"bad", "terrible", "awful", "hate", "hated", "sad", "angry", "annoying", "annoyed",
	"worst", "horrible", "boring", "tired", "sick", "upset", "frustrated", "ugh",
	"broken", "disappointed", "stressed", "worried", "lost", "lose", "miserable",
	"furious", "exhausted", "sucks", "bored",
)

var intensifiers = wordSet(
	"very", "really", "so", "extremely", "super", "totally", "absolutely",
	"incredibly", "truly", "way", "insanely",
)

var wordToken = regexp.MustCompile(`[a-z]+(?:'[a-z]+)?`)

type emotionRule struct {
	emotion Emotion
	pattern *regexp.Regexp
}

var emotionRules = []emotionRule{
	{EmotionJoy, phrasePattern("happy", "glad", "delighted", "yay", "joy", "cheerful", "love it", "great news")},
	{EmotionExcitement, phrasePattern("excited", "can't wait", "pumped", "stoked", "thrilled", "hyped", "psyched")},
	{EmotionAnger, phrasePattern("angry", "furious", "mad", "annoyed", "irritated", "livid", "pissed")},
	{EmotionSadness, phrasePattern("sad", "down", "depressed", "upset", "miss", "lonely", "heartbroken", "disappointed", "sigh")},
	{EmotionFear, phrasePattern("scared", "afraid", "worried", "nervous", "anxious", "terrified", "panic")},
	{EmotionSurprise, phrasePattern("wow", "surprised", "shocked", "unbelievable", "whoa", "no way", "can't believe")},
}

type topicRule struct {
	topic   Topic
	pattern *regexp.Regexp
}

var topicRules = []topicRule{
	{TopicWork, phrasePattern(
		"work", "working", "project", "projects", "deadline", "deadlines", "meeting", "meetings",
		"boss", "report", "reports", "task", "tasks", "email", "emails", "client", "clients",
		"manager", "presentation", "job", "spreadsheet", "quarterly", "review", "budget",
	)},
	{TopicFood, phrasePattern(
		"food", "lunch", "dinner", "breakfast", "eat", "eating", "hungry", "snack", "snacks",
		"coffee", "pizza", "sandwich", "tea", "cake", "cookie", "cookies", "donut", "donuts",
		"restaurant", "cooking", "recipe", "burrito", "salad", "soup",
	)},
	{TopicSports, phrasePattern(
		"sport", "sports", "game", "match", "football", "soccer", "basketball", "baseball",
		"hockey", "tennis", "golf", "team", "playoffs", "league", "championship", "world cup",
		"super bowl", "season", "score", "coach", "stadium",
	)},
	{TopicEntertainment, phrasePattern(
		"movie", "movies", "film", "show", "shows", "tv", "series", "netflix", "music",
		"concert", "game", "games", "gaming", "book", "books", "podcast", "album", "band",
		"episode", "streaming",
	)},
	{TopicPersonal, phrasePattern(
		"family", "kids", "kid", "wife", "husband", "partner", "weekend", "vacation", "holiday",
		"home", "feel", "feeling", "birthday", "dog", "cat", "pet", "friend", "friends",
		"mom", "dad", "wedding", "hobby",
	)},
	{TopicWeather, phrasePattern(
		"weather", "rain", "raining", "sunny", "snow", "snowing", "cold", "hot", "temperature",
		"forecast", "storm", "windy", "humid", "freezing",
	)},
	{TopicOffice, phrasePattern(
		"printer", "desk", "kitchen", "break room", "elevator", "coffee machine", "copier",
		"parking", "chair", "cubicle", "thermostat", "microwave", "office", "conference room",
	)},
	{TopicTechnology, phrasePattern(
		"computer", "laptop", "software", "app", "phone", "internet", "wifi", "server", "code",
		"bug", "bugs", "update", "ai", "tech", "website", "database", "keyboard", "monitor",
	)},
	{TopicSocial, phrasePattern(
		"party", "drinks", "happy hour", "hangout", "hang out", "together", "everyone",
		"team lunch", "celebrate", "celebration", "get together", "potluck", "outing",
	)},
}

var (
	highUrgency   = phrasePattern("urgent", "emergency", "asap", "immediately", "right now", "critical", "right away")
	mediumUrgency = phrasePattern("soon", "today", "deadline", "quickly", "important", "when you can", "by tomorrow", "this afternoon", "hurry")

	formalPattern = phrasePattern(
		"please", "kindly", "regards", "sir", "madam", "i would like", "thank you",
		"appreciate", "sincerely", "pardon", "would you be so kind", "good morning",
		"good afternoon", "i apologize",
	)
	casualPattern = phrasePattern(
		"hey", "yo", "sup", "gonna", "wanna", "gotta", "lol", "haha", "dude", "yeah", "yep",
		"nope", "cool", "awesome", "omg", "btw", "ya", "kinda", "sorta", "lmao",
	)
)

type cueRule struct {
	set     func(*SocialCues)
	pattern *regexp.Regexp
}

var cueRules = []cueRule{
	{func(c *SocialCues) { c.Politeness = true }, phrasePattern("please", "thank you", "thanks", "excuse me", "pardon", "if you don't mind", "would you mind")},
	{func(c *SocialCues) { c.Humor = true }, phrasePattern("lol", "haha", "hehe", "joke", "joking", "funny", "lmao", "kidding")},
	{func(c *SocialCues) { c.Sarcasm = true }, phrasePattern("yeah right", "oh great", "sure whatever", "thanks a lot", "just great", "how wonderful", "big surprise", "oh joy")},
	{func(c *SocialCues) { c.Gratitude = true }, phrasePattern("thanks", "thank you", "appreciate", "grateful", "cheers")},
	{func(c *SocialCues) { c.Apology = true }, phrasePattern("sorry", "apologize", "apologies", "my bad", "my fault")},
	{func(c *SocialCues) { c.Compliment = true }, phrasePattern("nice job", "great job", "well done", "good work", "looks great", "you're awesome", "love your", "nice work", "great work")},
	{func(c *SocialCues) { c.Invitation = true }, phrasePattern("want to", "wanna", "join me", "join us", "let's", "come with", "care to", "how about we", "you in")},
}
