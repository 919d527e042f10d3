package orchestrator

// #region imports
import (
	"strings"
)

// #endregion

// #region keywords

// intentKeywords are checked in order; the first intent with a hit wins.
// Image precedes analyze so "draw my persona" is an image request.
var intentKeywords = []struct {
	intent   Intent
	keywords []string
}{
	{IntentImage, []string{
		"그려", "그림", "이미지", "사진", "초상화",
		"draw", "picture", "image", "portrait", "illustrat",
	}},
	{IntentDiary, []string{
		"일기", "기록해", "다이어리", "오늘 하루",
		"diary", "journal", "log my day", "write down",
	}},
	{IntentWeather, []string{
		"날씨", "기온", "미세먼지", "비 와", "눈 와", "자외선",
		"weather", "temperature", "forecast", "air quality", "uv index",
	}},
	{IntentRecommend, []string{
		"추천", "뭐 하면", "뭘 하면", "어떻게 하면",
		"recommend", "suggest", "what should i", "advice", "tips",
	}},
	{IntentAnalyze, []string{
		"분석", "성격", "페르소나", "나는 어떤", "성향",
		"analy", "personality", "persona", "who am i", "what type",
	}},
}

// followUpWords are short prompts that typically continue the previous topic.
var followUpWords = []string{
	"and", "also", "what about", "how about", "then", "more",
	"그럼", "그리고", "또", "더", "그건",
}

// #endregion

// #region classify

const (
	keywordConfidence  = 0.6
	inheritConfidence  = 0.4
	fallbackConfidence = 0.3
)

// ClassifyIntent routes text by keyword heuristics. No model call.
// prev carries the previous message's intent for context inheritance.
func ClassifyIntent(text string, prev ...Intent) IntentClassification {
	lower := strings.ToLower(strings.TrimSpace(text))

	for _, group := range intentKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return IntentClassification{Intent: group.intent, Confidence: keywordConfidence, Source: SourceKeyword}
			}
		}
	}

	// Short follow-ups inherit the previous non-chat intent.
	if len(prev) > 0 && prev[0] != IntentChat && prev[0] != "" && isFollowUp(lower) {
		return IntentClassification{Intent: prev[0], Confidence: inheritConfidence, Source: SourceKeyword}
	}

	return IntentClassification{Intent: IntentChat, Confidence: fallbackConfidence, Source: SourceKeyword}
}

// #endregion

// #region follow-up-detection

func isFollowUp(lower string) bool {
	if len(strings.Fields(lower)) > 6 {
		return false
	}
	for _, fw := range followUpWords {
		if strings.HasPrefix(lower, fw) {
			return true
		}
	}
	// "?" alone, or a very short question
	if strings.HasSuffix(lower, "?") && len(strings.Fields(lower)) <= 2 {
		return true
	}
	return false
}

// #endregion
