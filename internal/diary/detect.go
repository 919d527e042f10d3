package diary

import "strings"

// #region detect

// activityPatterns map phrases to the activity they signal.
var activityPatterns = []struct {
	activity string
	phrases  []string
}{
	{"exercise", []string{"운동", "헬스", "gym", "workout", "exercise"}},
	{"running", []string{"달리기", "러닝", "ran ", "running", "jog"}},
	{"walking", []string{"산책", "걷", "walk"}},
	{"reading", []string{"독서", "책", "read", "book"}},
	{"cooking", []string{"요리", "cook", "bake"}},
	{"socializing", []string{"친구", "모임", "friends", "party", "dinner with"}},
	{"work", []string{"회의", "업무", "meeting", "deadline", "office"}},
	{"study", []string{"공부", "study", "class", "lecture"}},
	{"music", []string{"음악", "노래", "music", "concert", "guitar", "piano"}},
	{"travel", []string{"여행", "trip", "travel", "flight"}},
	{"meditation", []string{"명상", "meditat", "yoga", "요가"}},
}

// DetectActivities returns the activities mentioned in text, in table order.
func DetectActivities(text string) []string {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return nil
	}
	var found []string
	for _, p := range activityPatterns {
		for _, ph := range p.phrases {
			if strings.Contains(lower, ph) {
				found = append(found, p.activity)
				break
			}
		}
	}
	return found
}

// #endregion detect
