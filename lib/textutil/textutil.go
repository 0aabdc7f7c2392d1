package textutil

import (
	"regexp"
	"strings"
)

// Kind is the class a text fragment was matched to.
type Kind int

const (
	KindNone Kind = iota
	KindDate
	KindJudge
	KindFirm
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindDate:
		return "date"
	case KindJudge:
		return "judge"
	case KindFirm:
		return "firm"
	case KindTime:
		return "time"
	default:
		return "none"
	}
}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2,4}`),
	regexp.MustCompile(`^\d{1,2}-\d{1,2}-\d{2,4}`),
	regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}`),
}

var timePattern = regexp.MustCompile(`^\d{1,2}:\d{2}`)

var (
	judgeKeywords = []string{"hon.", "judge"}
	firmKeywords  = []string{"law", "attorney", "esq", "llc", "pllc", "pc", "&"}
)

// ContainsAny reports whether the lowercased text contains any of the
// (already lowercase) keywords.
func ContainsAny(text string, keywords []string) bool {
	text = strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// IsDate matches D/D/Y, D-D-Y and Y-M-D at the start of the fragment.
func IsDate(text string) bool {
	for _, re := range datePatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// IsTime matches H:MM at the start of the fragment.
func IsTime(text string) bool {
	return timePattern.MatchString(text)
}

func IsJudge(text string) bool {
	return ContainsAny(text, judgeKeywords)
}

func IsFirm(text string) bool {
	return ContainsAny(text, firmKeywords)
}

// Classify runs the matchers in precedence order (date, judge, firm, time)
// and returns the first class that matches. A fragment such as
// "Hon. Smith & Co" matches both judge and firm and is reported as a judge.
func Classify(text string) Kind {
	switch {
	case IsDate(text):
		return KindDate
	case IsJudge(text):
		return KindJudge
	case IsFirm(text):
		return KindFirm
	case IsTime(text):
		return KindTime
	}
	return KindNone
}
