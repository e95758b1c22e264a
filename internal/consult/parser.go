package consult

import (
	"errors"
	"regexp"
	"strings"
)

const (
	defaultAdvice = "Consult a doctor."

	// criticalOverrideThreshold is how many critical symptoms force High urgency.
	criticalOverrideThreshold = 6
)

var ErrEmptyReply = errors.New("completion reply is empty")

var (
	criticalSymptoms = []string{"fever", "headache", "sore throat", "fatigue", "dizziness", "chest pain", "cough", "rash"}

	adviceSentence   = regexp.MustCompile(`(?i)it is (?:recommended|important|advised)[^.]+\.`)
	urgencyLevelNear = regexp.MustCompile(`urgency level.*?(low|moderate|high)`)

	// Checked in order against the lower-cased reply.
	urgencyPhrases = []struct {
		phrase  string
		urgency Urgency
	}{
		{"high level of urgency", UrgencyHigh},
		{"moderate level of urgency", UrgencyMedium},
		{"low level of urgency", UrgencyLow},
	}
)

// ParseReply extracts condition, urgency and advice from a free-text model
// reply. symptoms is the caller's comma-separated list and drives the
// critical-symptom override.
func ParseReply(reply, symptoms string) (Result, error) {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return Result{}, ErrEmptyReply
	}
	lines := splitLines(reply)

	var condition, urgency, advice string
	for _, line := range lines {
		lower := strings.ToLower(line)
		switch {
		case strings.Contains(lower, "condition:") && condition == "":
			condition = valueAfterColon(line)
		case strings.Contains(lower, "urgency:") && urgency == "":
			urgency = valueAfterColon(line)
		case strings.Contains(lower, "advice:") && advice == "":
			advice = valueAfterColon(line)
		}
	}

	if condition == "" {
		condition = strings.TrimSpace(lines[0])
	}

	if advice == "" {
		if m := adviceSentence.FindString(reply); m != "" {
			advice = strings.TrimSpace(m)
		}
	}
	if advice == "" {
		advice = defaultAdvice
	}

	if CountCriticalSymptoms(symptoms) >= criticalOverrideThreshold {
		urgency = string(UrgencyHigh)
	}

	return Result{
		Condition: condition,
		Urgency:   ResolveUrgency(urgency, reply),
		Advice:    advice,
	}, nil
}

// ResolveUrgency maps a free-form urgency label onto the Urgency enum,
// falling back to phrases in the full reply when the label is unusable.
func ResolveUrgency(label, reply string) Urgency {
	if u, ok := matchLevel(strings.ToLower(label)); ok {
		return u
	}

	text := strings.ToLower(reply)
	for _, p := range urgencyPhrases {
		if strings.Contains(text, p.phrase) {
			return p.urgency
		}
	}
	if m := urgencyLevelNear.FindStringSubmatch(text); m != nil {
		u, _ := matchLevel(m[1])
		return u
	}
	return UrgencyUnknown
}

func matchLevel(s string) (Urgency, bool) {
	switch {
	case strings.Contains(s, "high"):
		return UrgencyHigh, true
	case strings.Contains(s, "moderate"), strings.Contains(s, "medium"):
		return UrgencyMedium, true
	case strings.Contains(s, "low"):
		return UrgencyLow, true
	}
	return "", false
}

// CountCriticalSymptoms counts comma-separated entries that exactly name a
// critical symptom. Repeated entries count each time.
func CountCriticalSymptoms(symptoms string) int {
	n := 0
	for _, s := range normalizeList(symptoms) {
		if containsString(criticalSymptoms, s) {
			n++
		}
	}
	return n
}

func normalizeList(text string) []string {
	out := []string{}
	for _, t := range strings.Split(strings.ToLower(text), ",") {
		trimmed := strings.TrimSpace(t)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func valueAfterColon(line string) string {
	_, after, _ := strings.Cut(line, ":")
	return strings.TrimSpace(after)
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Split(strings.ReplaceAll(s, "\r", "\n"), "\n")
}
