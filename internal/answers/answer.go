// Package answers holds the question/answer session edited on the interview
// screen.
package answers

// Number identifies a question within a session.
type Number int

// QuestionAnswer is one question and the user's answer to it.
type QuestionAnswer struct {
	Number   Number `json:"number"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Session is the ordered set of question/answer pairs for one interview.
// Order only matters for display.
type Session []QuestionAnswer

// Clone returns a copy that shares no backing array with s.
func (s Session) Clone() Session {
	if s == nil {
		return nil
	}
	out := make(Session, len(s))
	copy(out, s)
	return out
}

// Numbers returns the question numbers in session order.
func (s Session) Numbers() []Number {
	out := make([]Number, len(s))
	for i, qa := range s {
		out[i] = qa.Number
	}
	return out
}

// Find returns the entry for number, if present.
func (s Session) Find(number Number) (QuestionAnswer, bool) {
	for _, qa := range s {
		if qa.Number == number {
			return qa, true
		}
	}
	return QuestionAnswer{}, false
}

// Answered counts entries with a non-empty answer.
func (s Session) Answered() int {
	n := 0
	for _, qa := range s {
		if qa.Answer != "" {
			n++
		}
	}
	return n
}

// placeholder is the single entry used when the entry payload is unusable.
func placeholder() Session {
	return Session{{}}
}
