package interview

import (
	"time"

	"github.com/abhisek/interview/internal/screen"
	"github.com/abhisek/interview/internal/speech"
	"github.com/abhisek/interview/internal/submit"
)

// NoticeMsg carries a message that must be acknowledged before the
// interview can continue, such as the submission failure notice.
type NoticeMsg struct {
	Message string
}

// The messages below report work the interview screen started. They name
// the screen so they reach it while the result or history screen is on top.

type dictationDoneMsg struct {
	screen *InterviewScreen
	Result speech.Result
}

func (m dictationDoneMsg) Recipient() screen.Screen { return m.screen }

type submitDoneMsg struct {
	screen  *InterviewScreen
	Outcome *submit.Outcome
	Err     error
}

func (m submitDoneMsg) Recipient() screen.Screen { return m.screen }

// statusTickMsg polls the pipeline while a submission is running.
type statusTickMsg struct {
	screen *InterviewScreen
	at     time.Time
}

func (m statusTickMsg) Recipient() screen.Screen { return m.screen }
