package domain

// Answer is one selectable choice of a question.
type Answer struct {
	Text    string `json:"text"`
	Correct bool   `json:"is_correct"`
}

// Question is a multiple-choice question as stored in the bank. Immutable once loaded.
type Question struct {
	Ticket      int      `json:"ticket"`
	Number      int      `json:"number"` // ordinal inside the ticket, 1-based
	Text        string   `json:"question_text"`
	Answers     []Answer `json:"answers"`
	Explanation string   `json:"explanation,omitempty"`
	Image       string   `json:"image,omitempty"`
	ErrorRate   string   `json:"error_rate,omitempty"`
}

// Ticket is a numbered bundle of questions.
type Ticket struct {
	Number    int        `json:"ticket_number"`
	Questions []Question `json:"questions"`
}

// HistoryEntry records the outcome of one answered question of a run.
type HistoryEntry struct {
	Ordinal int  `json:"ordinal"` // position+1 at the time of answering
	Correct bool `json:"correct"`
}

// RunState is the lifecycle state of a session run.
type RunState string

const (
	StateIdle       RunState = "idle"
	StateInProgress RunState = "in_progress"
	StateFinished   RunState = "finished"
	StateCancelled  RunState = "cancelled"
)

// SessionState is a read-only copy of a user's session.
type SessionState struct {
	UserID       string         `json:"userId"`
	Mode         Mode           `json:"mode"`
	ActiveTicket int            `json:"activeTicket"`
	State        RunState       `json:"state"`
	Position     int            `json:"position"`
	Score        int            `json:"score"`
	History      []HistoryEntry `json:"history"`
	Materialized int            `json:"materialized"` // length of the sampled order, 0 if none
}

// Display is what a transport needs to render the current question.
type Display struct {
	Question    Question `json:"question"`
	ChoiceCount int      `json:"choiceCount"`
	Position    int      `json:"position"` // 1-based
	Target      int      `json:"target"`
	Mode        Mode     `json:"mode"`
}

// AnswerSubmission is an answer coming from a transport. Ordinal pins the question the
// user was looking at; zero skips that check.
type AnswerSubmission struct {
	Ordinal int
	Index   int
}

// AnswerResult summarizes the outcome of a submission.
type AnswerResult struct {
	Correct     bool   `json:"correct"`
	Explanation string `json:"explanation,omitempty"`
	Finished    bool   `json:"finished"`
}

// Summary is the score report of a run.
type Summary struct {
	Mode       Mode     `json:"mode"`
	State      RunState `json:"state"`
	Scored     int      `json:"scored"`
	Attempted  int      `json:"attempted"`
	Target     int      `json:"target"`
	Percentage float64  `json:"percentage"`
	Passed     bool     `json:"passed"`
}

// Step is the outcome of asking for the next question: either a question to show or the
// summary of a run that has no more questions.
type Step struct {
	Display *Display `json:"display,omitempty"`
	Summary *Summary `json:"summary,omitempty"`
}

// Stats is the running tally shown on demand.
type Stats struct {
	Mode       Mode    `json:"mode"`
	Score      int     `json:"score"`
	Attempted  int     `json:"attempted"`
	Percentage float64 `json:"percentage"`
}

// CommandKind names a menu-level action a transport can trigger.
type CommandKind string

const (
	CommandMode    CommandKind = "mode"
	CommandTicket  CommandKind = "ticket"
	CommandStart   CommandKind = "start"
	CommandRestart CommandKind = "restart"
	CommandHelp    CommandKind = "help"
	CommandStats   CommandKind = "stats"
)

// EngineResult is the reply to a command.
type EngineResult struct {
	Kind    CommandKind `json:"kind"`
	Mode    *Mode       `json:"mode,omitempty"`
	Ticket  int         `json:"ticket,omitempty"`
	Step    *Step       `json:"step,omitempty"`
	Stats   *Stats      `json:"stats,omitempty"`
	Modes   []Mode      `json:"modes,omitempty"`
	Tickets []int       `json:"tickets,omitempty"`
}
