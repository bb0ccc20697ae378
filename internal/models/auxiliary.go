package models

import "time"

// The types below back the remaining tables named in the repository
// layer's table list (spec §4.5) whose owning agents (diary writer, todo/
// knowledge extraction, conversation history, Pomodoro timer) are external
// collaborators out of this repository's scope. The repository layer still
// owns their persistence, soft-delete, and retention sweep.

// Diary is a single day's narrative summary.
type Diary struct {
	ID        string
	Date      string
	Content   string
	Deleted   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Todo is a single extracted action item.
type Todo struct {
	ID              string
	Content         string
	Done            bool
	SourceActionID  string
	Deleted         bool
	CreatedAt       time.Time
}

// Knowledge is a single extracted fact or note, optionally traced back to
// the Action it was extracted from.
type Knowledge struct {
	ID             string
	Content         string
	SourceActionID string
	Deleted        bool
	CreatedAt      time.Time
}

// Conversation groups a sequence of chat Messages (chat/LLM client wiring
// is out of scope; this is the persisted shape only).
type Conversation struct {
	ID        string
	Title     string
	Deleted   bool
	CreatedAt time.Time
}

// Message is a single turn within a Conversation.
type Message struct {
	ID             string
	ConversationID string
	Role           string
	Content        string
	CreatedAt      time.Time
}

// LLMModel records a configured LLM model entry; GetActiveModelInfo (§6)
// reads the row with Active=true.
type LLMModel struct {
	ID       string
	Name     string
	Provider string
	Active   bool
}

// PomodoroSession is a single Pomodoro timer interval (the timer state
// machine itself is out of scope; this is the persisted record only).
type PomodoroSession struct {
	ID        string
	StartTime time.Time
	EndTime   time.Time
	Completed bool
	CreatedAt time.Time
}
