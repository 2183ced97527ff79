package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Sender identifies the source of a chat message.
type Sender int

const (
	// SenderUser represents the human user.
	SenderUser Sender = iota + 1
	// SenderBot represents the assistant.
	SenderBot
)

// Message is a single entry in a session's chat history.
type Message struct {
	Sender Sender
	Text   string
}

// QAEntry is one question/answer pair in the corpus.
// The question is stored in normalized form. Entries are immutable once
// loaded; duplicates are permitted and both remain candidates.
type QAEntry struct {
	Question string
	Answer   string
}

// Tier identifies which stage of the matching pipeline produced an answer.
type Tier int

const (
	// TierNoMatch means no tier cleared its confidence threshold.
	TierNoMatch Tier = iota
	// TierGreeting is a canned reply from the greetings table, answered
	// before the corpus is consulted.
	TierGreeting
	// TierExact is a normalized exact match against a corpus question.
	TierExact
	// TierKeyword is a keyword-overlap match for short inputs.
	TierKeyword
	// TierLexical is a TF-IDF cosine-similarity match.
	TierLexical
	// TierSemantic is a sentence-embedding similarity match.
	TierSemantic
	// TierGenerative is a free-form generated answer.
	TierGenerative
)

// String returns the tier name for logging.
func (t Tier) String() string {
	switch t {
	case TierGreeting:
		return "greeting"
	case TierExact:
		return "exact"
	case TierKeyword:
		return "keyword"
	case TierLexical:
		return "lexical"
	case TierSemantic:
		return "semantic"
	case TierGenerative:
		return "generative"
	default:
		return "nomatch"
	}
}

// MatchResult is the tagged result of one retrieval attempt.
// It is returned for observability and testing; it is never persisted.
type MatchResult struct {
	Answer string
	Tier   Tier
	Score  float64
}

// Step is the conversation state machine position of a session.
type Step int

const (
	// StepGreet is the initial state of a freshly created session.
	StepGreet Step = iota + 1
	// StepAskName waits for the user's name.
	StepAskName
	// StepAskEmail waits for a valid email address.
	StepAskEmail
	// StepAskPhoneNumber waits for a valid phone number.
	StepAskPhoneNumber
	// StepAskQuery waits for the first query; receiving it triggers the
	// one-time submission persist.
	StepAskQuery
	// StepAskQueryAgain answers subsequent queries in a self-loop.
	StepAskQueryAgain
	// StepTerminated marks a session ended by an exit phrase.
	StepTerminated
)

// String returns the step name for logging.
func (s Step) String() string {
	switch s {
	case StepGreet:
		return "greet"
	case StepAskName:
		return "askName"
	case StepAskEmail:
		return "askEmail"
	case StepAskPhoneNumber:
		return "askPhoneNumber"
	case StepAskQuery:
		return "askQuery"
	case StepAskQueryAgain:
		return "askQueryAgain"
	case StepTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Session is the durable per-user conversational state.
// It is owned exclusively by one session id and mutated only by the
// conversation state machine. Collected fields are populated monotonically
// and never cleared except on termination. History grows two entries per
// turn, in chronological order.
type Session struct {
	Id        string
	Step      Step
	Name      string
	Email     string
	Phone     string
	Submitted bool // set once the first query has been persisted
	History   []Message
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Submission is a completed user record stored after the first query.
type Submission struct {
	Id        ID
	Name      string
	Email     string
	Phone     string
	Query     string
	CreatedAt time.Time
}

// Tuple returns a string representation of the submission identity fields.
// This is used for generating deterministic IDs.
func (s *Submission) Tuple() string {
	return s.Name + "|" + s.Email + "|" + s.Phone + "|" + s.Query
}
