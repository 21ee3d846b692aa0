package history

import (
	"fmt"
	"time"
)

// Revision is the state of an article immediately after one edit.
// Size holds from Timestamp until the next revision's Timestamp.
type Revision struct {
	Timestamp time.Time
	Size      int64
	Comment   string
}

// Record is the persisted and wire shape of one revision.
// Comment is nil when the upstream suppressed it (commenthidden).
type Record struct {
	Size          int64   `json:"size"`
	Timestamp     string  `json:"timestamp"`
	Comment       *string `json:"comment,omitempty"`
	CommentHidden bool    `json:"commenthidden,omitempty"`
}

// ParseOutcome tags how a Record was turned into a Revision.
type ParseOutcome int

const (
	// OutcomeComplete means every field was present.
	OutcomeComplete ParseOutcome = iota
	// OutcomeCommentDefaulted means the comment was absent and defaulted to "".
	OutcomeCommentDefaulted
)

func (o ParseOutcome) String() string {
	switch o {
	case OutcomeComplete:
		return "complete"
	case OutcomeCommentDefaulted:
		return "comment_defaulted"
	default:
		return fmt.Sprintf("ParseOutcome(%d)", int(o))
	}
}

// ParsedRevision is the result of ParseRecord.
type ParsedRevision struct {
	Revision Revision
	Outcome  ParseOutcome
}

// ParseRecord validates a Record and converts it to a Revision.
// The timestamp must be ISO-8601 (RFC 3339) and the size non-negative.
func ParseRecord(rec Record) (ParsedRevision, error) {
	ts, err := time.Parse(time.RFC3339, rec.Timestamp)
	if err != nil {
		return ParsedRevision{}, fmt.Errorf("invalid revision timestamp %q: %w", rec.Timestamp, err)
	}
	if rec.Size < 0 {
		return ParsedRevision{}, fmt.Errorf("invalid revision size %d at %s", rec.Size, rec.Timestamp)
	}

	parsed := ParsedRevision{
		Revision: Revision{Timestamp: ts, Size: rec.Size},
		Outcome:  OutcomeCommentDefaulted,
	}
	if rec.Comment != nil {
		parsed.Revision.Comment = *rec.Comment
		parsed.Outcome = OutcomeComplete
	}
	return parsed, nil
}
