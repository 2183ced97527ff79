package badger

import (
	"fmt"

	"github.com/poiesic/smartbot/core"
)

// Key prefixes for different data types
const (
	sessionRecordPrefix    = "sesrec"
	submissionRecordPrefix = "subrec"
)

// makeSessionKey generates a key for a session by its id.
func makeSessionKey(id string) []byte {
	return []byte(sessionRecordPrefix + ":" + id)
}

// makeSubmissionKey generates a key for a submission by ID.
func makeSubmissionKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", submissionRecordPrefix, id))
}
