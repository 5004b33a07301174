package river

import "github.com/google/uuid"

// NewID generates a fresh unique identifier, used for storage ids (when not
// assigned explicitly) and run ids (always fresh per run, §3).
func NewID() string {
	return uuid.NewString()
}
