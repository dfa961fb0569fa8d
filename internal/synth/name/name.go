// Package name provides collision-resistant output file names.
package name

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Prefix starts every generated output file name.
const Prefix = "synthesized_"

// Extension ends every generated output file name.
const Extension = ".wav"

// Generate creates a new unique output file name.
// Format: synthesized_<32 hex chars>.wav
// Example: synthesized_9f86d081884c4d659a2feaa0c55ad015.wav
func Generate() string {
	u, err := uuid.NewRandom()
	if err != nil {
		// Fallback to a nanosecond timestamp if the random source fails
		return fmt.Sprintf("%s%d%s", Prefix, time.Now().UnixNano(), Extension)
	}
	return Prefix + hex.EncodeToString(u[:]) + Extension
}
