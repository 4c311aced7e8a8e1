// Package id provides centralized ID generation for the runtime.
//
// All identifiers are prefixed ULIDs:
//   - Lexicographic sortability for log correlation
//   - Typed wrappers so a timer handle is never passed as a request id
//   - Prefixes keep logs readable (sess_*, req_*, tmr_*)
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// SessionID identifies a host session
type SessionID string

// RequestID correlates a generation request with its events
type RequestID string

// TimerID identifies a scheduled timer or interval
type TimerID string

const (
	SessionPrefix = "sess"
	RequestPrefix = "req"
	TimerPrefix   = "tmr"
)

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand with monotonic
// entropy, so ids created in the same millisecond still sort in order.
func NewGenerator() *Generator {
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new ULID as a string
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// NewSessionID generates a new session ID
func NewSessionID() SessionID {
	return SessionID(Default().GenerateWithPrefix(SessionPrefix))
}

// NewRequestID generates a new request ID
func NewRequestID() RequestID {
	return RequestID(Default().GenerateWithPrefix(RequestPrefix))
}

// NewTimerID generates a new timer handle
func NewTimerID() TimerID {
	return TimerID(Default().GenerateWithPrefix(TimerPrefix))
}

func (id SessionID) String() string { return string(id) }
func (id RequestID) String() string { return string(id) }
func (id TimerID) String() string   { return string(id) }

// IsValid checks if an ID string is a valid ULID, with or without prefix
func IsValid(id string) bool {
	_, err := Parse(id)
	return err == nil
}

// Parse parses a ULID string, stripping any prefix
func Parse(id string) (ulid.ULID, error) {
	if i := strings.LastIndexByte(id, '_'); i >= 0 {
		id = id[i+1:]
	}
	return ulid.Parse(id)
}

// Timestamp extracts the creation time from an ID
func Timestamp(id string) (time.Time, error) {
	parsed, err := Parse(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
