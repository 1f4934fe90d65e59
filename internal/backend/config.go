package backend

import "fmt"

// Type selects which backend the factory builds.
type Type string

const (
	APIBackend    Type = "api"
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

func (t Type) String() string {
	return string(t)
}

// IsValid reports whether the type is one of the known backends.
func (t Type) IsValid() bool {
	switch t {
	case APIBackend, SQLiteBackend, MemoryBackend:
		return true
	}
	return false
}

// Config holds what the factory needs for any backend type.
type Config struct {
	Type Type

	// api backend
	APIBaseURL string

	// sqlite backend; AMQP is optional and only enables change events
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// Validate checks the fields the selected type needs.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %q", c.Type)
	}

	switch c.Type {
	case APIBackend:
		if c.APIBaseURL == "" {
			return fmt.Errorf("API base URL is required for the api backend")
		}
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("database path is required for the sqlite backend")
		}
	case MemoryBackend:
	}
	return nil
}
