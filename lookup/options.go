package lookup

import (
	"time"

	"github.com/hlt-bme-hu/attol-go/encoding"
)

// Options bundles the lookup engine's configuration: encoding, flag
// strategy, and traversal bounds. Zero values mean unlimited.
type Options struct {
	Encoding   encoding.Kind
	Strategy   Strategy
	MaxResults int           // 0 = unlimited
	MaxDepth   int           // 0 = unlimited
	TimeLimit  time.Duration // 0 = unlimited
}

// DefaultOptions returns UTF-8, OBEY, unbounded options.
func DefaultOptions() Options {
	return Options{Encoding: encoding.UTF8, Strategy: OBEY}
}
