// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral helpers shared by reactor implementations.

package reactor

// DefaultMaxEvents is the Wait batch size when none is configured.
const DefaultMaxEvents = 10
