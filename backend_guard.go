package particlesim

import (
	"fmt"
)

// backendTag records the backend a selector latched. A session only ever
// runs one backend.
type backendTag struct {
	set  bool
	name Backend
}

// ensureSingleBackend enforces the single backend invariant. A request for a
// different backend than the one already latched is a wiring bug and fails
// fast.
func ensureSingleBackend(tag *backendTag, b Backend, logger Logger) {
	if tag == nil {
		panic("ensureSingleBackend: tag is nil")
	}
	if tag.set {
		if tag.name != b {
			logger.Errorf("Multiple backends installed: %s and %s", tag.name, b)
			panic(fmt.Sprintf("Multiple backends installed: %s and %s", tag.name, b))
		}
		return
	}
	tag.set = true
	tag.name = b
}
