package ws

import "github.com/google/uuid"

// newConnID tags a connection for room membership logs and ws events.
func newConnID() string {
	return uuid.NewString()
}
