package email

import (
	"context"
	"time"
)

// newSendContext detaches cancellation from the parent so a handler-scoped
// context cannot abort an in-flight committee notification, while still
// bounding the send with a timeout.
func newSendContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(context.WithoutCancel(parent), timeout)
}
