package database

import (
	"context"
	"time"
)

// Checker is a connection that can report its health.
type Checker interface {
	Name() string
	Health(ctx context.Context) error
}

// CheckAll pings every checker with a shared timeout and returns "ok" or the
// error text per connection.
func CheckAll(ctx context.Context, timeout time.Duration, checkers ...Checker) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out := make(map[string]string, len(checkers))
	for _, c := range checkers {
		if c == nil {
			continue
		}
		if err := c.Health(ctx); err != nil {
			out[c.Name()] = err.Error()
			continue
		}
		out[c.Name()] = "ok"
	}
	return out
}
