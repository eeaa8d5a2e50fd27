package erasure

import "time"

// TimeProvider is an interface that provides a Now method to get the current time.
type TimeProvider interface {
	Now() time.Time
}

// Real implementation for production.
type systemTimeProvider struct{}

func (systemTimeProvider) Now() time.Time { return time.Now().UTC() }

// SystemTimeProvider returns a TimeProvider backed by the wall clock in UTC.
func SystemTimeProvider() TimeProvider { return systemTimeProvider{} }
