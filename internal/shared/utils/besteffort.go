package utils

import "fmt"

// BestEffort runs a side operation whose failure must never abort the
// surrounding logical operation. Errors and panics are logged with the given
// fields and then dropped. The return value only tells the caller whether the
// operation succeeded, e.g. to record a follow-up.
func BestEffort(op string, fields map[string]interface{}, fn func() error) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			LogError("⚠️ best-effort "+op+" panicked", fmt.Errorf("panic: %v", r), fields)
			ok = false
		}
	}()

	if err := fn(); err != nil {
		LogError("⚠️ best-effort "+op+" failed", err, fields)
		return false
	}
	return true
}
