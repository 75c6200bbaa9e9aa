package memory

import (
	"sync"
	"time"
)

var testEpoch = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

// steppingClock returns a clock that advances one second per call.
func steppingClock() func() time.Time {
	var mu sync.Mutex
	n := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		n++
		return testEpoch.Add(time.Duration(n) * time.Second)
	}
}
