// Package id provides unique, monotonically increasing working file
// identifiers.
package id

import (
	"fmt"
	"sync/atomic"
	"time"
)

var seq atomic.Uint64

// Generate creates a new identifier unique within the process.
// Format: <unix-millis>-<sequence>
// Example: 1701432000123-7
func Generate() string {
	return fmt.Sprintf("%d-%d", time.Now().UnixMilli(), seq.Add(1))
}
