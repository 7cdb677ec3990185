// Package errors defines the error taxonomy shared by the frozen pipeline.
//
// Warnings (missing assets, missing artifacts) are collected and reported;
// errors (no assets produced, packaging tool failure, invalid configuration)
// stop the stage that produced them.
package errors

import (
	"sync"
)

// Collector accumulates the non-fatal problems raised during one run.
type Collector struct {
	warnings []error
	mutex    sync.RWMutex
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{warnings: make([]error, 0)}
}

// Add records err as a warning. Errors that are not already warnings are
// converted with AsWarning.
func (c *Collector) Add(err error) {
	if err == nil {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.warnings = append(c.warnings, AsWarning(err))
}

// Warnings returns a copy of the collected warnings.
func (c *Collector) Warnings() []error {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	result := make([]error, len(c.warnings))
	copy(result, c.warnings)
	return result
}
