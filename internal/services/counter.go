package services

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

// RunCounter tallies per-label outcomes across one ingestion run, mirroring
// the totals into the report log at the end.
type RunCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewRunCounter() *RunCounter {
	return &RunCounter{counts: map[string]int{}}
}

func (c *RunCounter) Add(label string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[label]++
}

func (c *RunCounter) AddN(label string, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[label] += n
}

func (c *RunCounter) Get(label string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[label]
}

// Report logs the run totals, one line per label in alphabetic order.
func (c *RunCounter) Report() {
	c.mu.Lock()
	defer c.mu.Unlock()

	labels := make([]string, 0, len(c.counts))
	for label := range c.counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var lines []string
	for _, label := range labels {
		lines = append(lines, fmt.Sprintf("%-24s %d", label, c.counts[label]))
	}
	log.Infof("run report:\n%s", strings.Join(lines, "\n"))
}
