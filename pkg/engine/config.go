// Package engine executes agent workflow graphs: it validates the graph,
// computes a dependency-respecting level order, dispatches nodes with
// per-level fan-out, and tracks in-flight executions with bounded capacity.
package engine

import "time"

// Config holds the engine's resource ceilings and timing knobs. The zero
// value of any field falls back to its default.
type Config struct {
	MaxWorkflowNodes    int           // Hard ceiling on nodes per graph
	MaxWorkflowEdges    int           // Hard ceiling on edges per graph
	MaxNameLength       int           // Identifier and field name length cap
	MaxExecutionTime    time.Duration // Wall-clock budget for a whole run
	MaxResultSize       int           // Serialized size cap for a stored node result
	MaxActiveExecutions int           // Back-pressure ceiling on concurrent runs
	SweepInterval       time.Duration // Stale tracker sweep period
	StaleThreshold      time.Duration // Age after which a tracker is evicted
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		MaxWorkflowNodes:    1000,
		MaxWorkflowEdges:    5000,
		MaxNameLength:       256,
		MaxExecutionTime:    5 * time.Minute,
		MaxResultSize:       10 * 1024 * 1024,
		MaxActiveExecutions: 10000,
		SweepInterval:       60 * time.Second,
		StaleThreshold:      time.Hour,
	}
}

// withDefaults backfills unset fields so partially populated configs behave.
func (c Config) withDefaults() Config {
	def := DefaultConfig()

	if c.MaxWorkflowNodes <= 0 {
		c.MaxWorkflowNodes = def.MaxWorkflowNodes
	}

	if c.MaxWorkflowEdges <= 0 {
		c.MaxWorkflowEdges = def.MaxWorkflowEdges
	}

	if c.MaxNameLength <= 0 {
		c.MaxNameLength = def.MaxNameLength
	}

	if c.MaxExecutionTime <= 0 {
		c.MaxExecutionTime = def.MaxExecutionTime
	}

	if c.MaxResultSize <= 0 {
		c.MaxResultSize = def.MaxResultSize
	}

	if c.MaxActiveExecutions <= 0 {
		c.MaxActiveExecutions = def.MaxActiveExecutions
	}

	if c.SweepInterval <= 0 {
		c.SweepInterval = def.SweepInterval
	}

	if c.StaleThreshold <= 0 {
		c.StaleThreshold = def.StaleThreshold
	}

	return c
}
