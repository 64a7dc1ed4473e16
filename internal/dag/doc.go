// Package dag builds the job dependency graph of a workflow and executes it
// concurrently on a worker pool. Jobs without `needs` edges are independent
// and run in parallel; a failing job skips its transitive dependents.
package dag
