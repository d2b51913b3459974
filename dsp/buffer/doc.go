// Package buffer provides the two containers the loudness meter is built on:
// a fixed-capacity numeric [Ring] that keeps the most recent N values and
// their sum, and a channel-major multi-channel [Block] of float64 samples.
//
// Both types allocate only at construction (or when a Block is resized to a
// larger shape) so they can be reused in hot processing loops.
package buffer
