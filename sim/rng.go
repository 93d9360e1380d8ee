// Partitioned randomness. Each stochastic subsystem draws from its own
// rand.Rand seeded from the run seed and the subsystem name, so changing how
// often one subsystem samples does not perturb the draws seen by another.

package sim

import (
	"hash/fnv"
	"math/rand"
)

// Subsystem names used to partition the run seed.
const (
	SubsystemArrivals    = "arrivals"
	SubsystemAcuity      = "acuity"
	SubsystemLOS         = "los"
	SubsystemDisposition = "disposition"
	SubsystemAbandonment = "abandonment"
	SubsystemTransfers   = "transfers"
)

// PartitionedRNG derives one independent rand.Rand per subsystem name from a
// single run seed.
type PartitionedRNG struct {
	seed    int64
	streams map[string]*rand.Rand
}

// NewPartitionedRNG creates a partitioned source for the given run seed.
func NewPartitionedRNG(seed int64) *PartitionedRNG {
	return &PartitionedRNG{seed: seed, streams: make(map[string]*rand.Rand)}
}

// Seed returns the run seed the streams are derived from.
func (p *PartitionedRNG) Seed() int64 {
	return p.seed
}

// Stream returns the rand.Rand for the named subsystem, creating it on first
// use. The same (seed, name) pair always yields the same draw sequence.
func (p *PartitionedRNG) Stream(name string) *rand.Rand {
	if r, ok := p.streams[name]; ok {
		return r
	}
	r := rand.New(rand.NewSource(deriveSeed(p.seed, name)))
	p.streams[name] = r
	return r
}

// deriveSeed mixes the run seed with the subsystem name through FNV-1a.
func deriveSeed(seed int64, name string) int64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return seed ^ int64(h.Sum64())
}
