package sim

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// AllocateOpts modifies allocation behavior.
type AllocateOpts struct {
	// Emergency lets the caller draw from the reserved-for-emergency
	// capacity subset.
	Emergency bool
}

// ResourceRegistry holds all resources, grouped into named pools. Allocation
// failure is an expected, frequent outcome in normal operation and is
// reported by boolean return, not by error.
type ResourceRegistry struct {
	resources map[string]*Resource
	pools     map[string][]*Resource
	nextOrder int
}

// NewResourceRegistry creates an empty registry.
func NewResourceRegistry() *ResourceRegistry {
	return &ResourceRegistry{
		resources: make(map[string]*Resource),
		pools:     make(map[string][]*Resource),
	}
}

// Register adds a resource to the registry and, when pool is non-empty, to
// the named pool. Registration order is remembered as the deterministic
// tie-breaker for pool selection.
func (rr *ResourceRegistry) Register(r *Resource, pool string) error {
	if r == nil {
		return fmt.Errorf("register: resource cannot be nil")
	}
	if _, exists := rr.resources[r.ID]; exists {
		return fmt.Errorf("register: resource %q already exists", r.ID)
	}
	if r.Capacity < 0 {
		return fmt.Errorf("register: resource %q has negative capacity %d", r.ID, r.Capacity)
	}
	if r.ReservedForEmergency > r.Capacity {
		return fmt.Errorf("register: resource %q reserves %d of capacity %d", r.ID, r.ReservedForEmergency, r.Capacity)
	}
	r.regOrder = rr.nextOrder
	rr.nextOrder++
	rr.resources[r.ID] = r
	if pool != "" {
		r.Pool = pool
		rr.pools[pool] = append(rr.pools[pool], r)
	}
	r.recordSample(0)
	return nil
}

// Get returns a resource by id, or nil.
func (rr *ResourceRegistry) Get(id string) *Resource {
	return rr.resources[id]
}

// Pool returns the resources in a named pool in registration order.
func (rr *ResourceRegistry) Pool(name string) []*Resource {
	return rr.pools[name]
}

// Allocate atomically checks and decrements availability on one resource.
// It fails without side effect when the id is unknown, the amount is not
// positive, or availability (minus the emergency reserve, for ordinary
// callers) is insufficient.
func (rr *ResourceRegistry) Allocate(resourceID, entityID string, amount int, now int64, opts AllocateOpts) bool {
	r := rr.resources[resourceID]
	if r == nil || amount <= 0 {
		return false
	}
	r.reclaim(now)

	usable := r.Available
	if !opts.Emergency {
		usable -= r.ReservedForEmergency
	}
	if usable < amount {
		return false
	}

	r.Available -= amount
	a := r.assignments[entityID]
	if a.Amount == 0 {
		a.Start = now
	}
	a.Amount += amount
	r.assignments[entityID] = a
	r.recordSample(now)
	return true
}

// ReleaseOpts modifies release behavior.
type ReleaseOpts struct {
	// SkipTurnover returns bed/room units straight to availability. Used
	// when an allocation is rolled back before the units were occupied.
	SkipTurnover bool
}

// Release returns an entity's entire holding on a resource. For bed/room
// kinds the units enter a turnover window instead of becoming available
// immediately. Returns false when the entity holds nothing.
func (rr *ResourceRegistry) Release(resourceID, entityID string, now int64) bool {
	r := rr.resources[resourceID]
	if r == nil {
		return false
	}
	a, ok := r.assignments[entityID]
	if !ok {
		return false
	}
	return rr.ReleaseUnits(resourceID, entityID, a.Amount, now, ReleaseOpts{})
}

// ReleaseUnits returns part of an entity's holding on a resource, leaving
// the remainder assigned. Returns false when the entity holds fewer units
// than requested.
func (rr *ResourceRegistry) ReleaseUnits(resourceID, entityID string, amount int, now int64, opts ReleaseOpts) bool {
	r := rr.resources[resourceID]
	if r == nil || amount <= 0 {
		return false
	}
	a, ok := r.assignments[entityID]
	if !ok || a.Amount < amount {
		return false
	}
	a.Amount -= amount
	if a.Amount == 0 {
		delete(r.assignments, entityID)
	} else {
		r.assignments[entityID] = a
	}
	if !opts.SkipTurnover && r.Kind.hasTurnover() && r.TurnoverTicks > 0 {
		r.turnover = append(r.turnover, turnoverSlot{Amount: amount, ReadyAt: now + r.TurnoverTicks})
	} else {
		r.Available += amount
	}
	r.recordSample(now)
	return true
}

// AllocateFromPool picks one resource in the pool that can satisfy the
// request, preferring higher condition, ties broken by registration order.
// Returns the chosen resource id and true on success.
func (rr *ResourceRegistry) AllocateFromPool(pool, entityID string, amount int, now int64, opts AllocateOpts) (string, bool) {
	candidates := rr.pools[pool]
	if len(candidates) == 0 {
		return "", false
	}
	ordered := make([]*Resource, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Condition != ordered[j].Condition {
			return ordered[i].Condition > ordered[j].Condition
		}
		return ordered[i].regOrder < ordered[j].regOrder
	})
	for _, r := range ordered {
		if rr.Allocate(r.ID, entityID, amount, now, opts) {
			return r.ID, true
		}
	}
	return "", false
}

// PoolAvailable returns the total allocatable units in a pool after lazy
// turnover reclaim, honoring the emergency reserve for ordinary callers.
func (rr *ResourceRegistry) PoolAvailable(pool string, now int64, opts AllocateOpts) int {
	total := 0
	for _, r := range rr.pools[pool] {
		r.reclaim(now)
		usable := r.Available
		if !opts.Emergency {
			usable -= r.ReservedForEmergency
		}
		if usable > 0 {
			total += usable
		}
	}
	return total
}

// PoolNextReady returns the earliest tick at which a pending turnover
// window in the pool ends, after lazy reclaim. Reports false when no units
// are in turnover.
func (rr *ResourceRegistry) PoolNextReady(pool string, now int64) (int64, bool) {
	var earliest int64
	found := false
	for _, r := range rr.pools[pool] {
		r.reclaim(now)
		for _, slot := range r.turnover {
			if !found || slot.ReadyAt < earliest {
				earliest = slot.ReadyAt
				found = true
			}
		}
	}
	return earliest, found
}

// AdjustCapacity resizes a resource (shift changes on staff pools). The
// capacity never drops below the units currently assigned or in turnover;
// the clamped remainder is absorbed as overtime and logged.
func (rr *ResourceRegistry) AdjustCapacity(resourceID string, delta int, now int64) bool {
	r := rr.resources[resourceID]
	if r == nil {
		return false
	}
	r.reclaim(now)
	target := r.Capacity + delta
	floor := r.assignedTotal() + r.inTurnover()
	if target < floor {
		logrus.Warnf("adjust capacity: %s target %d below %d in use, holding at %d (overtime)", resourceID, target, floor, floor)
		target = floor
	}
	r.Available += target - r.Capacity
	if r.Available < 0 {
		r.Available = 0
	}
	r.Capacity = target
	r.recordSample(now)
	return true
}

// Utilization returns the time-weighted average occupancy fraction of a
// resource over [from, to). Returns 0 for unknown resources, empty windows,
// or zero capacity.
func (rr *ResourceRegistry) Utilization(resourceID string, from, to int64) float64 {
	r := rr.resources[resourceID]
	if r == nil || to <= from {
		return 0
	}
	r.reclaim(to)

	// Occupancy is piecewise constant between samples.
	var integral float64
	prevTime := from
	prevFrac := 0.0
	for _, s := range r.samples {
		if s.Time <= from {
			if s.Capacity > 0 {
				prevFrac = float64(s.Occupied) / float64(s.Capacity)
			}
			continue
		}
		if s.Time >= to {
			break
		}
		integral += prevFrac * float64(s.Time-prevTime)
		prevTime = s.Time
		if s.Capacity > 0 {
			prevFrac = float64(s.Occupied) / float64(s.Capacity)
		} else {
			prevFrac = 0
		}
	}
	integral += prevFrac * float64(to-prevTime)
	return integral / float64(to-from)
}

// CheckInvariants verifies the accounting identity on every resource:
// 0 <= available <= capacity, and available + assigned + in-turnover ==
// capacity. Returns a descriptive error for the first violation found.
func (rr *ResourceRegistry) CheckInvariants() error {
	ids := make([]string, 0, len(rr.resources))
	for id := range rr.resources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		r := rr.resources[id]
		if r.Available < 0 || r.Available > r.Capacity {
			return fmt.Errorf("resource %q: available %d outside [0, %d]", id, r.Available, r.Capacity)
		}
		if got := r.Available + r.assignedTotal() + r.inTurnover(); got != r.Capacity {
			return fmt.Errorf("resource %q: available %d + assigned %d + turnover %d != capacity %d",
				id, r.Available, r.assignedTotal(), r.inTurnover(), r.Capacity)
		}
	}
	return nil
}
