// Defines hospital resources: staff pools, beds, rooms, and equipment.
// Beds and rooms carry turnover semantics: a released unit only becomes
// allocatable again after the turnover window has elapsed, reclaimed lazily
// on the next allocate or utilization touch.

package sim

// ResourceKind is the closed resource-type enumeration. All kind-specific
// behavior is looked up through it; there is no string comparison per call.
type ResourceKind int

const (
	KindStaff ResourceKind = iota
	KindBed
	KindRoom
	KindEquipment
)

var resourceKindNames = [...]string{"staff", "bed", "room", "equipment"}

func (k ResourceKind) String() string {
	if k < 0 || int(k) >= len(resourceKindNames) {
		return "unknown"
	}
	return resourceKindNames[k]
}

// hasTurnover reports whether released units of this kind pass through a
// turnover window before becoming allocatable again.
func (k ResourceKind) hasTurnover() bool {
	return k == KindBed || k == KindRoom
}

// ParseResourceKind maps a config string to a ResourceKind.
func ParseResourceKind(s string) (ResourceKind, bool) {
	for k, name := range resourceKindNames {
		if name == s {
			return ResourceKind(k), true
		}
	}
	return 0, false
}

// assignment records units held by one entity.
type assignment struct {
	Amount int
	Start  int64
}

// turnoverSlot is a batch of units returning to availability at ReadyAt.
type turnoverSlot struct {
	Amount  int
	ReadyAt int64
}

// utilSample is one occupancy observation for windowed utilization averages.
type utilSample struct {
	Time     int64
	Occupied int
	Capacity int
}

// Resource is a named pool of interchangeable units (e.g. 12 ED beds, 4
// ICU isolation rooms, the day-shift nursing pool). Invariants, outside
// turnover: available + sum(assignments) == capacity and
// 0 <= available <= capacity. During turnover the in-turnover units are
// excluded from both sides.
type Resource struct {
	ID       string
	Pool     string
	Kind     ResourceKind
	Capacity int

	// Available counts units allocatable right now (after lazy reclaim).
	Available int

	// Condition ranks this resource against others in the same pool when a
	// request could be satisfied by several candidates. Higher is preferred.
	Condition float64

	// ReservedForEmergency is the capacity subset ordinary allocations must
	// leave untouched. Emergency-flagged callers may dip into it.
	ReservedForEmergency int

	// TurnoverTicks is the post-release delay for beds/rooms; ignored for
	// kinds without turnover.
	TurnoverTicks int64

	assignments map[string]assignment
	turnover    []turnoverSlot
	samples     []utilSample
	regOrder    int
}

// NewResource creates a resource with all units available.
func NewResource(id string, kind ResourceKind, capacity int) *Resource {
	return &Resource{
		ID:          id,
		Kind:        kind,
		Capacity:    capacity,
		Available:   capacity,
		Condition:   1.0,
		assignments: make(map[string]assignment),
	}
}

// reclaim folds turnover slots whose window has elapsed back into Available.
// Called lazily from allocate and utilization paths.
func (r *Resource) reclaim(now int64) {
	if len(r.turnover) == 0 {
		return
	}
	remaining := r.turnover[:0]
	for _, slot := range r.turnover {
		if slot.ReadyAt <= now {
			r.Available += slot.Amount
		} else {
			remaining = append(remaining, slot)
		}
	}
	r.turnover = remaining
}

// inTurnover returns the number of units currently in turnover windows.
func (r *Resource) inTurnover() int {
	total := 0
	for _, slot := range r.turnover {
		total += slot.Amount
	}
	return total
}

// assignedTotal returns the number of units currently held by entities.
func (r *Resource) assignedTotal() int {
	total := 0
	for _, a := range r.assignments {
		total += a.Amount
	}
	return total
}

// Occupied returns in-use plus in-turnover units.
func (r *Resource) Occupied() int {
	return r.assignedTotal() + r.inTurnover()
}

// AssignedTo returns the amount currently held by an entity, 0 if none.
func (r *Resource) AssignedTo(entityID string) int {
	return r.assignments[entityID].Amount
}

// recordSample appends a utilization observation.
func (r *Resource) recordSample(now int64) {
	r.samples = append(r.samples, utilSample{Time: now, Occupied: r.Occupied(), Capacity: r.Capacity})
}
