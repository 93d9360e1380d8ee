package sim

import "testing"

func TestEntityRegistry_AddGetRemove(t *testing.T) {
	r := NewEntityRegistry()
	p := NewPatient("p1", 0, AcuityUrgent, 40, nil, ModeWalkIn)

	r.Add(p)
	if got := r.Get("p1"); got != Entity(p) {
		t.Fatalf("Get returned %v", got)
	}
	if r.Len() != 1 {
		t.Errorf("Len = %d, want 1", r.Len())
	}

	if !r.Remove("p1") {
		t.Error("Remove returned false for present entity")
	}
	if r.Remove("p1") {
		t.Error("second Remove returned true")
	}
	if r.Get("p1") != nil {
		t.Error("entity still retrievable after Remove")
	}
}

func TestEntityRegistry_ByKindSortedAndIsolated(t *testing.T) {
	r := NewEntityRegistry()
	r.Add(NewPatient("p-b", 0, AcuityUrgent, 40, nil, ModeWalkIn))
	r.Add(NewPatient("p-a", 0, AcuityUrgent, 40, nil, ModeWalkIn))
	r.Add(NewPatient("p-c", 0, AcuityUrgent, 40, nil, ModeWalkIn))

	patients := r.ByKind("patient")
	if len(patients) != 3 {
		t.Fatalf("ByKind returned %d entities, want 3", len(patients))
	}
	for i, want := range []string{"p-a", "p-b", "p-c"} {
		if patients[i].EntityID() != want {
			t.Errorf("position %d: got %s, want %s", i, patients[i].EntityID(), want)
		}
	}
	if got := r.ByKind("equipment"); len(got) != 0 {
		t.Errorf("unknown kind returned %d entities", len(got))
	}
}

func TestEntityRegistry_ByAttribute(t *testing.T) {
	r := NewEntityRegistry()
	waiting := NewPatient("p-wait", 0, AcuityUrgent, 40, nil, ModeWalkIn)
	waiting.Status = StatusWaiting
	treated := NewPatient("p-treat", 0, AcuityUrgent, 40, nil, ModeWalkIn)
	treated.Status = StatusInTreatment
	r.Add(waiting)
	r.Add(treated)

	got := r.ByAttribute("patient", "status", string(StatusWaiting))
	if len(got) != 1 || got[0].EntityID() != "p-wait" {
		t.Errorf("ByAttribute(status=waiting) = %v", got)
	}
	if got := r.ByAttribute("patient", "no-such-key", "x"); len(got) != 0 {
		t.Errorf("unknown attribute matched %d entities", len(got))
	}
}

func TestEntityRegistry_AddReplacesSameID(t *testing.T) {
	r := NewEntityRegistry()
	r.Add(NewPatient("p1", 0, AcuityUrgent, 40, nil, ModeWalkIn))
	replacement := NewPatient("p1", 5, AcuityEmergent, 70, nil, ModeAmbulance)
	r.Add(replacement)

	if r.Len() != 1 {
		t.Fatalf("Len = %d after replace, want 1", r.Len())
	}
	got, ok := r.Get("p1").(*Patient)
	if !ok || got.Acuity != AcuityEmergent {
		t.Errorf("replacement not stored: %v", r.Get("p1"))
	}
}
