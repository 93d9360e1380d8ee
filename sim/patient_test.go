package sim

import "testing"

func TestNewPatient_GeneratesIDWhenEmpty(t *testing.T) {
	p := NewPatient("", 0, AcuityUrgent, 40, nil, ModeWalkIn)
	if p.ID == "" {
		t.Fatal("expected generated id")
	}
	q := NewPatient("", 0, AcuityUrgent, 40, nil, ModeWalkIn)
	if p.ID == q.ID {
		t.Error("two generated ids collided")
	}
}

func TestPatientScores_SeverityOrdersDerivedValues(t *testing.T) {
	// A resuscitation patient must dominate a non-urgent one on every
	// severity-derived score.
	critical := NewPatient("crit", 0, AcuityResuscitation, 40, nil, ModeAmbulance)
	minor := NewPatient("minor", 0, AcuityNonUrgent, 40, nil, ModeWalkIn)

	if critical.Scores.AdmissionProbability <= minor.Scores.AdmissionProbability {
		t.Errorf("admission: critical %f <= minor %f",
			critical.Scores.AdmissionProbability, minor.Scores.AdmissionProbability)
	}
	if critical.Scores.PriorityScore <= minor.Scores.PriorityScore {
		t.Errorf("priority: critical %f <= minor %f",
			critical.Scores.PriorityScore, minor.Scores.PriorityScore)
	}
	if critical.Scores.ExpectedLOS <= minor.Scores.ExpectedLOS {
		t.Errorf("LOS: critical %f <= minor %f",
			critical.Scores.ExpectedLOS, minor.Scores.ExpectedLOS)
	}
	if critical.Scores.MortalityRisk <= minor.Scores.MortalityRisk {
		t.Errorf("mortality: critical %f <= minor %f",
			critical.Scores.MortalityRisk, minor.Scores.MortalityRisk)
	}
}

func TestPatientScores_CapsHold(t *testing.T) {
	// Stack every aggravating factor; caps must still hold.
	comorbidities := []Comorbidity{
		{Name: "heart-failure", Severity: 3, Impact: 1.5},
		{Name: "copd", Severity: 3, Impact: 1.4},
		{Name: "renal-disease", Severity: 3, Impact: 1.3},
		{Name: "diabetes", Severity: 3, Impact: 1.2},
	}
	p := NewPatient("worst", 0, AcuityResuscitation, 85, comorbidities, ModeHelicopter)

	if p.Scores.AdmissionProbability > 0.95 {
		t.Errorf("admission probability %f above 0.95 cap", p.Scores.AdmissionProbability)
	}
	if p.Scores.PriorityScore > 100 {
		t.Errorf("priority %f above 100 cap", p.Scores.PriorityScore)
	}
	for name, risk := range map[string]float64{
		"readmission":  p.Scores.ReadmissionRisk,
		"mortality":    p.Scores.MortalityRisk,
		"complication": p.Scores.ComplicationRisk,
	} {
		if risk > 0.9 {
			t.Errorf("%s risk %f above 0.9 cap", name, risk)
		}
		if risk < 0 {
			t.Errorf("%s risk %f negative", name, risk)
		}
	}
}

func TestPatientScores_ArrivalModeAffectsPriorityOnly(t *testing.T) {
	heli := NewPatient("h", 0, AcuityEmergent, 40, nil, ModeHelicopter)
	walk := NewPatient("w", 0, AcuityEmergent, 40, nil, ModeWalkIn)

	if heli.Scores.PriorityScore <= walk.Scores.PriorityScore {
		t.Errorf("helicopter priority %f <= walk-in %f", heli.Scores.PriorityScore, walk.Scores.PriorityScore)
	}
	if heli.Scores.ExpectedLOS != walk.Scores.ExpectedLOS {
		t.Errorf("arrival mode changed LOS: %f vs %f", heli.Scores.ExpectedLOS, walk.Scores.ExpectedLOS)
	}
	if heli.Scores.AdmissionProbability != walk.Scores.AdmissionProbability {
		t.Errorf("arrival mode changed admission probability")
	}
}

func TestPatientScores_AgeExtremesRaisePriority(t *testing.T) {
	child := NewPatient("c", 0, AcuityUrgent, 3, nil, ModeWalkIn)
	adult := NewPatient("a", 0, AcuityUrgent, 40, nil, ModeWalkIn)
	elderly := NewPatient("e", 0, AcuityUrgent, 78, nil, ModeWalkIn)

	if child.Scores.PriorityScore <= adult.Scores.PriorityScore {
		t.Errorf("child priority %f <= adult %f", child.Scores.PriorityScore, adult.Scores.PriorityScore)
	}
	if elderly.Scores.PriorityScore <= adult.Scores.PriorityScore {
		t.Errorf("elderly priority %f <= adult %f", elderly.Scores.PriorityScore, adult.Scores.PriorityScore)
	}
}

func TestPatient_RecomputeOnlyOnExplicitCall(t *testing.T) {
	p := NewPatient("p", 0, AcuityNonUrgent, 40, nil, ModeWalkIn)
	before := p.Scores

	// Mutating attributes alone must not change derived scores.
	p.Acuity = AcuityResuscitation
	if p.Scores != before {
		t.Fatal("scores changed without Recompute")
	}

	p.Recompute()
	if p.Scores.PriorityScore <= before.PriorityScore {
		t.Error("Recompute did not pick up the new acuity")
	}
}

func TestPatient_WaitAndTreatmentAccumulate(t *testing.T) {
	p := NewPatient("p", 0, AcuityUrgent, 40, nil, ModeWalkIn)
	p.AddWait("ed", 30)
	p.AddWait("ed", 15)
	p.AddWait("icu", 5)
	p.AddTreatment("ed", 120)

	if p.WaitTimes["ed"] != 45 {
		t.Errorf("ed wait = %d, want 45", p.WaitTimes["ed"])
	}
	if p.TotalWait() != 50 {
		t.Errorf("total wait = %d, want 50", p.TotalWait())
	}
	if p.TreatTimes["ed"] != 120 {
		t.Errorf("ed treatment = %d, want 120", p.TreatTimes["ed"])
	}
}
