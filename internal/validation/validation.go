package validation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/TheVortexX/OncoTrack-sub000/internal/models"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictDuplicateMedicationName ConflictType = "duplicate_medication_name"
	ConflictInvalidRecord           ConflictType = "invalid_record"
	ConflictUnscheduledFrequency    ConflictType = "unscheduled_frequency"
	ConflictOverlappingAppointments ConflictType = "overlapping_appointments"
	ConflictOrphanedIntakeLog       ConflictType = "orphaned_intake_log"
	ConflictStaleReminder           ConflictType = "stale_reminder"
)

// Conflict represents one problem found in stored records
type Conflict struct {
	Type        ConflictType
	Description string
	IDs         []string
	// Warning conflicts are reported but do not fail a check.
	Warning bool
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// HasErrors reports conflicts that are not warnings.
func (vr *ValidationResult) HasErrors() bool {
	for _, c := range vr.Conflicts {
		if !c.Warning {
			return true
		}
	}
	return false
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, c := range vr.Conflicts {
		prefix := "-"
		if c.Warning {
			prefix = "- warning:"
		}
		fmt.Fprintf(&b, "%s %s\n", prefix, c.Description)
	}
	return b.String()
}

// Snapshot is the stored state of one user.
type Snapshot struct {
	Medications  []models.Medication
	Appointments []models.Appointment
	IntakeLogs   []models.IntakeLog
	// Pending holds the handles of alerts still queued. A nil map skips
	// the reminder checks.
	Pending map[string]bool
}

// Validator checks stored records for problems
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// Validate runs every check on snap.
func (v *Validator) Validate(snap Snapshot) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}
	result.Conflicts = append(result.Conflicts, v.checkMedications(snap.Medications)...)
	result.Conflicts = append(result.Conflicts, v.checkAppointments(snap.Appointments)...)
	result.Conflicts = append(result.Conflicts, v.checkIntakeLogs(snap.Medications, snap.IntakeLogs)...)
	if snap.Pending != nil {
		result.Conflicts = append(result.Conflicts, v.checkReminders(snap)...)
	}
	return result
}

func (v *Validator) checkMedications(meds []models.Medication) []Conflict {
	var conflicts []Conflict

	byName := make(map[string][]string)
	for _, med := range meds {
		if name := strings.ToLower(strings.TrimSpace(med.Name)); name != "" {
			byName[name] = append(byName[name], med.ID)
		}
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if ids := byName[name]; len(ids) > 1 {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictDuplicateMedicationName,
				Description: fmt.Sprintf("Duplicate medication name: %q (IDs: %v)", name, ids),
				IDs:         ids,
				Warning:     true,
			})
		}
	}

	for _, med := range meds {
		if err := med.Validate(); err != nil {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictInvalidRecord,
				Description: fmt.Sprintf("Medication %q is invalid: %v", med.Name, err),
				IDs:         []string{med.ID},
			})
			continue
		}
		if !med.Frequency.IsKnown() {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictUnscheduledFrequency,
				Description: fmt.Sprintf("Medication %q has unrecognised frequency %q and is never due", med.Name, med.Frequency),
				IDs:         []string{med.ID},
				Warning:     true,
			})
		}
	}
	return conflicts
}

func (v *Validator) checkAppointments(appts []models.Appointment) []Conflict {
	var conflicts []Conflict
	var valid []models.Appointment
	for _, a := range appts {
		if err := a.Validate(); err != nil {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictInvalidRecord,
				Description: fmt.Sprintf("Appointment %q is invalid: %v", a.Title, err),
				IDs:         []string{a.ID},
			})
			continue
		}
		valid = append(valid, a)
	}

	sort.Slice(valid, func(i, j int) bool { return valid[i].Start.Before(valid[j].Start) })
	for i := 1; i < len(valid); i++ {
		prev, cur := valid[i-1], valid[i]
		if cur.Start.Before(prev.End) {
			conflicts = append(conflicts, Conflict{
				Type: ConflictOverlappingAppointments,
				Description: fmt.Sprintf("Appointments %q and %q overlap on %s",
					prev.Title, cur.Title, cur.Start.Format(time.DateOnly)),
				IDs:     []string{prev.ID, cur.ID},
				Warning: true,
			})
		}
	}
	return conflicts
}

func (v *Validator) checkIntakeLogs(meds []models.Medication, logs []models.IntakeLog) []Conflict {
	known := make(map[string]bool, len(meds))
	for _, med := range meds {
		known[med.ID] = true
	}
	var conflicts []Conflict
	for _, l := range logs {
		if !known[l.MedicationID] {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictOrphanedIntakeLog,
				Description: fmt.Sprintf("Intake log %s refers to missing medication %s", l.ID, l.MedicationID),
				IDs:         []string{l.ID},
				Warning:     true,
			})
		}
	}
	return conflicts
}

// checkReminders flags stored handles whose alert is no longer queued.
// Rescheduling replaces them.
func (v *Validator) checkReminders(snap Snapshot) []Conflict {
	var conflicts []Conflict
	for _, med := range snap.Medications {
		for _, slot := range models.SortSlots(slotsOf(med.NotificationIDs)) {
			if h := med.NotificationIDs[slot]; h != "" && !snap.Pending[h] {
				conflicts = append(conflicts, Conflict{
					Type:        ConflictStaleReminder,
					Description: fmt.Sprintf("Medication %q %s reminder %s is not queued", med.Name, slot, h),
					IDs:         []string{med.ID},
					Warning:     true,
				})
			}
		}
	}
	for _, a := range snap.Appointments {
		if a.NotificationID != "" && !snap.Pending[a.NotificationID] {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictStaleReminder,
				Description: fmt.Sprintf("Appointment %q reminder %s is not queued", a.Title, a.NotificationID),
				IDs:         []string{a.ID},
				Warning:     true,
			})
		}
	}
	return conflicts
}

func slotsOf(ids map[models.Slot]string) []models.Slot {
	slots := make([]models.Slot, 0, len(ids))
	for s := range ids {
		slots = append(slots, s)
	}
	return slots
}
