// Package forms holds the huh forms used to enter records interactively.
package forms

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/TheVortexX/OncoTrack-sub000/internal/constants"
	"github.com/TheVortexX/OncoTrack-sub000/internal/models"
)

// MedicationForm is the editable, string-typed view of a medication.
type MedicationForm struct {
	Name      string
	Dosage    string
	Unit      string
	Frequency models.Frequency
	StartDate string
	EndDate   string
	Slots     []models.Slot
	Notes     string
}

// FromMedication fills a form from med. A zero medication starts today,
// daily, in the morning.
func FromMedication(med models.Medication, today time.Time) *MedicationForm {
	f := &MedicationForm{
		Name:      med.Name,
		Unit:      med.Unit,
		Frequency: med.Frequency,
		StartDate: med.StartDate,
		EndDate:   med.EndDate,
		Slots:     med.TimeSlots,
		Notes:     med.Notes,
	}
	if med.Dosage != 0 {
		f.Dosage = strconv.FormatFloat(med.Dosage, 'f', -1, 64)
	}
	if f.Frequency == "" {
		f.Frequency = models.FrequencyDaily
	}
	if f.StartDate == "" {
		f.StartDate = today.Format(constants.DateFormat)
	}
	if len(f.Slots) == 0 {
		f.Slots = []models.Slot{models.SlotMorning}
	}
	return f
}

// Apply copies the form onto base and validates the result. Identity,
// handles and timestamps of base are kept.
func (f *MedicationForm) Apply(base models.Medication) (models.Medication, error) {
	dosage, err := parseDosage(f.Dosage)
	if err != nil {
		return models.Medication{}, err
	}
	med := base
	med.Name = strings.TrimSpace(f.Name)
	med.Dosage = dosage
	med.Unit = strings.TrimSpace(f.Unit)
	med.Frequency = f.Frequency
	med.StartDate = strings.TrimSpace(f.StartDate)
	med.EndDate = strings.TrimSpace(f.EndDate)
	med.TimeSlots = models.SortSlots(f.Slots)
	med.Notes = strings.TrimSpace(f.Notes)
	if err := med.Validate(); err != nil {
		return models.Medication{}, err
	}
	return med, nil
}

func NewMedicationForm(f *MedicationForm) *huh.Form {
	freqOptions := make([]huh.Option[models.Frequency], 0, len(models.Frequencies))
	for _, freq := range models.Frequencies {
		freqOptions = append(freqOptions, huh.NewOption(string(freq), freq))
	}
	slotOptions := make([]huh.Option[models.Slot], 0, len(models.Slots))
	for _, s := range models.Slots {
		slotOptions = append(slotOptions, huh.NewOption(string(s), s))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&f.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("medication name cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Dosage").
				Value(&f.Dosage).
				Validate(func(s string) error {
					_, err := parseDosage(s)
					return err
				}),
			huh.NewInput().
				Title("Unit").
				Placeholder("mg").
				Value(&f.Unit),
			huh.NewSelect[models.Frequency]().
				Title("Frequency").
				Options(freqOptions...).
				Value(&f.Frequency),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Start date").
				Description("YYYY-MM-DD").
				Value(&f.StartDate).
				Validate(validateDate(false)),
			huh.NewInput().
				Title("End date").
				Description("YYYY-MM-DD, empty for no end").
				Value(&f.EndDate).
				Validate(validateDate(true)),
			huh.NewMultiSelect[models.Slot]().
				Title("Time slots").
				Options(slotOptions...).
				Value(&f.Slots),
			huh.NewText().
				Title("Notes").
				Value(&f.Notes),
		),
	).WithTheme(huh.ThemeDracula())
}

func parseDosage(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("dosage must be a number")
	}
	if d < 0 {
		return 0, fmt.Errorf("dosage cannot be negative")
	}
	return d, nil
}

func validateDate(optional bool) func(string) error {
	return func(s string) error {
		s = strings.TrimSpace(s)
		if s == "" && optional {
			return nil
		}
		if _, err := time.Parse(constants.DateFormat, s); err != nil {
			return fmt.Errorf("expected YYYY-MM-DD")
		}
		return nil
	}
}
