package timesheet

// Profile describes the column layout of a timesheet export format. Each
// column lists the header names it is known by, compared case-insensitively.
type Profile struct {
	Name        string
	DateCol     []string
	DescCol     []string
	HoursCol    []string
	ClientCol   []string
	NoteCol     []string
	DateLayouts []string
}

func (p Profile) requiredCols() [][]string {
	return [][]string{p.DateCol, p.DescCol, p.HoursCol}
}

// profiles is the ordered list of formats tried during auto-detection.
// More specific profiles come first.
var profiles = []Profile{
	{
		Name:        "toggl",
		DateCol:     []string{"start date"},
		DescCol:     []string{"description"},
		HoursCol:    []string{"duration"},
		ClientCol:   []string{"client"},
		NoteCol:     []string{"tags"},
		DateLayouts: []string{"2006-01-02"},
	},
	{
		Name:        "clockify",
		DateCol:     []string{"start date"},
		DescCol:     []string{"description"},
		HoursCol:    []string{"duration (decimal)", "duration (h)"},
		ClientCol:   []string{"client"},
		NoteCol:     []string{"tags"},
		DateLayouts: []string{"01/02/2006", "2006-01-02", "02.01.2006"},
	},
	{
		Name:        "generic",
		DateCol:     []string{"date", "data"},
		DescCol:     []string{"description", "opis"},
		HoursCol:    []string{"hours", "godziny", "czas"},
		ClientCol:   []string{"client", "klient"},
		NoteCol:     []string{"note", "notatka", "uwagi"},
		DateLayouts: []string{"2006-01-02", "02.01.2006", "02-01-2006", "02/01/2006"},
	},
}

// Lookup returns the profile with the given name.
func Lookup(name string) (*Profile, bool) {
	for i := range profiles {
		if profiles[i].Name == name {
			return &profiles[i], true
		}
	}

	return nil, false
}
