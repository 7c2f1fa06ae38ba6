package normalize

// Tables holds the lookup data a Normalizer resolves against. A zero Tables is
// valid: nothing is aliased and no day is recognised.
type Tables struct {
	// ClassAliases maps a canonical class label to its known alternate
	// spellings. Keys and values are expected in cleaned uppercase form.
	ClassAliases map[string][]string
	// LocationAliases maps a canonical location to alternate site names.
	LocationAliases map[string][]string
	// Days lists the day names in week order.
	Days []string
}

// Days of the week in the order used for headers and reports.
var weekDays = []string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY", "SUNDAY"}

// DefaultTables returns the compiled-in tables. Each call returns fresh maps so
// callers may extend them without affecting other Normalizers.
func DefaultTables() Tables {
	return Tables{
		ClassAliases: map[string][]string{
			"STRENGTH LAB (PUSH)":      {"STRENGTH LAB PUSH", "SL PUSH", "STRENGTH PUSH"},
			"STRENGTH LAB (PULL)":      {"STRENGTH LAB PULL", "SL PULL", "STRENGTH PULL"},
			"STRENGTH LAB (FULL BODY)": {"STRENGTH LAB FULL BODY", "SL FULL BODY", "STRENGTH FULL BODY"},
			"CARDIO BARRE":             {"CARDIOBARRE", "CB"},
			"CARDIO BARRE PLUS":        {"CARDIO BARRE+", "CB PLUS", "CB+"},
			"CARDIO BARRE EXPRESS":     {"CARDIO BARRE EXP", "CB EXPRESS", "CB EXP"},
			"BARRE 57":                 {"BARRE57", "B57"},
			"MAT 57":                   {"MAT57", "M57"},
			"MAT 57 EXPRESS":           {"MAT 57 EXP", "MAT57 EXPRESS", "M57 EXP"},
			"POWERCYCLE":               {"POWER CYCLE", "PC"},
			"AMPED UP!":                {"AMPED UP", "AMPED"},
			"FIT":                      {"FITNESS"},
			"FOUNDATIONS":              {"FOUNDATION"},
			"SWEAT IN 30":              {"SWEAT IN 30 MIN", "SWEAT"},
		},
		LocationAliases: map[string][]string{
			"KEMPS":  {"KEMPS CORNER", "KWALITY HOUSE", "KWALITY HOUSE, KEMPS CORNER", "KH", "ANNEX"},
			"BANDRA": {"BANDRA WEST", "SUPREME HQ", "SUPREME HQ, BANDRA", "SUPREMEHQ", "SHQ", "SUPREME"},
		},
		Days: append([]string(nil), weekDays...),
	}
}
