package journal

// Result is a closed trade's outcome.
type Result string

const (
	ResultWin       Result = "win"
	ResultLoss      Result = "loss"
	ResultBreakEven Result = "be"
)

// Results lists every concrete outcome value.
var Results = []Result{ResultWin, ResultLoss, ResultBreakEven}

// Valid reports whether r is a concrete outcome, not the unset placeholder.
func (r Result) Valid() bool {
	switch r {
	case ResultWin, ResultLoss, ResultBreakEven:
		return true
	}
	return false
}

// Sessions lists the trading sessions a trade can be tagged with.
var Sessions = []string{"Frankfurt", "LOKZ", "Lunch", "Pre-NY", "NYKZ", "Other"}

// Sections lists the analysis form sections notes and charts attach under.
var Sections = []string{"pre", "plan", "post"}

// DayResults lists the outcomes an analysis day can be tagged with.
var DayResults = []string{"Profit", "Loss", "Missed opportunity"}

// EmotionalProblems is the fixed vocabulary for the trade reflection field;
// values outside it are dropped on write.
var EmotionalProblems = []string{"emotional management", "premature exit", "fear of entry"}

func validSession(s string) bool {
	for _, v := range Sessions {
		if v == s {
			return true
		}
	}
	return false
}

func validSection(s string) bool {
	for _, v := range Sections {
		if v == s {
			return true
		}
	}
	return false
}

func validDayResult(s string) bool {
	for _, v := range DayResults {
		if v == s {
			return true
		}
	}
	return false
}
