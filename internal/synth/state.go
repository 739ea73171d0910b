package synth

// State is the synthesis state of an artifact.
type State int

// Synthesis states. Wrapped, Failed and the Skipped states are terminal.
const (
	Classified State = iota
	Analyzing
	Wrapped
	Failed
	SkippedNotApplicable
	SkippedEmptyArchive
)

var stateNames = [...]string{
	Classified:           "classified",
	Analyzing:            "analyzing",
	Wrapped:              "wrapped",
	Failed:               "failed",
	SkippedNotApplicable: "skipped",
	SkippedEmptyArchive:  "empty",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition follows.
func (s State) Terminal() bool {
	return s >= Wrapped
}

// Skipped reports whether the artifact was left alone.
func (s State) Skipped() bool {
	return s == SkippedNotApplicable || s == SkippedEmptyArchive
}
