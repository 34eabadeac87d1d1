package submission

import "fmt"

// Phase is a step of the filing state machine. Phases are declared in the
// order a filing must visit them.
type Phase int

const (
	Init Phase = iota
	Authenticated
	HeaderPopulated
	DestinationCityPending
	DateSelected
	DestinationCitySet
	VehicleSectionResolved
	LineItem
	AllLinesEntered
	TotalsReconciled
	Visualized
	Signed
	ArtifactReady
	Aborted
	Stopped
)

var phaseNames = [...]string{
	Init:                   "Init",
	Authenticated:          "Authenticated",
	HeaderPopulated:        "HeaderPopulated",
	DestinationCityPending: "DestinationCityPending",
	DateSelected:           "DateSelected",
	DestinationCitySet:     "DestinationCitySet",
	VehicleSectionResolved: "VehicleSectionResolved",
	LineItem:               "LineItem",
	AllLinesEntered:        "AllLinesEntered",
	TotalsReconciled:       "TotalsReconciled",
	Visualized:             "Visualized",
	Signed:                 "Signed",
	ArtifactReady:          "ArtifactReady",
	Aborted:                "Aborted",
	Stopped:                "Stopped",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

// State is the controller cursor. Line is the 1-based line index while in the
// LineItem phase and zero otherwise.
type State struct {
	Phase Phase
	Line  int
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s.Phase == ArtifactReady || s.Phase == Aborted || s.Phase == Stopped
}

func (s State) String() string {
	if s.Phase == LineItem {
		return fmt.Sprintf("LineItem(%d)", s.Line)
	}
	return s.Phase.String()
}

// canAdvance reports whether to is a legal successor of from: forward only,
// one phase at a time, line items in ascending order, and any non-terminal
// state may end in Aborted or Stopped.
func canAdvance(from, to State) bool {
	if from.Terminal() {
		return false
	}
	switch to.Phase {
	case Aborted, Stopped:
		return true
	case LineItem:
		if from.Phase == LineItem {
			return to.Line == from.Line+1
		}
		return from.Phase == VehicleSectionResolved && to.Line == 1
	case AllLinesEntered:
		return from.Phase == LineItem
	default:
		return to.Phase == from.Phase+1 && from.Phase != LineItem
	}
}

// Observer is notified of every state transition.
type Observer interface {
	OnTransition(State)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(State)

func (f ObserverFunc) OnTransition(s State) { f(s) }
