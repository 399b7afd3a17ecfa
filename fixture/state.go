package fixture

// State is the lifecycle position of a Record.
type State int

// Record states. A record handed to callers starts in StateInserted; Failed
// records never leave Create.
const (
	StateUninitialized State = iota
	StateInserting
	StateInserted
	StateDeleting
	StateClosed
	StateFailed
)

var stateNames = map[State]string{
	StateUninitialized: "uninitialized",
	StateInserting:     "inserting",
	StateInserted:      "inserted",
	StateDeleting:      "deleting",
	StateClosed:        "closed",
	StateFailed:        "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}
