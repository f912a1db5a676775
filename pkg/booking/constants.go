package booking

// VacantGuestLabel is the stored guest value marking an empty room.
const VacantGuestLabel = "None"

// Action identifies the kind of a recorded activity entry.
type Action string

const (
	ActionCreate   Action = "create"
	ActionReserve  Action = "reserve"
	ActionConflict Action = "conflict"
	ActionCancel   Action = "cancel"
)
