package booking

import "context"

// ServiceOption configures a Service instance.
type ServiceOption func(*Service)

// ActivityRecorder receives one entry per state-changing outcome. Recording
// is best-effort: implementations own their failure handling and a failed
// append never changes the result of the operation that produced it.
type ActivityRecorder interface {
	RecordActivity(ctx context.Context, entry ActivityEntry)
}

// ActivityEntry is an immutable audit record of one domain event. Only the
// fields relevant to the action are populated.
type ActivityEntry struct {
	Action          Action
	RoomID          RoomID
	RoomName        RoomName
	Price           PriceCents
	Guest           string
	AttemptedGuest  string
	CurrentGuest    string
	RecordedUnixUTC int64
}

// WithActivityRecorder wires a recorder that receives callbacks for every
// state-changing outcome.
func WithActivityRecorder(recorder ActivityRecorder) ServiceOption {
	return func(service *Service) {
		service.recorder = recorder
	}
}
