package booking

import (
	"context"
	"fmt"
)

// Service contains the reservation logic over a Store.
type Service struct {
	store    Store
	nowFn    func() int64
	recorder ActivityRecorder
}

// NewService wires a Service.
func NewService(store Store, now func() int64, options ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store dependency is nil", ErrInvalidServiceConfig)
	}
	if now == nil {
		return nil, fmt.Errorf("%w: clock dependency is nil", ErrInvalidServiceConfig)
	}
	service := &Service{store: store, nowFn: now}
	for _, option := range options {
		if option != nil {
			option(service)
		}
	}
	return service, nil
}

// CreateRoom inserts a new vacant room and records a create entry.
func (service *Service) CreateRoom(ctx context.Context, name RoomName, price PriceCents) (Room, error) {
	created, err := service.store.InsertRoom(ctx, Room{Name: name, Price: price})
	if err != nil {
		return Room{}, err
	}
	service.recordActivity(ctx, ActivityEntry{
		Action:   ActionCreate,
		RoomID:   created.ID,
		RoomName: created.Name,
		Price:    created.Price,
	})
	return created, nil
}

// ListRooms returns every stored room in store-native order.
func (service *Service) ListRooms(ctx context.Context) ([]Room, error) {
	return service.store.ListRooms(ctx)
}

// Reserve moves a vacant room to occupied for the given guest. An occupied
// room is left untouched: the attempt is recorded as a conflict and a
// ConflictError naming the current guest is returned. The guard check and
// the save are separate store calls, so two concurrent reservations of one
// room can both pass the guard; the store's last write wins.
func (service *Service) Reserve(ctx context.Context, roomID RoomID, guest GuestName) (Room, error) {
	room, err := service.store.GetRoom(ctx, roomID)
	if err != nil {
		return Room{}, err
	}
	if room.Occupancy.Occupied() {
		service.recordActivity(ctx, ActivityEntry{
			Action:         ActionConflict,
			RoomID:         room.ID,
			AttemptedGuest: guest.String(),
			CurrentGuest:   room.Occupancy.Guest(),
		})
		return Room{}, &ConflictError{
			RoomID:         room.ID,
			CurrentGuest:   room.Occupancy.Guest(),
			AttemptedGuest: guest.String(),
		}
	}
	room.Occupancy = OccupiedBy(guest)
	if err := service.store.SaveRoom(ctx, room); err != nil {
		return Room{}, err
	}
	service.recordActivity(ctx, ActivityEntry{
		Action: ActionReserve,
		RoomID: room.ID,
		Guest:  guest.String(),
	})
	return room, nil
}

// Cancel moves a room to vacant regardless of its current state. Cancelling
// an already vacant room re-persists the vacant state and still records a
// cancel entry.
func (service *Service) Cancel(ctx context.Context, roomID RoomID) (Room, error) {
	room, err := service.store.GetRoom(ctx, roomID)
	if err != nil {
		return Room{}, err
	}
	room.Occupancy = Occupancy{}
	if err := service.store.SaveRoom(ctx, room); err != nil {
		return Room{}, err
	}
	service.recordActivity(ctx, ActivityEntry{
		Action: ActionCancel,
		RoomID: room.ID,
	})
	return room, nil
}

func (service *Service) recordActivity(ctx context.Context, entry ActivityEntry) {
	if service.recorder == nil {
		return
	}
	if entry.RecordedUnixUTC == 0 {
		entry.RecordedUnixUTC = service.nowFn()
	}
	service.recorder.RecordActivity(ctx, entry)
}
