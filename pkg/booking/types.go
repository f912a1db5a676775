package booking

import (
	"context"
	"fmt"
	"strings"
)

// PriceCents is an integer nightly price in cents.
type PriceCents int64

// RoomID identifies a room record.
type RoomID struct {
	value string
}

// RoomName is the display name a room is created with.
type RoomName struct {
	value string
}

// GuestName names the occupant of a reservation.
type GuestName struct {
	value string
}

// Occupancy is the tagged occupancy state of a room. The zero value is
// vacant; an occupied room carries its guest's name. The redundant
// guest-sentinel/boolean pair only exists at serialization boundaries.
type Occupancy struct {
	guest string
}

// Room is the bookable unit tracked by the system.
type Room struct {
	ID        RoomID
	Name      RoomName
	Price     PriceCents
	Occupancy Occupancy
}

// NewRoomID validates and normalizes a room id.
func NewRoomID(raw string) (RoomID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return RoomID{}, fmt.Errorf("%w: empty value", ErrInvalidRoomID)
	}
	return RoomID{value: trimmed}, nil
}

// String returns the normalized identifier.
func (id RoomID) String() string {
	return id.value
}

// NewRoomName validates and normalizes a room name.
func NewRoomName(raw string) (RoomName, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return RoomName{}, fmt.Errorf("%w: empty value", ErrInvalidRoomName)
	}
	return RoomName{value: trimmed}, nil
}

// String returns the normalized name.
func (name RoomName) String() string {
	return name.value
}

// NewGuestName validates and normalizes a guest name. The vacancy marker
// is rejected so a stored guest can never masquerade as an empty room.
func NewGuestName(raw string) (GuestName, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return GuestName{}, fmt.Errorf("%w: empty value", ErrInvalidGuestName)
	}
	if trimmed == VacantGuestLabel {
		return GuestName{}, fmt.Errorf("%w: %q is reserved", ErrInvalidGuestName, VacantGuestLabel)
	}
	return GuestName{value: trimmed}, nil
}

// String returns the normalized guest name.
func (guest GuestName) String() string {
	return guest.value
}

// NewPriceCents validates a price and ensures it is not negative.
func NewPriceCents(raw int64) (PriceCents, error) {
	if raw < 0 {
		return 0, fmt.Errorf("%w: must not be negative", ErrInvalidPriceCents)
	}
	return PriceCents(raw), nil
}

// Int64 returns the raw cents value.
func (price PriceCents) Int64() int64 {
	return int64(price)
}

// OccupiedBy returns the occupancy state for a named guest.
func OccupiedBy(guest GuestName) Occupancy {
	return Occupancy{guest: guest.value}
}

// Occupied reports whether the room currently has a guest.
func (occupancy Occupancy) Occupied() bool {
	return occupancy.guest != ""
}

// Guest returns the occupant's name, empty when vacant.
func (occupancy Occupancy) Guest() string {
	return occupancy.guest
}

// GuestLabel returns the wire form of the occupancy, the vacancy marker
// when no guest holds the room.
func (occupancy Occupancy) GuestLabel() string {
	if occupancy.guest == "" {
		return VacantGuestLabel
	}
	return occupancy.guest
}

// OccupancyFromLabel maps a stored guest label back to a tagged state.
func OccupancyFromLabel(label string) Occupancy {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" || trimmed == VacantGuestLabel {
		return Occupancy{}
	}
	return Occupancy{guest: trimmed}
}

// Store is the persistence contract used by Service. SaveRoom is a
// full-row overwrite with last-write-wins semantics; no call here runs
// inside a transaction spanning another call.
type Store interface {
	InsertRoom(ctx context.Context, room Room) (Room, error)
	GetRoom(ctx context.Context, roomID RoomID) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	SaveRoom(ctx context.Context, room Room) error
}
