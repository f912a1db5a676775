package gormstore

import (
	"context"
	"errors"

	"github.com/MarkoPoloResearchLab/roomdesk/pkg/booking"
	"gorm.io/gorm"
)

const (
	errorOperationStore = "store"
	errorSubjectRoom    = "room"
	errorCodeInsert     = "insert"
	errorCodeGet        = "get"
	errorCodeList       = "list"
	errorCodeSave       = "save"
	errorCodeInvalid    = "invalid"
)

// Store implements booking.Store using GORM.
type Store struct {
	db *gorm.DB
}

// New returns a Store backed by gorm.DB.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// InsertRoom persists a new room row and returns the room with its
// store-assigned identifier.
func (store *Store) InsertRoom(ctx context.Context, room booking.Room) (booking.Room, error) {
	row := toRow(room)
	if err := store.db.WithContext(ctx).Create(&row).Error; err != nil {
		return booking.Room{}, wrapStoreError(errorCodeInsert, err)
	}
	inserted, err := mapRoom(row)
	if err != nil {
		return booking.Room{}, wrapStoreError(errorCodeInvalid, err)
	}
	return inserted, nil
}

// GetRoom loads a room by id.
func (store *Store) GetRoom(ctx context.Context, roomID booking.RoomID) (booking.Room, error) {
	var row Room
	err := store.db.WithContext(ctx).
		Where("room_id = ?", roomID.String()).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return booking.Room{}, wrapStoreError(errorCodeGet, booking.ErrRoomNotFound)
		}
		return booking.Room{}, wrapStoreError(errorCodeGet, err)
	}
	room, err := mapRoom(row)
	if err != nil {
		return booking.Room{}, wrapStoreError(errorCodeInvalid, err)
	}
	return room, nil
}

// ListRooms returns every stored room in insertion order.
func (store *Store) ListRooms(ctx context.Context) ([]booking.Room, error) {
	var rows []Room
	if err := store.db.WithContext(ctx).Order("created_at").Find(&rows).Error; err != nil {
		return nil, wrapStoreError(errorCodeList, err)
	}
	rooms := make([]booking.Room, 0, len(rows))
	for _, row := range rows {
		room, err := mapRoom(row)
		if err != nil {
			return nil, wrapStoreError(errorCodeInvalid, err)
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

// SaveRoom overwrites the row for the room's id, last write wins. There is
// no conditional check against the previous occupancy; callers that read
// before writing accept the resulting window.
func (store *Store) SaveRoom(ctx context.Context, room booking.Room) error {
	row := toRow(room)
	err := store.db.WithContext(ctx).
		Model(&Room{RoomID: row.RoomID}).
		Select("name", "price_cents", "guest", "is_booked").
		Updates(row).Error
	if err != nil {
		return wrapStoreError(errorCodeSave, err)
	}
	return nil
}

func wrapStoreError(code string, err error) error {
	return booking.WrapError(errorOperationStore, errorSubjectRoom, code, err)
}

func toRow(room booking.Room) Room {
	return Room{
		RoomID:     room.ID.String(),
		Name:       room.Name.String(),
		PriceCents: room.Price.Int64(),
		Guest:      room.Occupancy.GuestLabel(),
		IsBooked:   room.Occupancy.Occupied(),
	}
}

func mapRoom(row Room) (booking.Room, error) {
	roomID, err := booking.NewRoomID(row.RoomID)
	if err != nil {
		return booking.Room{}, err
	}
	name, err := booking.NewRoomName(row.Name)
	if err != nil {
		return booking.Room{}, err
	}
	price, err := booking.NewPriceCents(row.PriceCents)
	if err != nil {
		return booking.Room{}, err
	}
	return booking.Room{
		ID:        roomID,
		Name:      name,
		Price:     price,
		Occupancy: booking.OccupancyFromLabel(row.Guest),
	}, nil
}
