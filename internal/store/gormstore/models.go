package gormstore

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Room mirrors the rooms table. Guest and IsBooked are the serialized pair
// derived from the domain occupancy state; both columns are always written
// from the same Occupancy value so they cannot disagree.
type Room struct {
	RoomID     string    `gorm:"type:uuid;primaryKey"`
	Name       string    `gorm:"not null"`
	PriceCents int64     `gorm:"not null"`
	Guest      string    `gorm:"not null;default:None"`
	IsBooked   bool      `gorm:"not null;default:false"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

func (Room) TableName() string { return "rooms" }

func (room *Room) BeforeCreate(tx *gorm.DB) error {
	if room.RoomID == "" {
		room.RoomID = uuid.NewString()
	}
	return nil
}
