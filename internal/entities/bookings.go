package entities

import "time"

type FacilityType string

const (
	FacilityStudyRoom FacilityType = "STUDY_ROOM"
	FacilityPrinting  FacilityType = "PRINTING"
)

// ValidFacilityType reports whether the facility type is known.
func ValidFacilityType(t FacilityType) bool {
	return t == FacilityStudyRoom || t == FacilityPrinting
}

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// FacilityBooking reserves a study room or a printing slot for a time window.
type FacilityBooking struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	UserID    uint          `gorm:"index" json:"user_id"`
	Facility  FacilityType  `gorm:"index;size:20" json:"facility"`
	RoomName  string        `gorm:"size:100" json:"room_name,omitempty"`
	StartTime time.Time     `gorm:"index" json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Status    BookingStatus `gorm:"index;size:20;default:'PENDING'" json:"status"`
	Notes     string        `gorm:"type:text" json:"notes,omitempty"`
	User      User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (FacilityBooking) TableName() string {
	return "facility_bookings"
}

// Overlaps reports whether two bookings occupy the same facility/room with
// intersecting time windows.
func (b FacilityBooking) Overlaps(other FacilityBooking) bool {
	if b.Facility != other.Facility || b.RoomName != other.RoomName {
		return false
	}
	return b.StartTime.Before(other.EndTime) && other.StartTime.Before(b.EndTime)
}
