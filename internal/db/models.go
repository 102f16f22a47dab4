package db

import (
	"fmt"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Room struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Capacity    int       `json:"capacity"`
	Resources   []string  `json:"resources"`
	Status      string    `json:"status"`
	Location    string    `json:"location"`
	Description *string   `json:"description"`
	ImageURL    *string   `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BookingRoom is the slice of a room joined into booking listings.
type BookingRoom struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Location string `json:"location"`
}

// BookingProfile is the slice of the requester joined into booking listings.
type BookingProfile struct {
	FullName string  `json:"full_name"`
	Email    string  `json:"email"`
	Phone    *string `json:"phone,omitempty"`
}

type Booking struct {
	ID             string          `json:"id"`
	RoomID         string          `json:"room_id"`
	UserID         string          `json:"user_id"`
	Date           string          `json:"date"`
	StartTime      string          `json:"start_time"`
	EndTime        string          `json:"end_time"`
	Participants   int             `json:"participants"`
	Reason         string          `json:"reason"`
	ExtraResources []string        `json:"extra_resources"`
	Status         string          `json:"status"`
	Justification  *string         `json:"justification"`
	CheckInAt      *time.Time      `json:"check_in_at"`
	SeriesID       *string         `json:"series_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Room           *BookingRoom    `json:"room,omitempty"`
	Requester      *BookingProfile `json:"requester,omitempty"`
}

// StartAt resolves the booking's date and start time in loc.
func (b *Booking) StartAt(loc *time.Location) (time.Time, error) {
	return combine(b.Date, b.StartTime, loc)
}

// EndAt resolves the booking's date and end time in loc.
func (b *Booking) EndAt(loc *time.Location) (time.Time, error) {
	return combine(b.Date, b.EndTime, loc)
}

func combine(date, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("booking time %s %s: %w", date, clock, err)
	}
	return t, nil
}

type Profile struct {
	ID           string    `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	Phone        *string   `json:"phone,omitempty"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
