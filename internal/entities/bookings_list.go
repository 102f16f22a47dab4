package entities

import "roombooking/internal/db"

type BookingsList struct {
	Total    int          `json:"total"`
	Bookings []db.Booking `json:"bookings"`
}

type BookingStats struct {
	Pending          int `json:"pending"`
	Approved         int `json:"approved"`
	Rejected         int `json:"rejected"`
	Cancelled        int `json:"cancelled"`
	UpcomingApproved int `json:"upcoming_approved"`
}

type CreateBookingResponse struct {
	SeriesID *string      `json:"series_id,omitempty"`
	Bookings []db.Booking `json:"bookings"`
	Message  string       `json:"message"`
}
