package entities

type RoomOccupancy struct {
	RoomID      string  `json:"room_id"`
	RoomName    string  `json:"room_name"`
	RoomType    string  `json:"room_type"`
	Bookings    int     `json:"bookings"`
	BookedHours float64 `json:"booked_hours"`
	CheckIns    int     `json:"check_ins"`
}
