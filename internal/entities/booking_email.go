package entities

type BookingEmailData struct {
	UserName      string
	RoomName      string
	RoomLocation  string
	DateFormatted string
	StartTime     string
	EndTime       string
	Status        string
	StatusLabel   string
	Justification string
	Reason        string
	CurrentYear   int
}
