package entities

type RecurrenceRequest struct {
	Frequency   string `json:"frequency" validate:"required,oneof=diaria semanal quinzenal mensal"`
	Occurrences int    `json:"occurrences" validate:"required,min=1,max=26"`
}

type BookingRequest struct {
	RoomID         string             `json:"room_id" validate:"required,uuid"`
	Date           string             `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime      string             `json:"start_time" validate:"required,datetime=15:04"`
	EndTime        string             `json:"end_time" validate:"required,datetime=15:04"`
	Participants   int                `json:"participants" validate:"required,min=1"`
	Reason         string             `json:"reason" validate:"required,max=500"`
	ExtraResources []string           `json:"extra_resources"`
	Recurrence     *RecurrenceRequest `json:"recurrence,omitempty"`
}

// DecisionRequest is the body of a manager approval or rejection.
type DecisionRequest struct {
	Justification string `json:"justification" validate:"max=1000"`
}

type BookingFilter struct {
	UserID   string
	RoomID   string
	Status   string
	Date     string
	FromDate string
	ToDate   string
}
