package entities

type RoomRequest struct {
	Name        string   `json:"name" validate:"required,max=120"`
	Type        string   `json:"type" validate:"required,oneof=sala laboratorio auditorio"`
	Capacity    int      `json:"capacity" validate:"required,min=1"`
	Resources   []string `json:"resources"`
	Status      string   `json:"status" validate:"omitempty,oneof=available occupied maintenance"`
	Location    string   `json:"location" validate:"required,max=200"`
	Description *string  `json:"description"`
}

// RoomPatch carries a partial room update; nil fields are left untouched.
type RoomPatch struct {
	Name        *string   `json:"name" validate:"omitempty,min=1,max=120"`
	Type        *string   `json:"type" validate:"omitempty,oneof=sala laboratorio auditorio"`
	Capacity    *int      `json:"capacity" validate:"omitempty,min=1"`
	Resources   *[]string `json:"resources"`
	Status      *string   `json:"status" validate:"omitempty,oneof=available occupied maintenance"`
	Location    *string   `json:"location" validate:"omitempty,min=1,max=200"`
	Description *string   `json:"description"`
}

type RoomStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=available occupied maintenance"`
}

type RoomFilter struct {
	Type        string
	MinCapacity int
	Search      string
	Status      string
}

// AvailabilityQuery holds the wizard's capacity and type criteria.
type AvailabilityQuery struct {
	Participants int
	Type         string
}
