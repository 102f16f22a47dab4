package db

const (
	RoomTypeClassroom  = "sala"
	RoomTypeLab        = "laboratorio"
	RoomTypeAuditorium = "auditorio"
)

const (
	RoomAvailable   = "available"
	RoomOccupied    = "occupied"
	RoomMaintenance = "maintenance"
)

const (
	BookingPending   = "pending"
	BookingApproved  = "approved"
	BookingRejected  = "rejected"
	BookingCancelled = "cancelled"
)

const (
	RoleStudent = "student"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

var (
	RoomTypes       = []string{RoomTypeClassroom, RoomTypeLab, RoomTypeAuditorium}
	RoomStatuses    = []string{RoomAvailable, RoomOccupied, RoomMaintenance}
	BookingStatuses = []string{BookingPending, BookingApproved, BookingRejected, BookingCancelled}
	Roles           = []string{RoleStudent, RoleManager, RoleAdmin}
)

// RoleRank orders roles so the highest one wins when a user holds several.
func RoleRank(role string) int {
	switch role {
	case RoleAdmin:
		return 3
	case RoleManager:
		return 2
	case RoleStudent:
		return 1
	}
	return 0
}
