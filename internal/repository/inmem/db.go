// Package inmem keeps rooms, bookings and profiles in process memory. It
// backs the service and handler tests.
package inmem

import (
	"sync"
	"time"

	"roombooking/internal/db"
)

type DB struct {
	mu       sync.RWMutex
	rooms    map[string]db.Room
	bookings map[string]db.Booking
	profiles map[string]db.Profile
	roles    map[string][]string
	now      func() time.Time
}

func Open() *DB {
	return &DB{
		rooms:    make(map[string]db.Room),
		bookings: make(map[string]db.Booking),
		profiles: make(map[string]db.Profile),
		roles:    make(map[string][]string),
		now:      time.Now,
	}
}

// effectiveRole mirrors the SQL repository: highest role wins, none means student.
func (d *DB) effectiveRole(userID string) string {
	best := db.RoleStudent
	for _, r := range d.roles[userID] {
		if db.RoleRank(r) > db.RoleRank(best) {
			best = r
		}
	}
	return best
}

func (d *DB) joinBooking(b db.Booking) db.Booking {
	if room, ok := d.rooms[b.RoomID]; ok {
		b.Room = &db.BookingRoom{Name: room.Name, Type: room.Type, Location: room.Location}
	}
	if p, ok := d.profiles[b.UserID]; ok {
		b.Requester = &db.BookingProfile{FullName: p.FullName, Email: p.Email, Phone: p.Phone}
	}
	return b
}
