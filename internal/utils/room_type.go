package utils

import (
	"strings"

	"roombooking/internal/db"
)

// ExtraResources is the catalog of equipment a requester may add to a booking.
var ExtraResources = []string{
	"Microfone sem fio",
	"Notebook",
	"Câmera",
	"Mesa digitalizadora",
	"Suporte técnico",
	"Cadeiras extras",
}

// RoomTypeLabel returns the display label of a room type key.
func RoomTypeLabel(roomType string) string {
	switch roomType {
	case db.RoomTypeClassroom:
		return "Sala de Aula"
	case db.RoomTypeLab:
		return "Laboratório"
	case db.RoomTypeAuditorium:
		return "Auditório"
	}
	return roomType
}

// NormalizeRoomType maps a type key or display label to its key. The catalog's
// "todos" (all) and the empty string both mean no filter and yield "".
// ok is false for anything unrecognized.
func NormalizeRoomType(s string) (roomType string, ok bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("á", "a", "ó", "o", "ã", "a").Replace(key)
	switch key {
	case "", "todos", "all":
		return "", true
	case "sala", "sala de aula":
		return db.RoomTypeClassroom, true
	case "laboratorio", "lab":
		return db.RoomTypeLab, true
	case "auditorio":
		return db.RoomTypeAuditorium, true
	}
	return "", false
}

// StatusLabel returns the Portuguese label shown to users for a booking or room status.
func StatusLabel(status string) string {
	switch status {
	case db.BookingPending:
		return "pendente"
	case db.BookingApproved:
		return "aprovada"
	case db.BookingRejected:
		return "recusada"
	case db.BookingCancelled:
		return "cancelada"
	case db.RoomAvailable:
		return "disponível"
	case db.RoomOccupied:
		return "ocupada"
	case db.RoomMaintenance:
		return "em manutenção"
	}
	return status
}

// IsExtraResource reports whether name is in the extras catalog.
func IsExtraResource(name string) bool {
	for _, r := range ExtraResources {
		if r == name {
			return true
		}
	}
	return false
}

// CleanList trims entries, drops empty ones and removes duplicates, keeping order.
// The result is never nil.
func CleanList(items []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}
