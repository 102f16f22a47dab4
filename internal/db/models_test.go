package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingStartEnd(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	b := Booking{Date: "2025-10-20", StartTime: "14:00", EndTime: "16:30"}

	start, err := b.StartAt(loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 10, 20, 14, 0, 0, 0, loc), start)

	end, err := b.EndAt(loc)
	require.NoError(t, err)
	assert.Equal(t, 150*time.Minute, end.Sub(start))

	b.StartTime = "25:00"
	_, err = b.StartAt(loc)
	assert.Error(t, err)
}

func TestRoleRank(t *testing.T) {
	assert.Greater(t, RoleRank(RoleAdmin), RoleRank(RoleManager))
	assert.Greater(t, RoleRank(RoleManager), RoleRank(RoleStudent))
	assert.Zero(t, RoleRank("guest"))
}
