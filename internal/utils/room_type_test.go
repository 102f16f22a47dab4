package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRoomType(t *testing.T) {
	cases := map[string]string{
		"":             "",
		"todos":        "",
		"sala":         "sala",
		"Sala de Aula": "sala",
		"Laboratório":  "laboratorio",
		" LAB ":        "laboratorio",
		"Auditório":    "auditorio",
	}
	for in, want := range cases {
		got, ok := NormalizeRoomType(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := NormalizeRoomType("ginásio")
	assert.False(t, ok)
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "Laboratório", RoomTypeLabel("laboratorio"))
	assert.Equal(t, "quadra", RoomTypeLabel("quadra"))
	assert.Equal(t, "recusada", StatusLabel("rejected"))
	assert.Equal(t, "em manutenção", StatusLabel("maintenance"))
}

func TestCleanList(t *testing.T) {
	assert.Equal(t, []string{"Projetor", "Som"}, CleanList([]string{" Projetor", "", "Som", "Projetor "}))
	assert.NotNil(t, CleanList(nil))
}

func TestIsExtraResource(t *testing.T) {
	assert.True(t, IsExtraResource("Notebook"))
	assert.False(t, IsExtraResource("Piano"))
}
