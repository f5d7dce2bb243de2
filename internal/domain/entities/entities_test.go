package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStudentValidate(t *testing.T) {
	s := Student{ID: "  1  ", Name: "  Alice  "}
	s.Normalize()

	assert.NoError(t, s.Validate())
	assert.Equal(t, "1", s.ID)
	assert.Equal(t, "Alice", s.Name)

	missing := Student{ID: "1"}
	assert.ErrorIs(t, missing.Validate(), ErrInvalidStudent)
}

func TestStudentPatchApply(t *testing.T) {
	s := Student{ID: "1", Name: "Alice", Math: "95", English: "88"}

	math := " 100 "
	StudentPatch{Math: &math}.Apply(&s)

	assert.Equal(t, Student{ID: "1", Name: "Alice", Math: "100", English: "88"}, s)

	// Nil fields leave values alone, empty strings clear them
	empty := ""
	StudentPatch{English: &empty}.Apply(&s)
	assert.Equal(t, "", s.English)
	assert.Equal(t, "Alice", s.Name)
}
