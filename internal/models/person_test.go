package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAgeOnBirthdayBoundary(t *testing.T) {
	dob := time.Date(2020, 6, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 3, AgeOn(dob, time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 4, AgeOn(dob, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 4, AgeOn(dob, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestPersonToView(t *testing.T) {
	dob := time.Date(2020, 6, 15, 0, 0, 0, 0, time.UTC)
	other := "Nekesa"
	person := Person{
		ID:        3,
		Program:   ProgramVocational,
		UPI:       "BT003",
		FirstName: "Amina",
		LastName:  "Wafula",
		OtherName: &other,
		Gender:    "Female",
		DOB:       &dob,
		Status:    PersonStatusEnrolled,
	}

	view := person.ToView(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "Amina Nekesa Wafula", view.Name)
	assert.Equal(t, "female", view.Gender)
	assert.Equal(t, "Vocational Training", view.Course)
	assert.Equal(t, ProgramVocational, view.ProgramType)
	if assert.NotNil(t, view.Age) {
		assert.Equal(t, 4, *view.Age)
	}
}

func TestPersonToViewWithoutDOB(t *testing.T) {
	view := Person{Program: ProgramECDE, FirstName: "Baraka", LastName: "Otieno"}.ToView(time.Now())
	assert.Nil(t, view.Age)
	assert.Equal(t, "ECDE", view.Course)
}

func TestParseProgram(t *testing.T) {
	program, ok := ParseProgram(" ECDE ")
	assert.True(t, ok)
	assert.Equal(t, ProgramECDE, program)

	_, ok = ParseProgram("secondary")
	assert.False(t, ok)
}

func TestUPIFormat(t *testing.T) {
	format := UPIFormat{Jurisdiction: "b", InstitutionCode: "t", Width: 3}
	assert.Equal(t, "BT", format.Prefix())
	assert.Equal(t, int64(999), format.Capacity())
	assert.Equal(t, "BT007", format.Format(7))
}

func TestActorScoping(t *testing.T) {
	var nilActor *Actor
	_, ok := nilActor.Institution()
	assert.False(t, ok)

	id := int64(4)
	actor := &Actor{UserID: "u1", InstitutionID: &id, Roles: []Role{RoleSuperAdmin}}
	assert.True(t, actor.HasRole(RoleInstitutionAdmin, RoleSuperAdmin))
	assert.False(t, actor.HasRole(RoleTeacher))

	acting := actor.ActingFor(9)
	got, ok := acting.Institution()
	assert.True(t, ok)
	assert.Equal(t, int64(9), got)
	own, _ := actor.Institution()
	assert.Equal(t, int64(4), own)
}
