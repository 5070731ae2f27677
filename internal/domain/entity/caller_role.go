package entity

import (
	"fmt"

	"github.com/google/uuid"
)

// Role ID constants, as carried in the role_id claim of access tokens
const (
	RoleIDAdmin   = 1
	RoleIDDoctor  = 2
	RoleIDPatient = 3
)

// CallerKind tags the variant held by a CallerRole
type CallerKind string

const (
	CallerPatient CallerKind = "patient"
	CallerDoctor  CallerKind = "doctor"
	CallerAdmin   CallerKind = "admin"
	CallerSystem  CallerKind = "system"
)

// CallerRole identifies who invokes a scheduling operation.
// It is resolved by the delivery layer before the call; the core only records it.
type CallerRole struct {
	Kind CallerKind
	ID   uuid.UUID
}

func PatientCaller(id uuid.UUID) CallerRole { return CallerRole{Kind: CallerPatient, ID: id} }
func DoctorCaller(id uuid.UUID) CallerRole  { return CallerRole{Kind: CallerDoctor, ID: id} }
func AdminCaller(id uuid.UUID) CallerRole   { return CallerRole{Kind: CallerAdmin, ID: id} }

// SystemCaller is used by background sweeps
func SystemCaller() CallerRole { return CallerRole{Kind: CallerSystem} }

// CallerFromRoleID maps a token role id to a CallerRole
func CallerFromRoleID(roleID int, userID uuid.UUID) (CallerRole, error) {
	switch roleID {
	case RoleIDAdmin:
		return AdminCaller(userID), nil
	case RoleIDDoctor:
		return DoctorCaller(userID), nil
	case RoleIDPatient:
		return PatientCaller(userID), nil
	}
	return CallerRole{}, fmt.Errorf("unknown role id %d", roleID)
}

// UserID returns the acting user, nil for the system caller
func (c CallerRole) UserID() *uuid.UUID {
	if c.Kind == CallerSystem || c.ID == uuid.Nil {
		return nil
	}
	id := c.ID
	return &id
}

func (c CallerRole) IsAdmin() bool { return c.Kind == CallerAdmin }

// CanManageCalendar reports whether the caller may write doctorID's weekly calendar
func (c CallerRole) CanManageCalendar(doctorID uuid.UUID) bool {
	return c.Kind == CallerAdmin || (c.Kind == CallerDoctor && c.ID == doctorID)
}

// CanBookFor reports whether the caller may book on behalf of patientID
func (c CallerRole) CanBookFor(patientID uuid.UUID) bool {
	return c.Kind == CallerAdmin || (c.Kind == CallerPatient && c.ID == patientID)
}

// CanAccess reports whether the caller takes part in the appointment
func (c CallerRole) CanAccess(a *Appointment) bool {
	switch c.Kind {
	case CallerAdmin, CallerSystem:
		return true
	case CallerDoctor:
		return a.DoctorID == c.ID
	case CallerPatient:
		return a.PatientID == c.ID
	}
	return false
}

func (c CallerRole) String() string {
	if c.Kind == CallerSystem {
		return string(c.Kind)
	}
	return fmt.Sprintf("%s:%s", c.Kind, c.ID)
}
