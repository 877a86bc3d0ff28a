package models

import "github.com/google/uuid"

// RoleDelivery is the staff role of users eligible for delivery assignment.
const RoleDelivery = "delivery"

// Driver is a staff member with the delivery role, loaded once per screen
// session for assignment selection and id lookups.
type Driver struct {
	ID      uuid.UUID // ID is the unique driver identifier.
	Name    string    // Name is the driver's first name.
	Surname string    // Surname is the driver's last name.
	Phone   string    // Phone is the driver's contact number.
	Active  bool      // Active marks drivers currently available for assignment.
}

// FullName returns the display name used in selection dialogs.
func (d Driver) FullName() string {
	if d.Surname == "" {
		return d.Name
	}
	return d.Name + " " + d.Surname
}
