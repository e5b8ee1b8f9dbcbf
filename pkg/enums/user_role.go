package enums

import "fmt"

// UserRole identifies what part of the plantation-to-factory flow a user acts in.
type UserRole string

const (
	UserRoleFarmer   UserRole = "farmer"
	UserRoleFactory  UserRole = "factory"
	UserRoleExpert   UserRole = "expert"
	UserRoleDelivery UserRole = "delivery"
	UserRoleAdmin    UserRole = "admin"
)

var validUserRoles = []UserRole{
	UserRoleFarmer,
	UserRoleFactory,
	UserRoleExpert,
	UserRoleDelivery,
	UserRoleAdmin,
}

func (u UserRole) String() string {
	return string(u)
}

func (u UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
