package models

type Role string

const (
	RoleCustomer Role = "customer"
	RoleDriver   Role = "driver"
	RoleSupplier Role = "supplier"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleDriver, RoleSupplier:
		return true
	}
	return false
}

type UnknownUser struct {
	Login    *string `json:"login"`
	Password *string `json:"password"`
	FullName *string `json:"full_name,omitempty"`
}

type RoleUpdate struct {
	Role *Role `json:"role"`
}

type User struct {
	ID    string
	Login string
	Hash  string
	Role  Role
}

// Actor identifies who requests an order operation.
type Actor struct {
	ID   string
	Role Role
}

func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

type PasswordResetRequest struct {
	Email *string `json:"email"`
}

type PasswordUpdate struct {
	Token    *string `json:"token"`
	Password *string `json:"password"`
}
