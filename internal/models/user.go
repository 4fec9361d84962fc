package models

// Role is the caller role carried in the access token.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleWorker   Role = "worker"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleWorker || r == RoleAdmin
}

// Actor identifies who is performing an operation.
type Actor struct {
	ID   uint
	Role Role
}
