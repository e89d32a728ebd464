package constant

const (
	RoleUser  = "user"
	RoleAgent = "agent"
	RoleAdmin = "admin"

	DefaultUserRole = RoleUser

	MaxNameLength     = 50
	MinPasswordLength = 6
)
