package data

type Role string

const (
	ROLE_USER   Role = "user"
	ROLE_DRIVER Role = "driver"
	ROLE_ADMIN  Role = "admin"
)

// Upstream tokens have been seen carrying roles in either case, so
// normalize once here. Everything past the storage boundary compares
// typed values.
func ParseRole(value string) (Role, bool) {
	switch value {
	case "user", "USER":
		return ROLE_USER, true
	case "driver", "DRIVER":
		return ROLE_DRIVER, true
	case "admin", "ADMIN":
		return ROLE_ADMIN, true
	}
	return "", false
}

// Drivers and admins can manage boletos they don't own.
func (r Role) Elevated() bool {
	return r == ROLE_DRIVER || r == ROLE_ADMIN
}

type User struct {
	Id    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

type UserCreateStatus int

const (
	USER_CREATE_OK UserCreateStatus = iota
	USER_CREATE_EXISTS
)

type UserCreate struct {
	Email string
	Name  string
	Role  Role
}

type UserCreateResult struct {
	Status UserCreateStatus
	User   *User
}
