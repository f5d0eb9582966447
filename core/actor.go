package core

// Actor identifies the authenticated user performing a request.
type Actor struct {
	ID    string
	Role  string
	Name  string
	Email string
}

// Roles
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
)

var AllRoles = []string{RoleStudent, RoleTeacher}

func (a Actor) IsTeacher() bool { return a.Role == RoleTeacher }
func (a Actor) IsStudent() bool { return a.Role == RoleStudent }
