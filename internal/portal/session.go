package portal

// Role is the active user's permission class.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleParent Role = "parent"
)

// Session is the transient identity of one authenticated caller.
// Nothing here is persisted server-side; a session lives exactly as
// long as the token that carries it. The zero value is an
// unauthenticated parent with no student bound.
type Session struct {
	Role       Role   `json:"role"`
	StudentID  string `json:"studentId,omitempty"`
	SchoolID   string `json:"schoolId,omitempty"`
	SchoolName string `json:"schoolName,omitempty"`
}

// IsAdmin reports whether the session carries admin rights.
func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }
