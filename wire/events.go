package wire

// Role of a participant within a room. Exactly one Student holds edit rights
// per room; everyone else observes as Mentor.
type Role string

const (
	RoleStudent Role = "Student"
	RoleMentor  Role = "Mentor"
)

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleMentor
}

const (
	TypeJoin         = "join"
	TypeLeave        = "leave"
	TypeRoleAssigned = "role_assigned"
	TypeAllCodes     = "all_codes"
	TypeCodeUpdated  = "code_updated"
	TypeResumeKey    = "resumeKey"
)

// Envelope carries only the type tag, enough to pick the concrete event.
type Envelope struct {
	Type string `json:"type"`
}

// JoinEvent is the first client message on a connection. Resume is optional:
// a previously issued resume token proving the caller owns UserID.
type JoinEvent struct {
	Type   string `json:"type"`
	Room   string `json:"room"`
	UserID string `json:"user_id"`
	Resume string `json:"resume,omitempty"`
}

type LeaveEvent struct {
	Type   string `json:"type"`
	Room   string `json:"room"`
	UserID string `json:"user_id"`
}

// RoleAssignedEvent is pushed once per successful join, and again to a
// Mentor promoted to Student (Code then carries the inherited text).
type RoleAssignedEvent struct {
	Type string `json:"type"`
	Role Role   `json:"role"`
	Code string `json:"code"`
}

// AllCodesEvent is the Mentor-facing room snapshot. Codes maps display name
// to current code for Students with non-empty code. Participants lists the
// display names of everyone currently in the room, so receivers can discard
// deltas for participants who have since left.
type AllCodesEvent struct {
	Type         string            `json:"type"`
	Codes        map[string]string `json:"codes"`
	Participants []string          `json:"participants"`
}

// CodeUpdatedEvent is the incremental delta broadcast after a Student edit.
type CodeUpdatedEvent struct {
	Type        string `json:"type"`
	StudentName string `json:"student_name"`
	Code        string `json:"code"`
}

type ResumeKeyEvent struct {
	Type      string `json:"type"`
	ResumeKey string `json:"resumeKey"`
}
