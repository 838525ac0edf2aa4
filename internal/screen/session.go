package screen

import (
	"strings"
	"time"
)

// UserClass is the authority class of a user profile. The set is closed;
// unknown values compare as the weakest class.
type UserClass string

const (
	ClassSecOfr UserClass = "*SECOFR"
	ClassSecAdm UserClass = "*SECADM"
	ClassPgmr   UserClass = "*PGMR"
	ClassSysOpr UserClass = "*SYSOPR"
	ClassUser   UserClass = "*USER"
)

var classRank = map[UserClass]int{
	ClassSecOfr: 5,
	ClassSecAdm: 4,
	ClassPgmr:   3,
	ClassSysOpr: 2,
	ClassUser:   1,
}

// AtLeast reports whether c carries at least the authority of min.
func (c UserClass) AtLeast(min UserClass) bool {
	return classRank[c] >= classRank[min]
}

// ParseUserClass maps a stored class string onto the closed enum,
// defaulting to *USER.
func ParseUserClass(s string) UserClass {
	c := UserClass(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := classRank[c]; !ok {
		return ClassUser
	}
	return c
}

// Level classifies a session message.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// PromptContext records where an F4 prompt came from and what it is
// prompting for. A nil context means no prompt is in flight.
type PromptContext struct {
	Command string // command owning the prompted parameter (parameter prompt)
	Parm    string // parameter being prompted (parameter prompt)
	FieldID string // field the selected value is written back to
	Return  string // screen to return to on selection or F12
	Filter  string // command-list filter (command prompt)
}

// Session holds all per-connection display state. It is owned by a
// single connection goroutine; actions on it are serialized, so it
// carries no locking.
type Session struct {
	ID            string
	User          string
	Class         UserClass
	Authenticated bool
	CurrentScreen string
	FieldValues   map[string]string
	PageOffsets   map[string]int
	Prompt        *PromptContext
	Selected      map[string]string
	LastActive    time.Time

	message string
	level   Level
}

// NewSession returns an unauthenticated session positioned on the
// sign-on screen. Anonymous sessions run as QUSER.
func NewSession(id string) *Session {
	return &Session{
		ID:            id,
		User:          "QUSER",
		Class:         ClassUser,
		CurrentScreen: "signon",
		FieldValues:   map[string]string{},
		PageOffsets:   map[string]int{},
		Selected:      map[string]string{},
		LastActive:    time.Now(),
	}
}

// SetMessage stores the one-shot message, replacing any pending one.
func (s *Session) SetMessage(level Level, msg string) {
	s.message = msg
	s.level = level
}

// TakeMessage returns and clears the pending message. A message is
// surfaced in exactly one render.
func (s *Session) TakeMessage() (string, Level) {
	msg, level := s.message, s.level
	s.message = ""
	s.level = ""
	return msg, level
}

// ClearMessage drops any pending message without surfacing it.
func (s *Session) ClearMessage() {
	s.message = ""
	s.level = ""
}

// Offset returns the stored page offset for a screen, zero if unset.
func (s *Session) Offset(screen string) int {
	return s.PageOffsets[screen]
}

// SetOffset stores a page offset, flooring negatives at zero.
func (s *Session) SetOffset(screen string, v int) {
	if v < 0 {
		v = 0
	}
	s.PageOffsets[screen] = v
}

// ResetOffset returns a screen to its first page.
func (s *Session) ResetOffset(screen string) {
	delete(s.PageOffsets, screen)
}

// MergeFields folds submitted field values into the session.
func (s *Session) MergeFields(fields map[string]string) {
	for k, v := range fields {
		s.FieldValues[k] = v
	}
}

// Field returns the trimmed value of a session field.
func (s *Session) Field(id string) string {
	return strings.TrimSpace(s.FieldValues[id])
}

// ClearFields drops the named fields from the session.
func (s *Session) ClearFields(ids ...string) {
	for _, id := range ids {
		delete(s.FieldValues, id)
	}
}

// ClearFieldPrefix drops every session field whose ID starts with
// prefix. List screens use it to flush option columns once processed.
func (s *Session) ClearFieldPrefix(prefix string) {
	for k := range s.FieldValues {
		if strings.HasPrefix(k, prefix) {
			delete(s.FieldValues, k)
		}
	}
}

// TakeSelected consumes a value written back by the parameter prompt.
func (s *Session) TakeSelected(fieldID string) (string, bool) {
	v, ok := s.Selected[fieldID]
	if ok {
		delete(s.Selected, fieldID)
	}
	return v, ok
}

// SignOff resets the session to its anonymous, unauthenticated state.
func (s *Session) SignOff() {
	s.User = "QUSER"
	s.Class = ClassUser
	s.Authenticated = false
	s.CurrentScreen = "signon"
	s.FieldValues = map[string]string{}
	s.PageOffsets = map[string]int{}
	s.Selected = map[string]string{}
	s.Prompt = nil
	s.ClearMessage()
}

// Touch stamps activity and reports whether the session had already
// exceeded the inactivity timeout before this action.
func (s *Session) Touch(timeout time.Duration) bool {
	expired := timeout > 0 && time.Since(s.LastActive) > timeout
	s.LastActive = time.Now()
	return expired
}
