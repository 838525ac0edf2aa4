package repository

import "time"

// UserProfile represents a user profile row.
type UserProfile struct {
	Username       string
	PasswordHash   string
	Salt           string
	UserClass      string
	Status         string
	Description    string
	SignonAttempts int
	LastSignon     *time.Time
	CreatedAt      time.Time
}

// CommandEntry represents a command-table row.
type CommandEntry struct {
	Name        string
	Description string
	ScreenName  string
}

// CommandParameter represents one declared parameter of a command.
type CommandParameter struct {
	CommandName string
	Name        string
	Ordinal     int
	PromptText  string
	DataType    string
	Length      int
	DefaultVal  string
	Required    bool
}

// ValidValue is one enumerable value for a command parameter.
type ValidValue struct {
	Value       string
	Description string
}

// MessageQueue represents a message queue row.
type MessageQueue struct {
	Name        string
	Library     string
	Description string
	CreatedAt   time.Time
}

// Message represents a queued operator message.
type Message struct {
	ID       int64
	Queue    string
	Library  string
	Severity int
	Text     string
	Sender   string
	Status   string
	Reply    *string
	SentAt   time.Time
}

// DataArea represents a data area row.
type DataArea struct {
	Name        string
	Library     string
	DataType    string
	Length      int
	Value       string
	Description string
	LockedBy    *string
}

// JobDescription represents a job description row.
type JobDescription struct {
	Name        string
	Library     string
	Description string
	JobQueue    string
	Priority    int
	Hold        bool
}

// OutputQueue represents an output queue row.
type OutputQueue struct {
	Name        string
	Library     string
	Description string
	Status      string
}

// SpooledFile represents a spooled file row.
type SpooledFile struct {
	ID          int64
	Name        string
	JobName     string
	Username    string
	OutputQueue string
	Status      string
	Pages       int
	Content     string
	CreatedAt   time.Time
}

// ScheduleEntry represents a job schedule entry.
type ScheduleEntry struct {
	Name        string
	Command     string
	Schedule    string
	Description string
	Status      string
	LastRun     *time.Time
	CreatedAt   time.Time
}

// AuthorizationList represents an authorization list header.
type AuthorizationList struct {
	Name        string
	Description string
}

// AuthorizationEntry grants one user an authority on a list.
type AuthorizationEntry struct {
	ListName  string
	Username  string
	Authority string
}

// Subsystem represents a subsystem description: a named grouping of
// worker concurrency and queue configuration for the task broker.
type Subsystem struct {
	Name        string
	Description string
	Status      string
	MaxJobs     int
	Queues      []SubsystemQueue
}

// SubsystemQueue binds a job queue to a subsystem.
type SubsystemQueue struct {
	Subsystem string
	JobQueue  string
	Sequence  int
	MaxActive int
}

// SystemValue represents a system value row.
type SystemValue struct {
	Name      string
	Value     string
	Category  string
	UpdatedBy string
	UpdatedAt time.Time
}
