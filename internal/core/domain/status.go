package domain

import "fmt"

// Status represents the lifecycle state of an application
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in-progress"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
)

// AllStatuses lists every valid status value
var AllStatuses = []Status{StatusOpen, StatusInProgress, StatusApproved, StatusRejected}

// transitions defines the legal status edges.
// approved and rejected are terminal.
var transitions = map[Status][]Status{
	StatusOpen:       {StatusInProgress, StatusApproved, StatusRejected},
	StatusInProgress: {StatusApproved, StatusRejected},
	StatusApproved:   {},
	StatusRejected:   {},
}

// ParseStatus parses a status string
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, s)
	}
	return status, nil
}

// Valid reports whether the status is a known value
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal reports whether no further transition is allowed
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// CanTransitionTo reports whether the edge s -> target is legal
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// ApplicationType distinguishes deposit and loan intakes
type ApplicationType string

const (
	TypeDeposit ApplicationType = "deposit"
	TypeLoan    ApplicationType = "loan"
)

// ParseApplicationType parses an application type string
func ParseApplicationType(s string) (ApplicationType, error) {
	switch ApplicationType(s) {
	case TypeDeposit, TypeLoan:
		return ApplicationType(s), nil
	}
	return "", fmt.Errorf("%w: unknown application type %q", ErrInvalidInput, s)
}

func (t ApplicationType) String() string {
	return string(t)
}

// ApplicationIDPrefix is the fixed prefix of every application number
const ApplicationIDPrefix = "GCUB"

// FormatApplicationID builds the business identifier PREFIX-BB-PP-SSSS.
// Branch and product ids are zero-padded to 2 digits, the per-pair
// sequence number to 4.
func FormatApplicationID(branchID, productID uint, seq int) string {
	return fmt.Sprintf("%s-%02d-%02d-%04d", ApplicationIDPrefix, branchID, productID, seq)
}
