package customrequest

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("custom request not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type ProjectType string

const (
	TypeWebApplication     ProjectType = "Web Application"
	TypeMobileApp          ProjectType = "Mobile App"
	TypeMachineLearning    ProjectType = "Machine Learning"
	TypeIoTProject         ProjectType = "IoT Project"
	TypeDesktopApplication ProjectType = "Desktop Application"
	TypeDataAnalysis       ProjectType = "Data Analysis"
	TypeOther              ProjectType = "Other"
)

var ProjectTypes = []ProjectType{
	TypeWebApplication,
	TypeMobileApp,
	TypeMachineLearning,
	TypeIoTProject,
	TypeDesktopApplication,
	TypeDataAnalysis,
	TypeOther,
}

func (t ProjectType) Valid() bool {
	for _, v := range ProjectTypes {
		if v == t {
			return true
		}
	}

	return false
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusRejected   Status = "rejected"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:    {StatusInProgress: true, StatusCompleted: true, StatusRejected: true},
	StatusInProgress: {StatusCompleted: true, StatusRejected: true},
	StatusCompleted:  {},
	StatusRejected:   {},
}

func (s Status) Valid() bool {
	_, ok := validNext[s]
	return ok
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// Request is a visitor's ask for a bespoke project.
type Request struct {
	ID          uuid.UUID
	Name        string
	Email       string
	Phone       string
	ProjectType ProjectType
	Deadline    time.Time
	Description string
	Budget      decimal.Decimal
	Status      Status
	UserID      *uuid.UUID
	AdminNotes  string
	CreatedAt   time.Time
}
