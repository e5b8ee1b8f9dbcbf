package enums

import "fmt"

// ConsultationStatus tracks a farmer-expert consultation through its lifecycle.
type ConsultationStatus string

const (
	ConsultationStatusPending   ConsultationStatus = "pending"
	ConsultationStatusScheduled ConsultationStatus = "scheduled"
	ConsultationStatusCompleted ConsultationStatus = "completed"
	ConsultationStatusCancelled ConsultationStatus = "cancelled"
)

var validConsultationStatuses = []ConsultationStatus{
	ConsultationStatusPending,
	ConsultationStatusScheduled,
	ConsultationStatusCompleted,
	ConsultationStatusCancelled,
}

func (c ConsultationStatus) String() string {
	return string(c)
}

func (c ConsultationStatus) IsValid() bool {
	for _, candidate := range validConsultationStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

func ParseConsultationStatus(value string) (ConsultationStatus, error) {
	for _, candidate := range validConsultationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid consultation status %q", value)
}
