package enums

import "fmt"

// SupportStatus tracks a support ticket from submission to closure.
type SupportStatus string

const (
	SupportStatusOpen     SupportStatus = "open"
	SupportStatusAnswered SupportStatus = "answered"
	SupportStatusClosed   SupportStatus = "closed"
)

var validSupportStatuses = []SupportStatus{
	SupportStatusOpen,
	SupportStatusAnswered,
	SupportStatusClosed,
}

func (s SupportStatus) String() string {
	return string(s)
}

func (s SupportStatus) IsValid() bool {
	for _, candidate := range validSupportStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func ParseSupportStatus(value string) (SupportStatus, error) {
	for _, candidate := range validSupportStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid support status %q", value)
}
