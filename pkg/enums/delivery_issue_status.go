package enums

import "fmt"

// DeliveryIssueStatus tracks a reported delivery problem until it is resolved.
type DeliveryIssueStatus string

const (
	DeliveryIssueStatusOpen          DeliveryIssueStatus = "open"
	DeliveryIssueStatusInvestigating DeliveryIssueStatus = "investigating"
	DeliveryIssueStatusResolved      DeliveryIssueStatus = "resolved"
)

var validDeliveryIssueStatuses = []DeliveryIssueStatus{
	DeliveryIssueStatusOpen,
	DeliveryIssueStatusInvestigating,
	DeliveryIssueStatusResolved,
}

func (d DeliveryIssueStatus) String() string {
	return string(d)
}

func (d DeliveryIssueStatus) IsValid() bool {
	for _, candidate := range validDeliveryIssueStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

func ParseDeliveryIssueStatus(value string) (DeliveryIssueStatus, error) {
	for _, candidate := range validDeliveryIssueStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery issue status %q", value)
}
