package enums

import "fmt"

// LineItemSource records which actor added a line to an order.
type LineItemSource string

const (
	LineItemSourceUser    LineItemSource = "user"
	LineItemSourceFactory LineItemSource = "factory"
)

func (l LineItemSource) IsValid() bool {
	return l == LineItemSourceUser || l == LineItemSourceFactory
}

// ParseLineItemSource converts raw input into a LineItemSource.
func ParseLineItemSource(value string) (LineItemSource, error) {
	source := LineItemSource(value)
	if !source.IsValid() {
		return "", fmt.Errorf("invalid line item source %q", value)
	}
	return source, nil
}
