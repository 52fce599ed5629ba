package model

import (
	"fmt"
	"strings"
	"time"
)

// Layouts accepted for the operation time column. Both textual encodings found in
// bank exports map to the same instant.
var operationTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"02.01.2006 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"02.01.2006 15:04",
	"2006-01-02",
	"02.01.2006",
}

// ParseOperationTime parses an operation timestamp in any supported layout.
func ParseOperationTime(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	for _, layout := range operationTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized operation time %q", s)
}

// Output layouts.
const (
	DisplayDateLayout = "02.01.2006"
	ReportDateLayout  = "2006-01-02"
	MonthLayout       = "2006-01"
	DateTimeLayout    = "2006-01-02 15:04:05"
)
