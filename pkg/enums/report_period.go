package enums

import "fmt"

// ReportPeriod selects the window of a sales report.
type ReportPeriod string

const (
	ReportPeriodToday ReportPeriod = "today"
	ReportPeriodWeek  ReportPeriod = "week"
	ReportPeriodMonth ReportPeriod = "month"
	ReportPeriodYear  ReportPeriod = "year"
)

var validReportPeriods = []ReportPeriod{
	ReportPeriodToday,
	ReportPeriodWeek,
	ReportPeriodMonth,
	ReportPeriodYear,
}

// String implements fmt.Stringer.
func (p ReportPeriod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ReportPeriod.
func (p ReportPeriod) IsValid() bool {
	for _, candidate := range validReportPeriods {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseReportPeriod converts raw input into a ReportPeriod. Empty input yields month.
func ParseReportPeriod(value string) (ReportPeriod, error) {
	if value == "" {
		return ReportPeriodMonth, nil
	}
	for _, candidate := range validReportPeriods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid report period %q", value)
}
