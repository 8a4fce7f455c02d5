package utils

import "time"

func ParseDate(dateStr string) (*time.Time, error) {
	var date time.Time

	if dateStr != "" {
		incomingDate, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, err
		}

		date = incomingDate
	}

	return &date, nil
}

// FormatDateBR formata a data no padrão brasileiro dd/mm/aaaa
func FormatDateBR(date time.Time) string {
	return date.Format("02/01/2006")
}

// FormatDateTimeBR formata data e hora no padrão brasileiro
func FormatDateTimeBR(date time.Time) string {
	return date.Format("02/01/2006 15:04")
}
