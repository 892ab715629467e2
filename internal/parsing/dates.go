package parsing

import (
	"fmt"
	"time"

	"github.com/araddon/dateparse"
)

// ParseWordDate parses a leniently formatted date (e.g. "Jan 2nd, 2006",
// "2006-01-02", "yesterday's date as 02/01/2006") into a time.Time.
func ParseWordDate(dateString string) (time.Time, error) {
	t, err := dateparse.ParseAny(dateString)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse date: %s", dateString)
	}
	return t, nil
}
