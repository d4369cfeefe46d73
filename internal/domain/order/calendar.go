package order

import (
	"time"

	"github.com/go-faster/errors"
)

const dateLayout = "2006-01-02"

// Calendar decides which UTC dates accept orders. Sundays are always closed;
// additional closed dates come from configuration.
type Calendar struct {
	holidays map[string]struct{}
}

// NewCalendar parses holiday dates in YYYY-MM-DD form.
func NewCalendar(dates []string) (*Calendar, error) {
	holidays := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		if _, err := time.Parse(dateLayout, d); err != nil {
			return nil, errors.Wrapf(err, "parse holiday %q", d)
		}
		holidays[d] = struct{}{}
	}
	return &Calendar{holidays: holidays}, nil
}

// Closed reports whether the UTC date of t is a Sunday or a holiday.
func (c *Calendar) Closed(t time.Time) bool {
	t = t.UTC()
	if t.Weekday() == time.Sunday {
		return true
	}
	_, ok := c.holidays[t.Format(dateLayout)]
	return ok
}
