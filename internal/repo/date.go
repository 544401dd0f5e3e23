package repo

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// dateLayout is fixed-width so that text ordering in SQLite matches time ordering.
const dateLayout = "2006-01-02T15:04:05.000000000Z"

// Date is a UTC timestamp stored as sortable text.
type Date time.Time

func NewDate(t time.Time) Date {
	return Date(t.UTC())
}

func (d Date) Value() (driver.Value, error) {
	return time.Time(d).UTC().Format(dateLayout), nil
}

func (d *Date) Scan(value any) error {
	if value == nil {
		*d = Date(time.Time{})
		return nil
	}

	if str, ok := value.(string); ok {
		t, err := time.Parse(time.RFC3339Nano, str)
		if err != nil {
			t, err = time.Parse("2006-01-02 15:04:05", str)
			if err != nil {
				return err
			}
		}
		*d = Date(t.UTC())
		return nil
	}

	if t, ok := value.(time.Time); ok {
		*d = Date(t.UTC())
		return nil
	}

	return fmt.Errorf("cannot scan type %T into Date", value)
}

func (d Date) String() string {
	return time.Time(d).Format(time.RFC3339Nano)
}

func (d Date) Time() time.Time {
	return time.Time(d)
}
