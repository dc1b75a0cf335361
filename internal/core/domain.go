package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Wire names of the free-text entry fields.
const (
	FieldCategory    = "category"
	FieldSubCategory = "subCategory"
	FieldItemName    = "itemName"
	FieldQuantity    = "quantity"
	FieldTotalPrice  = "totalPrice"
	FieldComments    = "comments"
)

const (
	// TimeStep is the granularity offered by the time picker.
	TimeStep = 15 * time.Minute

	dateLayout      = "2006-01-02"
	clockLayout     = "15:04:05"
	isoMillisLayout = "2006-01-02T15:04:05.000Z"
)

type (
	// FormEntry is the in-progress record being composed in the form.
	FormEntry struct {
		Date        time.Time
		Time        time.Time
		Category    string
		SubCategory string
		ItemName    string
		Quantity    string // exclusive with TotalPrice
		TotalPrice  string // exclusive with Quantity
		Comments    string
	}

	// ResultRow is one element of the sequence returned by the results endpoint.
	ResultRow struct {
		ID    int    `json:"id"`
		Title string `json:"title"`
		Body  string `json:"body"`
	}
)

// RequiredFieldsMessage is shown inline when a submission fails validation.
const RequiredFieldsMessage = "Please fill in all required fields"

var (
	ErrRequiredFields = errors.New("required fields missing")
	ErrUnknownField   = errors.New("unknown field")
	ErrInvalidDate    = errors.New("invalid date")
	ErrInvalidTime    = errors.New("invalid time")
)

// NewFormEntry returns an entry with the current date and time and every text field empty.
func NewFormEntry(now time.Time) FormEntry {
	return FormEntry{Date: now, Time: now}
}

// SetField applies a text edit. A non-empty quantity clears the total price and
// a non-empty total price clears the quantity.
func (e *FormEntry) SetField(name, value string) error {
	switch name {
	case FieldCategory:
		e.Category = value
	case FieldSubCategory:
		e.SubCategory = value
	case FieldItemName:
		e.ItemName = value
	case FieldQuantity:
		e.Quantity = value
		if value != "" {
			e.TotalPrice = ""
		}
	case FieldTotalPrice:
		e.TotalPrice = value
		if value != "" {
			e.Quantity = ""
		}
	case FieldComments:
		e.Comments = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return nil
}

// SetDate replaces the calendar date.
func (e *FormEntry) SetDate(d time.Time) {
	e.Date = d
}

// SetTime replaces the time of day, aligned down to TimeStep.
func (e *FormEntry) SetTime(t time.Time) {
	step := int(TimeStep / time.Minute)
	y, m, d := t.Date()
	e.Time = time.Date(y, m, d, t.Hour(), t.Minute()-t.Minute()%step, 0, 0, t.Location())
}

// QuantityDisabled reports whether the quantity input is locked by a total price.
func (e FormEntry) QuantityDisabled() bool {
	return e.TotalPrice != ""
}

// TotalPriceDisabled reports whether the total price input is locked by a quantity.
func (e FormEntry) TotalPriceDisabled() bool {
	return e.Quantity != ""
}

// Validate performs the presence checks required before a submission.
func (e FormEntry) Validate() error {
	if e.Category == "" || e.SubCategory == "" || e.ItemName == "" {
		return ErrRequiredFields
	}
	if e.Quantity == "" && e.TotalPrice == "" {
		return ErrRequiredFields
	}
	return nil
}

// ISODate renders the date as a UTC timestamp with millisecond precision.
func (e FormEntry) ISODate() string {
	return e.Date.UTC().Format(isoMillisLayout)
}

// Clock renders the time of day as HH:MM:SS in the entry's own location.
func (e FormEntry) Clock() string {
	return e.Time.Format(clockLayout)
}

// DisplayDate renders the date the way the results table shows it.
func (e FormEntry) DisplayDate() string {
	return e.Date.Format("Mon Jan 02 2006")
}

// DateInput renders the date for an <input type="date">.
func (e FormEntry) DateInput() string {
	return e.Date.Format(dateLayout)
}

// TimeInput renders the time for an <input type="time">.
func (e FormEntry) TimeInput() string {
	return e.Time.Format("15:04")
}

// ParseDate parses a YYYY-MM-DD value in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}

// ParseClock parses HH:MM or HH:MM:SS and places it on the given day.
func ParseClock(s string, day time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	var (
		t   time.Time
		err error
	)
	for _, layout := range []string{"15:04", clockLayout} {
		if t, err = time.Parse(layout, s); err == nil {
			y, m, d := day.Date()
			return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, day.Location()), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
}
