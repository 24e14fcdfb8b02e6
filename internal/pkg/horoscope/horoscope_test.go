package horoscope

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestSign(t *testing.T) {
	cases := []struct {
		date time.Time
		want string
	}{
		{date(1900, time.May, 30), "Gemini"},
		{date(1995, time.March, 21), "Aries"},
		{date(1995, time.April, 19), "Aries"},
		{date(1995, time.April, 20), "Taurus"},
		{date(1988, time.August, 22), "Leo"},
		{date(1988, time.August, 23), "Virgo"},
		{date(2000, time.November, 21), "Scorpius"},
		{date(2000, time.November, 22), "Sagittarius"},
		{date(1999, time.December, 22), "Capricornus"},
		{date(2000, time.January, 1), "Capricornus"},
		{date(2000, time.January, 19), "Capricornus"},
		{date(2000, time.January, 20), "Aquarius"},
		{date(1991, time.February, 19), "Pisces"},
		{date(1991, time.March, 20), "Pisces"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Sign(tc.date), "date %s", tc.date.Format("2006-01-02"))
	}
}

func TestSignCoversEveryDay(t *testing.T) {
	// Walk a leap year so Feb 29 is included.
	day := date(2000, time.January, 1)
	for day.Year() == 2000 {
		require.NotEmpty(t, Sign(day), "no sign for %s", day.Format("01-02"))
		day = day.AddDate(0, 0, 1)
	}
}

func TestZodiac(t *testing.T) {
	cases := []struct {
		year int
		want string
	}{
		{1900, "Rat"},
		{1973, "Ox"},
		{1996, "Rat"},
		{2000, "Dragon"},
		{2023, "Rabbit"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Zodiac(date(tc.year, time.June, 1)), "year %d", tc.year)
	}
}
