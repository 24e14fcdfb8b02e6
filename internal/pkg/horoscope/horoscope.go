package horoscope

import "time"

// Western signs keyed by fixed month/day ranges, inclusive on both ends.
// Ranges are year independent; Capricornus wraps the year boundary.
var signRanges = []struct {
	Sign  string
	Start string // MM-DD
	End   string
}{
	{"Aries", "03-21", "04-19"},
	{"Taurus", "04-20", "05-20"},
	{"Gemini", "05-21", "06-21"},
	{"Cancer", "06-22", "07-22"},
	{"Leo", "07-23", "08-22"},
	{"Virgo", "08-23", "09-22"},
	{"Libra", "09-23", "10-23"},
	{"Scorpius", "10-24", "11-21"},
	{"Sagittarius", "11-22", "12-21"},
	{"Capricornus", "12-22", "01-19"},
	{"Aquarius", "01-20", "02-18"},
	{"Pisces", "02-19", "03-20"},
}

var zodiacAnimals = []string{
	"Rat", "Ox", "Tiger", "Rabbit", "Dragon", "Snake",
	"Horse", "Goat", "Monkey", "Rooster", "Dog", "Pig",
}

// Sign returns the western sign whose range contains the birth date's
// month/day. The table covers every day of the year, so the empty result is
// unreachable.
func Sign(birthDate time.Time) string {
	monthDay := birthDate.Format("01-02")
	for _, r := range signRanges {
		if r.Start <= r.End {
			if monthDay >= r.Start && monthDay <= r.End {
				return r.Sign
			}
		} else if monthDay >= r.Start || monthDay <= r.End {
			return r.Sign
		}
	}
	return ""
}

// Zodiac returns the Chinese zodiac animal for the birth year. The twelve-year
// cycle is anchored so that year 4 CE is Rat; lunar new year offsets are not
// applied.
func Zodiac(birthDate time.Time) string {
	idx := (birthDate.Year() - 4) % 12
	if idx < 0 {
		idx += 12
	}
	return zodiacAnimals[idx]
}
