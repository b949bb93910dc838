// Package intake covers registrant onboarding concerns consumed by the
// assessment core, chiefly the unique learner identifier.
package intake

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// ULI is a unique learner identifier in the AAA-YY-PPP-NNNNN-SSS form:
// learner initials, two-digit enrollment year, province code, five-digit
// serial and a three-digit sequence for repeat enrollments.
type ULI struct {
	Initials string
	Year     int // two-digit
	Province string
	Serial   int
	Sequence int
}

var uliPattern = regexp.MustCompile(`^([A-Z]{3})-(\d{2})-(\d{3})-(\d{5})-(\d{3})$`)

func (u ULI) String() string {
	return fmt.Sprintf("%s-%02d-%s-%05d-%03d", u.Initials, u.Year%100, u.Province, u.Serial, u.Sequence)
}

// NewULI derives the identifier from learner names and registry counters.
// Missing middle names fall back to 'X', matching registry practice.
func NewULI(firstName, middleName, lastName string, year int, province string, serial, sequence int) (ULI, error) {
	ini := initial(firstName) + initial(middleName) + initial(lastName)
	if len(ini) != 3 {
		return ULI{}, fmt.Errorf("cannot derive initials from %q %q %q", firstName, middleName, lastName)
	}
	if len(province) != 3 || !digits(province) {
		return ULI{}, fmt.Errorf("province code must be 3 digits, got %q", province)
	}
	if serial < 0 || serial > 99999 {
		return ULI{}, fmt.Errorf("serial out of range: %d", serial)
	}
	if sequence < 0 || sequence > 999 {
		return ULI{}, fmt.Errorf("sequence out of range: %d", sequence)
	}
	return ULI{Initials: ini, Year: year % 100, Province: province, Serial: serial, Sequence: sequence}, nil
}

// ParseULI validates and decomposes an identifier string.
func ParseULI(s string) (ULI, error) {
	m := uliPattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if m == nil {
		return ULI{}, fmt.Errorf("malformed uli %q", s)
	}
	year, _ := strconv.Atoi(m[2])
	serial, _ := strconv.Atoi(m[4])
	seq, _ := strconv.Atoi(m[5])
	return ULI{Initials: m[1], Year: year, Province: m[3], Serial: serial, Sequence: seq}, nil
}

func initial(name string) string {
	for _, r := range strings.TrimSpace(name) {
		if unicode.IsLetter(r) {
			return strings.ToUpper(string(r))
		}
	}
	return "X"
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
