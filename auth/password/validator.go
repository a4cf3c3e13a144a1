package password

import (
	"bufio"
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kbukum/backend-template/validation"
)

const (
	DefaultMinLength     = 8
	DefaultMaxSimilarity = 0.7
)

// Field is the field name strength errors are reported under.
const Field = "password"

//go:embed common-passwords.txt
var commonPasswordList string

var commonPasswords = func() map[string]struct{} {
	set := make(map[string]struct{})
	sc := bufio.NewScanner(strings.NewReader(commonPasswordList))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			set[strings.ToLower(line)] = struct{}{}
		}
	}
	return set
}()

// Attribute is a user attribute the password must not resemble. Name is
// the human-readable label used in the message.
type Attribute struct {
	Name  string
	Value string
}

// Validator applies the length, numeric, common-password and similarity
// checks.
type Validator struct {
	MinLength     int
	MaxSimilarity float64
}

// Validate returns a VALIDATION AppError listing every failed check under
// the "password" field, or nil.
func (v *Validator) Validate(password string, attrs ...Attribute) error {
	msgs := v.Check(password, attrs...)
	if len(msgs) == 0 {
		return nil
	}
	fv := validation.New()
	for _, m := range msgs {
		fv.AddError(Field, m)
	}
	return fv.Validate()
}

// Check returns the messages of every failed check.
func (v *Validator) Check(password string, attrs ...Attribute) []string {
	minLen := v.MinLength
	if minLen <= 0 {
		minLen = DefaultMinLength
	}
	maxSim := v.MaxSimilarity
	if maxSim <= 0 {
		maxSim = DefaultMaxSimilarity
	}

	var msgs []string
	if name, ok := similarAttribute(password, maxSim, attrs); ok {
		msgs = append(msgs, fmt.Sprintf("The password is too similar to the %s.", name))
	}
	if utf8.RuneCountInString(password) < minLen {
		unit := "characters"
		if minLen == 1 {
			unit = "character"
		}
		msgs = append(msgs, fmt.Sprintf("This password is too short. It must contain at least %d %s.", minLen, unit))
	}
	if IsCommon(password) {
		msgs = append(msgs, "This password is too common.")
	}
	if isNumeric(password) {
		msgs = append(msgs, "This password is entirely numeric.")
	}
	return msgs
}

// IsCommon reports whether password is in the common-password list.
func IsCommon(password string) bool {
	_, ok := commonPasswords[strings.ToLower(strings.TrimSpace(password))]
	return ok
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

var nonWord = regexp.MustCompile(`\W+`)

// similarAttribute compares the password against each attribute value and
// its word parts.
func similarAttribute(password string, maxSim float64, attrs []Attribute) (string, bool) {
	pw := strings.ToLower(password)
	for _, a := range attrs {
		if a.Value == "" {
			continue
		}
		value := strings.ToLower(a.Value)
		parts := append(nonWord.Split(value, -1), value)
		for _, part := range parts {
			if exceedsLengthRatio(pw, maxSim, part) {
				continue
			}
			if quickRatio(pw, part) >= maxSim {
				return a.Name, true
			}
		}
	}
	return "", false
}

// exceedsLengthRatio skips values too short relative to the password to
// ever reach maxSim.
func exceedsLengthRatio(password string, maxSim float64, value string) bool {
	pwLen := utf8.RuneCountInString(password)
	valLen := utf8.RuneCountInString(value)
	bound := maxSim / 2 * float64(pwLen)
	return pwLen >= 10*valLen && float64(valLen) < bound
}

// quickRatio is an upper bound on the similarity of a and b: twice the
// size of their character multiset intersection over their total length.
func quickRatio(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 1
	}
	avail := make(map[rune]int)
	for _, r := range b {
		avail[r]++
	}
	matches := 0
	for _, r := range a {
		if avail[r] > 0 {
			avail[r]--
			matches++
		}
	}
	return 2 * float64(matches) / float64(total)
}
