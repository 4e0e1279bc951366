package cmd

import (
	"fmt"
	"strings"
	"time"

	"partnerpay/models"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// parseDate reads a YYYY-MM-DD date, defaulting to today when s is empty
func parseDate(s string) (time.Time, error) {
	if s == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return d, nil
}

// parseNames splits a comma separated list, dropping blanks and repeats
func parseNames(s string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// parseShares reads "W1=40,W2=30,W3=30"
func parseShares(s string) (models.Shares, error) {
	shares := make(models.Shares)
	for _, pair := range parseNames(s) {
		name, pct, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid share %q, expected partner=percent", pair)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("invalid share %q: missing partner", pair)
		}
		if _, dup := shares[name]; dup {
			return nil, fmt.Errorf("partner %q listed twice", name)
		}
		value, err := decimal.NewFromString(strings.TrimSpace(pct))
		if err != nil {
			return nil, fmt.Errorf("invalid percentage for %s: %q", name, pct)
		}
		shares[name] = value
	}
	return shares, nil
}

// parsePresence merges the present and absent lists of one day
func parsePresence(present, absent string) (map[string]bool, error) {
	presence := make(map[string]bool)
	for _, name := range parseNames(present) {
		presence[name] = true
	}
	for _, name := range parseNames(absent) {
		if presence[name] {
			return nil, fmt.Errorf("partner %q is both present and absent", name)
		}
		presence[name] = false
	}
	return presence, nil
}
