package period

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// EndOfMonthDay is the sentinel end day meaning "through the last calendar
// day of the month", whatever that resolves to (28-31).
const EndOfMonthDay = 31

// Generation window epoch: December 2025.
const (
	epochYear  = 2025
	epochMonth = 11 // zero-based
)

// BasePeriod is an operator-configured sub-month billing slice, e.g. 1-10,
// 11-20, 21-end. Base periods are assumed to partition a month without gaps
// when sorted by StartDay.
type BasePeriod struct {
	ID       string `json:"id"`
	StartDay int    `json:"startDay"`
	EndDay   int    `json:"endDay"`
}

// Key identifies one generated bill period: a base period instantiated for a
// specific calendar month. Month is zero-based (0 = January).
type Key struct {
	Month  int
	Year   int
	BaseID string
}

// ParseKey decodes the flat "{month}-{year}-{baseID}" form. The boolean is
// false for anything that does not decompose into a valid key.
func ParseKey(id string) (Key, bool) {
	parts := strings.Split(id, "-")
	if len(parts) != 3 {
		return Key{}, false
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 0 || month > 11 {
		return Key{}, false
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil || parts[2] == "" {
		return Key{}, false
	}
	return Key{Month: month, Year: year, BaseID: parts[2]}, true
}

// String renders the flat identifier used in URLs, form values and persisted
// foreign keys.
func (k Key) String() string {
	return fmt.Sprintf("%d-%d-%s", k.Month, k.Year, k.BaseID)
}

// Less orders keys by (year, month, numeric base id).
func (k Key) Less(o Key) bool {
	if k.Year != o.Year {
		return k.Year < o.Year
	}
	if k.Month != o.Month {
		return k.Month < o.Month
	}
	return baseOrdinal(k.BaseID) < baseOrdinal(o.BaseID)
}

// Period is a BasePeriod instantiated for one (month, year) pair.
type Period struct {
	Key           Key    `json:"-"`
	ID            string `json:"id"`
	Name          string `json:"name"`
	MonthName     string `json:"monthName"`
	Year          int    `json:"year"`
	Ordinal       string `json:"ordinal"`
	StartDay      int    `json:"startDay"`
	EndDay        int    `json:"endDay"`
	FinancialYear string `json:"financialYear"`
}

// Generate produces the rolling window of bill periods: one Period per
// (month, base) pair from the December 2025 epoch through six months past
// now, plus a synthesized Period for every extra id that falls outside the
// window. Extra ids inside the window and duplicates are de-duplicated;
// extra ids referencing an unknown base are skipped.
//
// The result is in window order (chronological, base order within a month)
// unless at least one out-of-window extra was added, in which case the whole
// slice is re-sorted by key. Callers depend on that ordering, so it is part
// of the contract.
func Generate(base []BasePeriod, extraIDs []string, now time.Time) []Period {
	if len(base) == 0 {
		return nil
	}

	startMonths := epochYear*12 + epochMonth
	endMonths := now.Year()*12 + int(now.Month()) - 1 + 6
	total := endMonths - startMonths + 1
	if total < 1 {
		total = 1
	}

	periods := make([]Period, 0, total*len(base))
	seen := make(map[Key]struct{}, total*len(base))
	for i := 0; i < total; i++ {
		months := startMonths + i
		year, month := months/12, months%12
		for _, bp := range base {
			k := Key{Month: month, Year: year, BaseID: bp.ID}
			periods = append(periods, build(k, bp))
			seen[k] = struct{}{}
		}
	}

	added := false
	for _, id := range extraIDs {
		k, ok := ParseKey(id)
		if !ok {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		bp, ok := findBase(base, k.BaseID)
		if !ok {
			continue
		}
		periods = append(periods, build(k, bp))
		seen[k] = struct{}{}
		added = true
	}

	if added {
		sort.SliceStable(periods, func(i, j int) bool {
			return periods[i].Key.Less(periods[j].Key)
		})
	}

	return periods
}

// ClassifyDate buckets a "YYYY-MM-DD" date into its owning bill period and
// returns the flat period id, or "" when the date does not parse or no base
// period contains the day. The date is split by hand rather than parsed with
// time.Parse so that timezone handling can never shift the day.
func ClassifyDate(dateStr string, base []BasePeriod) string {
	year, month, day, ok := splitDate(dateStr)
	if !ok {
		return ""
	}
	for _, bp := range base {
		if day < bp.StartDay {
			continue
		}
		if bp.EndDay >= EndOfMonthDay || day <= bp.EndDay {
			return Key{Month: month, Year: year, BaseID: bp.ID}.String()
		}
	}
	return ""
}

// DisplayName renders the human-readable name for a flat period id, or "-"
// when the id does not decompose or references an unknown base period.
func DisplayName(id string, base []BasePeriod) string {
	k, ok := ParseKey(id)
	if !ok {
		return "-"
	}
	bp, ok := findBase(base, k.BaseID)
	if !ok {
		return "-"
	}
	return build(k, bp).Name
}

func build(k Key, bp BasePeriod) Period {
	month := time.Month(k.Month + 1)
	ord := ordinal(bp.ID)
	return Period{
		Key:           k,
		ID:            k.String(),
		Name:          fmt.Sprintf("%s-%02d %s", month.String()[:3], k.Year%100, ord),
		MonthName:     month.String(),
		Year:          k.Year,
		Ordinal:       ord,
		StartDay:      bp.StartDay,
		EndDay:        bp.EndDay,
		FinancialYear: financialYear(k.Month, k.Year),
	}
}

// ordinal names the Nth slot of a month. Anything past "3" gets a plain
// "th" suffix, which is how the ids have always been displayed.
func ordinal(baseID string) string {
	switch baseID {
	case "1":
		return "1st"
	case "2":
		return "2nd"
	case "3":
		return "3rd"
	default:
		return baseID + "th"
	}
}

// financialYear labels the April-March fiscal year containing the given
// zero-based month.
func financialYear(month, year int) string {
	if month < 3 {
		return fmt.Sprintf("%d-%02d", year-1, year%100)
	}
	return fmt.Sprintf("%d-%02d", year, (year+1)%100)
}

func findBase(base []BasePeriod, id string) (BasePeriod, bool) {
	for _, bp := range base {
		if bp.ID == id {
			return bp, true
		}
	}
	return BasePeriod{}, false
}

func baseOrdinal(id string) int {
	n, _ := strconv.Atoi(id)
	return n
}

// splitDate extracts (year, zero-based month, day) from a "YYYY-MM-DD"
// string, tolerating a trailing time component.
func splitDate(s string) (year, month, day int, ok bool) {
	s = strings.TrimSpace(s)
	if len(s) > 10 {
		s = s[:10]
	}
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return 0, 0, 0, false
	}
	year, errY := strconv.Atoi(parts[0])
	m, errM := strconv.Atoi(parts[1])
	day, errD := strconv.Atoi(parts[2])
	if errY != nil || errM != nil || errD != nil {
		return 0, 0, 0, false
	}
	if m < 1 || m > 12 || day < 1 || day > 31 {
		return 0, 0, 0, false
	}
	return year, m - 1, day, true
}
