package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// summaryLine renders one line of the "all" summary, or reports the field absent.
type summaryLine struct {
	label  string
	render func(u *UserRecord) (string, bool)
}

// summaryOrder is the fixed line order of the "all" summary. It does not
// depend on how the store returned the record.
var summaryOrder = []summaryLine{
	{"Name", stringField(func(u *UserRecord) *string { return u.Name })},
	{"Email", stringField(func(u *UserRecord) *string { return u.Email })},
	{"Role", func(u *UserRecord) (string, bool) {
		if u.Role == nil {
			return "", false
		}
		return string(*u.Role), true
	}},
	{"Position", stringField(func(u *UserRecord) *string { return u.Position })},
	{"Department", stringField(func(u *UserRecord) *string { return u.Department })},
	{"Salary", moneyField(func(u *UserRecord) decimal.NullDecimal { return u.BaseSalary })},
	{"Bonus", moneyField(func(u *UserRecord) decimal.NullDecimal { return u.Bonus })},
	{"Annual Leave Days", intField(func(u *UserRecord) *int { return u.AnnualLeaveDays })},
	{"Sick Leave Days", intField(func(u *UserRecord) *int { return u.SickLeaveDays })},
}

func stringField(get func(*UserRecord) *string) func(*UserRecord) (string, bool) {
	return func(u *UserRecord) (string, bool) {
		v := get(u)
		if v == nil {
			return "", false
		}
		return *v, true
	}
}

func intField(get func(*UserRecord) *int) func(*UserRecord) (string, bool) {
	return func(u *UserRecord) (string, bool) {
		v := get(u)
		if v == nil {
			return "", false
		}
		return strconv.Itoa(*v), true
	}
}

func moneyField(get func(*UserRecord) decimal.NullDecimal) func(*UserRecord) (string, bool) {
	return func(u *UserRecord) (string, bool) {
		v := get(u)
		if !v.Valid {
			return "", false
		}
		return FormatCurrency(v.Decimal), true
	}
}

// FormatCurrency renders d as dollars with thousands separators and two
// decimal places, e.g. $1,234.50.
func FormatCurrency(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	whole := d.Truncate(0)
	cents := d.Sub(whole).Round(2)
	if cents.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		whole = whole.Add(decimal.NewFromInt(1))
		cents = decimal.Zero
	}
	return fmt.Sprintf("%s$%s.%s", sign, humanize.BigComma(whole.BigInt()), cents.StringFixed(2)[2:])
}

// FormatField answers a request for one field of rec, or for "all" of it.
func FormatField(rec *UserRecord, field string) (string, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return "", missingParameter("Please specify what personal information you'd like to know.")
	}

	name := rec.DisplayName("The user")
	fieldLower := strings.ToLower(field)

	if fieldLower == "all" {
		return summarize(rec, name), nil
	}

	for _, f := range rec.Fields() {
		if strings.ToLower(f.Key) == fieldLower {
			return fmt.Sprintf("The value for '%s' for %s is: %s", f.Key, name, f.Value), nil
		}
	}

	if fieldLower == "salary" {
		if !rec.BaseSalary.Valid {
			return fmt.Sprintf("Salary information is not available for %s.", name), nil
		}
		total := rec.BaseSalary.Decimal
		if rec.Bonus.Valid {
			total = total.Add(rec.Bonus.Decimal)
		}
		return fmt.Sprintf("%s's total compensation is %s.", capitalize(name), FormatCurrency(total)), nil
	}

	return "", fieldNotFound(field, name)
}

func summarize(rec *UserRecord, name string) string {
	lines := []string{fmt.Sprintf("Here is a summary for %s:", name)}
	for _, s := range summaryOrder {
		if v, ok := s.render(rec); ok {
			lines = append(lines, fmt.Sprintf("- %s: %s", s.label, v))
		}
	}
	if submitted := flaggedKeys(rec.UploadedDocuments); len(submitted) > 0 {
		lines = append(lines, "- Documents Submitted: "+strings.Join(submitted, ", "))
	}
	if resubmit := flaggedKeys(rec.ResubmissionRequested); len(resubmit) > 0 {
		lines = append(lines, "- Resubmission Required For: "+strings.Join(resubmit, ", "))
	}
	return strings.Join(lines, "\n")
}

// flaggedKeys returns the keys of m whose flag is true, sorted.
func flaggedKeys(m map[string]bool) []string {
	var out []string
	for _, k := range sortedKeys(m) {
		if m[k] {
			out = append(out, k)
		}
	}
	return out
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
