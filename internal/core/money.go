package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Money is an amount in paise, the minor unit of the rupee. All arithmetic
// stays in int64 paise; floats never enter the pipeline.
type Money struct {
	Paise int64
}

func NewMoney(paise int64) Money {
	return Money{Paise: paise}
}

// ParseDecimalToPaise converts a decimal rupee string to paise. Grouping
// commas are stripped before parsing ("1,23,456.78" reads as 123456.78).
// A third fractional digit rounds half-up; negative or non-numeric input
// is rejected.
func ParseDecimalToPaise(s string) (int64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if cleaned == "" {
		return 0, ErrInvalidAmount
	}
	if strings.HasPrefix(cleaned, "-") {
		return 0, ErrInvalidAmount
	}

	intPart := cleaned
	fracPart := ""
	if i := strings.IndexByte(cleaned, '.'); i >= 0 {
		intPart = cleaned[:i]
		fracPart = cleaned[i+1:]
		if strings.IndexByte(fracPart, '.') >= 0 {
			return 0, ErrInvalidAmount
		}
	}
	if intPart == "" {
		intPart = "0"
	}

	rupees, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if rupees > math.MaxInt64/100 {
		return 0, fmt.Errorf("%w: amount too large", ErrInvalidAmount)
	}

	var paise int64
	switch {
	case fracPart == "":
	case len(fracPart) <= 2:
		padded := fracPart + strings.Repeat("0", 2-len(fracPart))
		paise, err = strconv.ParseInt(padded, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
	default:
		head, err := strconv.ParseInt(fracPart[:2], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
		// Half-up on the third fractional digit; anything beyond it is
		// ignored.
		third := fracPart[2]
		if third < '0' || third > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
		for _, c := range fracPart[3:] {
			if c < '0' || c > '9' {
				return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
			}
		}
		paise = head
		if third >= '5' {
			paise++
		}
	}

	total := rupees*100 + paise
	if total < 0 {
		return 0, fmt.Errorf("%w: amount too large", ErrInvalidAmount)
	}
	return total, nil
}

// FormatINR renders paise as a rupee string with en-IN digit grouping:
// the last three integer digits form one group, every group before it has
// two. 123456789 paise renders as "12,34,567.89". No re-rounding happens
// here; the value is exact.
func FormatINR(paise int64) string {
	sign := ""
	if paise < 0 {
		sign = "-"
		paise = -paise
	}
	rupees := paise / 100
	frac := paise % 100

	digits := strconv.FormatInt(rupees, 10)
	grouped := groupIndian(digits)
	return fmt.Sprintf("%s%s.%02d", sign, grouped, frac)
}

func groupIndian(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	head := digits[:n-3]
	// Leading group of one or two digits, then pairs.
	rem := len(head) % 2
	if rem == 1 {
		b.WriteString(head[:1])
		head = head[1:]
		b.WriteByte(',')
	}
	for i := 0; i < len(head); i += 2 {
		b.WriteString(head[i : i+2])
		b.WriteByte(',')
	}
	b.WriteString(digits[n-3:])
	return b.String()
}

// Display renders the amount with the rupee sign, e.g. "₹1,02,500.00".
func (m Money) Display() string {
	return "₹" + FormatINR(m.Paise)
}

// Rupees returns the amount in rupees as a float. Display and JSON paths
// never use this; it exists for spreadsheet export only.
func (m Money) Rupees() float64 {
	return float64(m.Paise) / 100
}

func (m Money) Add(other Money) Money {
	return Money{Paise: m.Paise + other.Paise}
}

// MarshalJSON writes the amount as a bare paise integer; rupees never
// appear on the wire.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(m.Paise, 10)), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	paise, err := strconv.ParseInt(strings.Trim(string(data), `"`), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, data)
	}
	m.Paise = paise
	return nil
}
