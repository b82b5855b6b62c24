package feed

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/damon-houk/ppd-ingest-service/internal/domain/entity"
	"github.com/google/uuid"
)

// FieldCount is the number of positional values on every feed line
const FieldCount = 16

// Positions of the fields on a feed line
const (
	fieldID = iota
	fieldPrice
	fieldDateOfTransfer
	fieldPostcode
	fieldPropertyType
	fieldIsResidential
	fieldEstateType
	fieldDuration
	fieldPAON
	fieldSAON
	fieldStreet
	fieldLocality
	fieldTown
	fieldDistrict
	fieldCategoryType
	fieldRecordStatus
)

var dateLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC3339,
}

// SplitLine splits one feed line into its positional values. A line is a
// comma-separated sequence of values, each either bare or quoted with ' or ",
// optionally wrapped in () or [].
func SplitLine(line string) ([]string, error) {
	s := strings.TrimSpace(line)
	if n := len(s); n >= 2 && ((s[0] == '(' && s[n-1] == ')') || (s[0] == '[' && s[n-1] == ']')) {
		s = strings.TrimSpace(s[1 : n-1])
	}
	if s == "" {
		return nil, errors.New("empty line")
	}

	var (
		values []string
		i      int
	)
	for {
		for i < len(s) && s[i] == ' ' {
			i++
		}

		var value string
		if i < len(s) && (s[i] == '"' || s[i] == '\'') {
			v, next, err := readQuoted(s, i)
			if err != nil {
				return nil, err
			}
			value, i = v, next
			for i < len(s) && s[i] == ' ' {
				i++
			}
		} else {
			end := strings.IndexByte(s[i:], ',')
			if end < 0 {
				end = len(s) - i
			}
			value = strings.TrimSpace(s[i : i+end])
			i += end
		}
		values = append(values, value)

		if i >= len(s) {
			return values, nil
		}
		if s[i] != ',' {
			return nil, fmt.Errorf("unexpected %q at offset %d", s[i], i)
		}
		i++
		// trailing comma, as in a one-element tuple
		if strings.TrimSpace(s[i:]) == "" {
			return values, nil
		}
	}
}

var escapes = map[byte]byte{
	'\\': '\\',
	'\'': '\'',
	'"':  '"',
	'n':  '\n',
	't':  '\t',
	'r':  '\r',
	'a':  '\a',
	'b':  '\b',
	'f':  '\f',
	'v':  '\v',
	'0':  0,
}

// readQuoted reads a quoted value starting at s[start]. Backslash escapes and
// doubled quotes are both accepted. An unknown escape keeps its backslash.
func readQuoted(s string, start int) (string, int, error) {
	quote := s[start]
	var sb strings.Builder
	for i := start + 1; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			i++
			if s[i] == 'x' && i+2 < len(s) {
				if b, err := strconv.ParseUint(s[i+1:i+3], 16, 8); err == nil {
					sb.WriteRune(rune(b))
					i += 2
					continue
				}
			}
			if e, ok := escapes[s[i]]; ok {
				sb.WriteByte(e)
			} else {
				sb.WriteByte('\\')
				sb.WriteByte(s[i])
			}
		case c == quote && i+1 < len(s) && s[i+1] == quote:
			i++
			sb.WriteByte(quote)
		case c == quote:
			return sb.String(), i + 1, nil
		default:
			sb.WriteByte(c)
		}
	}
	return "", 0, fmt.Errorf("unterminated quoted value at offset %d", start)
}

// ParseRecord turns one feed line into a Record. Every failure is a *entity.ParseError.
func ParseRecord(lineNo int, line string) (*entity.Record, error) {
	fields, err := SplitLine(line)
	if err != nil {
		return nil, &entity.ParseError{Line: lineNo, Err: err}
	}
	if len(fields) != FieldCount {
		return nil, &entity.ParseError{Line: lineNo, Err: fmt.Errorf("expected %d fields, got %d", FieldCount, len(fields))}
	}

	duration, err := parseInt(fields[fieldDuration])
	if err != nil {
		return nil, &entity.ParseError{Line: lineNo, Field: "duration", Err: err}
	}

	id, err := uuid.Parse(fields[fieldID])
	if err != nil {
		return nil, &entity.ParseError{Line: lineNo, Field: "id", Err: err}
	}

	price, err := parseInt(fields[fieldPrice])
	if err != nil {
		return nil, &entity.ParseError{Line: lineNo, Field: "price", Err: err}
	}

	date, err := parseDate(fields[fieldDateOfTransfer])
	if err != nil {
		return nil, &entity.ParseError{Line: lineNo, Field: "date_of_transfer", Err: err}
	}

	return &entity.Record{
		ID:             id,
		Price:          price,
		DateOfTransfer: date,
		Postcode:       fields[fieldPostcode],
		PropertyType:   fields[fieldPropertyType],
		IsResidential:  fields[fieldIsResidential],
		EstateType:     fields[fieldEstateType],
		Duration:       duration,
		PAON:           fields[fieldPAON],
		SAON:           fields[fieldSAON],
		Street:         fields[fieldStreet],
		Locality:       fields[fieldLocality],
		Town:           fields[fieldTown],
		District:       fields[fieldDistrict],
		CategoryType:   fields[fieldCategoryType],
		RecordStatus:   fields[fieldRecordStatus],
	}, nil
}

// parseInt reads a decimal integer allowing surrounding whitespace and
// single underscores between digits, e.g. " 12" or "1_000".
func parseInt(value string) (int, error) {
	v := strings.TrimSpace(value)
	if strings.Contains(v, "_") {
		digits := strings.TrimLeft(v, "+-")
		for i := 0; i < len(digits); i++ {
			if digits[i] != '_' {
				continue
			}
			if i == 0 || i == len(digits)-1 || !isDigit(digits[i-1]) || !isDigit(digits[i+1]) {
				return 0, fmt.Errorf("invalid integer %q", value)
			}
		}
		v = strings.ReplaceAll(v, "_", "")
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", value)
	}
	return n, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", value)
}
