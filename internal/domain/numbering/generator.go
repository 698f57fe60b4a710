package numbering

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
)

const (
	// DefaultLength is the display length of a document number
	DefaultLength = 13

	// prefixLength covers DDMMYY plus the three random digits
	prefixLength = 9

	randomMin = 100
	randomMax = 999
)

var (
	ErrInvalidLength  = shared.NewDomainError("INVALID_LENGTH", fmt.Sprintf("Document number length must exceed %d", prefixLength))
	ErrInvalidCounter = shared.NewDomainError("INVALID_COUNTER", "Document counter cannot be negative")
	ErrInvalidNumber  = shared.NewDomainError("INVALID_NUMBER", "Malformed document number")
)

// Generator builds display numbers of the form DDMMYY + RRR + counter.
// It is stateless apart from its clock and random source, and uniqueness of
// the output is not guaranteed.
type Generator struct {
	now    func() time.Time
	random func() int
}

// Option configures a Generator
type Option func(*Generator)

// WithClock overrides the wall clock
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// WithRandom overrides the random segment source. The function must return
// a value in [100, 999].
func WithRandom(random func() int) Option {
	return func(g *Generator) {
		g.random = random
	}
}

// New creates a Generator using the local clock and math/rand/v2
func New(opts ...Option) *Generator {
	g := &Generator{
		now:    time.Now,
		random: func() int { return randomMin + rand.IntN(randomMax-randomMin+1) },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns the display number for counter. The counter segment is
// counter+1 zero-padded to length-9 digits and is never truncated, so large
// counters produce numbers longer than length.
func (g *Generator) Generate(counter int64, length int) (string, error) {
	if length <= prefixLength {
		return "", ErrInvalidLength
	}
	if counter < 0 {
		return "", ErrInvalidCounter
	}

	today := g.now()
	random := g.random()
	if random < randomMin || random > randomMax {
		return "", fmt.Errorf("numbering: random segment %d out of range", random)
	}

	return fmt.Sprintf("%02d%02d%02d%03d%0*d",
		today.Day(),
		int(today.Month()),
		today.Year()%100,
		random,
		length-prefixLength,
		counter+1,
	), nil
}

// Parts are the segments of a document number
type Parts struct {
	Day     int
	Month   int
	Year    int
	Random  int
	Counter int64
}

// Parse splits a document number into its segments. Year is the two-digit
// year as printed.
func Parse(number string) (Parts, error) {
	if len(number) <= prefixLength {
		return Parts{}, ErrInvalidNumber
	}
	for i := 0; i < len(number); i++ {
		if number[i] < '0' || number[i] > '9' {
			return Parts{}, ErrInvalidNumber
		}
	}

	counter, err := strconv.ParseInt(number[prefixLength:], 10, 64)
	if err != nil {
		return Parts{}, ErrInvalidNumber
	}
	p := Parts{
		Day:     atoi(number[0:2]),
		Month:   atoi(number[2:4]),
		Year:    atoi(number[4:6]),
		Random:  atoi(number[6:9]),
		Counter: counter,
	}
	if p.Day < 1 || p.Day > 31 || p.Month < 1 || p.Month > 12 {
		return Parts{}, ErrInvalidNumber
	}
	return p, nil
}

// CounterSuffix returns the counter segment (counter+1) of a document number
func CounterSuffix(number string) (int64, error) {
	p, err := Parse(number)
	if err != nil {
		return 0, err
	}
	return p.Counter, nil
}

// atoi parses a digit-only string already checked by Parse
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
