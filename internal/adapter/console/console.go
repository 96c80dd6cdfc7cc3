// Package console is the interactive terminal surface: the station menu,
// validated numeric prompts and the printed report.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/couchcryptid/metar-economizer/internal/domain"
)

// Console reads answers line by line from in and writes prompts and the
// report to out.
type Console struct {
	in    *bufio.Scanner
	out   io.Writer
	lines chan line
	once  sync.Once
}

// line is one scanned answer, or the error that ended the input.
type line struct {
	text string
	err  error
}

// New creates a Console over the given streams, typically os.Stdin and os.Stdout.
func New(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewScanner(in), out: out, lines: make(chan line)}
}

// scan feeds input lines to c.lines until the input ends. A blocked read
// outlives a cancelled prompt; the process exits around it.
func (c *Console) scan() {
	for c.in.Scan() {
		c.lines <- line{text: c.in.Text()}
	}
	err := domain.ErrInputClosed
	if serr := c.in.Err(); serr != nil {
		err = fmt.Errorf("read input: %w", serr)
	}
	c.lines <- line{err: err}
	close(c.lines)
}

// readLine returns the next trimmed input line. End of input is
// domain.ErrInputClosed; a done ctx returns ctx.Err() without waiting for input.
func (c *Console) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.once.Do(func() { go c.scan() })

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l, ok := <-c.lines:
		if !ok {
			return "", domain.ErrInputClosed
		}
		if l.err != nil {
			return "", l.err
		}
		return strings.TrimSpace(l.text), nil
	}
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// inputError is a rejected answer. Its message is shown before re-prompting.
type inputError struct{ msg string }

func (e *inputError) Error() string { return e.msg }

func (e *inputError) Unwrap() error { return domain.ErrInvalidUserInput }

func invalid(format string, args ...any) error {
	return &inputError{msg: fmt.Sprintf(format, args...)}
}

// PromptNumeric shows label and reads answers until one parses and passes
// check. Each rejection prints the error's message. Only input errors and a
// done ctx end the loop.
func PromptNumeric[T any](ctx context.Context, c *Console, label string, parse func(string) (T, error), check func(T) error) (T, error) {
	for {
		c.printf("%s", label)
		line, err := c.readLine(ctx)
		if err != nil {
			var zero T
			return zero, err
		}

		v, err := parse(line)
		if err == nil && check != nil {
			err = check(v)
		}
		if err != nil {
			c.printf("\n *** %v\n\n", err)
			continue
		}
		return v, nil
	}
}

// Float parses a finite decimal number.
func Float(name string) func(string) (float64, error) {
	return func(s string) (float64, error) {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, invalid("%s must be a number within the specified limits.", name)
		}
		return v, nil
	}
}

// RoundedFloat parses a number and rounds it half-to-even to a whole value.
func RoundedFloat(name string) func(string) (float64, error) {
	parse := Float(name)
	return func(s string) (float64, error) {
		v, err := parse(s)
		if err != nil {
			return 0, err
		}
		return math.RoundToEven(v), nil
	}
}

// Int parses a whole number.
func Int(name string) func(string) (int, error) {
	return func(s string) (int, error) {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, invalid("%s must be a whole number within the specified limits.", name)
		}
		return v, nil
	}
}

// Between accepts values in [lo, hi].
func Between[T int | float64](name string, lo, hi T) func(T) error {
	return func(v T) error {
		if v < lo || v > hi {
			return invalid("%s must be between %v & %v (inclusive).", name, lo, hi)
		}
		return nil
	}
}

// ReadIndoor prompts for the indoor dry bulb and relative humidity. Both are
// rounded to whole numbers.
func (c *Console) ReadIndoor(ctx context.Context) (domain.IndoorConditions, error) {
	temp, err := PromptNumeric(ctx, c, "Enter indoor dry bulb temperature (0-120 deg F): ",
		RoundedFloat("Temperature"), Between("Temperature", 0.0, 120.0))
	if err != nil {
		return domain.IndoorConditions{}, err
	}
	rh, err := PromptNumeric(ctx, c, "Enter indoor relative humidity (0-100 %): ",
		RoundedFloat("Relative Humidity"), Between("Relative Humidity", 0.0, 100.0))
	if err != nil {
		return domain.IndoorConditions{}, err
	}
	return domain.IndoorConditions{TemperatureF: temp, RelativeHumidityPc: rh}, nil
}

// ReadOpening prompts for the window geometry and facing.
func (c *Console) ReadOpening(ctx context.Context) (domain.WindowOpening, error) {
	width, err := PromptNumeric(ctx, c, "Enter window opening width in inches (20-60): ",
		Float("Window width"), Between("Window width", 20.0, 60.0))
	if err != nil {
		return domain.WindowOpening{}, err
	}
	height, err := PromptNumeric(ctx, c, "Enter window opening height in inches (1-30): ",
		Float("Window height"), Between("Window height", 1.0, 30.0))
	if err != nil {
		return domain.WindowOpening{}, err
	}
	qty, err := PromptNumeric(ctx, c, "Enter quantity of window openings (1-9): ",
		Int("Quantity"), Between("Quantity", 1, 9))
	if err != nil {
		return domain.WindowOpening{}, err
	}
	facing, err := PromptNumeric(ctx, c, "Enter compass direction of window openings (in degrees from True North) (0 - 359): ",
		Float("Direction"), Between("Direction", 0.0, 359.0))
	if err != nil {
		return domain.WindowOpening{}, err
	}
	return domain.NewWindowOpening(width, height, qty, facing)
}
