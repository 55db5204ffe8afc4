// Package script parses and runs simple operation scripts against an allocator.
//
//	# comment
//	alloc P1 200
//	free P1
//	reset 512
package script

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/QuangTung97/buddysim/allocator"
)

// ErrSyntax is returned for a line that is not a valid operation
var ErrSyntax = errors.New("syntax error")

// Op ...
type Op uint8

const (
	// OpAlloc ...
	OpAlloc Op = iota + 1
	// OpFree ...
	OpFree
	// OpReset ...
	OpReset
)

func (o Op) String() string {
	switch o {
	case OpAlloc:
		return "alloc"
	case OpFree:
		return "free"
	case OpReset:
		return "reset"
	default:
		return "unknown"
	}
}

// Command is one parsed script line. Size is the capacity for reset, 0 keeps it.
type Command struct {
	Line int
	Op   Op
	Name string
	Size int
}

func (c Command) String() string {
	switch c.Op {
	case OpAlloc:
		return fmt.Sprintf("alloc %s %d", c.Name, c.Size)
	case OpFree:
		return "free " + c.Name
	case OpReset:
		if c.Size > 0 {
			return fmt.Sprintf("reset %d", c.Size)
		}
		return "reset"
	default:
		return "unknown"
	}
}

// Parse reads one command per line, skipping blanks and # comments
func Parse(r io.Reader) ([]Command, error) {
	var result []Command

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		cmd, err := ParseFields(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		cmd.Line = lineNum
		result = append(result, cmd)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return result, nil
}

// ParseFields parses a single command already split into words
func ParseFields(fields []string) (Command, error) {
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("%w: empty command", ErrSyntax)
	}

	switch strings.ToLower(fields[0]) {
	case "alloc", "allocate":
		if len(fields) != 3 {
			return Command{}, fmt.Errorf("%w: usage: alloc NAME SIZE", ErrSyntax)
		}
		size, err := parseInt(fields[2])
		if err != nil {
			return Command{}, err
		}
		return Command{Op: OpAlloc, Name: fields[1], Size: size}, nil

	case "free", "release":
		if len(fields) != 2 {
			return Command{}, fmt.Errorf("%w: usage: free NAME", ErrSyntax)
		}
		return Command{Op: OpFree, Name: fields[1]}, nil

	case "reset":
		switch len(fields) {
		case 1:
			return Command{Op: OpReset}, nil
		case 2:
			size, err := parseInt(fields[1])
			if err != nil {
				return Command{}, err
			}
			if size <= 0 {
				return Command{}, fmt.Errorf("%w: reset capacity must > 0", ErrSyntax)
			}
			if size > allocator.MaxCapacity {
				return Command{}, fmt.Errorf("%w: reset capacity must <= %d", ErrSyntax, allocator.MaxCapacity)
			}
			return Command{Op: OpReset, Size: size}, nil
		default:
			return Command{}, fmt.Errorf("%w: usage: reset [CAPACITY]", ErrSyntax)
		}

	default:
		return Command{}, fmt.Errorf("%w: unknown operation %q", ErrSyntax, fields[0])
	}
}

func parseInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrSyntax, s)
	}
	return n, nil
}
