// Package logfile reads and writes sine-test logs.
package logfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/verte-zerg/sinecheck/internal/model"
)

// Columns is the number of fields on every data row: time cmd ref pos.
const Columns = 4

var (
	// ErrColumnCount is returned for rows that do not have exactly four fields.
	ErrColumnCount = errors.New("expected 4 columns")
	// ErrTooFewSamples is returned when a log has fewer than two rows.
	ErrTooFewSamples = errors.New("log needs at least 2 samples")
	// ErrNoFreeName is returned when every numbered log name is taken.
	ErrNoFreeName = errors.New("no available log file name")
)

// ParseError locates a malformed row.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Load reads a log from the provided file path.
func Load(path string) (model.Log, error) {
	file, err := os.Open(path)
	if err != nil {
		return model.Log{}, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only log.
			_ = cerr
		}
	}()
	return Parse(file, path)
}

// Parse reads whitespace-separated rows of time, cmd, ref and pos. Blank lines
// and lines starting with '#' are skipped; a "# time J.cmd J.ref J.pos" header
// names the joint.
func Parse(r io.Reader, path string) (model.Log, error) {
	log := model.Log{Path: path}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if log.Joint == "" {
				log.Joint = jointFromHeader(line)
			}
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != Columns {
			return model.Log{}, &ParseError{Path: path, Line: lineNo, Err: fmt.Errorf("%w, got %d", ErrColumnCount, len(fields))}
		}
		var row [Columns]float64
		for i, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return model.Log{}, &ParseError{Path: path, Line: lineNo, Err: err}
			}
			row[i] = v
		}
		log.Time = append(log.Time, row[0])
		log.Cmd = append(log.Cmd, row[1])
		log.Ref = append(log.Ref, row[2])
		log.Pos = append(log.Pos, row[3])
	}
	if err := scanner.Err(); err != nil {
		return model.Log{}, err
	}
	if log.Len() < 2 {
		return model.Log{}, fmt.Errorf("%s: %w", path, ErrTooFewSamples)
	}
	return log, nil
}

func jointFromHeader(line string) string {
	fields := strings.Fields(strings.TrimPrefix(line, "#"))
	if len(fields) != Columns || fields[0] != "time" {
		return ""
	}
	joint, suffix, ok := strings.Cut(fields[1], ".")
	if !ok || suffix != model.SignalCmd {
		return ""
	}
	return joint
}

// Write emits a header followed by one "%f %f %f %f" row per sample.
func Write(w io.Writer, log model.Log) error {
	joint := log.Joint
	if joint == "" {
		joint = "joint"
	}
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "# time %s.cmd %s.ref %s.pos\n", joint, joint, joint); err != nil {
		return fmt.Errorf("failed to write log header: %w", err)
	}
	for i := 0; i < log.Len(); i++ {
		if _, err := fmt.Fprintf(bw, "%f %f %f %f\n", log.Time[i], log.Cmd[i], log.Ref[i], log.Pos[i]); err != nil {
			return fmt.Errorf("failed to write log row: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush log: %w", err)
	}
	return nil
}

// NextLogPath returns the first unused sine_test_<joint>_<NNNN>.txt in dir.
func NextLogPath(dir, joint string) (string, error) {
	for number := 0; number < 10000; number++ {
		path := filepath.Join(dir, fmt.Sprintf("sine_test_%s_%04d.txt", joint, number))
		_, err := os.Stat(path)
		if errors.Is(err, os.ErrNotExist) {
			return path, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to stat %s: %w", path, err)
		}
	}
	return "", ErrNoFreeName
}
