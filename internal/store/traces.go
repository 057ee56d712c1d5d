package store

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"

	"github.com/verte-zerg/sinecheck/internal/model"
)

// errCorruptTraces marks a traces blob that does not decode to four equal columns.
var errCorruptTraces = errors.New("corrupt traces blob")

// encodeTraces packs the four columns as little-endian float64 values behind a
// uint32 sample count and compresses them with an lz4 frame.
func encodeTraces(log model.Log) ([]byte, error) {
	n := log.Len()
	for _, col := range [][]float64{log.Cmd, log.Ref, log.Pos} {
		if len(col) != n {
			return nil, fmt.Errorf("%w: column length %d, want %d", errCorruptTraces, len(col), n)
		}
	}

	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if err := binary.Write(zw, binary.LittleEndian, uint32(n)); err != nil {
		return nil, err
	}
	for _, col := range [][]float64{log.Time, log.Cmd, log.Ref, log.Pos} {
		if err := binary.Write(zw, binary.LittleEndian, col); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeTraces(blob []byte) (model.Log, error) {
	if len(blob) == 0 {
		return model.Log{}, fmt.Errorf("%w: empty", errCorruptTraces)
	}
	zr := lz4.NewReader(bytes.NewReader(blob))

	var n uint32
	if err := binary.Read(zr, binary.LittleEndian, &n); err != nil {
		return model.Log{}, fmt.Errorf("%w: %v", errCorruptTraces, err)
	}
	cols := make([][]float64, 4)
	for i := range cols {
		cols[i] = make([]float64, n)
		if err := binary.Read(zr, binary.LittleEndian, cols[i]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return model.Log{}, fmt.Errorf("%w: truncated", errCorruptTraces)
			}
			return model.Log{}, err
		}
	}
	return model.Log{Time: cols[0], Cmd: cols[1], Ref: cols[2], Pos: cols[3]}, nil
}
