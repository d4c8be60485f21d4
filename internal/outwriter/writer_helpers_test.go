package outwriter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"testing"

	"github.com/huangsam/eegstudy/internal/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFormatters(t *testing.T) {
	fmtFloat, intFmt := createFormatters(3)
	assert.Equal(t, "0.123", fmtFloat(0.12345))
	assert.Equal(t, "1.000", fmtFloat(1))
	assert.Equal(t, "%d", intFmt)
}

func TestWriteCSVWithHeader(t *testing.T) {
	var buf bytes.Buffer
	err := writeCSVWithHeader(&buf, []string{"a", "b"}, func(w *csv.Writer) error {
		return w.Write([]string{"1", "2"})
	})
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", buf.String())

	err = writeCSVWithHeader(&buf, []string{"a"}, func(*csv.Writer) error {
		return errors.New("row failure")
	})
	assert.EqualError(t, err, "row failure")
}

func TestWriteWithFileError(t *testing.T) {
	err := writeWithFile("/nonexistent/dir/out.txt", func(io.Writer) error { return nil }, "Wrote")
	assert.Error(t, err)
}

func TestTruncatePath(t *testing.T) {
	tests := []struct {
		path     string
		width    int
		expected string
	}{
		{"s1", 10, "s1"},
		{"fold-0/session_T/subject-01", 12, "...ubject-01"},
		{"abcdef", 3, "abcdef"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, truncatePath(tt.path, tt.width))
	}
}

func TestGetMaxTablePathWidth(t *testing.T) {
	tests := []struct {
		width    int
		expected int
	}{
		{40, 12},
		{120, 42},
		{300, 60},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, GetMaxTablePathWidth(&contract.Config{Width: tt.width}))
	}
}
