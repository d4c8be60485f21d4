package metricstore

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/huangsam/eegstudy/schema"
	"github.com/nlpodyssey/gopickle/pickle"
	"github.com/nlpodyssey/gopickle/types"
)

// decodePickle unpickles one object. NumPy scalars, which metric functions
// such as f1 score return, are resolved to plain floats.
func decodePickle(r io.Reader) (any, error) {
	u := pickle.NewUnpickler(r)
	u.FindClass = findClass
	return u.Load()
}

func findClass(module, name string) (any, error) {
	numpyCore := strings.HasPrefix(module, "numpy") && strings.HasSuffix(module, "multiarray")
	switch {
	case module == "numpy" && name == "dtype":
		return dtypeClass{}, nil
	case numpyCore && name == "scalar":
		return scalarFunc{}, nil
	case numpyCore && name == "_reconstruct":
		return reconstructFunc{}, nil
	case module == "_codecs" && name == "encode":
		return latin1Encode{}, nil
	}
	return opaqueClass{GenericClass: types.NewGenericClass(module, name)}, nil
}

// opaqueClass stands in for classes without a decoder. Instances accept
// any state, so an entry such as a tensor does not fail the whole record.
type opaqueClass struct {
	*types.GenericClass
}

func (c opaqueClass) Call(...any) (any, error) {
	return &opaqueObject{class: c.Module + "." + c.Name}, nil
}

func (c opaqueClass) PyNew(...any) (any, error) {
	return &opaqueObject{class: c.Module + "." + c.Name}, nil
}

type opaqueObject struct {
	class string
}

func (*opaqueObject) PySetState(any) error { return nil }

// reconstructFunc handles numpy.core.multiarray._reconstruct, the first
// step of unpickling an ndarray; BUILD then sets shape, dtype and data.
type reconstructFunc struct{}

func (reconstructFunc) Call(...any) (any, error) {
	return &numpyArray{}, nil
}

// numpyArray keeps the shape of a pickled ndarray and, for numeric
// dtypes, its elements in C order.
type numpyArray struct {
	shape  []int
	values []float64
}

// PySetState reads (version, shape, dtype, is_fortran, data).
func (a *numpyArray) PySetState(state any) error {
	items, ok := sequenceItems(state)
	if !ok || len(items) < 5 {
		return fmt.Errorf("numpy.ndarray: unexpected state %T", state)
	}
	dims, ok := sequenceItems(items[1])
	if !ok {
		return fmt.Errorf("numpy.ndarray: shape is %T", items[1])
	}
	count := 1
	for _, d := range dims {
		n, ok := toFloat(d)
		if !ok {
			return fmt.Errorf("numpy.ndarray: dimension is %T", d)
		}
		a.shape = append(a.shape, int(n))
		count *= int(n)
	}

	dtype, ok := items[2].(*numpyDtype)
	if !ok {
		return nil // object arrays keep only their shape
	}
	var data []byte
	switch b := items[4].(type) {
	case []byte:
		data = b
	case string:
		data = []byte(b)
	default:
		return nil
	}
	if count == 0 || len(data)%count != 0 {
		return nil
	}
	size := len(data) / count
	values := make([]float64, count)
	for i := range values {
		v, err := dtype.decode(data[i*size : (i+1)*size])
		if err != nil {
			return nil // non-numeric dtypes keep only their shape
		}
		values[i] = v
	}
	a.values = values
	return nil
}

// dtypeClass constructs numpy.dtype objects.
type dtypeClass struct{}

func (dtypeClass) Call(args ...any) (any, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("numpy.dtype: missing type code")
	}
	code, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("numpy.dtype: type code is %T", args[0])
	}
	return &numpyDtype{code: code, order: "<"}, nil
}

// numpyDtype is the part of a numpy dtype needed to decode scalar bytes.
type numpyDtype struct {
	code  string
	order string
}

// PySetState reads the byte order from the dtype state tuple.
func (d *numpyDtype) PySetState(state any) error {
	items, ok := sequenceItems(state)
	if !ok || len(items) < 2 {
		return fmt.Errorf("numpy.dtype: unexpected state %T", state)
	}
	if order, ok := items[1].(string); ok {
		d.order = order
	}
	return nil
}

func (d *numpyDtype) byteOrder() binary.ByteOrder {
	if d.order == ">" {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// scalarFunc rebuilds numpy scalars from a dtype and their raw bytes.
type scalarFunc struct{}

func (scalarFunc) Call(args ...any) (any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("numpy scalar: expected 2 arguments, got %d", len(args))
	}
	dtype, ok := args[0].(*numpyDtype)
	if !ok {
		return nil, fmt.Errorf("numpy scalar: dtype is %T", args[0])
	}
	var data []byte
	switch b := args[1].(type) {
	case []byte:
		data = b
	case string:
		data = []byte(b)
	default:
		return nil, fmt.Errorf("numpy scalar: data is %T", args[1])
	}
	return dtype.decode(data)
}

func (d *numpyDtype) decode(data []byte) (float64, error) {
	code := strings.TrimLeft(d.code, "<>=|")
	if code == "" || len(data) == 0 {
		return 0, fmt.Errorf("numpy scalar: unsupported dtype %q", d.code)
	}
	order := d.byteOrder()
	kind, size := code[:1], len(data)
	switch {
	case kind == "f" && size == 8:
		return math.Float64frombits(order.Uint64(data)), nil
	case kind == "f" && size == 4:
		return float64(math.Float32frombits(order.Uint32(data))), nil
	case kind == "i" && size == 8:
		return float64(int64(order.Uint64(data))), nil
	case kind == "i" && size == 4:
		return float64(int32(order.Uint32(data))), nil
	case kind == "i" && size == 2:
		return float64(int16(order.Uint16(data))), nil
	case (kind == "i" || kind == "b") && size == 1:
		return float64(int8(data[0])), nil
	case kind == "u" && size == 8:
		return float64(order.Uint64(data)), nil
	case kind == "u" && size == 4:
		return float64(order.Uint32(data)), nil
	case kind == "u" && size == 2:
		return float64(order.Uint16(data)), nil
	case kind == "u" && size == 1:
		return float64(data[0]), nil
	}
	return 0, fmt.Errorf("numpy scalar: unsupported dtype %q with %d bytes", d.code, size)
}

// latin1Encode handles _codecs.encode, which protocol 2 uses for bytes.
type latin1Encode struct{}

func (latin1Encode) Call(args ...any) (any, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("_codecs.encode: missing argument")
	}
	s, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("_codecs.encode: argument is %T", args[0])
	}
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xff {
			return nil, fmt.Errorf("_codecs.encode: rune %U outside latin-1", r)
		}
		out = append(out, byte(r))
	}
	return out, nil
}

// Pickle opcodes used by the encoder.
const (
	opProto      = 0x80
	opEmptyDict  = '}'
	opEmptyList  = ']'
	opMark       = '('
	opSetItems   = 'u'
	opAppends    = 'e'
	opBinUnicode = 'X'
	opBinFloat   = 'G'
	opStop       = '.'
)

// encodePickle writes a protocol 2 pickle of the record: a dict of str to
// float or list of float, keys in sorted order. Unsupported entries are
// not written.
func encodePickle(w io.Writer, record schema.MetricRecord) error {
	buf := []byte{opProto, 2, opEmptyDict}
	if len(record) > 0 {
		buf = append(buf, opMark)
		for _, name := range record.Names() {
			v := record[name]
			if _, ok := v.Supported(); !ok {
				continue
			}
			buf = appendUnicode(buf, name)
			if !v.IsSequence() {
				f, _ := v.Float()
				buf = appendFloat(buf, f)
				continue
			}
			buf = append(buf, opEmptyList)
			if values := v.Values(); len(values) > 0 {
				buf = append(buf, opMark)
				for _, f := range values {
					buf = appendFloat(buf, f)
				}
				buf = append(buf, opAppends)
			}
		}
		buf = append(buf, opSetItems)
	}
	buf = append(buf, opStop)
	_, err := w.Write(buf)
	return err
}

func appendUnicode(buf []byte, s string) []byte {
	buf = append(buf, opBinUnicode)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

func appendFloat(buf []byte, f float64) []byte {
	buf = append(buf, opBinFloat)
	return binary.BigEndian.AppendUint64(buf, math.Float64bits(f))
}
