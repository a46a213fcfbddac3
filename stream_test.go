package binstream

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

// --- Writer Test Suite ---

type WriterTestSuite struct {
	suite.Suite
	buf    *bytes.Buffer
	writer *Writer
}

// SetupTest runs before each test in the suite, ensuring a clean state.
func (s *WriterTestSuite) SetupTest() {
	s.buf = &bytes.Buffer{}
	s.writer, _ = NewWriter(s.buf)
}

func (s *WriterTestSuite) TestConstructors() {
	_, err := NewWriter(nil)
	s.Assert().ErrorIs(err, ErrNilIO)
}

func (s *WriterTestSuite) TestDefaults() {
	s.Assert().Equal(LE, s.writer.ByteOrder())
	s.Assert().Equal(UTF8, s.writer.Encoding())
	s.Assert().Equal(LF, s.writer.Newline())
}

func (s *WriterTestSuite) TestPrimitiveLayout() {
	s.writer.WriteUint8(0xAA)
	s.writer.WriteUint16(0xBBCC)
	s.writer.WriteUint32(0xDDEEFF00)
	s.writer.WriteUint64(0x0102030405060708)
	s.writer.WriteBool(true)
	s.writer.WriteBool(false)
	s.writer.WriteZeros(2)

	n, err := s.writer.Result()
	s.Require().NoError(err)
	s.Assert().EqualValues(1+2+4+8+1+1+2, n)
	s.Assert().EqualValues(s.buf.Len(), s.writer.Count())

	expected := []byte{
		0xAA,
		0xCC, 0xBB, // little endian
		0x00, 0xFF, 0xEE, 0xDD,
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01,
		1, 0,
		0, 0,
	}
	s.Assert().Equal(expected, s.buf.Bytes())
}

func (s *WriterTestSuite) TestSignedTwosComplement() {
	s.writer.WriteInt32(-1)
	s.Assert().Equal([]byte{0xFF, 0xFF, 0xFF, 0xFF}, s.buf.Bytes())

	s.buf.Reset()
	s.SetupTest()
	s.writer.WriteInt32(-2)
	s.Assert().Equal([]byte{0xFE, 0xFF, 0xFF, 0xFF}, s.buf.Bytes())

	s.buf.Reset()
	s.SetupTest()
	s.writer.SetByteOrder(BE)
	s.writer.WriteInt32(-2)
	s.Assert().Equal([]byte{0xFF, 0xFF, 0xFF, 0xFE}, s.buf.Bytes())

	// All-ones is endian-invariant.
	s.buf.Reset()
	s.SetupTest()
	s.writer.SetByteOrder(BE)
	s.writer.WriteInt32(-1)
	s.Assert().Equal([]byte{0xFF, 0xFF, 0xFF, 0xFF}, s.buf.Bytes())
}

func (s *WriterTestSuite) TestErrorLatching() {
	sink := NewBytesSink(make([]byte, 5))
	w, err := NewWriter(sink)
	s.Require().NoError(err)

	w.WriteUint32(0x11223344)
	s.Require().NoError(w.Err())

	w.WriteUint32(0xAABBCCDD) // only one byte fits
	s.Require().Error(w.Err())

	// Subsequent writes are no-ops and the first error is preserved.
	first := w.Err()
	w.WriteUint64(42)
	w.WriteString("ignored")
	s.Assert().Equal(first, w.Err())
}

func (s *WriterTestSuite) TestNullStringMarker() {
	s.writer.WriteStringPtr(nil)
	_, err := s.writer.Result()
	s.Require().NoError(err)
	// varint of the 32-bit two's complement of -1.
	s.Assert().Equal([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}, s.buf.Bytes())
}

func (s *WriterTestSuite) TestEmptyStringDistinctFromNull() {
	s.writer.WriteString("")
	s.Assert().Equal([]byte{0x00}, s.buf.Bytes())
}

func TestWriter(t *testing.T) {
	suite.Run(t, new(WriterTestSuite))
}

// --- Round-Trip Test Suite ---

type RoundTripTestSuite struct {
	suite.Suite
}

// pipe builds a Writer, runs the write half, then hands the produced bytes
// to a Reader for the read half.
func (s *RoundTripTestSuite) pipe(configure func(*Writer), write func(*Writer)) *Reader {
	buf := &bytes.Buffer{}
	w, err := NewWriter(buf)
	s.Require().NoError(err)
	if configure != nil {
		configure(w)
	}
	write(w)
	s.Require().NoError(w.Err())

	r, err := NewReader(NewBytesSource(buf.Bytes()))
	s.Require().NoError(err)
	return r
}

func (s *RoundTripTestSuite) TestPrimitivesBothOrders() {
	for _, order := range []binary.ByteOrder{LE, BE} {
		r := s.pipe(
			func(w *Writer) { w.SetByteOrder(order) },
			func(w *Writer) {
				w.WriteBool(true)
				w.WriteUint8(0x7F)
				w.WriteInt8(-5)
				w.WriteUint16(0xBEEF)
				w.WriteInt16(-12345)
				w.WriteUint32(0xDEADBEEF)
				w.WriteInt32(-123456789)
				w.WriteUint64(0x0123456789ABCDEF)
				w.WriteInt64(math.MinInt64)
			})
		r.SetByteOrder(order)

		var (
			b   bool
			u8  uint8
			i8  int8
			u16 uint16
			i16 int16
			u32 uint32
			i32 int32
			u64 uint64
			i64 int64
		)
		r.ReadBool(&b)
		r.ReadUint8(&u8)
		r.ReadInt8(&i8)
		r.ReadUint16(&u16)
		r.ReadInt16(&i16)
		r.ReadUint32(&u32)
		r.ReadInt32(&i32)
		r.ReadUint64(&u64)
		r.ReadInt64(&i64)
		s.Require().NoError(r.Err())

		s.Assert().True(b)
		s.Assert().Equal(uint8(0x7F), u8)
		s.Assert().Equal(int8(-5), i8)
		s.Assert().Equal(uint16(0xBEEF), u16)
		s.Assert().Equal(int16(-12345), i16)
		s.Assert().Equal(uint32(0xDEADBEEF), u32)
		s.Assert().Equal(int32(-123456789), i32)
		s.Assert().Equal(uint64(0x0123456789ABCDEF), u64)
		s.Assert().Equal(int64(math.MinInt64), i64)
	}
}

func (s *RoundTripTestSuite) TestFloatBitPatterns() {
	values64 := []float64{0, -0.0, 1.5, -math.Pi, math.Inf(1), math.Inf(-1), math.NaN(), math.SmallestNonzeroFloat64}
	for _, order := range []binary.ByteOrder{LE, BE} {
		r := s.pipe(
			func(w *Writer) { w.SetByteOrder(order) },
			func(w *Writer) {
				for _, v := range values64 {
					w.WriteFloat64(v)
					w.WriteFloat32(float32(v))
				}
			})
		r.SetByteOrder(order)
		for _, want := range values64 {
			var f64 float64
			var f32 float32
			r.ReadFloat64(&f64)
			r.ReadFloat32(&f32)
			s.Require().NoError(r.Err())
			// Compare bit patterns so NaN payloads count too.
			s.Assert().Equal(math.Float64bits(want), math.Float64bits(f64))
			s.Assert().Equal(math.Float32bits(float32(want)), math.Float32bits(f32))
		}
	}
}

func (s *RoundTripTestSuite) TestDecimal() {
	want, err := NewDecimal128(0x075B_CD15, 0x0000_0002, 0, 5, true)
	s.Require().NoError(err)

	r := s.pipe(nil, func(w *Writer) { w.WriteDecimal(want) })
	var got Decimal128
	r.ReadDecimal(&got)
	s.Require().NoError(r.Err())
	s.Assert().Equal(want, got)
}

func (s *RoundTripTestSuite) TestDecimalInvalidFlags() {
	r := s.pipe(nil, func(w *Writer) {
		w.WriteUint32(0)
		w.WriteUint32(0)
		w.WriteUint32(0)
		w.WriteUint32(0x0000_0001) // reserved bit
	})
	var got Decimal128
	r.ReadDecimal(&got)
	s.Assert().ErrorIs(r.Err(), ErrInvalidData)
}

func (s *RoundTripTestSuite) TestTimeAndDuration() {
	want := time.Date(2026, time.August, 30, 12, 34, 56, 700, time.UTC)
	wantDur := 90*time.Minute + 1500*time.Nanosecond

	r := s.pipe(nil, func(w *Writer) {
		w.WriteTime(want)
		w.WriteDuration(wantDur)
	})
	var got time.Time
	var gotDur time.Duration
	r.ReadTime(&got)
	r.ReadDuration(&gotDur)
	s.Require().NoError(r.Err())

	// The wire carries 100ns ticks, so sub-tick precision truncates.
	s.Assert().True(got.Equal(want.Truncate(100 * time.Nanosecond)))
	s.Assert().Equal(wantDur.Truncate(100*time.Nanosecond), gotDur)
}

func (s *RoundTripTestSuite) TestTimeBadKind() {
	r := s.pipe(nil, func(w *Writer) {
		w.WriteUvarint32(3) // beyond Local
		w.WriteInt64(0)
	})
	var got time.Time
	r.ReadTime(&got)
	s.Assert().ErrorIs(r.Err(), ErrInvalidData)
}

func (s *RoundTripTestSuite) TestVarints() {
	r := s.pipe(nil, func(w *Writer) {
		w.WriteUvarint32(300)
		w.WriteUvarint64(1<<64 - 1)
		w.WriteVarint32(-42)
		w.WriteVarint64(math.MinInt64)
	})
	var (
		u32 uint32
		u64 uint64
		i32 int32
		i64 int64
	)
	r.ReadUvarint32(&u32)
	r.ReadUvarint64(&u64)
	r.ReadVarint32(&i32)
	r.ReadVarint64(&i64)
	s.Require().NoError(r.Err())
	s.Assert().Equal(uint32(300), u32)
	s.Assert().Equal(uint64(1<<64-1), u64)
	s.Assert().Equal(int32(-42), i32)
	s.Assert().Equal(int64(math.MinInt64), i64)
}

func (s *RoundTripTestSuite) TestBuffersAndStrings() {
	hello := "hello"
	r := s.pipe(nil, func(w *Writer) {
		w.WriteBuffer([]byte{1, 2, 3})
		w.WriteBuffer(nil)
		w.WriteBuffer([]byte{})
		w.WriteString("héllo wörld")
		w.WriteStringPtr(nil)
		w.WriteStringPtr(&hello)
	})

	s.Assert().Equal([]byte{1, 2, 3}, r.ReadBuffer())
	s.Assert().Nil(r.ReadBuffer())
	s.Assert().Equal([]byte{}, r.ReadBuffer())

	var str string
	r.ReadString(&str)
	s.Assert().Equal("héllo wörld", str)

	var p *string
	r.ReadStringPtr(&p)
	s.Assert().Nil(p)
	r.ReadStringPtr(&p)
	s.Require().NoError(r.Err())
	s.Require().NotNil(p)
	s.Assert().Equal("hello", *p)
}

func (s *RoundTripTestSuite) TestReadStringRejectsNull() {
	r := s.pipe(nil, func(w *Writer) { w.WriteStringPtr(nil) })
	var str string
	r.ReadString(&str)
	s.Assert().ErrorIs(r.Err(), ErrInvalidData)
}

func (s *RoundTripTestSuite) TestStringEncodings() {
	text := "Bjužo 世界"
	for _, codec := range []TextCodec{UTF8, UTF16LE, UTF16BE, UTF32LE, UTF32BE, UTF7} {
		r := s.pipe(
			func(w *Writer) { w.SetEncoding(codec) },
			func(w *Writer) { w.WriteString(text) })
		r.SetEncoding(codec)
		var got string
		r.ReadString(&got)
		s.Require().NoError(r.Err(), codec.Name())
		s.Assert().Equal(text, got, codec.Name())
	}
}

func (s *RoundTripTestSuite) TestRunesAndChars() {
	r := s.pipe(
		func(w *Writer) { w.SetEncoding(UTF16LE) },
		func(w *Writer) {
			w.WriteRune('\U0001F600')
			w.WriteChars("ab☺")
		})
	r.SetEncoding(UTF16LE)

	var c rune
	r.ReadRune(&c)
	s.Assert().Equal('\U0001F600', c)

	var chars string
	r.ReadChars(&chars, 3)
	s.Require().NoError(r.Err())
	s.Assert().Equal("ab☺", chars)
	// Exactly the requested characters were consumed.
	s.Assert().EqualValues(4+6, r.Count())
}

func (s *RoundTripTestSuite) TestFixedString() {
	r := s.pipe(nil, func(w *Writer) {
		w.WriteFixedString("hi", 8)
		w.WriteFixedString("truncate me", 8)
	})

	var short, long string
	r.ReadFixedString(&short, 8)
	r.ReadFixedString(&long, 8)
	s.Require().NoError(r.Err())
	s.Assert().Equal("hi", short)
	// Truncation keeps a trailing terminator inside the field.
	s.Assert().Equal("truncat", long)
	s.Assert().EqualValues(16, r.Count())
}

func (s *RoundTripTestSuite) TestCStringRoundTrip() {
	for _, codec := range []TextCodec{ASCII, UTF8, UTF16LE, UTF32BE} {
		r := s.pipe(
			func(w *Writer) { w.SetEncoding(codec) },
			func(w *Writer) {
				w.WriteCString("first")
				w.WriteCString("second")
			})
		r.SetEncoding(codec)

		var a, b string
		r.ReadCString(&a, 256)
		r.ReadCString(&b, 256)
		s.Require().NoError(r.Err(), codec.Name())
		s.Assert().Equal("first", a)
		s.Assert().Equal("second", b)
	}
}

func (s *RoundTripTestSuite) TestCStringBoundExceeded() {
	r := s.pipe(nil, func(w *Writer) {
		w.WriteBytes(bytes.Repeat([]byte{'x'}, 64))
	})
	var got string
	r.ReadCString(&got, 16)
	s.Assert().ErrorIs(r.Err(), ErrTruncated)
}

func (s *RoundTripTestSuite) TestLineRoundTrip() {
	for _, nl := range []Newline{CR, LF, CRLF} {
		r := s.pipe(
			func(w *Writer) { w.SetNewline(nl) },
			func(w *Writer) {
				w.WriteLine("alpha")
				w.WriteLine("beta")
			})
		r.SetNewline(nl)

		var a, b string
		r.ReadLine(&a, 256)
		r.ReadLine(&b, 256)
		s.Require().NoError(r.Err(), nl.String())
		s.Assert().Equal("alpha", a)
		s.Assert().Equal("beta", b)
	}
}

func (s *RoundTripTestSuite) TestLinePartialTerminatorBacktrack() {
	// Embedded carriage returns must not be mistaken for a CRLF
	// terminator prefix.
	r := s.pipe(
		func(w *Writer) { w.SetNewline(CRLF) },
		func(w *Writer) { w.WriteLine("\r\r\r") })
	r.SetNewline(CRLF)

	var got string
	r.ReadLine(&got, 64)
	s.Require().NoError(r.Err())
	s.Assert().Equal("\r\r\r", got)
}

func (s *RoundTripTestSuite) TestDeadEncodingRefusals() {
	buf := &bytes.Buffer{}
	w, err := NewWriter(buf)
	s.Require().NoError(err)
	w.SetEncoding(deadCodec{})

	w.WriteLine("nope")
	s.Assert().ErrorIs(w.Err(), ErrUnsupportedOperation)

	r, err := NewReader(NewBytesSource([]byte("data")))
	s.Require().NoError(err)
	r.SetEncoding(deadCodec{})
	var c rune
	r.ReadRune(&c)
	s.Assert().ErrorIs(r.Err(), ErrUnsupportedOperation)
}

func (s *RoundTripTestSuite) TestTruncatedValues() {
	r, err := NewReader(NewBytesSource([]byte{0x01, 0x02}))
	s.Require().NoError(err)
	var v uint32
	r.ReadUint32(&v)
	s.Assert().ErrorIs(r.Err(), ErrTruncated)

	r, err = NewReader(NewBytesSource([]byte{0x80, 0x80}))
	s.Require().NoError(err)
	r.ReadUvarint32(&v)
	s.Assert().ErrorIs(r.Err(), ErrTruncated)
}

func (s *RoundTripTestSuite) TestConfigIsPerInstance() {
	a, err := NewReader(NewBytesSource(nil))
	s.Require().NoError(err)
	b, err := NewReader(NewBytesSource(nil))
	s.Require().NoError(err)

	a.SetByteOrder(BE)
	a.SetEncoding(UTF16BE)
	a.SetNewline(CRLF)

	s.Assert().Equal(LE, b.ByteOrder())
	s.Assert().Equal(UTF8, b.Encoding())
	s.Assert().Equal(LF, b.Newline())
}

func TestRoundTrip(t *testing.T) {
	suite.Run(t, new(RoundTripTestSuite))
}

// deadCodec is a minimal Dead TextCodec for refusal tests.
type deadCodec struct{}

func (deadCodec) Name() string                    { return "dead" }
func (deadCodec) Dead() bool                      { return true }
func (deadCodec) Encode(s string) ([]byte, error) { return []byte(s), nil }
func (deadCodec) Decode(b []byte) (string, error) { return string(b), nil }
func (deadCodec) DecodeRune(io.ByteReader) (rune, int, error) {
	return 0, 0, ErrUnsupportedOperation
}
