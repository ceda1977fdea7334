package rowgroup

import (
	"fmt"

	"github.com/hupe1980/paxcol/column"
)

// StreamKind identifies one logical stream of a column.
type StreamKind uint8

const (
	StreamPresence StreamKind = iota + 1
	StreamToast
	StreamOffset
	StreamData
)

func (k StreamKind) String() string {
	switch k {
	case StreamPresence:
		return "presence"
	case StreamToast:
		return "toast"
	case StreamOffset:
		return "offset"
	case StreamData:
		return "data"
	default:
		return fmt.Sprintf("stream(%d)", uint8(k))
	}
}

// MarshalText renders the kind by name.
func (k StreamKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name.
func (k *StreamKind) UnmarshalText(b []byte) error {
	for _, c := range []StreamKind{StreamPresence, StreamToast, StreamOffset, StreamData} {
		if c.String() == string(b) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown stream kind %q", b)
}

// Stream describes one stream as laid out in the buffer. Length includes
// the trailing Padding bytes.
type Stream struct {
	Kind    StreamKind `json:"kind"`
	Rows    int        `json:"rows"`
	Length  int        `json:"length"`
	Padding int        `json:"padding"`
}

// ColumnEncoding is the final encoding metadata of one column.
type ColumnEncoding struct {
	Data                column.Encoding `json:"data"`
	DataOriginLength    int             `json:"data_origin_length"`
	Offsets             column.Encoding `json:"offsets"`
	OffsetsOriginLength int             `json:"offsets_origin_length"`
}

// StreamVisitor is called once per stream, in buffer order.
type StreamVisitor func(Stream)

// EncodingVisitor is called once per present column after its streams.
type EncodingVisitor func(ColumnEncoding)

// ColumnLayout groups the streams and encoding of one present column.
type ColumnLayout struct {
	Streams  []Stream       `json:"streams"`
	Encoding ColumnEncoding `json:"encoding"`
}

// Size returns the bytes the column occupies in the buffer.
func (c ColumnLayout) Size() int {
	n := 0
	for _, s := range c.Streams {
		n += s.Length
	}
	return n
}

// Layout is the visitor output of one assembly: the metadata a stripe
// footer would persist.
type Layout struct {
	Format        column.Format  `json:"format"`
	Columns       []ColumnLayout `json:"columns"`
	ExternalSizes []int          `json:"external_sizes,omitempty"`
}

// Size returns the total buffer size described by the layout.
func (l Layout) Size() int {
	n := 0
	for _, c := range l.Columns {
		n += c.Size()
	}
	return n
}

// Recorder collects visitor callbacks into a Layout. Pass its Stream and
// Encoding methods to exactly one Measure or Buffer call.
type Recorder struct {
	layout  Layout
	pending []Stream
}

// NewRecorder creates an empty Recorder.
func NewRecorder(format column.Format) *Recorder {
	return &Recorder{layout: Layout{Format: format}}
}

// Stream implements StreamVisitor.
func (r *Recorder) Stream(s Stream) {
	r.pending = append(r.pending, s)
}

// Encoding implements EncodingVisitor and closes the current column.
func (r *Recorder) Encoding(e ColumnEncoding) {
	r.layout.Columns = append(r.layout.Columns, ColumnLayout{Streams: r.pending, Encoding: e})
	r.pending = nil
}

// Layout returns the recorded layout.
func (r *Recorder) Layout() Layout {
	return r.layout
}
