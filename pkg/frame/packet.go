package frame

import (
	"time"

	"github.com/valyala/bytebufferpool"
)

var packetPool bytebufferpool.Pool

// Packet is one frame handed to the caller. PTS and DTS are wall-clock
// microseconds and always equal: the transport has no separate decode time.
type Packet struct {
	Data []byte
	PTS  int64
	DTS  int64
	// Repeated is set when the producer stalled and the packet carries the
	// region contents that were already delivered.
	Repeated bool

	buf *bytebufferpool.ByteBuffer
}

// CopyPacket returns a pooled packet holding a copy of src.
func CopyPacket(src []byte) *Packet {
	bb := packetPool.Get()
	bb.B = append(bb.B[:0], src...)
	return &Packet{Data: bb.B, buf: bb}
}

// NewPacket wraps data without copying; Release is a no-op for it.
func NewPacket(data []byte) *Packet {
	return &Packet{Data: data}
}

// Len is the effective length of the packet.
func (p *Packet) Len() int {
	return len(p.Data)
}

// Stamp sets PTS and DTS to t.
func (p *Packet) Stamp(t time.Time) {
	p.PTS = t.UnixMicro()
	p.DTS = p.PTS
}

// Time returns the capture timestamp.
func (p *Packet) Time() time.Time {
	return time.UnixMicro(p.PTS)
}

// Release gives the buffer back to the pool. Data must not be used afterwards.
func (p *Packet) Release() {
	if p.buf == nil {
		return
	}
	packetPool.Put(p.buf)
	p.buf = nil
	p.Data = nil
}
