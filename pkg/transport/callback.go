package transport

import (
	"fmt"
	"sync"

	"github.com/srediag/shmemdev/api"
	"github.com/srediag/shmemdev/pkg/frame"
)

// MediaKind is the type of a stream offered to a CallbackSink.
type MediaKind int

const (
	// MediaVideo and MediaAudio are the kinds a CallbackSink accepts.
	MediaVideo MediaKind = iota
	MediaAudio
	// MediaData and MediaSubtitle are rejected by Open.
	MediaData
	MediaSubtitle
)

func (k MediaKind) String() string {
	switch k {
	case MediaVideo:
		return "video"
	case MediaAudio:
		return "audio"
	case MediaData:
		return "data"
	case MediaSubtitle:
		return "subtitle"
	}
	return fmt.Sprintf("MediaKind(%d)", int(k))
}

// StreamInfo describes one stream of the output being opened.
type StreamInfo struct {
	Kind        MediaKind
	Width       int
	Height      int
	PixelFormat frame.PixelFormat
}

// FrameConsumer receives every packet written to a CallbackSink. index is
// the number of packets delivered before this one.
type FrameConsumer interface {
	ConsumeFrame(index uint64, pkt *frame.Packet) error
}

// FrameConsumerFunc adapts a function to FrameConsumer.
type FrameConsumerFunc func(index uint64, pkt *frame.Packet) error

func (f FrameConsumerFunc) ConsumeFrame(index uint64, pkt *frame.Packet) error {
	return f(index, pkt)
}

// CallbackSink relays packets synchronously to a FrameConsumer. There is
// no buffering and no retry; the consumer's error is the sink's error.
type CallbackSink struct {
	mu       sync.Mutex
	consumer FrameConsumer
	stream   StreamInfo
	index    uint64
	open     bool
}

// NewCallbackSink returns a sink for c. A nil c discards packets.
func NewCallbackSink(c FrameConsumer) *CallbackSink {
	return &CallbackSink{consumer: c}
}

// Open accepts exactly one video or audio stream and resets the index.
func (s *CallbackSink) Open(streams []StreamInfo) error {
	if len(streams) != 1 {
		return api.NewError(api.ErrUnsupportedStreamShape, "transport.CallbackSink.Open", "",
			fmt.Errorf("%d streams, want exactly one", len(streams)))
	}
	st := streams[0]
	if st.Kind != MediaVideo && st.Kind != MediaAudio {
		return api.NewError(api.ErrUnsupportedStreamShape, "transport.CallbackSink.Open", "",
			fmt.Errorf("%s stream, want video or audio", st.Kind))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stream = st
	s.index = 0
	s.open = true
	return nil
}

// WritePacket hands pkt to the consumer with the current index, then
// advances the index whatever the consumer returned. The consumer runs
// without the sink's lock held and may call back into the sink.
func (s *CallbackSink) WritePacket(pkt *frame.Packet) error {
	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return api.NewError(api.ErrClosed, "transport.CallbackSink.WritePacket", "", nil)
	}
	consumer := s.consumer
	index := s.index
	s.index++
	s.mu.Unlock()

	if consumer == nil {
		return nil
	}
	return consumer.ConsumeFrame(index, pkt)
}

// Index is the number of packets written since Open.
func (s *CallbackSink) Index() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Stream returns the stream accepted by Open.
func (s *CallbackSink) Stream() StreamInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stream
}

func (s *CallbackSink) Close() error {
	s.mu.Lock()
	s.open = false
	s.mu.Unlock()
	return nil
}
