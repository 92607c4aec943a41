package transport

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srediag/shmemdev/api"
	"github.com/srediag/shmemdev/pkg/frame"
)

var videoStream = []StreamInfo{{Kind: MediaVideo, Width: 1280, Height: 720, PixelFormat: frame.PixelFormatNV12}}

func TestCallbackSinkIndexStartsAtZero(t *testing.T) {
	var got []uint64
	var sizes []int
	sink := NewCallbackSink(FrameConsumerFunc(func(index uint64, pkt *frame.Packet) error {
		got = append(got, index)
		sizes = append(sizes, pkt.Len())
		return nil
	}))
	require.NoError(t, sink.Open(videoStream))

	for i := 0; i < 3; i++ {
		require.NoError(t, sink.WritePacket(frame.NewPacket(make([]byte, 10+i))))
	}
	assert.Equal(t, []uint64{0, 1, 2}, got)
	assert.Equal(t, []int{10, 11, 12}, sizes)
	assert.Equal(t, uint64(3), sink.Index())
	assert.Equal(t, MediaVideo, sink.Stream().Kind)
}

func TestCallbackSinkStreamShape(t *testing.T) {
	sink := NewCallbackSink(nil)
	cases := map[string][]StreamInfo{
		"none":     nil,
		"two":      {{Kind: MediaVideo}, {Kind: MediaAudio}},
		"data":     {{Kind: MediaData}},
		"subtitle": {{Kind: MediaSubtitle}},
	}
	for name, streams := range cases {
		err := sink.Open(streams)
		assert.True(t, errors.Is(err, api.ErrUnsupportedStreamShape), name)
	}
	assert.NoError(t, sink.Open([]StreamInfo{{Kind: MediaAudio}}))
}

func TestCallbackSinkNilConsumer(t *testing.T) {
	sink := NewCallbackSink(nil)
	require.NoError(t, sink.Open(videoStream))
	assert.NoError(t, sink.WritePacket(frame.NewPacket([]byte{1})))
	assert.NoError(t, sink.WritePacket(frame.NewPacket([]byte{2})))
	assert.Equal(t, uint64(2), sink.Index())
}

func TestCallbackSinkConsumerError(t *testing.T) {
	boom := errors.New("consumer failed")
	calls := 0
	sink := NewCallbackSink(FrameConsumerFunc(func(index uint64, pkt *frame.Packet) error {
		calls++
		if index == 1 {
			return boom
		}
		return nil
	}))
	require.NoError(t, sink.Open(videoStream))
	assert.NoError(t, sink.WritePacket(frame.NewPacket(nil)))
	assert.Equal(t, boom, sink.WritePacket(frame.NewPacket(nil)))
	assert.NoError(t, sink.WritePacket(frame.NewPacket(nil)))
	assert.Equal(t, 3, calls)
}

func TestCallbackSinkReopenResetsIndex(t *testing.T) {
	sink := NewCallbackSink(nil)
	assert.True(t, errors.Is(sink.WritePacket(frame.NewPacket(nil)), api.ErrClosed))

	require.NoError(t, sink.Open(videoStream))
	require.NoError(t, sink.WritePacket(frame.NewPacket(nil)))
	require.NoError(t, sink.Close())
	assert.True(t, errors.Is(sink.WritePacket(frame.NewPacket(nil)), api.ErrClosed))

	require.NoError(t, sink.Open(videoStream))
	assert.Zero(t, sink.Index())
}

func TestCallbackSinkConsumerCallsBack(t *testing.T) {
	var sink *CallbackSink
	var indices []uint64
	sink = NewCallbackSink(FrameConsumerFunc(func(index uint64, pkt *frame.Packet) error {
		indices = append(indices, sink.Index())
		assert.Equal(t, MediaVideo, sink.Stream().Kind)
		if index == 1 {
			return sink.Close()
		}
		return nil
	}))
	require.NoError(t, sink.Open(videoStream))

	done := make(chan error, 1)
	go func() {
		if err := sink.WritePacket(frame.NewPacket(nil)); err != nil {
			done <- err
			return
		}
		done <- sink.WritePacket(frame.NewPacket(nil))
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("WritePacket did not return while the consumer used the sink")
	}
	// the index is advanced before the consumer runs
	assert.Equal(t, []uint64{1, 2}, indices)
	assert.True(t, errors.Is(sink.WritePacket(frame.NewPacket(nil)), api.ErrClosed))
}

func TestMediaKindString(t *testing.T) {
	assert.Equal(t, "video", MediaVideo.String())
	assert.Equal(t, "audio", MediaAudio.String())
	assert.Equal(t, "MediaKind(8)", MediaKind(8).String())
}
