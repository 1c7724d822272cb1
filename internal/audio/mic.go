package audio

import (
	"context"
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// Chunk is one buffer of interleaved samples read from an input device.
type Chunk struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// Mic reads fixed-size chunks from the default input device.
type Mic struct {
	stream     *portaudio.Stream
	buf        []float32
	sampleRate int
	channels   int
}

// OpenMic initializes PortAudio and starts a capture stream of chunkSize
// frames per read.
func OpenMic(sampleRate, chunkSize, channels int) (*Mic, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize portaudio: %w", err)
	}

	buf := make([]float32, chunkSize*channels)
	stream, err := portaudio.OpenDefaultStream(channels, 0, float64(sampleRate), chunkSize, buf)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("open input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("start input stream: %w", err)
	}

	return &Mic{
		stream:     stream,
		buf:        buf,
		sampleRate: sampleRate,
		channels:   channels,
	}, nil
}

// Next blocks until the device has filled one chunk. The returned chunk owns
// its samples; the internal buffer is reused across reads.
func (m *Mic) Next(ctx context.Context) (Chunk, error) {
	if err := ctx.Err(); err != nil {
		return Chunk{}, err
	}
	if err := m.stream.Read(); err != nil {
		return Chunk{}, fmt.Errorf("read audio chunk: %w", err)
	}

	samples := make([]float32, len(m.buf))
	copy(samples, m.buf)
	return Chunk{
		Samples:    samples,
		SampleRate: m.sampleRate,
		Channels:   m.channels,
	}, nil
}

// Close stops the stream and tears down PortAudio.
func (m *Mic) Close() error {
	err := m.stream.Stop()
	if cerr := m.stream.Close(); err == nil {
		err = cerr
	}
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	return err
}
