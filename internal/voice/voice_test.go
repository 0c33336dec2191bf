package voice

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mj1618/desktop-agent/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(v float32) []float32 {
	f := make([]float32, FrameSize)
	for i := range f {
		f[i] = v
	}
	return f
}

func TestDetector_Utterance(t *testing.T) {
	d := NewDetector(config.VoiceConfig{Threshold: 0.1, Silence: 40 * time.Millisecond, MaxSeconds: 1})

	for i := 0; i < 3; i++ {
		assert.False(t, d.Feed(frame(0.01)), "leading quiet frame %d", i)
	}
	assert.False(t, d.Heard())
	assert.Empty(t, d.Samples())

	assert.False(t, d.Feed(frame(0.5)))
	assert.False(t, d.Feed(frame(0.5)))
	assert.True(t, d.Heard())

	assert.False(t, d.Feed(frame(0)), "one quiet frame is a pause")
	assert.True(t, d.Feed(frame(0)), "two quiet frames end the utterance")
	assert.Len(t, d.Samples(), 3*FrameSize)
}

func TestDetector_PauseResets(t *testing.T) {
	d := NewDetector(config.VoiceConfig{Threshold: 0.1, Silence: 40 * time.Millisecond, MaxSeconds: 1})
	d.Feed(frame(0.5))
	assert.False(t, d.Feed(frame(0)))
	assert.False(t, d.Feed(frame(0.5)))
	assert.False(t, d.Feed(frame(0)))
	assert.True(t, d.Feed(frame(0)))
	assert.Len(t, d.Samples(), 4*FrameSize)
}

func TestDetector_FrameBudget(t *testing.T) {
	d := NewDetector(config.VoiceConfig{MaxSeconds: 1})
	budget := SampleRate / FrameSize
	for i := 1; i < budget; i++ {
		require.False(t, d.Feed(frame(0)), "frame %d", i)
	}
	assert.True(t, d.Feed(frame(0)))
	assert.False(t, d.Heard())
}

func TestRMS(t *testing.T) {
	assert.InDelta(t, 0.5, RMS(frame(0.5)), 1e-9)
	assert.InDelta(t, 0.5, RMS([]float32{0.5, -0.5}), 1e-9)
	assert.Zero(t, RMS(nil))
}

func TestCleanTranscript(t *testing.T) {
	assert.Equal(t, "open notepad", CleanTranscript(" [BLANK_AUDIO] open   notepad (music) "))
	assert.Equal(t, "", CleanTranscript("[BLANK_AUDIO]"))
	assert.Equal(t, "volume 50", CleanTranscript("volume 50"))
}

func sine(n int, freq float64) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/SampleRate))
	}
	return out
}

func TestWriteWAV_DecodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump", "utterance.wav")
	want := sine(1600, 440)
	require.NoError(t, WriteWAV(path, want))

	got, err := DecodeFile(path)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		require.InDelta(t, want[i], got[i], 1e-3, "sample %d", i)
	}
}

func TestDecodeFile_SniffsHeader(t *testing.T) {
	dir := t.TempDir()
	wavPath := filepath.Join(dir, "clip.wav")
	require.NoError(t, WriteWAV(wavPath, sine(320, 200)))
	binPath := filepath.Join(dir, "clip.bin")
	require.NoError(t, os.Rename(wavPath, binPath))

	got, err := DecodeFile(binPath)
	require.NoError(t, err)
	assert.Len(t, got, 320)
}

func TestDecodeFile_StereoResampled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stereo.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	interleaved := make([]float32, 2*800)
	for i := 0; i < 800; i++ {
		interleaved[2*i] = 0.4
		interleaved[2*i+1] = 0.2
	}
	require.NoError(t, encodeWAV(f, interleaved, 8000, 2))
	require.NoError(t, f.Close())

	got, err := DecodeFile(path)
	require.NoError(t, err)
	assert.Len(t, got, 1600)
	for i, v := range got {
		require.InDelta(t, 0.3, v, 1e-3, "sample %d", i)
	}
}

func TestDecodeFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := DecodeFile(filepath.Join(dir, "missing.wav"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("hello world"), 0o600))
	_, err = DecodeFile(txt)
	assert.ErrorContains(t, err, "unsupported audio format")

	bad := filepath.Join(dir, "bad.wav")
	require.NoError(t, os.WriteFile(bad, []byte("not a wav file at all"), 0o600))
	_, err = DecodeFile(bad)
	assert.Error(t, err)
}

func TestResample(t *testing.T) {
	in := []float32{0, 1, 2, 3}
	assert.Equal(t, in, resample(in, 16000, 16000))

	up := resample(in, 8000, 16000)
	require.Len(t, up, 8)
	assert.InDelta(t, 0.5, up[1], 1e-6)
	assert.InDelta(t, 3, up[7], 1e-6)

	down := resample([]float32{0, 1, 2, 3, 4, 5}, 48000, 16000)
	assert.Equal(t, []float32{0, 3}, down)
}

func TestDownmix(t *testing.T) {
	assert.Equal(t, []float32{0.5, 0}, downmix([]float32{1, 0, 0.5, -0.5}, 2))
}
