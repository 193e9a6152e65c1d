package audiotool

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oluwabajio/AudioTool/internal/engine"
	"github.com/oluwabajio/AudioTool/internal/filter"
	"github.com/oluwabajio/AudioTool/internal/session"
	"github.com/oluwabajio/AudioTool/internal/storage"
)

const sourceContent = "source audio"

// mockEngine implements engine.Engine for testing.
type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) Execute(ctx context.Context, args []string) error {
	return m.Called(ctx, args).Error(0)
}

// mockProbe implements engine.Probe for testing.
type mockProbe struct {
	mock.Mock
}

func (m *mockProbe) DurationMillis(ctx context.Context, path string) (int64, error) {
	args := m.Called(ctx, path)
	return args.Get(0).(int64), args.Error(1)
}

// mockPublisher implements storage.Publisher for testing.
type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, key string, data io.Reader) (string, error) {
	args := m.Called(ctx, key, data)
	return args.String(0), args.Error(1)
}

// writesOutput makes a mocked Execute write content to the output path,
// which is always the last argument.
func writesOutput(content string) func(mock.Arguments) {
	return func(a mock.Arguments) {
		args := a.Get(1).([]string)
		_ = os.WriteFile(args[len(args)-1], []byte(content), 0o600)
	}
}

type testTool struct {
	tool    *Tool
	engine  *mockEngine
	probe   *mockProbe
	files   *storage.LocalStorage
	source  string
	tempDir string
}

func newTestTool(t *testing.T, opts ...Option) *testTool {
	t.Helper()
	dir := t.TempDir()

	files, err := storage.NewLocalStorage(filepath.Join(dir, "work"))
	require.NoError(t, err)

	source := filepath.Join(dir, "input.wav")
	require.NoError(t, os.WriteFile(source, []byte(sourceContent), 0o600))

	eng := &mockEngine{}
	probe := &mockProbe{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts = append([]Option{WithLogger(logger)}, opts...)

	return &testTool{
		tool:    New(files, files.WorkDir(), eng, probe, opts...),
		engine:  eng,
		probe:   probe,
		files:   files,
		source:  source,
		tempDir: dir,
	}
}

func (tt *testTool) open(t *testing.T) string {
	t.Helper()
	path, err := tt.tool.Open(context.Background(), tt.source)
	require.NoError(t, err)
	return path
}

func shadowOf(working string) string {
	ext := filepath.Ext(working)
	return strings.TrimSuffix(working, ext) + ".shadow" + ext
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestTool_Open(t *testing.T) {
	tt := newTestTool(t)
	assert.Equal(t, StateEmpty, tt.tool.State())

	path := tt.open(t)

	assert.Equal(t, StateReady, tt.tool.State())
	assert.Equal(t, tt.files.WorkDir(), filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), session.MarkerPrefix))
	assert.Equal(t, ".wav", filepath.Ext(path))
	assert.Equal(t, sourceContent, readFile(t, path))

	working, err := tt.tool.WorkingPath()
	require.NoError(t, err)
	assert.Equal(t, path, working)
}

func TestTool_Open_SourceNotFound(t *testing.T) {
	tt := newTestTool(t)

	_, err := tt.tool.Open(context.Background(), filepath.Join(tt.tempDir, "missing.wav"))

	require.ErrorIs(t, err, ErrSourceNotFound)
	assert.Equal(t, StateEmpty, tt.tool.State())
}

func TestTool_Open_Twice(t *testing.T) {
	tt := newTestTool(t)
	tt.open(t)

	_, err := tt.tool.Open(context.Background(), tt.source)

	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestTool_OperationsRequireOpenSession(t *testing.T) {
	tt := newTestTool(t)
	ctx := context.Background()

	ops := map[string]func() error{
		"trim":         func() error { _, err := tt.tool.Trim(ctx, 0, 1); return err },
		"trim timecode": func() error {
			_, err := tt.tool.TrimTimecode(ctx, "00:00:01", "00:00:02")
			return err
		},
		"volume":        func() error { _, err := tt.tool.SetVolume(ctx, 1); return err },
		"volume window": func() error { _, err := tt.tool.SetVolumeWindow(ctx, 1, 0, 1); return err },
		"speed":         func() error { _, err := tt.tool.ChangeSpeed(ctx, 3); return err },
		"pitch":         func() error { _, err := tt.tool.ChangePitch(ctx, 1); return err },
		"duration":      func() error { _, err := tt.tool.Duration(ctx, Millis); return err },
		"save":          func() error { return tt.tool.SaveTo(ctx, filepath.Join(tt.tempDir, "out.wav")) },
		"publish":       func() error { _, err := tt.tool.Publish(ctx, "k"); return err },
		"release":       func() error { return tt.tool.ReleaseCurrent(ctx) },
		"working path":  func() error { _, err := tt.tool.WorkingPath(); return err },
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, op(), ErrInvalidState)
		})
	}

	tt.engine.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
	tt.probe.AssertNotCalled(t, "DurationMillis", mock.Anything, mock.Anything)
}

func TestTool_Operations_Args(t *testing.T) {
	tests := []struct {
		name string
		run  func(ctx context.Context, tool *Tool) (string, error)
		want []string
	}{
		{
			name: "trim",
			run:  func(ctx context.Context, tool *Tool) (string, error) { return tool.Trim(ctx, 2, 5) },
			want: []string{"-ss", "2", "-to", "5"},
		},
		{
			name: "trim timecode",
			run: func(ctx context.Context, tool *Tool) (string, error) {
				return tool.TrimTimecode(ctx, "00:00:02", "00:01:00.5")
			},
			want: []string{"-ss", "00:00:02", "-to", "00:01:00.5"},
		},
		{
			name: "volume",
			run:  func(ctx context.Context, tool *Tool) (string, error) { return tool.SetVolume(ctx, 1.5) },
			want: []string{"-filter:a", "volume=1.5"},
		},
		{
			name: "normalize",
			run:  func(ctx context.Context, tool *Tool) (string, error) { return tool.Normalize(ctx) },
			want: []string{"-filter:a", "loudnorm"},
		},
		{
			name: "speed",
			run:  func(ctx context.Context, tool *Tool) (string, error) { return tool.ChangeSpeed(ctx, 2) },
			want: []string{"-filter:a", "atempo=2"},
		},
		{
			name: "bass",
			run:  func(ctx context.Context, tool *Tool) (string, error) { return tool.Bass(ctx, 10, 0.5, 150) },
			want: []string{"-af", "bass=g=10:w=0.5:f=150"},
		},
		{
			name: "band pass",
			run:  func(ctx context.Context, tool *Tool) (string, error) { return tool.BandPass(ctx, 200, 3000) },
			want: []string{"-af", "highpass=f=200,lowpass=f=3000"},
		},
		{
			name: "remove noise",
			run:  func(ctx context.Context, tool *Tool) (string, error) { return tool.RemoveNoise(ctx) },
			want: []string{"-af", "highpass=f=400,lowpass=f=4000"},
		},
		{
			name: "remove vocals",
			run:  func(ctx context.Context, tool *Tool) (string, error) { return tool.RemoveVocals(ctx) },
			want: []string{"-af", "pan=stereo|c0=c0|c1=-1*c1", "-ac", "1"},
		},
		{
			name: "reverse",
			run:  func(ctx context.Context, tool *Tool) (string, error) { return tool.Reverse(ctx) },
			want: []string{"-map", "0", "-c:v", "copy", "-af", "areverse"},
		},
		{
			name: "echo",
			run: func(ctx context.Context, tool *Tool) (string, error) {
				return tool.Echo(ctx, filter.EchoMetallic)
			},
			want: []string{"-filter_complex", "aecho=0.8:0.88:6:0.4"},
		},
		{
			name: "vibrato",
			run:  func(ctx context.Context, tool *Tool) (string, error) { return tool.Vibrato(ctx, 5, 0.5) },
			want: []string{"-filter_complex", "vibrato=f=5:d=0.5"},
		},
		{
			name: "extract audio",
			run:  func(ctx context.Context, tool *Tool) (string, error) { return tool.ExtractAudio(ctx) },
			want: []string{"-vn"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tt := newTestTool(t)
			working := tt.open(t)

			expected := append([]string{"-y", "-i", working}, tc.want...)
			expected = append(expected, shadowOf(working))

			tt.engine.On("Execute", mock.Anything, expected).
				Run(writesOutput("processed")).
				Return(nil).Once()

			path, err := tc.run(context.Background(), tt.tool)

			require.NoError(t, err)
			assert.Equal(t, working, path)
			assert.Equal(t, "processed", readFile(t, working))
			assert.NoFileExists(t, shadowOf(working))
			assert.Equal(t, StateReady, tt.tool.State())
			tt.engine.AssertExpectations(t)
		})
	}
}

func TestTool_EndToEnd_SourceNeverMutated(t *testing.T) {
	tt := newTestTool(t)
	working := tt.open(t)
	ctx := context.Background()

	tt.engine.On("Execute", mock.Anything, mock.MatchedBy(func(args []string) bool {
		return strings.Contains(strings.Join(args, " "), "-ss 0 -to 10")
	})).Run(writesOutput("trimmed")).Return(nil).Once()
	tt.engine.On("Execute", mock.Anything, mock.MatchedBy(func(args []string) bool {
		return strings.Contains(strings.Join(args, " "), "volume=0.5")
	})).Run(writesOutput("trimmed and quieter")).Return(nil).Once()

	_, err := tt.tool.Trim(ctx, 0, 10)
	require.NoError(t, err)
	_, err = tt.tool.SetVolume(ctx, 0.5)
	require.NoError(t, err)

	dst := filepath.Join(tt.tempDir, "out.wav")
	require.NoError(t, tt.tool.SaveTo(ctx, dst))

	assert.Equal(t, sourceContent, readFile(t, tt.source))
	assert.NotEqual(t, working, dst)
	assert.Equal(t, "trimmed and quieter", readFile(t, dst))
	assert.Equal(t, "trimmed and quieter", readFile(t, working))
	tt.engine.AssertExpectations(t)
}

func TestTool_EngineFailureKeepsWorkingFile(t *testing.T) {
	tt := newTestTool(t)
	working := tt.open(t)

	ffErr := &engine.FFmpegError{Args: []string{"-y"}, Stderr: "boom", Err: errors.New("exit status 1")}
	tt.engine.On("Execute", mock.Anything, mock.Anything).
		Run(writesOutput("partial")).
		Return(ffErr).Once()

	_, err := tt.tool.Reverse(context.Background())

	require.ErrorIs(t, err, ErrEngineInvocationFailed)
	var target *engine.FFmpegError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "boom", target.Stderr)

	assert.Equal(t, sourceContent, readFile(t, working))
	assert.NoFileExists(t, shadowOf(working))
	assert.Equal(t, StateReady, tt.tool.State())
}

func TestTool_EngineFailureWithPlainError(t *testing.T) {
	tt := newTestTool(t)
	tt.open(t)

	tt.engine.On("Execute", mock.Anything, mock.Anything).Return(context.Canceled).Once()

	_, err := tt.tool.Normalize(context.Background())

	assert.ErrorIs(t, err, ErrEngineInvocationFailed)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTool_SetVolumeWindow(t *testing.T) {
	t.Run("clamps window to probed duration", func(t *testing.T) {
		tt := newTestTool(t)
		working := tt.open(t)

		tt.probe.On("DurationMillis", mock.Anything, working).Return(int64(10_500), nil).Once()
		tt.engine.On("Execute", mock.Anything, []string{
			"-y", "-i", working,
			"-af", "volume=enable='between(t,4,10)':volume=2",
			shadowOf(working),
		}).Run(writesOutput("louder")).Return(nil).Once()

		_, err := tt.tool.SetVolumeWindow(context.Background(), 2, 4, 30)

		require.NoError(t, err)
		assert.Equal(t, "louder", readFile(t, working))
		tt.engine.AssertExpectations(t)
		tt.probe.AssertExpectations(t)
	})

	t.Run("probe failure aborts before engine", func(t *testing.T) {
		tt := newTestTool(t)
		working := tt.open(t)

		tt.probe.On("DurationMillis", mock.Anything, working).Return(int64(0), errors.New("unreadable")).Once()

		_, err := tt.tool.SetVolumeWindow(context.Background(), 2, 0, 5)

		require.ErrorIs(t, err, ErrProbeFailed)
		tt.engine.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
		assert.Equal(t, sourceContent, readFile(t, working))
	})
}

func TestTool_TrimTimecode_Invalid(t *testing.T) {
	tt := newTestTool(t)
	tt.open(t)

	_, err := tt.tool.TrimTimecode(context.Background(), "1:2", "00:00:05")

	require.ErrorIs(t, err, ErrInvalidTimecode)
	tt.engine.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestTool_NotImplemented(t *testing.T) {
	tt := newTestTool(t)
	tt.open(t)
	ctx := context.Background()

	ops := map[string]func() (string, error){
		"speed override": func() (string, error) { return tt.tool.ChangeSpeed(ctx, 1.5) },
		"waveform": func() (string, error) {
			return tt.tool.GenerateWaveform(ctx, WaveformOptions{Width: 800, Height: 200})
		},
		"pitch":   func() (string, error) { return tt.tool.ChangePitch(ctx, 2) },
		"reverb":  func() (string, error) { return tt.tool.ApplyReverb(ctx, 50, 50) },
		"shifter": func() (string, error) { return tt.tool.ApplyShifter(ctx, 2, 0.5) },
		"join":    func() (string, error) { return tt.tool.Join(ctx, "a.wav", "b.wav") },
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			_, err := op()
			assert.ErrorIs(t, err, ErrNotImplemented)
		})
	}

	tt.engine.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
	assert.Equal(t, StateReady, tt.tool.State())
}

func TestTool_Duration(t *testing.T) {
	const (
		oneHourTwoMinutesFive = int64(3_725_000)
		ninetyMinutes         = int64(5_400_000)
	)

	tests := []struct {
		name     string
		millis   int64
		unit     DurationUnit
		expected int64
	}{
		{"1h02m05s millis", oneHourTwoMinutesFive, Millis, 3_725_000},
		{"1h02m05s seconds", oneHourTwoMinutesFive, Seconds, 3_725},
		{"1h02m05s minutes", oneHourTwoMinutesFive, Minutes, 2},
		{"90m millis", ninetyMinutes, Millis, 5_400_000},
		{"90m seconds", ninetyMinutes, Seconds, 5_400},
		{"90m minutes within the hour", ninetyMinutes, Minutes, 30},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tt := newTestTool(t)
			working := tt.open(t)
			tt.probe.On("DurationMillis", mock.Anything, working).Return(tc.millis, nil)

			got, err := tt.tool.Duration(context.Background(), tc.unit)

			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestTool_Duration_Errors(t *testing.T) {
	t.Run("invalid unit", func(t *testing.T) {
		tt := newTestTool(t)
		tt.open(t)

		_, err := tt.tool.Duration(context.Background(), DurationUnit(7))

		require.ErrorIs(t, err, ErrInvalidUnit)
		tt.probe.AssertNotCalled(t, "DurationMillis", mock.Anything, mock.Anything)
	})

	t.Run("probe failure", func(t *testing.T) {
		tt := newTestTool(t)
		tt.open(t)
		tt.probe.On("DurationMillis", mock.Anything, mock.Anything).
			Return(int64(0), engine.ErrProbeFailed)

		_, err := tt.tool.Duration(context.Background(), Seconds)

		assert.ErrorIs(t, err, ErrProbeFailed)
	})
}

func TestParseDurationUnit(t *testing.T) {
	tests := []struct {
		in       string
		expected DurationUnit
		wantErr  bool
	}{
		{"", Millis, false},
		{"millis", Millis, false},
		{"SECONDS", Seconds, false},
		{"minutes", Minutes, false},
		{"hours", 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseDurationUnit(tc.in)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidUnit)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestTool_SaveTo(t *testing.T) {
	tt := newTestTool(t)
	working := tt.open(t)
	ctx := context.Background()

	dst := filepath.Join(tt.tempDir, "saved.wav")
	require.NoError(t, tt.tool.SaveTo(ctx, dst))

	assert.Equal(t, sourceContent, readFile(t, dst))
	assert.FileExists(t, working)

	err := tt.tool.SaveTo(ctx, filepath.Join(tt.tempDir, "no", "such", "dir", "out.wav"))
	assert.ErrorIs(t, err, ErrDestinationUnwritable)
	assert.Equal(t, StateReady, tt.tool.State())
}

func TestTool_ReleaseCurrent(t *testing.T) {
	tt := newTestTool(t)
	working := tt.open(t)
	ctx := context.Background()

	require.NoError(t, tt.tool.ReleaseCurrent(ctx))

	assert.NoFileExists(t, working)
	assert.Equal(t, StateReleased, tt.tool.State())

	_, err := tt.tool.Trim(ctx, 0, 1)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.ErrorIs(t, err, ErrReleased)

	assert.ErrorIs(t, tt.tool.ReleaseCurrent(ctx), ErrInvalidState)
	_, err = tt.tool.Open(ctx, tt.source)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestTool_ReleaseAll(t *testing.T) {
	tt := newTestTool(t)
	working := tt.open(t)
	ctx := context.Background()

	other := New(tt.files, tt.files.WorkDir(), tt.engine, tt.probe)
	otherPath, err := other.Open(ctx, tt.source)
	require.NoError(t, err)

	unrelated := filepath.Join(tt.files.WorkDir(), "keep.wav")
	require.NoError(t, os.WriteFile(unrelated, []byte("keep"), 0o600))

	removed, err := tt.tool.ReleaseAll(ctx)

	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.NoFileExists(t, working)
	assert.NoFileExists(t, otherPath)
	assert.FileExists(t, unrelated)
	assert.Equal(t, StateReleased, tt.tool.State())
}

func TestTool_ReleaseAll_EmptyTool(t *testing.T) {
	tt := newTestTool(t)

	removed, err := tt.tool.ReleaseAll(context.Background())

	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Equal(t, StateEmpty, tt.tool.State())
}

func TestTool_Publish(t *testing.T) {
	t.Run("without publisher", func(t *testing.T) {
		tt := newTestTool(t)
		tt.open(t)

		_, err := tt.tool.Publish(context.Background(), "edits/out.wav")

		assert.ErrorIs(t, err, storage.ErrS3NotConfigured)
	})

	t.Run("uploads working file", func(t *testing.T) {
		pub := &mockPublisher{}
		tt := newTestTool(t, WithPublisher(pub))
		tt.open(t)

		var uploaded string
		pub.On("Publish", mock.Anything, "edits/out.wav", mock.Anything).
			Run(func(a mock.Arguments) {
				data, _ := io.ReadAll(a.Get(2).(io.Reader))
				uploaded = string(data)
			}).
			Return("https://bucket.s3.us-east-1.amazonaws.com/edits/out.wav", nil).Once()

		url, err := tt.tool.Publish(context.Background(), "edits/out.wav")

		require.NoError(t, err)
		assert.Equal(t, "https://bucket.s3.us-east-1.amazonaws.com/edits/out.wav", url)
		assert.Equal(t, sourceContent, uploaded)
		pub.AssertExpectations(t)
	})

	t.Run("publisher error", func(t *testing.T) {
		pub := &mockPublisher{}
		tt := newTestTool(t, WithPublisher(pub))
		tt.open(t)
		pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("denied"))

		_, err := tt.tool.Publish(context.Background(), "k")

		assert.ErrorContains(t, err, "denied")
	})
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "empty", StateEmpty.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "released", StateReleased.String())
	assert.Equal(t, "state(9)", State(9).String())
}
