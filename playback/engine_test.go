// SPDX-License-Identifier: EPL-2.0

package playback_test

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/ik5/audloop/audio"
	"github.com/ik5/audloop/device"
	"github.com/ik5/audloop/internal/audiotest"
	"github.com/ik5/audloop/marker"
	"github.com/ik5/audloop/playback"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// newEngine builds an engine over a mono 10,000 frame ramp at 1 kHz, so one
// frame is one millisecond.
func newEngine(t *testing.T, markers ...int) (*playback.Engine, *audiotest.ManualOpener) {
	t.Helper()

	buf := audiotest.Ramp(10000, 1, 1000)
	set := marker.NewSet(buf)
	for _, m := range markers {
		if err := set.Set(m); err != nil {
			t.Fatalf("Set(%d) error = %v", m, err)
		}
	}

	opener := &audiotest.ManualOpener{}
	e, err := playback.New(buf, set, opener, playback.WithLogger(quiet))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	return e, opener
}

// checkRamp asserts that out holds the mono ramp frames from..to inclusive,
// starting at offset.
func checkRamp(t *testing.T, out []float32, offset, from, to int) {
	t.Helper()

	for i, f := 0, from; f <= to; i, f = i+1, f+1 {
		if got, want := out[offset+i], audiotest.RampValue(f, 0); got != want {
			t.Fatalf("out[%d] = %v, want frame %v", offset+i, got, want)
		}
	}
}

func TestEngine_NonLoopEndOfStream(t *testing.T) {
	t.Parallel()

	e, opener := newEngine(t)
	if err := e.Start(9990, false); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	stream := opener.Last()

	out, err := stream.Pump(20, 1.0)
	if !errors.Is(err, device.ErrStop) {
		t.Fatalf("Pump() error = %v, want device.ErrStop", err)
	}

	checkRamp(t, out, 0, 9990, 9999)
	for i := 10; i < 20; i++ {
		if out[i] != 0 {
			t.Errorf("out[%d] = %v, want 0 (zero fill)", i, out[i])
		}
	}

	rec, ok := e.Record()
	if !ok || rec.First != 9990 || rec.Last != 9999 {
		t.Errorf("Record() = %+v, %v; want First 9990, Last 9999", rec, ok)
	}

	if _, err := stream.Pump(20, 1.02); !errors.Is(err, audiotest.ErrNotRunning) {
		t.Errorf("Pump() after end error = %v, want ErrNotRunning", err)
	}
	if got := stream.StopSignals(); got != 1 {
		t.Errorf("StopSignals() = %d, want 1", got)
	}

	select {
	case <-e.Done():
	default:
		t.Error("Done() not closed after end of stream")
	}
	if !e.Ended() {
		t.Error("Ended() = false, want true")
	}
}

func TestEngine_LoopWrap(t *testing.T) {
	t.Parallel()

	e, opener := newEngine(t, 3000, 6000)
	if err := e.Start(4000, true); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	out, err := opener.Last().Pump(2500, 1.0)
	if err != nil {
		t.Fatalf("Pump() error = %v", err)
	}

	checkRamp(t, out, 0, 4000, 5999)
	checkRamp(t, out, 2000, 3000, 3499)

	rec, _ := e.Record()
	if rec.First != 4000 || rec.Last != 3499 {
		t.Errorf("Record() = %+v, want First 4000, Last 3499", rec)
	}
}

func TestEngine_LoopMultiWrap(t *testing.T) {
	t.Parallel()

	// A 100 frame section is shorter than the 250 frame device buffer.
	e, opener := newEngine(t, 1000, 1100)
	if err := e.Start(1050, true); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	out, err := opener.Last().Pump(250, 1.0)
	if err != nil {
		t.Fatalf("Pump() error = %v", err)
	}

	checkRamp(t, out, 0, 1050, 1099)
	checkRamp(t, out, 50, 1000, 1099)
	checkRamp(t, out, 150, 1000, 1099)

	rec, _ := e.Record()
	if rec.Last != 1099 {
		t.Errorf("Record().Last = %d, want 1099", rec.Last)
	}
}

func TestEngine_LoopStaysInSectionAtEdge(t *testing.T) {
	t.Parallel()

	e, opener := newEngine(t, 3000, 6000)
	if err := e.Start(5000, true); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	stream := opener.Last()

	// The first buffer ends exactly on the section's last frame.
	if _, err := stream.Pump(1000, 1.0); err != nil {
		t.Fatalf("Pump() error = %v", err)
	}

	out, err := stream.Pump(10, 2.0)
	if err != nil {
		t.Fatalf("Pump() error = %v", err)
	}
	checkRamp(t, out, 0, 3000, 3009)
}

func TestEngine_LoopOffContinuesPastSection(t *testing.T) {
	t.Parallel()

	e, opener := newEngine(t, 3000, 6000)
	if err := e.Start(5000, true); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	stream := opener.Last()

	if _, err := stream.Pump(500, 1.0); err != nil {
		t.Fatalf("Pump() error = %v", err)
	}

	e.LoopOff()
	if e.Looping() {
		t.Fatal("Looping() = true after LoopOff")
	}

	out, err := stream.Pump(1000, 1.5)
	if err != nil {
		t.Fatalf("Pump() error = %v", err)
	}
	checkRamp(t, out, 0, 5500, 6499)
}

func TestEngine_LoopOnUsesCurrentSection(t *testing.T) {
	t.Parallel()

	e, opener := newEngine(t, 3000, 6000)
	if err := e.Start(6900, false); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	stream := opener.Last()

	if _, err := stream.Pump(100, 1.0); err != nil {
		t.Fatalf("Pump() error = %v", err)
	}

	// A marker at 7050 closes the section holding the cursor at 7049.
	if err := e.SetMarker(7050); err != nil {
		t.Fatalf("SetMarker() error = %v", err)
	}
	e.LoopOn()

	out, err := stream.Pump(100, 1.1)
	if err != nil {
		t.Fatalf("Pump() error = %v", err)
	}
	checkRamp(t, out, 0, 7000, 7049)
	checkRamp(t, out, 50, 6000, 6049)
}

func TestEngine_Stereo(t *testing.T) {
	t.Parallel()

	buf := audiotest.Ramp(100, 2, 1000)
	opener := &audiotest.ManualOpener{}
	e, err := playback.New(buf, nil, opener, playback.WithLogger(quiet))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := e.Start(10, false); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	out, err := opener.Last().Pump(4, 1.0)
	if err != nil {
		t.Fatalf("Pump() error = %v", err)
	}

	for i := range 4 {
		for c := range 2 {
			if got, want := out[i*2+c], audiotest.RampValue(10+i, c); got != want {
				t.Errorf("out[%d] = %v, want %v", i*2+c, got, want)
			}
		}
	}
}

func TestEngine_PositionEstimate(t *testing.T) {
	t.Parallel()

	e, opener := newEngine(t)
	if err := e.Start(4000, false); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	stream := opener.Last()

	if _, ok := e.CurrentPosition(); ok {
		t.Error("CurrentPosition() known before the first callback")
	}
	if e.Playing() {
		t.Error("Playing() = true before the first callback")
	}

	if _, err := stream.Pump(512, 10.0); err != nil {
		t.Fatalf("Pump() error = %v", err)
	}

	stream.SetTime(9.5)
	frame, ok := e.CurrentFrame()
	if !ok || frame != 3500 {
		t.Errorf("CurrentFrame() = %d, %v; want 3500, true", frame, ok)
	}
	pos, ok := e.CurrentPosition()
	if !ok || pos != 3500 {
		t.Errorf("CurrentPosition() = %d, %v; want 3500, true", pos, ok)
	}
	if !e.Playing() {
		t.Error("Playing() = false with a pending buffer")
	}

	for _, now := range []float64{10.0, 10.2} {
		stream.SetTime(now)
		if pos, ok := e.CurrentPosition(); ok {
			t.Errorf("now=%v: CurrentPosition() = %d, want unknown for a stale record", now, pos)
		}
	}
}

func TestEngine_PositionEstimateFloatTimes(t *testing.T) {
	t.Parallel()

	e, opener := newEngine(t)
	if err := e.Start(0, false); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	stream := opener.Last()
	if _, err := stream.Pump(100, 1.0); err != nil {
		t.Fatalf("Pump() error = %v", err)
	}
	if _, err := stream.Pump(100, 1.1); err != nil {
		t.Fatalf("Pump() error = %v", err)
	}

	// 1.1-1.05 and 1.1-1.07 are not exact in binary
	for _, tt := range []struct {
		now  float64
		want int
	}{
		{now: 1.05, want: 50},
		{now: 1.07, want: 70},
		{now: 1.09, want: 90},
	} {
		stream.SetTime(tt.now)
		if frame, ok := e.CurrentFrame(); !ok || frame != tt.want {
			t.Errorf("now=%v: CurrentFrame() = %d, %v; want %d, true", tt.now, frame, ok, tt.want)
		}
		if pos, ok := e.CurrentPosition(); !ok || pos != tt.want {
			t.Errorf("now=%v: CurrentPosition() = %d, %v; want %d, true", tt.now, pos, ok, tt.want)
		}
	}

	stream.SetTime(1.05)
	if pos, err := e.Stop(); err != nil || pos != 50 {
		t.Errorf("Stop() = %d, %v; want 50, nil", pos, err)
	}
}

func TestEngine_PositionNotYetAudible(t *testing.T) {
	t.Parallel()

	e, opener := newEngine(t)
	if err := e.Start(0, false); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	stream := opener.Last()
	if _, err := stream.Pump(256, 1.0); err != nil {
		t.Fatalf("Pump() error = %v", err)
	}

	// Frame 0 starts in half a second; nothing is audible yet.
	stream.SetTime(0.5)
	if _, ok := e.CurrentFrame(); ok {
		t.Error("CurrentFrame() known before the first buffer is heard")
	}
}

func TestEngine_StartErrors(t *testing.T) {
	t.Parallel()

	t.Run("twice", func(t *testing.T) {
		t.Parallel()
		e, _ := newEngine(t)
		if err := e.Start(0, false); err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		if err := e.Start(0, false); !errors.Is(err, playback.ErrNotIdle) {
			t.Errorf("second Start() error = %v, want ErrNotIdle", err)
		}
	})

	t.Run("position out of range", func(t *testing.T) {
		t.Parallel()
		e, opener := newEngine(t)
		for _, pos := range []int{-1, 10001} {
			if err := e.Start(pos, false); !errors.Is(err, audio.ErrPositionOutOfRange) {
				t.Errorf("Start(%d) error = %v, want ErrPositionOutOfRange", pos, err)
			}
		}
		if e.State() != playback.Idle {
			t.Errorf("State() = %s, want idle", e.State())
		}
		if opener.Opened() != 0 {
			t.Errorf("Opened() = %d, want 0", opener.Opened())
		}
	})

	t.Run("open fails", func(t *testing.T) {
		t.Parallel()
		e, opener := newEngine(t)
		opener.OpenErr = errors.New("no device")
		if err := e.Start(0, false); !errors.Is(err, playback.ErrDevice) {
			t.Errorf("Start() error = %v, want ErrDevice", err)
		}
		if e.State() != playback.Closed {
			t.Errorf("State() = %s, want closed", e.State())
		}
	})

	t.Run("stream start fails", func(t *testing.T) {
		t.Parallel()
		e, opener := newEngine(t)
		opener.Prepare = func(s *audiotest.ManualStream) { s.StartErr = errors.New("busy") }
		if err := e.Start(0, false); !errors.Is(err, playback.ErrDevice) {
			t.Errorf("Start() error = %v, want ErrDevice", err)
		}
		if !opener.Last().Closed() {
			t.Error("stream left open after a failed start")
		}
		if e.State() != playback.Closed {
			t.Errorf("State() = %s, want closed", e.State())
		}
	})
}

func TestEngine_Stop(t *testing.T) {
	t.Parallel()

	e, opener := newEngine(t)
	if _, err := e.Stop(); !errors.Is(err, playback.ErrNotRunning) {
		t.Errorf("Stop() on idle engine error = %v, want ErrNotRunning", err)
	}

	if err := e.Start(4000, false); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	stream := opener.Last()
	if _, err := stream.Pump(512, 10.0); err != nil {
		t.Fatalf("Pump() error = %v", err)
	}
	stream.SetTime(9.75)

	pos, err := e.Stop()
	if err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if pos != 3750 {
		t.Errorf("Stop() = %d, want 3750", pos)
	}
	if !stream.Closed() {
		t.Error("stream not closed after Stop")
	}
	if e.State() != playback.Closed {
		t.Errorf("State() = %s, want closed", e.State())
	}
	if _, ok := e.CurrentPosition(); ok {
		t.Error("CurrentPosition() known after Stop")
	}
	if err := e.Start(0, false); !errors.Is(err, playback.ErrNotIdle) {
		t.Errorf("Start() after Stop error = %v, want ErrNotIdle", err)
	}
}

func TestEngine_StopWithoutEstimate(t *testing.T) {
	t.Parallel()

	e, _ := newEngine(t)
	if err := e.Start(4000, false); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	pos, err := e.Stop()
	if err != nil || pos != 0 {
		t.Errorf("Stop() = %d, %v; want 0, nil", pos, err)
	}
}

func TestEngine_StopFailure(t *testing.T) {
	t.Parallel()

	e, opener := newEngine(t)
	opener.Prepare = func(s *audiotest.ManualStream) { s.StopErr = errors.New("wedged") }
	if err := e.Start(0, false); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if _, err := e.Stop(); !errors.Is(err, playback.ErrDevice) {
		t.Errorf("Stop() error = %v, want ErrDevice", err)
	}
	if e.State() != playback.Closed {
		t.Errorf("State() = %s, want closed", e.State())
	}
}

func TestEngine_StopAfterDeviceFailure(t *testing.T) {
	t.Parallel()

	e, opener := newEngine(t)
	if err := e.Start(1000, false); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	stream := opener.Last()
	if _, err := stream.Pump(64, 1.0); err != nil {
		t.Fatalf("Pump() error = %v", err)
	}

	lost := errors.New("device unplugged")
	stream.Fail(lost)
	if e.Ended() {
		t.Error("Ended() = true without reaching the end of the clip")
	}

	_, err := e.Stop()
	if !errors.Is(err, playback.ErrStreamEnded) || !errors.Is(err, lost) {
		t.Errorf("Stop() error = %v, want ErrStreamEnded wrapping %v", err, lost)
	}
	if e.State() != playback.Running {
		t.Errorf("State() = %s, want running until Abort", e.State())
	}
	if err := e.Abort(); err != nil {
		t.Fatalf("Abort() error = %v", err)
	}
	if !stream.Closed() || e.State() != playback.Closed {
		t.Errorf("after Abort: closed=%v state=%s", stream.Closed(), e.State())
	}
}

func TestEngine_StopAfterStreamWentInactive(t *testing.T) {
	t.Parallel()

	e, opener := newEngine(t)
	if err := e.Start(1000, false); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	opener.Last().Fail(nil)

	_, err := e.Stop()
	if !errors.Is(err, playback.ErrStreamEnded) {
		t.Errorf("Stop() error = %v, want ErrStreamEnded", err)
	}
	if err := e.Abort(); err != nil {
		t.Errorf("Abort() error = %v", err)
	}
}

func TestEngine_AbortAfterEnd(t *testing.T) {
	t.Parallel()

	e, opener := newEngine(t)
	if err := e.Abort(); !errors.Is(err, playback.ErrNotRunning) {
		t.Errorf("Abort() on idle engine error = %v, want ErrNotRunning", err)
	}

	if err := e.Start(9999, false); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	stream := opener.Last()
	if _, err := stream.Pump(64, 1.0); !errors.Is(err, device.ErrStop) {
		t.Fatalf("Pump() error = %v, want ErrStop", err)
	}

	if _, err := e.Stop(); !errors.Is(err, playback.ErrStreamEnded) {
		t.Errorf("Stop() after end error = %v, want ErrStreamEnded", err)
	}
	if err := e.Abort(); err != nil {
		t.Fatalf("Abort() error = %v", err)
	}
	if !stream.Closed() || e.State() != playback.Closed {
		t.Errorf("after Abort: closed=%v state=%s", stream.Closed(), e.State())
	}
	if err := e.Abort(); !errors.Is(err, playback.ErrNotRunning) {
		t.Errorf("second Abort() error = %v, want ErrNotRunning", err)
	}
}

func TestNew_BufferMismatch(t *testing.T) {
	t.Parallel()

	set := marker.NewSet(audiotest.Ramp(100, 1, 1000))
	_, err := playback.New(audiotest.Ramp(100, 1, 1000), set, &audiotest.ManualOpener{})
	if !errors.Is(err, playback.ErrBufferMismatch) {
		t.Errorf("New() error = %v, want ErrBufferMismatch", err)
	}
}

func TestEngine_ConcurrentControl(t *testing.T) {
	t.Parallel()

	e, opener := newEngine(t, 2000, 4000, 6000)
	if err := e.Start(1000, true); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	stream := opener.Last()

	var wg sync.WaitGroup
	wg.Add(2)

	// audio thread
	go func() {
		defer wg.Done()
		for i := range 2000 {
			if _, err := stream.Pump(128, float64(i)*0.128+0.1); err != nil {
				if !errors.Is(err, device.ErrStop) {
					t.Errorf("Pump() error = %v", err)
				}
				return
			}
		}
	}()

	// control thread
	go func() {
		defer wg.Done()
		for i := range 2000 {
			stream.SetTime(float64(i) * 0.128)
			if i%2 == 0 {
				e.LoopOff()
			} else {
				e.LoopOn()
			}
			if i%50 == 0 {
				_ = e.SetMarker(5000)
			} else if i%50 == 25 {
				_ = e.UnsetMarker(5000)
			}
			if f, ok := e.CurrentFrame(); ok && (f < 0 || f >= 10000) {
				t.Errorf("CurrentFrame() = %d out of range", f)
			}
		}
	}()

	wg.Wait()

	rec, ok := e.Record()
	if !ok || rec.First < 0 || rec.Last >= 10000 {
		t.Errorf("Record() = %+v, %v", rec, ok)
	}
}
