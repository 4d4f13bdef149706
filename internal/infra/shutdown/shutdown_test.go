package shutdown

import (
	"context"
	"sync/atomic"
	"syscall"
	"testing"
	"time"
)

func TestWithSignals_CancelOnSignal(t *testing.T) {
	ctx, stop := WithSignals(context.Background(), Signals(syscall.SIGUSR1), OnForce(func() {}))
	defer stop()

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGUSR1); err != nil {
		t.Fatalf("Kill() error = %v", err)
	}

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context was not cancelled by the signal")
	}
}

func TestWithSignals_SecondSignalForces(t *testing.T) {
	var forced atomic.Int32
	ctx, stop := WithSignals(context.Background(),
		Signals(syscall.SIGUSR2),
		OnForce(func() { forced.Add(1) }),
	)
	defer stop()

	syscall.Kill(syscall.Getpid(), syscall.SIGUSR2)
	<-ctx.Done()
	if forced.Load() != 0 {
		t.Fatal("first signal forced exit")
	}

	syscall.Kill(syscall.Getpid(), syscall.SIGUSR2)
	deadline := time.Now().Add(2 * time.Second)
	for forced.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("second signal did not force exit")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWithSignals_Stop(t *testing.T) {
	ctx, stop := WithSignals(context.Background(), Signals(syscall.SIGUSR1), OnForce(func() {}))
	stop()
	stop()

	select {
	case <-ctx.Done():
	default:
		t.Fatal("stop did not cancel the context")
	}
}

func TestWithSignals_ParentCancel(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := WithSignals(parent, Signals(syscall.SIGUSR1))
	defer stop()

	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("parent cancel did not propagate")
	}
}
