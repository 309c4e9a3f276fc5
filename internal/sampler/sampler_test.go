package sampler

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeReader struct {
	mu     sync.Mutex
	n      int
	failAt int
}

var errBus = errors.New("bus error")

func (f *fakeReader) FieldStrength() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	if f.failAt != 0 && f.n >= f.failAt {
		return 0, errBus
	}
	return f.n * 10, nil
}

func TestSense(t *testing.T) {
	at := time.Date(2020, 7, 11, 0, 0, 0, 0, time.UTC)
	s := New(&fakeReader{})
	s.now = func() time.Time { return at }

	got, err := s.Sense()
	if err != nil {
		t.Fatal(err)
	}
	if got.MicroTesla != 10 || !got.Time.Equal(at) {
		t.Errorf("Sense() = %+v", got)
	}
}

func TestSense_error(t *testing.T) {
	s := New(&fakeReader{failAt: 1})
	if _, err := s.Sense(); !errors.Is(err, errBus) {
		t.Errorf("Sense() = %v, want %v", err, errBus)
	}
}

func TestSenseContinuous(t *testing.T) {
	s := New(&fakeReader{})
	c, err := s.SenseContinuous(time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	for want := 10; want <= 30; want += 10 {
		smp, ok := <-c
		if !ok {
			t.Fatal("channel closed early")
		}
		if smp.MicroTesla != want {
			t.Errorf("sample = %d, want %d", smp.MicroTesla, want)
		}
	}
	if _, err := s.Sense(); err == nil {
		t.Error("Sense() succeeded while sensing continuously")
	}
	if err := s.Halt(); err != nil {
		t.Fatal(err)
	}
	for range c {
	}
	if err := s.Err(); err != nil {
		t.Errorf("Err() = %v", err)
	}
	if _, err := s.Sense(); err != nil {
		t.Errorf("Sense() after Halt() = %v", err)
	}
}

func TestSenseContinuous_restart(t *testing.T) {
	s := New(&fakeReader{})
	first, err := s.SenseContinuous(time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	<-first
	second, err := s.SenseContinuous(time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	for range first {
	}
	if _, ok := <-second; !ok {
		t.Error("second channel closed")
	}
	s.Halt()
}

func TestSenseContinuous_error(t *testing.T) {
	s := New(&fakeReader{failAt: 3})
	c, err := s.SenseContinuous(time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	n := 0
	for range c {
		n++
	}
	if n != 2 {
		t.Errorf("got %d samples, want 2", n)
	}
	if err := s.Err(); !errors.Is(err, errBus) {
		t.Errorf("Err() = %v, want %v", err, errBus)
	}
	// The loop is over: Sense reaches the reader again.
	if _, err := s.Sense(); !errors.Is(err, errBus) {
		t.Errorf("Sense() after failed loop = %v, want %v", err, errBus)
	}
	if err := s.Halt(); err != nil {
		t.Fatal(err)
	}
}

func TestDo(t *testing.T) {
	s := New(&fakeReader{})
	called := false
	err := s.Do(func() error {
		called = true
		return errBus
	})
	if !called || !errors.Is(err, errBus) {
		t.Errorf("Do() = %v, called %t", err, called)
	}
}
