// Package sampler polls a field strength reader.
package sampler

import (
	"errors"
	"sync"
	"time"
)

// MinInterval bounds how fast SenseContinuous polls the sensor.
const MinInterval = time.Millisecond

// Reader is implemented by *si7210.Dev.
type Reader interface {
	FieldStrength() (int, error)
}

// Sample is one field strength reading.
type Sample struct {
	MicroTesla int
	Time       time.Time
}

// Sampler serializes access to a Reader and runs at most one continuous
// polling loop.
type Sampler struct {
	r   Reader
	now func() time.Time

	mu   sync.Mutex
	stop chan struct{}
	wg   sync.WaitGroup
	err  error
}

func New(r Reader) *Sampler {
	return &Sampler{r: r, now: time.Now}
}

// Sense takes a single reading.
func (s *Sampler) Sense() (Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return Sample{}, errors.New("sampler: already sensing continuously")
	}
	return s.sense()
}

// Do runs f while holding the lock that guards the Reader, so that other
// users of the same device or bus do not interleave with the polling loop.
func (s *Sampler) Do(f func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return f()
}

// SenseContinuous returns readings taken every interval.
//
// The application must call Halt() to stop the sensing when done to stop the
// polling and close the channel. The channel is also closed when a reading
// fails; Err returns the cause and the Sampler is ready for Sense again.
//
// It's the responsibility of the caller to retrieve the values from the
// channel as fast as possible, otherwise the interval may not be respected.
func (s *Sampler) SenseContinuous(interval time.Duration) (<-chan Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
		s.mu.Unlock()
		s.wg.Wait()
		s.mu.Lock()
	}

	sensing := make(chan Sample)
	s.stop = make(chan struct{})
	s.err = nil
	s.wg.Add(1)
	go func(stop <-chan struct{}) {
		defer s.wg.Done()
		defer close(sensing)
		s.sensingContinuous(interval, sensing, stop)
	}(s.stop)
	return sensing, nil
}

// Halt stops the loop started by SenseContinuous.
func (s *Sampler) Halt() error {
	s.mu.Lock()
	if s.stop == nil {
		s.mu.Unlock()
		return nil
	}
	close(s.stop)
	s.stop = nil
	s.mu.Unlock()
	s.wg.Wait()
	return nil
}

// Err returns the error that ended the last continuous loop, if any.
func (s *Sampler) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Sampler) sense() (Sample, error) {
	v, err := s.r.FieldStrength()
	if err != nil {
		return Sample{}, err
	}
	return Sample{MicroTesla: v, Time: s.now()}, nil
}

func (s *Sampler) sensingContinuous(interval time.Duration, sensing chan<- Sample, stop <-chan struct{}) {
	if interval < MinInterval {
		interval = MinInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		// Do one initial sensing right away.
		s.mu.Lock()
		smp, err := s.sense()
		if err != nil {
			s.err = err
			// Let Sense and SenseContinuous be used again without Halt.
			if s.stop == stop {
				s.stop = nil
			}
		}
		s.mu.Unlock()
		if err != nil {
			return
		}
		select {
		case sensing <- smp:
		case <-stop:
			return
		}
		select {
		case <-stop:
			return
		case <-t.C:
		}
	}
}
