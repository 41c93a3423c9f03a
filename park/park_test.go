package park_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/petabytecl/quip/park"
)

func TestParkUnparkWakes(t *testing.T) {
	p := park.NewParker()
	done := make(chan bool, 1)

	go func() {
		done <- p.Park(context.Background())
	}()

	// Give the goroutine a moment to reach Park before we unpark it.
	time.Sleep(10 * time.Millisecond)
	p.Unpark()

	select {
	case woken := <-done:
		assert.True(t, woken)
	case <-time.After(time.Second):
		t.Fatal("Park never returned")
	}
}

func TestUnparkBeforeParkIsNotLost(t *testing.T) {
	p := park.NewParker()
	p.Unpark()

	woken := p.Park(context.Background())
	assert.True(t, woken, "a pending Unpark must be observed by the next Park")
}

func TestParkRespectsContextCancellation(t *testing.T) {
	p := park.NewParker()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	woken := p.Park(ctx)
	assert.False(t, woken)
}

func TestIsParkedReflectsState(t *testing.T) {
	p := park.NewParker()
	assert.False(t, p.IsParked())

	go p.Park(context.Background())
	assert.Eventually(t, p.IsParked, time.Second, time.Millisecond)

	p.Unpark()
	assert.Eventually(t, func() bool { return !p.IsParked() }, time.Second, time.Millisecond)
}

func TestSleepersNotifyOneWakesAParkedWorker(t *testing.T) {
	s := park.NewSleepers(3)
	woken := make(chan int, 1)

	go func() {
		if s.Parker(1).Park(context.Background()) {
			woken <- 1
		}
	}()

	assert.Eventually(t, func() bool { return s.ParkedCount() == 1 }, time.Second, time.Millisecond)

	ok := s.NotifyOne()
	assert.True(t, ok)

	select {
	case idx := <-woken:
		assert.Equal(t, 1, idx)
	case <-time.After(time.Second):
		t.Fatal("worker 1 never woke")
	}
}

func TestSleepersNotifyOneReportsFalseWhenNobodyParked(t *testing.T) {
	s := park.NewSleepers(2)
	assert.False(t, s.NotifyOne())
}

func TestSleepersNotifyAllWakesEveryone(t *testing.T) {
	s := park.NewSleepers(4)
	results := make(chan bool, 4)

	for i := 0; i < 4; i++ {
		go func(idx int) {
			results <- s.Parker(idx).Park(context.Background())
		}(i)
	}

	assert.Eventually(t, func() bool { return s.ParkedCount() == 4 }, time.Second, time.Millisecond)

	s.NotifyAll()

	for i := 0; i < 4; i++ {
		select {
		case woken := <-results:
			assert.True(t, woken)
		case <-time.After(time.Second):
			t.Fatal("not all workers woke")
		}
	}
}
