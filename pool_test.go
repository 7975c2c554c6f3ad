package nb2pdf

import (
	"runtime"
	"sync"
	"testing"
	"time"
)

// Compile-time interface check.
var _ interface {
	Acquire() *Service
	Release(*Service)
	Size() int
	Close() error
} = (*ServicePool)(nil)

func TestResolvePoolSize(t *testing.T) {
	t.Parallel()

	gomaxprocs := runtime.GOMAXPROCS(0)

	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{
			name:    "explicit takes priority",
			workers: 4,
			want:    4,
		},
		{
			name:    "explicit=1 for sequential",
			workers: 1,
			want:    1,
		},
		{
			name:    "zero uses auto calculation",
			workers: 0,
			want:    min(max(gomaxprocs/cpuDivisor, MinPoolSize), MaxPoolSize),
		},
		{
			name:    "negative uses auto calculation",
			workers: -5,
			want:    min(max(gomaxprocs/cpuDivisor, MinPoolSize), MaxPoolSize),
		},
		{
			name:    "explicit can exceed max",
			workers: 16,
			want:    16,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ResolvePoolSize(tt.workers)
			if got != tt.want {
				t.Errorf("ResolvePoolSize(%d) = %d, want %d", tt.workers, got, tt.want)
			}
		})
	}
}

func TestResolvePoolSize_Bounds(t *testing.T) {
	t.Parallel()

	got := ResolvePoolSize(0)
	if got < MinPoolSize || got > MaxPoolSize {
		t.Errorf("ResolvePoolSize(0) = %d, want between %d and %d", got, MinPoolSize, MaxPoolSize)
	}
}

func TestServicePool_AcquireRelease(t *testing.T) {
	t.Parallel()

	pool := NewServicePool(2)
	defer pool.Close()

	svc1 := pool.Acquire()
	if svc1 == nil {
		t.Fatal("Acquire() returned nil")
	}

	svc2 := pool.Acquire()
	if svc2 == nil {
		t.Fatal("Acquire() returned nil")
	}

	if svc1 == svc2 {
		t.Error("expected different service instances")
	}

	// Release and re-acquire
	pool.Release(svc1)
	svc3 := pool.Acquire()

	if svc3 != svc1 {
		t.Error("expected to get back released service")
	}

	pool.Release(svc2)
	pool.Release(svc3)
}

func TestServicePool_OptionsReachServices(t *testing.T) {
	t.Parallel()

	pool := NewServicePool(1, WithBackend(BackendChrome), WithStyle("github"))
	defer pool.Close()

	svc := pool.Acquire()
	defer pool.Release(svc)

	if svc.cfg.backend != BackendChrome {
		t.Errorf("backend = %q, want %q", svc.cfg.backend, BackendChrome)
	}
	if svc.cfg.style != "github" {
		t.Errorf("style = %q, want github", svc.cfg.style)
	}
}

func TestServicePool_Size(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		size int
		want int
	}{
		{"size 1", 1, 1},
		{"size 4", 4, 4},
		{"size 0 becomes 1", 0, 1},
		{"negative becomes 1", -1, 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pool := NewServicePool(tt.size)
			defer pool.Close()

			if got := pool.Size(); got != tt.want {
				t.Errorf("Size() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestServicePool_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	pool := NewServicePool(4)
	defer pool.Close()

	var wg sync.WaitGroup
	iterations := 20

	for i := 0; i < iterations; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc := pool.Acquire()
			time.Sleep(5 * time.Millisecond) // Simulate work
			pool.Release(svc)
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(5 * time.Second)
	defer timer.Stop()

	select {
	case <-done:
		// Success
	case <-timer.C:
		t.Fatal("concurrent access test timed out - possible deadlock")
	}
}

func TestServicePool_AllServicesAcquired(t *testing.T) {
	t.Parallel()

	pool := NewServicePool(3)
	defer pool.Close()

	services := make([]*Service, 3)
	for i := 0; i < 3; i++ {
		services[i] = pool.Acquire()
		if services[i] == nil {
			t.Fatalf("Acquire() returned nil for service %d", i)
		}
	}

	seen := make(map[*Service]bool)
	for _, svc := range services {
		if seen[svc] {
			t.Error("got duplicate service from pool")
		}
		seen[svc] = true
	}

	for _, svc := range services {
		pool.Release(svc)
	}
}

func TestServicePool_ClosePreventsFurtherRelease(t *testing.T) {
	t.Parallel()

	pool := NewServicePool(2)

	svc := pool.Acquire()
	pool.Close()

	// Release after close should not panic
	pool.Release(svc)
}

// TestServicePool_ReleaseDuringClose races Release against Close many
// times; a lost race used to panic with a send on the closed semaphore.
func TestServicePool_ReleaseDuringClose(t *testing.T) {
	t.Parallel()

	for i := 0; i < 100; i++ {
		pool := NewServicePool(2)
		svc1 := pool.Acquire()
		svc2 := pool.Acquire()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			pool.Release(svc1)
		}()
		go func() {
			defer wg.Done()
			pool.Close()
		}()
		wg.Wait()

		// After Close, Release must stay a no-op.
		pool.Release(svc2)
	}
}

func TestServicePool_DoubleClose(t *testing.T) {
	t.Parallel()

	pool := NewServicePool(1)

	if err := pool.Close(); err != nil {
		t.Errorf("first Close() error = %v", err)
	}

	// Second close should not panic
	pool.Close()
}

// TestServicePool_HighContention verifies the pool remains deadlock-free
// under heavy concurrent access: a small pool with many goroutines each
// performing multiple acquire/release cycles.
func TestServicePool_HighContention(t *testing.T) {
	t.Parallel()

	pool := NewServicePool(2)
	defer pool.Close()

	var wg sync.WaitGroup
	goroutines := 50
	iterations := 10

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				svc := pool.Acquire()
				time.Sleep(time.Duration(j%3) * time.Millisecond)
				pool.Release(svc)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(30 * time.Second)
	defer timer.Stop()

	select {
	case <-done:
		// Success - no deadlock under high contention
	case <-timer.C:
		t.Fatal("high contention test timed out - possible deadlock")
	}
}
