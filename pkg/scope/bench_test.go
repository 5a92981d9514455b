package scope

import (
	"testing"
	"time"

	"github.com/recera/graphscope/pkg/viewport"
)

func benchStates() (main, thumb viewport.State) {
	main = state(4, viewport.Point{X: -800, Y: -600}, 800, 600)
	thumb = state(0.5, viewport.Point{}, 200, 150)
	return main, thumb
}

// BenchmarkCompute measures one scope update
func BenchmarkCompute(b *testing.B) {
	e := NewEngine()
	main, thumb := benchStates()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		main.Pan.X = -float64(i % 800)
		_ = e.Compute(main, thumb)
	}
}

// BenchmarkPointerToMainPan measures the inverse mapping used while dragging
func BenchmarkPointerToMainPan(b *testing.B) {
	e := NewEngine()
	main, thumb := benchStates()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p := viewport.Point{X: float64(i % 200), Y: float64(i % 150)}
		_ = e.PointerToMainPan(p, thumb, main)
	}
}

// TestComputeUnder5us keeps the per-frame math far below a 60fps frame
func TestComputeUnder5us(t *testing.T) {
	e := NewEngine()
	main, thumb := benchStates()

	iterations := 100000
	start := time.Now()
	for i := 0; i < iterations; i++ {
		main.Pan.X = -float64(i % 800)
		_ = e.Compute(main, thumb)
	}
	avgDuration := time.Since(start) / time.Duration(iterations)

	if avgDuration > 5*time.Microsecond {
		t.Errorf("Scope compute took %v (average), expected <5µs", avgDuration)
	} else {
		t.Logf("✓ Scope compute: %v (average)", avgDuration)
	}
}
