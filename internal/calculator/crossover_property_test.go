package calculator

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"TrendScout/internal/model"
)

func TestDetectCrossover_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	windows := model.WindowPair{Short: 5, Long: 12}

	properties.Property("series shorter than long window+1 always fails with insufficient data", prop.ForAll(
		func(closes []float64) bool {
			if len(closes) > windows.Long {
				closes = closes[:windows.Long]
			}
			_, err := DetectCrossover(seriesFromCloses(closes), windows)
			return errors.Is(err, ErrInsufficientData)
		},
		gen.SliceOf(gen.Float64Range(1, 1000)),
	))

	properties.Property("classification is invariant under positive price scaling", prop.ForAll(
		func(closes []float64, scale float64) bool {
			a, err := DetectCrossover(seriesFromCloses(closes), windows)
			if err != nil {
				return false
			}
			scaled := make([]float64, len(closes))
			for i, c := range closes {
				scaled[i] = c * scale
			}
			b, err := DetectCrossover(seriesFromCloses(scaled), windows)
			if err != nil {
				return false
			}
			return a.State == b.State
		},
		gen.SliceOfN(windows.Long+1, gen.Float64Range(1, 1000)),
		gen.Float64Range(2, 8),
	))

	properties.Property("strictly rising series is never bearish", prop.ForAll(
		func(start, step float64) bool {
			closes := make([]float64, windows.Long+1)
			for i := range closes {
				closes[i] = start + float64(i)*step
			}
			cross, err := DetectCrossover(seriesFromCloses(closes), windows)
			return err == nil && cross.State != model.Bearish
		},
		gen.Float64Range(1, 1000),
		gen.Float64Range(0.01, 10),
	))

	properties.Property("strictly falling series is never bullish", prop.ForAll(
		func(start, step float64) bool {
			closes := make([]float64, windows.Long+1)
			for i := range closes {
				closes[i] = start + float64(len(closes)-i)*step
			}
			cross, err := DetectCrossover(seriesFromCloses(closes), windows)
			return err == nil && cross.State != model.Bullish
		},
		gen.Float64Range(1, 1000),
		gen.Float64Range(0.01, 10),
	))

	properties.Property("detection is deterministic on identical input", prop.ForAll(
		func(closes []float64) bool {
			a, errA := DetectCrossover(seriesFromCloses(closes), windows)
			b, errB := DetectCrossover(seriesFromCloses(closes), windows)
			if errA != nil || errB != nil {
				return errA != nil && errB != nil
			}
			return a == b
		},
		gen.SliceOfN(windows.Long+5, gen.Float64Range(1, 1000)),
	))

	properties.TestingRun(t)
}
