package dataprocessing

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// Window sizes for the derived views.
const (
	shortMAWindow   = 7
	longMAWindow    = 30
	candleWindow    = 30
	sampleSeriesLen = 31
	sampleBasePrice = 45000
)

// Noise bands for the synthetic prediction signal. These are presentation
// choices that keep the displayed numbers plausible; they must be
// preserved for compatibility even if a real model is substituted later.
const (
	seriesNoiseVolatility   = 0.25 // per-point predicted = price * (1 ± 0.125)
	estimateNoiseVolatility = 0.15 // point estimate = actual * (1 ± 0.075)
	accuracyFloor           = 75
	accuracySpread          = 12 // accuracy in [75, 87)
	confidenceSpread        = 5  // confidence = round(accuracy + [0, 5))
)

// Deriver computes the chart views and point estimate from a canonical
// series. The random source is injected so tests can seed it; draws are
// serialized by the mutex, so one Deriver may serve concurrent requests.
type Deriver struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// float64 draws the next value from the shared source under the lock.
func (d *Deriver) float64() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rng.Float64()
}

// NewDeriver returns a Deriver backed by the given source, or a
// time-seeded one when rng is nil.
func NewDeriver(rng *rand.Rand) *Deriver {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Deriver{rng: rng}
}

// Derive builds the full bundle from a non-empty canonical series. All
// views are computed over the series in its input order; nothing is
// re-sorted by timestamp.
func (d *Deriver) Derive(series []CanonicalPoint) *DerivedBundle {
	prices := make([]float64, len(series))
	for i, p := range series {
		prices[i] = p.Price
	}

	bundle := &DerivedBundle{
		PriceData:         make([]PricePoint, len(series)),
		ActualVsPredicted: make([]ActualPredictedPoint, len(series)),
		MovingAverageData: make([]MovingAveragePoint, len(series)),
	}

	for i, p := range series {
		bundle.PriceData[i] = PricePoint{Date: p.Date, Price: p.Price}

		noise := (d.float64() - 0.5) * seriesNoiseVolatility
		bundle.ActualVsPredicted[i] = ActualPredictedPoint{
			Date:      p.Date,
			Actual:    p.Price,
			Predicted: p.Price * (1 + noise),
		}

		bundle.MovingAverageData[i] = MovingAveragePoint{
			Date:  p.Date,
			Price: p.Price,
			MA7:   trailingAverage(prices, shortMAWindow, i),
			MA30:  trailingAverage(prices, longMAWindow, i),
		}
	}

	start := len(series) - candleWindow
	if start < 0 {
		start = 0
	}
	bundle.CandlestickData = make([]Candle, 0, len(series)-start)
	for _, p := range series[start:] {
		bundle.CandlestickData = append(bundle.CandlestickData, Candle{
			Date:  p.Date,
			Open:  p.Open,
			High:  p.High,
			Low:   p.Low,
			Close: p.Close,
		})
	}

	latest := prices[len(prices)-1]
	accuracy := accuracyFloor + d.float64()*accuracySpread
	bundle.ActualPrice = latest
	bundle.PredictedPrice = latest * (1 + (d.float64()-0.5)*estimateNoiseVolatility)
	bundle.Accuracy = accuracy
	bundle.Confidence = int(math.Round(accuracy + d.float64()*confidenceSpread))

	return bundle
}

// trailingAverage is the mean of prices[max(0, i-window+1) .. i]. The
// window shrinks at the start of the series; there is no padding.
func trailingAverage(prices []float64, window, i int) float64 {
	start := i - window + 1
	if start < 0 {
		start = 0
	}
	sum := 0.0
	for _, v := range prices[start : i+1] {
		sum += v
	}
	return sum / float64(i+1-start)
}

// SampleBundle generates the synthetic 31-day starter dataset shown before
// the first upload. Values are made up but shaped like real market data.
func (d *Deriver) SampleBundle() *DerivedBundle {
	now := time.Now()
	labels := make([]string, sampleSeriesLen)
	prices := make([]float64, sampleSeriesLen)
	for i := 0; i < sampleSeriesLen; i++ {
		day := now.AddDate(0, 0, i-sampleSeriesLen+1)
		labels[i] = day.Format("Jan 2")
		trend := math.Sin(float64(i)/5) * 2000
		jitter := (d.float64() - 0.5) * 3000
		prices[i] = math.Round(sampleBasePrice + trend + jitter + float64(i)*100)
	}

	bundle := &DerivedBundle{
		PriceData:         make([]PricePoint, sampleSeriesLen),
		ActualVsPredicted: make([]ActualPredictedPoint, sampleSeriesLen),
		MovingAverageData: make([]MovingAveragePoint, sampleSeriesLen),
	}
	for i := 0; i < sampleSeriesLen; i++ {
		bundle.PriceData[i] = PricePoint{Date: labels[i], Price: prices[i]}
		bundle.ActualVsPredicted[i] = ActualPredictedPoint{
			Date:      labels[i],
			Actual:    prices[i],
			Predicted: math.Round(prices[i] + (d.float64()-0.5)*1500),
		}
		bundle.MovingAverageData[i] = MovingAveragePoint{
			Date:  labels[i],
			Price: prices[i],
			MA7:   math.Round(trailingAverage(prices, shortMAWindow, i)),
			MA30:  math.Round(trailingAverage(prices, longMAWindow, i)),
		}
	}

	// Synthetic candles over the last two weeks.
	for i := sampleSeriesLen - 14; i < sampleSeriesLen; i++ {
		base := prices[i]
		volatility := d.float64() * 2000
		open := base + (d.float64()-0.5)*1000
		close := base + (d.float64()-0.5)*1000
		bundle.CandlestickData = append(bundle.CandlestickData, Candle{
			Date:  labels[i],
			Open:  math.Round(open),
			Close: math.Round(close),
			High:  math.Round(math.Max(open, close) + volatility*0.5),
			Low:   math.Round(math.Min(open, close) - volatility*0.5),
		})
	}

	latest := prices[sampleSeriesLen-1]
	bundle.ActualPrice = latest
	bundle.PredictedPrice = latest + math.Round((d.float64()-0.3)*2000)
	bundle.Confidence = 82
	bundle.Accuracy = 85
	return bundle
}
