package dataprocessing

// RawRecord maps a source column name (case preserved, as it appeared in
// the header) to the cell value for a single data row. Records are
// ephemeral; they are discarded once normalized.
type RawRecord map[string]string

// Table is the ordered result of tokenizing an upload. Columns keeps the
// header order, which the schema inferencer relies on for its
// first-match-wins tie-break.
type Table struct {
	Columns []string
	Records []RawRecord
}

// Schema identifies which source columns hold the timestamp and the
// primary price.
type Schema struct {
	DateColumn  string
	PriceColumn string
}

// CanonicalPoint is a normalized, timestamped OHLC+price record derived
// from one input row. Date is a display label for chart axes; the
// authoritative representation is TimestampMillis.
//
// When the source lacks Open/High/Low/Close columns, all four fall back to
// Price, so low <= min(open, close) <= max(open, close) <= high is not
// guaranteed in that case.
type CanonicalPoint struct {
	Date            string  `json:"date"`
	TimestampMillis int64   `json:"timestamp"`
	Price           float64 `json:"price"`
	Open            float64 `json:"open"`
	High            float64 `json:"high"`
	Low             float64 `json:"low"`
	Close           float64 `json:"close"`
}

// PricePoint is one entry of the flat price series.
type PricePoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// ActualPredictedPoint pairs the observed price with a synthetic
// "predicted" value for the same label.
type ActualPredictedPoint struct {
	Date      string  `json:"date"`
	Actual    float64 `json:"actual"`
	Predicted float64 `json:"predicted"`
}

// MovingAveragePoint carries the price plus the trailing simple moving
// averages at window sizes 7 and 30.
type MovingAveragePoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
	MA7   float64 `json:"ma7"`
	MA30  float64 `json:"ma30"`
}

// Candle is one candlestick entry for the recent-window chart.
type Candle struct {
	Date  string  `json:"date"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// PointEstimate is the single forward price estimate shown on the
// prediction card and persisted per user.
type PointEstimate struct {
	PredictedPrice float64 `json:"predictedPrice"`
	ActualPrice    float64 `json:"actualPrice"`
	Confidence     int     `json:"confidence"`
	Accuracy       float64 `json:"accuracy"`
}

// DerivedBundle is the sole pipeline output handed to the presentation
// layer. Field names match what the dashboard frontend consumes. Nothing
// in the bundle is mutated after construction.
type DerivedBundle struct {
	PriceData           []PricePoint           `json:"priceData"`
	ActualVsPredicted   []ActualPredictedPoint `json:"actualVsPredictedData"`
	MovingAverageData   []MovingAveragePoint   `json:"movingAverageData"`
	CandlestickData     []Candle               `json:"candlestickData"`
	PredictedPrice      float64                `json:"predictedPrice"`
	ActualPrice         float64                `json:"actualPrice"`
	Confidence          int                    `json:"confidence"`
	Accuracy            float64                `json:"accuracy"`
}

// Estimate returns the point estimate embedded in the bundle.
func (b *DerivedBundle) Estimate() PointEstimate {
	return PointEstimate{
		PredictedPrice: b.PredictedPrice,
		ActualPrice:    b.ActualPrice,
		Confidence:     b.Confidence,
		Accuracy:       b.Accuracy,
	}
}
