package indicators

// Kind tags an indicator result so payloads are self-describing.
type Kind string

const (
	KindRSI        Kind = "rsi"
	KindMomentum   Kind = "momentum"
	KindMACD       Kind = "macd"
	KindBollinger  Kind = "bollinger"
	KindVolatility Kind = "volatility"
)

// RSIResult is the Relative Strength Index for the latest bar.
type RSIResult struct {
	Kind   Kind    `json:"kind"`
	Ticker string  `json:"ticker"`
	Period int     `json:"period"`
	RSI    float64 `json:"rsi"`
}

// MomentumResult is the percent price change over Period bars.
type MomentumResult struct {
	Kind     Kind    `json:"kind"`
	Ticker   string  `json:"ticker"`
	Period   int     `json:"period"`
	Momentum float64 `json:"momentum"`
}

// MACDResult carries the MACD line, signal line and histogram for the
// latest bar, along with the EMA periods that produced them.
type MACDResult struct {
	Kind      Kind    `json:"kind"`
	Ticker    string  `json:"ticker"`
	Fast      int     `json:"fast"`
	Slow      int     `json:"slow"`
	Signal    int     `json:"signal"`
	Line      float64 `json:"line"`
	SignalVal float64 `json:"signal_line"`
	Histogram float64 `json:"histogram"`
}

// BollingerResult carries the three bands plus where the latest close sits
// within them (0 = lower band, 1 = upper band).
type BollingerResult struct {
	Kind       Kind    `json:"kind"`
	Ticker     string  `json:"ticker"`
	Period     int     `json:"period"`
	Multiplier float64 `json:"multiplier"`
	Upper      float64 `json:"upper"`
	Middle     float64 `json:"middle"`
	Lower      float64 `json:"lower"`
	Position   float64 `json:"position"`
}

// VolatilityResult is the annualized volatility of daily log returns,
// expressed in percent. Window 0 means the whole series.
type VolatilityResult struct {
	Kind       Kind    `json:"kind"`
	Ticker     string  `json:"ticker"`
	Window     int     `json:"window,omitempty"`
	Volatility float64 `json:"volatility"`
}
