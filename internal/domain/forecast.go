package domain

// ForecastFallbackMessage is shown instead of a projection when history is too short.
const ForecastFallbackMessage = "Not enough expense history to forecast spending yet."

// DailyPrediction is the projected spend for one day after today.
type DailyPrediction struct {
	Day    int     `json:"day"`
	Amount float64 `json:"amount"`
}

// ForecastResult is a trend projection. Amounts are raw regression output and
// may be negative when spending is trending down.
type ForecastResult struct {
	TotalPredicted float64           `json:"total_predicted"`
	DailyBreakdown []DailyPrediction `json:"daily_breakdown"`
}

// ForecastResponse is what the API returns when a projection is not possible.
type ForecastResponse struct {
	Forecast *ForecastResult `json:"forecast"`
	Message  string          `json:"message,omitempty"`
}
