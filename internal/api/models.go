package api

// OptimizeRequest is the body of POST /v1/optimize. Zero fields fall back
// to the server configuration.
type OptimizeRequest struct {
	Tickers []string `json:"tickers"`
	// Prices supplies closes inline, oldest first; when set no provider is used
	Prices map[string][]float64 `json:"prices,omitempty"`

	StartDate       string   `json:"start_date,omitempty"`
	EndDate         string   `json:"end_date,omitempty"`
	Simulations     int      `json:"simulations,omitempty"`
	Steps           int      `json:"steps,omitempty"`
	RiskFreeRate    *float64 `json:"risk_free_rate,omitempty"`
	Diversification *float64 `json:"diversification,omitempty"`
	Seed            uint64   `json:"seed,omitempty"`
	Method          string   `json:"method,omitempty"`
	Capital         float64  `json:"capital,omitempty"`
	HoldoutRatio    float64  `json:"holdout_ratio,omitempty"`
	Strict          bool     `json:"strict_convergence,omitempty"`
}

// ErrorResponse is returned for every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}
