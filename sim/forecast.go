// Arrival-load prediction. The driver consults a Predictor at each stats
// tick to log projected congestion; a misbehaving predictor degrades to the
// configured rate table instead of halting the run.

package sim

import "github.com/sirupsen/logrus"

// Predictor estimates near-term arrival load.
type Predictor interface {
	// Predict returns the expected arrivals per hour at the given tick.
	Predict(tick int64) (float64, error)

	// Forecast returns hourly expected arrivals for the given horizon
	// starting at tick.
	Forecast(tick int64, hours int) ([]float64, error)
}

// RatePredictor reads the configured arrival rate table directly. It is the
// default Predictor and the fallback when a custom one fails.
type RatePredictor struct {
	Arrivals ArrivalConfig
}

func (p *RatePredictor) Predict(tick int64) (float64, error) {
	rate := p.Arrivals.HourlyRates[TickHourOfDay(tick)]
	return rate * p.Arrivals.DayOfWeekMultipliers[TickDayOfWeek(tick)], nil
}

func (p *RatePredictor) Forecast(tick int64, hours int) ([]float64, error) {
	out := make([]float64, hours)
	for i := range out {
		out[i], _ = p.Predict(tick + int64(i)*60)
	}
	return out, nil
}

// predictOrFallback asks the primary predictor and degrades to the fallback
// on error. Prediction failures never stop the simulation.
func predictOrFallback(primary, fallback Predictor, tick int64) float64 {
	rate, err := primary.Predict(tick)
	if err == nil {
		return rate
	}
	logrus.Warnf("predictor failed at tick %d: %v, using rate table", tick, err)
	rate, _ = fallback.Predict(tick)
	return rate
}
