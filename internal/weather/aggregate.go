package weather

import "time"

// AggregateReadings averages provider temperatures into a Snapshot stamped
// with the newest reading time.
func AggregateReadings(city string, readings []ProviderReading) Snapshot {
	if len(readings) == 0 {
		return Snapshot{City: city, Timestamp: time.Now().UTC()}
	}

	var sumTemp float64
	providers := make([]ProviderContribution, 0, len(readings))
	var newestTS time.Time

	for _, r := range readings {
		sumTemp += r.TemperatureC
		if r.Timestamp.After(newestTS) {
			newestTS = r.Timestamp
		}
		providers = append(providers, ProviderContribution{
			ProviderName: r.ProviderName,
			Timestamp:    r.Timestamp,
			TemperatureC: r.TemperatureC,
		})
	}

	if newestTS.IsZero() {
		newestTS = time.Now().UTC()
	}

	return Snapshot{
		City:         city,
		Timestamp:    newestTS.UTC(),
		TemperatureC: sumTemp / float64(len(readings)),
		Providers:    providers,
	}
}
