package storage

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/san-kum/heatsim/internal/sim"
)

// Real is a float64 that survives JSON when it is not finite. A diverged
// run reports NaN or ±Inf energies; those are written as the strings
// "NaN", "+Inf" and "-Inf", finite values as plain numbers.
type Real float64

func (r Real) MarshalJSON() ([]byte, error) {
	v := float64(r)
	switch {
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	case math.IsInf(v, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Inf"`), nil
	}
	return []byte(strconv.FormatFloat(v, 'g', -1, 64)), nil
}

func (r *Real) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || (!math.IsNaN(v) && !math.IsInf(v, 0)) {
			return fmt.Errorf("storage: invalid real %q", s)
		}
		*r = Real(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = Real(v)
	return nil
}

func realMap(m map[string]float64) map[string]Real {
	out := make(map[string]Real, len(m))
	for k, v := range m {
		out[k] = Real(v)
	}
	return out
}

// SampleRecord is the JSON form of a sim.Sample.
type SampleRecord struct {
	Step   int  `json:"step"`
	Time   Real `json:"time"`
	Energy Real `json:"energy"`
}

func sampleRecords(samples []sim.Sample) []SampleRecord {
	out := make([]SampleRecord, len(samples))
	for i, s := range samples {
		out[i] = SampleRecord{Step: s.Step, Time: Real(s.Time), Energy: Real(s.Energy)}
	}
	return out
}
