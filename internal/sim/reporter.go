package sim

import (
	"fmt"
	"io"
)

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Sample) error

func (f ReporterFunc) Emit(s Sample) error { return f(s) }

// WriterReporter prints the "Time Energy" header followed by one
// "time energy" line per sample.
type WriterReporter struct {
	w         io.Writer
	precision int
}

// NewWriterReporter formats reals with 6 significant digits.
func NewWriterReporter(w io.Writer) *WriterReporter {
	return &WriterReporter{w: w, precision: 6}
}

// SetPrecision sets the significant digits; -1 prints the shortest exact form.
func (r *WriterReporter) SetPrecision(p int) { r.precision = p }

func (r *WriterReporter) Start(Params) error {
	_, err := io.WriteString(r.w, "Time Energy\n")
	return err
}

func (r *WriterReporter) Emit(s Sample) error {
	_, err := fmt.Fprintf(r.w, "%s %s\n", FormatReal(s.Time, r.precision), FormatReal(s.Energy, r.precision))
	return err
}

// Recorder keeps every sample in memory.
type Recorder struct {
	Samples []Sample
}

func NewRecorder() *Recorder { return &Recorder{Samples: make([]Sample, 0)} }

func (r *Recorder) Start(Params) error {
	r.Samples = r.Samples[:0]
	return nil
}

func (r *Recorder) Emit(s Sample) error {
	r.Samples = append(r.Samples, s)
	return nil
}

// Energies returns the recorded energy values in order.
func (r *Recorder) Energies() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.Energy
	}
	return out
}

// MultiReporter forwards to every reporter in order and stops at the first
// error.
type MultiReporter []Reporter

func (m MultiReporter) Start(p Params) error {
	for _, r := range m {
		if st, ok := r.(Starter); ok {
			if err := st.Start(p); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m MultiReporter) Emit(s Sample) error {
	for _, r := range m {
		if err := r.Emit(s); err != nil {
			return err
		}
	}
	return nil
}
