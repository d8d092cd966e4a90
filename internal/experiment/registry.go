package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/bellsim/internal/metrics"
)

type Registry struct {
	protocols map[string]func(map[string]float64) (Protocol, error)
}

func NewRegistry() *Registry {
	r := &Registry{
		protocols: make(map[string]func(map[string]float64) (Protocol, error)),
	}

	r.protocols["spooky"] = func(params map[string]float64) (Protocol, error) {
		return NewSpooky(), nil
	}
	r.protocols["hidden"] = func(params map[string]float64) (Protocol, error) {
		mix, ok := params["mix"]
		if !ok {
			mix = 0.5
		}
		return NewHidden(mix)
	}

	return r
}

func (r *Registry) GetProtocol(name string, params map[string]float64) (Protocol, error) {
	fn, ok := r.protocols[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProtocol, name)
	}
	return fn(params)
}

func (r *Registry) ListProtocols() []string {
	names := make([]string, 0, len(r.protocols))
	for name := range r.protocols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics() []Metric {
	return []Metric{
		metrics.NewDifferenceRate(),
		metrics.NewStandardError(),
		metrics.NewSpinBalance(),
	}
}
