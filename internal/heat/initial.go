package heat

import (
	"errors"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// ErrUnknownInitialCondition is returned when parsing an unrecognised name.
var ErrUnknownInitialCondition = errors.New("heat: unknown initial condition")

// InitialCondition selects how a new grid is filled.
type InitialCondition int

const (
	// Constant sets every node to 1.
	Constant InitialCondition = iota
	// Sinusoidal sets node i to sin(pi*i/(points-1)).
	Sinusoidal
)

var icNames = map[InitialCondition]string{
	Constant:   "const",
	Sinusoidal: "sin",
}

// InitialConditionNames lists the accepted names in declaration order.
func InitialConditionNames() []string {
	return []string{icNames[Constant], icNames[Sinusoidal]}
}

// ParseInitialCondition maps "const" or "sin" to its InitialCondition.
func ParseInitialCondition(s string) (InitialCondition, error) {
	for ic, name := range icNames {
		if name == s {
			return ic, nil
		}
	}
	return Constant, fmt.Errorf("%w: %q (want one of %v)", ErrUnknownInitialCondition, s, InitialConditionNames())
}

func (ic InitialCondition) String() string {
	if name, ok := icNames[ic]; ok {
		return name
	}
	return fmt.Sprintf("InitialCondition(%d)", int(ic))
}

func (ic InitialCondition) MarshalText() ([]byte, error) {
	name, ok := icNames[ic]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownInitialCondition, int(ic))
	}
	return []byte(name), nil
}

func (ic *InitialCondition) UnmarshalText(text []byte) error {
	v, err := ParseInitialCondition(string(text))
	if err != nil {
		return err
	}
	*ic = v
	return nil
}

func (ic InitialCondition) MarshalYAML() (interface{}, error) {
	b, err := ic.MarshalText()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (ic *InitialCondition) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return ic.UnmarshalText([]byte(s))
}

// fill writes the profile into u. Boundary nodes get profile values too;
// callers overwrite them with SetBoundary before the field is read.
func (ic InitialCondition) fill(u []float64) {
	switch ic {
	case Sinusoidal:
		last := len(u) - 1
		if last == 0 {
			u[0] = 0
			return
		}
		for i := range u {
			u[i] = math.Sin(math.Pi * float64(i) / float64(last))
		}
	default:
		for i := range u {
			u[i] = 1.0
		}
	}
}
