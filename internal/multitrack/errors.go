package multitrack

// ErrorKind classifies a rejected parameter write.
type ErrorKind int

const (
	// StartRange: a track start below row 1.
	StartRange ErrorKind = iota
	// StartOrder: track starts not strictly ascending.
	StartOrder
	// EndRange: a track end below row 2.
	EndRange
	// EndOrder: track ends not strictly ascending.
	EndOrder
	// BinRange: a binning factor below 1.
	BinRange
	// BinDivisibility: a binning factor that does not evenly divide its
	// track height.
	BinDivisibility
	// UnknownField: a write dispatched to a parameter handle the
	// configurator does not own.
	UnknownField
)

func (k ErrorKind) String() string {
	switch k {
	case StartRange:
		return "start_range"
	case StartOrder:
		return "start_order"
	case EndRange:
		return "end_range"
	case EndOrder:
		return "end_order"
	case BinRange:
		return "bin_range"
	case BinDivisibility:
		return "bin_divisibility"
	case UnknownField:
		return "unknown_field"
	}
	return "unknown"
}

// ValidationError reports a rejected parameter write. Writes either fully
// apply or fully fail: a returned ValidationError means no stored array
// changed and no notification fired.
type ValidationError struct {
	Kind    ErrorKind
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
