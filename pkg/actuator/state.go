package actuator

// State is the power flag and color of the strip. The zero value is off and black.
type State struct {
	Power bool
	Color RGB
}

// Status classifies the state by exact color match.
func (s State) Status() LEDStatus {
	if !s.Power || s.Color == Black {
		return StatusOff
	}
	switch s.Color {
	case Red:
		return StatusRed
	case Green:
		return StatusGreen
	case Blue:
		return StatusBlue
	default:
		return StatusOnOther
	}
}
