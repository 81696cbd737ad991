package pnp

import "strconv"

// Status is a hub response status code used for command responses and
// writable-property acknowledgments.
type Status uint16

const (
	// StatusOK acknowledges an applied writable property.
	StatusOK Status = 200

	// StatusAccepted is returned for a command that was executed.
	StatusAccepted Status = 202

	// StatusBadRequest rejects a writable property with an unusable value.
	StatusBadRequest Status = 400

	// StatusRejected is returned for unknown commands and failed preconditions.
	StatusRejected Status = 404
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusAccepted:
		return "ACCEPTED"
	case StatusBadRequest:
		return "BAD_REQUEST"
	case StatusRejected:
		return "REJECTED"
	default:
		return "STATUS_" + strconv.Itoa(int(s))
	}
}
