package postcard

// Status is the coarse outcome of a pipeline call, for callers that only
// need ok or not. Use errors.GetCode for the failure kind.
type Status int

const (
	StatusOK Status = iota
	StatusError
)

func (s Status) String() string {
	if s == StatusOK {
		return "ok"
	}
	return "error"
}

// StatusOf maps an error returned by the pipeline to a Status.
func StatusOf(err error) Status {
	if err != nil {
		return StatusError
	}
	return StatusOK
}
