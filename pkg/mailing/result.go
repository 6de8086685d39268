package mailing

// Result is the closed outcome of one submission attempt: Success or Failure.
type Result interface {
	isResult()
	OK() bool
}

// Success carries the optional fields the gateway returns on an accepted upload.
type Success struct {
	Reference string
	Message   string
}

// Failure carries the classified reason an attempt did not go through.
type Failure struct {
	Kind    ErrorKind
	Message string
}

func (Success) isResult() {}
func (Failure) isResult() {}

func (Success) OK() bool { return true }
func (Failure) OK() bool { return false }

// ResultFromError converts a pipeline error into a Failure.
// Errors from outside the pipeline are treated as transport failures.
func ResultFromError(err error) Failure {
	kind, ok := KindOf(err)
	if !ok {
		kind = KindTransport
	}
	return Failure{Kind: kind, Message: UserMessage(err)}
}

var (
	_ Result = Success{}
	_ Result = Failure{}
)
