package types

// Service is the contract implemented by action handlers that enforced
// checkpoints and execution completions dispatch to.
type Service interface {
	Name() string
	Methods() Signatures
	Method(name string) (Executable, error)
}
