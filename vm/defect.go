package vm

import "fmt"

// Defect describes a broken runtime invariant in trusted generated code:
// a wrong-variant accessor, an out-of-order shadow stack release, a call
// through a non-function, a stale handle. Defects are raised with panic and
// are not meant to be recovered from; deferred Scope.Close calls still run
// while one propagates.
type Defect struct {
	Op  string
	Msg string
}

func (d *Defect) Error() string {
	return "aotjs: " + d.Op + ": " + d.Msg
}

func fatal(op string, format string, args ...any) {
	panic(&Defect{Op: op, Msg: fmt.Sprintf(format, args...)})
}
