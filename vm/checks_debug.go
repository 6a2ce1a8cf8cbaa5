//go:build aotjs_debug

package vm

// debugChecks enables the assertions guarding unchecked accessors and
// shadow stack slot access.
const debugChecks = true
