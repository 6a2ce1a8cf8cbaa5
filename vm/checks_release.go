//go:build !aotjs_debug

package vm

const debugChecks = false
