// Package vm implements the aotjs runtime that ahead-of-time compiled
// JavaScript links against.
//
// This package contains:
//   - NaN-boxed value representation (Val)
//   - Handle-table heap and stop-the-world mark-sweep collector
//   - Shadow stack rooting: Local, Scope, EscapeScope, ArgList
//   - Prototype-delegating objects keyed by String or Symbol
//   - Cells, closures and call frames
//
// An Engine owns one heap and one shadow stack and must only be used from a
// single goroutine.
package vm
