// Package client implements the punch-clock client runtime.
//
// It wires the local store, the remote gateway, the sync engine and the
// background workers into a single process lifecycle that runs until the
// process receives an interrupt.
package client
