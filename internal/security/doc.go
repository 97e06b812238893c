// Package security derives a configuration posture report for the engine:
// the effective hashing and token parameters plus the findings an operator
// should act on before going to production.
package security
