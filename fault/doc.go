// Package fault defines the error taxonomy shared by every paxcol package.
//
// Recoverable faults are marked with one of the sentinel errors and are
// matched with errors.Is:
//
//	if errors.Is(err, fault.ErrOutOfRange) { ... }
//
// Misuse of the API (reading an unsealed column, mutating a sealed one,
// byte-accounting mismatches) is not recoverable. Those paths call Assertf,
// which panics with an assertion failure that IsAssertion recognizes.
package fault
