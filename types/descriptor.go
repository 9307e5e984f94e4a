package types

// TestKind identifies the function variant carried by a test descriptor.
// Only synchronous tests exist today; the tag leaves room for asynchronous
// (multi-step, callback-driven) variants without breaking existing
// descriptors.
type TestKind string

// String implements the Stringer interface for TestKind
func (k TestKind) String() string {
	return string(k)
}

const (
	// TestKindSync is a zero-argument function run to completion in one
	// dispatcher step. The function must not block or suspend.
	TestKindSync TestKind = "sync"
)

// SyncTestFunc is the synchronous test function variant.
type SyncTestFunc func() TestResult

// TestDescriptor is an immutable record naming a test and its invocable
// function. Descriptors are created once, at registration time, and never
// mutated; they live for the process lifetime.
type TestDescriptor struct {
	Name string
	Kind TestKind
	Sync SyncTestFunc
}

// SyncTest builds a descriptor for a synchronous test function.
func SyncTest(name string, fn SyncTestFunc) TestDescriptor {
	return TestDescriptor{
		Name: name,
		Kind: TestKindSync,
		Sync: fn,
	}
}
