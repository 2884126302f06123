//go:build !profile

package profiler

// No-op scopes when built without -tags profile.

func Init(capacity int) {}

func Start(name string) func() { return func() {} }

func Dump(path string) error { return nil }

func Enabled() bool { return false }
