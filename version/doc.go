// Package version reports build information for the seqq binary. Values
// are injected with -ldflags and fall back to the module's embedded VCS
// settings.
//
//	go build -ldflags "-X github.com/kbukum/lazyseq/version.Version=v0.3.0" ./cmd/seqq
package version
