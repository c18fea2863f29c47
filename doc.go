// Package ocidrv is an object-oriented driver on top of Oracle's native
// Call Interface. It hides handle proliferation, loose typing and
// multi-step protocols (prepare/bind/execute/fetch, LOB piecewise I/O,
// object/collection/ref navigation, direct-path loading, advanced
// queuing, change notification) behind a small set of well-behaved Go
// types with explicit lifetimes and state machines.
//
// The package does not itself re-implement OCI: it is built on top of
// github.com/godror/godror, the cgo binding to Oracle's ODPI-C layer,
// and adds the guarantees (handle lifetime tags, statement state bitset,
// pool accounting, returning-into position assignment, piecewise LONG
// buffering, direct-path state machine, AQ message lifecycle, DCN event
// fan-out) that the raw driver does not enforce on its own. Three leaf
// concerns live in their own subpackages because they have no
// dependency on Connection/Statement: symbols (runtime/feature
// detection), memstat (allocation accounting) and strtext (narrow/wide
// string conversion). Everything else stays in this flat package,
// matching the layout of the repo this driver's structure is modeled
// on, because the object model's pieces are too tightly coupled to
// split further without import cycles.
package ocidrv
