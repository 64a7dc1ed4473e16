// Package reqcheck compares Python requirement listings by the set of
// top-level package names they declare. Version constraints, extras,
// environment markers and installer options are ignored; two listings are
// considered consistent exactly when their canonical name sets are equal.
package reqcheck
