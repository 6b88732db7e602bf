// Package logging centralizes the package-level loggers used across the
// node. Every package that needs to log obtains a *logrus.Entry tagged with
// its own "prefix" field, mirroring the convention prysm's beacon-chain
// services use for their own package loggers.
package logging

import "github.com/sirupsen/logrus"

// New returns a logger pre-tagged with prefix, meant to be stored in a
// package-level var, e.g. `var log = logging.New("chainmanager")`.
func New(prefix string) *logrus.Entry {
	return logrus.WithField("prefix", prefix)
}
