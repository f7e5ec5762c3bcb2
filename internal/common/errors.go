// Package common defines shared sentinel errors used across the bootstrap
// steps. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Infrastructure-missing errors. Both are fatal: the host cannot be
	// provisioned without a package manager or a reachable database engine.
	ErrNoPackageManager = errors.New("no supported package manager found")
	ErrEngineNotReady   = errors.New("database engine is not ready")

	// ErrAlreadyExists marks a creation that lost to an existing object;
	// idempotent steps treat it as satisfied.
	ErrAlreadyExists = errors.New("already exists")
)
