// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package uuid provides a UUID identity provider used for instance and
// message identifiers.
package uuid

import "github.com/gofrs/uuid"

// IdentityProvider specifies an API for generating unique identifiers.
type IdentityProvider interface {
	// ID generates a unique identifier.
	ID() (string, error)
}

var _ IdentityProvider = (*uuidProvider)(nil)

type uuidProvider struct{}

// New instantiates a UUID identity provider.
func New() IdentityProvider {
	return &uuidProvider{}
}

func (up *uuidProvider) ID() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
