// Package store persists the links the linking workflow establishes between a
// consent-manager user and a local patient. Discovery reads them to work out
// which care contexts were already disclosed.
package store

import (
	"errors"

	"hipservice/internal/discovery/models"
)

var errMissingLinkReference = errors.New("link reference number is required")

func validate(link models.LinkedAccount) error {
	if link.LinkReferenceNumber == "" {
		return errMissingLinkReference
	}
	return nil
}

func clone(link models.LinkedAccount) models.LinkedAccount {
	link.CareContexts = append([]string{}, link.CareContexts...)
	return link
}
