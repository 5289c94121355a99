package idsvc

import (
	"errors"

	"github.com/rzbill/uniqueid/pkg/uniqueid"
)

// ErrInvalidArgument marks request errors that are the caller's fault.
// Identity bounds errors are reported as uniqueid.ErrParameterOutOfBounds.
var ErrInvalidArgument = errors.New("invalid argument")

// Selector picks the identity a request generates under. The zero value
// selects the node's configured identity.
type Selector struct {
	Explicit    bool
	GeneratorID int
	ClusterID   int
}

// DefaultSelector selects the configured identity.
func DefaultSelector() Selector { return Selector{} }

// For selects an explicit (generator-ID, cluster-ID) pair.
func For(generatorID, clusterID int) Selector {
	return Selector{Explicit: true, GeneratorID: generatorID, ClusterID: clusterID}
}

// DecodedID is a decoded ID as returned to transports.
type DecodedID struct {
	ID uniqueid.ID
	uniqueid.Fields
}
