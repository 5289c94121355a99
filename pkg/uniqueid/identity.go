package uniqueid

import "strconv"

// Identity is the (generator-ID, cluster-ID) pair owned by one generator.
type Identity struct {
	GeneratorID int
	ClusterID   int
}

// NewIdentity validates both IDs against their bounds.
func NewIdentity(generatorID, clusterID int) (Identity, error) {
	if err := assertWithinBounds("generator-ID", MaxGeneratorID, generatorID); err != nil {
		return Identity{}, err
	}
	if err := assertWithinBounds("cluster-ID", MaxClusterID, clusterID); err != nil {
		return Identity{}, err
	}
	return Identity{GeneratorID: generatorID, ClusterID: clusterID}, nil
}

// String returns "generator/cluster".
func (i Identity) String() string {
	return strconv.Itoa(i.GeneratorID) + "/" + strconv.Itoa(i.ClusterID)
}
