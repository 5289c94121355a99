package uniqueid

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"
)

// Bit layout. Field order from most to least significant bit is timestamp,
// generator-ID, cluster-ID, sequence; changing any of these breaks
// byte-ordering compatibility with IDs already issued.
const (
	SequenceBits    = 12
	ClusterIDBits   = 4
	GeneratorIDBits = 6
	TimestampBits   = 64 - GeneratorIDBits - ClusterIDBits - SequenceBits

	clusterShift   = SequenceBits
	generatorShift = clusterShift + ClusterIDBits
	timestampShift = generatorShift + GeneratorIDBits

	// MaxSequence is the largest sequence value within one millisecond.
	MaxSequence = 1<<SequenceBits - 1
	// MaxClusterID is the exclusive upper bound of cluster-IDs.
	MaxClusterID = 1 << ClusterIDBits
	// MaxGeneratorID is the exclusive upper bound of generator-IDs.
	MaxGeneratorID = 1 << GeneratorIDBits

	timestampMask = 1<<TimestampBits - 1

	// Size is the encoded width in bytes.
	Size = 8
)

// ID is a 64-bit identifier encoded big-endian.
type ID [Size]byte

// Fields is the decoded content of an ID.
type Fields struct {
	Timestamp   int64 `json:"ts_ms"`
	GeneratorID int   `json:"generator_id"`
	ClusterID   int   `json:"cluster_id"`
	Sequence    int   `json:"sequence"`
}

// Encode packs the four fields into an ID. Each field is masked to its
// width; callers keep values in range.
func Encode(timestamp int64, generatorID, clusterID, sequence int) ID {
	v := uint64(timestamp)&timestampMask<<timestampShift |
		uint64(generatorID)&(MaxGeneratorID-1)<<generatorShift |
		uint64(clusterID)&(MaxClusterID-1)<<clusterShift |
		uint64(sequence)&MaxSequence
	var id ID
	binary.BigEndian.PutUint64(id[:], v)
	return id
}

// Decode unpacks an ID into its fields.
func Decode(id ID) Fields {
	v := id.Uint64()
	return Fields{
		Timestamp:   int64(v >> timestampShift),
		GeneratorID: int(v >> generatorShift & (MaxGeneratorID - 1)),
		ClusterID:   int(v >> clusterShift & (MaxClusterID - 1)),
		Sequence:    int(v & MaxSequence),
	}
}

// Uint64 returns the ID as an unsigned integer.
func (i ID) Uint64() uint64 { return binary.BigEndian.Uint64(i[:]) }

// Bytes returns a copy of the raw 8-byte representation.
func (i ID) Bytes() []byte { b := make([]byte, Size); copy(b, i[:]); return b }

// String returns 16 lowercase hex characters.
func (i ID) String() string { return hex.EncodeToString(i[:]) }

// Compare returns -1, 0, 1 based on byte-wise comparison.
func (i ID) Compare(other ID) int { return bytes.Compare(i[:], other[:]) }

// Time returns the embedded timestamp.
func (i ID) Time() time.Time { return time.UnixMilli(Decode(i).Timestamp) }

// FromBytes converts an 8-byte slice into an ID.
func FromBytes(b []byte) (ID, error) {
	var id ID
	if len(b) != Size {
		return id, fmt.Errorf("uniqueid: invalid id length %d, want %d", len(b), Size)
	}
	copy(id[:], b)
	return id, nil
}

// ParseHex parses the output of ID.String.
func ParseHex(s string) (ID, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return ID{}, fmt.Errorf("uniqueid: invalid hex id %q: %w", s, err)
	}
	return FromBytes(b)
}
