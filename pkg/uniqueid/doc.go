// Package uniqueid generates compact, lexicographically sortable 64-bit
// identifiers.
//
// # Format
//
// An ID is 8 bytes big-endian:
//
//	63                                 22 21      16 15   12 11          0
//	+------------------------------------+----------+-------+-------------+
//	|     timestamp (ms, 42 bits)        | gen (6)  | cl (4)| seq (12)    |
//	+------------------------------------+----------+-------+-------------+
//
// Byte-wise comparison of two IDs matches the lexicographic order of
// (timestamp, generator-ID, cluster-ID, sequence). IDs are unique as long
// as every concurrently running generator uses its own
// (generator-ID, cluster-ID) pair.
//
// # Monotonicity
//
// A Generator emits strictly increasing IDs:
//   - Within one millisecond the sequence increments. When it would
//     overflow, the generator waits for the clock to reach the next
//     millisecond, for at most the WithMaxStall duration if one is set.
//   - If the clock moves backwards, Generate fails with a
//     *ClockRegressionError and no ID is emitted. Callers decide whether
//     and when to retry.
//
// # Usage
//
//	reg := uniqueid.NewRegistry()
//	g, err := reg.GeneratorFor(3, 1)
//	if err != nil { /* out of bounds */ }
//	ids := uniqueid.Decorate(g) // serves IDs from a refilled buffer
//	id, err := ids.Generate()
//	fmt.Println(id, uniqueid.Decode(id))
package uniqueid
