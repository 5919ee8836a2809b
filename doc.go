// Package keysync finds the key paths a candidate document lacks compared to a
// template document.
//
// - An ordered, closed Value model (Scalar, Sequence, *Mapping) with an Absent sentinel
// - A pure structural differ (Diff/DiffFrom/DiffDetailed/Paths) that never fails
// - Streaming JSON decoding via Source with duplicate-key/depth/size enforcement
// - A stable error model via Issues (dotted path, JSON Pointer, code, message)
//
// Design policy:
// - Keep only public APIs in the root package; put detailed implementations under internal/.
// - Format decoders live under source/, directory handling under docset/, runs under runner/,
//   rendering under report/, and the CLI under cmd/keysync.
// - Extra candidate keys and value types are never reported; only template paths are.
//
// Typical usage:
//
//	tmpl, err := keysync.DecodeJSON(enData, keysync.LoadOpt{})
//	cand, err := keysync.DecodeJSON(frData, keysync.LoadOpt{})
//	for _, p := range keysync.Diff(tmpl, cand) {
//		fmt.Println(p) // e.g. menu.file.open, list[2]
//	}
package keysync
