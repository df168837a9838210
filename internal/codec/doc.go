// Package codec packs structured attribute data into single delimited text
// cells for the bulk import pipeline, and unpacks it again.
//
// # Layers
//
//   - [ValueCodec]: one flat list of strings <-> one delimited field, with
//     CSV-style enclosure and quote doubling.
//   - [Packer]: per-attribute value <-> text, by [InputType] (plain,
//     multiselect, boolean).
//   - [LineCodec]: ordered code=value [Attributes] <-> one cell, two nested
//     ValueCodec levels.
//   - [PathCodec]: category path segments <-> one path string.
//
// # Absence
//
// Encoders return (text, ok). ok == false means "no value" and is distinct
// from an encoded empty string; decoders treat empty text as absent and
// return nil. A list holding one empty string encodes to an enclosed empty
// field so that it survives a round trip.
//
// # Nesting
//
// Encoding is closed under composition: the output of one encoder can be a
// field of another and two decodes recover the original structure, at any
// depth:
//
//	inner, _ := vc.EncodeWith([]string{"Default Category", `Tags "A/B"`}, '/')
//	outer, _ := vc.Encode([]string{inner})
//	vc.DecodeWith(vc.Decode(outer)[0], '/') // [Default Category Tags "A/B"]
//
// All codecs are immutable after construction and safe for concurrent use.
package codec
