// Package codec provides field and record serialization for STDF v4 output.
//
// The codec package implements the binary layout shared by every STDF v4
// record: a fixed little-endian header followed by a payload of typed fields
// encoded in declaration order. It knows nothing about which record carries
// which fields; that catalogue lives in package stdf.
//
// # Record Format
//
// Records are serialized in a binary format with the following structure:
//
//	[REC_LEN(2)][REC_TYP(1)][REC_SUB(1)][Payload]
//
// Fields:
//   - REC_LEN: 16-bit unsigned payload length in bytes, header excluded (little-endian)
//   - REC_TYP: record type code
//   - REC_SUB: record subtype code
//   - Payload: the encoded fields
//
// The total record size is: 4 bytes (header) + REC_LEN
//
// # Field Types
//
// Numeric fields are fixed-width little-endian values: U1/U2/U4 unsigned,
// I1/I2/I4 two's complement, R4/R8 IEEE-754, B1 a raw bit field. C1 is a
// single byte. Cn and Bn carry a one-byte length prefix and at most 255 bytes
// of content. The kx array types encode their elements back to back; the
// element count is a separate field of the enclosing record.
//
// Character data is copied byte for byte with no transcoding. Callers that
// start from Go strings are responsible for producing single-byte text.
//
// # Optional Fields
//
// Any field may be Absent. A trailing run of absent fields is dropped from the
// payload entirely, which is how STDF readers recognise missing optional data.
// An absent field followed by a present one is written as the type's missing
// value (zero, a space for C1, an empty length prefix for Cn/Bn).
//
// # Usage
//
//	c := codec.NewRecordCodec()
//
//	encoded, err := c.Encode(codec.Record{
//	    Type:    0,
//	    Subtype: 10,
//	    Fields:  []codec.Value{codec.U1(2), codec.U1(4)},
//	})
//	if err != nil {
//	    return err
//	}
//
// # Error Handling
//
// Encode fails with ErrFieldWidthOverflow when a string exceeds its length
// prefix or the payload exceeds REC_LEN. Errors are wrapped in a FieldError
// naming the record and field position. Encode never returns partial output.
//
// # Thread Safety
//
// RecordCodec instances are safe for concurrent use. Values are immutable
// after construction.
package codec
