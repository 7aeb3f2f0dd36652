package codec_test

import (
	"fmt"
	"log"

	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/codec"
)

// ExampleRecordCodec_Encode encodes a File Attributes Record
func ExampleRecordCodec_Encode() {
	c := codec.NewRecordCodec()

	encoded, err := c.Encode(codec.Record{
		Type:    0,
		Subtype: 10,
		Fields:  []codec.Value{codec.U1(2), codec.U1(4)},
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Encoded %d bytes\n", len(encoded))
	fmt.Printf("% x\n", encoded)

	// Output:
	// Encoded 6 bytes
	// 02 00 00 0a 02 04
}

// ExampleRecordCodec_Encode_optionalTail shows trailing absent fields being dropped
func ExampleRecordCodec_Encode_optionalTail() {
	c := codec.NewRecordCodec()

	encoded, err := c.Encode(codec.Record{
		Type:    1,
		Subtype: 20,
		Fields: []codec.Value{
			codec.U4(0),
			codec.C1('P'),
			codec.Absent(codec.TypeCn),
			codec.Absent(codec.TypeCn),
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("% x\n", encoded)

	// Output:
	// 05 00 01 14 00 00 00 00 50
}
