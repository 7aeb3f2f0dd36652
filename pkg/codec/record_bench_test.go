//go:build bench
// +build bench

package codec_test

import (
	"strings"
	"testing"

	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/codec"
)

func BenchmarkRecordCodec_Encode(b *testing.B) {
	c := codec.NewRecordCodec()

	benchmarks := []struct {
		name   string
		record codec.Record
	}{
		{
			name:   "far",
			record: codec.Record{Type: 0, Subtype: 10, Fields: []codec.Value{codec.U1(2), codec.U1(4)}},
		},
		{
			name: "ptr",
			record: codec.Record{Type: 15, Subtype: 10, Fields: []codec.Value{
				codec.U4(1000), codec.U1(1), codec.U1(1), codec.B1(0), codec.B1(0), codec.R4(1.25),
				codec.Cn("VDD leakage"), codec.Cn(""), codec.B1(0x0E), codec.I1(0), codec.I1(0),
				codec.I1(0), codec.R4(0), codec.R4(5), codec.Cn("uA"),
			}},
		},
		{
			name: "mir",
			record: codec.Record{Type: 1, Subtype: 10, Fields: func() []codec.Value {
				fields := []codec.Value{codec.U4(0), codec.U4(0), codec.U1(1)}
				for i := 0; i < 30; i++ {
					fields = append(fields, codec.Cn(strings.Repeat("m", 40)))
				}
				return fields
			}()},
		},
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := c.Encode(bm.record); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
