package rowgroup

import (
	"math/rand"
	"testing"

	"github.com/hupe1980/paxcol/column"
)

func BenchmarkBuffer(b *testing.B) {
	for _, format := range []column.Format{column.FormatORC, column.FormatVec} {
		b.Run(format.String(), func(b *testing.B) {
			g := randomGroup(b, rand.New(rand.NewSource(7)), format, false)
			if _, err := g.Measure(nil, nil); err != nil {
				b.Fatal(err)
			}
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := g.Buffer(nil, nil); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
