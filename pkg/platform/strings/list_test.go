package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		sep  string
		want []string
	}{
		{name: "empty", raw: "", sep: ",", want: nil},
		{name: "blank", raw: "   ", sep: ",", want: nil},
		{name: "single", raw: "broker:9092", sep: ",", want: []string{"broker:9092"}},
		{name: "trims and skips empties", raw: " a:9092, ,b:9092,, ", sep: ",", want: []string{"a:9092", "b:9092"}},
		{name: "keeps first occurrence", raw: "b,a,b,a", sep: ",", want: []string{"b", "a"}},
		{name: "only separators", raw: ",,,", sep: ",", want: nil},
		{name: "other separator", raw: "x; y", sep: ";", want: []string{"x", "y"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitList(tt.raw, tt.sep))
		})
	}
}

func TestDedupeNil(t *testing.T) {
	assert.Nil(t, Dedupe(nil))
	assert.Nil(t, Dedupe([]string{" ", ""}))
}
