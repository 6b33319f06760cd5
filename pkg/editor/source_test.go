package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReduceSource(t *testing.T) {
	tests := []struct {
		name  string
		state ActiveSource
		event sourceEvent
		want  ActiveSource
	}{
		{
			name:  "toggle from structured to text",
			state: ActiveSource{Mode: ViewStructured, Buffer: "doc"},
			event: toggleView{},
			want:  ActiveSource{Mode: ViewText, Buffer: "doc"},
		},
		{
			name:  "toggle back keeps dirty buffer",
			state: ActiveSource{Mode: ViewText, Buffer: "half-typed", Dirty: true},
			event: toggleView{},
			want:  ActiveSource{Mode: ViewStructured, Buffer: "half-typed", Dirty: true},
		},
		{
			name:  "edit marks dirty",
			state: ActiveSource{Mode: ViewText, Buffer: "doc"},
			event: editText{text: "doc2"},
			want:  ActiveSource{Mode: ViewText, Buffer: "doc2", Dirty: true},
		},
		{
			name:  "store change mirrors clean buffer",
			state: ActiveSource{Mode: ViewText, Buffer: "old"},
			event: storeChanged{encoded: "new"},
			want:  ActiveSource{Mode: ViewText, Buffer: "new"},
		},
		{
			name:  "store change never clobbers dirty text",
			state: ActiveSource{Mode: ViewText, Buffer: "mine", Dirty: true},
			event: storeChanged{encoded: "theirs"},
			want:  ActiveSource{Mode: ViewText, Buffer: "mine", Dirty: true},
		},
		{
			name:  "store change updates mirror while structured view is active",
			state: ActiveSource{Mode: ViewStructured, Buffer: "old", Dirty: true},
			event: storeChanged{encoded: "new"},
			want:  ActiveSource{Mode: ViewStructured, Buffer: "new"},
		},
		{
			name:  "save applied clears dirty without switching views",
			state: ActiveSource{Mode: ViewText, Buffer: "mine", Dirty: true},
			event: saveApplied{encoded: "saved"},
			want:  ActiveSource{Mode: ViewText, Buffer: "saved"},
		},
		{
			name:  "new document resets to structured view",
			state: ActiveSource{Mode: ViewText, Buffer: "abandoned", Dirty: true},
			event: newDocument{encoded: "fresh"},
			want:  ActiveSource{Mode: ViewStructured, Buffer: "fresh"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reduceSource(tt.state, tt.event))
		})
	}
}
