package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Qualificado", "Qualificado"},
		{"<b>T3</b> - Pago", "T3 - Pago"},
		{"&lt;script&gt;alert(1)&lt;/script&gt;Lead", "alert(1)Lead"},
		{"  Follow   up\n", "Follow up"},
		{"R&amp;D", "R&D"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.input))
		})
	}
}

func TestTextPtr(t *testing.T) {
	assert.Nil(t, TextPtr(nil))

	blank := "  <br/> "
	assert.Nil(t, TextPtr(&blank))

	desc := "Leads <i>quentes</i>"
	got := TextPtr(&desc)
	if assert.NotNil(t, got) {
		assert.Equal(t, "Leads quentes", *got)
	}
}
