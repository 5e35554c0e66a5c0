package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "Redes", want: "redes"},
		{name: "accents folded", input: "Telefonía y Comunicación", want: "telefonia-y-comunicacion"},
		{name: "enye", input: "Cañas de Señal", want: "canas-de-senal"},
		{name: "punctuation collapsed", input: "Audio / Video (HDMI)", want: "audio-video-hdmi"},
		{name: "leading and trailing noise", input: "  ¡Ofertas!  ", want: "ofertas"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.input))
		})
	}
}
