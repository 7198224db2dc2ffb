package main

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

const sample = `name,last_name,document_type,document_number,cell_phone,email,password,role,image_path
Ana,Quispe,DNI,74859612,987654321,ana@x.com,s3creto,ADMIN|USER,fotos/ana.png
Luis,Ñahui,DNI,70000001,,luis@x.com,clave123,,
`

func TestParseRows(t *testing.T) {
	rows, err := parseRows(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 2, rows[0].line)
	assert.Equal(t, "ana@x.com", rows[0].in.Email)
	assert.Equal(t, "s3creto", rows[0].in.Credential)
	assert.Equal(t, []string{"ADMIN", "USER"}, rows[0].in.Roles)
	assert.Equal(t, "fotos/ana.png", rows[0].imagePath)

	assert.Equal(t, "Ñahui", rows[1].in.LastName)
	assert.Nil(t, rows[1].in.Roles)
	assert.Empty(t, rows[1].imagePath)
}

func TestParseRows_CabeceraInvalida(t *testing.T) {
	_, err := parseRows(strings.NewReader("email,password\nana@x.com,x\n"))
	assert.Error(t, err)

	_, err = parseRows(strings.NewReader("nombre,last_name,document_type,document_number,cell_phone,email,password,role\n"))
	assert.ErrorContains(t, err, "columna 1")
}

func TestParseRows_LineaConCamposMultilinea(t *testing.T) {
	in := strings.Join(header, ",") + "\n" +
		"Ana,\"Quispe\nRojas\",DNI,1,,ana@x.com,x,USER\n" +
		"Luis,Ñahui,DNI,2,,luis@x.com,y,USER\n"

	rows, err := parseRows(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].line)
	assert.Equal(t, 4, rows[1].line, "el registro anterior ocupa dos líneas")
}

func TestParseRows_FilaIncompleta(t *testing.T) {
	_, err := parseRows(strings.NewReader(strings.Join(header, ",") + "\nAna,Quispe\n"))
	assert.ErrorContains(t, err, "línea 2")
}

func TestDecodeCharset(t *testing.T) {
	latin1, err := charmap.ISO8859_1.NewEncoder().String("Ñahui,José")
	require.NoError(t, err)

	out, err := io.ReadAll(decodeCharset([]byte(latin1)))
	require.NoError(t, err)
	assert.Equal(t, "Ñahui,José", string(out))

	out, err = io.ReadAll(decodeCharset([]byte("\xef\xbb\xbfÑahui")))
	require.NoError(t, err)
	assert.Equal(t, "Ñahui", string(out), "UTF-8 con BOM pasa sin cambios")
}
