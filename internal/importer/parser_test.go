package importer_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/MrJamesThe3rd/projectlibrary/internal/catalog"
	"github.com/MrJamesThe3rd/projectlibrary/internal/importer"
)

const header = "title,short_description,long_description,technology,price,file,image,featured,demo_video_url\n"

func TestParse(t *testing.T) {
	input := header +
		"Attendance System,Face recognition attendance,Full description,python,499,projects/files/attendance.zip,projects/images/attendance.png,yes,https://youtu.be/abc\n" +
		"Hospital Portal,Hospital management,Desc,Web Development,\"1,299.50\",projects/files/hospital.zip,,,\n"

	rows, rowErrs, err := importer.Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, 2, first.Line)
	assert.Equal(t, "Attendance System", first.Params.Title)
	assert.Equal(t, catalog.TechPython, first.Params.Technology)
	assert.True(t, decimal.RequireFromString("499").Equal(first.Params.Price))
	assert.True(t, first.Params.Featured)
	require.NotNil(t, first.Params.DemoVideoURL)
	assert.Equal(t, "https://youtu.be/abc", *first.Params.DemoVideoURL)

	second := rows[1]
	assert.Equal(t, 3, second.Line)
	assert.Equal(t, catalog.TechWebDevelopment, second.Params.Technology)
	assert.True(t, decimal.RequireFromString("1299.50").Equal(second.Params.Price))
	assert.False(t, second.Params.Featured)
	assert.Nil(t, second.Params.DemoVideoURL)
}

func TestParse_SemicolonAndCommaDecimal(t *testing.T) {
	input := "Title;Short Description;Long Description;Technology;Price;File\n" +
		"Chatbot;LLM chatbot;Desc;Gen AI;₹ 1.499,00;projects/files/chatbot.zip\n"

	rows, rowErrs, err := importer.Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, rows, 1)
	assert.Equal(t, catalog.TechGenAI, rows[0].Params.Technology)
	assert.True(t, decimal.RequireFromString("1499").Equal(rows[0].Params.Price))
}

func TestParse_RowErrors(t *testing.T) {
	input := header +
		"Good,Short,Long,Java,299,a.zip,,,\n" +
		"Bad Tech,Short,Long,COBOL,299,b.zip,,,\n" +
		",,,,,,,,\n" +
		"Bad Price,Short,Long,Java,free,c.zip,,,\n" +
		"Bad Flag,Short,Long,Java,10,d.zip,,maybe,\n"

	rows, rowErrs, err := importer.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Len(t, rowErrs, 3)

	assert.Equal(t, 3, rowErrs[0].Line)
	assert.Contains(t, rowErrs[0].Error(), "unknown technology")
	assert.Equal(t, 5, rowErrs[1].Line)
	assert.Contains(t, rowErrs[1].Error(), "price")
	assert.Equal(t, 6, rowErrs[2].Line)
	assert.Contains(t, rowErrs[2].Error(), "featured")
}

func TestParse_MissingColumns(t *testing.T) {
	_, _, err := importer.Parse(strings.NewReader("title,price\nX,10\n"))
	require.ErrorIs(t, err, importer.ErrMissingColumns)
	assert.Contains(t, err.Error(), "technology")
}

func TestParse_Empty(t *testing.T) {
	_, _, err := importer.Parse(strings.NewReader(""))
	assert.Error(t, err)
}

func TestParse_Windows1252(t *testing.T) {
	text := "title;short_description;long_description;technology;price;file\n" +
		"Café Ordering;Menú and billing;Señor café;Android;349,00;projects/files/cafe.zip\n"

	encoded, err := charmap.Windows1252.NewEncoder().String(text)
	require.NoError(t, err)

	rows, rowErrs, err := importer.Parse(strings.NewReader(encoded))
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, rows, 1)
	assert.Equal(t, "Café Ordering", rows[0].Params.Title)
	assert.Equal(t, "Señor café", rows[0].Params.LongDescription)
	assert.True(t, decimal.RequireFromString("349").Equal(rows[0].Params.Price))
}

func TestParse_UTF8BOM(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte(header+"BOM Project,S,L,Java,10,x.zip,,,\n")...)

	rows, _, err := importer.Parse(bytes.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "BOM Project", rows[0].Params.Title)
}

func TestParse_UTF16LE(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()

	encoded, err := enc.String(header + "Wide Project,S,L,Blockchain,10,x.zip,,,\n")
	require.NoError(t, err)

	rows, _, err := importer.Parse(strings.NewReader(encoded))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Wide Project", rows[0].Params.Title)
	assert.Equal(t, catalog.TechBlockchain, rows[0].Params.Technology)
}
