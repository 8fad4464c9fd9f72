package attach

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowed(t *testing.T) {
	assert.True(t, Allowed("invitacion.pdf"))
	assert.True(t, Allowed("foto.JPG"))
	assert.True(t, Allowed("scan.jpeg"))
	assert.True(t, Allowed("imagen.png"))

	assert.False(t, Allowed("script.exe"))
	assert.False(t, Allowed("doc.docx"))
	assert.False(t, Allowed("noext"))
}

func TestSaveAndPath(t *testing.T) {
	m := New(t.TempDir())
	require.NoError(t, m.Init())

	pngHeader := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

	info, err := m.Save("Invitación Foro.png", bytes.NewReader(pngHeader))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(info.URL, "/uploads/"))
	assert.True(t, strings.HasSuffix(info.URL, ".png"))
	assert.Equal(t, "Invitación Foro.png", info.Name)
	assert.Equal(t, int64(len(pngHeader)), info.Size)
	assert.Contains(t, info.Mime, "image/png")

	stored := strings.TrimPrefix(info.URL, "/uploads/")

	path, err := m.Path(stored)
	require.NoError(t, err)

	dat, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, dat)
}

func TestSaveRejectsBadExtension(t *testing.T) {
	m := New(t.TempDir())
	require.NoError(t, m.Init())

	_, err := m.Save("malware.exe", bytes.NewReader([]byte("x")))
	assert.Error(t, err)
}

func TestPathRefusesTraversal(t *testing.T) {
	m := New(t.TempDir())

	for _, name := range []string{"", "../secret", "a/b", `..\win`} {
		_, err := m.Path(name)
		assert.Error(t, err, name)
	}
}

func TestRemove(t *testing.T) {
	m := New(t.TempDir())
	require.NoError(t, m.Init())

	info, err := m.Save("scan.pdf", bytes.NewReader([]byte("%PDF-1.4")))
	require.NoError(t, err)

	m.Remove(info.URL)

	stored := strings.TrimPrefix(info.URL, "/uploads/")
	_, err = m.Path(stored)
	assert.Error(t, err)
}
