package fileInfo

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateNode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lista_mg.csv")
	require.NoError(t, os.WriteFile(path, []byte("nome,telefone\nAna,3199\n"), 0644))

	node, err := CreateNode(path)
	require.NoError(t, err)

	assert.Equal(t, "lista_mg.csv", node.Name())
	assert.Equal(t, int64(23), node.Size)
	assert.NotEmpty(t, node.MimeType)
	assert.Len(t, node.Checksum, 64)

	rc, err := node.Open()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "nome,telefone\nAna,3199\n", string(data))
}

func TestCreateNodeRejectsDirectory(t *testing.T) {
	_, err := CreateNode(t.TempDir())
	require.Error(t, err)
}

func TestCreateNodeMissing(t *testing.T) {
	_, err := CreateNode(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}

func TestHasExtension(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		want bool
	}{
		{"lista.csv", ".csv", true},
		{"LISTA.CSV", ".csv", true},
		{"lista.csv", "csv", true},
		{"dados.xlsx", ".csv", false},
		{"csv", ".csv", false},
		{"lista.csv.bak", ".csv", false},
		{"lista.csv", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name+tt.ext, func(t *testing.T) {
			assert.Equal(t, tt.want, HasExtension(tt.name, tt.ext))
		})
	}
}

func TestMemoryFile(t *testing.T) {
	f := MemoryFile{FileName: "x.csv", Data: []byte("1,2")}
	rc, err := f.Open()
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "1,2", string(data))
}
