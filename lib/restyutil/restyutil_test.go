package restyutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

type memoryOutput map[string]string

func (m memoryOutput) Write(id string, contents string) {
	m[id] = contents
}

func TestDump(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<td>Hon. Jane Smith</td>"))
	}))
	defer srv.Close()

	out := memoryOutput{}
	client := resty.New()
	Dump(client, out)

	_, err := client.R().SetHeader("X-Case", "12345/2020").Get(srv.URL + "/case")
	require.NoError(t, err)
	_, err = client.R().Get(srv.URL + "/case")
	require.NoError(t, err)

	require.Len(t, out, 2)
	first := out["001-get.txt"]
	require.Contains(t, first, "GET "+srv.URL+"/case")
	require.Contains(t, first, "X-Case: 12345/2020")
	require.Contains(t, first, "200 OK")
	require.Contains(t, first, "Content-Type: text/html")
	require.Contains(t, first, "<td>Hon. Jane Smith</td>")
	require.Contains(t, out, "002-get.txt")
}

func TestFilesystemOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "dump")
	out, err := NewFilesystemOutput(dir)
	require.NoError(t, err)

	out.Write("001-get.txt", "contents")
	contents, err := os.ReadFile(filepath.Join(dir, "001-get.txt"))
	require.NoError(t, err)
	require.Equal(t, "contents", string(contents))
}
