package repositories

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"traffic-forecast-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	got map[string][]domain.LocationCandidate
}

func (r *recordingWriter) PutMany(_ context.Context, results map[string][]domain.LocationCandidate) error {
	r.got = results
	return nil
}

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "places.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestSeedPlacesFromJSON(t *testing.T) {
	path := writeSeed(t, `[
		{"name": "Gwalior Fort", "label": "Gwalior Fort, Gwalior", "lon": 78.1691, "lat": 26.2303, "aliases": ["Fort", "  gwalior   FORT "]},
		{"name": "Morar", "lon": 78.2258, "lat": 26.2312}
	]`)

	w := &recordingWriter{}
	n, err := SeedPlacesFromJSON(context.Background(), w, path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.Contains(t, w.got, "gwalior fort")
	require.Contains(t, w.got, "fort")
	assert.Equal(t, "Gwalior Fort, Gwalior", w.got["fort"][0].Label)
	assert.Equal(t, "Morar", w.got["morar"][0].Label, "label falls back to name")
}

func TestLoadPlacesRejectsInvalidRows(t *testing.T) {
	_, err := LoadPlaces(writeSeed(t, `[{"name": "", "lon": 1, "lat": 1}]`))
	assert.Error(t, err)

	_, err = LoadPlaces(writeSeed(t, `[{"name": "Bad", "lon": 500, "lat": 1}]`))
	assert.Error(t, err)

	_, err = LoadPlaces(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
