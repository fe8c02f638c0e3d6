package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/naka-gawa/github-portfolio/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() *domain.Document {
	lang := "Go"
	return domain.NewDocument([]domain.ProcessedRepository{
		{
			Name:            "portfolio",
			Description:     "Personal site",
			HTMLURL:         "https://github.com/any-user/portfolio",
			Language:        &lang,
			StargazersCount: 3,
			Topics:          []string{"web"},
			UpdatedAt:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			IsPinned:        true,
		},
	})
}

const expectedPretty = `{
  "repositories": [
    {
      "name": "portfolio",
      "description": "Personal site",
      "htmlUrl": "https://github.com/any-user/portfolio",
      "homepage": null,
      "language": "Go",
      "stargazersCount": 3,
      "topics": [
        "web"
      ],
      "updatedAt": "2024-01-01T00:00:00Z",
      "isPinned": true
    }
  ]
}`

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "github-data.json")

	require.NoError(t, Write(path, sampleDocument()))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, expectedPretty, string(got))

	// A second run replaces the file wholesale.
	require.NoError(t, Write(path, domain.NewDocument(nil)))
	got, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"repositories\": []\n}", string(got))

	// No temp files are left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWrite_Failure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "data")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0o644))

	err := Write(filepath.Join(blocker, "github-data.json"), sampleDocument())
	var persistErr *domain.PersistenceError
	require.True(t, errors.As(err, &persistErr))
	assert.Equal(t, "create directory", persistErr.Op)
}

func TestMinify(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "data", "github-data.json")
	dst := filepath.Join(dir, "dist", "data", "github-data.json")
	require.NoError(t, Write(src, sampleDocument()))

	require.NoError(t, Minify(src, dst))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t,
		`{"repositories":[{"name":"portfolio","description":"Personal site","htmlUrl":"https://github.com/any-user/portfolio","homepage":null,"language":"Go","stargazersCount":3,"topics":["web"],"updatedAt":"2024-01-01T00:00:00Z","isPinned":true}]}`,
		string(got))
}

func TestMinify_Errors(t *testing.T) {
	dir := t.TempDir()

	err := Minify(filepath.Join(dir, "missing.json"), filepath.Join(dir, "out.json"))
	var persistErr *domain.PersistenceError
	require.True(t, errors.As(err, &persistErr))
	assert.Equal(t, "read", persistErr.Op)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"repositories": [`), 0o644))
	err = Minify(bad, filepath.Join(dir, "out.json"))
	require.True(t, errors.As(err, &persistErr))
	assert.Equal(t, "compact", persistErr.Op)
	assert.NoFileExists(t, filepath.Join(dir, "out.json"))
}

func TestEncode_KeepsHTMLCharacters(t *testing.T) {
	doc := domain.NewDocument([]domain.ProcessedRepository{{Name: "a", Description: "tips & <tricks>", Topics: []string{}}})

	data, err := Encode(doc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"description": "tips & <tricks>"`)

	again, err := Encode(doc)
	require.NoError(t, err)
	assert.Equal(t, data, again)
}
