package song

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/seejay/notefall/difficulty"
)

func makeSongDir(t *testing.T, root, name string, files ...string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, file := range files {
		if err := os.WriteFile(filepath.Join(dir, file), []byte{}, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestFromDir(t *testing.T) {
	root := t.TempDir()
	dir := makeSongDir(t, root, "fur_elise",
		"fur_elise_beginner.mid",
		"fur_elise_advanced.mid",
		"fur_elise.mp3",
		"fur_elise_other.mp3",
	)

	s, err := FromDir(dir)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal("fur_elise", s.ID)
	assert.Equal("fur elise", s.Title)
	assert.Equal(dir, s.BasePath)
	assert.Equal(filepath.Join(dir, "fur_elise.mp3"), s.AudioPath)
	assert.Equal(filepath.Join(dir, "fur_elise_other.mp3"), s.StemPath)
}

func TestFromDirWithoutAudio(t *testing.T) {
	root := t.TempDir()
	dir := makeSongDir(t, root, "etude", "etude_intermediate.mid")

	s, err := FromDir(dir)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Empty(s.AudioPath)
	assert.Empty(s.StemPath)
}

func TestFromDirWithoutTimelines(t *testing.T) {
	root := t.TempDir()
	dir := makeSongDir(t, root, "empty_song", "empty_song.mp3")

	_, err := FromDir(dir)
	assert.Error(t, err)
}

func TestDiscoverSkipsUnplayableEntries(t *testing.T) {
	root := t.TempDir()
	makeSongDir(t, root, "song_a", "song_a_beginner.mid")
	makeSongDir(t, root, "not_a_song", "readme.txt")
	if err := os.WriteFile(filepath.Join(root, "stray.mid"), []byte{}, 0o644); err != nil {
		t.Fatal(err)
	}

	songs, err := Discover(root)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Len(songs, 1)
	assert.Equal("song_a", songs[0].ID)
}

func TestDiscoverMissingRoot(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestTimelinePath(t *testing.T) {
	root := t.TempDir()
	dir := makeSongDir(t, root, "waltz", "waltz_beginner.mid")
	s, err := FromDir(dir)
	assert.NoError(t, err)

	path, err := TimelinePath(s, difficulty.Beginner)
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "waltz_beginner.mid"), path)

	_, err = TimelinePath(s, difficulty.Advanced)
	assert.Error(t, err)
}
