// Package song locates playable songs on disk and enriches them with
// catalogue metadata. Cataloguing is a collaborator of the play-along
// engine, not part of it.
package song

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/seejay/notefall/difficulty"
	"github.com/seejay/notefall/model"
)

// FromDir builds the Song record for one song directory. The directory is
// expected to contain `<name>_<level>.mid` timelines for at least one level,
// with an optional `<name>.mp3` backing track and `<name>_other.mp3` stem.
func FromDir(dir string) (model.Song, error) {
	name := filepath.Base(dir)
	s := model.Song{
		ID:       name,
		Title:    strings.ReplaceAll(name, "_", " "),
		BasePath: dir,
	}

	var hasTimeline bool
	for _, level := range difficulty.Levels() {
		if _, err := os.Stat(timelinePath(s, level)); err == nil {
			hasTimeline = true
			break
		}
	}
	if !hasTimeline {
		return model.Song{}, fmt.Errorf("no timeline files in %v", dir)
	}

	if audio := filepath.Join(dir, name+".mp3"); exists(audio) {
		s.AudioPath = audio
	}
	if stem := filepath.Join(dir, name+"_other.mp3"); exists(stem) {
		s.StemPath = stem
	}
	return s, nil
}

// Discover walks a media directory and returns every playable song in it.
// Directories without timelines are skipped, not errors.
func Discover(root string) ([]model.Song, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading media dir: %w", err)
	}

	var songs []model.Song
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		s, err := FromDir(filepath.Join(root, entry.Name()))
		if err != nil {
			continue
		}
		songs = append(songs, s)
	}
	return songs, nil
}

// TimelinePath resolves the timeline file for one difficulty level.
func TimelinePath(s model.Song, level difficulty.Level) (string, error) {
	path := timelinePath(s, level)
	if !exists(path) {
		return "", fmt.Errorf("no %v timeline for %v", level, s.ID)
	}
	return path, nil
}

func timelinePath(s model.Song, level difficulty.Level) string {
	return filepath.Join(s.BasePath, fmt.Sprintf("%v_%v.mid", s.ID, level))
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
