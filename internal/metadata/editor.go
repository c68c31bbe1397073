package metadata

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/sirupsen/logrus"
)

// SongEdit carries the user-editable tag fields of one file.
type SongEdit struct {
	Title       string
	Artist      string
	Album       string
	Genre       string
	Lyrics      string
	TrackNumber int
}

// Editor writes edited tags back into audio files. Only ID3v2-tagged mp3
// files can be rewritten in place; other formats keep their on-disk tags and
// rely on the library store carrying the edit.
type Editor struct {
	logger *logrus.Logger
}

func NewEditor(logger *logrus.Logger) *Editor {
	return &Editor{logger: logger}
}

// CanWrite reports whether WriteTags can rewrite the given file.
func (e *Editor) CanWrite(filePath string) bool {
	return strings.ToLower(filepath.Ext(filePath)) == ".mp3"
}

// WriteTags rewrites the file's tags with the given edit. Calling it on an
// unsupported format is an error; callers should check CanWrite first.
func (e *Editor) WriteTags(filePath string, edit SongEdit) error {
	if !e.CanWrite(filePath) {
		return fmt.Errorf("cannot write tags to %s: unsupported format", filepath.Base(filePath))
	}

	tag, err := id3v2.Open(filePath, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open id3 tag: %w", err)
	}
	defer tag.Close()

	tag.SetTitle(edit.Title)
	tag.SetArtist(edit.Artist)
	tag.SetAlbum(edit.Album)
	tag.SetGenre(edit.Genre)
	if edit.TrackNumber > 0 {
		tag.AddTextFrame(tag.CommonID("Track number/Position in set"),
			tag.DefaultEncoding(), strconv.Itoa(edit.TrackNumber))
	}

	tag.DeleteFrames(tag.CommonID("Unsynchronised lyrics/text transcription"))
	if edit.Lyrics != "" {
		tag.AddUnsynchronisedLyricsFrame(id3v2.UnsynchronisedLyricsFrame{
			Encoding:          id3v2.EncodingUTF8,
			Language:          "eng",
			ContentDescriptor: "",
			Lyrics:            edit.Lyrics,
		})
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("failed to save id3 tag: %w", err)
	}

	e.logger.WithFields(logrus.Fields{
		"filePath": filePath,
		"title":    edit.Title,
	}).Info("Rewrote file tags")
	return nil
}
