package quiz

import (
	"time"

	"tunequiz/pkg/protocol"
	"tunequiz/server/internal/scoring"
)

const DefaultGuessLimit = 30 * time.Second

// Song is one guessing round: immutable once the room is created. The
// accepted-answer sets are stored normalized so submissions compare directly.
type Song struct {
	Title         string
	Artist        string
	PreviewURL    string
	ArtworkURL    string
	GuessLimit    time.Duration
	TitleAnswers  []string
	ArtistAnswers []string
	LyricsAnswers []string
}

// SongFromInfo builds a Song from its wire representation. The title and
// artist themselves are always accepted answers for their sets.
func SongFromInfo(info *protocol.SongInfo) Song {
	s := Song{
		Title:      info.Title,
		Artist:     info.Artist,
		PreviewURL: info.PreviewUrl,
		ArtworkURL: info.ArtworkUrl,
		GuessLimit: time.Duration(info.GuessLimitMs) * time.Millisecond,
	}
	if s.GuessLimit <= 0 {
		s.GuessLimit = DefaultGuessLimit
	}
	s.TitleAnswers = scoring.NormalizeSet(append([]string{info.Title}, info.TitleAnswers...))
	s.ArtistAnswers = scoring.NormalizeSet(append([]string{info.Artist}, info.ArtistAnswers...))
	s.LyricsAnswers = scoring.NormalizeSet(info.LyricsAnswers)
	return s
}

func SongsFromInfo(infos []*protocol.SongInfo) []Song {
	songs := make([]Song, 0, len(infos))
	for _, info := range infos {
		if info == nil {
			continue
		}
		songs = append(songs, SongFromInfo(info))
	}
	return songs
}
