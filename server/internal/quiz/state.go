package quiz

import (
	"sort"
	"time"

	"tunequiz/pkg/protocol"
	"tunequiz/server/internal/scoring"
)

// Answer is a player's settled submission for the current round.
type Answer struct {
	Text           string
	Classification scoring.Classification
	Points         int
}

// Player survives disconnects: the entry is never removed for the room's
// lifetime and the score never decreases.
type Player struct {
	Username   string
	Emoji      string
	PlayerID   string
	Connected  bool
	Score      int
	LastAnswer *Answer
}

// State holds the mutable quiz state for one room. It is not goroutine-safe;
// the owning room actor serializes all access.
type State struct {
	Code         string
	GameID       string
	HostUsername string
	Players      map[string]*Player
	Songs        []Song
	Current      int
	Phase        Phase

	// MaxPlayers caps room membership; zero means unbounded. Rejoins are
	// exempt since the player already holds a seat.
	MaxPlayers int
}

func NewState(code, gameID string, songs []Song) *State {
	return &State{
		Code:    code,
		GameID:  gameID,
		Players: make(map[string]*Player),
		Songs:   songs,
		Phase:   PhaseLobby,
	}
}

// Join adds a new player, or resumes an existing disconnected one under the
// same username. A username held by a connected player is taken; brand-new
// usernames are admitted only while the room is in the lobby and seats remain.
func (s *State) Join(username, emoji, playerID string) (*Player, bool, error) {
	if s.Phase == PhaseFinished {
		return nil, false, ErrInvalidPhase
	}
	if p, ok := s.Players[username]; ok {
		if p.Connected {
			return nil, false, ErrUsernameTaken
		}
		p.PlayerID = playerID
		p.Connected = true
		return p, true, nil
	}
	if s.Phase != PhaseLobby {
		return nil, false, ErrInvalidPhase
	}
	if s.MaxPlayers > 0 && len(s.Players) >= s.MaxPlayers {
		return nil, false, ErrRoomFull
	}
	p := &Player{
		Username:  username,
		Emoji:     emoji,
		PlayerID:  playerID,
		Connected: true,
	}
	s.Players[username] = p
	if s.HostUsername == "" {
		s.HostUsername = username
	}
	return p, false, nil
}

// Rejoin re-associates a new connection with an existing disconnected player.
func (s *State) Rejoin(username, playerID string) (*Player, error) {
	if s.Phase == PhaseFinished {
		return nil, ErrInvalidPhase
	}
	p, ok := s.Players[username]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	if p.Connected {
		return nil, ErrUsernameTaken
	}
	p.PlayerID = playerID
	p.Connected = true
	return p, nil
}

// Disconnect marks the player owning the connection as offline. Score and
// answer state are retained.
func (s *State) Disconnect(playerID string) (*Player, bool) {
	for _, p := range s.Players {
		if p.Connected && p.PlayerID == playerID {
			p.Connected = false
			p.PlayerID = ""
			return p, true
		}
	}
	return nil, false
}

// PlayerByID finds the connected player owning a connection.
func (s *State) PlayerByID(playerID string) (*Player, bool) {
	if playerID == "" {
		return nil, false
	}
	for _, p := range s.Players {
		if p.Connected && p.PlayerID == playerID {
			return p, true
		}
	}
	return nil, false
}

func (s *State) IsHost(username string) bool {
	return username != "" && username == s.HostUsername
}

func (s *State) ConnectedCount() int {
	n := 0
	for _, p := range s.Players {
		if p.Connected {
			n++
		}
	}
	return n
}

// Song returns the current round's song. Valid only outside the lobby.
func (s *State) Song() *Song {
	if s.Current < 0 || s.Current >= len(s.Songs) {
		return nil
	}
	return &s.Songs[s.Current]
}

// Advance applies a phase transition and returns the resulting phase. A zero
// target selects the natural next phase. Deadline expiry is fed through here
// as a PhasePlaying→PhaseReveal transition, the same path as host actions, so
// the legality table below is the single source of truth.
func (s *State) Advance(target Phase) (Phase, error) {
	if target == 0 && s.Phase != PhaseFinished {
		target = s.Phase.Next()
	}
	if target == PhaseFinished {
		return s.end()
	}

	switch {
	case s.Phase == PhaseLobby && target == PhasePlaying:
		if len(s.Players) < 1 {
			return s.Phase, ErrNoPlayers
		}
		if len(s.Songs) == 0 {
			return s.Phase, ErrNoSongs
		}
		s.Current = 0
		s.clearAnswers()
		s.Phase = PhasePlaying
	case s.Phase == PhasePlaying && target == PhaseReveal:
		s.Phase = PhaseReveal
	case s.Phase == PhaseReveal && target == PhaseLeaderboard:
		s.Phase = PhaseLeaderboard
	case s.Phase == PhaseLeaderboard && target == PhaseAnswersReview:
		s.Phase = PhaseAnswersReview
	case (s.Phase == PhaseLeaderboard || s.Phase == PhaseAnswersReview) && target == PhasePlaying:
		if s.Current+1 >= len(s.Songs) {
			return s.end()
		}
		s.Current++
		s.clearAnswers()
		s.Phase = PhasePlaying
	default:
		return s.Phase, ErrInvalidPhase
	}
	return s.Phase, nil
}

func (s *State) end() (Phase, error) {
	if s.Phase == PhaseFinished {
		return s.Phase, ErrInvalidPhase
	}
	s.Phase = PhaseFinished
	return s.Phase, nil
}

func (s *State) clearAnswers() {
	for _, p := range s.Players {
		p.LastAnswer = nil
	}
}

// SubmitAnswer settles a submission for the current round. Only the first
// submission per player per round counts; elapsed beyond the guess limit
// still classifies but scores zero.
func (s *State) SubmitAnswer(username, text string, elapsed time.Duration) (*Answer, error) {
	if s.Phase != PhasePlaying {
		return nil, ErrInvalidPhase
	}
	p, ok := s.Players[username]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	if p.LastAnswer != nil {
		return nil, ErrAlreadyAnswered
	}
	song := s.Song()
	if song == nil {
		return nil, ErrInvalidPhase
	}

	res := scoring.ClassifyAndScore(text, song.TitleAnswers, song.ArtistAnswers, song.LyricsAnswers, elapsed, song.GuessLimit)
	ans := &Answer{
		Text:           text,
		Classification: res.Classification,
		Points:         res.Points,
	}
	p.LastAnswer = ans
	p.Score += res.Points
	return ans, nil
}

// AllConnectedAnswered reports whether every connected player has an answer
// stored for the current round.
func (s *State) AllConnectedAnswered() bool {
	any := false
	for _, p := range s.Players {
		if !p.Connected {
			continue
		}
		any = true
		if p.LastAnswer == nil {
			return false
		}
	}
	return any
}

// Roster builds the player-list broadcast payload.
func (s *State) Roster() *protocol.PlayerListUpdate {
	players := make([]*protocol.PlayerInfo, 0, len(s.Players))
	for _, name := range s.sortedUsernames() {
		p := s.Players[name]
		players = append(players, &protocol.PlayerInfo{
			Username:  p.Username,
			Emoji:     p.Emoji,
			Score:     int32(p.Score),
			Connected: p.Connected,
		})
	}
	return &protocol.PlayerListUpdate{
		Players:      players,
		HostUsername: s.HostUsername,
	}
}

// Standings sorts all players, disconnected ones included, by score
// descending with username ascending as the tie-break.
func (s *State) Standings() []*protocol.StandingEntry {
	entries := make([]*protocol.StandingEntry, 0, len(s.Players))
	for _, p := range s.Players {
		entries = append(entries, &protocol.StandingEntry{
			Username: p.Username,
			Emoji:    p.Emoji,
			Score:    int32(p.Score),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Username < entries[j].Username
	})
	for i, e := range entries {
		e.Rank = int32(i + 1)
	}
	return entries
}

// Review groups the completed round's answers by classification.
func (s *State) Review() *protocol.AnswersReview {
	groups := make(map[scoring.Classification][]*protocol.ReviewEntry)
	for _, name := range s.sortedUsernames() {
		p := s.Players[name]
		if p.LastAnswer == nil {
			continue
		}
		a := p.LastAnswer
		groups[a.Classification] = append(groups[a.Classification], &protocol.ReviewEntry{
			Username: p.Username,
			Text:     a.Text,
			Points:   int32(a.Points),
		})
	}
	review := &protocol.AnswersReview{SongIndex: int32(s.Current)}
	for _, class := range []scoring.Classification{scoring.Title, scoring.Artist, scoring.Lyrics, scoring.None} {
		if entries, ok := groups[class]; ok {
			review.Groups = append(review.Groups, &protocol.AnswerGroup{
				Classification: int32(class),
				Entries:        entries,
			})
		}
	}
	return review
}

// Snapshot builds the resume payload for one returning player. The answer key
// is never included; the current song appears only as preview/artwork
// references. Deadline and pause fields are filled in by the room actor.
func (s *State) Snapshot(username string) *protocol.RoomSnapshot {
	snap := &protocol.RoomSnapshot{
		Code:         s.Code,
		Phase:        int32(s.Phase),
		SongIndex:    int32(s.Current),
		SongCount:    int32(len(s.Songs)),
		Roster:       s.Roster().Players,
		Standings:    s.Standings(),
		HostUsername: s.HostUsername,
	}
	if song := s.Song(); song != nil && s.Phase != PhaseLobby {
		snap.PreviewUrl = song.PreviewURL
		snap.ArtworkUrl = song.ArtworkURL
	}
	if p, ok := s.Players[username]; ok && p.LastAnswer != nil {
		snap.YourAnswer = &protocol.AnswerResult{
			Classification: int32(p.LastAnswer.Classification),
			Points:         int32(p.LastAnswer.Points),
			Text:           p.LastAnswer.Text,
		}
	}
	return snap
}

func (s *State) sortedUsernames() []string {
	names := make([]string, 0, len(s.Players))
	for name := range s.Players {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
