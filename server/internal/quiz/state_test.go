package quiz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tunequiz/pkg/protocol"
)

func testSongs(n int) []Song {
	infos := make([]*protocol.SongInfo, 0, n)
	catalog := []*protocol.SongInfo{
		{Title: "Dancing Queen", Artist: "ABBA", GuessLimitMs: 10000, LyricsAnswers: []string{"you can dance"}},
		{Title: "Bohemian Rhapsody", Artist: "Queen", GuessLimitMs: 10000},
		{Title: "Billie Jean", Artist: "Michael Jackson", GuessLimitMs: 10000},
	}
	for i := 0; i < n; i++ {
		infos = append(infos, catalog[i%len(catalog)])
	}
	return SongsFromInfo(infos)
}

func newTestState(t *testing.T, songCount int, usernames ...string) *State {
	t.Helper()
	s := NewState("12345", "game-1", testSongs(songCount))
	for i, name := range usernames {
		_, rejoined, err := s.Join(name, "🎸", "conn-"+name)
		require.NoError(t, err)
		require.False(t, rejoined)
		if i == 0 {
			require.True(t, s.IsHost(name))
		}
	}
	return s
}

func TestJoinAssignsFirstPlayerAsHost(t *testing.T) {
	s := newTestState(t, 1, "alice", "bob")
	assert.Equal(t, "alice", s.HostUsername)
	assert.False(t, s.IsHost("bob"))
	assert.Equal(t, 2, s.ConnectedCount())
}

func TestJoinTakenUsername(t *testing.T) {
	s := newTestState(t, 1, "alice")
	_, _, err := s.Join("alice", "🎤", "conn-2")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestJoinResumesDisconnectedPlayer(t *testing.T) {
	s := newTestState(t, 1, "alice", "bob")
	_, err := s.Advance(PhasePlaying)
	require.NoError(t, err)
	_, err = s.SubmitAnswer("bob", "dancing queen", time.Second)
	require.NoError(t, err)

	p, ok := s.Disconnect("conn-bob")
	require.True(t, ok)
	score := p.Score
	require.Positive(t, score)

	// A plain Join under the old username acts as a rejoin mid-game.
	p2, rejoined, err := s.Join("bob", "🎤", "conn-bob-2")
	require.NoError(t, err)
	assert.True(t, rejoined)
	assert.Same(t, p, p2)
	assert.Equal(t, score, p2.Score)
	assert.True(t, p2.Connected)
}

func TestJoinRoomFull(t *testing.T) {
	s := newTestState(t, 1, "alice", "bob")
	s.MaxPlayers = 2

	_, _, err := s.Join("carol", "🎹", "conn-carol")
	assert.ErrorIs(t, err, ErrRoomFull)

	// Seats are held by membership, not connection: a disconnect frees
	// nothing for new names, but its owner can still resume it.
	_, ok := s.Disconnect("conn-bob")
	require.True(t, ok)
	_, _, err = s.Join("carol", "🎹", "conn-carol")
	assert.ErrorIs(t, err, ErrRoomFull)

	_, rejoined, err := s.Join("bob", "🎤", "conn-bob-2")
	require.NoError(t, err)
	assert.True(t, rejoined)
}

func TestJoinNewPlayerOnlyInLobby(t *testing.T) {
	s := newTestState(t, 1, "alice")
	_, err := s.Advance(PhasePlaying)
	require.NoError(t, err)

	_, _, err = s.Join("carol", "🎹", "conn-carol")
	assert.ErrorIs(t, err, ErrInvalidPhase)
}

func TestRejoin(t *testing.T) {
	s := newTestState(t, 1, "alice")

	_, err := s.Rejoin("ghost", "conn-x")
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	_, err = s.Rejoin("alice", "conn-x")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, ok := s.Disconnect("conn-alice")
	require.True(t, ok)
	p, err := s.Rejoin("alice", "conn-x")
	require.NoError(t, err)
	assert.True(t, p.Connected)
	assert.Equal(t, "conn-x", p.PlayerID)
}

func TestAdvanceTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    Phase
		target  Phase
		want    Phase
		wantErr error
	}{
		{"lobby to playing", PhaseLobby, PhasePlaying, PhasePlaying, nil},
		{"playing to reveal", PhasePlaying, PhaseReveal, PhaseReveal, nil},
		{"reveal to leaderboard", PhaseReveal, PhaseLeaderboard, PhaseLeaderboard, nil},
		{"leaderboard to review", PhaseLeaderboard, PhaseAnswersReview, PhaseAnswersReview, nil},
		{"review to next song", PhaseAnswersReview, PhasePlaying, PhasePlaying, nil},
		{"leaderboard skips review", PhaseLeaderboard, PhasePlaying, PhasePlaying, nil},
		{"lobby cannot reveal", PhaseLobby, PhaseReveal, PhaseLobby, ErrInvalidPhase},
		{"playing cannot restart", PhasePlaying, PhasePlaying, PhasePlaying, ErrInvalidPhase},
		{"reveal cannot skip to playing", PhaseReveal, PhasePlaying, PhaseReveal, ErrInvalidPhase},
		{"any to finished", PhaseReveal, PhaseFinished, PhaseFinished, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestState(t, 3, "alice", "bob")
			s.Phase = tt.from
			got, err := s.Advance(tt.target)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAdvanceZeroTargetPicksNext(t *testing.T) {
	s := newTestState(t, 2, "alice")
	phases := []Phase{PhasePlaying, PhaseReveal, PhaseLeaderboard}
	for _, want := range phases {
		got, err := s.Advance(0)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	// The review phase is opt-in; the natural next from the leaderboard is
	// the second song.
	got, err := s.Advance(0)
	require.NoError(t, err)
	assert.Equal(t, PhasePlaying, got)
	assert.Equal(t, 1, s.Current)
}

func TestAdvancePastLastSongFinishes(t *testing.T) {
	s := newTestState(t, 1, "alice")
	for _, target := range []Phase{PhasePlaying, PhaseReveal, PhaseLeaderboard} {
		_, err := s.Advance(target)
		require.NoError(t, err)
	}
	got, err := s.Advance(PhasePlaying)
	require.NoError(t, err)
	assert.Equal(t, PhaseFinished, got)

	// Finished is terminal.
	_, err = s.Advance(0)
	assert.ErrorIs(t, err, ErrInvalidPhase)
	_, _, err = s.Join("late", "🥁", "conn-late")
	assert.ErrorIs(t, err, ErrInvalidPhase)
}

func TestAdvanceRequiresPlayersAndSongs(t *testing.T) {
	empty := NewState("12345", "game-1", testSongs(1))
	_, err := empty.Advance(PhasePlaying)
	assert.ErrorIs(t, err, ErrNoPlayers)

	noSongs := NewState("12345", "game-1", nil)
	_, _, err = noSongs.Join("alice", "🎸", "conn-alice")
	require.NoError(t, err)
	_, err = noSongs.Advance(PhasePlaying)
	assert.ErrorIs(t, err, ErrNoSongs)
}

func TestSubmitAnswer(t *testing.T) {
	s := newTestState(t, 2, "alice", "bob")
	_, err := s.Advance(PhasePlaying)
	require.NoError(t, err)

	ans, err := s.SubmitAnswer("alice", "Dancing Queen!", 2*time.Second)
	require.NoError(t, err)
	assert.Positive(t, ans.Points)
	assert.Equal(t, ans.Points, s.Players["alice"].Score)

	// Second submission in the same round is rejected and the score holds.
	_, err = s.SubmitAnswer("alice", "ABBA", time.Second)
	assert.ErrorIs(t, err, ErrAlreadyAnswered)
	assert.Equal(t, ans.Points, s.Players["alice"].Score)

	// Wrong answers settle with zero points but still count as answered.
	wrong, err := s.SubmitAnswer("bob", "wrong guess", time.Second)
	require.NoError(t, err)
	assert.Zero(t, wrong.Points)
	_, err = s.SubmitAnswer("bob", "Dancing Queen", time.Second)
	assert.ErrorIs(t, err, ErrAlreadyAnswered)
}

func TestSubmitAnswerPhaseAndPlayerChecks(t *testing.T) {
	s := newTestState(t, 1, "alice")
	_, err := s.SubmitAnswer("alice", "dancing queen", time.Second)
	assert.ErrorIs(t, err, ErrInvalidPhase)

	_, err = s.Advance(PhasePlaying)
	require.NoError(t, err)
	_, err = s.SubmitAnswer("ghost", "dancing queen", time.Second)
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestScoreAccumulatesAcrossRounds(t *testing.T) {
	s := newTestState(t, 2, "alice")
	_, err := s.Advance(PhasePlaying)
	require.NoError(t, err)
	first, err := s.SubmitAnswer("alice", "Dancing Queen", time.Second)
	require.NoError(t, err)

	for _, target := range []Phase{PhaseReveal, PhaseLeaderboard, PhasePlaying} {
		_, err = s.Advance(target)
		require.NoError(t, err)
	}
	require.Nil(t, s.Players["alice"].LastAnswer)

	second, err := s.SubmitAnswer("alice", "Bohemian Rhapsody", time.Second)
	require.NoError(t, err)
	assert.Equal(t, first.Points+second.Points, s.Players["alice"].Score)
}

func TestAllConnectedAnswered(t *testing.T) {
	s := newTestState(t, 1, "alice", "bob")
	_, err := s.Advance(PhasePlaying)
	require.NoError(t, err)
	assert.False(t, s.AllConnectedAnswered())

	_, err = s.SubmitAnswer("alice", "dancing queen", time.Second)
	require.NoError(t, err)
	assert.False(t, s.AllConnectedAnswered())

	// A disconnected holdout no longer blocks the round.
	_, ok := s.Disconnect("conn-bob")
	require.True(t, ok)
	assert.True(t, s.AllConnectedAnswered())
}

func TestStandingsOrderAndRanks(t *testing.T) {
	s := newTestState(t, 1, "carol", "alice", "bob")
	s.Players["alice"].Score = 130
	s.Players["bob"].Score = 200
	s.Players["carol"].Score = 130

	entries := s.Standings()
	require.Len(t, entries, 3)
	assert.Equal(t, "bob", entries[0].Username)
	assert.Equal(t, int32(1), entries[0].Rank)
	// Tied scores break by username ascending.
	assert.Equal(t, "alice", entries[1].Username)
	assert.Equal(t, int32(2), entries[1].Rank)
	assert.Equal(t, "carol", entries[2].Username)
	assert.Equal(t, int32(3), entries[2].Rank)
}

func TestStandingsIncludeDisconnected(t *testing.T) {
	s := newTestState(t, 1, "alice", "bob")
	s.Players["bob"].Score = 50
	_, ok := s.Disconnect("conn-bob")
	require.True(t, ok)

	entries := s.Standings()
	require.Len(t, entries, 2)
	assert.Equal(t, "bob", entries[0].Username)
}

func TestReviewGroupsByClassification(t *testing.T) {
	s := newTestState(t, 1, "alice", "bob", "carol")
	_, err := s.Advance(PhasePlaying)
	require.NoError(t, err)

	_, err = s.SubmitAnswer("alice", "Dancing Queen", time.Second)
	require.NoError(t, err)
	_, err = s.SubmitAnswer("bob", "ABBA", time.Second)
	require.NoError(t, err)
	_, err = s.SubmitAnswer("carol", "no idea", time.Second)
	require.NoError(t, err)

	review := s.Review()
	require.Len(t, review.Groups, 3)
	// Groups come out in classification order: title, artist, then misses.
	assert.Equal(t, int32(1), review.Groups[0].Classification)
	assert.Equal(t, "alice", review.Groups[0].Entries[0].Username)
	assert.Equal(t, int32(2), review.Groups[1].Classification)
	assert.Equal(t, "bob", review.Groups[1].Entries[0].Username)
	assert.Equal(t, int32(0), review.Groups[2].Classification)
	assert.Equal(t, "carol", review.Groups[2].Entries[0].Username)
}

func TestSnapshotOmitsAnswerKey(t *testing.T) {
	s := newTestState(t, 1, "alice", "bob")
	_, err := s.Advance(PhasePlaying)
	require.NoError(t, err)
	_, err = s.SubmitAnswer("alice", "Dancing Queen", time.Second)
	require.NoError(t, err)

	snap := s.Snapshot("alice")
	assert.Equal(t, "12345", snap.Code)
	assert.Equal(t, int32(PhasePlaying), snap.Phase)
	require.NotNil(t, snap.YourAnswer)
	assert.Equal(t, "Dancing Queen", snap.YourAnswer.Text)
	require.Len(t, snap.Roster, 2)
	require.Len(t, snap.Standings, 2)

	// Players who have not answered get no answer echo.
	snap2 := s.Snapshot("bob")
	assert.Nil(t, snap2.YourAnswer)
}

func TestSongFromInfoNormalizesAnswers(t *testing.T) {
	song := SongFromInfo(&protocol.SongInfo{
		Title:         "Don't Stop Me Now",
		Artist:        "Queen",
		TitleAnswers:  []string{"dont stop"},
		LyricsAnswers: []string{"I'm having such a good time"},
	})
	assert.Equal(t, DefaultGuessLimit, song.GuessLimit)
	assert.Contains(t, song.TitleAnswers, "dont stop me now")
	assert.Contains(t, song.TitleAnswers, "dont stop")
	assert.Contains(t, song.ArtistAnswers, "queen")
	assert.Contains(t, song.LyricsAnswers, "im having such a good time")
}
