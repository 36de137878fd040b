package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-tennis-features/internal/model"
)

const matchHeader = "tourney_id,tourney_name,surface,draw_size,tourney_level,tourney_date,match_num," +
	"winner_id,winner_seed,winner_entry,winner_name,loser_id,loser_seed,loser_entry,loser_name," +
	"score,best_of,round,minutes," +
	"w_ace,w_df,w_svpt,w_1stIn,w_1stWon,w_2ndWon,w_SvGms,w_bpSaved,w_bpFaced," +
	"l_ace,l_df,l_svpt,l_1stIn,l_1stWon,l_2ndWon,l_SvGms,l_bpSaved,l_bpFaced," +
	"winner_rank,winner_rank_points,loser_rank,loser_rank_points\n"

func TestParseDate(t *testing.T) {
	want := time.Date(2010, 1, 4, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"20100104", "20100104.0", " 20100104 "} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), in)
	}
	for _, in := range []string{"", "2010-01-04", "abc", "20101304"} {
		_, err := ParseDate(in)
		assert.Error(t, err, in)
	}
}

func TestReadMatches(t *testing.T) {
	in := matchHeader +
		"2019-580,Australian Open,Hard,128,G,20190114,101,104925,1,,Novak Djokovic,105227,,Q,Some One," +
		"6-3 6-2 6-2,5,R128,110,10,2,80,50,40,18,15,3,4,5,6,90,55,30,20,14,8,12,1,9000,230,150\n" +
		"2019-580,Australian Open,,128,,20190114.0,102,1,,,A,2,,,B,,,,,,,,,,,,,,,,,,,,,,,,,,\n" +
		"2019-580,Australian Open,Hard,128,G,bad,103,1,,,A,2,,,B,,5,R128,,,,,,,,,,,,,,,,,,,,,,,\n" +
		"2019-580,Australian Open,Hard,128,G,20190114,104,,,,A,2,,,B,,5,R128,,,,,,,,,,,,,,,,,,,,,,,\n"

	ms, dropped, err := ReadMatches(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 2, dropped)
	require.Len(t, ms, 2)

	m := ms[0]
	assert.Equal(t, "2019-580", m.TourneyID)
	assert.Equal(t, "G", m.Level)
	assert.Equal(t, model.SurfaceHard, m.Surface)
	assert.Equal(t, "R128", m.Round)
	assert.Equal(t, 101, m.MatchNum)
	assert.Equal(t, 104925, m.WinnerID)
	assert.Equal(t, 105227, m.LoserID)
	assert.Equal(t, "Q", m.LoserEntry)
	assert.Empty(t, m.WinnerEntry)
	require.NotNil(t, m.WinnerSeed)
	assert.Equal(t, 1.0, *m.WinnerSeed)
	assert.Nil(t, m.LoserSeed)
	require.NotNil(t, m.Minutes)
	assert.Equal(t, 110.0, *m.Minutes)
	require.NotNil(t, m.BestOf)
	assert.Equal(t, 5.0, *m.BestOf)
	assert.Equal(t, 10.0, *m.WinnerServe.Aces)
	assert.Equal(t, 4.0, *m.WinnerServe.BPFaced)
	assert.Equal(t, 55.0, *m.LoserServe.FirstIn)
	assert.Equal(t, 1.0, *m.WinnerRank)
	assert.Equal(t, 150.0, *m.LoserRankPoints)

	blank := ms[1]
	assert.Equal(t, model.SurfaceUnknown, blank.Surface)
	assert.Equal(t, "UNK", blank.Level)
	assert.Equal(t, "UNK", blank.Round)
	assert.Nil(t, blank.BestOf)
	assert.Nil(t, blank.Minutes)
	assert.Nil(t, blank.WinnerRank)
	assert.Nil(t, blank.WinnerServe.Aces)
}

func TestReadMatchesEmpty(t *testing.T) {
	ms, dropped, err := ReadMatches(strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, dropped)
	assert.Empty(t, ms)
}

func TestReadRankings(t *testing.T) {
	in := "ranking_date,rank,player,points\n" +
		"20100104,1,103819,10550\n" +
		"20100104,2,104745,\n" +
		"oops,3,1,1\n"
	snaps, dropped, err := ReadRankings(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)
	require.Len(t, snaps, 2)
	assert.Equal(t, 103819, snaps[0].PlayerID)
	assert.Equal(t, 1.0, snaps[0].Rank)
	assert.Equal(t, 10550.0, snaps[0].Points)
	assert.Zero(t, snaps[1].Points)
}

func TestReadRankingsWithoutHeader(t *testing.T) {
	in := "20100104,1,103819,10550\n20100111,1,103819,10600\n"
	snaps, dropped, err := ReadRankings(strings.NewReader(in))
	require.NoError(t, err)
	assert.Zero(t, dropped)
	require.Len(t, snaps, 2)
	assert.Equal(t, 10600.0, snaps[1].Points)
}

func TestSplit(t *testing.T) {
	ms := []model.Match{{Round: "R32"}, {Round: "Q1"}, {Round: "F"}, {Round: "QF"}, {Round: "QR"}, {Round: "Q3"}}
	main, qual := Split(ms)
	require.Len(t, main, 3)
	require.Len(t, qual, 3)
	assert.Equal(t, "QF", main[2].Round, "quarterfinals stay in the main draw")
	assert.Equal(t, "QR", qual[1].Round)
	assert.Equal(t, "F", main[1].Round)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoaderMatches(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, MatchFile(2011), matchHeader+
		"2011-1,X,Clay,32,A,20110301,2,1,,,A,2,,,B,,3,R32,,,,,,,,,,,,,,,,,,,,,,,\n"+
		"2011-1,X,Clay,32,A,20110301,1,3,,,C,4,,,D,,3,R32,,,,,,,,,,,,,,,,,,,,,,,\n")
	writeFile(t, dir, MatchFile(2010), matchHeader+
		"2010-1,Y,Hard,32,A,20100301,1,5,,,E,6,,,F,,3,R32,,,,,,,,,,,,,,,,,,,,,,,\n")
	writeFile(t, dir, MatchFile(2012), matchHeader+
		"2012-1,Z,Hard,32,A,20120301,1,7,,,G,8,,,H,,3,R32,,,,,,,,,,,,,,,,,,,,,,,\n")

	l := New(dir, nil)
	ms, err := l.Matches(2009, 2011)
	require.NoError(t, err)
	require.Len(t, ms, 3)
	assert.Equal(t, 5, ms[0].WinnerID)
	assert.Equal(t, 3, ms[1].WinnerID, "sorted by match number within a tournament")
	assert.Equal(t, 1, ms[2].WinnerID)
}

func TestLoaderMatchesNone(t *testing.T) {
	_, err := New(t.TempDir(), nil).Matches(2010, 2012)
	assert.ErrorIs(t, err, ErrNoMatches)
}

func TestLoaderRankingsYearFilter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "atp_rankings_00s.csv", "ranking_date,rank,player,points\n"+
		"20080107,1,1,100\n"+
		"20091228,5,1,90\n")
	writeFile(t, dir, "atp_rankings_10s.csv", "ranking_date,rank,player,points\n"+
		"20100104,4,1,95\n"+
		"20120102,3,1,99\n")

	snaps, err := New(dir, nil).Rankings(2010, 2011)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, 2009, snaps[0].Date.Year())
	assert.Equal(t, 2010, snaps[1].Date.Year())
}
