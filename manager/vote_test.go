package manager

import (
	"context"
	"strconv"
	"testing"

	"hackdash/dao/model"
	"hackdash/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ballotsOf(t *testing.T, e *env, voteID uint) map[uint]model.Ballot {
	t.Helper()
	var ballots []model.Ballot
	require.NoError(t, e.db.Where("vote_id = ?", voteID).Find(&ballots).Error)
	out := make(map[uint]model.Ballot, len(ballots))
	for _, b := range ballots {
		out[b.UserID] = b
	}
	return out
}

func TestCreateVoteIssuesBallots(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.adminUser(t, "admin@example.com")
	x := testutil.CreateProject(t, e.db, "X", e.user(t, "x1@example.com"), e.user(t, "x2@example.com"))
	y := testutil.CreateProject(t, e.db, "Y", e.user(t, "y1@example.com"))
	z := testutil.CreateProject(t, e.db, "Z", e.user(t, "z1@example.com"))

	vote, err := e.votes.UpsertVote(ctx, as(admin), VoteInput{
		Title:   "Audience Choice",
		Open:    true,
		CanVote: []uint{x.ID},
		VoteFor: []uint{y.ID, z.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, model.VoteTypeOverall, vote.Type)
	assert.Equal(t, testutil.Year, vote.Year)

	ballots := ballotsOf(t, e, vote.ID)
	require.Len(t, ballots, 2)
	keys := map[string]bool{}
	for _, b := range ballots {
		assert.False(t, b.IsCast)
		assert.Len(t, b.SecurityKey, model.SecurityKeyLength)
		assert.Equal(t, x.ID, b.ProjectID)
		keys[b.SecurityKey] = true
	}
	assert.Len(t, keys, 2)

	inspected, err := e.votes.InspectVote(ctx, as(admin), vote.ID)
	require.NoError(t, err)
	assert.Len(t, inspected.CanVote, 1)
	assert.Len(t, inspected.VoteFor, 2)
	assert.Len(t, inspected.Ballots, 2)
}

func TestUpdateVoteReconcilesBallots(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.adminUser(t, "admin@example.com")
	a1, a2 := e.user(t, "a1@example.com"), e.user(t, "a2@example.com")
	b1 := e.user(t, "b1@example.com")
	pa := testutil.CreateProject(t, e.db, "A", a1, a2)
	pb := testutil.CreateProject(t, e.db, "B", b1)

	vote, err := e.votes.UpsertVote(ctx, as(admin), VoteInput{Title: "R1", Open: true, CanVote: []uint{pa.ID}})
	require.NoError(t, err)
	before := ballotsOf(t, e, vote.ID)
	require.Len(t, before, 2)

	require.NoError(t, e.votes.CastBallot(ctx, before[a1.ID].SecurityKey, a1.Email, strconv.Itoa(int(vote.ID))))

	// a2 leaves A and joins B: still eligible while B is in canVote
	require.NoError(t, e.db.Model(a2).Update("project_id", pb.ID).Error)

	_, err = e.votes.UpsertVote(ctx, as(admin), VoteInput{ID: vote.ID, Title: "R1", Open: true, CanVote: []uint{pa.ID, pb.ID}})
	require.NoError(t, err)
	after := ballotsOf(t, e, vote.ID)
	require.Len(t, after, 3)
	assert.Equal(t, before[a1.ID].SecurityKey, after[a1.ID].SecurityKey)
	assert.True(t, after[a1.ID].IsCast, "cast state survives an update")
	assert.Equal(t, before[a2.ID].SecurityKey, after[a2.ID].SecurityKey)
	assert.Contains(t, after, b1.ID)

	_, err = e.votes.UpsertVote(ctx, as(admin), VoteInput{ID: vote.ID, Title: "R1", CanVote: []uint{pb.ID}})
	require.NoError(t, err)
	after = ballotsOf(t, e, vote.ID)
	assert.Len(t, after, 2)
	assert.NotContains(t, after, a1.ID)

	_, err = e.votes.UpsertVote(ctx, as(admin), VoteInput{ID: vote.ID, Title: "R1"})
	require.NoError(t, err)
	assert.Empty(t, ballotsOf(t, e, vote.ID))
}

func TestUpsertVoteValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.adminUser(t, "admin@example.com")
	member := e.user(t, "m@example.com")

	_, err := e.votes.UpsertVote(ctx, as(member), VoteInput{Title: "x"})
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = e.votes.UpsertVote(ctx, as(admin), VoteInput{Type: "Favourite"})
	assert.ErrorIs(t, err, ErrInvalidVoteType)
	_, err = e.votes.UpsertVote(ctx, as(admin), VoteInput{CanVote: []uint{999}})
	assert.ErrorIs(t, err, ErrUnknownProject)

	vote, err := e.votes.UpsertVote(ctx, as(admin), VoteInput{Type: model.VoteType(model.TagNewConnect)})
	require.NoError(t, err)
	assert.Equal(t, model.DefaultVote, vote.Title)
	assert.Equal(t, model.VoteType(model.TagNewConnect), vote.Type)
}

func TestCastBallotIsIdempotent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.adminUser(t, "admin@example.com")
	voter := e.user(t, "voter@example.com")
	p := testutil.CreateProject(t, e.db, "P", voter)
	vote, err := e.votes.UpsertVote(ctx, as(admin), VoteInput{Title: "V", Open: true, CanVote: []uint{p.ID}})
	require.NoError(t, err)
	key := ballotsOf(t, e, vote.ID)[voter.ID].SecurityKey
	id := strconv.Itoa(int(vote.ID))

	require.NoError(t, e.votes.CastBallot(ctx, key, voter.Email, id))
	require.NoError(t, e.votes.CastBallot(ctx, key, voter.Email, id))
	assert.True(t, ballotsOf(t, e, vote.ID)[voter.ID].IsCast)

	var ballots int64
	require.NoError(t, e.db.Model(&model.Ballot{}).Count(&ballots).Error)
	assert.Equal(t, int64(1), ballots)
}

func TestCastBallotNeedsAllThreeFields(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.adminUser(t, "admin@example.com")
	voter := e.user(t, "voter@example.com")
	other := e.user(t, "other@example.com")
	p := testutil.CreateProject(t, e.db, "P", voter)
	vote, err := e.votes.UpsertVote(ctx, as(admin), VoteInput{Title: "V", Open: true, CanVote: []uint{p.ID}})
	require.NoError(t, err)
	key := ballotsOf(t, e, vote.ID)[voter.ID].SecurityKey
	id := strconv.Itoa(int(vote.ID))

	assert.ErrorIs(t, e.votes.CastBallot(ctx, "", voter.Email, id), ErrWebhookFields)
	assert.ErrorIs(t, e.votes.CastBallot(ctx, key, "", id), ErrWebhookFields)
	assert.ErrorIs(t, e.votes.CastBallot(ctx, key, voter.Email, ""), ErrWebhookFields)

	// a mismatching email leaves the ballot alone
	require.NoError(t, e.votes.CastBallot(ctx, key, other.Email, id))
	assert.False(t, ballotsOf(t, e, vote.ID)[voter.ID].IsCast)

	// so does a vote id that is not a number
	require.NoError(t, e.votes.CastBallot(ctx, key, voter.Email, "vote-"+id))
	assert.False(t, ballotsOf(t, e, vote.ID)[voter.ID].IsCast)
}

func TestViewOwnBallot(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.adminUser(t, "admin@example.com")
	voter := e.user(t, "voter@example.com")
	outsider := e.user(t, "outsider@example.com")
	p := testutil.CreateProject(t, e.db, "P", voter)
	vote, err := e.votes.UpsertVote(ctx, as(admin), VoteInput{Title: "V", CanVote: []uint{p.ID}})
	require.NoError(t, err)

	view, err := e.votes.ViewOwnBallot(ctx, as(voter), vote.ID)
	require.NoError(t, err)
	assert.Nil(t, view, "closed votes show nothing")

	_, err = e.votes.UpsertVote(ctx, as(admin), VoteInput{ID: vote.ID, Title: "V", Open: true, CanVote: []uint{p.ID}})
	require.NoError(t, err)

	view, err = e.votes.ViewOwnBallot(ctx, as(voter), vote.ID)
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, voter.Email, view.Email)
	assert.Len(t, view.SecurityKey, model.SecurityKeyLength)

	view, err = e.votes.ViewOwnBallot(ctx, as(outsider), vote.ID)
	require.NoError(t, err)
	assert.Nil(t, view)

	require.NoError(t, e.votes.CastBallot(ctx, ballotsOf(t, e, vote.ID)[voter.ID].SecurityKey, voter.Email, strconv.Itoa(int(vote.ID))))
	view, err = e.votes.ViewOwnBallot(ctx, as(voter), vote.ID)
	require.NoError(t, err)
	assert.Nil(t, view, "cast ballots are not shown again")

	_, err = e.votes.ViewOwnBallot(ctx, as(voter), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAndDeleteVotes(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.adminUser(t, "admin@example.com")
	voter := e.user(t, "voter@example.com")
	outsider := e.user(t, "outsider@example.com")
	p := testutil.CreateProject(t, e.db, "P", voter)
	vote, err := e.votes.UpsertVote(ctx, as(admin), VoteInput{Title: "V", CanVote: []uint{p.ID}, VoteFor: []uint{p.ID}})
	require.NoError(t, err)
	_, err = e.votes.UpsertVote(ctx, as(admin), VoteInput{Title: "Other"})
	require.NoError(t, err)

	all, err := e.votes.ListVotes(ctx, as(admin))
	require.NoError(t, err)
	assert.Len(t, all, 2)
	mine, err := e.votes.ListVotes(ctx, as(voter))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, vote.ID, mine[0].ID)
	none, err := e.votes.ListVotes(ctx, as(outsider))
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, e.votes.DeleteVote(ctx, as(admin), vote.ID))
	assert.ErrorIs(t, e.votes.DeleteVote(ctx, as(admin), vote.ID), ErrNotFound)
	assert.ErrorIs(t, e.votes.DeleteVote(ctx, as(admin), 0), ErrNoVote)

	var n int64
	require.NoError(t, e.db.Model(&model.Ballot{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, e.db.Table("vote_vote_for").Count(&n).Error)
	assert.Zero(t, n)
}

func TestBallotKeysAvoidStoredKeys(t *testing.T) {
	e := newEnv(t)
	keys, err := newBallotKeys(e.db, 50)
	require.NoError(t, err)
	assert.Len(t, keys, 50)
	seen := map[string]bool{}
	for _, k := range keys {
		assert.False(t, seen[k])
		seen[k] = true
	}
}
