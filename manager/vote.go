package manager

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"hackdash/dao/model"
	"hackdash/logutils"
	"hackdash/settings"
	"hackdash/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// keyAttempts bounds ballot key regeneration after collisions.
const keyAttempts = 8

type Votes struct {
	db   *gorm.DB
	year model.Year
}

func NewVotes(db *gorm.DB, year model.Year) *Votes {
	return &Votes{db: db, year: year}
}

type VoteInput struct {
	ID          uint
	Title       string
	Description string
	LinkedForm  string
	Open        bool
	Type        model.VoteType
	CanVote     []uint
	VoteFor     []uint
}

func uniqueIDs(ids []uint) []uint {
	out := make([]uint, 0, len(ids))
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func loadProjects(tx *gorm.DB, ids []uint) ([]model.Project, error) {
	ids = uniqueIDs(ids)
	projects := []model.Project{}
	if len(ids) == 0 {
		return projects, nil
	}
	if err := tx.Where("id IN ?", ids).Find(&projects).Error; err != nil {
		return nil, err
	}
	if len(projects) != len(ids) {
		return nil, ErrUnknownProject
	}
	return projects, nil
}

func replaceProjects(tx *gorm.DB, vote *model.Vote, name string, projects []model.Project) error {
	assoc := tx.Model(vote).Association(name)
	if len(projects) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(projects)
}

// UpsertVote creates or updates a vote and reconciles its ballots with
// the current members of the CanVote projects: ballots of users who are no
// longer eligible are deleted, newly eligible users get a fresh ballot and
// existing ballots keep their cast state.
func (m *Votes) UpsertVote(ctx context.Context, p Principal, in VoteInput) (*model.Vote, error) {
	if _, err := requireAdmin(p); err != nil {
		return nil, err
	}
	voteType := in.Type
	if voteType == "" {
		voteType = model.VoteTypeOverall
	}
	if !voteType.Valid() {
		return nil, ErrInvalidVoteType
	}

	var vote model.Vote
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		canVote, err := loadProjects(tx, in.CanVote)
		if err != nil {
			return err
		}
		voteFor, err := loadProjects(tx, in.VoteFor)
		if err != nil {
			return err
		}

		found := false
		if in.ID != 0 {
			err := tx.Take(&vote, in.ID).Error
			switch {
			case err == nil:
				found = true
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}
		}
		if !found {
			vote = model.Vote{Year: m.year}
		}
		vote.Title = util.OrDefault(in.Title, model.MaxTitleLength, model.DefaultVote)
		vote.Description = in.Description
		vote.LinkedForm = in.LinkedForm
		vote.Open = in.Open
		vote.Type = voteType

		if found {
			err = tx.Omit(clause.Associations).Save(&vote).Error
		} else {
			err = tx.Omit(clause.Associations).Create(&vote).Error
		}
		if err != nil {
			return err
		}
		if err := replaceProjects(tx, &vote, "CanVote", canVote); err != nil {
			return err
		}
		if err := replaceProjects(tx, &vote, "VoteFor", voteFor); err != nil {
			return err
		}
		return m.reconcileBallots(tx, &vote, canVote)
	})
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

func (m *Votes) reconcileBallots(tx *gorm.DB, vote *model.Vote, canVote []model.Project) error {
	projectIDs := make([]uint, 0, len(canVote))
	for _, p := range canVote {
		projectIDs = append(projectIDs, p.ID)
	}
	var eligible []model.User
	if len(projectIDs) > 0 {
		if err := tx.Where("project_id IN ?", projectIDs).Order("id").Find(&eligible).Error; err != nil {
			return err
		}
	}

	userIDs := make([]uint, 0, len(eligible))
	for _, u := range eligible {
		userIDs = append(userIDs, u.ID)
	}
	stale := tx.Where("vote_id = ?", vote.ID)
	if len(userIDs) > 0 {
		stale = stale.Where("user_id NOT IN ?", userIDs)
	}
	if err := stale.Delete(&model.Ballot{}).Error; err != nil {
		return err
	}

	var holders []uint
	if err := tx.Model(&model.Ballot{}).Where("vote_id = ?", vote.ID).Pluck("user_id", &holders).Error; err != nil {
		return err
	}
	has := make(map[uint]struct{}, len(holders))
	for _, id := range holders {
		has[id] = struct{}{}
	}

	var missing []model.User
	for _, u := range eligible {
		if _, ok := has[u.ID]; !ok {
			missing = append(missing, u)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	keys, err := newBallotKeys(tx, len(missing))
	if err != nil {
		return err
	}
	ballots := make([]model.Ballot, 0, len(missing))
	for i, u := range missing {
		ballots = append(ballots, model.Ballot{
			VoteID:      vote.ID,
			UserID:      u.ID,
			ProjectID:   *u.ProjectID,
			SecurityKey: keys[i],
		})
	}
	logutils.Log.WithFields(logutils.Fields{
		"vote":    vote.ID,
		"created": len(ballots),
	}).Info("ballots issued")
	return tx.Create(&ballots).Error
}

// newBallotKeys returns n security keys that are unique among themselves
// and among the keys already stored.
func newBallotKeys(tx *gorm.DB, n int) ([]string, error) {
	keys := make([]string, 0, n)
	seen := make(map[string]struct{}, n)
	for attempt := 0; len(keys) < n; attempt++ {
		if attempt == keyAttempts {
			return nil, fmt.Errorf("could not generate %d unique ballot keys", n)
		}
		batch := make([]string, 0, n-len(keys))
		for len(batch) < n-len(keys) {
			key, err := util.RandomKey(model.SecurityKeyLength)
			if err != nil {
				return nil, err
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			batch = append(batch, key)
		}
		var used []string
		if err := tx.Model(&model.Ballot{}).Where("security_key IN ?", batch).Pluck("security_key", &used).Error; err != nil {
			return nil, err
		}
		taken := make(map[string]struct{}, len(used))
		for _, k := range used {
			taken[k] = struct{}{}
		}
		for _, k := range batch {
			if _, ok := taken[k]; !ok {
				keys = append(keys, k)
			}
		}
	}
	return keys, nil
}

// CastBallot marks the ballot matching all three fields as cast. Calling it
// again for a cast ballot, or for fields matching nothing, changes nothing.
func (m *Votes) CastBallot(ctx context.Context, securityKey, email, voteID string) error {
	securityKey = strings.TrimSpace(securityKey)
	email = settings.NormalizeEmail(email)
	voteID = strings.TrimSpace(voteID)
	if securityKey == "" || email == "" || voteID == "" {
		return ErrWebhookFields
	}
	id, err := strconv.ParseUint(voteID, 10, 64)
	if err != nil {
		logutils.Log.WithFields(logutils.Fields{"vote": voteID, "email": email}).Warn("webhook matched no ballot")
		return nil
	}

	db := m.db.WithContext(ctx)
	users := db.Model(&model.User{}).Select("id").Where("email = ?", email)
	res := db.Model(&model.Ballot{}).
		Where("security_key = ? AND vote_id = ? AND user_id IN (?)", securityKey, uint(id), users).
		Update("is_cast", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		logutils.Log.WithFields(logutils.Fields{"vote": id, "email": email}).Warn("webhook matched no ballot")
	}
	return nil
}

// BallotView is what a voter needs to fill in the external form.
type BallotView struct {
	Vote        *model.Vote `json:"vote"`
	SecurityKey string      `json:"securityKey"`
	Email       string      `json:"email"`
}

// ViewOwnBallot returns the caller's uncast ballot for an open vote. A nil
// view with a nil error means there is nothing to show and the caller
// should be sent elsewhere.
func (m *Votes) ViewOwnBallot(ctx context.Context, p Principal, voteID uint) (*BallotView, error) {
	user, err := requireUser(p)
	if err != nil {
		return nil, err
	}
	db := m.db.WithContext(ctx)
	var vote model.Vote
	err = db.Preload("VoteFor").Take(&vote, voteID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if user.IsAdmin || !vote.Open {
		return nil, nil
	}

	var ballot model.Ballot
	err = db.Where("vote_id = ? AND user_id = ?", vote.ID, user.ID).Take(&ballot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if ballot.IsCast {
		return nil, nil
	}
	return &BallotView{Vote: &vote, SecurityKey: ballot.SecurityKey, Email: user.Email}, nil
}

// InspectVote returns a vote with its project sets and every ballot.
func (m *Votes) InspectVote(ctx context.Context, p Principal, voteID uint) (*model.Vote, error) {
	if _, err := requireAdmin(p); err != nil {
		return nil, err
	}
	var vote model.Vote
	err := m.db.WithContext(ctx).
		Preload("CanVote").
		Preload("VoteFor").
		Preload("Ballots", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Ballots.User").
		Take(&vote, voteID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

// ListVotes returns every vote to admins and, to anyone else, the votes
// they hold a ballot for.
func (m *Votes) ListVotes(ctx context.Context, p Principal) ([]model.Vote, error) {
	user, err := requireUser(p)
	if err != nil {
		return nil, err
	}
	votes := []model.Vote{}
	q := m.db.WithContext(ctx).Order("id")
	if !user.IsAdmin {
		ballots := m.db.WithContext(ctx).Model(&model.Ballot{}).Select("vote_id").Where("user_id = ?", user.ID)
		q = q.Where("id IN (?)", ballots)
	}
	err = q.Find(&votes).Error
	return votes, err
}

// DeleteVote removes a vote with its ballots and project links.
func (m *Votes) DeleteVote(ctx context.Context, p Principal, voteID uint) error {
	if _, err := requireAdmin(p); err != nil {
		return err
	}
	if voteID == 0 {
		return ErrNoVote
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var vote model.Vote
		err := tx.Take(&vote, voteID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := tx.Where("vote_id = ?", vote.ID).Delete(&model.Ballot{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&vote).Association("CanVote").Clear(); err != nil {
			return err
		}
		if err := tx.Model(&vote).Association("VoteFor").Clear(); err != nil {
			return err
		}
		return tx.Delete(&vote).Error
	})
}
