package model

// Vote is an organizer-run voting round. CanVote lists the projects whose
// members receive a ballot; VoteFor lists the candidates.
type Vote struct {
	Base
	Title       string   `gorm:"type:varchar(32);not null;comment:标题" json:"title"`
	Description string   `gorm:"type:text;comment:说明" json:"description"`
	LinkedForm  string   `gorm:"type:varchar(512);comment:外部表单标识" json:"linkedForm"`
	Open        bool     `gorm:"not null;default:false;comment:是否开放投票" json:"open"`
	Type        VoteType `gorm:"type:varchar(32);not null;default:'Overall'" json:"type"`
	Year        Year     `gorm:"type:varchar(8);not null;index" json:"year"`

	CanVote []Project `gorm:"many2many:vote_can_vote;constraint:OnDelete:CASCADE;" json:"canVote"`
	VoteFor []Project `gorm:"many2many:vote_vote_for;constraint:OnDelete:CASCADE;" json:"voteFor"`
	Ballots []Ballot  `json:"ballots,omitempty"`
}

// Ballot is one eligible user's credential for one vote. SecurityKey is
// the shared secret the external form posts back through the webhook.
type Ballot struct {
	Base
	VoteID      uint   `gorm:"uniqueIndex:idx_ballot_vote_user;not null" json:"voteId"`
	Vote        *Vote  `json:"vote,omitempty"`
	UserID      uint   `gorm:"uniqueIndex:idx_ballot_vote_user;not null" json:"userId"`
	User        *User  `json:"user,omitempty"`
	ProjectID   uint   `gorm:"index;not null" json:"projectId"`
	SecurityKey string `gorm:"uniqueIndex;type:varchar(16);not null" json:"securityKey"`
	IsCast      bool   `gorm:"not null;default:false" json:"isCast"`
}
