package model

// Project category shown in the directory and used to scope votes
type Tag string

const (
	TagRefryRehash Tag = "RefryRehash"
	TagNewConnect  Tag = "NewConnect"
	TagSmallData   Tag = "SmallData"
	TagOther       Tag = "Other"
)

var Tags = []Tag{TagRefryRehash, TagNewConnect, TagSmallData, TagOther}

func (t Tag) Valid() bool {
	for _, tag := range Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Hackathon edition a project or vote belongs to, e.g. "Y23"
type Year string

// Vote category: either the overall vote or a vote restricted to one tag
type VoteType string

const VoteTypeOverall VoteType = "Overall"

func (t VoteType) Valid() bool {
	return t == VoteTypeOverall || Tag(t).Valid()
}

const (
	MaxTitleLength    = 32
	MaxMembers        = 4
	DefaultProject    = "Untitled Project"
	DefaultPost       = "Untitled Post"
	DefaultVote       = "Untitled Vote"
	SecurityKeyLength = 9
)

const (
	DefaultFolderPerm = 0755
	DefaultFilePerm   = 0644
)
