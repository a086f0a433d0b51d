package manager

import "errors"

var (
	ErrUnauthorized = errors.New("Unauthorized")
	ErrNotFound     = errors.New("Not Found")
)

// RuleError is a business-rule violation; its message is shown to the user.
type RuleError struct {
	Msg string
}

func (e *RuleError) Error() string {
	return e.Msg
}

func rule(msg string) error {
	return &RuleError{Msg: msg}
}

// Rule violations, shared by the team, image, post, vote and admin paths.
var (
	ErrEditingDisabled  = rule("Project editing is not currently allowed")
	ErrAdminNoProject   = rule("Admins cannot join projects.")
	ErrAlreadyInProject = rule("Already in a project.")
	ErrNotInProject     = rule("Not currently in a project.")
	ErrProjectFull      = rule("Project is full.")
	ErrNoEmail          = rule("No email provided.")
	ErrAlreadyMember    = rule("User already in project.")
	ErrAlreadyInvited   = rule("User already invited.")
	ErrNoSuchUser       = rule("No user found with that email.")
	ErrInviteNotFound   = rule("Invite not found.")
	ErrInvalidTag       = rule("Unknown project tag.")
	ErrNoImage          = rule("No image found.")
	ErrNoSlug           = rule("No slug provided.")
	ErrSlugTaken        = rule("Slug already in use.")
	ErrNoPost           = rule("No post provided.")
	ErrNoVote           = rule("No vote provided.")
	ErrInvalidVoteType  = rule("Unknown vote type.")
	ErrUnknownProject   = rule("Some projects do not exist.")
	ErrInvalidEmails    = rule("Some emails are not valid.")
	ErrNoAdmins         = rule("This operation will result in 0 admin accounts.")
	ErrNoUsers          = rule("This operation will result in 0 users.")
	ErrNotSingleUser    = rule("This operation is only allowed when there is 1 user.")
	ErrWebhookFields    = rule("No security key, email, or vote ID provided.")
)

// IsRule reports whether err is a business-rule violation.
func IsRule(err error) bool {
	var re *RuleError
	return errors.As(err, &re)
}
