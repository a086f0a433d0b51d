package query

import (
	"time"

	"hackdash/dao/model"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// Tables in dependency order: a table only references tables before it.
func tables() []any {
	return []any{
		&model.SystemConfigSetting{},
		&model.Project{},
		&model.User{},
		&model.ExtraLink{},
		&model.TeamInvite{},
		&model.LogoImage{},
		&model.BannerImage{},
		&model.Post{},
		&model.Vote{},
		&model.Ballot{},
		&model.VerificationToken{},
	}
}

// Migrate brings the schema up to date. A fresh database gets the current
// schema through InitSchema; later changes go into the migration list.
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			// unique (vote_id, user_id) so ballot reconciliation can skip existing rows
			ID: "2023031801",
			Migrate: func(tx *gorm.DB) error {
				// it's a good practice to copy the struct inside the function,
				// so side effects are prevented if the original struct changes during the time
				type Ballot struct {
					model.Base
					VoteID      uint   `gorm:"uniqueIndex:idx_ballot_vote_user;not null"`
					UserID      uint   `gorm:"uniqueIndex:idx_ballot_vote_user;not null"`
					ProjectID   uint   `gorm:"index;not null"`
					SecurityKey string `gorm:"uniqueIndex;type:varchar(16);not null"`
					IsCast      bool   `gorm:"not null;default:false"`
				}
				if tx.Migrator().HasIndex(&Ballot{}, "idx_ballot_vote_user") {
					return nil
				}
				return tx.Migrator().CreateIndex(&Ballot{}, "idx_ballot_vote_user")
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropIndex(&model.Ballot{}, "idx_ballot_vote_user")
			},
		},
		{
			// sign-in links are single use
			ID: "2023040201",
			Migrate: func(tx *gorm.DB) error {
				type VerificationToken struct {
					Token     string    `gorm:"primaryKey;type:varchar(36)"`
					Email     string    `gorm:"type:varchar(256);not null;index"`
					ExpiresAt time.Time `gorm:"not null;index"`
				}
				return tx.AutoMigrate(&VerificationToken{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("verification_tokens")
			},
		},
	})

	m.InitSchema(func(tx *gorm.DB) error {
		return tx.AutoMigrate(tables()...)
	})

	return m.Migrate()
}
