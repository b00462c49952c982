package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-trust/internal/data/repos/community"
	"github.com/yungbote/neurobridge-trust/internal/data/repos/learning"
	"github.com/yungbote/neurobridge-trust/internal/data/repos/trust"
	"github.com/yungbote/neurobridge-trust/internal/data/repos/user"
	"github.com/yungbote/neurobridge-trust/internal/pkg/logger"
)

type UserRepo = user.UserRepo

type VoteRepo = community.VoteRepo
type AnswerRepo = community.AnswerRepo
type ActivityLogRepo = community.ActivityLogRepo

type MasteryRepo = learning.MasteryRepo
type FactCheckRepo = learning.FactCheckRepo

type FingerprintRepo = trust.FingerprintRepo
type AbuseFlagRepo = trust.AbuseFlagRepo
type SnapshotRepo = trust.SnapshotRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewVoteRepo(db *gorm.DB, baseLog *logger.Logger) VoteRepo {
	return community.NewVoteRepo(db, baseLog)
}
func NewAnswerRepo(db *gorm.DB, baseLog *logger.Logger) AnswerRepo {
	return community.NewAnswerRepo(db, baseLog)
}
func NewActivityLogRepo(db *gorm.DB, baseLog *logger.Logger) ActivityLogRepo {
	return community.NewActivityLogRepo(db, baseLog)
}

func NewMasteryRepo(db *gorm.DB, baseLog *logger.Logger) MasteryRepo {
	return learning.NewMasteryRepo(db, baseLog)
}
func NewFactCheckRepo(db *gorm.DB, baseLog *logger.Logger) FactCheckRepo {
	return learning.NewFactCheckRepo(db, baseLog)
}

func NewFingerprintRepo(db *gorm.DB, baseLog *logger.Logger) FingerprintRepo {
	return trust.NewFingerprintRepo(db, baseLog)
}
func NewAbuseFlagRepo(db *gorm.DB, baseLog *logger.Logger) AbuseFlagRepo {
	return trust.NewAbuseFlagRepo(db, baseLog)
}
func NewSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) SnapshotRepo {
	return trust.NewSnapshotRepo(db, baseLog)
}
