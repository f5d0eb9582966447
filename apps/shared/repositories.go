package shared

import (
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/womanacademy/renluyen/core"
	"github.com/womanacademy/renluyen/core/calendar"
	"github.com/womanacademy/renluyen/core/chat"
	"github.com/womanacademy/renluyen/core/evaluation"
	"github.com/womanacademy/renluyen/core/notification"
	"github.com/womanacademy/renluyen/core/student"
	"github.com/womanacademy/renluyen/storage/database"
	inmemdb "github.com/womanacademy/renluyen/storage/database/inmem"
	sqlxrepos "github.com/womanacademy/renluyen/storage/database/sqlx"
)

const (
	EngineMemory   = "memory"
	EnginePostgres = "postgres"
)

type Repositories struct {
	Evaluation   evaluation.Repository
	Student      student.Repository
	Notification notification.Repository
	Chat         chat.Repository
	Calendar     calendar.Repository

	DB    *sqlx.DB // nil with the memory engine
	close func() error
}

// Close releases the underlying database, if any.
func (r Repositories) Close() error {
	if r.close == nil {
		return nil
	}
	return r.close()
}

// OpenRepositories returns the repositories of the configured database engine.
// With postgres, the database is created when missing and migrated when migrate is set.
func OpenRepositories(conf *core.Config, migrate bool) (Repositories, error) {
	switch conf.Database.Engine {
	case EngineMemory, "":
		db := inmemdb.Open()
		return Repositories{
			Evaluation:   inmemdb.NewEvaluationRepository(db),
			Student:      inmemdb.NewStudentRepository(db),
			Notification: inmemdb.NewNotificationRepository(db),
			Chat:         inmemdb.NewChatRepository(db),
			Calendar:     inmemdb.NewCalendarRepository(db),
		}, nil

	case EnginePostgres:
		if migrate {
			if err := database.CreateIfNotExist(conf); err != nil {
				return Repositories{}, err
			}
		}
		db, err := database.Open(conf)
		if err != nil {
			return Repositories{}, err
		}
		if migrate {
			if err = database.Migrate(db.DB); err != nil {
				_ = db.Close()
				return Repositories{}, err
			}
		}
		return Repositories{
			Evaluation:   sqlxrepos.NewEvaluationRepository(db),
			Student:      sqlxrepos.NewStudentRepository(db),
			Notification: sqlxrepos.NewNotificationRepository(db),
			Chat:         sqlxrepos.NewChatRepository(db),
			Calendar:     sqlxrepos.NewCalendarRepository(db),
			DB:           db,
			close:        db.Close,
		}, nil

	default:
		return Repositories{}, errors.Errorf("unknown database engine %q", conf.Database.Engine)
	}
}
