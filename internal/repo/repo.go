package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type GormRepo struct {
	DB *gorm.DB
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	case strings.Contains(strings.ToLower(err.Error()), "unique constraint"):
		return ErrDuplicate
	default:
		return err
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching s anywhere, with wildcards
// in s taken literally.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

const ilikeExpr = ` LIKE LOWER(?) ESCAPE '\'`

func whereContainsFold(q *gorm.DB, column, value string) *gorm.DB {
	return q.Where("LOWER("+column+")"+ilikeExpr, containsPattern(value))
}
