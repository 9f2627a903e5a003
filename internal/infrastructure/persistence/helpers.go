package persistence

import (
	"errors"
	"strings"

	"github.com/projectmgmt/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// likeEscaper escapes LIKE wildcards so user input only matches literally
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a lowercase "contains" LIKE pattern for query.
// An empty query yields "%%", which matches every non-null value.
func containsPattern(query string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
}

// ilike is a portable case-insensitive LIKE condition for column
func ilike(column string) string {
	return "LOWER(" + column + `) LIKE ? ESCAPE '\'`
}

// notFound maps gorm.ErrRecordNotFound to shared.ErrNotFound
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// firstID returns the lowest id in ids, reporting whether there was one
func firstID(ids []int) (int, bool) {
	if len(ids) == 0 {
		return 0, false
	}
	return ids[0], true
}
