//go:build !sqlite

package history

import "github.com/pkg/errors"

func newSQLiteStore(_ string) (Store, error) {
	return nil, errors.New("sqlite history unavailable in this build; rebuild with -tags sqlite")
}
