package xsql

import (
	"database/sql"
	"errors"
	"fmt"
)

type String string

func (str *String) Scan(src any) error {
	var base sql.NullString
	if err := base.Scan(src); err != nil {
		return err
	}

	if !base.Valid {
		return errors.New("String.Scan: null value")
	}

	*str = String(base.String)
	return nil
}

// List scans a list column. A NULL list scans into an empty list.
type List[T any, PT interface {
	*T
	sql.Scanner
}] []T

func (l *List[T, PT]) Scan(src any) error {
	if src == nil {
		*l = make([]T, 0)
		return nil
	}

	values, ok := src.([]any)
	if !ok {
		return fmt.Errorf("List.Scan: %T is not a []any", src)
	}

	result := make([]T, len(values))
	for i := range values {
		var ptr PT = &result[i]
		if err := ptr.Scan(values[i]); err != nil {
			return fmt.Errorf("List.Scan: element %d: %w", i, err)
		}
	}

	*l = result
	return nil
}
