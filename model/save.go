package model

import (
	"context"
	"fmt"
	"reflect"

	"github.com/Konsultn-Engineering/sqlib/database"
	"github.com/Konsultn-Engineering/sqlib/query"
	"github.com/Konsultn-Engineering/sqlib/schema"
)

// Save writes m. A model whose primary key is set is updated in place;
// otherwise it is inserted and its primary key back-filled.
//
// Primary keys with a generator are filled before the insert. Otherwise
// the new key is read with RETURNING when the dialect supports it, then
// from the driver's LastInsertId, and finally with the dialect's last
// inserted id statement.
func Save(ctx context.Context, db database.Database, m any) error {
	info, v, err := resolve("Save", m)
	if err != nil {
		return err
	}

	pk := info.Primary
	if pk != nil && !pk.IsZero(v) {
		return update(ctx, db, info, v)
	}

	generated := false
	if pk != nil && pk.Generator != "" {
		id, err := schema.GenerateID(pk.Generator)
		if err != nil {
			return fmt.Errorf("model: Save %s: %w", info.Type, err)
		}
		if err := pk.Set(v, id); err != nil {
			return err
		}
		generated = true
	}
	return insert(ctx, db, info, v, generated)
}

func update(ctx context.Context, db database.Database, info *schema.ModelInfo, v reflect.Value) error {
	pk := info.Primary
	u := query.NewUpdate(db, info.Table)
	for _, f := range info.Fillables {
		if f == pk {
			continue
		}
		u.Set(f.Column, f.Interface(v))
	}
	if len(u.Sets()) == 0 {
		return nil
	}
	_, err := u.WhereEq(pk.Column, pk.Interface(v)).Execute(ctx)
	return err
}

func insert(ctx context.Context, db database.Database, info *schema.ModelInfo, v reflect.Value, generated bool) error {
	pk := info.Primary
	backfill := pk != nil && !generated

	var (
		cols   []string
		values []any
	)
	for _, f := range info.Fillables {
		// An unset key is left to the column default.
		if backfill && f == pk {
			continue
		}
		cols = append(cols, f.Column)
		values = append(values, f.Interface(v))
	}
	if len(cols) == 0 {
		return fmt.Errorf("model: Save %s: %w", info.Type, query.ErrEmptyInsert)
	}

	ins := query.NewInsert(db, info.Table, cols...).Values(values...)
	if !backfill {
		_, err := ins.Execute(ctx)
		return err
	}

	if db.Dialect().SupportsReturning() {
		rm, err := ins.Returning(pk.Column).ExecuteReturning(ctx)
		if err != nil {
			return err
		}
		row, ok := rm.First()
		if !ok {
			return fmt.Errorf("model: Save %s: insert returned no row: %w", info.Type, database.ErrExecution)
		}
		id, err := row.At(0)
		if err != nil {
			return err
		}
		return pk.Set(v, id)
	}

	res, err := ins.Execute(ctx)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil && id != 0 {
		return pk.Set(v, id)
	}
	return lastInsertID(ctx, db, info, v)
}

// lastInsertID back-fills the primary key with the dialect's last inserted
// id statement. Pooled connections may answer it from another session, so
// it is only the last resort.
func lastInsertID(ctx context.Context, db database.Database, info *schema.ModelInfo, v reflect.Value) error {
	rm, err := db.ExecuteQuery(ctx, db.Dialect().LastInsertIDQuery(), nil)
	if err != nil {
		return err
	}
	row, ok := rm.First()
	if !ok {
		return fmt.Errorf("model: Save %s: no last inserted id: %w", info.Type, database.ErrExecution)
	}
	id, err := row.Get("id")
	if err != nil {
		return err
	}
	return info.Primary.Set(v, id)
}
