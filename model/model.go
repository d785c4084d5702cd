// Package model maps tagged structs to rows. Every operation resolves the
// struct's mapping through the schema registry and runs through the query
// objects, so all of them render for the Database's dialect.
//
//	type Player struct {
//		schema.Table `table:"players"`
//		ID      int64   `db:"column:id;primary"`
//		Name    string  `db:"name"`
//		Balance float64 `db:"balance"`
//	}
//
//	p := &Player{Name: "ada"}
//	err := model.Save(ctx, db, p) // INSERT, then p.ID is back-filled
//	found, err := model.Find[Player](ctx, db, p.ID)
package model

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/Konsultn-Engineering/sqlib/ast"
	"github.com/Konsultn-Engineering/sqlib/builder"
	"github.com/Konsultn-Engineering/sqlib/database"
	"github.com/Konsultn-Engineering/sqlib/query"
	"github.com/Konsultn-Engineering/sqlib/result"
	"github.com/Konsultn-Engineering/sqlib/schema"
)

// ErrOperationInvalid is returned when an operation needs a primary key
// value the model does not have, or the model is not a struct pointer.
var ErrOperationInvalid = errors.New("invalid model operation")

// resolve returns the mapping of m and the struct value it points to.
func resolve(op string, m any) (*schema.ModelInfo, reflect.Value, error) {
	v := reflect.ValueOf(m)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return nil, reflect.Value{}, fmt.Errorf("model: %s expects a non-nil pointer to a struct, got %T: %w", op, m, ErrOperationInvalid)
	}
	info, err := schema.Lookup(v.Type())
	if err != nil {
		return nil, reflect.Value{}, err
	}
	return info, v.Elem(), nil
}

// primaryOf returns info's primary field or ErrOperationInvalid.
func primaryOf(op string, info *schema.ModelInfo) (*schema.ModelField, error) {
	if !info.HasPrimary() {
		return nil, fmt.Errorf("model: %s on %s: no primary field: %w", op, info.Type, ErrOperationInvalid)
	}
	return info.Primary, nil
}

// Find loads the row whose primary key equals id. It returns nil and no
// error when there is no such row.
func Find[T any](ctx context.Context, db database.Database, id any) (*T, error) {
	info, err := schema.Of[T]()
	if err != nil {
		return nil, err
	}
	pk, err := primaryOf("Find", info)
	if err != nil {
		return nil, err
	}

	rm, err := query.NewSelect(db, info.Table, info.Columns()...).
		WhereEq(pk.Column, id).
		Limit(1).
		Execute(ctx)
	if err != nil {
		return nil, err
	}
	row, ok := rm.First()
	if !ok {
		return nil, nil
	}
	return Construct[T](row)
}

// Construct builds a T from row. Every fillable column must be present in
// the row, matched case-insensitively.
func Construct[T any](row *result.Result) (*T, error) {
	info, err := schema.Of[T]()
	if err != nil {
		return nil, err
	}
	out := new(T)
	if err := fill(info, reflect.ValueOf(out).Elem(), row); err != nil {
		return nil, err
	}
	return out, nil
}

// ConstructAll builds one T per row of rm, in order.
func ConstructAll[T any](rm *result.ResultMap) ([]*T, error) {
	info, err := schema.Of[T]()
	if err != nil {
		return nil, err
	}
	return constructAll[T](info, info.Fillables, rm)
}

// constructColumns builds one T per row of rm, filling only columns.
func constructColumns[T any](info *schema.ModelInfo, rm *result.ResultMap, columns []string) ([]*T, error) {
	fields := make([]*schema.ModelField, 0, len(columns))
	for _, c := range columns {
		f, ok := info.Field(c)
		if !ok {
			return nil, fmt.Errorf("model: construct %s: %q is not a mapped column: %w", info.Type, c, ErrOperationInvalid)
		}
		fields = append(fields, f)
	}
	return constructAll[T](info, fields, rm)
}

func constructAll[T any](info *schema.ModelInfo, fields []*schema.ModelField, rm *result.ResultMap) ([]*T, error) {
	out := make([]*T, 0, rm.Len())
	for _, row := range rm.Rows() {
		item := new(T)
		if err := fillFields(info, fields, reflect.ValueOf(item).Elem(), row); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func fill(info *schema.ModelInfo, v reflect.Value, row *result.Result) error {
	return fillFields(info, info.Fillables, v, row)
}

func fillFields(info *schema.ModelInfo, fields []*schema.ModelField, v reflect.Value, row *result.Result) error {
	for _, f := range fields {
		val, err := row.Get(f.Column)
		if err != nil {
			return fmt.Errorf("model: construct %s: %w", info.Type, err)
		}
		if err := f.Set(v, val); err != nil {
			return err
		}
	}
	return nil
}

// Raw runs sql as is and constructs a T per returned row.
func Raw[T any](ctx context.Context, db database.Database, sql string, params *database.Parameters) ([]*T, error) {
	rm, err := db.ExecuteQuery(ctx, sql, params)
	if err != nil {
		return nil, err
	}
	return ConstructAll[T](rm)
}

// RawWhere runs sql with where appended as its WHERE clause and constructs a
// T per returned row. Bound names skip those already in params.
func RawWhere[T any](ctx context.Context, db database.Database, sql string, params *database.Parameters, where builder.Group) ([]*T, error) {
	q := query.NewRaw(db, sql, params)
	for _, c := range where.Conditions() {
		r := ast.And
		if c != nil {
			r = c.Relation()
		}
		q.Append(c, r)
	}
	rm, err := q.Execute(ctx)
	if err != nil {
		return nil, err
	}
	return ConstructAll[T](rm)
}

// Delete removes the row of m, matched on its primary key.
func Delete(ctx context.Context, db database.Database, m any) error {
	info, v, err := resolve("Delete", m)
	if err != nil {
		return err
	}
	pk, err := primaryOf("Delete", info)
	if err != nil {
		return err
	}
	if pk.IsZero(v) {
		return fmt.Errorf("model: Delete on %s: primary field %s is unset: %w", info.Type, pk.Name, ErrOperationInvalid)
	}

	_, err = query.NewDelete(db, info.Table).
		WhereEq(pk.Column, pk.Interface(v)).
		Execute(ctx)
	return err
}

// BuildSchema creates T's table if it does not exist, using the schema
// fragments of level.
func BuildSchema[T any](ctx context.Context, db database.Database, level int) error {
	info, err := schema.Of[T]()
	if err != nil {
		return err
	}
	ddl, err := schema.CreateTableSQL(info, level, db.Dialect())
	if err != nil {
		return err
	}
	_, err = db.ExecuteUpdate(ctx, ddl, nil)
	return err
}
