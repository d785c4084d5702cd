package schema

import (
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/Konsultn-Engineering/sqlib/dialect"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =========================================================================
// Test Data Structures
// =========================================================================

type Player struct {
	Table `table:"players"`

	ID       int64     `db:"column:player_id;primary:pk_player" schema:"1=INT NOT NULL;2=BIGINT NOT NULL"`
	Name     string    `db:"name" schema:"VARCHAR(64) NOT NULL"`
	TeamID   *int64    `db:"fk:teams.team_id"`
	Balance  float64   `db:"balance"`
	JoinedAt time.Time `db:"joined_at"`
	Notes    string    // not fillable
	Secret   string    `db:"-"`
}

type Audit struct {
	CreatedBy string `db:"created_by"`
}

type Ticket struct {
	Audit
	ID    uuid.UUID `db:"primary;generator:uuid"`
	Other int64     `db:"column:other;primary"`
	Title string    `db:"title"`
}

func (Ticket) TableName() string { return "support_tickets" }

type BlogPost struct {
	Table `table:"auto"`
	ID    int64 `db:"id;primary"`
}

type NoTable struct {
	ID int64 `db:"id"`
}

// =========================================================================
// Tag Parsing Tests
// =========================================================================

func TestParseTag(t *testing.T) {
	tests := []struct {
		name string
		tag  reflect.StructTag
		want *ParsedTag
		ok   bool
	}{
		{"untagged", ``, nil, false},
		{"skip", `db:"-"`, &ParsedTag{Skip: true}, true},
		{"simple column", `db:"user_id"`, &ParsedTag{ColumnName: "user_id"}, true},
		{"empty derives", `db:""`, &ParsedTag{ColumnName: "user_id"}, true},
		{"bare flag", `db:"primary"`, &ParsedTag{ColumnName: "user_id", Primary: true}, true},
		{"column then flag", `db:"id;primary"`, &ParsedTag{ColumnName: "id", Primary: true}, true},
		{"column then options", `db:"id;primary;generator:uuid"`, &ParsedTag{
			ColumnName: "id",
			Primary:    true,
			Generator:  "uuid",
		}, true},
		{"options", `db:"column:uid;primary:pk_user;fk:accounts.id;generator:ulid"`, &ParsedTag{
			ColumnName:  "uid",
			Primary:     true,
			PrimaryName: "pk_user",
			ForeignKey:  "accounts.id",
			Generator:   "ulid",
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := ParseTag("UserID", tt.tag)
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTag_Errors(t *testing.T) {
	for _, tag := range []reflect.StructTag{
		`db:"column:x;bogus"`,
		`db:"id;bogus"`,
		`db:"column:"`,
		`db:"fk:nodot"`,
		`db:"generator:snowflake"`,
		`db:"what:ever"`,
	} {
		_, _, err := ParseTag("F", tag)
		assert.ErrorIs(t, err, ErrConfiguration, string(tag))
	}
}

func TestParseSchemaTag(t *testing.T) {
	frags, err := parseSchemaTag("3=BIGINT; 1=INT ;TEXT")
	require.NoError(t, err)
	assert.Equal(t, []Fragment{{1, "INT"}, {1, "TEXT"}, {3, "BIGINT"}}, frags)

	_, err = parseSchemaTag("2=")
	assert.ErrorIs(t, err, ErrConfiguration)
}

// =========================================================================
// Naming Tests
// =========================================================================

func TestNaming(t *testing.T) {
	assert.Equal(t, "player_id", toSnakeCase("PlayerID"))
	assert.Equal(t, "id", toSnakeCase("ID"))
	assert.Equal(t, "http_server", toSnakeCase("HTTPServer"))
	assert.Equal(t, "already_snake", toSnakeCase("already_snake"))

	assert.Equal(t, "players", AutoTableName("Player"))
	assert.Equal(t, "categories", AutoTableName("Category"))
	assert.Equal(t, "blog_posts", AutoTableName("BlogPost"))
}

// =========================================================================
// ModelInfo Tests
// =========================================================================

func TestNewModelInfo(t *testing.T) {
	info, err := NewModelInfo(reflect.TypeOf(&Player{}))
	require.NoError(t, err)

	assert.Equal(t, "players", info.Table)
	assert.Equal(t, reflect.TypeOf(Player{}), info.Type)
	assert.Equal(t, []string{"player_id", "name", "team_id", "balance", "joined_at"}, info.Columns())

	require.True(t, info.HasPrimary())
	assert.Equal(t, "ID", info.Primary.Name)
	assert.Equal(t, "pk_player", info.Primary.PrimaryName)

	team, ok := info.Field("team_id")
	require.True(t, ok)
	assert.Equal(t, "teams.team_id", team.ForeignKey)

	_, ok = info.Field("notes")
	assert.False(t, ok)
	_, ok = info.Field("secret")
	assert.False(t, ok)
}

func TestNewModelInfo_FirstPrimaryWins(t *testing.T) {
	info, err := NewModelInfo(reflect.TypeOf(Ticket{}))
	require.NoError(t, err)

	assert.Equal(t, "support_tickets", info.Table)
	assert.Equal(t, []string{"created_by", "id", "other", "title"}, info.Columns())
	assert.Equal(t, "ID", info.Primary.Name)
	assert.Equal(t, "uuid", info.Primary.Generator)

	other, _ := info.Field("other")
	assert.True(t, other.PrimaryKey)
	assert.NotSame(t, other, info.Primary)

	created, _ := info.Field("created_by")
	assert.Equal(t, []int{0, 0}, created.Index)
}

func TestNewModelInfo_AutoTable(t *testing.T) {
	info, err := NewModelInfo(reflect.TypeOf(BlogPost{}))
	require.NoError(t, err)
	assert.Equal(t, "blog_posts", info.Table)
}

func TestNewModelInfo_ConfigurationErrors(t *testing.T) {
	type emptyTable struct {
		Table
		ID int64 `db:"id"`
	}
	type hidden struct {
		Table `table:"hidden"`
		id    int64 `db:"id"`
	}
	type duplicate struct {
		Table `table:"dups"`
		A     int64 `db:"x"`
		B     int64 `db:"x"`
	}

	for _, typ := range []reflect.Type{
		reflect.TypeOf(NoTable{}),
		reflect.TypeOf(emptyTable{}),
		reflect.TypeOf(hidden{}),
		reflect.TypeOf(duplicate{}),
		reflect.TypeOf(42),
	} {
		_, err := NewModelInfo(typ)
		assert.ErrorIs(t, err, ErrConfiguration, typ.String())
	}
	_ = hidden{}.id
}

func TestModelField_GetSchema(t *testing.T) {
	info, err := NewModelInfo(reflect.TypeOf(Player{}))
	require.NoError(t, err)
	id := info.Primary

	_, ok := id.GetSchema(0)
	assert.False(t, ok)

	frag, ok := id.GetSchema(1)
	require.True(t, ok)
	assert.Equal(t, "INT NOT NULL", frag.SQL)

	frag, ok = id.GetSchema(5)
	require.True(t, ok)
	assert.Equal(t, Fragment{Level: 2, SQL: "BIGINT NOT NULL"}, frag)
}

func TestModelField_Access(t *testing.T) {
	info, err := NewModelInfo(reflect.TypeOf(Player{}))
	require.NoError(t, err)

	p := &Player{}
	v := reflect.ValueOf(p).Elem()

	assert.True(t, info.Primary.IsZero(v))
	require.NoError(t, info.Primary.Set(v, int32(12)))
	assert.Equal(t, int64(12), p.ID)
	assert.False(t, info.Primary.IsZero(v))

	team, _ := info.Field("team_id")
	assert.Nil(t, team.Interface(v))
	require.NoError(t, team.Set(v, int64(3)))
	require.NotNil(t, p.TeamID)
	assert.Equal(t, int64(3), *p.TeamID)

	name, _ := info.Field("name")
	err = name.Set(v, struct{}{})
	assert.Error(t, err)
}

// =========================================================================
// Registry Tests
// =========================================================================

func TestRegistry_Caches(t *testing.T) {
	r := NewRegistry()

	a, err := r.Lookup(reflect.TypeOf(Player{}))
	require.NoError(t, err)
	b, err := r.Lookup(reflect.TypeOf(&Player{}))
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, 1, r.Len())

	_, err = r.Lookup(reflect.TypeOf(NoTable{}))
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_Concurrency(t *testing.T) {
	const numGoroutines = 16
	const numIterations = 10

	r := NewRegistry()

	var wg sync.WaitGroup
	results := make(chan *ModelInfo, numGoroutines*numIterations)
	errs := make(chan error, numGoroutines*numIterations)

	// Use a barrier to ensure all goroutines start at the same time
	startBarrier := make(chan struct{})

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-startBarrier
			for j := 0; j < numIterations; j++ {
				info, err := r.Lookup(reflect.TypeOf(Ticket{}))
				if err != nil {
					errs <- err
					return
				}
				results <- info
			}
		}()
	}

	close(startBarrier)
	wg.Wait()
	close(errs)
	close(results)

	for err := range errs {
		t.Errorf("concurrent lookup: %v", err)
	}

	var first *ModelInfo
	count := 0
	for info := range results {
		if first == nil {
			first = info
		}
		assert.Same(t, first, info)
		count++
	}
	assert.Equal(t, numGoroutines*numIterations, count)
	assert.Equal(t, 1, r.Len())
}

func TestOfAndRegister(t *testing.T) {
	require.NoError(t, Register[BlogPost]())

	a, err := Of[BlogPost]()
	require.NoError(t, err)
	b, err := Lookup(reflect.TypeOf(BlogPost{}))
	require.NoError(t, err)
	assert.Same(t, a, b)

	assert.ErrorIs(t, Register[NoTable](), ErrConfiguration)
}

// =========================================================================
// Generator Tests
// =========================================================================

func TestGenerators(t *testing.T) {
	id, err := GenerateID("uuid")
	require.NoError(t, err)
	assert.IsType(t, uuid.UUID{}, id)

	a, err := GenerateID("ulid")
	require.NoError(t, err)
	b, err := GenerateID("ulid")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	_, err = GenerateID("missing")
	assert.Error(t, err)
}

// =========================================================================
// DDL Tests
// =========================================================================

func TestCreateTableSQL(t *testing.T) {
	info, err := NewModelInfo(reflect.TypeOf(Player{}))
	require.NoError(t, err)

	sql, err := CreateTableSQL(info, 2, dialect.NewMySQLDialect())
	require.NoError(t, err)
	assert.Equal(t,
		"CREATE TABLE IF NOT EXISTS `players` ("+
			"`player_id` BIGINT NOT NULL, "+
			"`name` VARCHAR(64) NOT NULL, "+
			"`team_id` BIGINT, "+
			"`balance` DOUBLE PRECISION NOT NULL, "+
			"`joined_at` TIMESTAMP NOT NULL, "+
			"CONSTRAINT `pk_player` PRIMARY KEY (`player_id`), "+
			"FOREIGN KEY (`team_id`) REFERENCES `teams` (`team_id`))",
		sql)
}

func TestCreateTableSQL_AutoIncrement(t *testing.T) {
	info, err := NewModelInfo(reflect.TypeOf(BlogPost{}))
	require.NoError(t, err)

	pg, err := CreateTableSQL(info, 1, dialect.NewPostgresDialect())
	require.NoError(t, err)
	assert.Equal(t, `CREATE TABLE IF NOT EXISTS "blog_posts" ("id" BIGSERIAL, PRIMARY KEY ("id"))`, pg)

	lite, err := CreateTableSQL(info, 1, dialect.NewSQLiteDialect())
	require.NoError(t, err)
	assert.Equal(t, `CREATE TABLE IF NOT EXISTS "blog_posts" ("id" INTEGER, PRIMARY KEY ("id"))`, lite)

	ticket, err := NewModelInfo(reflect.TypeOf(Ticket{}))
	require.NoError(t, err)
	sql, err := CreateTableSQL(ticket, 1, dialect.NewPostgresDialect())
	require.NoError(t, err)
	assert.Contains(t, sql, `"id" UUID NOT NULL`)
}
