package snapshot

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kairu-dev/dumpaudit/internal/config"
)

const colTypesQuery = `SELECT column_name, data_type FROM information_schema.columns WHERE table_schema = $1 AND table_name = $2`

func spec() config.TableSpec {
	return config.TableSpec{
		Name:       "s_unidade_familiar",
		PrimaryKey: config.StringList{"id_unidade_familiar"},
		Columns:    []string{"dt_validade", "st_possui_mao_obra"},
		Filter:     "st_ativo = 'S'",
	}
}

func TestReadProjectsAndFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(colTypesQuery)).
		WithArgs("dump_20240101", "s_unidade_familiar").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type"}).
			AddRow("id_unidade_familiar", "bigint").
			AddRow("dt_validade", "timestamp without time zone").
			AddRow("st_possui_mao_obra", "boolean").
			AddRow("st_ativo", "character varying"))

	dataQuery := `SELECT "id_unidade_familiar", "dt_validade", "st_possui_mao_obra" FROM "dump_20240101"."s_unidade_familiar" WHERE st_ativo = 'S'`
	mock.ExpectQuery(regexp.QuoteMeta(dataQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"id_unidade_familiar", "dt_validade", "st_possui_mao_obra"}).
			AddRow(int64(10), []byte("2024-01-01 00:00:00"), []byte("t")).
			AddRow(int64(11), nil, []byte("f")))

	r := NewReader(db)
	snap, err := r.Read(context.Background(), "dump_20240101", spec())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if snap.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", snap.Len())
	}
	row, ok := snap.Rows["10"]
	if !ok {
		t.Fatalf("missing key 10: %v", snap.Keys())
	}
	if row["st_possui_mao_obra"] != "t" {
		t.Errorf("byte slices should be converted to strings, got %T", row["st_possui_mao_obra"])
	}
	if snap.Types["dt_validade"] != "timestamp without time zone" {
		t.Errorf("declared types not captured: %v", snap.Types)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestReadTableMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(colTypesQuery)).
		WithArgs("dump_20240101", "s_unidade_familiar").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type"}))

	_, err = NewReader(db).Read(context.Background(), "dump_20240101", spec())
	var dse *DataSourceError
	if !errors.As(err, &dse) || dse.Kind != TableMissing {
		t.Fatalf("expected table-missing DataSourceError, got %v", err)
	}
}

func TestReadColumnMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(colTypesQuery)).
		WithArgs("dump_20240101", "s_unidade_familiar").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type"}).
			AddRow("id_unidade_familiar", "bigint").
			AddRow("dt_validade", "timestamp without time zone"))

	_, err = NewReader(db).Read(context.Background(), "dump_20240101", spec())
	var dse *DataSourceError
	if !errors.As(err, &dse) || dse.Kind != ColumnMissing {
		t.Fatalf("expected column-missing DataSourceError, got %v", err)
	}
	if dse.Column != "st_possui_mao_obra" {
		t.Errorf("expected offending column in error, got %q", dse.Column)
	}
}

func TestKeyOfComposite(t *testing.T) {
	if got := KeyOf([]any{int64(1), []byte("v2")}); got != "1|v2" {
		t.Errorf("KeyOf = %q", got)
	}
}
