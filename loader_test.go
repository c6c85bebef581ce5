package tablekit

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/bigmb/tablekit/pkg/errs"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadIdentity(t *testing.T) {
	df := dataframe.LoadRecords([][]string{
		{"a", "b"},
		{"1", "x"},
		{"2", "y"},
	})
	require.NoError(t, df.Err)

	got, err := Load(context.Background(), df)
	require.NoError(t, err)
	require.Equal(t, df.Records(), got.Records())

	again, err := Load(context.Background(), got)
	require.NoError(t, err)
	require.Equal(t, got.Records(), again.Records())
}

func TestLoadCSV(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.csv", "Unnamed: 0,a,b\n0,1,x\n1,2,y\n2,3,z\n")

	df, err := Load(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, df.Names())
	require.Equal(t, 3, df.Nrow())
	require.Equal(t, []string{"x", "y", "z"}, df.Col("b").Records())
}

func TestLoadCSVChunked(t *testing.T) {
	dir := t.TempDir()
	content := "a\n"
	for i := 0; i < 10; i++ {
		content += string(rune('0'+i)) + "\n"
	}
	path := writeFile(t, dir, "data.csv", content)

	df, err := Load(context.Background(), path, WithChunkSize(3))
	require.NoError(t, err)
	require.Equal(t, 10, df.Nrow())
	require.Equal(t, []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"},
		df.Col("a").Records())
}

func TestLoadCSVWithSidecar(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.csv", "a,flag,id\n1,True,r1\n2,False,r2\n")
	writeFile(t, dir, "data.meta", `{
		"index_names": ["id"],
		"columns": {"a": "int64", "flag": "bool", "id": "object"}
	}`)

	df, err := Load(context.Background(), path)
	require.NoError(t, err)
	// index columns come first
	require.Equal(t, []string{"id", "a", "flag"}, df.Names())
	require.Equal(t, series.Bool, df.Col("flag").Type())
	require.Equal(t, series.Int, df.Col("a").Type())
}

func TestLoadZippedCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv.zip")

	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	member, err := zw.Create("data.csv")
	require.NoError(t, err)
	_, err = member.Write([]byte("a,b\n1,x\n2,y\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	df, err := Load(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, df.Names())
	require.Equal(t, 2, df.Nrow())
}

func TestLoadLiteralColumns(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.csv", "id,emb\n1,\"[1, 2]\"\n2,\"{'k': 'v'}\"\n")

	df, err := Load(context.Background(), path, WithLiteralColumns("emb"))
	require.NoError(t, err)
	require.Equal(t, []string{"[1,2]", `{"k":"v"}`}, df.Col("emb").Records())
}

func TestLoadLiteralColumnMissing(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.csv", "a\n1\n")

	_, err := Load(context.Background(), path, WithLiteralColumns("nope"))
	var colErr *errs.ColumnError
	require.ErrorAs(t, err, &colErr)
}

func TestLoadLiteralColumnMalformed(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.csv", "emb\n\"[1, 2\"\n")

	_, err := Load(context.Background(), path, WithLiteralColumns("emb"))
	var litErr *errs.LiteralError
	require.ErrorAs(t, err, &litErr)
	require.Contains(t, litErr.Error(), "emb")
}

func TestLoadUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.txt", "hello")

	_, err := Load(context.Background(), path)
	var fmtErr *errs.FormatError
	require.ErrorAs(t, err, &fmtErr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	var nfErr *errs.NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestLoadBadSourceType(t *testing.T) {
	_, err := Load(context.Background(), 42)
	var typeErr *errs.TypeError
	require.ErrorAs(t, err, &typeErr)
}

func TestRemoveUnnamedIdempotent(t *testing.T) {
	df := dataframe.LoadRecords([][]string{
		{"Unnamed: 0", "a"},
		{"0", "1"},
		{"1", "2"},
	})
	require.NoError(t, df.Err)

	once := RemoveUnnamed(df)
	twice := RemoveUnnamed(once)
	require.Empty(t, cmp.Diff(once.Records(), twice.Records()))
	require.Equal(t, []string{"a"}, once.Names())
}
