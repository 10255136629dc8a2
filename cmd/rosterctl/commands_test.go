package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/roster/internal/core"
	"github.com/JonMunkholm/roster/internal/storage"
)

// seedWorkbook writes a roster with two students and returns its path.
func seedWorkbook(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "alunos.xlsx")
	src := storage.NewExcelSource(path)
	err := src.Save(context.Background(), []core.Student{
		{Surname: "Silva", FullName: "Maria Silva", ID: 100},
		{Surname: "Souza", FullName: "João Souza", ID: 101},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func loadIDs(t *testing.T, path string) []string {
	t.Helper()
	rows, err := storage.NewExcelSource(path).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids
}

func TestList(t *testing.T) {
	path := seedWorkbook(t)

	out, _, err := run(t, "list", "--file", path)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, want := range []string{"Maria Silva", "João Souza", "2 student(s)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSearch(t *testing.T) {
	path := seedWorkbook(t)

	out, _, err := run(t, "search", "joao", "-f", path)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(out, "101") || strings.Contains(out, "Maria") {
		t.Errorf("search output:\n%s", out)
	}
}

func TestSimilar(t *testing.T) {
	path := seedWorkbook(t)

	out, _, err := run(t, "similar", "MARIA SILVA", "-f", path)
	if err != nil {
		t.Fatalf("similar: %v", err)
	}
	if !strings.Contains(out, "Maria Silva (RM 100)") {
		t.Errorf("similar output: %q", out)
	}

	out, _, err = run(t, "similar", "Pedro Alves", "-f", path)
	if err != nil {
		t.Fatalf("similar: %v", err)
	}
	if !strings.HasPrefix(out, "no similar name") {
		t.Errorf("similar output: %q", out)
	}
}

func TestAddAndRemove(t *testing.T) {
	path := seedWorkbook(t)

	out, _, err := run(t, "add", "ana de souza", "102", "-f", path)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if strings.TrimSpace(out) != "added Ana de Souza (RM 102)" {
		t.Errorf("add output: %q", out)
	}
	if got := loadIDs(t, path); len(got) != 3 || got[2] != "102" {
		t.Errorf("ids after add = %v", got)
	}

	_, _, err = run(t, "add", "Outra Pessoa", "100", "-f", path)
	if err == nil || !strings.Contains(err.Error(), "ROS002") {
		t.Errorf("duplicate add error = %v, want ROS002", err)
	}

	out, _, err = run(t, "remove", "100", "102", "-f", path)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if strings.TrimSpace(out) != "removed 2" {
		t.Errorf("remove output: %q", out)
	}
	if got := loadIDs(t, path); len(got) != 1 || got[0] != "101" {
		t.Errorf("ids after remove = %v", got)
	}

	if _, _, err := run(t, "remove", "abc", "-f", path); err == nil {
		t.Error("remove with a bad RM succeeded")
	}
}

func TestValidate(t *testing.T) {
	path := seedWorkbook(t)
	batch := filepath.Join(t.TempDir(), "lote.csv")
	content := "Nome do(a) Aluno(a),RM\nCarla Dias,200\nMaria Silva,100\nPedro,x1\n"
	if err := os.WriteFile(batch, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := run(t, "validate", batch, "-f", path)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	for _, want := range []string{"row 3: RM 100 already registered (Maria Silva)", "row 4: RM \"x1\"", "accepted 1, rejected 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
	if got := loadIDs(t, path); len(got) != 2 {
		t.Errorf("validate changed the roster: %v", got)
	}

	_, errOut, err := run(t, "validate", batch, "--commit", "--json", "-f", path)
	if err != nil {
		t.Fatalf("validate --commit: %v", err)
	}
	if !strings.Contains(errOut, "added 1, skipped 0") {
		t.Errorf("stderr = %q", errOut)
	}
	if got := loadIDs(t, path); len(got) != 3 || got[2] != "200" {
		t.Errorf("ids after commit = %v", got)
	}
}

func TestSort(t *testing.T) {
	path := seedWorkbook(t)

	if _, _, err := run(t, "sort", "rm", "--desc", "-f", path); err != nil {
		t.Fatalf("sort: %v", err)
	}
	if got := loadIDs(t, path); len(got) != 2 || got[0] != "101" {
		t.Errorf("ids after sort = %v", got)
	}
}

func TestFormat(t *testing.T) {
	out, _, err := run(t, "format", "  JOSÉ   DOS  santos ")
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if out != "José dos Santos\tSantos\n" {
		t.Errorf("format output = %q", out)
	}
}

func TestMissingWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "none.xlsx")

	if _, _, err := run(t, "list", "-f", path); err == nil {
		t.Error("list on a missing workbook succeeded")
	}

	out, _, err := run(t, "list", "--create", "-f", path)
	if err != nil {
		t.Fatalf("list --create: %v", err)
	}
	if !strings.Contains(out, "0 student(s)") {
		t.Errorf("output = %q", out)
	}
}
