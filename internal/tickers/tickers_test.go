package tickers

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tickers.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadFromFile(t *testing.T) {
	path := writeTemp(t, "AAA\naaa\n# comment\n\nBBB\n")
	got, err := ReadFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"AAA", "BBB"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestReadFromFile_TrimAndOrder(t *testing.T) {
	path := writeTemp(t, "  spy \nqqq\nSPY\n#voo\nvoo\n")
	got, err := ReadFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"SPY", "QQQ", "VOO"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestReadFromFile_Missing(t *testing.T) {
	if _, err := ReadFromFile(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
