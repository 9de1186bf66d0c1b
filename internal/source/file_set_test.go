package source

import (
	"testing"
)

func TestFileSetAddVirtualAndResolve(t *testing.T) {
	fs := NewFileSet()

	content := []byte("line one\nline two\nline three")
	id := fs.AddVirtual("unit.toml", content)

	f := fs.Get(id)
	if f.Flags&FileVirtual == 0 {
		t.Error("AddVirtual должен ставить флаг FileVirtual")
	}

	// "two" начинается с offset 14 (строка 2, колонка 6)
	start, end := fs.Resolve(Span{File: id, Start: 14, End: 17})
	if start.Line != 2 || start.Col != 6 {
		t.Errorf("start: ожидали 2:6, получили %d:%d", start.Line, start.Col)
	}
	if end.Line != 2 || end.Col != 9 {
		t.Errorf("end: ожидали 2:9, получили %d:%d", end.Line, end.Col)
	}
}

func TestFileSetResolveFirstLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("v", []byte("abc\ndef"))

	start, _ := fs.Resolve(Span{File: id, Start: 1, End: 2})
	if start.Line != 1 || start.Col != 2 {
		t.Errorf("ожидали 1:2, получили %d:%d", start.Line, start.Col)
	}
}

func TestFileSetResolveSingleLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("v", []byte("no newlines here"))

	start, _ := fs.Resolve(Span{File: id, Start: 3, End: 5})
	if start.Line != 1 || start.Col != 4 {
		t.Errorf("ожидали 1:4, получили %d:%d", start.Line, start.Col)
	}
}

func TestFileSetGetByPathTracksLatest(t *testing.T) {
	fs := NewFileSet()

	fs.AddVirtual("dup", []byte("old"))
	id2 := fs.AddVirtual("dup", []byte("new"))

	f, ok := fs.GetByPath("dup")
	if !ok {
		t.Fatal("GetByPath должен находить загруженный файл")
	}
	if f.ID != id2 {
		t.Errorf("индекс должен указывать на последнюю версию: %d != %d", f.ID, id2)
	}
	if string(f.Content) != "new" {
		t.Errorf("ожидали контент последней версии, получили %q", f.Content)
	}
}

func TestNormalizeCRLF(t *testing.T) {
	out, changed := normalizeCRLF([]byte("a\r\nb\rc"))
	if !changed {
		t.Error("ожидали замену \\r\\n")
	}
	if string(out) != "a\nb\rc" {
		t.Errorf("одиночный \\r не должен трогаться, получили %q", out)
	}

	out, changed = normalizeCRLF([]byte("plain"))
	if changed {
		t.Error("без \\r замен быть не должно")
	}
	if string(out) != "plain" {
		t.Errorf("контент не должен меняться, получили %q", out)
	}
}
