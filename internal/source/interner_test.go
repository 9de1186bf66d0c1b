package source

import (
	"testing"
)

func TestInternerBasic(t *testing.T) {
	interner := NewInterner()

	// NoStringID зарезервирован для пустой строки
	if s, ok := interner.Lookup(NoStringID); !ok || s != "" {
		t.Errorf("NoStringID должен возвращать пустую строку, получили: %q, ok=%v", s, ok)
	}

	id1 := interner.Intern("completionHandler")
	if id1 == NoStringID {
		t.Error("Intern не должен возвращать NoStringID для непустой строки")
	}

	// Повторный Intern той же строки возвращает тот же ID
	id2 := interner.Intern("completionHandler")
	if id1 != id2 {
		t.Errorf("Intern должен возвращать одинаковые ID для одинаковых строк: %d != %d", id1, id2)
	}

	if s, ok := interner.Lookup(id1); !ok || s != "completionHandler" {
		t.Errorf("Lookup вернул неверную строку: %q, ok=%v", s, ok)
	}

	id3 := interner.Intern("observable")
	if id3 == id1 {
		t.Error("Разные строки должны иметь разные ID")
	}

	if interner.Len() != 3 { // "", "completionHandler", "observable"
		t.Errorf("Len должен быть 3, получили: %d", interner.Len())
	}
}

func TestInternerHas(t *testing.T) {
	interner := NewInterner()

	if !interner.Has(NoStringID) {
		t.Error("Has должен возвращать true для NoStringID")
	}

	id := interner.Intern("peer")
	if !interner.Has(id) {
		t.Error("Has должен возвращать true для валидного ID")
	}

	if interner.Has(StringID(9999)) {
		t.Error("Has должен возвращать false для несуществующего ID")
	}
}

func TestInternerMustLookupPanics(t *testing.T) {
	interner := NewInterner()

	defer func() {
		if r := recover(); r == nil {
			t.Error("MustLookup должен паниковать на невалидном ID")
		}
	}()
	interner.MustLookup(StringID(42))
}

func TestInternerSnapshotIsCopy(t *testing.T) {
	interner := NewInterner()
	interner.Intern("a")

	snap := interner.Snapshot()
	snap[0] = "mutated"

	if s, _ := interner.Lookup(NoStringID); s != "" {
		t.Error("Snapshot должен возвращать копию, а не внутренний буфер")
	}
}
