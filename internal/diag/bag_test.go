package diag

import (
	"testing"

	"graft/internal/source"
)

func TestBagLimit(t *testing.T) {
	bag := NewBag(2)

	if !bag.Add(NewError(ResUnknownMacro, source.Span{}, "first")) {
		t.Error("первая диагностика должна добавиться")
	}
	if !bag.Add(NewError(ResUnknownMacro, source.Span{Start: 1, End: 2}, "second")) {
		t.Error("вторая диагностика должна добавиться")
	}
	if bag.Add(NewError(ResUnknownMacro, source.Span{Start: 3, End: 4}, "third")) {
		t.Error("лимит достигнут, третья диагностика не должна добавиться")
	}
	if bag.Len() != 2 {
		t.Errorf("ожидали 2 диагностики, получили %d", bag.Len())
	}
}

func TestBagHasErrors(t *testing.T) {
	bag := NewBag(4)
	bag.Add(New(SevInfo, ExpInfo, source.Span{}, "note"))
	if bag.HasErrors() {
		t.Error("info не должен считаться ошибкой")
	}
	bag.Add(NewError(ExpDependencyCycle, source.Span{}, "cycle"))
	if !bag.HasErrors() {
		t.Error("ожидали HasErrors после SevError")
	}
}

func TestBagSortDeterministic(t *testing.T) {
	bag := NewBag(8)
	bag.Add(NewError(ExpMacroImplementation, source.Span{File: 1, Start: 5, End: 6}, "b"))
	bag.Add(NewError(ResUnknownMacro, source.Span{File: 0, Start: 9, End: 10}, "a"))
	bag.Add(New(SevWarning, ExpInfo, source.Span{File: 1, Start: 5, End: 6}, "w"))

	bag.Sort()
	items := bag.Items()
	if items[0].Code != ResUnknownMacro {
		t.Errorf("первым должен идти файл 0, получили %v", items[0].Code)
	}
	// при равных спанах error раньше warning
	if items[1].Severity != SevError || items[2].Severity != SevWarning {
		t.Error("при равных спанах error должен идти раньше warning")
	}
}

func TestBagDedup(t *testing.T) {
	bag := NewBag(8)
	sp := source.Span{File: 0, Start: 1, End: 2}
	bag.Add(NewError(ResUnknownMacro, sp, "dup"))
	bag.Add(NewError(ResUnknownMacro, sp, "dup"))
	bag.Dedup()
	if bag.Len() != 1 {
		t.Errorf("ожидали 1 после Dedup, получили %d", bag.Len())
	}
}

func TestSyncReporterForwardsToBag(t *testing.T) {
	bag := NewBag(4)
	r := NewSyncReporter(BagReporter{Bag: bag})
	r.Report(ExpInvalidIntroducedName, SevError, source.Span{}, "bad name", nil)
	if bag.Len() != 1 {
		t.Fatalf("ожидали 1 диагностику, получили %d", bag.Len())
	}
	if bag.Items()[0].Code != ExpInvalidIntroducedName {
		t.Errorf("неверный код: %v", bag.Items()[0].Code)
	}
}

func TestCodeID(t *testing.T) {
	cases := []struct {
		code Code
		want string
	}{
		{RegInvalidRoleCombination, "REG1001"},
		{ResUnknownMacro, "RES2001"},
		{ExpDependencyCycle, "EXP3002"},
		{PrjManifestInvalid, "PRJ4001"},
		{UnknownCode, "E0000"},
	}
	for _, tc := range cases {
		if got := tc.code.ID(); got != tc.want {
			t.Errorf("ID(%d) = %q, want %q", tc.code, got, tc.want)
		}
	}
}
